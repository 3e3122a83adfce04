package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockscan/internal/config"
	"github.com/mamadbah2/stockscan/internal/domain/models"
	"github.com/mamadbah2/stockscan/pkg/clients/odoo"
)

// ScanStatus tells the caller what a batch scan resolved to.
type ScanStatus string

const (
	// ScanNew means the product was found and awaits quantity confirmation.
	ScanNew ScanStatus = "new"
	// ScanDuplicate means the barcode is already in the batch and awaits an
	// update-or-cancel decision.
	ScanDuplicate ScanStatus = "duplicate"
)

// ScanOutcome is the result of feeding one decoded barcode to the session.
type ScanOutcome struct {
	Status   ScanStatus        `json:"status"`
	Product  models.Product    `json:"product"`
	Existing *models.BatchItem `json:"existing,omitempty"`
}

// Pending-decision errors; the session refuses conflicting operations while
// a confirmation is outstanding.
var (
	ErrDecisionPending = errors.New("batch: a confirmation is pending")
	ErrNothingPending  = errors.New("batch: no confirmation pending")
	ErrEmptyBatch      = errors.New("batch: no items to process")
)

// Session accumulates scans in memory until the batch is processed or
// discarded. One session exists per running instance; items are keyed by the
// exact barcode string that was scanned, independent of how the server
// echoes the field back.
type Session struct {
	client odoo.Client
	ledger Ledger
	cfg    config.OdooConfig
	log    *zap.Logger

	mu         sync.Mutex
	items      []models.BatchItem
	index      map[string]int
	pendingNew *pendingScan
	pendingDup string
}

// pendingScan holds a looked-up product together with the barcode string
// that found it, which is the batch key.
type pendingScan struct {
	product models.Product
	barcode string
}

// NewSession creates an empty batch session.
func NewSession(client odoo.Client, ledger Ledger, cfg config.OdooConfig, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		client: client,
		ledger: ledger,
		cfg:    cfg,
		log:    logger,
		index:  make(map[string]int),
	}
}

// Scan feeds a decoded barcode into the session. A barcode already in the
// batch pauses scanning on a duplicate decision; a new one is looked up
// remotely and pauses on quantity confirmation. odoo.ErrNotFound passes
// through so the caller can resume scanning after acknowledging it.
func (b *Session) Scan(ctx context.Context, barcode string) (*ScanOutcome, error) {
	if barcode == "" {
		return nil, fmt.Errorf("barcode is required")
	}

	b.mu.Lock()
	if b.pendingNew != nil || b.pendingDup != "" {
		b.mu.Unlock()
		return nil, ErrDecisionPending
	}
	if idx, ok := b.index[barcode]; ok {
		b.pendingDup = barcode
		existing := b.items[idx]
		b.mu.Unlock()
		return &ScanOutcome{Status: ScanDuplicate, Product: existing.Product, Existing: &existing}, nil
	}
	b.mu.Unlock()

	// Lookup happens outside the lock; the single pending slot is claimed
	// afterwards only if still free.
	product, err := b.client.SearchProductByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pendingNew != nil || b.pendingDup != "" {
		return nil, ErrDecisionPending
	}
	b.pendingNew = &pendingScan{product: *product, barcode: barcode}
	return &ScanOutcome{Status: ScanNew, Product: *product}, nil
}

// Confirm adds the pending product to the batch with the given quantity,
// clamped to a minimum of 1. Duplicate keys cannot occur here: Scan routes
// known barcodes to the duplicate decision instead.
func (b *Session) Confirm(quantity int) (*models.BatchItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pendingNew == nil {
		return nil, ErrNothingPending
	}
	if quantity < 1 {
		quantity = 1
	}

	item := models.BatchItem{
		ID:        uuid.NewString(),
		Barcode:   b.pendingNew.barcode,
		Product:   b.pendingNew.product,
		Quantity:  quantity,
		ScannedAt: time.Now(),
	}
	b.index[item.Barcode] = len(b.items)
	b.items = append(b.items, item)
	b.pendingNew = nil
	return &item, nil
}

// Cancel abandons whichever confirmation is pending and resumes scanning.
func (b *Session) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pendingNew = nil
	b.pendingDup = ""
}

// ResolveDuplicate settles a duplicate decision. With update true the
// existing item's quantity is replaced (not added to); otherwise the batch
// is left untouched.
func (b *Session) ResolveDuplicate(update bool, quantity int) (*models.BatchItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pendingDup == "" {
		return nil, ErrNothingPending
	}
	barcode := b.pendingDup
	b.pendingDup = ""

	// The item may have been removed while the decision was open.
	idx, ok := b.index[barcode]
	if !ok {
		return nil, ErrNothingPending
	}

	if !update {
		return nil, nil
	}
	if quantity < 1 {
		quantity = 1
	}

	b.items[idx].Quantity = quantity
	item := b.items[idx]
	return &item, nil
}

// Items returns the accumulated batch in scan order.
func (b *Session) Items() []models.BatchItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.BatchItem, len(b.items))
	copy(out, b.items)
	return out
}

// Remove drops one item by barcode. Unknown barcodes are a no-op. A
// duplicate decision open on the removed item is abandoned with it.
func (b *Session) Remove(barcode string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pendingDup == barcode {
		b.pendingDup = ""
	}

	idx, ok := b.index[barcode]
	if !ok {
		return
	}
	b.items = append(b.items[:idx], b.items[idx+1:]...)
	delete(b.index, barcode)
	for i := idx; i < len(b.items); i++ {
		b.index[b.items[i].Barcode] = i
	}
}

// Discard empties the session without submitting anything.
func (b *Session) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

// reset clears all session state. Caller must hold b.mu.
func (b *Session) reset() {
	b.items = nil
	b.index = make(map[string]int)
	b.pendingNew = nil
	b.pendingDup = ""
}

// Process submits the batch one item at a time, in accumulation order. Each
// submission completes before the next begins so the report order matches
// the scan order. A ledger entry is written only for items the server
// accepted. The session is emptied afterwards whatever the outcome.
func (b *Session) Process(ctx context.Context, movementType models.MovementType, location string) (models.BatchReport, error) {
	b.mu.Lock()
	items := make([]models.BatchItem, len(b.items))
	copy(items, b.items)
	b.reset()
	b.mu.Unlock()

	if len(items) == 0 {
		return models.BatchReport{}, ErrEmptyBatch
	}
	if location == "" {
		location = b.cfg.DefaultLocation
	}

	report := models.BatchReport{Total: len(items)}
	for _, item := range items {
		move := models.StockMove{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Type:        movementType,
			Location:    location,
			Timestamp:   time.Now(),
			Barcode:     item.Barcode,
		}

		if err := b.client.CreateStockMove(ctx, move); err != nil {
			b.log.Warn("batch item failed",
				zap.String("product", item.Product.Name), zap.Error(err))
			report.FailedItems = append(report.FailedItems, item.Product.Name)
			continue
		}

		entry := models.ScanEntry{
			ID:          uuid.NewString(),
			Barcode:     item.Barcode,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Type:        movementType,
			Timestamp:   move.Timestamp,
			Location:    location,
			Synced:      true,
		}
		if err := b.ledger.AppendScan(ctx, entry); err != nil {
			b.log.Error("batch item submitted but ledger write failed",
				zap.String("product", item.Product.Name), zap.Error(err))
		}
		report.SuccessCount++
	}

	b.log.Info("batch processed",
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.SuccessCount),
		zap.Strings("failed", report.FailedItems))
	return report, nil
}
