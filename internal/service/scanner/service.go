// Package scanner implements the scan flows: single-item lookup and submit,
// history access, and the batch aggregation session.
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockscan/internal/config"
	"github.com/mamadbah2/stockscan/internal/domain/models"
	"github.com/mamadbah2/stockscan/pkg/clients/odoo"
)

// Ledger is the slice of the local store the scanner writes to.
type Ledger interface {
	AppendScan(ctx context.Context, entry models.ScanEntry) error
	ListScans(ctx context.Context) ([]models.ScanEntry, error)
	DeleteScan(ctx context.Context, id string) error
	ClearScans(ctx context.Context) error
}

// SubmitRequest carries one confirmed scan ready for submission.
type SubmitRequest struct {
	ProductID   int                 `json:"product_id"`
	ProductName string              `json:"product_name"`
	Barcode     string              `json:"barcode"`
	Quantity    int                 `json:"quantity"`
	Type        models.MovementType `json:"type"`
	Location    string              `json:"location"`
	Reason      string              `json:"reason"`
	Reference   string              `json:"reference"`
}

// Service drives single scans against the Odoo client and the ledger.
type Service struct {
	client odoo.Client
	ledger Ledger
	cfg    config.OdooConfig
	log    *zap.Logger

	batch *Session
}

// NewService wires a scanner service and its single batch session.
func NewService(client odoo.Client, ledger Ledger, cfg config.OdooConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		ledger: ledger,
		cfg:    cfg,
		log:    logger,
		batch:  NewSession(client, ledger, cfg, logger.Named("batch")),
	}
}

// Batch returns the device's single active batch session.
func (s *Service) Batch() *Session {
	return s.batch
}

// Lookup resolves a decoded barcode to a product. odoo.ErrNotFound means the
// barcode is unknown to the server; other errors are transport failures.
func (s *Service) Lookup(ctx context.Context, barcode string) (*models.Product, error) {
	if barcode == "" {
		return nil, fmt.Errorf("barcode is required")
	}
	return s.client.SearchProductByBarcode(ctx, barcode)
}

// Submit sends one stock movement and, only when the server accepted it,
// records the transaction in the ledger. A failed submission leaves no trace
// locally; there is no automatic retry.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.ScanEntry, error) {
	location := req.Location
	if location == "" {
		location = s.cfg.DefaultLocation
	}

	move := models.StockMove{
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		Type:        req.Type,
		Location:    location,
		Timestamp:   time.Now(),
		Barcode:     req.Barcode,
		Reason:      req.Reason,
		Reference:   req.Reference,
	}
	if err := move.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stock move: %w", err)
	}

	if err := s.client.CreateStockMove(ctx, move); err != nil {
		return nil, err
	}

	entry := models.ScanEntry{
		ID:          uuid.NewString(),
		Barcode:     req.Barcode,
		ProductName: req.ProductName,
		Quantity:    move.Quantity,
		Type:        move.Type,
		Timestamp:   move.Timestamp,
		Location:    location,
		Synced:      true,
	}
	if err := s.ledger.AppendScan(ctx, entry); err != nil {
		// The move is already on the server; surface the ledger failure
		// rather than pretending nothing happened.
		s.log.Error("move submitted but ledger write failed",
			zap.String("barcode", req.Barcode), zap.Error(err))
		return nil, fmt.Errorf("move submitted but not recorded locally: %w", err)
	}

	s.log.Info("scan recorded",
		zap.String("barcode", req.Barcode),
		zap.String("type", string(move.Type)),
		zap.Int("quantity", move.Quantity))
	return &entry, nil
}

// SetQuantity resets a product's on-hand count (inventory adjustment).
func (s *Service) SetQuantity(ctx context.Context, productID, quantity int) error {
	if productID <= 0 {
		return fmt.Errorf("product_id must be positive")
	}
	if quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	return s.client.SetQuantity(ctx, productID, quantity)
}

// History lists the ledger newest-first.
func (s *Service) History(ctx context.Context) ([]models.ScanEntry, error) {
	return s.ledger.ListScans(ctx)
}

// DeleteEntry removes a single history entry.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	return s.ledger.DeleteScan(ctx, id)
}

// ClearHistory wipes the ledger.
func (s *Service) ClearHistory(ctx context.Context) error {
	return s.ledger.ClearScans(ctx)
}
