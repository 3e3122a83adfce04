package scanner_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mamadbah2/stockscan/internal/config"
	"github.com/mamadbah2/stockscan/internal/domain/models"
	"github.com/mamadbah2/stockscan/pkg/clients/odoo"
)

func testOdooConfig() config.OdooConfig {
	return config.OdooConfig{
		SupplierLocationID: 8,
		StockLocationID:    12,
		CustomerLocationID: 9,
		PickingTypeInID:    1,
		PickingTypeOutID:   2,
		ProductUOMID:       1,
		DefaultLocation:    "WH/Stock",
		InventoryLimit:     100,
	}
}

// fakeClient is an in-memory stand-in for the Odoo client.
type fakeClient struct {
	mu        sync.Mutex
	products  map[string]models.Product // keyed by barcode
	failNames map[string]bool           // product names whose moves the server rejects
	lookupErr error

	moves   []models.StockMove
	quants  map[int]int
	session bool
}

func newFakeClient(products ...models.Product) *fakeClient {
	byBarcode := make(map[string]models.Product, len(products))
	for _, p := range products {
		byBarcode[p.Barcode] = p
	}
	return &fakeClient{
		products:  byBarcode,
		failNames: make(map[string]bool),
		quants:    make(map[int]int),
	}
}

func (f *fakeClient) LoadConfig(context.Context) (bool, error) { return true, nil }

func (f *fakeClient) SaveConfig(context.Context, models.ConnectionConfig) error { return nil }

func (f *fakeClient) IsConfigured() bool { return true }

func (f *fakeClient) Authenticate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = true
	return nil
}

func (f *fakeClient) SearchProductByBarcode(_ context.Context, barcode string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	p, ok := f.products[barcode]
	if !ok {
		return nil, fmt.Errorf("%w: barcode %s", odoo.ErrNotFound, barcode)
	}
	return &p, nil
}

func (f *fakeClient) CreateStockMove(_ context.Context, move models.StockMove) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNames[move.ProductName] {
		return errors.New("odoo rejected the move")
	}
	f.moves = append(f.moves, move)
	return nil
}

func (f *fakeClient) SetQuantity(_ context.Context, productID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quants[productID] = quantity
	return nil
}

func (f *fakeClient) Inventory(context.Context, int) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeClient) submittedMoves() []models.StockMove {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.StockMove, len(f.moves))
	copy(out, f.moves)
	return out
}

// fakeLedger records appended entries in memory.
type fakeLedger struct {
	mu        sync.Mutex
	entries   []models.ScanEntry
	appendErr error
}

func (f *fakeLedger) AppendScan(_ context.Context, entry models.ScanEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	// Newest-first like the real ledger.
	f.entries = append([]models.ScanEntry{entry}, f.entries...)
	return nil
}

func (f *fakeLedger) ListScans(context.Context) ([]models.ScanEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ScanEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeLedger) DeleteScan(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeLedger) ClearScans(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = nil
	return nil
}
