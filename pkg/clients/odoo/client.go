package odoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockscan/internal/config"
	"github.com/mamadbah2/stockscan/internal/domain/models"
)

// Sentinel errors letting callers tell the failure kinds apart. Transport and
// protocol failures surface as plain wrapped errors matching none of these.
var (
	// ErrConfigMissing means no connection configuration has been loaded or
	// saved; authentication cannot even be attempted.
	ErrConfigMissing = errors.New("odoo: connection configuration not set")
	// ErrAuthFailed covers rejected credentials and failures during the
	// authentication call itself.
	ErrAuthFailed = errors.New("odoo: authentication failed")
	// ErrNotFound is returned when a lookup succeeds but matches no record.
	ErrNotFound = errors.New("odoo: no matching record")
)

// Client exposes the Odoo operations used by the application.
type Client interface {
	LoadConfig(ctx context.Context) (bool, error)
	SaveConfig(ctx context.Context, conn models.ConnectionConfig) error
	IsConfigured() bool
	Authenticate(ctx context.Context) error
	SearchProductByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	CreateStockMove(ctx context.Context, move models.StockMove) error
	SetQuantity(ctx context.Context, productID, quantity int) error
	Inventory(ctx context.Context, limit int) ([]models.Product, error)
}

// ConfigStore is the protected storage the client reads its connection
// record from. Implemented by the credential store.
type ConfigStore interface {
	Load(ctx context.Context) (models.ConnectionConfig, bool, error)
	Save(ctx context.Context, conn models.ConnectionConfig) error
}

// APIClient is a resty-backed implementation of Client. It owns the single
// authenticated session for the running instance; the session token lives in
// memory only and is replaced whenever Authenticate runs.
type APIClient struct {
	cfg   config.OdooConfig
	store ConfigStore
	log   *zap.Logger

	mu        sync.Mutex
	conn      *models.ConnectionConfig
	rest      *resty.Client
	sessionID string
}

// NewClient builds an Odoo client. The connection record is not loaded here;
// call LoadConfig or SaveConfig before any remote operation.
func NewClient(cfg config.OdooConfig, store ConfigStore, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIClient{
		cfg:   cfg,
		store: store,
		log:   logger,
	}
}

// LoadConfig pulls the persisted connection record into memory. The boolean
// reports whether a record exists; no network call is made.
func (c *APIClient) LoadConfig(ctx context.Context) (bool, error) {
	conn, ok, err := c.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load odoo config: %w", err)
	}
	if !ok {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.arm(conn)
	return true, nil
}

// SaveConfig persists the connection record wholesale and arms the client
// with it. Any previous session is discarded since the credentials changed.
func (c *APIClient) SaveConfig(ctx context.Context, conn models.ConnectionConfig) error {
	if err := c.store.Save(ctx, conn); err != nil {
		return fmt.Errorf("save odoo config: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.arm(conn)
	return nil
}

// IsConfigured reports whether a connection record is armed.
func (c *APIClient) IsConfigured() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// arm installs a connection record and rebuilds the HTTP client for its base
// URL. Caller must hold c.mu.
func (c *APIClient) arm(conn models.ConnectionConfig) {
	c.conn = &conn
	c.sessionID = ""
	c.rest = resty.New().
		SetBaseURL(strings.TrimSuffix(conn.URL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
}

// Authenticate opens a session against /web/session/authenticate and stores
// the returned token in memory. Idempotent: a prior token is simply replaced.
func (c *APIClient) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticateLocked(ctx)
}

func (c *APIClient) authenticateLocked(ctx context.Context) error {
	if c.conn == nil {
		return ErrConfigMissing
	}

	c.sessionID = ""

	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: map[string]any{
			"db":       c.conn.Database,
			"login":    c.conn.Username,
			"password": c.conn.Password,
		},
		ID: time.Now().UnixMilli(),
	}

	envelope := new(rpcResponse)
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(envelope).
		Post("/web/session/authenticate")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("%w: http status %d", ErrAuthFailed, resp.StatusCode())
	}
	if envelope.Error != nil {
		return fmt.Errorf("%w: %s", ErrAuthFailed, envelope.Error.Message)
	}

	var result authResult
	if len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, &result); err != nil {
			return fmt.Errorf("%w: decode auth result: %w", ErrAuthFailed, err)
		}
	}
	if result.UID == 0 {
		return fmt.Errorf("%w: credentials rejected", ErrAuthFailed)
	}

	c.sessionID = result.SessionID
	c.log.Info("odoo session opened", zap.Int("uid", result.UID))
	return nil
}

// session returns the armed client and token, authenticating first when no
// session is active. This is the check-session/authenticate-if-absent gate
// in front of every call_kw operation.
func (c *APIClient) session(ctx context.Context) (*resty.Client, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, "", ErrConfigMissing
	}
	if c.sessionID == "" {
		if err := c.authenticateLocked(ctx); err != nil {
			return nil, "", err
		}
	}
	return c.rest, c.sessionID, nil
}

// callKW issues a /web/dataset/call_kw request and decodes its result into
// out when out is non-nil.
func (c *APIClient) callKW(ctx context.Context, model, method string, args []any, kwargs any, out any) error {
	rest, sessionID, err := c.session(ctx)
	if err != nil {
		return err
	}

	if kwargs == nil {
		kwargs = map[string]any{}
	}

	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: callKWParams{
			Model:  model,
			Method: method,
			Args:   args,
			Kwargs: kwargs,
		},
		ID: time.Now().UnixMilli(),
	}

	envelope := new(rpcResponse)
	resp, err := rest.R().
		SetContext(ctx).
		SetHeader("Cookie", "session_id="+sessionID).
		SetBody(payload).
		SetResult(envelope).
		Post("/web/dataset/call_kw")
	if err != nil {
		return fmt.Errorf("call %s.%s: %w", model, method, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("call %s.%s: http status %d", model, method, resp.StatusCode())
	}
	if envelope.Error != nil {
		return fmt.Errorf("call %s.%s: rpc error %d: %s", model, method, envelope.Error.Code, envelope.Error.Message)
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("call %s.%s: decode result: %w", model, method, err)
		}
	}
	return nil
}

// SearchProductByBarcode fetches the first product matching the barcode
// exactly. ErrNotFound means the lookup succeeded with zero rows, which is
// distinct from a transport or protocol failure.
func (c *APIClient) SearchProductByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	var records []productRecord
	err := c.callKW(ctx, "product.product", "search_read",
		[]any{[]any{[]any{"barcode", "=", barcode}}},
		map[string]any{"fields": productFields},
		&records)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: barcode %s", ErrNotFound, barcode)
	}

	product := records[0].toProduct()
	return &product, nil
}

// CreateStockMove creates a stock.picking with a single nested move line.
// Inbound moves go suppliers to stock, everything else stock to customers;
// the two endpoint pairs come from configuration and are never equal.
func (c *APIClient) CreateStockMove(ctx context.Context, move models.StockMove) error {
	pickingType := c.cfg.PickingTypeOutID
	srcLocation := c.cfg.StockLocationID
	dstLocation := c.cfg.CustomerLocationID
	if move.Type == models.MovementIn {
		pickingType = c.cfg.PickingTypeInID
		srcLocation = c.cfg.SupplierLocationID
		dstLocation = c.cfg.StockLocationID
	}

	picking := map[string]any{
		"picking_type_id":  pickingType,
		"location_id":      srcLocation,
		"location_dest_id": dstLocation,
		"move_lines": []any{[]any{0, 0, map[string]any{
			"product_id":       move.ProductID,
			"product_uom_qty":  move.Quantity,
			"product_uom":      c.cfg.ProductUOMID,
			"name":             move.ProductName,
			"location_id":      srcLocation,
			"location_dest_id": dstLocation,
		}}},
	}

	var pickingID int
	if err := c.callKW(ctx, "stock.picking", "create", []any{picking}, nil, &pickingID); err != nil {
		return err
	}
	if pickingID == 0 {
		return fmt.Errorf("create stock.picking: server returned no id")
	}

	c.log.Info("stock move created",
		zap.Int("picking_id", pickingID),
		zap.String("type", string(move.Type)),
		zap.Int("product_id", move.ProductID),
		zap.Int("quantity", move.Quantity))
	return nil
}

// SetQuantity resets a product's on-hand quantity at the stock location by
// creating a stock.quant record.
func (c *APIClient) SetQuantity(ctx context.Context, productID, quantity int) error {
	quant := map[string]any{
		"product_id":  productID,
		"location_id": c.cfg.StockLocationID,
		"quantity":    quantity,
	}

	var quantID int
	if err := c.callKW(ctx, "stock.quant", "create", []any{quant}, nil, &quantID); err != nil {
		return err
	}
	if quantID == 0 {
		return fmt.Errorf("create stock.quant: server returned no id")
	}
	return nil
}

// Inventory lists up to limit products in the remote's default order. A nil
// error with an empty slice means the warehouse really is empty.
func (c *APIClient) Inventory(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = c.cfg.InventoryLimit
	}

	var records []productRecord
	err := c.callKW(ctx, "product.product", "search_read",
		[]any{[]any{}},
		map[string]any{"fields": productFields, "limit": limit},
		&records)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.toProduct())
	}
	return products, nil
}

func (r productRecord) toProduct() models.Product {
	return models.Product{
		ID:                r.ID,
		Name:              r.Name,
		Barcode:           string(r.Barcode),
		Quantity:          int(r.QtyAvailable),
		InternalReference: string(r.DefaultCode),
	}
}
