package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Odoo    OdooConfig
	Sync    SyncConfig
	Metrics MetricsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StorageConfig locates the on-device stores.
type StorageConfig struct {
	// DatabasePath is the sqlite file holding the scan ledger and the
	// product snapshot cache.
	DatabasePath string
	// CredentialPath is the sealed file holding the Odoo connection record.
	CredentialPath string
	// Passphrase protects the credential file at rest.
	Passphrase string
}

// OdooConfig carries the deployment-specific Odoo identifiers used when
// building stock pickings. The connection credentials themselves live in the
// credential store, not here.
type OdooConfig struct {
	// Location identifiers: suppliers is the external source for inbound
	// moves, customers the external destination for outbound ones.
	SupplierLocationID int
	StockLocationID    int
	CustomerLocationID int

	PickingTypeInID  int
	PickingTypeOutID int

	// ProductUOMID is the unit-of-measure attached to generated move lines.
	ProductUOMID int

	// DefaultLocation is the human-readable location label recorded on
	// scans when the caller does not provide one.
	DefaultLocation string

	InventoryLimit int
}

// SyncConfig holds the auto-sync scheduler settings.
type SyncConfig struct {
	Enabled      bool
	CronSchedule string
}

// MetricsConfig tunes dashboard aggregation.
type MetricsConfig struct {
	LowStockThreshold int
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from
		// the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Storage: StorageConfig{
			DatabasePath:   getenvWithDefault("STOCKSCAN_DB_PATH", "./stockscan.db"),
			CredentialPath: getenvWithDefault("STOCKSCAN_CREDENTIAL_PATH", "./odoo_config.sealed"),
			Passphrase:     os.Getenv("STOCKSCAN_STORE_PASSPHRASE"),
		},
		Odoo: OdooConfig{
			SupplierLocationID: getenvIntWithDefault("ODOO_LOCATION_SUPPLIERS_ID", 8),
			StockLocationID:    getenvIntWithDefault("ODOO_LOCATION_STOCK_ID", 12),
			CustomerLocationID: getenvIntWithDefault("ODOO_LOCATION_CUSTOMERS_ID", 9),
			PickingTypeInID:    getenvIntWithDefault("ODOO_PICKING_TYPE_IN_ID", 1),
			PickingTypeOutID:   getenvIntWithDefault("ODOO_PICKING_TYPE_OUT_ID", 2),
			ProductUOMID:       getenvIntWithDefault("ODOO_PRODUCT_UOM_ID", 1),
			DefaultLocation:    getenvWithDefault("ODOO_DEFAULT_LOCATION", "WH/Stock"),
			InventoryLimit:     getenvIntWithDefault("ODOO_INVENTORY_LIMIT", 100),
		},
		Sync: SyncConfig{
			Enabled:      getenvBool("SYNC_ENABLED"),
			CronSchedule: getenvWithDefault("SYNC_CRON_SCHEDULE", "*/30 * * * *"),
		},
		Metrics: MetricsConfig{
			LowStockThreshold: getenvIntWithDefault("METRICS_LOW_STOCK_THRESHOLD", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Storage.DatabasePath == "" {
		return errors.New("STOCKSCAN_DB_PATH must not be empty")
	}

	if c.Storage.CredentialPath == "" {
		return errors.New("STOCKSCAN_CREDENTIAL_PATH must not be empty")
	}

	if c.Storage.Passphrase == "" {
		return errors.New("STOCKSCAN_STORE_PASSPHRASE must be provided")
	}

	switch {
	case c.Odoo.SupplierLocationID <= 0:
		return errors.New("ODOO_LOCATION_SUPPLIERS_ID must be positive")
	case c.Odoo.StockLocationID <= 0:
		return errors.New("ODOO_LOCATION_STOCK_ID must be positive")
	case c.Odoo.CustomerLocationID <= 0:
		return errors.New("ODOO_LOCATION_CUSTOMERS_ID must be positive")
	case c.Odoo.PickingTypeInID <= 0:
		return errors.New("ODOO_PICKING_TYPE_IN_ID must be positive")
	case c.Odoo.PickingTypeOutID <= 0:
		return errors.New("ODOO_PICKING_TYPE_OUT_ID must be positive")
	}

	// Inbound and outbound moves must traverse the location graph in
	// opposite directions; equal endpoint pairs would conflate them.
	if c.Odoo.SupplierLocationID == c.Odoo.CustomerLocationID {
		return errors.New("supplier and customer locations must differ")
	}

	if c.Odoo.InventoryLimit <= 0 {
		return errors.New("ODOO_INVENTORY_LIMIT must be positive")
	}

	if c.Sync.Enabled && c.Sync.CronSchedule == "" {
		return errors.New("SYNC_CRON_SCHEDULE must be provided when sync is enabled")
	}

	if c.Metrics.LowStockThreshold < 0 {
		return errors.New("METRICS_LOW_STOCK_THRESHOLD must not be negative")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntWithDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string) bool {
	parsed, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return parsed
}
