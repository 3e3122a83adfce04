package models

import "time"

// ScanEntry is one completed transaction in the local scan ledger. Entries
// are immutable once written; the ledger only ever deletes them.
type ScanEntry struct {
	ID          string       `json:"id"`
	Barcode     string       `json:"barcode"`
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity"`
	Type        MovementType `json:"type"`
	Timestamp   time.Time    `json:"timestamp"`
	Location    string       `json:"location,omitempty"`
	Synced      bool         `json:"synced"`
}

// ConnectionConfig is the Odoo connection record kept in protected storage.
// It is only ever replaced wholesale, never partially updated.
type ConnectionConfig struct {
	URL      string `json:"url"`
	Database string `json:"db"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Complete reports whether all fields required for authentication are set.
func (c ConnectionConfig) Complete() bool {
	return c.URL != "" && c.Database != "" && c.Username != "" && c.Password != ""
}
