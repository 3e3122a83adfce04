package models

// Product is a read-only snapshot of an Odoo product variant, fetched on
// demand. The authoritative quantity lives on the server; nothing here is
// cached beyond the current operation except through the snapshot store.
type Product struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Barcode           string `json:"barcode"`
	Quantity          int    `json:"quantity"`
	InternalReference string `json:"internal_reference,omitempty"`
}
