package models

import (
	"fmt"
	"time"
)

// MovementType enumerates the supported stock movement directions.
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
	MovementTransfer   MovementType = "transfer"
)

// ParseMovementType validates a raw movement type string.
func ParseMovementType(raw string) (MovementType, error) {
	switch MovementType(raw) {
	case MovementIn, MovementOut, MovementAdjustment, MovementTransfer:
		return MovementType(raw), nil
	default:
		return "", fmt.Errorf("unknown movement type %q", raw)
	}
}

// StockMove describes a single stock movement to be submitted to Odoo.
// Submitted exactly once per confirmed scan; never retried automatically.
type StockMove struct {
	ProductID   int          `json:"product_id"`
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity"`
	Type        MovementType `json:"type"`
	Location    string       `json:"location"`
	Timestamp   time.Time    `json:"timestamp"`
	Barcode     string       `json:"barcode,omitempty"`
	Reason      string       `json:"reason,omitempty"`
	Reference   string       `json:"reference,omitempty"`
}

// Validate checks the fields required before submission.
func (m StockMove) Validate() error {
	if m.ProductID <= 0 {
		return fmt.Errorf("product_id must be positive")
	}
	if m.ProductName == "" {
		return fmt.Errorf("product_name is required")
	}
	if m.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if _, err := ParseMovementType(string(m.Type)); err != nil {
		return err
	}
	return nil
}
