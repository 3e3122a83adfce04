package models

import "time"

// BatchItem is one accumulated line in a pending batch. Items live only in
// memory for the duration of a batch session and are keyed by Barcode, the
// string the scanner actually decoded.
type BatchItem struct {
	ID        string    `json:"id"`
	Barcode   string    `json:"barcode"`
	Product   Product   `json:"product"`
	Quantity  int       `json:"quantity"`
	ScannedAt time.Time `json:"scanned_at"`
}

// BatchReport summarizes the outcome of processing a batch. Failed items are
// reported by product name in accumulation order.
type BatchReport struct {
	Total        int      `json:"total"`
	SuccessCount int      `json:"success_count"`
	FailedItems  []string `json:"failed_items,omitempty"`
}

// AllSucceeded reports whether every item was submitted.
func (r BatchReport) AllSucceeded() bool {
	return r.Total > 0 && r.SuccessCount == r.Total
}
