package scanner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockscan/internal/domain/models"
	"github.com/mamadbah2/stockscan/internal/service/scanner"
	"github.com/mamadbah2/stockscan/pkg/clients/odoo"
)

var (
	widget   = models.Product{ID: 1, Name: "Widget", Barcode: "123", Quantity: 10}
	gadget   = models.Product{ID: 2, Name: "Gadget", Barcode: "456", Quantity: 5}
	sprocket = models.Product{ID: 3, Name: "Sprocket", Barcode: "789", Quantity: 2}
)

func newTestSession(client *fakeClient, ledger *fakeLedger) *scanner.Session {
	return scanner.NewSession(client, ledger, testOdooConfig(), nil)
}

func scanAndConfirm(t *testing.T, session *scanner.Session, barcode string, qty int) {
	t.Helper()
	outcome, err := session.Scan(context.Background(), barcode)
	require.NoError(t, err)
	require.Equal(t, scanner.ScanNew, outcome.Status)
	_, err = session.Confirm(qty)
	require.NoError(t, err)
}

func TestSession_ScanUnknownBarcode(t *testing.T) {
	session := newTestSession(newFakeClient(widget), &fakeLedger{})

	_, err := session.Scan(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, odoo.ErrNotFound)

	// A failed lookup leaves no pending decision; scanning continues.
	outcome, err := session.Scan(context.Background(), widget.Barcode)
	require.NoError(t, err)
	assert.Equal(t, scanner.ScanNew, outcome.Status)
}

func TestSession_ScanWhileDecisionPending(t *testing.T) {
	session := newTestSession(newFakeClient(widget, gadget), &fakeLedger{})

	_, err := session.Scan(context.Background(), widget.Barcode)
	require.NoError(t, err)

	_, err = session.Scan(context.Background(), gadget.Barcode)
	assert.ErrorIs(t, err, scanner.ErrDecisionPending)

	// Cancelling unblocks the scanner.
	session.Cancel()
	_, err = session.Scan(context.Background(), gadget.Barcode)
	require.NoError(t, err)
}

func TestSession_ConfirmClampsQuantity(t *testing.T) {
	session := newTestSession(newFakeClient(widget), &fakeLedger{})

	_, err := session.Scan(context.Background(), widget.Barcode)
	require.NoError(t, err)

	item, err := session.Confirm(0)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestSession_ConfirmWithoutPendingScan(t *testing.T) {
	session := newTestSession(newFakeClient(), &fakeLedger{})

	_, err := session.Confirm(1)
	assert.ErrorIs(t, err, scanner.ErrNothingPending)
}

func TestSession_DuplicateUpdateReplacesQuantity(t *testing.T) {
	session := newTestSession(newFakeClient(widget), &fakeLedger{})
	scanAndConfirm(t, session, widget.Barcode, 2)

	outcome, err := session.Scan(context.Background(), widget.Barcode)
	require.NoError(t, err)
	require.Equal(t, scanner.ScanDuplicate, outcome.Status)
	require.NotNil(t, outcome.Existing)
	assert.Equal(t, 2, outcome.Existing.Quantity)

	item, err := session.ResolveDuplicate(true, 5)
	require.NoError(t, err)
	require.NotNil(t, item)

	items := session.Items()
	require.Len(t, items, 1)
	// Replaced, not summed, and still a single item for the barcode.
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, widget.Barcode, items[0].Product.Barcode)
}

func TestSession_DuplicateCancelKeepsBatch(t *testing.T) {
	session := newTestSession(newFakeClient(widget), &fakeLedger{})
	scanAndConfirm(t, session, widget.Barcode, 2)

	_, err := session.Scan(context.Background(), widget.Barcode)
	require.NoError(t, err)

	item, err := session.ResolveDuplicate(false, 9)
	require.NoError(t, err)
	assert.Nil(t, item)

	items := session.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestSession_RemoveReindexes(t *testing.T) {
	session := newTestSession(newFakeClient(widget, gadget, sprocket), &fakeLedger{})
	scanAndConfirm(t, session, widget.Barcode, 1)
	scanAndConfirm(t, session, gadget.Barcode, 1)
	scanAndConfirm(t, session, sprocket.Barcode, 1)

	session.Remove(gadget.Barcode)

	items := session.Items()
	require.Len(t, items, 2)
	assert.Equal(t, widget.Barcode, items[0].Product.Barcode)
	assert.Equal(t, sprocket.Barcode, items[1].Product.Barcode)

	// The survivor is still addressable as a duplicate.
	outcome, err := session.Scan(context.Background(), sprocket.Barcode)
	require.NoError(t, err)
	assert.Equal(t, scanner.ScanDuplicate, outcome.Status)
}

func TestSession_RemoveDuringDuplicateDecision(t *testing.T) {
	session := newTestSession(newFakeClient(widget, gadget), &fakeLedger{})
	scanAndConfirm(t, session, widget.Barcode, 2)
	scanAndConfirm(t, session, gadget.Barcode, 3)

	outcome, err := session.Scan(context.Background(), widget.Barcode)
	require.NoError(t, err)
	require.Equal(t, scanner.ScanDuplicate, outcome.Status)

	// The decided-upon item disappears while the decision is open.
	session.Remove(widget.Barcode)

	_, err = session.ResolveDuplicate(true, 5)
	assert.ErrorIs(t, err, scanner.ErrNothingPending)

	// The survivor was not rewritten by the stale decision.
	items := session.Items()
	require.Len(t, items, 1)
	assert.Equal(t, gadget.Barcode, items[0].Product.Barcode)
	assert.Equal(t, 3, items[0].Quantity)

	// Removal also cleared the pending slot, so scanning resumes.
	outcome, err = session.Scan(context.Background(), widget.Barcode)
	require.NoError(t, err)
	assert.Equal(t, scanner.ScanNew, outcome.Status)
}

func TestSession_KeyedOnScannedBarcode(t *testing.T) {
	// The server echoes its canonical barcode ("123"), but the batch must
	// track the string that was actually scanned.
	client := newFakeClient(widget)
	client.products["0000123"] = widget
	session := newTestSession(client, &fakeLedger{})

	_, err := session.Scan(context.Background(), "0000123")
	require.NoError(t, err)
	item, err := session.Confirm(2)
	require.NoError(t, err)
	assert.Equal(t, "0000123", item.Barcode)
	assert.Equal(t, widget.Barcode, item.Product.Barcode)

	// Re-scanning the same string is the duplicate, whatever the server
	// said the barcode was.
	outcome, err := session.Scan(context.Background(), "0000123")
	require.NoError(t, err)
	assert.Equal(t, scanner.ScanDuplicate, outcome.Status)
	session.Cancel()

	// The canonical form is a distinct key.
	outcome, err = session.Scan(context.Background(), widget.Barcode)
	require.NoError(t, err)
	assert.Equal(t, scanner.ScanNew, outcome.Status)
}

func TestSession_ProcessEmptyBatch(t *testing.T) {
	session := newTestSession(newFakeClient(), &fakeLedger{})

	_, err := session.Process(context.Background(), models.MovementOut, "")
	assert.ErrorIs(t, err, scanner.ErrEmptyBatch)
}

func TestSession_ProcessAllSucceed(t *testing.T) {
	client := newFakeClient(widget, gadget)
	ledger := &fakeLedger{}
	session := newTestSession(client, ledger)
	scanAndConfirm(t, session, widget.Barcode, 2)
	scanAndConfirm(t, session, gadget.Barcode, 3)

	report, err := session.Process(context.Background(), models.MovementOut, "")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Empty(t, report.FailedItems)
	assert.True(t, report.AllSucceeded())

	// Submissions ran in accumulation order.
	moves := client.submittedMoves()
	require.Len(t, moves, 2)
	assert.Equal(t, widget.ID, moves[0].ProductID)
	assert.Equal(t, gadget.ID, moves[1].ProductID)
	assert.Equal(t, models.MovementOut, moves[0].Type)
	assert.Equal(t, "WH/Stock", moves[0].Location)

	entries, err := ledger.ListScans(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// The batch is discarded after reporting.
	assert.Empty(t, session.Items())
}

func TestSession_ProcessPartialFailure(t *testing.T) {
	client := newFakeClient(widget, gadget, sprocket)
	client.failNames[gadget.Name] = true
	ledger := &fakeLedger{}
	session := newTestSession(client, ledger)
	scanAndConfirm(t, session, widget.Barcode, 1)
	scanAndConfirm(t, session, gadget.Barcode, 1)
	scanAndConfirm(t, session, sprocket.Barcode, 1)

	report, err := session.Process(context.Background(), models.MovementIn, "")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, []string{gadget.Name}, report.FailedItems)
	assert.False(t, report.AllSucceeded())

	// Only the accepted items reached the ledger.
	entries, err := ledger.ListScans(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, sprocket.Name, entries[0].ProductName)
	assert.Equal(t, widget.Name, entries[1].ProductName)
	for _, e := range entries {
		assert.True(t, e.Synced)
	}
}

func TestSession_ProcessTotalFailureStillDiscards(t *testing.T) {
	client := newFakeClient(widget)
	client.failNames[widget.Name] = true
	ledger := &fakeLedger{}
	session := newTestSession(client, ledger)
	scanAndConfirm(t, session, widget.Barcode, 1)

	report, err := session.Process(context.Background(), models.MovementOut, "")
	require.NoError(t, err)
	assert.Zero(t, report.SuccessCount)
	assert.Equal(t, []string{widget.Name}, report.FailedItems)

	entries, err := ledger.ListScans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
	// No partial retry: the failed subset is gone with the session.
	assert.Empty(t, session.Items())
}
