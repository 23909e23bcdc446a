package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fares12358/erb-system-backend/internal/models"
)

// ErrInvalidItem is returned when a line item fails validation (negative
// price, non-positive quantity, or empty name).
var ErrInvalidItem = errors.New("invalid line item")

// Revalue recomputes every derived field of the invoice from its items and
// paid amount: per-item subtotals, total, remaining amount and status. It is
// a pure transform of the invoice's own fields, idempotent, and must run on
// every persist so derived values are never trusted from caller input.
//
// Status tie-break: paidAmount equal to total resolves to paid, and the
// remaining amount is clamped to zero whenever paidAmount covers the total.
func Revalue(inv *models.Invoice) {
	total := 0.0
	for i := range inv.Items {
		inv.Items[i].Subtotal = inv.Items[i].Price * float64(inv.Items[i].Quantity)
		total += inv.Items[i].Subtotal
	}
	inv.Total = total
	inv.RemainingAmount = total - inv.PaidAmount

	switch {
	case inv.PaidAmount == 0:
		inv.Status = models.StatusUnpaid
	case inv.PaidAmount >= total:
		inv.Status = models.StatusPaid
		inv.RemainingAmount = 0
	default:
		inv.Status = models.StatusPartial
	}
}

// ValidateItems rejects items the valuation engine must never see:
// negative prices, non-positive quantities, empty names.
func ValidateItems(items []models.LineItem) error {
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: item %d has no name", ErrInvalidItem, i)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %q has negative price", ErrInvalidItem, item.Name)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %q has non-positive quantity", ErrInvalidItem, item.Name)
		}
	}
	return nil
}

// NewInvoiceNumber synthesizes a human-readable invoice number. The
// millisecond timestamp keeps numbers roughly ordered; the random suffix
// distinguishes invoices created in the same instant. Uniqueness is still
// enforced by the unique index on invoice_number, with the insert retried
// under a fresh number on collision.
func NewInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("INV-%d-%s", now.UnixMilli(), suffix)
}
