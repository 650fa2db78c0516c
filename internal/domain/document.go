package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DueDays is the default payment window applied to invoices.
const DueDays = 30

// DefaultTerms is stamped onto invoices that carry no terms of their own.
const DefaultTerms = "Net 30"

// FormatNumber renders the human-facing document number for the nth document
// of a type, e.g. EST-001, INV-042.
func FormatNumber(t DocType, n int64) string {
	prefix := "INV"
	if t == DocTypeEstimate {
		prefix = "EST"
	}
	return fmt.Sprintf("%s-%03d", prefix, n)
}

// SearchKey builds the denormalized lowercase search string for a document.
func SearchKey(clientName, title, number string) string {
	return strings.ToLower(strings.TrimSpace(clientName + " " + title + " " + number))
}

// TotalAmount sums quantity times unit price over the line items, in cents.
func TotalAmount(items []LineItem) int64 {
	var total int64
	for _, it := range items {
		total += int64(math.Round(it.Quantity * float64(it.UnitPrice)))
	}
	return total
}

// StatusForPaidTotal derives an invoice status from its accumulated payments.
// The result depends only on the totals, never on the order the payments were
// recorded or reverted in. A zero-amount invoice counts as paid once any
// payment lands, but never before.
func StatusForPaidTotal(paidTotal, amount int64, signed bool) DocStatus {
	switch {
	case paidTotal >= amount && paidTotal > 0:
		return StatusPaid
	case paidTotal > 0:
		return StatusPartial
	case signed:
		return StatusSent
	default:
		return StatusDraft
	}
}

// InvoiceFromEstimate synthesizes the invoice spawned when an estimate is
// signed. The invoice carries the estimate's client, company, project and
// financial fields, is issued now with a 30-day due date, and is considered
// pre-signed because its source was signed. The caller assigns number, token
// and identity.
func InvoiceFromEstimate(est *Document, now time.Time) *Document {
	due := now.AddDate(0, 0, DueDays)
	terms := est.Terms
	if terms == "" {
		terms = DefaultTerms
	}
	estID := est.ID
	inv := &Document{
		OwnerUserID: est.OwnerUserID,
		Type:        DocTypeInvoice,
		Status:      StatusSent,
		Client:      est.Client,
		Company:     est.Company,
		Title:       est.Title,
		Description: est.Description,
		IssuedAt:    now,
		DueAt:       &due,
		Amount:      est.Amount,
		TaxRate:     est.TaxRate,
		Notes:       est.Notes,
		Terms:       terms,
		LineItems:   copyLineItems(est.LineItems),
		Signed:      true,
		EstimateID:  &estID,
	}
	if est.Signature != nil {
		sig := *est.Signature
		inv.Signature = &sig
	}
	return inv
}

// DuplicateOf produces a fresh draft copy of a document: lifecycle fields are
// reset, content fields are kept. A due date, if the source had one, is
// recomputed to now plus the default window.
func DuplicateOf(src *Document, now time.Time) *Document {
	dup := &Document{
		OwnerUserID: src.OwnerUserID,
		Type:        src.Type,
		Status:      StatusDraft,
		Client:      src.Client,
		Company:     src.Company,
		Title:       src.Title,
		Description: src.Description,
		IssuedAt:    now,
		Amount:      src.Amount,
		TaxRate:     src.TaxRate,
		Notes:       src.Notes,
		Terms:       src.Terms,
		LineItems:   copyLineItems(src.LineItems),
	}
	if src.DueAt != nil {
		due := now.AddDate(0, 0, DueDays)
		dup.DueAt = &due
	}
	return dup
}

func copyLineItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// ValidMethod reports whether m is a recognized payment method.
func ValidMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentCreditCard, PaymentDebitCard:
		return true
	}
	return false
}

// NormalizeEmail folds an email address for use as a client directory key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
