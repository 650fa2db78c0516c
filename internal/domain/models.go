package domain

import "time"

// Enumerations
const (
	DocTypeEstimate DocType = "estimate"
	DocTypeInvoice  DocType = "invoice"

	StatusDraft    DocStatus = "draft"
	StatusSent     DocStatus = "sent"
	StatusViewed   DocStatus = "viewed"
	StatusSigned   DocStatus = "signed"
	StatusDeclined DocStatus = "declined"
	StatusPartial  DocStatus = "partial"
	StatusPaid     DocStatus = "paid"
	StatusOverdue  DocStatus = "overdue"

	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDebitCard    PaymentMethod = "debit_card"

	NotificationInfo    NotificationType = "info"
	NotificationSigned  NotificationType = "document_signed"
	NotificationPayment NotificationType = "payment_received"
	NotificationViewed  NotificationType = "document_viewed"
)

type DocType string
type DocStatus string
type PaymentMethod string
type NotificationType string

// ContactSnapshot is the client or company contact captured on a document at
// creation time. It is a copy, not a live reference to a client row.
type ContactSnapshot struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// LineItem is one billable unit within a document. Position is the ordinal
// within the parent; line items have no lifecycle of their own.
type LineItem struct {
	Position    int
	Description string
	Quantity    float64
	UnitPrice   int64
}

// Document is an estimate or an invoice. Amount and UnitPrice are in cents.
type Document struct {
	ID          int64
	OwnerUserID int64
	Type        DocType
	Status      DocStatus
	Number      string
	Client      ContactSnapshot
	Company     ContactSnapshot
	Title       string
	Description string
	IssuedAt    time.Time
	DueAt       *time.Time
	Amount      int64
	TaxRate     float64
	Notes       string
	Terms       string
	LineItems   []LineItem
	Signature   *string
	Signed      bool
	EstimateID  *int64
	ShareToken  string
	SearchKey   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Payment is money applied against an invoice. Append-only except for
// reverting the most recent one.
type Payment struct {
	ID          int64
	InvoiceID   int64
	OwnerUserID int64
	Amount      int64
	PaidAt      time.Time
	Method      PaymentMethod
	CreatedAt   time.Time
}

// Client is a directory entry. Stored is false when the entry exists only
// because documents reference its email.
type Client struct {
	ID            int64
	Name          string
	Email         string
	Phone         string
	Address       string
	TotalBilled   int64
	DocumentCount int
	Stored        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Notification struct {
	ID          int64
	OwnerUserID *int64
	Title       string
	Message     string
	Type        NotificationType
	CreatedAt   time.Time
	ReadAt      *time.Time
}

// Settings is the per-user company profile stamped onto new documents and
// rendered into outgoing emails.
type Settings struct {
	OwnerUserID  int64
	CompanyName  string
	Address      string
	Phone        string
	Email        string
	LogoURL      string
	TaxID        string
	CurrencyCode string
	DefaultTerms string
	UpdatedAt    time.Time
}

type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Address      string
	CompanyName  string
	IsGoogle     bool
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}
