package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/repository"
)

var (
	ErrInvalidAmount = errors.New("payment amount must be positive")
	ErrInvalidMethod = errors.New("unknown payment method")
)

//go:generate mockgen -source=payment_service.go -destination=payment_service_mock.go -package=service
type PaymentStore interface {
	Record(ctx context.Context, p *domain.Payment) (domain.DocStatus, error)
	RevertLast(ctx context.Context, ownerUserID, invoiceID int64) (*domain.Payment, domain.DocStatus, error)
	ListByInvoice(ctx context.Context, ownerUserID, invoiceID int64) ([]domain.Payment, error)
}

// PaymentService records and reverts payments against invoices. The invoice
// status after either operation is derived from the payment total alone, so
// the same total always yields the same status no matter how it was reached.
type PaymentService struct {
	Store         PaymentStore
	Notifications Notifier
	Logger        *slog.Logger
}

type RecordPaymentInput struct {
	Amount int64
	PaidAt time.Time
	Method domain.PaymentMethod
}

func (s *PaymentService) Record(ctx context.Context, ownerUserID, invoiceID int64, in RecordPaymentInput) (*domain.Payment, domain.DocStatus, error) {
	if in.Amount <= 0 {
		return nil, "", ErrInvalidAmount
	}
	if !domain.ValidMethod(in.Method) {
		return nil, "", ErrInvalidMethod
	}
	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	p := &domain.Payment{
		InvoiceID:   invoiceID,
		OwnerUserID: ownerUserID,
		Amount:      in.Amount,
		PaidAt:      paidAt,
		Method:      in.Method,
	}
	status, err := s.Store.Record(ctx, p)
	if err != nil {
		return nil, "", fmt.Errorf("record payment: %w", err)
	}
	paymentsRecorded.Inc()
	s.notify(ctx, ownerUserID, "Payment received",
		fmt.Sprintf("A payment of %d was recorded, invoice is now %s", p.Amount, status))
	return p, status, nil
}

// RevertLast removes the newest payment for the invoice. With no payments on
// record it is a no-op: nothing is deleted and the status is untouched.
func (s *PaymentService) RevertLast(ctx context.Context, ownerUserID, invoiceID int64) (*domain.Payment, domain.DocStatus, error) {
	p, status, err := s.Store.RevertLast(ctx, ownerUserID, invoiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNoPayments) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return p, status, nil
}

func (s *PaymentService) List(ctx context.Context, ownerUserID, invoiceID int64) ([]domain.Payment, error) {
	return s.Store.ListByInvoice(ctx, ownerUserID, invoiceID)
}

func (s *PaymentService) notify(ctx context.Context, ownerUserID int64, title, message string) {
	if s.Notifications == nil {
		return
	}
	if _, err := s.Notifications.Create(ctx, repository.CreateNotificationInput{
		OwnerUserID: ownerUserID,
		Title:       title,
		Message:     message,
		Type:        domain.NotificationPayment,
	}); err != nil {
		s.Logger.Error("create notification", "err", err)
	}
}
