package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/email"
	"github.com/ozytarget/invozy-backend/internal/repository"
)

var (
	ErrInvalidDocType = errors.New("invalid document type")
	ErrAlreadySigned  = errors.New("estimate already signed")
	ErrEmptySignature = errors.New("signature payload is empty")
)

//go:generate mockgen -source=document_service.go -destination=document_service_mock.go -package=service
type DocumentStore interface {
	Create(ctx context.Context, doc *domain.Document) error
	Get(ctx context.Context, ownerUserID, id int64) (*domain.Document, error)
	GetByShareToken(ctx context.Context, token string) (*domain.Document, error)
	List(ctx context.Context, ownerUserID int64, f repository.ListFilter) ([]*domain.Document, error)
	Update(ctx context.Context, ownerUserID, id int64, in repository.UpdateDocumentInput) (*domain.Document, error)
	Delete(ctx context.Context, ownerUserID, id int64) error
	SignEstimate(ctx context.Context, est *domain.Document, invoice *domain.Document) error
	SignInvoice(ctx context.Context, ownerUserID, id int64, signature string) error
	MarkSent(ctx context.Context, ownerUserID, id int64) (bool, error)
	MarkViewedByToken(ctx context.Context, token string) (bool, error)
	DeclineByToken(ctx context.Context, token string) (bool, error)
	RevertToDraft(ctx context.Context, ownerUserID, id int64) error
}

type Notifier interface {
	Create(ctx context.Context, in repository.CreateNotificationInput) (*domain.Notification, error)
}

type Mailer interface {
	SendDocument(in email.DocumentEmail) error
}

// DocumentService owns the estimate/invoice lifecycle: numbering, signing,
// duplication, and the public share surface.
type DocumentService struct {
	Store         DocumentStore
	Notifications Notifier
	Mail          Mailer
	PublicBaseURL string
	Logger        *slog.Logger
}

type CreateDocumentInput struct {
	Type        domain.DocType
	Client      domain.ContactSnapshot
	Company     domain.ContactSnapshot
	Title       string
	Description string
	IssuedAt    time.Time
	DueAt       *time.Time
	TaxRate     float64
	Notes       string
	Terms       string
	LineItems   []domain.LineItem
}

// Create builds and persists a new draft. The amount is always recomputed
// from the line items here, never trusted from the caller.
func (s *DocumentService) Create(ctx context.Context, ownerUserID int64, in CreateDocumentInput) (*domain.Document, error) {
	if in.Type != domain.DocTypeEstimate && in.Type != domain.DocTypeInvoice {
		return nil, ErrInvalidDocType
	}
	issued := in.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	doc := &domain.Document{
		OwnerUserID: ownerUserID,
		Type:        in.Type,
		Status:      domain.StatusDraft,
		Client:      in.Client,
		Company:     in.Company,
		Title:       in.Title,
		Description: in.Description,
		IssuedAt:    issued,
		DueAt:       in.DueAt,
		Amount:      domain.TotalAmount(in.LineItems),
		TaxRate:     in.TaxRate,
		Notes:       in.Notes,
		Terms:       in.Terms,
		LineItems:   in.LineItems,
		ShareToken:  uuid.NewString(),
	}
	if err := s.Store.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	documentsCreated.WithLabelValues(string(doc.Type)).Inc()
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, ownerUserID, id int64) (*domain.Document, error) {
	return s.Store.Get(ctx, ownerUserID, id)
}

func (s *DocumentService) List(ctx context.Context, ownerUserID int64, f repository.ListFilter) ([]*domain.Document, error) {
	return s.Store.List(ctx, ownerUserID, f)
}

func (s *DocumentService) Update(ctx context.Context, ownerUserID, id int64, in repository.UpdateDocumentInput) (*domain.Document, error) {
	return s.Store.Update(ctx, ownerUserID, id, in)
}

func (s *DocumentService) Delete(ctx context.Context, ownerUserID, id int64) error {
	return s.Store.Delete(ctx, ownerUserID, id)
}

// Duplicate copies a document into a fresh draft: new number, new share
// token, reset lifecycle fields, due date pushed out by the default window.
func (s *DocumentService) Duplicate(ctx context.Context, ownerUserID, id int64) (*domain.Document, error) {
	src, err := s.Store.Get(ctx, ownerUserID, id)
	if err != nil {
		return nil, err
	}
	dup := domain.DuplicateOf(src, time.Now())
	dup.ShareToken = uuid.NewString()
	if err := s.Store.Create(ctx, dup); err != nil {
		return nil, fmt.Errorf("duplicate document: %w", err)
	}
	documentsCreated.WithLabelValues(string(dup.Type)).Inc()
	return dup, nil
}

// Sign applies a signature. Signing an estimate is a one-way transition that
// spawns exactly one linked invoice, atomically with the estimate update; the
// new invoice is returned. Signing an invoice marks it sent and returns nil.
func (s *DocumentService) Sign(ctx context.Context, ownerUserID, id int64, signature string) (*domain.Document, error) {
	if signature == "" {
		return nil, ErrEmptySignature
	}
	doc, err := s.Store.Get(ctx, ownerUserID, id)
	if err != nil {
		return nil, err
	}

	if doc.Type == domain.DocTypeInvoice {
		if err := s.Store.SignInvoice(ctx, ownerUserID, id, signature); err != nil {
			return nil, err
		}
		documentsSigned.WithLabelValues(string(domain.DocTypeInvoice)).Inc()
		return nil, nil
	}

	if doc.Signed {
		return nil, ErrAlreadySigned
	}
	doc.Signature = &signature
	invoice := domain.InvoiceFromEstimate(doc, time.Now())
	invoice.ShareToken = uuid.NewString()
	if err := s.Store.SignEstimate(ctx, doc, invoice); err != nil {
		if errors.Is(err, repository.ErrAlreadySigned) {
			return nil, ErrAlreadySigned
		}
		return nil, fmt.Errorf("sign estimate: %w", err)
	}
	documentsSigned.WithLabelValues(string(domain.DocTypeEstimate)).Inc()
	s.notify(ctx, ownerUserID, "Estimate signed",
		fmt.Sprintf("%s was signed and invoice %s was created", doc.Number, invoice.Number),
		domain.NotificationSigned)
	return invoice, nil
}

// Send transitions a draft to sent and, when the document carries a client
// email, mails the share link. Any other current status is a silent no-op.
func (s *DocumentService) Send(ctx context.Context, ownerUserID, id int64) (bool, error) {
	doc, err := s.Store.Get(ctx, ownerUserID, id)
	if err != nil {
		return false, err
	}
	sent, err := s.Store.MarkSent(ctx, ownerUserID, id)
	if err != nil {
		return false, err
	}
	if !sent {
		return false, nil
	}
	if s.Mail != nil && doc.Client.Email != "" {
		msg := email.DocumentEmail{
			To:          doc.Client.Email,
			DocType:     string(doc.Type),
			Number:      doc.Number,
			CompanyName: doc.Company.Name,
			URL:         s.ShareURL(doc.ShareToken),
		}
		if err := s.Mail.SendDocument(msg); err != nil {
			// The transition already happened; delivery failure is reported
			// to the log, not the caller.
			s.Logger.Error("send document email", "document", doc.Number, "err", err)
		}
	}
	return true, nil
}

// Shared resolves a document for the unauthenticated share page.
func (s *DocumentService) Shared(ctx context.Context, token string) (*domain.Document, error) {
	return s.Store.GetByShareToken(ctx, token)
}

// RecordView marks a sent document as viewed when its share page is opened.
func (s *DocumentService) RecordView(ctx context.Context, token string) error {
	viewed, err := s.Store.MarkViewedByToken(ctx, token)
	if err != nil {
		return err
	}
	if viewed {
		if doc, err := s.Store.GetByShareToken(ctx, token); err == nil {
			s.notify(ctx, doc.OwnerUserID, "Document viewed",
				fmt.Sprintf("%s was opened by your client", doc.Number),
				domain.NotificationViewed)
		}
	}
	return nil
}

// Decline marks a sent or viewed estimate as declined through its share link.
func (s *DocumentService) Decline(ctx context.Context, token string) (bool, error) {
	return s.Store.DeclineByToken(ctx, token)
}

// RevertToDraft is the escape hatch that force-resets an invoice without
// consulting its payment history.
func (s *DocumentService) RevertToDraft(ctx context.Context, ownerUserID, id int64) error {
	return s.Store.RevertToDraft(ctx, ownerUserID, id)
}

func (s *DocumentService) ShareURL(token string) string {
	return s.PublicBaseURL + "/share/" + token
}

func (s *DocumentService) notify(ctx context.Context, ownerUserID int64, title, message string, t domain.NotificationType) {
	if s.Notifications == nil {
		return
	}
	if _, err := s.Notifications.Create(ctx, repository.CreateNotificationInput{
		OwnerUserID: ownerUserID,
		Title:       title,
		Message:     message,
		Type:        t,
	}); err != nil {
		s.Logger.Error("create notification", "err", err)
	}
}
