package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/email"
	"github.com/ozytarget/invozy-backend/internal/repository"
	"github.com/ozytarget/invozy-backend/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDocumentService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	svc := &service.DocumentService{Store: store, Logger: discardLogger()}

	var created *domain.Document
	store.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, doc *domain.Document) error {
			created = doc
			return nil
		})

	doc, err := svc.Create(context.Background(), 3, service.CreateDocumentInput{
		Type:   domain.DocTypeEstimate,
		Client: domain.ContactSnapshot{Name: "Acme", Email: "billing@acme.test"},
		Title:  "Deck Rebuild",
		LineItems: []domain.LineItem{
			{Description: "Labor", Quantity: 10, UnitPrice: 7500},
			{Description: "Materials", Quantity: 1, UnitPrice: 25000},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, domain.StatusDraft, doc.Status)
	assert.Equal(t, int64(3), doc.OwnerUserID)
	// Amount is always derived from line items, never taken from the caller.
	assert.Equal(t, int64(100000), doc.Amount)
	assert.NotEmpty(t, doc.ShareToken)
	assert.False(t, doc.IssuedAt.IsZero())
}

func TestDocumentService_Create_InvalidType(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	svc := &service.DocumentService{Store: store, Logger: discardLogger()}

	_, err := svc.Create(context.Background(), 3, service.CreateDocumentInput{Type: "receipt"})
	assert.ErrorIs(t, err, service.ErrInvalidDocType)
}

func TestDocumentService_Duplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	svc := &service.DocumentService{Store: store, Logger: discardLogger()}

	sig := "sig"
	src := &domain.Document{
		ID:          9,
		OwnerUserID: 3,
		Type:        domain.DocTypeInvoice,
		Status:      domain.StatusPaid,
		Number:      "INV-009",
		Title:       "Fence repair",
		Amount:      40000,
		ShareToken:  "old-token",
		Signature:   &sig,
		Signed:      true,
	}
	store.EXPECT().Get(gomock.Any(), int64(3), int64(9)).Return(src, nil)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	dup, err := svc.Duplicate(context.Background(), 3, 9)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDraft, dup.Status)
	assert.False(t, dup.Signed)
	assert.Nil(t, dup.Signature)
	assert.Equal(t, src.Amount, dup.Amount)
	assert.NotEmpty(t, dup.ShareToken)
	assert.NotEqual(t, src.ShareToken, dup.ShareToken)
}

func TestDocumentService_Sign_Estimate(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	notifier := service.NewMockNotifier(ctrl)
	svc := &service.DocumentService{Store: store, Notifications: notifier, Logger: discardLogger()}

	est := &domain.Document{
		ID:          7,
		OwnerUserID: 3,
		Type:        domain.DocTypeEstimate,
		Status:      domain.StatusViewed,
		Number:      "EST-004",
		Title:       "Deck Rebuild",
		Amount:      250000,
	}
	store.EXPECT().Get(gomock.Any(), int64(3), int64(7)).Return(est, nil)

	var signedEst, spawned *domain.Document
	store.EXPECT().
		SignEstimate(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e, inv *domain.Document) error {
			signedEst, spawned = e, inv
			return nil
		})
	notifier.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.Notification{}, nil)

	inv, err := svc.Sign(context.Background(), 3, 7, "data:image/png;base64,abc")
	require.NoError(t, err)
	require.NotNil(t, inv)

	require.NotNil(t, signedEst.Signature)
	assert.Equal(t, "data:image/png;base64,abc", *signedEst.Signature)

	assert.Same(t, spawned, inv)
	assert.Equal(t, domain.DocTypeInvoice, inv.Type)
	assert.Equal(t, domain.StatusSent, inv.Status)
	assert.True(t, inv.Signed)
	require.NotNil(t, inv.EstimateID)
	assert.Equal(t, int64(7), *inv.EstimateID)
	assert.Equal(t, est.Amount, inv.Amount)
	assert.NotEmpty(t, inv.ShareToken)
	require.NotNil(t, inv.DueAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, domain.DueDays), *inv.DueAt, time.Minute)
}

func TestDocumentService_Sign_EstimateAlreadySigned(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	svc := &service.DocumentService{Store: store, Logger: discardLogger()}

	store.EXPECT().Get(gomock.Any(), int64(3), int64(7)).Return(&domain.Document{
		ID:     7,
		Type:   domain.DocTypeEstimate,
		Signed: true,
	}, nil)

	_, err := svc.Sign(context.Background(), 3, 7, "sig")
	assert.ErrorIs(t, err, service.ErrAlreadySigned)
}

func TestDocumentService_Sign_LostRaceToConcurrentSigner(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	svc := &service.DocumentService{Store: store, Logger: discardLogger()}

	// The snapshot read saw the estimate unsigned, but someone else signed it
	// before our transaction ran.
	store.EXPECT().Get(gomock.Any(), int64(3), int64(7)).Return(&domain.Document{
		ID:   7,
		Type: domain.DocTypeEstimate,
	}, nil)
	store.EXPECT().
		SignEstimate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(repository.ErrAlreadySigned)

	_, err := svc.Sign(context.Background(), 3, 7, "sig")
	assert.ErrorIs(t, err, service.ErrAlreadySigned)
}

func TestDocumentService_Sign_Invoice(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	svc := &service.DocumentService{Store: store, Logger: discardLogger()}

	store.EXPECT().Get(gomock.Any(), int64(3), int64(12)).Return(&domain.Document{
		ID:   12,
		Type: domain.DocTypeInvoice,
	}, nil)
	store.EXPECT().SignInvoice(gomock.Any(), int64(3), int64(12), "sig").Return(nil)

	inv, err := svc.Sign(context.Background(), 3, 12, "sig")
	require.NoError(t, err)
	assert.Nil(t, inv)
}

func TestDocumentService_Sign_EmptySignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	svc := &service.DocumentService{Store: store, Logger: discardLogger()}

	_, err := svc.Sign(context.Background(), 3, 7, "")
	assert.ErrorIs(t, err, service.ErrEmptySignature)
}

func TestDocumentService_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	mailer := service.NewMockMailer(ctrl)
	svc := &service.DocumentService{
		Store:         store,
		Mail:          mailer,
		PublicBaseURL: "https://app.invozy.test",
		Logger:        discardLogger(),
	}

	doc := &domain.Document{
		ID:         5,
		Type:       domain.DocTypeEstimate,
		Status:     domain.StatusDraft,
		Number:     "EST-005",
		Client:     domain.ContactSnapshot{Email: "billing@acme.test"},
		Company:    domain.ContactSnapshot{Name: "Handy Co"},
		ShareToken: "tok-123",
	}
	store.EXPECT().Get(gomock.Any(), int64(3), int64(5)).Return(doc, nil)
	store.EXPECT().MarkSent(gomock.Any(), int64(3), int64(5)).Return(true, nil)

	var mailed email.DocumentEmail
	mailer.EXPECT().
		SendDocument(gomock.Any()).
		DoAndReturn(func(in email.DocumentEmail) error {
			mailed = in
			return nil
		})

	sent, err := svc.Send(context.Background(), 3, 5)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, "billing@acme.test", mailed.To)
	assert.Equal(t, "https://app.invozy.test/share/tok-123", mailed.URL)
}

func TestDocumentService_Send_NotDraft(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	mailer := service.NewMockMailer(ctrl)
	svc := &service.DocumentService{Store: store, Mail: mailer, Logger: discardLogger()}

	store.EXPECT().Get(gomock.Any(), int64(3), int64(5)).Return(&domain.Document{
		ID:     5,
		Status: domain.StatusPaid,
		Client: domain.ContactSnapshot{Email: "billing@acme.test"},
	}, nil)
	store.EXPECT().MarkSent(gomock.Any(), int64(3), int64(5)).Return(false, nil)

	// No mail goes out when the transition did not happen.
	sent, err := svc.Send(context.Background(), 3, 5)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestDocumentService_Send_MailFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	mailer := service.NewMockMailer(ctrl)
	svc := &service.DocumentService{Store: store, Mail: mailer, Logger: discardLogger()}

	store.EXPECT().Get(gomock.Any(), int64(3), int64(5)).Return(&domain.Document{
		ID:     5,
		Client: domain.ContactSnapshot{Email: "billing@acme.test"},
	}, nil)
	store.EXPECT().MarkSent(gomock.Any(), int64(3), int64(5)).Return(true, nil)
	mailer.EXPECT().SendDocument(gomock.Any()).Return(errors.New("smtp: connection refused"))

	sent, err := svc.Send(context.Background(), 3, 5)
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestDocumentService_RecordView(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	notifier := service.NewMockNotifier(ctrl)
	svc := &service.DocumentService{Store: store, Notifications: notifier, Logger: discardLogger()}

	store.EXPECT().MarkViewedByToken(gomock.Any(), "tok").Return(true, nil)
	store.EXPECT().GetByShareToken(gomock.Any(), "tok").Return(&domain.Document{
		OwnerUserID: 3,
		Number:      "EST-001",
	}, nil)
	notifier.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.Notification{}, nil)

	require.NoError(t, svc.RecordView(context.Background(), "tok"))
}

func TestDocumentService_RecordView_AlreadyViewed(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	notifier := service.NewMockNotifier(ctrl)
	svc := &service.DocumentService{Store: store, Notifications: notifier, Logger: discardLogger()}

	store.EXPECT().MarkViewedByToken(gomock.Any(), "tok").Return(false, nil)

	require.NoError(t, svc.RecordView(context.Background(), "tok"))
}

func TestDocumentService_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	svc := &service.DocumentService{Store: store, Logger: discardLogger()}

	store.EXPECT().Get(gomock.Any(), int64(3), int64(404)).Return(nil, repository.ErrNotFound)

	_, err := svc.Get(context.Background(), 3, 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
