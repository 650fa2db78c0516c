package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ozytarget/invozy-backend/internal/domain"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateIncrementsDocumentCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockDocumentStore(ctrl)
	svc := &DocumentService{Store: store, Logger: silentLogger()}

	before := testutil.ToFloat64(documentsCreated.WithLabelValues("estimate"))
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Create(context.Background(), 3, CreateDocumentInput{Type: domain.DocTypeEstimate})
	require.NoError(t, err)

	after := testutil.ToFloat64(documentsCreated.WithLabelValues("estimate"))
	assert.Equal(t, before+1, after)
}

func TestSignIncrementsSignedCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockDocumentStore(ctrl)
	svc := &DocumentService{Store: store, Logger: silentLogger()}

	before := testutil.ToFloat64(documentsSigned.WithLabelValues("estimate"))
	store.EXPECT().Get(gomock.Any(), int64(3), int64(7)).Return(&domain.Document{
		ID:   7,
		Type: domain.DocTypeEstimate,
	}, nil)
	store.EXPECT().SignEstimate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Sign(context.Background(), 3, 7, "sig")
	require.NoError(t, err)

	after := testutil.ToFloat64(documentsSigned.WithLabelValues("estimate"))
	assert.Equal(t, before+1, after)
}

func TestRecordIncrementsPaymentCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockPaymentStore(ctrl)
	svc := &PaymentService{Store: store, Logger: silentLogger()}

	before := testutil.ToFloat64(paymentsRecorded)
	store.EXPECT().Record(gomock.Any(), gomock.Any()).Return(domain.StatusPartial, nil)

	_, _, err := svc.Record(context.Background(), 3, 12, RecordPaymentInput{
		Amount: 3000,
		PaidAt: time.Now(),
		Method: domain.PaymentCash,
	})
	require.NoError(t, err)

	after := testutil.ToFloat64(paymentsRecorded)
	assert.Equal(t, before+1, after)
}
