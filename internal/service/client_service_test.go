package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/service"
)

func TestMergeDirectory(t *testing.T) {
	stored := []domain.Client{
		{ID: 1, Name: "Acme Corp", Email: "A@X.com", Phone: "555-0100", Stored: true},
	}
	docs := []*domain.Document{
		{Type: domain.DocTypeInvoice, Amount: 100, Client: domain.ContactSnapshot{Name: "acme", Email: "a@x.com"}},
		{Type: domain.DocTypeInvoice, Amount: 250, Client: domain.ContactSnapshot{Name: "acme", Email: "A@x.com"}},
		{Type: domain.DocTypeEstimate, Amount: 500, Client: domain.ContactSnapshot{Name: "acme", Email: "a@X.com"}},
		{Type: domain.DocTypeInvoice, Amount: 900, Client: domain.ContactSnapshot{Name: "Beta LLC", Email: "b@y.com"}},
		{Type: domain.DocTypeEstimate, Amount: 50, Client: domain.ContactSnapshot{}},
	}

	out := service.MergeDirectory(stored, docs)
	require.Len(t, out, 2)

	acme := out[0]
	// Stored fields win over document snapshots.
	assert.Equal(t, "Acme Corp", acme.Name)
	assert.Equal(t, "a@x.com", acme.Email)
	assert.Equal(t, "555-0100", acme.Phone)
	assert.True(t, acme.Stored)
	// Every document counts, but only invoices bill.
	assert.Equal(t, 3, acme.DocumentCount)
	assert.Equal(t, int64(350), acme.TotalBilled)

	beta := out[1]
	assert.Equal(t, "Beta LLC", beta.Name)
	assert.False(t, beta.Stored)
	assert.Equal(t, 1, beta.DocumentCount)
	assert.Equal(t, int64(900), beta.TotalBilled)
}

func TestMergeDirectory_Empty(t *testing.T) {
	out := service.MergeDirectory(nil, nil)
	assert.Empty(t, out)
}

func TestClientService_Add_RequiresEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	clients := service.NewMockClientStore(ctrl)
	svc := &service.ClientService{Clients: clients}

	_, err := svc.Add(context.Background(), 3, domain.Client{Name: "No Email", Email: "  "})
	assert.ErrorIs(t, err, service.ErrClientEmailRequired)
}

func TestClientService_Directory(t *testing.T) {
	ctrl := gomock.NewController(t)
	clients := service.NewMockClientStore(ctrl)
	docs := service.NewMockDocumentStore(ctrl)
	svc := &service.ClientService{Clients: clients, Documents: docs}

	clients.EXPECT().List(gomock.Any(), int64(3), 0).Return([]domain.Client{
		{Name: "Acme Corp", Email: "a@x.com", Stored: true},
	}, nil)
	docs.EXPECT().List(gomock.Any(), int64(3), gomock.Any()).Return([]*domain.Document{
		{Type: domain.DocTypeInvoice, Amount: 120, Client: domain.ContactSnapshot{Name: "Acme", Email: "a@x.com"}},
	}, nil)

	out, err := svc.Directory(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(120), out[0].TotalBilled)
	assert.Equal(t, 1, out[0].DocumentCount)
}
