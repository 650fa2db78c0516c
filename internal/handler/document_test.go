package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/handler"
	"github.com/ozytarget/invozy-backend/internal/repository"
	"github.com/ozytarget/invozy-backend/internal/server/authctx"
	"github.com/ozytarget/invozy-backend/internal/service"
)

func newDocumentRouter(store service.DocumentStore) http.Handler {
	svc := &service.DocumentService{
		Store:  store,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	r := chi.NewRouter()
	r.Use(withTestUser(3, "owner@handy.test"))
	handler.DocumentHandler{Service: svc}.RegisterRoutes(r)
	return r
}

func withTestUser(id int64, email string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := authctx.WithCurrentUser(r.Context(), authctx.CurrentUser{ID: id, Email: email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func decodeData(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var resp struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Data
}

func TestDocumentHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	router := newDocumentRouter(store)

	store.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, doc *domain.Document) error {
			doc.ID = 1
			doc.Number = "EST-001"
			return nil
		})

	payload := `{
		"type": "estimate",
		"client": {"name": "Acme", "email": "billing@acme.test"},
		"title": "Deck Rebuild",
		"lineItems": [{"description": "Labor", "quantity": 10, "unitPrice": 7500}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData(t, rec.Body)
	assert.Equal(t, "EST-001", data["number"])
	assert.Equal(t, "draft", data["status"])
	assert.Equal(t, float64(75000), data["amount"])
}

func TestDocumentHandler_Create_BadType(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	router := newDocumentRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewBufferString(`{"type":"receipt"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	router := newDocumentRouter(store)

	store.EXPECT().Get(gomock.Any(), int64(3), int64(99)).Return(nil, repository.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/documents/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentHandler_List_BadType(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	router := newDocumentRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/documents?type=receipt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Sign_EstimateReturnsInvoice(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	router := newDocumentRouter(store)

	est := &domain.Document{
		ID:          7,
		OwnerUserID: 3,
		Type:        domain.DocTypeEstimate,
		Number:      "EST-004",
		Amount:      250000,
	}
	store.EXPECT().Get(gomock.Any(), int64(3), int64(7)).Return(est, nil)
	store.EXPECT().
		SignEstimate(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, inv *domain.Document) error {
			inv.ID = 8
			inv.Number = "INV-001"
			return nil
		})

	req := httptest.NewRequest(http.MethodPost, "/documents/7/sign", bytes.NewBufferString(`{"signature":"sig"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData(t, rec.Body)
	assert.Equal(t, "invoice", data["type"])
	assert.Equal(t, "INV-001", data["number"])
	assert.Equal(t, float64(7), data["estimateId"])
}

func TestDocumentHandler_Sign_AlreadySigned(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	router := newDocumentRouter(store)

	store.EXPECT().Get(gomock.Any(), int64(3), int64(7)).Return(&domain.Document{
		ID:     7,
		Type:   domain.DocTypeEstimate,
		Signed: true,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/documents/7/sign", bytes.NewBufferString(`{"signature":"sig"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDocumentHandler_Sign_EmptySignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	router := newDocumentRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/documents/7/sign", bytes.NewBufferString(`{"signature":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	router := newDocumentRouter(store)

	store.EXPECT().Delete(gomock.Any(), int64(3), int64(5)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/documents/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDocumentHandler_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := service.NewMockDocumentStore(ctrl)
	router := newDocumentRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/documents/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
