package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/handler"
	"github.com/ozytarget/invozy-backend/internal/repository"
)

func newNotificationRouter(store handler.NotificationStore) http.Handler {
	r := chi.NewRouter()
	r.Use(withTestUser(3, "owner@handy.test"))
	handler.NotificationHandler{Store: store}.RegisterRoutes(r)
	return r
}

func TestNotificationHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := handler.NewMockNotificationStore(ctrl)
	router := newNotificationRouter(store)

	var created repository.CreateNotificationInput
	store.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in repository.CreateNotificationInput) (*domain.Notification, error) {
			created = in
			return &domain.Notification{
				ID:        1,
				Title:     in.Title,
				Message:   in.Message,
				Type:      in.Type,
				CreatedAt: time.Now(),
			}, nil
		})

	payload := `{"title": "Job booked", "message": "Deck rebuild confirmed for Monday"}`
	req := httptest.NewRequest(http.MethodPost, "/notifications", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(3), created.OwnerUserID)
	assert.Equal(t, "Job booked", created.Title)
	// Type defaults to info when the caller leaves it out.
	assert.Equal(t, domain.NotificationInfo, created.Type)

	data := decodeData(t, rec.Body)
	assert.Equal(t, "Job booked", data["title"])
	assert.Equal(t, "info", data["type"])
}

func TestNotificationHandler_Create_TitleRequired(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := handler.NewMockNotificationStore(ctrl)
	router := newNotificationRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/notifications", bytes.NewBufferString(`{"message":"no title"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := handler.NewMockNotificationStore(ctrl)
	router := newNotificationRouter(store)

	store.EXPECT().List(gomock.Any(), int64(3), 100).Return([]domain.Notification{
		{ID: 1, Title: "Estimate signed", Type: domain.NotificationSigned},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotificationHandler_MarkRead_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := handler.NewMockNotificationStore(ctrl)
	router := newNotificationRouter(store)

	store.EXPECT().MarkRead(gomock.Any(), int64(3), int64(42)).Return(repository.ErrNotFound)

	req := httptest.NewRequest(http.MethodPost, "/notifications/42/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
