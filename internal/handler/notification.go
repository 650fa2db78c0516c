package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/repository"
	"github.com/ozytarget/invozy-backend/internal/server/authctx"
)

//go:generate mockgen -source=notification.go -destination=notification_mock.go -package=handler
type NotificationStore interface {
	Create(ctx context.Context, in repository.CreateNotificationInput) (*domain.Notification, error)
	List(ctx context.Context, ownerUserID int64, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, ownerUserID, id int64) error
}

type NotificationHandler struct {
	Store NotificationStore
}

func (h NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.list)
	r.Post("/notifications", h.create)
	r.Post("/notifications/{id}/read", h.markRead)
}

func (h NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	items, err := h.Store.List(r.Context(), user.ID, 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, n := range items {
		resp = append(resp, notificationResponse(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h NotificationHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	var req struct {
		Title   string `json:"title"`
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	t := domain.NotificationType(req.Type)
	if t == "" {
		t = domain.NotificationInfo
	}
	n, err := h.Store.Create(r.Context(), repository.CreateNotificationInput{
		OwnerUserID: user.ID,
		Title:       req.Title,
		Message:     req.Message,
		Type:        t,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, notificationResponse(*n))
}

func (h NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Store.MarkRead(r.Context(), user.ID, id); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func notificationResponse(n domain.Notification) map[string]any {
	return map[string]any{
		"id":        n.ID,
		"title":     n.Title,
		"message":   n.Message,
		"type":      string(n.Type),
		"createdAt": n.CreatedAt,
		"readAt":    n.ReadAt,
	}
}
