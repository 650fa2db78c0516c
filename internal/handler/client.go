package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/server/authctx"
	"github.com/ozytarget/invozy-backend/internal/service"
)

type ClientHandler struct {
	Service *service.ClientService
}

func (h ClientHandler) RegisterRoutes(r chi.Router) {
	r.Get("/clients", h.list)
	r.Post("/clients", h.add)
}

func (h ClientHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	clients, err := h.Service.Directory(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(clients))
	for _, c := range clients {
		resp = append(resp, map[string]any{
			"id":            c.ID,
			"name":          c.Name,
			"email":         c.Email,
			"phone":         c.Phone,
			"address":       c.Address,
			"totalBilled":   c.TotalBilled,
			"documentCount": c.DocumentCount,
			"stored":        c.Stored,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ClientHandler) add(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	saved, err := h.Service.Add(r.Context(), user.ID, domain.Client{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientEmailRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateClient):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      saved.ID,
		"name":    saved.Name,
		"email":   saved.Email,
		"phone":   saved.Phone,
		"address": saved.Address,
	})
}
