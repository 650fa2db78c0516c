package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ozytarget/invozy-backend/internal/service"
)

// ShareHandler is the unauthenticated read surface: anyone holding a share
// token can view the document, mark it viewed, or decline an estimate.
type ShareHandler struct {
	Service *service.DocumentService
}

func (h ShareHandler) RegisterRoutes(r chi.Router) {
	r.Get("/share/{token}", h.get)
	r.Post("/share/{token}/view", h.view)
	r.Post("/share/{token}/decline", h.decline)
}

func (h ShareHandler) get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.Shared(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	resp := docResponse(doc)
	// The public view never exposes the owner's search or token internals.
	delete(resp, "shareToken")
	writeJSON(w, http.StatusOK, resp)
}

func (h ShareHandler) view(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RecordView(r.Context(), chi.URLParam(r, "token")); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h ShareHandler) decline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	declined, err := h.Service.Decline(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"declined": declined})
}
