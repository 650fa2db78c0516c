package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/repository"
	"github.com/ozytarget/invozy-backend/internal/server/authctx"
)

type SettingsHandler struct {
	Repo repository.SettingsRepository
}

func (h SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.get)
	r.Put("/settings", h.save)
}

func (h SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	s, err := h.Repo.Get(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// No profile yet: hand back an empty one so the UI can fill it in.
			writeJSON(w, http.StatusOK, settingsResponse(domain.Settings{OwnerUserID: user.ID}))
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(*s))
}

func (h SettingsHandler) save(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	var req struct {
		CompanyName  string `json:"companyName"`
		Address      string `json:"address"`
		Phone        string `json:"phone"`
		Email        string `json:"email"`
		LogoURL      string `json:"logoUrl"`
		TaxID        string `json:"taxId"`
		CurrencyCode string `json:"currencyCode"`
		DefaultTerms string `json:"defaultTerms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	saved, err := h.Repo.Save(r.Context(), domain.Settings{
		OwnerUserID:  user.ID,
		CompanyName:  req.CompanyName,
		Address:      req.Address,
		Phone:        req.Phone,
		Email:        req.Email,
		LogoURL:      req.LogoURL,
		TaxID:        req.TaxID,
		CurrencyCode: req.CurrencyCode,
		DefaultTerms: req.DefaultTerms,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(*saved))
}

func settingsResponse(s domain.Settings) map[string]any {
	return map[string]any{
		"companyName":  s.CompanyName,
		"address":      s.Address,
		"phone":        s.Phone,
		"email":        s.Email,
		"logoUrl":      s.LogoURL,
		"taxId":        s.TaxID,
		"currencyCode": s.CurrencyCode,
		"defaultTerms": s.DefaultTerms,
		"updatedAt":    s.UpdatedAt,
	}
}
