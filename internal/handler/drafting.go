package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/service"
)

type DraftingHandler struct {
	Service *service.DraftingService
}

func (h DraftingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/drafting/pricing", h.pricing)
	r.Post("/drafting/work-order", h.workOrder)
}

func (h DraftingHandler) pricing(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusServiceUnavailable, "drafting is not configured")
		return
	}
	var req struct {
		Description    string `json:"description"`
		CurrentPricing string `json:"currentPricing"`
		PastProjects   string `json:"pastProjects"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	out, err := h.Service.SuggestPricing(r.Context(), service.PricingRequest{
		Description:    req.Description,
		CurrentPricing: req.CurrentPricing,
		PastProjects:   req.PastProjects,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestedPrice":     out.SuggestedPrice,
		"refinedDescription": out.RefinedDescription,
		"upsellText":         out.UpsellText,
	})
}

func (h DraftingHandler) workOrder(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusServiceUnavailable, "drafting is not configured")
		return
	}
	var req struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		LineItems   []lineItemPayload `json:"lineItems"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	items := make([]domain.LineItem, 0, len(req.LineItems))
	for _, it := range req.LineItems {
		// Unit prices never leave the server for work order drafting.
		items = append(items, domain.LineItem{Description: it.Description, Quantity: it.Quantity})
	}
	out, err := h.Service.WorkOrder(r.Context(), service.WorkOrderRequest{
		Title:       req.Title,
		Description: req.Description,
		LineItems:   items,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks":     out.Tasks,
		"materials": out.Materials,
		"tools":     out.Tools,
	})
}
