package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/repository"
	"github.com/ozytarget/invozy-backend/internal/server/authctx"
	"github.com/ozytarget/invozy-backend/internal/service"
)

type DocumentHandler struct {
	Service *service.DocumentService
}

func (h DocumentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/documents", h.list)
	r.Post("/documents", h.create)
	r.Get("/documents/export", h.export)
	r.Get("/documents/{id}", h.get)
	r.Put("/documents/{id}", h.update)
	r.Delete("/documents/{id}", h.delete)
	r.Post("/documents/{id}/duplicate", h.duplicate)
	r.Post("/documents/{id}/sign", h.sign)
	r.Post("/documents/{id}/send", h.send)
	r.Post("/invoices/{id}/revert-draft", h.revertToDraft)
}

type contactPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type lineItemPayload struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   int64   `json:"unitPrice"`
}

func (h DocumentHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	filter := repository.ListFilter{Search: r.URL.Query().Get("search")}
	if t := r.URL.Query().Get("type"); t != "" {
		dt := domain.DocType(t)
		if dt != domain.DocTypeEstimate && dt != domain.DocTypeInvoice {
			writeError(w, http.StatusBadRequest, "invalid type")
			return
		}
		filter.Type = &dt
	}
	docs, err := h.Service.List(r.Context(), user.ID, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		resp = append(resp, docResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h DocumentHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	var req struct {
		Type        string            `json:"type"`
		Client      contactPayload    `json:"client"`
		Company     contactPayload    `json:"company"`
		Title       string            `json:"title"`
		Description string            `json:"description"`
		IssuedAt    *time.Time        `json:"issuedAt"`
		DueAt       *time.Time        `json:"dueAt"`
		TaxRate     float64           `json:"taxRate"`
		Notes       string            `json:"notes"`
		Terms       string            `json:"terms"`
		LineItems   []lineItemPayload `json:"lineItems"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in := service.CreateDocumentInput{
		Type:        domain.DocType(req.Type),
		Client:      toSnapshot(req.Client),
		Company:     toSnapshot(req.Company),
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		TaxRate:     req.TaxRate,
		Notes:       req.Notes,
		Terms:       req.Terms,
		LineItems:   toLineItems(req.LineItems),
	}
	if req.IssuedAt != nil {
		in.IssuedAt = *req.IssuedAt
	}
	doc, err := h.Service.Create(r.Context(), user.ID, in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDocType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, docResponse(doc))
}

func (h DocumentHandler) get(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	doc, err := h.Service.Get(r.Context(), user.ID, id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docResponse(doc))
}

func (h DocumentHandler) update(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req struct {
		Client      *contactPayload    `json:"client"`
		Company     *contactPayload    `json:"company"`
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		IssuedAt    *time.Time         `json:"issuedAt"`
		DueAt       *time.Time         `json:"dueAt"`
		ClearDueAt  bool               `json:"clearDueAt"`
		TaxRate     *float64           `json:"taxRate"`
		Notes       *string            `json:"notes"`
		Terms       *string            `json:"terms"`
		LineItems   *[]lineItemPayload `json:"lineItems"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in := repository.UpdateDocumentInput{
		Title:       req.Title,
		Description: req.Description,
		IssuedAt:    req.IssuedAt,
		DueAt:       req.DueAt,
		ClearDueAt:  req.ClearDueAt,
		TaxRate:     req.TaxRate,
		Notes:       req.Notes,
		Terms:       req.Terms,
	}
	if req.Client != nil {
		c := toSnapshot(*req.Client)
		in.Client = &c
	}
	if req.Company != nil {
		c := toSnapshot(*req.Company)
		in.Company = &c
	}
	if req.LineItems != nil {
		items := toLineItems(*req.LineItems)
		in.LineItems = &items
	}
	doc, err := h.Service.Update(r.Context(), user.ID, id, in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docResponse(doc))
}

func (h DocumentHandler) delete(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), user.ID, id); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h DocumentHandler) duplicate(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	doc, err := h.Service.Duplicate(r.Context(), user.ID, id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, docResponse(doc))
}

func (h DocumentHandler) sign(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req struct {
		Signature string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	invoice, err := h.Service.Sign(r.Context(), user.ID, id, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptySignature):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAlreadySigned):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeRepoError(w, err)
		}
		return
	}
	if invoice != nil {
		writeJSON(w, http.StatusCreated, docResponse(invoice))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed"})
}

func (h DocumentHandler) send(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	sent, err := h.Service.Send(r.Context(), user.ID, id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sent": sent})
}

func (h DocumentHandler) revertToDraft(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Service.RevertToDraft(r.Context(), user.ID, id); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "draft"})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func toSnapshot(p contactPayload) domain.ContactSnapshot {
	return domain.ContactSnapshot{Name: p.Name, Email: p.Email, Phone: p.Phone, Address: p.Address}
}

func toLineItems(items []lineItemPayload) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for i, it := range items {
		out = append(out, domain.LineItem{
			Position:    i,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return out
}

func docResponse(d *domain.Document) map[string]any {
	items := make([]map[string]any, 0, len(d.LineItems))
	for _, it := range d.LineItems {
		items = append(items, map[string]any{
			"position":    it.Position,
			"description": it.Description,
			"quantity":    it.Quantity,
			"unitPrice":   it.UnitPrice,
		})
	}
	resp := map[string]any{
		"id":          d.ID,
		"type":        string(d.Type),
		"status":      string(d.Status),
		"number":      d.Number,
		"client":      contactResponse(d.Client),
		"company":     contactResponse(d.Company),
		"title":       d.Title,
		"description": d.Description,
		"issuedAt":    d.IssuedAt,
		"dueAt":       d.DueAt,
		"amount":      d.Amount,
		"taxRate":     d.TaxRate,
		"notes":       d.Notes,
		"terms":       d.Terms,
		"lineItems":   items,
		"signed":      d.Signed,
		"shareToken":  d.ShareToken,
		"createdAt":   d.CreatedAt,
		"updatedAt":   d.UpdatedAt,
	}
	if d.EstimateID != nil {
		resp["estimateId"] = *d.EstimateID
	}
	return resp
}

func contactResponse(c domain.ContactSnapshot) map[string]any {
	return map[string]any{
		"name":    c.Name,
		"email":   c.Email,
		"phone":   c.Phone,
		"address": c.Address,
	}
}
