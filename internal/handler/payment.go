package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/server/authctx"
	"github.com/ozytarget/invozy-backend/internal/service"
)

type PaymentHandler struct {
	Service *service.PaymentService
}

func (h PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/invoices/{id}/payments", h.list)
	r.Post("/invoices/{id}/payments", h.record)
	r.Delete("/invoices/{id}/payments/last", h.revertLast)
}

func (h PaymentHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	payments, err := h.Service.List(r.Context(), user.ID, id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, paymentResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h PaymentHandler) record(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount int64      `json:"amount"`
		PaidAt *time.Time `json:"paidAt"`
		Method string     `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in := service.RecordPaymentInput{
		Amount: req.Amount,
		Method: domain.PaymentMethod(req.Method),
	}
	if req.PaidAt != nil {
		in.PaidAt = *req.PaidAt
	}
	payment, status, err := h.Service.Record(r.Context(), user.ID, id, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidMethod):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeRepoError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"payment":       paymentResponse(*payment),
		"invoiceStatus": string(status),
	})
}

func (h PaymentHandler) revertLast(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	payment, status, err := h.Service.RevertLast(r.Context(), user.ID, id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if payment == nil {
		writeJSON(w, http.StatusOK, map[string]any{"reverted": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reverted":      true,
		"payment":       paymentResponse(*payment),
		"invoiceStatus": string(status),
	})
}

func paymentResponse(p domain.Payment) map[string]any {
	return map[string]any{
		"id":        p.ID,
		"invoiceId": p.InvoiceID,
		"amount":    p.Amount,
		"paidAt":    p.PaidAt,
		"method":    string(p.Method),
		"createdAt": p.CreatedAt,
	}
}
