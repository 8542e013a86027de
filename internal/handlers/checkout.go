package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nordmart/storefront/internal/platform/httpx"
	"github.com/nordmart/storefront/internal/services"
)

const maxCheckoutBodySize = 64 * 1024

// CheckoutHandlers exposes the hosted payment session endpoints.
type CheckoutHandlers struct {
	checkout services.CheckoutService
}

// NewCheckoutHandlers constructs a new CheckoutHandlers instance.
func NewCheckoutHandlers(checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{checkout: checkout}
}

// Routes registers the payment session endpoints at the router root.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/create-checkout-session", h.createSession)
	r.Get("/session_status", h.sessionStatus)
	r.Get("/payment_details", h.paymentDetails)
}

func (h *CheckoutHandlers) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req createSessionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	cmd := services.CreateSessionCommand{
		CustomerID:     req.CustomerID,
		IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, services.CreateSessionLineItem{
			ProductID: item.ProductID,
			Name:      strings.TrimSpace(item.Name),
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	handle, err := h.checkout.CreateSession(ctx, cmd)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, createSessionResponse{
		SessionID:   handle.SessionID,
		RedirectURL: handle.RedirectURL,
	})
}

func (h *CheckoutHandlers) sessionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "session_id is required", http.StatusBadRequest))
		return
	}

	status, err := h.checkout.SessionStatus(ctx, sessionID)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, sessionStatusResponse{
		Status:        status.Status,
		PaymentStatus: string(status.PaymentStatus),
		CustomerEmail: status.CustomerEmail,
	})
}

func (h *CheckoutHandlers) paymentDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service unavailable", http.StatusServiceUnavailable))
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "session_id is required", http.StatusBadRequest))
		return
	}

	details, err := h.checkout.PaymentDetails(ctx, sessionID)
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, paymentDetailsResponse{
		OrderID:       details.OrderID,
		PaymentStatus: string(details.PaymentStatus),
	})
}

type createSessionItemRequest struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type createSessionRequest struct {
	CustomerID int64                      `json:"customer_id"`
	Items      []createSessionItemRequest `json:"items"`
}

type createSessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

type sessionStatusResponse struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	CustomerEmail string `json:"customer_email"`
}

type paymentDetailsResponse struct {
	OrderID       int64  `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "no order found for session", http.StatusNotFound))
	case errors.Is(err, services.ErrCheckoutGateway):
		httpx.WriteError(ctx, w, httpx.NewError("payment_gateway_error", "payment gateway request failed", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "failed to process checkout request", http.StatusInternalServerError))
	}
}
