package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nordmart/storefront/internal/platform/httpx"
	"github.com/nordmart/storefront/internal/services"
)

const maxCustomerBodySize = 32 * 1024

// CustomerHandlers exposes the customer directory endpoints.
type CustomerHandlers struct {
	customers services.CustomerService
}

// NewCustomerHandlers constructs a new CustomerHandlers instance.
func NewCustomerHandlers(customers services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customers: customers}
}

// Routes registers the /customers endpoints. The email lookup is registered
// before the id route so "email" is never parsed as an identifier.
func (h *CustomerHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.createCustomer)
	r.Get("/", h.listCustomers)
	r.Get("/email/{email}", h.getCustomerByEmail)
	r.Get("/{customerID}", h.getCustomer)
	r.Patch("/{customerID}", h.patchCustomer)
	r.Delete("/{customerID}", h.deleteCustomer)
}

func (h *CustomerHandlers) createCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.customers == nil {
		httpx.WriteError(ctx, w, httpx.NewError("customer_service_unavailable", "customer service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxCustomerBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req customerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	customer, err := h.customers.CreateCustomer(ctx, services.CreateCustomerCommand{
		Firstname:     strings.TrimSpace(req.Firstname),
		Lastname:      strings.TrimSpace(req.Lastname),
		Email:         strings.TrimSpace(req.Email),
		Password:      req.Password,
		Phone:         strings.TrimSpace(req.Phone),
		StreetAddress: strings.TrimSpace(req.StreetAddress),
		PostalCode:    strings.TrimSpace(req.PostalCode),
		City:          strings.TrimSpace(req.City),
		Country:       strings.TrimSpace(req.Country),
	})
	if err != nil {
		writeCustomerError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, buildCustomerPayload(customer))
}

func (h *CustomerHandlers) listCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.customers == nil {
		httpx.WriteError(ctx, w, httpx.NewError("customer_service_unavailable", "customer service unavailable", http.StatusServiceUnavailable))
		return
	}

	customers, err := h.customers.ListCustomers(ctx)
	if err != nil {
		writeCustomerError(ctx, w, err)
		return
	}

	payload := make([]customerPayload, 0, len(customers))
	for _, customer := range customers {
		payload = append(payload, buildCustomerPayload(customer))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *CustomerHandlers) getCustomerByEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.customers == nil {
		httpx.WriteError(ctx, w, httpx.NewError("customer_service_unavailable", "customer service unavailable", http.StatusServiceUnavailable))
		return
	}

	email := chi.URLParam(r, "email")
	if decoded, err := url.PathUnescape(email); err == nil {
		email = decoded
	}
	email = strings.TrimSpace(email)
	if email == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "email is required", http.StatusBadRequest))
		return
	}

	customer, err := h.customers.GetCustomerByEmail(ctx, email)
	if err != nil {
		writeCustomerError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildCustomerPayload(customer))
}

func (h *CustomerHandlers) getCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.customers == nil {
		httpx.WriteError(ctx, w, httpx.NewError("customer_service_unavailable", "customer service unavailable", http.StatusServiceUnavailable))
		return
	}

	id, err := idParam(r, "customerID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid customer id", http.StatusBadRequest))
		return
	}

	customer, err := h.customers.GetCustomer(ctx, id)
	if err != nil {
		writeCustomerError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildCustomerPayload(customer))
}

func (h *CustomerHandlers) patchCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.customers == nil {
		httpx.WriteError(ctx, w, httpx.NewError("customer_service_unavailable", "customer service unavailable", http.StatusServiceUnavailable))
		return
	}

	id, err := idParam(r, "customerID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid customer id", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxCustomerBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req customerPatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	customer, err := h.customers.UpdateCustomer(ctx, id, services.CustomerPatch{
		Firstname:     req.Firstname,
		Lastname:      req.Lastname,
		Password:      req.Password,
		Phone:         req.Phone,
		StreetAddress: req.StreetAddress,
		PostalCode:    req.PostalCode,
		City:          req.City,
		Country:       req.Country,
	})
	if err != nil {
		writeCustomerError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildCustomerPayload(customer))
}

func (h *CustomerHandlers) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.customers == nil {
		httpx.WriteError(ctx, w, httpx.NewError("customer_service_unavailable", "customer service unavailable", http.StatusServiceUnavailable))
		return
	}

	id, err := idParam(r, "customerID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid customer id", http.StatusBadRequest))
		return
	}

	if err := h.customers.DeleteCustomer(ctx, id); err != nil {
		writeCustomerError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type customerRequest struct {
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"street_address"`
	PostalCode    string `json:"postal_code"`
	City          string `json:"city"`
	Country       string `json:"country"`
}

type customerPatchRequest struct {
	Firstname     *string `json:"firstname"`
	Lastname      *string `json:"lastname"`
	Password      *string `json:"password"`
	Phone         *string `json:"phone"`
	StreetAddress *string `json:"street_address"`
	PostalCode    *string `json:"postal_code"`
	City          *string `json:"city"`
	Country       *string `json:"country"`
}

// customerPayload deliberately omits the stored password.
type customerPayload struct {
	ID            int64  `json:"id"`
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"street_address"`
	PostalCode    string `json:"postal_code"`
	City          string `json:"city"`
	Country       string `json:"country"`
	CreatedAt     string `json:"created_at,omitempty"`
}

func buildCustomerPayload(customer services.Customer) customerPayload {
	return customerPayload{
		ID:            customer.ID,
		Firstname:     customer.Firstname,
		Lastname:      customer.Lastname,
		Email:         customer.Email,
		Phone:         customer.Phone,
		StreetAddress: customer.StreetAddress,
		PostalCode:    customer.PostalCode,
		City:          customer.City,
		Country:       customer.Country,
		CreatedAt:     formatTimestamp(customer.CreatedAt),
	}
}

func writeCustomerError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCustomerInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCustomerNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("customer_not_found", "customer not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCustomerEmailTaken):
		httpx.WriteError(ctx, w, httpx.NewError("customer_email_taken", "email already registered", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("customer_error", "failed to process customer request", http.StatusInternalServerError))
	}
}
