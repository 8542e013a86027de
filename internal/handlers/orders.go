package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nordmart/storefront/internal/platform/httpx"
	"github.com/nordmart/storefront/internal/services"
)

const maxOrderBodySize = 64 * 1024

// OrderHandlers exposes the order ledger and order item endpoints.
type OrderHandlers struct {
	orders services.OrderService
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{orders: orders}
}

// Routes registers the /orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.createOrder)
	r.Get("/", h.listOrders)
	r.Get("/{orderID}", h.getOrder)
	r.Patch("/{orderID}", h.patchOrder)
	r.Delete("/{orderID}", h.deleteOrder)
	r.Get("/{orderID}/items", h.listOrderItems)
}

// ItemRoutes registers the /order-items endpoints. A PATCH with a quantity
// body updates the line; a PATCH with no body removes it.
func (h *OrderHandlers) ItemRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Patch("/{itemID}", h.patchOrderItem)
}

func (h *OrderHandlers) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req createOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	cmd := services.CreateOrderCommand{
		CustomerID:            req.CustomerID,
		TotalPrice:            req.TotalPrice,
		CustomerFirstname:     strings.TrimSpace(req.CustomerFirstname),
		CustomerLastname:      strings.TrimSpace(req.CustomerLastname),
		CustomerEmail:         strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:         strings.TrimSpace(req.CustomerPhone),
		CustomerStreetAddress: strings.TrimSpace(req.CustomerStreetAddress),
		CustomerPostalCode:    strings.TrimSpace(req.CustomerPostalCode),
		CustomerCity:          strings.TrimSpace(req.CustomerCity),
		CustomerCountry:       strings.TrimSpace(req.CustomerCountry),
	}
	for _, item := range req.OrderItems {
		cmd.Items = append(cmd.Items, services.CreateOrderItemInput{
			ProductID:   item.ProductID,
			ProductName: strings.TrimSpace(item.ProductName),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	order, err := h.orders.CreateOrder(ctx, cmd)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, buildOrderPayload(order))
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	var (
		orders []services.Order
		err    error
	)
	if raw := strings.TrimSpace(r.URL.Query().Get("customer_id")); raw != "" {
		customerID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || customerID <= 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid customer_id filter", http.StatusBadRequest))
			return
		}
		orders, err = h.orders.ListOrdersByCustomer(ctx, customerID)
	} else {
		orders, err = h.orders.ListOrders(ctx)
	}
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	payload := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		payload = append(payload, buildOrderPayload(order))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	id, err := idParam(r, "orderID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid order id", http.StatusBadRequest))
		return
	}

	order, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) patchOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	id, err := idParam(r, "orderID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid order id", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req orderPatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	patch := services.OrderPatch{PaymentID: req.PaymentID}
	if req.PaymentStatus != nil {
		status := services.PaymentStatus(*req.PaymentStatus)
		patch.PaymentStatus = &status
	}
	if req.OrderStatus != nil {
		status := services.OrderStatus(*req.OrderStatus)
		patch.OrderStatus = &status
	}

	order, err := h.orders.PatchOrder(ctx, id, patch)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	id, err := idParam(r, "orderID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid order id", http.StatusBadRequest))
		return
	}

	if err := h.orders.DeleteOrder(ctx, id); err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandlers) listOrderItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	id, err := idParam(r, "orderID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid order id", http.StatusBadRequest))
		return
	}

	items, err := h.orders.ListOrderItems(ctx, id)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	payload := make([]orderItemPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, buildOrderItemPayload(item))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *OrderHandlers) patchOrderItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	id, err := idParam(r, "itemID")
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid order item id", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if errors.Is(err, errEmptyBody) {
		// No body means the line is being removed.
		if err := h.orders.RemoveOrderItem(ctx, id); err != nil {
			writeOrderError(ctx, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req orderItemPatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}
	if req.Quantity == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "quantity is required", http.StatusBadRequest))
		return
	}

	item, err := h.orders.UpdateOrderItemQuantity(ctx, id, *req.Quantity)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildOrderItemPayload(item))
}

type createOrderItemRequest struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

type createOrderRequest struct {
	CustomerID int64                    `json:"customer_id"`
	TotalPrice int64                    `json:"total_price"`
	OrderItems []createOrderItemRequest `json:"order_items"`

	CustomerFirstname     string `json:"customer_firstname"`
	CustomerLastname      string `json:"customer_lastname"`
	CustomerEmail         string `json:"customer_email"`
	CustomerPhone         string `json:"customer_phone"`
	CustomerStreetAddress string `json:"customer_street_address"`
	CustomerPostalCode    string `json:"customer_postal_code"`
	CustomerCity          string `json:"customer_city"`
	CustomerCountry       string `json:"customer_country"`
}

type orderPatchRequest struct {
	PaymentStatus *string `json:"payment_status"`
	PaymentID     *string `json:"payment_id"`
	OrderStatus   *string `json:"order_status"`
}

type orderItemPatchRequest struct {
	Quantity *int `json:"quantity"`
}

type orderItemPayload struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"order_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

type orderPayload struct {
	ID            int64              `json:"id"`
	CustomerID    int64              `json:"customer_id"`
	TotalPrice    int64              `json:"total_price"`
	PaymentStatus string             `json:"payment_status"`
	PaymentID     string             `json:"payment_id"`
	OrderStatus   string             `json:"order_status"`
	OrderItems    []orderItemPayload `json:"order_items"`

	CustomerFirstname     string `json:"customer_firstname"`
	CustomerLastname      string `json:"customer_lastname"`
	CustomerEmail         string `json:"customer_email"`
	CustomerPhone         string `json:"customer_phone"`
	CustomerStreetAddress string `json:"customer_street_address"`
	CustomerPostalCode    string `json:"customer_postal_code"`
	CustomerCity          string `json:"customer_city"`
	CustomerCountry       string `json:"customer_country"`

	CreatedAt string `json:"created_at,omitempty"`
}

func buildOrderItemPayload(item services.OrderItem) orderItemPayload {
	return orderItemPayload{
		ID:          item.ID,
		OrderID:     item.OrderID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
	}
}

func buildOrderPayload(order services.Order) orderPayload {
	items := make([]orderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, buildOrderItemPayload(item))
	}
	return orderPayload{
		ID:                    order.ID,
		CustomerID:            order.CustomerID,
		TotalPrice:            order.TotalPrice,
		PaymentStatus:         string(order.PaymentStatus),
		PaymentID:             order.PaymentID,
		OrderStatus:           string(order.OrderStatus),
		OrderItems:            items,
		CustomerFirstname:     order.CustomerFirstname,
		CustomerLastname:      order.CustomerLastname,
		CustomerEmail:         order.CustomerEmail,
		CustomerPhone:         order.CustomerPhone,
		CustomerStreetAddress: order.CustomerStreetAddress,
		CustomerPostalCode:    order.CustomerPostalCode,
		CustomerCity:          order.CustomerCity,
		CustomerCountry:       order.CustomerCountry,
		CreatedAt:             formatTimestamp(order.CreatedAt),
	}
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrOrderTotalMismatch):
		httpx.WriteError(ctx, w, httpx.NewError("order_total_mismatch", err.Error(), http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderConflict):
		httpx.WriteError(ctx, w, httpx.NewError("order_conflict", err.Error(), http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "failed to process order request", http.StatusInternalServerError))
	}
}
