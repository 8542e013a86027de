package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nordmart/storefront/internal/domain"
	"github.com/nordmart/storefront/internal/services"
)

func orderRouter(svc services.OrderService) http.Handler {
	h := NewOrderHandlers(svc)
	return NewRouter(WithOrderRoutes(h.Routes), WithOrderItemRoutes(h.ItemRoutes))
}

func TestOrderHandlersCreate(t *testing.T) {
	svc := &stubOrderService{
		createFn: func(_ context.Context, cmd services.CreateOrderCommand) (services.Order, error) {
			if cmd.CustomerID != 7 {
				t.Fatalf("expected customer 7, got %d", cmd.CustomerID)
			}
			if cmd.TotalPrice != 4000 {
				t.Fatalf("expected total 4000, got %d", cmd.TotalPrice)
			}
			if len(cmd.Items) != 1 || cmd.Items[0].Quantity != 2 {
				t.Fatalf("unexpected items: %+v", cmd.Items)
			}
			return services.Order{
				ID:            55,
				CustomerID:    cmd.CustomerID,
				TotalPrice:    cmd.TotalPrice,
				PaymentStatus: domain.PaymentStatusUnpaid,
				OrderStatus:   domain.OrderStatusPending,
				Items: []services.OrderItem{
					{ID: 1, OrderID: 55, ProductID: 1, ProductName: "Shirt", Quantity: 2, UnitPrice: 2000},
				},
			}, nil
		},
	}

	body := `{
		"customer_id": 7,
		"total_price": 4000,
		"order_items": [{"product_id":1,"product_name":"Shirt","quantity":2,"unit_price":2000}],
		"customer_firstname":"Jamie","customer_lastname":"Nordlund",
		"customer_email":"jamie@example.com","customer_phone":"12345678",
		"customer_street_address":"Main St 1","customer_postal_code":"0150",
		"customer_city":"Oslo","customer_country":"Norway"
	}`
	req := httptest.NewRequest(http.MethodPost, "/orders/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	orderRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload orderPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload.ID != 55 {
		t.Fatalf("expected order 55, got %d", payload.ID)
	}
	if payload.PaymentStatus != "Unpaid" || payload.OrderStatus != "Pending" {
		t.Fatalf("unexpected statuses: %s/%s", payload.PaymentStatus, payload.OrderStatus)
	}
	if len(payload.OrderItems) != 1 {
		t.Fatalf("expected 1 item, got %d", len(payload.OrderItems))
	}
}

func TestOrderHandlersCreateTotalMismatch(t *testing.T) {
	svc := &stubOrderService{
		createFn: func(context.Context, services.CreateOrderCommand) (services.Order, error) {
			return services.Order{}, services.ErrOrderTotalMismatch
		},
	}

	body := `{"customer_id":7,"total_price":3999,"order_items":[{"product_id":1,"product_name":"Shirt","quantity":2,"unit_price":2000}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	orderRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
}

func TestOrderHandlersListByCustomer(t *testing.T) {
	svc := &stubOrderService{
		listByCustomerFn: func(_ context.Context, customerID int64) ([]services.Order, error) {
			if customerID != 7 {
				t.Fatalf("expected customer filter 7, got %d", customerID)
			}
			return []services.Order{{ID: 55, CustomerID: 7}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/orders/?customer_id=7", nil)
	rr := httptest.NewRecorder()
	orderRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload []orderPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(payload) != 1 || payload[0].ID != 55 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload[0].OrderItems == nil {
		t.Fatal("order_items must serialize as an array")
	}
}

func TestOrderHandlersPatch(t *testing.T) {
	svc := &stubOrderService{
		patchFn: func(_ context.Context, orderID int64, patch services.OrderPatch) (services.Order, error) {
			if orderID != 55 {
				t.Fatalf("expected order 55, got %d", orderID)
			}
			if patch.PaymentStatus == nil || *patch.PaymentStatus != domain.PaymentStatusPaid {
				t.Fatalf("expected payment status Paid, got %+v", patch.PaymentStatus)
			}
			if patch.OrderStatus == nil || *patch.OrderStatus != domain.OrderStatusPending {
				t.Fatalf("expected order status Pending, got %+v", patch.OrderStatus)
			}
			if patch.PaymentID != nil {
				t.Fatal("payment id should stay untouched")
			}
			return services.Order{ID: orderID, PaymentStatus: *patch.PaymentStatus, OrderStatus: *patch.OrderStatus}, nil
		},
	}

	body := `{"payment_status":"Paid","order_status":"Pending"}`
	req := httptest.NewRequest(http.MethodPatch, "/orders/55", strings.NewReader(body))
	rr := httptest.NewRecorder()
	orderRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestOrderHandlersGetNotFound(t *testing.T) {
	svc := &stubOrderService{
		getFn: func(context.Context, int64) (services.Order, error) {
			return services.Order{}, services.ErrOrderNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/orders/99", nil)
	rr := httptest.NewRecorder()
	orderRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestOrderItemPatchUpdatesQuantity(t *testing.T) {
	svc := &stubOrderService{
		updateItemFn: func(_ context.Context, itemID int64, quantity int) (services.OrderItem, error) {
			if itemID != 3 {
				t.Fatalf("expected item 3, got %d", itemID)
			}
			if quantity != 4 {
				t.Fatalf("expected quantity 4, got %d", quantity)
			}
			return services.OrderItem{ID: itemID, Quantity: quantity}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/order-items/3", strings.NewReader(`{"quantity":4}`))
	rr := httptest.NewRecorder()
	orderRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload orderItemPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload.Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", payload.Quantity)
	}
}

func TestOrderItemPatchWithoutBodyDeletes(t *testing.T) {
	var removed int64
	svc := &stubOrderService{
		removeItemFn: func(_ context.Context, itemID int64) error {
			removed = itemID
			return nil
		},
		updateItemFn: func(context.Context, int64, int) (services.OrderItem, error) {
			t.Fatal("update should not be called")
			return services.OrderItem{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/order-items/3", nil)
	rr := httptest.NewRecorder()
	orderRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if removed != 3 {
		t.Fatalf("expected removal of item 3, got %d", removed)
	}
}
