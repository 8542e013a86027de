package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nordmart/storefront/internal/services"
)

func TestProductHandlersCreate(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &stubCatalogService{
		createFn: func(_ context.Context, cmd services.CreateProductCommand) (services.Product, error) {
			if cmd.Name != "Shirt" {
				t.Fatalf("expected name Shirt, got %q", cmd.Name)
			}
			if cmd.Price != 2000 {
				t.Fatalf("expected price 2000, got %d", cmd.Price)
			}
			return services.Product{ID: 1, Name: cmd.Name, Price: cmd.Price, Stock: cmd.Stock, CreatedAt: created}, nil
		},
	}
	router := NewRouter(WithProductRoutes(NewProductHandlers(svc).Routes))

	body := `{"name":"Shirt","description":"","image":"","price":2000,"stock":5}`
	req := httptest.NewRequest(http.MethodPost, "/products/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload productPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload.ID != 1 || payload.Price != 2000 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestProductHandlersCreateRejectsInvalidJSON(t *testing.T) {
	svc := &stubCatalogService{
		createFn: func(context.Context, services.CreateProductCommand) (services.Product, error) {
			t.Fatal("create should not be called")
			return services.Product{}, nil
		},
	}
	router := NewRouter(WithProductRoutes(NewProductHandlers(svc).Routes))

	req := httptest.NewRequest(http.MethodPost, "/products/", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestProductHandlersList(t *testing.T) {
	svc := &stubCatalogService{
		listFn: func(context.Context) ([]services.Product, error) {
			return []services.Product{
				{ID: 1, Name: "Shirt", Price: 2000, Stock: 3},
				{ID: 2, Name: "Mug", Price: 950, Stock: 12},
			}, nil
		},
	}
	router := NewRouter(WithProductRoutes(NewProductHandlers(svc).Routes))

	req := httptest.NewRequest(http.MethodGet, "/products/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var payload []productPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(payload) != 2 {
		t.Fatalf("expected 2 products, got %d", len(payload))
	}
	if payload[1].Name != "Mug" {
		t.Fatalf("expected second product Mug, got %q", payload[1].Name)
	}
}

func TestProductHandlersGetNotFound(t *testing.T) {
	svc := &stubCatalogService{
		getFn: func(_ context.Context, productID int64) (services.Product, error) {
			return services.Product{}, services.ErrProductNotFound
		},
	}
	router := NewRouter(WithProductRoutes(NewProductHandlers(svc).Routes))

	req := httptest.NewRequest(http.MethodGet, "/products/42", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestProductHandlersGetRejectsBadID(t *testing.T) {
	svc := &stubCatalogService{
		getFn: func(context.Context, int64) (services.Product, error) {
			t.Fatal("get should not be called")
			return services.Product{}, nil
		},
	}
	router := NewRouter(WithProductRoutes(NewProductHandlers(svc).Routes))

	req := httptest.NewRequest(http.MethodGet, "/products/abc", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestProductHandlersDelete(t *testing.T) {
	var deleted int64
	svc := &stubCatalogService{
		deleteFn: func(_ context.Context, productID int64) error {
			deleted = productID
			return nil
		},
	}
	router := NewRouter(WithProductRoutes(NewProductHandlers(svc).Routes))

	req := httptest.NewRequest(http.MethodDelete, "/products/7", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if deleted != 7 {
		t.Fatalf("expected delete of product 7, got %d", deleted)
	}
}
