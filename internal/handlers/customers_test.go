package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nordmart/storefront/internal/services"
)

func TestCustomerHandlersCreate(t *testing.T) {
	svc := &stubCustomerService{
		createFn: func(_ context.Context, cmd services.CreateCustomerCommand) (services.Customer, error) {
			if cmd.Email != "jamie@example.com" {
				t.Fatalf("expected email jamie@example.com, got %q", cmd.Email)
			}
			return services.Customer{
				ID:        11,
				Firstname: cmd.Firstname,
				Lastname:  cmd.Lastname,
				Email:     cmd.Email,
				Password:  cmd.Password,
			}, nil
		},
	}
	router := NewRouter(WithCustomerRoutes(NewCustomerHandlers(svc).Routes))

	body := `{
		"firstname":"Jamie","lastname":"Nordlund","email":"jamie@example.com",
		"password":"secret","phone":"12345678","street_address":"Main St 1",
		"postal_code":"0150","city":"Oslo","country":"Norway"
	}`
	req := httptest.NewRequest(http.MethodPost, "/customers/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload["id"] != float64(11) {
		t.Fatalf("expected id 11, got %v", payload["id"])
	}
	if _, ok := payload["password"]; ok {
		t.Fatal("password must not appear in responses")
	}
}

func TestCustomerHandlersCreateConflict(t *testing.T) {
	svc := &stubCustomerService{
		createFn: func(context.Context, services.CreateCustomerCommand) (services.Customer, error) {
			return services.Customer{}, services.ErrCustomerEmailTaken
		},
	}
	router := NewRouter(WithCustomerRoutes(NewCustomerHandlers(svc).Routes))

	body := `{"firstname":"Jamie","lastname":"Nordlund","email":"jamie@example.com","password":"secret","phone":"1","street_address":"a","postal_code":"b","city":"c","country":"d"}`
	req := httptest.NewRequest(http.MethodPost, "/customers/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}

func TestCustomerHandlersGetByEmail(t *testing.T) {
	svc := &stubCustomerService{
		getByEmailFn: func(_ context.Context, email string) (services.Customer, error) {
			if email != "jamie@example.com" {
				t.Fatalf("unexpected email %q", email)
			}
			return services.Customer{ID: 7, Email: email}, nil
		},
	}
	router := NewRouter(WithCustomerRoutes(NewCustomerHandlers(svc).Routes))

	req := httptest.NewRequest(http.MethodGet, "/customers/email/jamie@example.com", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload customerPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload.ID != 7 {
		t.Fatalf("expected id 7, got %d", payload.ID)
	}
}

func TestCustomerHandlersGetByEmailNotFound(t *testing.T) {
	svc := &stubCustomerService{
		getByEmailFn: func(context.Context, string) (services.Customer, error) {
			return services.Customer{}, services.ErrCustomerNotFound
		},
	}
	router := NewRouter(WithCustomerRoutes(NewCustomerHandlers(svc).Routes))

	req := httptest.NewRequest(http.MethodGet, "/customers/email/missing@example.com", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestCustomerHandlersPatch(t *testing.T) {
	svc := &stubCustomerService{
		updateFn: func(_ context.Context, customerID int64, patch services.CustomerPatch) (services.Customer, error) {
			if customerID != 5 {
				t.Fatalf("expected customer 5, got %d", customerID)
			}
			if patch.City == nil || *patch.City != "Bergen" {
				t.Fatalf("expected city patch Bergen, got %+v", patch.City)
			}
			if patch.Firstname != nil {
				t.Fatal("firstname should stay untouched")
			}
			return services.Customer{ID: customerID, City: *patch.City}, nil
		},
	}
	router := NewRouter(WithCustomerRoutes(NewCustomerHandlers(svc).Routes))

	req := httptest.NewRequest(http.MethodPatch, "/customers/5", strings.NewReader(`{"city":"Bergen"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCustomerHandlersDelete(t *testing.T) {
	var deleted int64
	svc := &stubCustomerService{
		deleteFn: func(_ context.Context, customerID int64) error {
			deleted = customerID
			return nil
		},
	}
	router := NewRouter(WithCustomerRoutes(NewCustomerHandlers(svc).Routes))

	req := httptest.NewRequest(http.MethodDelete, "/customers/5", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if deleted != 5 {
		t.Fatalf("expected delete of customer 5, got %d", deleted)
	}
}
