package services

import (
	"context"
	"errors"
	"testing"

	"github.com/nordmart/storefront/internal/domain"
)

func validCreateCustomerCommand() CreateCustomerCommand {
	return CreateCustomerCommand{
		Firstname:     "Jamie",
		Lastname:      "Nordlund",
		Email:         "jamie@example.com",
		Password:      "secret",
		Phone:         "555-0100",
		StreetAddress: "1 Harbour Way",
		PostalCode:    "11122",
		City:          "Oslo",
		Country:       "Norway",
	}
}

func TestCustomerServiceCreateRequiresAllFields(t *testing.T) {
	repo := &stubCustomerRepository{
		insertFn: func(context.Context, domain.Customer) (domain.Customer, error) {
			t.Fatal("insert should not be called")
			return domain.Customer{}, nil
		},
	}
	svc, err := NewCustomerService(CustomerServiceDeps{Customers: repo})
	if err != nil {
		t.Fatalf("NewCustomerService: %v", err)
	}

	blanked := []func(*CreateCustomerCommand){
		func(c *CreateCustomerCommand) { c.Firstname = "" },
		func(c *CreateCustomerCommand) { c.Lastname = " " },
		func(c *CreateCustomerCommand) { c.Email = "" },
		func(c *CreateCustomerCommand) { c.Password = "" },
		func(c *CreateCustomerCommand) { c.Phone = "" },
		func(c *CreateCustomerCommand) { c.StreetAddress = "" },
		func(c *CreateCustomerCommand) { c.PostalCode = "" },
		func(c *CreateCustomerCommand) { c.City = "" },
		func(c *CreateCustomerCommand) { c.Country = "" },
	}
	for i, blank := range blanked {
		cmd := validCreateCustomerCommand()
		blank(&cmd)
		if _, err := svc.CreateCustomer(context.Background(), cmd); !errors.Is(err, ErrCustomerInvalidInput) {
			t.Fatalf("case %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestCustomerServiceCreateRejectsMalformedEmail(t *testing.T) {
	svc, err := NewCustomerService(CustomerServiceDeps{Customers: &stubCustomerRepository{}})
	if err != nil {
		t.Fatalf("NewCustomerService: %v", err)
	}

	cmd := validCreateCustomerCommand()
	cmd.Email = "not-an-email"
	if _, err := svc.CreateCustomer(context.Background(), cmd); !errors.Is(err, ErrCustomerInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCustomerServiceCreateMapsConflictToEmailTaken(t *testing.T) {
	repo := &stubCustomerRepository{
		insertFn: func(context.Context, domain.Customer) (domain.Customer, error) {
			return domain.Customer{}, &stubRepoError{conflict: true}
		},
	}
	svc, err := NewCustomerService(CustomerServiceDeps{Customers: repo})
	if err != nil {
		t.Fatalf("NewCustomerService: %v", err)
	}

	if _, err := svc.CreateCustomer(context.Background(), validCreateCustomerCommand()); !errors.Is(err, ErrCustomerEmailTaken) {
		t.Fatalf("expected ErrCustomerEmailTaken, got %v", err)
	}
}

func TestCustomerServiceGetByEmailMapsNotFound(t *testing.T) {
	repo := &stubCustomerRepository{
		findByEmailFn: func(_ context.Context, email string) (domain.Customer, error) {
			if email != "missing@example.com" {
				t.Fatalf("unexpected lookup email %q", email)
			}
			return domain.Customer{}, &stubRepoError{notFound: true}
		},
	}
	svc, err := NewCustomerService(CustomerServiceDeps{Customers: repo})
	if err != nil {
		t.Fatalf("NewCustomerService: %v", err)
	}

	if _, err := svc.GetCustomerByEmail(context.Background(), " missing@example.com "); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCustomerServiceUpdateRejectsBlankNames(t *testing.T) {
	svc, err := NewCustomerService(CustomerServiceDeps{Customers: &stubCustomerRepository{}})
	if err != nil {
		t.Fatalf("NewCustomerService: %v", err)
	}

	blank := " "
	if _, err := svc.UpdateCustomer(context.Background(), 3, CustomerPatch{Firstname: &blank}); !errors.Is(err, ErrCustomerInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCustomerServiceUpdatePassesPatchThrough(t *testing.T) {
	city := "Bergen"
	repo := &stubCustomerRepository{
		patchFn: func(_ context.Context, customerID int64, patch domain.CustomerPatch) (domain.Customer, error) {
			if customerID != 7 {
				t.Fatalf("expected customer 7, got %d", customerID)
			}
			if patch.City == nil || *patch.City != "Bergen" {
				t.Fatalf("expected city patch, got %+v", patch)
			}
			out := existingCustomer(7)
			out.City = *patch.City
			return out, nil
		},
	}
	svc, err := NewCustomerService(CustomerServiceDeps{Customers: repo})
	if err != nil {
		t.Fatalf("NewCustomerService: %v", err)
	}

	customer, err := svc.UpdateCustomer(context.Background(), 7, CustomerPatch{City: &city})
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	if customer.City != "Bergen" {
		t.Fatalf("expected patched city, got %q", customer.City)
	}
}
