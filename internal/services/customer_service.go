package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/nordmart/storefront/internal/repositories"
)

var (
	// ErrCustomerInvalidInput signals the caller provided invalid customer data.
	ErrCustomerInvalidInput = errors.New("customer: invalid input")
	// ErrCustomerNotFound indicates the customer could not be located.
	ErrCustomerNotFound = errors.New("customer: not found")
	// ErrCustomerEmailTaken indicates another customer already registered the email.
	ErrCustomerEmailTaken = errors.New("customer: email already registered")
)

// CustomerServiceDeps bundles collaborators required to construct the customer service.
type CustomerServiceDeps struct {
	Customers repositories.CustomerRepository
	Clock     func() time.Time
	Logger    func(ctx context.Context, event string, fields map[string]any)
}

type customerService struct {
	customers repositories.CustomerRepository
	clock     func() time.Time
	logger    func(context.Context, string, map[string]any)
}

var _ CustomerService = (*customerService)(nil)

// NewCustomerService wires dependencies into a concrete CustomerService implementation.
func NewCustomerService(deps CustomerServiceDeps) (CustomerService, error) {
	if deps.Customers == nil {
		return nil, errors.New("customer service: customer repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &customerService{
		customers: deps.Customers,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, cmd CreateCustomerCommand) (Customer, error) {
	if err := validateCustomerCommand(cmd); err != nil {
		return Customer{}, err
	}

	customer, err := s.customers.Insert(ctx, Customer{
		Firstname:     strings.TrimSpace(cmd.Firstname),
		Lastname:      strings.TrimSpace(cmd.Lastname),
		Email:         strings.TrimSpace(cmd.Email),
		Password:      cmd.Password,
		Phone:         strings.TrimSpace(cmd.Phone),
		StreetAddress: strings.TrimSpace(cmd.StreetAddress),
		PostalCode:    strings.TrimSpace(cmd.PostalCode),
		City:          strings.TrimSpace(cmd.City),
		Country:       strings.TrimSpace(cmd.Country),
	})
	if err != nil {
		return Customer{}, s.mapRepositoryError(err)
	}

	s.logger(ctx, "customer.created", map[string]any{"customerId": customer.ID})
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (Customer, error) {
	if customerID <= 0 {
		return Customer{}, fmt.Errorf("%w: customer id is required", ErrCustomerInvalidInput)
	}
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return Customer{}, s.mapRepositoryError(err)
	}
	return customer, nil
}

func (s *customerService) GetCustomerByEmail(ctx context.Context, email string) (Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Customer{}, fmt.Errorf("%w: email is required", ErrCustomerInvalidInput)
	}
	customer, err := s.customers.FindByEmail(ctx, email)
	if err != nil {
		return Customer{}, s.mapRepositoryError(err)
	}
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customerID int64, patch CustomerPatch) (Customer, error) {
	if customerID <= 0 {
		return Customer{}, fmt.Errorf("%w: customer id is required", ErrCustomerInvalidInput)
	}
	for field, value := range map[string]*string{
		"firstname": patch.Firstname,
		"lastname":  patch.Lastname,
	} {
		if value != nil && strings.TrimSpace(*value) == "" {
			return Customer{}, fmt.Errorf("%w: %s must not be blank", ErrCustomerInvalidInput, field)
		}
	}

	customer, err := s.customers.Patch(ctx, customerID, patch)
	if err != nil {
		return Customer{}, s.mapRepositoryError(err)
	}
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	if customerID <= 0 {
		return fmt.Errorf("%w: customer id is required", ErrCustomerInvalidInput)
	}
	if err := s.customers.Delete(ctx, customerID); err != nil {
		return s.mapRepositoryError(err)
	}
	s.logger(ctx, "customer.deleted", map[string]any{"customerId": customerID})
	return nil
}

func validateCustomerCommand(cmd CreateCustomerCommand) error {
	fields := map[string]string{
		"firstname":     cmd.Firstname,
		"lastname":      cmd.Lastname,
		"email":         cmd.Email,
		"password":      cmd.Password,
		"phone":         cmd.Phone,
		"streetAddress": cmd.StreetAddress,
		"postalCode":    cmd.PostalCode,
		"city":          cmd.City,
		"country":       cmd.Country,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", ErrCustomerInvalidInput, name)
		}
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(cmd.Email)); err != nil {
		return fmt.Errorf("%w: email is malformed", ErrCustomerInvalidInput)
	}
	return nil
}

func (s *customerService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrCustomerNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrCustomerEmailTaken, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("customer: repository unavailable: %w", err)
		}
	}
	return err
}
