package services

import (
	"context"
	"fmt"

	"github.com/nordmart/storefront/internal/domain"
	"github.com/nordmart/storefront/internal/payments"
)

type stubRepoError struct {
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *stubRepoError) Error() string       { return fmt.Sprintf("stub repo error %+v", *e) }
func (e *stubRepoError) IsNotFound() bool    { return e.notFound }
func (e *stubRepoError) IsConflict() bool    { return e.conflict }
func (e *stubRepoError) IsUnavailable() bool { return e.unavailable }

type stubProductRepository struct {
	insertFn   func(ctx context.Context, product domain.Product) (domain.Product, error)
	updateFn   func(ctx context.Context, product domain.Product) (domain.Product, error)
	findByIDFn func(ctx context.Context, productID int64) (domain.Product, error)
	listFn     func(ctx context.Context) ([]domain.Product, error)
	deleteFn   func(ctx context.Context, productID int64) error
}

func (s *stubProductRepository) Insert(ctx context.Context, product domain.Product) (domain.Product, error) {
	return s.insertFn(ctx, product)
}

func (s *stubProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	return s.updateFn(ctx, product)
}

func (s *stubProductRepository) FindByID(ctx context.Context, productID int64) (domain.Product, error) {
	return s.findByIDFn(ctx, productID)
}

func (s *stubProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	return s.listFn(ctx)
}

func (s *stubProductRepository) Delete(ctx context.Context, productID int64) error {
	return s.deleteFn(ctx, productID)
}

type stubCustomerRepository struct {
	insertFn      func(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	patchFn       func(ctx context.Context, customerID int64, patch domain.CustomerPatch) (domain.Customer, error)
	findByIDFn    func(ctx context.Context, customerID int64) (domain.Customer, error)
	findByEmailFn func(ctx context.Context, email string) (domain.Customer, error)
	listFn        func(ctx context.Context) ([]domain.Customer, error)
	deleteFn      func(ctx context.Context, customerID int64) error
}

func (s *stubCustomerRepository) Insert(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	return s.insertFn(ctx, customer)
}

func (s *stubCustomerRepository) Patch(ctx context.Context, customerID int64, patch domain.CustomerPatch) (domain.Customer, error) {
	return s.patchFn(ctx, customerID, patch)
}

func (s *stubCustomerRepository) FindByID(ctx context.Context, customerID int64) (domain.Customer, error) {
	return s.findByIDFn(ctx, customerID)
}

func (s *stubCustomerRepository) FindByEmail(ctx context.Context, email string) (domain.Customer, error) {
	return s.findByEmailFn(ctx, email)
}

func (s *stubCustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	return s.listFn(ctx)
}

func (s *stubCustomerRepository) Delete(ctx context.Context, customerID int64) error {
	return s.deleteFn(ctx, customerID)
}

type stubOrderRepository struct {
	insertFn             func(ctx context.Context, order domain.Order) (domain.Order, error)
	patchFn              func(ctx context.Context, orderID int64, patch domain.OrderPatch) (domain.Order, error)
	findByIDFn           func(ctx context.Context, orderID int64) (domain.Order, error)
	findByPaymentIDFn    func(ctx context.Context, paymentID string) (domain.Order, error)
	listFn               func(ctx context.Context) ([]domain.Order, error)
	listByCustomerFn     func(ctx context.Context, customerID int64) ([]domain.Order, error)
	deleteFn             func(ctx context.Context, orderID int64) error
	listItemsFn          func(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	updateItemQuantityFn func(ctx context.Context, itemID int64, quantity int) (domain.OrderItem, error)
	deleteItemFn         func(ctx context.Context, itemID int64) error
}

func (s *stubOrderRepository) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	return s.insertFn(ctx, order)
}

func (s *stubOrderRepository) Patch(ctx context.Context, orderID int64, patch domain.OrderPatch) (domain.Order, error) {
	return s.patchFn(ctx, orderID, patch)
}

func (s *stubOrderRepository) FindByID(ctx context.Context, orderID int64) (domain.Order, error) {
	return s.findByIDFn(ctx, orderID)
}

func (s *stubOrderRepository) FindByPaymentID(ctx context.Context, paymentID string) (domain.Order, error) {
	return s.findByPaymentIDFn(ctx, paymentID)
}

func (s *stubOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return s.listFn(ctx)
}

func (s *stubOrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	return s.listByCustomerFn(ctx, customerID)
}

func (s *stubOrderRepository) Delete(ctx context.Context, orderID int64) error {
	return s.deleteFn(ctx, orderID)
}

func (s *stubOrderRepository) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	return s.listItemsFn(ctx, orderID)
}

func (s *stubOrderRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (domain.OrderItem, error) {
	return s.updateItemQuantityFn(ctx, itemID, quantity)
}

func (s *stubOrderRepository) DeleteItem(ctx context.Context, itemID int64) error {
	return s.deleteItemFn(ctx, itemID)
}

type stubGateway struct {
	createFn func(ctx context.Context, paymentCtx payments.PaymentContext, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error)
	lookupFn func(ctx context.Context, paymentCtx payments.PaymentContext, sessionID string) (payments.SessionDetails, error)
}

func (s *stubGateway) CreateCheckoutSession(ctx context.Context, paymentCtx payments.PaymentContext, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
	return s.createFn(ctx, paymentCtx, req)
}

func (s *stubGateway) LookupSession(ctx context.Context, paymentCtx payments.PaymentContext, sessionID string) (payments.SessionDetails, error) {
	return s.lookupFn(ctx, paymentCtx, sessionID)
}

func existingCustomer(id int64) domain.Customer {
	return domain.Customer{
		ID:            id,
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
