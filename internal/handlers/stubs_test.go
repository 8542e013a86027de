package handlers

import (
	"context"

	"github.com/nordmart/storefront/internal/services"
)

type stubCatalogService struct {
	createFn func(ctx context.Context, cmd services.CreateProductCommand) (services.Product, error)
	updateFn func(ctx context.Context, productID int64, cmd services.UpdateProductCommand) (services.Product, error)
	getFn    func(ctx context.Context, productID int64) (services.Product, error)
	listFn   func(ctx context.Context) ([]services.Product, error)
	deleteFn func(ctx context.Context, productID int64) error
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, cmd services.CreateProductCommand) (services.Product, error) {
	return s.createFn(ctx, cmd)
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, productID int64, cmd services.UpdateProductCommand) (services.Product, error) {
	return s.updateFn(ctx, productID, cmd)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID int64) (services.Product, error) {
	return s.getFn(ctx, productID)
}

func (s *stubCatalogService) ListProducts(ctx context.Context) ([]services.Product, error) {
	return s.listFn(ctx)
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, productID int64) error {
	return s.deleteFn(ctx, productID)
}

type stubCustomerService struct {
	createFn     func(ctx context.Context, cmd services.CreateCustomerCommand) (services.Customer, error)
	getFn        func(ctx context.Context, customerID int64) (services.Customer, error)
	getByEmailFn func(ctx context.Context, email string) (services.Customer, error)
	listFn       func(ctx context.Context) ([]services.Customer, error)
	updateFn     func(ctx context.Context, customerID int64, patch services.CustomerPatch) (services.Customer, error)
	deleteFn     func(ctx context.Context, customerID int64) error
}

func (s *stubCustomerService) CreateCustomer(ctx context.Context, cmd services.CreateCustomerCommand) (services.Customer, error) {
	return s.createFn(ctx, cmd)
}

func (s *stubCustomerService) GetCustomer(ctx context.Context, customerID int64) (services.Customer, error) {
	return s.getFn(ctx, customerID)
}

func (s *stubCustomerService) GetCustomerByEmail(ctx context.Context, email string) (services.Customer, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *stubCustomerService) ListCustomers(ctx context.Context) ([]services.Customer, error) {
	return s.listFn(ctx)
}

func (s *stubCustomerService) UpdateCustomer(ctx context.Context, customerID int64, patch services.CustomerPatch) (services.Customer, error) {
	return s.updateFn(ctx, customerID, patch)
}

func (s *stubCustomerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	return s.deleteFn(ctx, customerID)
}

type stubOrderService struct {
	createFn         func(ctx context.Context, cmd services.CreateOrderCommand) (services.Order, error)
	getFn            func(ctx context.Context, orderID int64) (services.Order, error)
	listFn           func(ctx context.Context) ([]services.Order, error)
	listByCustomerFn func(ctx context.Context, customerID int64) ([]services.Order, error)
	patchFn          func(ctx context.Context, orderID int64, patch services.OrderPatch) (services.Order, error)
	deleteFn         func(ctx context.Context, orderID int64) error
	listItemsFn      func(ctx context.Context, orderID int64) ([]services.OrderItem, error)
	updateItemFn     func(ctx context.Context, itemID int64, quantity int) (services.OrderItem, error)
	removeItemFn     func(ctx context.Context, itemID int64) error
}

func (s *stubOrderService) CreateOrder(ctx context.Context, cmd services.CreateOrderCommand) (services.Order, error) {
	return s.createFn(ctx, cmd)
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID int64) (services.Order, error) {
	return s.getFn(ctx, orderID)
}

func (s *stubOrderService) ListOrders(ctx context.Context) ([]services.Order, error) {
	return s.listFn(ctx)
}

func (s *stubOrderService) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]services.Order, error) {
	return s.listByCustomerFn(ctx, customerID)
}

func (s *stubOrderService) PatchOrder(ctx context.Context, orderID int64, patch services.OrderPatch) (services.Order, error) {
	return s.patchFn(ctx, orderID, patch)
}

func (s *stubOrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	return s.deleteFn(ctx, orderID)
}

func (s *stubOrderService) ListOrderItems(ctx context.Context, orderID int64) ([]services.OrderItem, error) {
	return s.listItemsFn(ctx, orderID)
}

func (s *stubOrderService) UpdateOrderItemQuantity(ctx context.Context, itemID int64, quantity int) (services.OrderItem, error) {
	return s.updateItemFn(ctx, itemID, quantity)
}

func (s *stubOrderService) RemoveOrderItem(ctx context.Context, itemID int64) error {
	return s.removeItemFn(ctx, itemID)
}

type stubCheckoutService struct {
	createFn  func(ctx context.Context, cmd services.CreateSessionCommand) (services.SessionHandle, error)
	statusFn  func(ctx context.Context, sessionID string) (services.SessionStatus, error)
	detailsFn func(ctx context.Context, sessionID string) (services.PaymentDetails, error)
}

func (s *stubCheckoutService) CreateSession(ctx context.Context, cmd services.CreateSessionCommand) (services.SessionHandle, error) {
	return s.createFn(ctx, cmd)
}

func (s *stubCheckoutService) SessionStatus(ctx context.Context, sessionID string) (services.SessionStatus, error) {
	return s.statusFn(ctx, sessionID)
}

func (s *stubCheckoutService) PaymentDetails(ctx context.Context, sessionID string) (services.PaymentDetails, error) {
	return s.detailsFn(ctx, sessionID)
}

type stubSystemService struct {
	report services.HealthReport
	err    error
}

func (s *stubSystemService) HealthReport(context.Context) (services.HealthReport, error) {
	return s.report, s.err
}

var (
	_ services.CatalogService  = (*stubCatalogService)(nil)
	_ services.CustomerService = (*stubCustomerService)(nil)
	_ services.OrderService    = (*stubOrderService)(nil)
	_ services.CheckoutService = (*stubCheckoutService)(nil)
	_ services.SystemService   = (*stubSystemService)(nil)
)
