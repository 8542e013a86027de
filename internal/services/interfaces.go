package services

import (
	"context"

	"github.com/nordmart/storefront/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Product       = domain.Product
	Customer      = domain.Customer
	CustomerPatch = domain.CustomerPatch
	Order         = domain.Order
	OrderItem     = domain.OrderItem
	OrderPatch    = domain.OrderPatch
	PaymentStatus = domain.PaymentStatus
	OrderStatus   = domain.OrderStatus
)

// CatalogService manages the product catalog backing the storefront.
type CatalogService interface {
	CreateProduct(ctx context.Context, cmd CreateProductCommand) (Product, error)
	UpdateProduct(ctx context.Context, productID int64, cmd UpdateProductCommand) (Product, error)
	GetProduct(ctx context.Context, productID int64) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	DeleteProduct(ctx context.Context, productID int64) error
}

// CustomerService manages customer records, including the email lookup the
// checkout flow relies on to avoid duplicate registrations.
type CustomerService interface {
	CreateCustomer(ctx context.Context, cmd CreateCustomerCommand) (Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, patch CustomerPatch) (Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
}

// OrderService encapsulates order ledger read/write flows.
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (Order, error)
	GetOrder(ctx context.Context, orderID int64) (Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID int64) ([]Order, error)
	PatchOrder(ctx context.Context, orderID int64, patch OrderPatch) (Order, error)
	DeleteOrder(ctx context.Context, orderID int64) error

	ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	UpdateOrderItemQuantity(ctx context.Context, itemID int64, quantity int) (OrderItem, error)
	RemoveOrderItem(ctx context.Context, itemID int64) error
}

// CheckoutService coordinates PSP session creation and post-payment reconciliation.
type CheckoutService interface {
	CreateSession(ctx context.Context, cmd CreateSessionCommand) (SessionHandle, error)
	SessionStatus(ctx context.Context, sessionID string) (SessionStatus, error)
	PaymentDetails(ctx context.Context, sessionID string) (PaymentDetails, error)
}

// SystemService exposes dependency health for liveness probes.
type SystemService interface {
	HealthReport(ctx context.Context) (HealthReport, error)
}

// CreateProductCommand carries the fields accepted when creating a product.
type CreateProductCommand struct {
	Name        string
	Description string
	Image       string
	Price       int64
	Stock       int
}

// UpdateProductCommand carries the full replacement fields for a product update.
type UpdateProductCommand struct {
	Name        string
	Description string
	Image       string
	Price       int64
	Stock       int
}

// CreateCustomerCommand carries the fields accepted when registering a customer.
type CreateCustomerCommand struct {
	Firstname     string
	Lastname      string
	Email         string
	Password      string
	Phone         string
	StreetAddress string
	PostalCode    string
	City          string
	Country       string
}

// CreateOrderItemInput is a single requested order line.
type CreateOrderItemInput struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   int64
}

// CreateOrderCommand carries the fields accepted when recording an order.
// TotalPrice must equal the sum of item quantity times unit price.
type CreateOrderCommand struct {
	CustomerID int64
	TotalPrice int64
	Items      []CreateOrderItemInput

	CustomerFirstname     string
	CustomerLastname      string
	CustomerEmail         string
	CustomerPhone         string
	CustomerStreetAddress string
	CustomerPostalCode    string
	CustomerCity          string
	CustomerCountry       string
}

// CreateSessionLineItem is a cart line forwarded to the payment provider.
type CreateSessionLineItem struct {
	ProductID int64
	Name      string
	UnitPrice int64
	Quantity  int
}

// CreateSessionCommand carries the payload for hosted checkout session creation.
type CreateSessionCommand struct {
	CustomerID     int64
	Items          []CreateSessionLineItem
	IdempotencyKey string
}

// SessionHandle is the client-facing result of session creation.
type SessionHandle struct {
	SessionID   string
	RedirectURL string
}

// SessionStatus reports the state of a hosted checkout session.
type SessionStatus struct {
	Status        string
	PaymentStatus PaymentStatus
	CustomerEmail string
}

// PaymentDetails links a completed session back to the order it paid for.
type PaymentDetails struct {
	OrderID       int64
	PaymentStatus PaymentStatus
}

// HealthReport summarises dependency checks for the health endpoint.
type HealthReport struct {
	Status string
	Checks map[string]string
}
