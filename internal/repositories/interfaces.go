package repositories

import (
	"context"

	"github.com/nordmart/storefront/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Products() ProductRepository
	Customers() CustomerRepository
	Orders() OrderRepository
	Health() HealthRepository
	UnitOfWork
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork allows grouping repository operations in a transactional boundary when supported.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductRepository persists catalog products.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) (domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, productID int64) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Delete(ctx context.Context, productID int64) error
}

// CustomerRepository persists customer profiles. Email addresses are unique;
// Insert returns a RepositoryError with IsConflict on a duplicate.
type CustomerRepository interface {
	Insert(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	Patch(ctx context.Context, customerID int64, patch domain.CustomerPatch) (domain.Customer, error)
	FindByID(ctx context.Context, customerID int64) (domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Delete(ctx context.Context, customerID int64) error
}

// OrderRepository persists order headers together with their line items.
type OrderRepository interface {
	// Insert stores the order and all of its items atomically.
	Insert(ctx context.Context, order domain.Order) (domain.Order, error)
	Patch(ctx context.Context, orderID int64, patch domain.OrderPatch) (domain.Order, error)
	// FindByID loads the order header and its items.
	FindByID(ctx context.Context, orderID int64) (domain.Order, error)
	// FindByPaymentID resolves the order attached to a PSP session reference.
	FindByPaymentID(ctx context.Context, paymentID string) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	Delete(ctx context.Context, orderID int64) error

	ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (domain.OrderItem, error)
	DeleteItem(ctx context.Context, itemID int64) error
}

// HealthRepository exposes status of the backing store for health checks.
type HealthRepository interface {
	Ping(ctx context.Context) error
}
