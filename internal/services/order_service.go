package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nordmart/storefront/internal/domain"
	"github.com/nordmart/storefront/internal/repositories"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid order data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order or order item could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderConflict indicates a constraint violation while persisting the order.
	ErrOrderConflict = errors.New("order: conflict")
	// ErrOrderTotalMismatch indicates the submitted total does not match the line items.
	ErrOrderTotalMismatch = errors.New("order: total price does not match items")
)

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders     repositories.OrderRepository
	Customers  repositories.CustomerRepository
	UnitOfWork repositories.UnitOfWork
	Clock      func() time.Time
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders     repositories.OrderRepository
	customers  repositories.CustomerRepository
	unitOfWork repositories.UnitOfWork
	clock      func() time.Time
	logger     func(context.Context, string, map[string]any)
}

var _ OrderService = (*orderService)(nil)

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Customers == nil {
		return nil, errors.New("order service: customer repository is required")
	}

	unit := deps.UnitOfWork
	if unit == nil {
		unit = noopUnitOfWork{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderService{
		orders:     deps.Orders,
		customers:  deps.Customers,
		unitOfWork: unit,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

func (s *orderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (Order, error) {
	if cmd.CustomerID <= 0 {
		return Order{}, fmt.Errorf("%w: customer id is required", ErrOrderInvalidInput)
	}
	if len(cmd.Items) == 0 {
		return Order{}, fmt.Errorf("%w: at least one item is required", ErrOrderInvalidInput)
	}

	items := make([]OrderItem, 0, len(cmd.Items))
	for i, item := range cmd.Items {
		if item.ProductID <= 0 {
			return Order{}, fmt.Errorf("%w: item %d is missing a product id", ErrOrderInvalidInput, i)
		}
		if item.Quantity < 1 {
			return Order{}, fmt.Errorf("%w: item %d quantity must be at least 1", ErrOrderInvalidInput, i)
		}
		if item.UnitPrice < 0 {
			return Order{}, fmt.Errorf("%w: item %d unit price must not be negative", ErrOrderInvalidInput, i)
		}
		items = append(items, OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	if total := domain.OrderItemsTotal(items); cmd.TotalPrice != total {
		return Order{}, fmt.Errorf("%w: submitted %d, items sum to %d", ErrOrderTotalMismatch, cmd.TotalPrice, total)
	}

	var created Order
	err := s.unitOfWork.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.customers.FindByID(ctx, cmd.CustomerID); err != nil {
			var repoErr repositories.RepositoryError
			if errors.As(err, &repoErr) && repoErr.IsNotFound() {
				return fmt.Errorf("%w: customer %d does not exist", ErrOrderInvalidInput, cmd.CustomerID)
			}
			return s.mapRepositoryError(err)
		}
		order, err := s.orders.Insert(ctx, Order{
			CustomerID:            cmd.CustomerID,
			TotalPrice:            cmd.TotalPrice,
			PaymentStatus:         domain.PaymentStatusUnpaid,
			OrderStatus:           domain.OrderStatusPending,
			Items:                 items,
			CustomerFirstname:     cmd.CustomerFirstname,
			CustomerLastname:      cmd.CustomerLastname,
			CustomerEmail:         cmd.CustomerEmail,
			CustomerPhone:         cmd.CustomerPhone,
			CustomerStreetAddress: cmd.CustomerStreetAddress,
			CustomerPostalCode:    cmd.CustomerPostalCode,
			CustomerCity:          cmd.CustomerCity,
			CustomerCountry:       cmd.CustomerCountry,
		})
		if err != nil {
			return s.mapRepositoryError(err)
		}
		created = order
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	s.logger(ctx, "order.created", map[string]any{
		"orderId":    created.ID,
		"customerId": created.CustomerID,
		"totalPrice": created.TotalPrice,
		"items":      len(created.Items),
	})
	return created, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID int64) (Order, error) {
	if orderID <= 0 {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, s.mapRepositoryError(err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return orders, nil
}

func (s *orderService) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: customer id is required", ErrOrderInvalidInput)
	}
	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return orders, nil
}

func (s *orderService) PatchOrder(ctx context.Context, orderID int64, patch OrderPatch) (Order, error) {
	if orderID <= 0 {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if patch.PaymentStatus != nil && !validPaymentStatus(*patch.PaymentStatus) {
		return Order{}, fmt.Errorf("%w: unknown payment status %q", ErrOrderInvalidInput, *patch.PaymentStatus)
	}
	if patch.OrderStatus != nil && !validOrderStatus(*patch.OrderStatus) {
		return Order{}, fmt.Errorf("%w: unknown order status %q", ErrOrderInvalidInput, *patch.OrderStatus)
	}

	order, err := s.orders.Patch(ctx, orderID, patch)
	if err != nil {
		return Order{}, s.mapRepositoryError(err)
	}

	fields := map[string]any{"orderId": order.ID}
	if patch.PaymentStatus != nil {
		fields["paymentStatus"] = *patch.PaymentStatus
	}
	if patch.PaymentID != nil {
		fields["paymentId"] = *patch.PaymentID
	}
	s.logger(ctx, "order.patched", fields)
	return order, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return s.mapRepositoryError(err)
	}
	s.logger(ctx, "order.deleted", map[string]any{"orderId": orderID})
	return nil
}

func (s *orderService) ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	items, err := s.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return items, nil
}

func (s *orderService) UpdateOrderItemQuantity(ctx context.Context, itemID int64, quantity int) (OrderItem, error) {
	if itemID <= 0 {
		return OrderItem{}, fmt.Errorf("%w: item id is required", ErrOrderInvalidInput)
	}
	if quantity < 1 {
		return OrderItem{}, fmt.Errorf("%w: quantity must be at least 1", ErrOrderInvalidInput)
	}
	item, err := s.orders.UpdateItemQuantity(ctx, itemID, quantity)
	if err != nil {
		return OrderItem{}, s.mapRepositoryError(err)
	}
	return item, nil
}

func (s *orderService) RemoveOrderItem(ctx context.Context, itemID int64) error {
	if itemID <= 0 {
		return fmt.Errorf("%w: item id is required", ErrOrderInvalidInput)
	}
	if err := s.orders.DeleteItem(ctx, itemID); err != nil {
		return s.mapRepositoryError(err)
	}
	return nil
}

func validPaymentStatus(status PaymentStatus) bool {
	switch status {
	case domain.PaymentStatusUnpaid, domain.PaymentStatusPaid:
		return true
	}
	return false
}

func validOrderStatus(status OrderStatus) bool {
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCancelled:
		return true
	}
	return false
}

type noopUnitOfWork struct{}

func (noopUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *orderService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrOrderConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("order: repository unavailable: %w", err)
		}
	}
	return err
}
