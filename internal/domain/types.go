package domain

import (
	"time"
)

// PaymentStatus tracks whether an order has been paid for.
type PaymentStatus string

const (
	// PaymentStatusUnpaid indicates no completed payment is associated with the order.
	PaymentStatusUnpaid PaymentStatus = "Unpaid"
	// PaymentStatusPaid indicates the payment processor reports the order as paid.
	PaymentStatusPaid PaymentStatus = "Paid"
)

// OrderStatus describes the fulfilment lifecycle of an order.
type OrderStatus string

const (
	// OrderStatusPending indicates the order has been recorded but not yet processed.
	OrderStatusPending OrderStatus = "Pending"
	// OrderStatusShipped indicates the order has left the warehouse.
	OrderStatusShipped OrderStatus = "Shipped"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "Delivered"
	// OrderStatusCancelled indicates the order was cancelled before fulfilment.
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Product is a catalog entry shoppers add to their cart.
// Price is expressed in minor currency units (cents).
type Product struct {
	ID          int64
	Name        string
	Description string
	Image       string
	Price       int64
	Stock       int
	CreatedAt   time.Time
}

// Customer is a storefront customer record, keyed for lookup by email.
type Customer struct {
	ID            int64
	Firstname     string
	Lastname      string
	Email         string
	Password      string
	Phone         string
	StreetAddress string
	PostalCode    string
	City          string
	Country       string
	CreatedAt     time.Time
}

// Order is a recorded purchase with a denormalised snapshot of the customer's
// contact details at the time of checkout. PaymentID holds the opaque checkout
// session identifier issued by the payment processor; it is empty until the
// session has been created and attached.
type Order struct {
	ID            int64
	CustomerID    int64
	TotalPrice    int64
	PaymentStatus PaymentStatus
	PaymentID     string
	OrderStatus   OrderStatus

	CustomerFirstname     string
	CustomerLastname      string
	CustomerEmail         string
	CustomerPhone         string
	CustomerStreetAddress string
	CustomerPostalCode    string
	CustomerCity          string
	CustomerCountry       string

	Items     []OrderItem
	CreatedAt time.Time
}

// OrderItem is a single order line. ProductName and UnitPrice snapshot the
// product at purchase time so later catalog edits do not rewrite history.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   int64
}

// OrderPatch carries the partial order fields a PATCH may update.
// Nil fields are left untouched.
type OrderPatch struct {
	PaymentStatus *PaymentStatus
	PaymentID     *string
	OrderStatus   *OrderStatus
}

// CustomerPatch carries the partial customer fields a PATCH may update.
type CustomerPatch struct {
	Firstname     *string
	Lastname      *string
	Password      *string
	Phone         *string
	StreetAddress *string
	PostalCode    *string
	City          *string
	Country       *string
}

// OrderItemsTotal sums quantity times unit price over the given items.
func OrderItemsTotal(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}
