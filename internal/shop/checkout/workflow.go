// Package checkout drives the shopper's path from cart to paid order as an
// explicit state machine. Each transition validates its preconditions and
// halts with a descriptive error when a collaborator call fails; nothing is
// retried automatically.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nordmart/storefront/internal/shop/api"
	"github.com/nordmart/storefront/internal/shop/cart"
	"github.com/nordmart/storefront/internal/shop/storage"
)

// State names a position in the checkout flow.
type State string

const (
	// StateCart is the initial state: the shopper is editing the cart.
	StateCart State = "cart"
	// StateCustomerInfo collects contact details before payment.
	StateCustomerInfo State = "customerInfo"
	// StateSuccess is entered transiently while the returned payment is
	// reconciled against the order.
	StateSuccess State = "success"
	// StateOrderSummary is terminal: the summary snapshot is on display.
	StateOrderSummary State = "orderSummary"
)

var (
	// ErrEmptyCart blocks checkout when nothing has been added.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrIncompleteInfo reports a missing customer form field.
	ErrIncompleteInfo = errors.New("checkout: all customer fields are required")
	// ErrMissingSession reports a return navigation without a session reference.
	ErrMissingSession = errors.New("checkout: no session reference in return context")
	// ErrInvalidTransition reports a transition attempted from the wrong state.
	ErrInvalidTransition = errors.New("checkout: invalid state transition")
	// ErrDependency wraps a failed collaborator call. The workflow halts at
	// the current step; nothing is rolled back.
	ErrDependency = errors.New("checkout: dependency failure")
)

// CustomerInfo is the checkout form. Every field is mandatory.
type CustomerInfo struct {
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"street_address"`
	PostalCode    string `json:"postal_code"`
	City          string `json:"city"`
	Country       string `json:"country"`
}

// Summary is the post-payment snapshot rendered on the order summary screen.
// It captures the cart contents before they are cleared.
type Summary struct {
	OrderID       int64
	PaymentStatus string
	Customer      CustomerInfo
	Lines         []cart.Line
	Total         int64
}

// Backend is the slice of the storefront API the workflow calls.
type Backend interface {
	GetCustomerByEmail(ctx context.Context, email string) (api.Customer, error)
	CreateCustomer(ctx context.Context, req api.CreateCustomerRequest) (api.Customer, error)
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (api.Order, error)
	PatchOrder(ctx context.Context, orderID int64, patch api.OrderPatch) (api.Order, error)
	CreateCheckoutSession(ctx context.Context, req api.CreateSessionRequest, idempotencyKey string) (api.Session, error)
	GetPaymentDetails(ctx context.Context, sessionID string) (api.PaymentDetails, error)
}

// Config bundles Workflow collaborators.
type Config struct {
	Cart    *cart.Cart
	Backend Backend
	Store   storage.Store
	// NewIdempotencyKey mints the key sent with session creation so a
	// retried submit does not open two sessions. Empty keys are allowed.
	NewIdempotencyKey func() string
}

// Workflow is the checkout state machine for one shopper session.
type Workflow struct {
	state   State
	cart    *cart.Cart
	backend Backend
	store   storage.Store
	newKey  func() string
	summary *Summary
}

// New builds a Workflow in the cart state. Previously saved customer info is
// available through SavedCustomerInfo.
func New(cfg Config) (*Workflow, error) {
	if cfg.Cart == nil {
		return nil, errors.New("checkout: cart is required")
	}
	if cfg.Backend == nil {
		return nil, errors.New("checkout: backend is required")
	}
	newKey := cfg.NewIdempotencyKey
	if newKey == nil {
		newKey = func() string { return "" }
	}
	return &Workflow{
		state:   StateCart,
		cart:    cfg.Cart,
		backend: cfg.Backend,
		store:   cfg.Store,
		newKey:  newKey,
	}, nil
}

// State returns the current workflow state.
func (w *Workflow) State() State {
	return w.state
}

// Summary returns the snapshot captured on successful return, or nil before
// the flow completes.
func (w *Workflow) Summary() *Summary {
	return w.summary
}

// GoToCheckout moves from the cart to the customer form. It refuses to
// proceed with an empty cart.
func (w *Workflow) GoToCheckout() error {
	if w.state != StateCart {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.state, StateCustomerInfo)
	}
	if w.cart.Empty() {
		return ErrEmptyCart
	}
	w.state = StateCustomerInfo
	return nil
}

// BackToCart returns from the customer form to the cart without side effects.
func (w *Workflow) BackToCart() error {
	if w.state != StateCustomerInfo {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.state, StateCart)
	}
	w.state = StateCart
	return nil
}

// SavedCustomerInfo loads the customer form previously persisted to local
// storage, or a zero value when nothing was saved.
func (w *Workflow) SavedCustomerInfo() CustomerInfo {
	if w.store == nil {
		return CustomerInfo{}
	}
	data, err := w.store.Get(storage.KeyCustomerInfo)
	if err != nil {
		return CustomerInfo{}
	}
	var info CustomerInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return CustomerInfo{}
	}
	return info
}

// Submit runs the payment handoff sequence: validate the form, look up or
// create the customer, record the order, open a payment session, and attach
// the session identifier to the order. It returns the URL the shopper must
// be redirected to. The state does not change; the flow resumes in
// CompleteReturn when the shopper comes back from the processor.
//
// A failure after order creation leaves the order Unpaid and Pending with an
// empty payment id; no compensating deletion is attempted.
func (w *Workflow) Submit(ctx context.Context, info CustomerInfo) (string, error) {
	if w.state != StateCustomerInfo {
		return "", fmt.Errorf("%w: submit from %s", ErrInvalidTransition, w.state)
	}
	if err := validateInfo(info); err != nil {
		return "", err
	}
	lines := w.cart.Lines()
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	w.persistInfo(info)

	customer, err := w.resolveCustomer(ctx, info)
	if err != nil {
		return "", err
	}
	if customer.ID <= 0 {
		return "", fmt.Errorf("%w: backend returned no customer identifier", ErrDependency)
	}

	orderReq := api.CreateOrderRequest{
		CustomerID:            customer.ID,
		TotalPrice:            w.cart.Total(),
		CustomerFirstname:     info.Firstname,
		CustomerLastname:      info.Lastname,
		CustomerEmail:         info.Email,
		CustomerPhone:         info.Phone,
		CustomerStreetAddress: info.StreetAddress,
		CustomerPostalCode:    info.PostalCode,
		CustomerCity:          info.City,
		CustomerCountry:       info.Country,
	}
	sessionItems := make([]api.SessionItem, 0, len(lines))
	for _, line := range lines {
		orderReq.OrderItems = append(orderReq.OrderItems, api.CreateOrderItem{
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
		sessionItems = append(sessionItems, api.SessionItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	order, err := w.backend.CreateOrder(ctx, orderReq)
	if err != nil {
		return "", fmt.Errorf("%w: create order: %v", ErrDependency, err)
	}

	session, err := w.backend.CreateCheckoutSession(ctx, api.CreateSessionRequest{
		CustomerID: customer.ID,
		Items:      sessionItems,
	}, w.newKey())
	if err != nil {
		return "", fmt.Errorf("%w: create session: %v", ErrDependency, err)
	}
	if strings.TrimSpace(session.SessionID) == "" {
		return "", fmt.Errorf("%w: processor returned no session identifier", ErrDependency)
	}

	unpaid := "Unpaid"
	pending := "Pending"
	if _, err := w.backend.PatchOrder(ctx, order.ID, api.OrderPatch{
		PaymentStatus: &unpaid,
		PaymentID:     &session.SessionID,
		OrderStatus:   &pending,
	}); err != nil {
		return "", fmt.Errorf("%w: attach payment id: %v", ErrDependency, err)
	}

	return session.RedirectURL, nil
}

// CompleteReturn reconciles the order after the shopper comes back from the
// processor. On success the cart is cleared and the workflow lands in the
// order summary state; on any failure the cart is left intact.
func (w *Workflow) CompleteReturn(ctx context.Context, sessionID string) (Summary, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Summary{}, ErrMissingSession
	}

	details, err := w.backend.GetPaymentDetails(ctx, sessionID)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: payment details: %v", ErrDependency, err)
	}

	pending := "Pending"
	if _, err := w.backend.PatchOrder(ctx, details.OrderID, api.OrderPatch{
		PaymentStatus: &details.PaymentStatus,
		OrderStatus:   &pending,
	}); err != nil {
		return Summary{}, fmt.Errorf("%w: reconcile order: %v", ErrDependency, err)
	}

	w.state = StateSuccess

	summary := Summary{
		OrderID:       details.OrderID,
		PaymentStatus: details.PaymentStatus,
		Customer:      w.SavedCustomerInfo(),
		Lines:         w.cart.Lines(),
		Total:         w.cart.Total(),
	}
	if err := w.cart.Clear(); err != nil {
		return Summary{}, fmt.Errorf("%w: clear cart: %v", ErrDependency, err)
	}

	w.summary = &summary
	w.state = StateOrderSummary
	return summary, nil
}

func (w *Workflow) resolveCustomer(ctx context.Context, info CustomerInfo) (api.Customer, error) {
	customer, err := w.backend.GetCustomerByEmail(ctx, info.Email)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, api.ErrNotFound) {
		return api.Customer{}, fmt.Errorf("%w: customer lookup: %v", ErrDependency, err)
	}

	created, err := w.backend.CreateCustomer(ctx, api.CreateCustomerRequest{
		Firstname:     info.Firstname,
		Lastname:      info.Lastname,
		Email:         info.Email,
		Password:      info.Password,
		Phone:         info.Phone,
		StreetAddress: info.StreetAddress,
		PostalCode:    info.PostalCode,
		City:          info.City,
		Country:       info.Country,
	})
	if err != nil {
		return api.Customer{}, fmt.Errorf("%w: create customer: %v", ErrDependency, err)
	}
	return created, nil
}

func (w *Workflow) persistInfo(info CustomerInfo) {
	if w.store == nil {
		return
	}
	data, err := json.Marshal(info)
	if err != nil {
		return
	}
	_ = w.store.Set(storage.KeyCustomerInfo, data)
}

func validateInfo(info CustomerInfo) error {
	fields := map[string]string{
		"firstname":      info.Firstname,
		"lastname":       info.Lastname,
		"email":          info.Email,
		"password":       info.Password,
		"phone":          info.Phone,
		"street address": info.StreetAddress,
		"postal code":    info.PostalCode,
		"city":           info.City,
		"country":        info.Country,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is empty", ErrIncompleteInfo, name)
		}
	}
	return nil
}
