// Package api is the storefront backend client used by the shopping
// workflow. Responses and requests mirror the backend's JSON wire format.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound reports a 404 from the backend.
var ErrNotFound = errors.New("api: not found")

const (
	defaultTimeout      = 15 * time.Second
	itemsFanOutLimit    = 8
	maxResponseBodySize = 4 << 20
)

// Product mirrors the backend catalog payload.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
}

// Customer mirrors the backend customer payload.
type Customer struct {
	ID            int64  `json:"id"`
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"street_address"`
	PostalCode    string `json:"postal_code"`
	City          string `json:"city"`
	Country       string `json:"country"`
}

// CreateCustomerRequest carries the registration payload.
type CreateCustomerRequest struct {
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

// OrderItem mirrors a backend order line.
type OrderItem struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"order_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// Order mirrors the backend order payload.
type Order struct {
	ID            int64       `json:"id"`
	CustomerID    int64       `json:"customer_id"`
	TotalPrice    int64       `json:"total_price"`
	PaymentStatus string      `json:"payment_status"`
	PaymentID     string      `json:"payment_id"`
	OrderStatus   string      `json:"order_status"`
	OrderItems    []OrderItem `json:"order_items"`
}

// CreateOrderItem is a requested order line.
type CreateOrderItem struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// CreateOrderRequest carries the order creation payload.
type CreateOrderRequest struct {
	CustomerID int64             `json:"customer_id"`
	TotalPrice int64             `json:"total_price"`
	OrderItems []CreateOrderItem `json:"order_items"`

	CustomerFirstname     string `json:"customer_firstname"`
	CustomerLastname      string `json:"customer_lastname"`
	CustomerEmail         string `json:"customer_email"`
	CustomerPhone         string `json:"customer_phone"`
	CustomerStreetAddress string `json:"customer_street_address"`
	CustomerPostalCode    string `json:"customer_postal_code"`
	CustomerCity          string `json:"customer_city"`
	CustomerCountry       string `json:"customer_country"`
}

// OrderPatch carries the partial order update payload. Nil fields are
// omitted from the request.
type OrderPatch struct {
	PaymentStatus *string `json:"payment_status,omitempty"`
	PaymentID     *string `json:"payment_id,omitempty"`
	OrderStatus   *string `json:"order_status,omitempty"`
}

// SessionItem is a cart line forwarded to session creation.
type SessionItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// CreateSessionRequest carries the checkout session payload.
type CreateSessionRequest struct {
	CustomerID int64         `json:"customer_id"`
	Items      []SessionItem `json:"items"`
}

// Session is the result of checkout session creation.
type Session struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// SessionStatus reports the state of a hosted checkout session.
type SessionStatus struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	CustomerEmail string `json:"customer_email"`
}

// PaymentDetails links a session back to its order.
type PaymentDetails struct {
	OrderID       int64  `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
}

// Client talks to the storefront backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption customises the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for the given backend base URL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api: base url is required")
	}
	c := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListProducts fetches the catalog.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetCustomerByEmail looks up a customer, returning ErrNotFound when the
// email is unregistered.
func (c *Client) GetCustomerByEmail(ctx context.Context, email string) (Customer, error) {
	var customer Customer
	path := "/customers/email/" + url.PathEscape(strings.TrimSpace(email))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &customer); err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// CreateCustomer registers a new customer.
func (c *Client) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/customers", nil, req, &customer); err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// CreateOrder records a new order with its items.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, req, &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

// GetOrder fetches one order including its items.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil, nil, &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

// PatchOrder applies a partial update to an order.
func (c *Client) PatchOrder(ctx context.Context, orderID int64, patch OrderPatch) (Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/orders/%d", orderID), nil, patch, &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

// ListOrders fetches all orders.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrderItems fetches the items of one order.
func (c *Client) ListOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	var items []OrderItem
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/items", orderID), nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListOrdersWithItems fetches all orders and re-fetches each order's items
// concurrently. A failed items fetch degrades that order's items to an
// empty list instead of failing the whole listing.
func (c *Client) ListOrdersWithItems(ctx context.Context) ([]Order, error) {
	orders, err := c.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(itemsFanOutLimit)
	for i := range orders {
		g.Go(func() error {
			items, err := c.ListOrderItems(gctx, orders[i].ID)
			if err != nil {
				orders[i].OrderItems = []OrderItem{}
				return nil
			}
			orders[i].OrderItems = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateCheckoutSession asks the backend for a hosted payment session. The
// idempotency key deduplicates retried submissions.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CreateSessionRequest, idempotencyKey string) (Session, error) {
	headers := http.Header{}
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		headers.Set("Idempotency-Key", key)
	}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/create-checkout-session", headers, req, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// GetSessionStatus fetches the provider's view of a session.
func (c *Client) GetSessionStatus(ctx context.Context, sessionID string) (SessionStatus, error) {
	var status SessionStatus
	path := "/session_status?session_id=" + url.QueryEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &status); err != nil {
		return SessionStatus{}, err
	}
	return status, nil
}

// GetPaymentDetails resolves the order and payment outcome for a session.
func (c *Client) GetPaymentDetails(ctx context.Context, sessionID string) (PaymentDetails, error) {
	var details PaymentDetails
	path := "/payment_details?session_id=" + url.QueryEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &details); err != nil {
		return PaymentDetails{}, err
	}
	return details, nil
}

func (c *Client) do(ctx context.Context, method, path string, headers http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, values := range headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("api: %s %s: %s", method, path, summarizeError(resp.StatusCode, data))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func summarizeError(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return fmt.Sprintf("status %d: %s", status, payload.Message)
	}
	return fmt.Sprintf("status %d", status)
}
