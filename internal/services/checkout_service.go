package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nordmart/storefront/internal/domain"
	"github.com/nordmart/storefront/internal/payments"
	"github.com/nordmart/storefront/internal/repositories"
)

var (
	// ErrCheckoutInvalidInput signals the caller provided an unusable checkout payload.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
	// ErrCheckoutGateway indicates the payment provider rejected or failed the call.
	ErrCheckoutGateway = errors.New("checkout: payment gateway failure")
	// ErrCheckoutOrderNotFound indicates no order carries the session's payment id.
	ErrCheckoutOrderNotFound = errors.New("checkout: no order for session")
)

// PaymentGateway is the slice of the payments manager the checkout service uses.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, paymentCtx payments.PaymentContext, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error)
	LookupSession(ctx context.Context, paymentCtx payments.PaymentContext, sessionID string) (payments.SessionDetails, error)
}

// CheckoutServiceDeps bundles collaborators required to construct the checkout service.
type CheckoutServiceDeps struct {
	Gateway  PaymentGateway
	Orders   repositories.OrderRepository
	Currency string
	// FrontendURL is the base the shopper is sent back to after the hosted
	// payment flow, e.g. https://shop.example.com.
	FrontendURL string
	Clock       func() time.Time
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type checkoutService struct {
	gateway     PaymentGateway
	orders      repositories.OrderRepository
	currency    string
	frontendURL string
	clock       func() time.Time
	logger      func(context.Context, string, map[string]any)
}

var _ CheckoutService = (*checkoutService)(nil)

// NewCheckoutService wires dependencies into a concrete CheckoutService implementation.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Gateway == nil {
		return nil, errors.New("checkout service: payment gateway is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("checkout service: order repository is required")
	}
	if strings.TrimSpace(deps.FrontendURL) == "" {
		return nil, errors.New("checkout service: frontend url is required")
	}

	currency := strings.ToLower(strings.TrimSpace(deps.Currency))
	if currency == "" {
		currency = "usd"
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		gateway:     deps.Gateway,
		orders:      deps.Orders,
		currency:    currency,
		frontendURL: strings.TrimRight(strings.TrimSpace(deps.FrontendURL), "/"),
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

// CreateSession asks the payment provider for a hosted checkout session built
// from the shopper's cart lines. The customer identifier travels as the
// session's client reference so the return flow can link the payment back.
func (s *checkoutService) CreateSession(ctx context.Context, cmd CreateSessionCommand) (SessionHandle, error) {
	if cmd.CustomerID <= 0 {
		return SessionHandle{}, fmt.Errorf("%w: customer id is required", ErrCheckoutInvalidInput)
	}
	if len(cmd.Items) == 0 {
		return SessionHandle{}, fmt.Errorf("%w: cart is empty", ErrCheckoutInvalidInput)
	}

	lines := make([]payments.CheckoutLineItem, 0, len(cmd.Items))
	for i, item := range cmd.Items {
		if strings.TrimSpace(item.Name) == "" {
			return SessionHandle{}, fmt.Errorf("%w: item %d is missing a name", ErrCheckoutInvalidInput, i)
		}
		if item.Quantity < 1 {
			return SessionHandle{}, fmt.Errorf("%w: item %d quantity must be at least 1", ErrCheckoutInvalidInput, i)
		}
		if item.UnitPrice < 0 {
			return SessionHandle{}, fmt.Errorf("%w: item %d unit price must not be negative", ErrCheckoutInvalidInput, i)
		}
		lines = append(lines, payments.CheckoutLineItem{
			Name:       item.Name,
			Quantity:   int64(item.Quantity),
			UnitAmount: item.UnitPrice,
			Currency:   s.currency,
		})
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payments.PaymentContext{Currency: s.currency}, payments.CheckoutSessionRequest{
		Currency:          s.currency,
		ClientReferenceID: strconv.FormatInt(cmd.CustomerID, 10),
		SuccessURL:        s.frontendURL + "/return?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         s.frontendURL + "/cart",
		IdempotencyKey:    cmd.IdempotencyKey,
		Items:             lines,
	})
	if err != nil {
		return SessionHandle{}, fmt.Errorf("%w: %v", ErrCheckoutGateway, err)
	}

	s.logger(ctx, "checkout.session.created", map[string]any{
		"sessionId":  session.ID,
		"customerId": cmd.CustomerID,
		"lines":      len(lines),
	})
	return SessionHandle{
		SessionID:   session.ID,
		RedirectURL: session.RedirectURL,
	}, nil
}

// SessionStatus reports the provider's view of a session, normalised to the
// storefront's payment status vocabulary.
func (s *checkoutService) SessionStatus(ctx context.Context, sessionID string) (SessionStatus, error) {
	if strings.TrimSpace(sessionID) == "" {
		return SessionStatus{}, fmt.Errorf("%w: session id is required", ErrCheckoutInvalidInput)
	}

	details, err := s.gateway.LookupSession(ctx, payments.PaymentContext{Currency: s.currency}, sessionID)
	if err != nil {
		return SessionStatus{}, fmt.Errorf("%w: %v", ErrCheckoutGateway, err)
	}

	return SessionStatus{
		Status:        string(details.Status),
		PaymentStatus: paymentStatusFrom(details.PaymentStatus),
		CustomerEmail: details.CustomerEmail,
	}, nil
}

// PaymentDetails resolves the order attached to a session and the payment
// outcome, for the post-payment reconciliation step.
func (s *checkoutService) PaymentDetails(ctx context.Context, sessionID string) (PaymentDetails, error) {
	if strings.TrimSpace(sessionID) == "" {
		return PaymentDetails{}, fmt.Errorf("%w: session id is required", ErrCheckoutInvalidInput)
	}

	details, err := s.gateway.LookupSession(ctx, payments.PaymentContext{Currency: s.currency}, sessionID)
	if err != nil {
		return PaymentDetails{}, fmt.Errorf("%w: %v", ErrCheckoutGateway, err)
	}

	order, err := s.orders.FindByPaymentID(ctx, details.SessionID)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return PaymentDetails{}, fmt.Errorf("%w: %s", ErrCheckoutOrderNotFound, details.SessionID)
		}
		return PaymentDetails{}, err
	}

	return PaymentDetails{
		OrderID:       order.ID,
		PaymentStatus: paymentStatusFrom(details.PaymentStatus),
	}, nil
}

func paymentStatusFrom(status payments.Status) domain.PaymentStatus {
	if status == payments.StatusSucceeded {
		return domain.PaymentStatusPaid
	}
	return domain.PaymentStatusUnpaid
}
