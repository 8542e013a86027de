package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
)

type stubSessionAPI struct {
	newFn func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	getFn func(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func (s *stubSessionAPI) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return s.newFn(params)
}

func (s *stubSessionAPI) Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return s.getFn(id, params)
}

func TestStripeProviderCreateCheckoutSession(t *testing.T) {
	var captured *stripe.CheckoutSessionParams
	api := &stubSessionAPI{
		newFn: func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			captured = params
			return &stripe.CheckoutSession{
				ID:          "cs_123",
				URL:         "https://checkout.example.com/cs_123",
				AmountTotal: 4500,
				ExpiresAt:   time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC).Unix(),
			}, nil
		},
	}
	provider, err := NewStripeProvider(StripeProviderConfig{Sessions: api})
	require.NoError(t, err)

	session, err := provider.CreateCheckoutSession(context.Background(), CheckoutSessionRequest{
		Currency:          "usd",
		ClientReferenceID: "42",
		SuccessURL:        "https://shop.example.com/return?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         "https://shop.example.com/cart",
		Items: []CheckoutLineItem{
			{Name: "Mug", Quantity: 2, UnitAmount: 1500},
			{Name: "Poster", Quantity: 1, UnitAmount: 1500},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_123", session.ID)
	assert.Equal(t, "https://checkout.example.com/cs_123", session.RedirectURL)
	assert.Equal(t, int64(4500), session.AmountTotal)
	assert.Equal(t, time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC), session.ExpiresAt)

	require.NotNil(t, captured)
	assert.Equal(t, string(stripe.CheckoutSessionModePayment), *captured.Mode)
	assert.Equal(t, "42", *captured.ClientReferenceID)
	require.Len(t, captured.LineItems, 2)
	assert.Equal(t, int64(2), *captured.LineItems[0].Quantity)
	assert.Equal(t, int64(1500), *captured.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "usd", *captured.LineItems[0].PriceData.Currency)
	assert.Equal(t, "Mug", *captured.LineItems[0].PriceData.ProductData.Name)
}

func TestStripeProviderCreateRequiresLineItems(t *testing.T) {
	provider, err := NewStripeProvider(StripeProviderConfig{Sessions: &stubSessionAPI{}})
	require.NoError(t, err)

	_, err = provider.CreateCheckoutSession(context.Background(), CheckoutSessionRequest{Currency: "usd"})
	assert.Error(t, err)
}

func TestStripeProviderLookupSession(t *testing.T) {
	tests := []struct {
		name          string
		session       *stripe.CheckoutSession
		wantStatus    SessionStatus
		wantPayment   Status
		wantEmail     string
		wantReference string
	}{
		{
			name: "paid and complete",
			session: &stripe.CheckoutSession{
				ID:                "cs_1",
				Status:            stripe.CheckoutSessionStatusComplete,
				PaymentStatus:     stripe.CheckoutSessionPaymentStatusPaid,
				AmountTotal:       9900,
				Currency:          stripe.CurrencyUSD,
				ClientReferenceID: "17",
				CustomerDetails:   &stripe.CheckoutSessionCustomerDetails{Email: "jo@example.com"},
			},
			wantStatus:    SessionStatusComplete,
			wantPayment:   StatusSucceeded,
			wantEmail:     "jo@example.com",
			wantReference: "17",
		},
		{
			name: "no payment required",
			session: &stripe.CheckoutSession{
				ID:            "cs_2",
				Status:        stripe.CheckoutSessionStatusComplete,
				PaymentStatus: stripe.CheckoutSessionPaymentStatusNoPaymentRequired,
			},
			wantStatus:  SessionStatusComplete,
			wantPayment: StatusSucceeded,
		},
		{
			name: "open and unpaid",
			session: &stripe.CheckoutSession{
				ID:            "cs_3",
				Status:        stripe.CheckoutSessionStatusOpen,
				PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
			},
			wantStatus:  SessionStatusOpen,
			wantPayment: StatusPending,
		},
		{
			name: "expired before payment",
			session: &stripe.CheckoutSession{
				ID:            "cs_4",
				Status:        stripe.CheckoutSessionStatusExpired,
				PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
			},
			wantStatus:  SessionStatusExpired,
			wantPayment: StatusFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &stubSessionAPI{
				getFn: func(id string, _ *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
					assert.Equal(t, tc.session.ID, id)
					return tc.session, nil
				},
			}
			provider, err := NewStripeProvider(StripeProviderConfig{Sessions: api})
			require.NoError(t, err)

			details, err := provider.LookupSession(context.Background(), tc.session.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, details.Status)
			assert.Equal(t, tc.wantPayment, details.PaymentStatus)
			assert.Equal(t, tc.wantEmail, details.CustomerEmail)
			assert.Equal(t, tc.wantReference, details.ClientReferenceID)
		})
	}
}

func TestStripeProviderLookupRequiresSessionID(t *testing.T) {
	provider, err := NewStripeProvider(StripeProviderConfig{Sessions: &stubSessionAPI{}})
	require.NoError(t, err)

	_, err = provider.LookupSession(context.Background(), "  ")
	assert.Error(t, err)
}

