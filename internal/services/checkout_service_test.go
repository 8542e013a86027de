package services

import (
	"context"
	"errors"
	"testing"

	"github.com/nordmart/storefront/internal/domain"
	"github.com/nordmart/storefront/internal/payments"
)

func checkoutServiceForTest(t *testing.T, gateway *stubGateway, orders *stubOrderRepository) CheckoutService {
	t.Helper()
	if orders == nil {
		orders = &stubOrderRepository{}
	}
	svc, err := NewCheckoutService(CheckoutServiceDeps{
		Gateway:     gateway,
		Orders:      orders,
		Currency:    "usd",
		FrontendURL: "https://shop.example.com/",
	})
	if err != nil {
		t.Fatalf("NewCheckoutService: %v", err)
	}
	return svc
}

func TestCheckoutServiceCreateSessionRejectsEmptyCart(t *testing.T) {
	svc := checkoutServiceForTest(t, &stubGateway{
		createFn: func(context.Context, payments.PaymentContext, payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
			t.Fatal("gateway should not be called")
			return payments.CheckoutSession{}, nil
		},
	}, nil)

	_, err := svc.CreateSession(context.Background(), CreateSessionCommand{CustomerID: 7})
	if !errors.Is(err, ErrCheckoutInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCheckoutServiceCreateSessionBuildsRequest(t *testing.T) {
	var captured payments.CheckoutSessionRequest
	svc := checkoutServiceForTest(t, &stubGateway{
		createFn: func(_ context.Context, _ payments.PaymentContext, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
			captured = req
			return payments.CheckoutSession{ID: "cs_abc", RedirectURL: "https://pay.example.com/cs_abc"}, nil
		},
	}, nil)

	handle, err := svc.CreateSession(context.Background(), CreateSessionCommand{
		CustomerID: 7,
		Items: []CreateSessionLineItem{
			{ProductID: 1, Name: "Shirt", UnitPrice: 2000, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if handle.SessionID != "cs_abc" {
		t.Fatalf("expected session cs_abc, got %q", handle.SessionID)
	}
	if handle.RedirectURL != "https://pay.example.com/cs_abc" {
		t.Fatalf("unexpected redirect url %q", handle.RedirectURL)
	}
	if captured.ClientReferenceID != "7" {
		t.Fatalf("expected client reference 7, got %q", captured.ClientReferenceID)
	}
	if captured.SuccessURL != "https://shop.example.com/return?session_id={CHECKOUT_SESSION_ID}" {
		t.Fatalf("unexpected success url %q", captured.SuccessURL)
	}
	if captured.CancelURL != "https://shop.example.com/cart" {
		t.Fatalf("unexpected cancel url %q", captured.CancelURL)
	}
	if len(captured.Items) != 1 || captured.Items[0].UnitAmount != 2000 || captured.Items[0].Quantity != 2 {
		t.Fatalf("unexpected line items %+v", captured.Items)
	}
}

func TestCheckoutServiceCreateSessionWrapsGatewayFailure(t *testing.T) {
	svc := checkoutServiceForTest(t, &stubGateway{
		createFn: func(context.Context, payments.PaymentContext, payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
			return payments.CheckoutSession{}, errors.New("psp is down")
		},
	}, nil)

	_, err := svc.CreateSession(context.Background(), CreateSessionCommand{
		CustomerID: 7,
		Items:      []CreateSessionLineItem{{ProductID: 1, Name: "Shirt", UnitPrice: 2000, Quantity: 1}},
	})
	if !errors.Is(err, ErrCheckoutGateway) {
		t.Fatalf("expected ErrCheckoutGateway, got %v", err)
	}
}

func TestCheckoutServiceSessionStatusNormalisesPayment(t *testing.T) {
	svc := checkoutServiceForTest(t, &stubGateway{
		lookupFn: func(_ context.Context, _ payments.PaymentContext, sessionID string) (payments.SessionDetails, error) {
			return payments.SessionDetails{
				SessionID:     sessionID,
				Status:        payments.SessionStatusComplete,
				PaymentStatus: payments.StatusSucceeded,
				CustomerEmail: "jamie@example.com",
			}, nil
		},
	}, nil)

	status, err := svc.SessionStatus(context.Background(), "cs_abc")
	if err != nil {
		t.Fatalf("SessionStatus: %v", err)
	}
	if status.Status != "complete" {
		t.Fatalf("expected complete, got %q", status.Status)
	}
	if status.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected Paid, got %s", status.PaymentStatus)
	}
	if status.CustomerEmail != "jamie@example.com" {
		t.Fatalf("unexpected email %q", status.CustomerEmail)
	}
}

func TestCheckoutServicePaymentDetailsResolvesOrder(t *testing.T) {
	orders := &stubOrderRepository{
		findByPaymentIDFn: func(_ context.Context, paymentID string) (domain.Order, error) {
			if paymentID != "sess_abc" {
				t.Fatalf("unexpected payment id %q", paymentID)
			}
			return domain.Order{ID: 55, PaymentID: paymentID}, nil
		},
	}
	svc := checkoutServiceForTest(t, &stubGateway{
		lookupFn: func(_ context.Context, _ payments.PaymentContext, sessionID string) (payments.SessionDetails, error) {
			return payments.SessionDetails{
				SessionID:     sessionID,
				Status:        payments.SessionStatusComplete,
				PaymentStatus: payments.StatusSucceeded,
			}, nil
		},
	}, orders)

	details, err := svc.PaymentDetails(context.Background(), "sess_abc")
	if err != nil {
		t.Fatalf("PaymentDetails: %v", err)
	}
	if details.OrderID != 55 {
		t.Fatalf("expected order 55, got %d", details.OrderID)
	}
	if details.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected Paid, got %s", details.PaymentStatus)
	}
}

func TestCheckoutServicePaymentDetailsUnpaidStaysUnpaid(t *testing.T) {
	orders := &stubOrderRepository{
		findByPaymentIDFn: func(_ context.Context, paymentID string) (domain.Order, error) {
			return domain.Order{ID: 60, PaymentID: paymentID}, nil
		},
	}
	svc := checkoutServiceForTest(t, &stubGateway{
		lookupFn: func(_ context.Context, _ payments.PaymentContext, sessionID string) (payments.SessionDetails, error) {
			return payments.SessionDetails{
				SessionID:     sessionID,
				Status:        payments.SessionStatusOpen,
				PaymentStatus: payments.StatusPending,
			}, nil
		},
	}, orders)

	details, err := svc.PaymentDetails(context.Background(), "sess_open")
	if err != nil {
		t.Fatalf("PaymentDetails: %v", err)
	}
	if details.PaymentStatus != domain.PaymentStatusUnpaid {
		t.Fatalf("expected Unpaid, got %s", details.PaymentStatus)
	}
}

func TestCheckoutServicePaymentDetailsMissingOrder(t *testing.T) {
	orders := &stubOrderRepository{
		findByPaymentIDFn: func(context.Context, string) (domain.Order, error) {
			return domain.Order{}, &stubRepoError{notFound: true}
		},
	}
	svc := checkoutServiceForTest(t, &stubGateway{
		lookupFn: func(_ context.Context, _ payments.PaymentContext, sessionID string) (payments.SessionDetails, error) {
			return payments.SessionDetails{SessionID: sessionID, PaymentStatus: payments.StatusSucceeded}, nil
		},
	}, orders)

	if _, err := svc.PaymentDetails(context.Background(), "sess_zzz"); !errors.Is(err, ErrCheckoutOrderNotFound) {
		t.Fatalf("expected ErrCheckoutOrderNotFound, got %v", err)
	}
}
