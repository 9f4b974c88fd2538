package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"go.uber.org/zap"
)

// StripeProvider creates and reads Stripe Checkout sessions. Every call is
// bounded by timeout and never retried.
type StripeProvider struct {
	sessions *session.Client
	timeout  time.Duration
	logger   *zap.Logger
}

func NewStripeProvider(secretKey string, timeout time.Duration, logger *zap.Logger) *StripeProvider {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
	})
	return newStripeProvider(backend, secretKey, timeout, logger)
}

func newStripeProvider(backend stripe.Backend, secretKey string, timeout time.Duration, logger *zap.Logger) *StripeProvider {
	return &StripeProvider{
		sessions: &session.Client{B: backend, Key: secretKey},
		timeout:  timeout,
		logger:   logger.Named("stripe"),
	}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Please pay for: " + req.ParcelName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(req.CustomerEmail),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
	}
	params.AddMetadata(MetaParcelID, req.ParcelID)
	params.AddMetadata(MetaParcelName, req.ParcelName)
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey(req))

	s, err := p.sessions.New(params)
	if err != nil {
		p.logger.Error("create checkout session failed",
			zap.String("parcel_id", req.ParcelID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	p.logger.Info("created checkout session",
		zap.String("parcel_id", req.ParcelID),
		zap.String("session_id", s.ID),
		zap.Int64("amount", req.AmountCents))
	return fromStripeSession(s), nil
}

func (p *StripeProvider) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := p.sessions.Get(id, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.HTTPStatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("stripe: session %s: %w", id, ErrSessionNotFound)
		}
		p.logger.Error("get checkout session failed", zap.String("session_id", id), zap.Error(err))
		return nil, fmt.Errorf("stripe: get checkout session: %w", err)
	}
	return fromStripeSession(s), nil
}

// idempotencyKey is stable for identical checkout requests, so a repeated
// submit within Stripe's 24h key window returns the session already opened.
func idempotencyKey(req CheckoutRequest) string {
	name := strings.Join([]string{
		"checkout",
		req.ParcelID,
		strconv.FormatInt(req.AmountCents, 10),
		req.Currency,
		req.CustomerEmail,
		req.ParcelName,
	}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func fromStripeSession(s *stripe.CheckoutSession) *CheckoutSession {
	cs := &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		CustomerEmail: s.CustomerEmail,
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		cs.PaymentIntentID = s.PaymentIntent.ID
	}
	if cs.CustomerEmail == "" && s.CustomerDetails != nil {
		cs.CustomerEmail = s.CustomerDetails.Email
	}
	return cs
}
