package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// StubProvider keeps sessions in memory. It stands in for Stripe in local
// development and tests; MarkPaid plays the part of the customer paying.
type StubProvider struct {
	mu       sync.Mutex
	sessions map[string]*CheckoutSession

	// CreateErr and GetErr, when set, are returned by the matching call.
	CreateErr error
	GetErr    error
}

func NewStubProvider() *StubProvider {
	return &StubProvider{sessions: make(map[string]*CheckoutSession)}
}

func (s *StubProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	id := "cs_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	cs := &CheckoutSession{
		ID:            id,
		URL:           "https://checkout.stub.local/pay/" + id,
		PaymentStatus: "unpaid",
		AmountTotal:   req.AmountCents,
		Currency:      strings.ToLower(req.Currency),
		CustomerEmail: req.CustomerEmail,
		Metadata: map[string]string{
			MetaParcelID:   req.ParcelID,
			MetaParcelName: req.ParcelName,
		},
	}
	s.mu.Lock()
	s.sessions[id] = cs
	s.mu.Unlock()
	return cs.clone(), nil
}

func (s *StubProvider) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("stub: session %s: %w", id, ErrSessionNotFound)
	}
	return cs.clone(), nil
}

// MarkPaid completes a session as the provider would after a successful
// charge.
func (s *StubProvider) MarkPaid(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("stub: session %s: %w", id, ErrSessionNotFound)
	}
	cs.PaymentStatus = StatusPaid
	cs.PaymentIntentID = "pi_" + strings.TrimPrefix(id, "cs_test_")
	return nil
}

// Put registers a session directly, for sessions created elsewhere.
func (s *StubProvider) Put(cs *CheckoutSession) {
	s.mu.Lock()
	s.sessions[cs.ID] = cs.clone()
	s.mu.Unlock()
}

func (cs *CheckoutSession) clone() *CheckoutSession {
	cp := *cs
	cp.Metadata = make(map[string]string, len(cs.Metadata))
	for k, v := range cs.Metadata {
		cp.Metadata[k] = v
	}
	return &cp
}
