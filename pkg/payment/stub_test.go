package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubProvider_Lifecycle(t *testing.T) {
	s := NewStubProvider()
	cs, err := s.CreateCheckoutSession(context.Background(), CheckoutRequest{
		ParcelID: "p-1", ParcelName: "Books", CustomerEmail: "a@x.com", AmountCents: 2000, Currency: "USD",
	})
	require.NoError(t, err)
	assert.False(t, cs.Paid())
	assert.Equal(t, "usd", cs.Currency)
	assert.Contains(t, cs.URL, cs.ID)

	require.NoError(t, s.MarkPaid(cs.ID))

	got, err := s.GetCheckoutSession(context.Background(), cs.ID)
	require.NoError(t, err)
	assert.True(t, got.Paid())
	assert.NotEmpty(t, got.PaymentIntentID)
	assert.Equal(t, "p-1", got.Metadata[MetaParcelID])
	assert.False(t, cs.Paid(), "returned sessions are copies")
}

func TestStubProvider_Errors(t *testing.T) {
	s := NewStubProvider()

	_, err := s.GetCheckoutSession(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, s.MarkPaid("cs_missing"), ErrSessionNotFound)

	boom := errors.New("boom")
	s.CreateErr = boom
	_, err = s.CreateCheckoutSession(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, boom)
}
