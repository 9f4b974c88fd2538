package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"zapshift/internal/domain"
	"zapshift/pkg/payment"
	"zapshift/pkg/tracking"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_PaidSession(t *testing.T) {
	f := newFixture(t)
	p := f.createParcel(t, "a@x.com", 20)
	sessionID := f.openPaidSession(t, p)

	res, err := f.reconcile.Reconcile(context.Background(), sessionID)

	require.NoError(t, err)
	require.True(t, res.Success)
	assert.True(t, tracking.Valid(res.TrackingID), res.TrackingID)
	assert.NotEmpty(t, res.TransactionID)
	require.NotNil(t, res.Parcel)
	assert.Equal(t, domain.PaymentStatusPaid, res.Parcel.PaymentStatus)
	assert.Equal(t, res.TrackingID, *res.Parcel.TrackingID)

	require.NotNil(t, res.Payment)
	assert.True(t, decimal.NewFromInt(20).Equal(res.Payment.Amount), res.Payment.Amount.String())
	assert.Equal(t, "usd", res.Payment.Currency)
	assert.Equal(t, "a@x.com", res.Payment.CustomerEmail)
	assert.Equal(t, p.ID, res.Payment.ParcelID)
	assert.Equal(t, "Books", res.Payment.ParcelName)
	assert.Equal(t, res.TransactionID, res.Payment.TransactionID)
	assert.Equal(t, "paid", res.Payment.PaymentStatus)
	assert.False(t, res.Payment.PaidAt.IsZero())

	stored, err := f.parcels.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid())
	assert.Equal(t, res.TrackingID, *stored.TrackingID)

	receipt, err := f.payments.GetBySessionID(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, receipt.ParcelID)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, "a@x.com", f.pub.keys[0])
	evt := f.pub.events[0].(ParcelPaidEvent)
	assert.Equal(t, domain.EventParcelPaid, evt.Type)
	assert.Equal(t, res.TrackingID, evt.TrackingID)
}

func TestReconcile_UnpaidSessionMutatesNothing(t *testing.T) {
	f := newFixture(t)
	p := f.createParcel(t, "a@x.com", 20)
	url, err := f.checkout.Initiate(context.Background(), CheckoutInput{ParcelID: p.ID, Cost: decimal.NewFromInt(20)})
	require.NoError(t, err)

	res, err := f.reconcile.Reconcile(context.Background(), sessionIDFromURL(url))

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ReasonNotPaid, res.Reason)
	stored, err := f.parcels.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid())
	assert.Nil(t, stored.TrackingID)
	all, err := f.payments.ListByEmail(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.pub.events)
}

func TestReconcile_TwiceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	p := f.createParcel(t, "a@x.com", 20)
	sessionID := f.openPaidSession(t, p)

	first, err := f.reconcile.Reconcile(context.Background(), sessionID)
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := f.reconcile.Reconcile(context.Background(), sessionID)
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Equal(t, ReasonAlreadyProcessed, second.Reason)

	stored, err := f.parcels.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.TrackingID, *stored.TrackingID)
	all, err := f.payments.ListByEmail(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, f.pub.events, 1)
}

func TestReconcile_ConcurrentSameSession(t *testing.T) {
	f := newFixture(t)
	p := f.createParcel(t, "a@x.com", 20)
	sessionID := f.openPaidSession(t, p)

	const callers = 6
	results := make([]*ReconcileResult, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.reconcile.Reconcile(context.Background(), sessionID)
		}(i)
	}
	wg.Wait()

	successes := 0
	var winner string
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].Success {
			successes++
			winner = results[i].TrackingID
		} else {
			assert.Equal(t, ReasonAlreadyProcessed, results[i].Reason)
		}
	}
	assert.Equal(t, 1, successes)

	stored, err := f.parcels.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, *stored.TrackingID)
	all, err := f.payments.ListByEmail(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReconcile_SecondSessionForPaidParcel(t *testing.T) {
	f := newFixture(t)
	p := f.createParcel(t, "a@x.com", 20)
	first := f.openPaidSession(t, p)
	// A second session opened before the first was reconciled.
	f.provider.Put(&payment.CheckoutSession{
		ID:            "cs_test_second",
		PaymentStatus: payment.StatusPaid,
		AmountTotal:   2000,
		Currency:      "usd",
		Metadata:      map[string]string{payment.MetaParcelID: p.ID, payment.MetaParcelName: "Books"},
	})

	res, err := f.reconcile.Reconcile(context.Background(), first)
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = f.reconcile.Reconcile(context.Background(), "cs_test_second")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ReasonAlreadyProcessed, res.Reason)
	all, err := f.payments.ListByEmail(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReconcile_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.reconcile.Reconcile(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.reconcile.Reconcile(context.Background(), "cs_unknown")
	assert.ErrorIs(t, err, domain.ErrUpstreamPayment)

	f.provider.Put(&payment.CheckoutSession{ID: "cs_no_meta", PaymentStatus: payment.StatusPaid, AmountTotal: 100, Currency: "usd"})
	_, err = f.reconcile.Reconcile(context.Background(), "cs_no_meta")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.provider.Put(&payment.CheckoutSession{
		ID:            "cs_stale",
		PaymentStatus: payment.StatusPaid,
		AmountTotal:   100,
		Currency:      "usd",
		Metadata:      map[string]string{payment.MetaParcelID: "0b7c6d7e-0000-4000-8000-000000000000"},
	})
	_, err = f.reconcile.Reconcile(context.Background(), "cs_stale")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	all, err := f.payments.ListByEmail(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all, "no receipt for a parcel that does not exist")

	f.provider.GetErr = errors.New("timeout")
	_, err = f.reconcile.Reconcile(context.Background(), "cs_stale")
	assert.ErrorIs(t, err, domain.ErrUpstreamPayment)
}

func TestReconcile_ExactlyOnePaymentIffPaid(t *testing.T) {
	f := newFixture(t)
	paid := f.createParcel(t, "a@x.com", 20)
	unpaid := f.createParcel(t, "a@x.com", 35)
	_, err := f.reconcile.Reconcile(context.Background(), f.openPaidSession(t, paid))
	require.NoError(t, err)

	parcels, err := f.parcels.List(context.Background(), "a@x.com")
	require.NoError(t, err)
	payments, err := f.payments.ListByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	byParcel := map[string]int{}
	for _, pay := range payments {
		byParcel[pay.ParcelID]++
	}
	for _, p := range parcels {
		if p.IsPaid() {
			assert.NotEmpty(t, *p.TrackingID)
			assert.Equal(t, 1, byParcel[p.ID], p.ID)
		} else {
			assert.Nil(t, p.TrackingID)
			assert.Zero(t, byParcel[p.ID], p.ID)
		}
	}
	assert.Len(t, parcels, 2)
	assert.Contains(t, []string{parcels[0].ID, parcels[1].ID}, unpaid.ID)
}
