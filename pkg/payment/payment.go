// Package payment wraps the hosted checkout provider behind a small
// interface: create a session for one parcel, read a session back.
package payment

import (
	"context"
	"errors"
)

// Metadata keys written on every session; reconciliation reads them back to
// find the parcel.
const (
	MetaParcelID   = "parcelId"
	MetaParcelName = "parcelName"
)

// StatusPaid is the provider's terminal success status for a session.
const StatusPaid = "paid"

var ErrSessionNotFound = errors.New("checkout session not found")

type CheckoutRequest struct {
	ParcelID      string
	ParcelName    string
	CustomerEmail string
	AmountCents   int64
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the provider's view of one payment attempt.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string // paid | unpaid | no_payment_required
	AmountTotal     int64  // minor units
	Currency        string
	CustomerEmail   string
	PaymentIntentID string
	Metadata        map[string]string
}

func (s *CheckoutSession) Paid() bool { return s.PaymentStatus == StatusPaid }

type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
}
