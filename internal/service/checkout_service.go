package service

import (
	"context"
	"fmt"

	"zapshift/config"
	"zapshift/internal/domain"
	"zapshift/internal/repository"
	"zapshift/pkg/payment"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CheckoutInput struct {
	ParcelID    string
	ParcelName  string
	SenderEmail string
	Cost        decimal.Decimal // major currency units
}

// CheckoutService opens a provider checkout session for one parcel's fee.
type CheckoutService struct {
	parcels  *repository.ParcelRepository
	provider payment.Provider
	currency string
	site     config.SiteConfig
	logger   *zap.Logger
}

func NewCheckoutService(parcels *repository.ParcelRepository, provider payment.Provider, currency string, site config.SiteConfig, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		parcels:  parcels,
		provider: provider,
		currency: currency,
		site:     site,
		logger:   logger.Named("checkout"),
	}
}

// ToMinorUnits converts a cost to whole cents, rounding half away from zero.
// Costs that round to nothing are rejected.
func ToMinorUnits(cost decimal.Decimal) (int64, error) {
	if !cost.IsPositive() {
		return 0, fmt.Errorf("cost must be a positive number: %w", domain.ErrInvalidInput)
	}
	cents := cost.Shift(2).Round(0)
	if !cents.IsPositive() {
		return 0, fmt.Errorf("cost %s is below one cent: %w", cost, domain.ErrInvalidInput)
	}
	return cents.IntPart(), nil
}

// Initiate returns the provider-hosted URL the sender should be redirected to.
// Name and email fall back to the stored parcel when the caller leaves them
// empty. The cost must match the stored parcel cost unless that is zero.
func (s *CheckoutService) Initiate(ctx context.Context, in CheckoutInput) (string, error) {
	cents, err := ToMinorUnits(in.Cost)
	if err != nil {
		return "", err
	}
	parcel, err := s.parcels.GetByID(ctx, in.ParcelID)
	if err != nil {
		return "", err
	}
	if parcel.IsPaid() {
		return "", fmt.Errorf("parcel %s: %w", parcel.ID, domain.ErrAlreadyPaid)
	}
	// A priced parcel is only ever charged its stored cost.
	if parcel.Cost.IsPositive() {
		stored, err := ToMinorUnits(parcel.Cost)
		if err == nil && stored != cents {
			return "", fmt.Errorf("cost %s does not match parcel cost %s: %w",
				in.Cost.StringFixed(2), parcel.Cost.StringFixed(2), domain.ErrInvalidInput)
		}
	}
	if in.ParcelName == "" {
		in.ParcelName = parcel.ParcelName
	}
	if in.SenderEmail == "" {
		in.SenderEmail = parcel.SenderEmail
	}

	cs, err := s.provider.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		ParcelID:      parcel.ID,
		ParcelName:    in.ParcelName,
		CustomerEmail: in.SenderEmail,
		AmountCents:   cents,
		Currency:      s.currency,
		SuccessURL:    s.site.SuccessURL(),
		CancelURL:     s.site.CancelURL(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamPayment, err)
	}
	s.logger.Info("checkout session opened",
		zap.String("parcel_id", parcel.ID),
		zap.String("session_id", cs.ID),
		zap.Int64("amount_cents", cents))
	return cs.URL, nil
}
