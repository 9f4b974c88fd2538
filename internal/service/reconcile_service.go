package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zapshift/internal/domain"
	"zapshift/internal/models"
	"zapshift/internal/repository"
	"zapshift/pkg/payment"
	"zapshift/pkg/tracking"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reasons reported with an unsuccessful reconciliation.
const (
	ReasonNotPaid          = "not_paid"
	ReasonAlreadyProcessed = "already_processed"
)

type ReconcileResult struct {
	Success       bool
	Reason        string
	Parcel        *models.Parcel
	TrackingID    string
	TransactionID string
	Payment       *models.Payment
}

// ReconcileService applies a completed checkout session exactly once: the
// parcel flips to paid with a fresh tracking ID and a receipt is appended,
// both in one transaction.
type ReconcileService struct {
	provider payment.Provider
	tx       *repository.Transactor
	notifier *NotificationService
	newID    func() string
	now      func() time.Time
	logger   *zap.Logger
}

func NewReconcileService(provider payment.Provider, tx *repository.Transactor, notifier *NotificationService, logger *zap.Logger) *ReconcileService {
	return &ReconcileService{
		provider: provider,
		tx:       tx,
		notifier: notifier,
		newID:    tracking.New,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.Named("reconcile"),
	}
}

func (s *ReconcileService) Reconcile(ctx context.Context, sessionID string) (*ReconcileResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required: %w", domain.ErrInvalidInput)
	}
	log := s.logger.With(zap.String("session_id", sessionID))

	cs, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamPayment, err)
	}
	if !cs.Paid() {
		log.Info("session not paid", zap.String("payment_status", cs.PaymentStatus))
		return &ReconcileResult{Reason: ReasonNotPaid}, nil
	}
	parcelID := cs.Metadata[payment.MetaParcelID]
	if parcelID == "" {
		return nil, fmt.Errorf("session %s carries no parcel: %w", sessionID, domain.ErrNotFound)
	}

	// Issued before the update; a losing or failed update just drops it.
	trackingID := s.newID()
	receipt := &models.Payment{
		Amount:        decimal.New(cs.AmountTotal, -2),
		Currency:      cs.Currency,
		CustomerEmail: cs.CustomerEmail,
		ParcelID:      parcelID,
		ParcelName:    cs.Metadata[payment.MetaParcelName],
		SessionID:     cs.ID,
		TransactionID: cs.PaymentIntentID,
		PaymentStatus: cs.PaymentStatus,
		PaidAt:        s.now(),
	}

	var parcel *models.Parcel
	err = s.tx.InTx(ctx, func(parcels *repository.ParcelRepository, payments *repository.PaymentRepository) error {
		p, err := parcels.MarkPaid(ctx, parcelID, trackingID)
		if err != nil {
			return err
		}
		parcel = p
		return payments.Append(ctx, receipt)
	})
	if errors.Is(err, domain.ErrAlreadyPaid) {
		log.Warn("session already reconciled or parcel paid by another session",
			zap.String("parcel_id", parcelID),
			zap.String("transaction_id", cs.PaymentIntentID))
		return &ReconcileResult{Reason: ReasonAlreadyProcessed}, nil
	}
	if err != nil {
		log.Error("reconcile failed", zap.String("parcel_id", parcelID), zap.String("kind", domain.Kind(err)), zap.Error(err))
		return nil, err
	}

	log.Info("parcel paid",
		zap.String("parcel_id", parcelID),
		zap.String("tracking_id", trackingID),
		zap.String("transaction_id", cs.PaymentIntentID))
	if s.notifier != nil {
		s.notifier.NotifyParcelPaid(parcel, receipt)
	}
	return &ReconcileResult{
		Success:       true,
		Parcel:        parcel,
		TrackingID:    trackingID,
		TransactionID: cs.PaymentIntentID,
		Payment:       receipt,
	}, nil
}
