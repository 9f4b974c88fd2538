package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zapshift/internal/domain"
	"zapshift/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository is append-only: receipts can be added and read, never
// changed.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Append stores a new receipt. A second receipt for the same checkout session
// is rejected with ErrAlreadyPaid.
func (r *PaymentRepository) Append(ctx context.Context, p *models.Payment) error {
	p.ID = ""
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("session %s: %w", p.SessionID, domain.ErrAlreadyPaid)
		}
		return storeErr("append payment", err)
	}
	return nil
}

func (r *PaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, "session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment for session %s: %w", sessionID, domain.ErrNotFound)
		}
		return nil, storeErr("get payment", err)
	}
	return &p, nil
}

// ListByEmail returns receipts newest first; an empty email lists all.
func (r *PaymentRepository) ListByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	q := r.db.WithContext(ctx).Order("paid_at DESC")
	if email != "" {
		q = q.Where("customer_email = ?", email)
	}
	payments := []models.Payment{}
	if err := q.Find(&payments).Error; err != nil {
		return nil, storeErr("list payments", err)
	}
	return payments, nil
}
