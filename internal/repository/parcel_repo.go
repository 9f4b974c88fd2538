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

type ParcelRepository struct {
	db *gorm.DB
}

func NewParcelRepository(db *gorm.DB) *ParcelRepository {
	return &ParcelRepository{db: db}
}

// List returns parcels newest first. An empty senderEmail lists everything.
func (r *ParcelRepository) List(ctx context.Context, senderEmail string) ([]models.Parcel, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if senderEmail != "" {
		q = q.Where("sender_email = ?", senderEmail)
	}
	parcels := []models.Parcel{}
	if err := q.Find(&parcels).Error; err != nil {
		return nil, storeErr("list parcels", err)
	}
	return parcels, nil
}

func (r *ParcelRepository) GetByID(ctx context.Context, id string) (*models.Parcel, error) {
	var p models.Parcel
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("parcel %s: %w", id, domain.ErrNotFound)
		}
		return nil, storeErr("get parcel", err)
	}
	return &p, nil
}

// Create inserts p as a new unpaid parcel. The identifier and creation time
// are always assigned here, whatever the caller put in p.
func (r *ParcelRepository) Create(ctx context.Context, p *models.Parcel) error {
	p.ID = ""
	p.PaymentStatus = domain.PaymentStatusUnpaid
	p.TrackingID = nil
	p.CreatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return storeErr("create parcel", err)
	}
	return nil
}

func (r *ParcelRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Parcel{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("delete parcel", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("parcel %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// MarkPaid moves an unpaid parcel to paid and assigns its tracking ID. The
// update only matches while payment_status is still unpaid, so of several
// concurrent callers exactly one wins; the rest get ErrAlreadyPaid.
func (r *ParcelRepository) MarkPaid(ctx context.Context, id, trackingID string) (*models.Parcel, error) {
	res := r.db.WithContext(ctx).Model(&models.Parcel{}).
		Where("id = ? AND payment_status = ?", id, domain.PaymentStatusUnpaid).
		Updates(map[string]any{
			"payment_status": domain.PaymentStatusPaid,
			"tracking_id":    trackingID,
		})
	if res.Error != nil {
		return nil, storeErr("mark parcel paid", res.Error)
	}
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return p, fmt.Errorf("parcel %s: %w", id, domain.ErrAlreadyPaid)
	}
	return p, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
}
