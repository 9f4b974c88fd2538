package models

import (
	"encoding/json"
	"time"

	"zapshift/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Parcel is a shipment record. Typed columns hold what the service reads;
// everything else the sender submitted lives in Attributes.
type Parcel struct {
	ID            string            `gorm:"primaryKey;size:36" json:"_id"`
	ParcelName    string            `gorm:"size:255" json:"parcelName"`
	SenderEmail   string            `gorm:"size:255;not null;index:idx_parcels_sender_created,priority:1" json:"senderEmail"`
	Cost          decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"cost"`
	Attributes    datatypes.JSONMap `json:"-"`
	PaymentStatus string            `gorm:"size:10;not null;default:unpaid;index" json:"paymentStatus"` // unpaid | paid
	TrackingID    *string           `gorm:"size:32;uniqueIndex" json:"trackingId,omitempty"`            // nil until paid
	CreatedAt     time.Time         `gorm:"not null;index:idx_parcels_sender_created,priority:2;index" json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func (Parcel) TableName() string {
	return "parcels"
}

func (p *Parcel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = domain.PaymentStatusUnpaid
	}
	return nil
}

func (p *Parcel) IsPaid() bool { return p.PaymentStatus == domain.PaymentStatusPaid }

// MarshalJSON renders the parcel as one flat document: the free-form
// attributes first, then the typed fields on top of them.
func (p Parcel) MarshalJSON() ([]byte, error) {
	type typed Parcel
	base, err := json.Marshal(typed(p))
	if err != nil {
		return nil, err
	}
	if len(p.Attributes) == 0 {
		return base, nil
	}
	doc := make(map[string]any, len(p.Attributes)+8)
	for k, v := range p.Attributes {
		doc[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		doc[k] = v
	}
	return json.Marshal(doc)
}
