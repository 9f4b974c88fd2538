package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is the receipt written once per reconciled checkout session. Rows
// are never updated or deleted.
type Payment struct {
	ID            string          `gorm:"primaryKey;size:36" json:"_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	CustomerEmail string          `gorm:"size:255;index" json:"customerEmail"`
	ParcelID      string          `gorm:"size:36;not null;index" json:"parcelId"`
	ParcelName    string          `gorm:"size:255" json:"parcelName"` // snapshot at payment time
	SessionID     string          `gorm:"size:255;not null;uniqueIndex" json:"sessionId"`
	TransactionID string          `gorm:"size:255;index" json:"transactionId"` // provider payment intent
	PaymentStatus string          `gorm:"size:20;not null" json:"paymentStatus"`
	PaidAt        time.Time       `gorm:"not null;index" json:"paidAt"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
