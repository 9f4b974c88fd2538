package service

import (
	"time"

	"zapshift/internal/domain"
	"zapshift/internal/models"
)

// Publisher delivers a payload to every live connection registered under key.
type Publisher interface {
	Publish(key string, payload any)
}

// ParcelPaidEvent is pushed to the sender's open dashboards.
type ParcelPaidEvent struct {
	Type          string    `json:"type"`
	ParcelID      string    `json:"parcelId"`
	TrackingID    string    `json:"trackingId"`
	TransactionID string    `json:"transactionId"`
	PaidAt        time.Time `json:"paidAt"`
}

// NotificationService fans reconciliation outcomes out to live clients.
// Delivery is best effort and never feeds back into the caller.
type NotificationService struct {
	pub Publisher
}

func NewNotificationService(pub Publisher) *NotificationService {
	return &NotificationService{pub: pub}
}

func (s *NotificationService) NotifyParcelPaid(parcel *models.Parcel, receipt *models.Payment) {
	if s == nil || s.pub == nil || parcel == nil {
		return
	}
	evt := ParcelPaidEvent{
		Type:     domain.EventParcelPaid,
		ParcelID: parcel.ID,
		PaidAt:   receipt.PaidAt,
	}
	if parcel.TrackingID != nil {
		evt.TrackingID = *parcel.TrackingID
	}
	evt.TransactionID = receipt.TransactionID
	s.pub.Publish(parcel.SenderEmail, evt)
}
