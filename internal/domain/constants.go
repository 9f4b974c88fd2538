package domain

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

const (
	EventParcelPaid = "parcel_paid"
)
