package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs work that spans parcels and payments in one database
// transaction.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// InTx calls fn with repositories bound to a transaction. The transaction
// commits if fn returns nil and rolls back otherwise.
func (t *Transactor) InTx(ctx context.Context, fn func(parcels *ParcelRepository, payments *PaymentRepository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewParcelRepository(tx), NewPaymentRepository(tx))
	})
}
