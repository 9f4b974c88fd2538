// Package models holds the gorm-mapped records of the parcel service.
package models

import "github.com/shopspring/decimal"

func init() {
	// Clients read money as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&Parcel{}, &Payment{}}
}
