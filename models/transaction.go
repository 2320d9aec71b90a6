package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is one row of the trade ledger: positive shares for a
// buy, negative for a sell, priced at execution time. Rows are append
// only; nothing in the codebase updates or deletes them. The ledger is
// the source of truth for holdings.
type Transaction struct {
	gorm.Model
	UserID uint            `gorm:"index;not null"`
	Symbol string          `gorm:"index;not null"`
	Shares int64           `gorm:"not null"`
	Price  decimal.Decimal `gorm:"type:numeric;not null"`
}
