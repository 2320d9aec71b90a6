package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User is a registered account. Cash is the only mutable column after
// creation; it moves on every executed trade.
type User struct {
	gorm.Model
	Username     string          `gorm:"uniqueIndex;not null"`
	PasswordHash string          `gorm:"not null"`
	Cash         decimal.Decimal `gorm:"type:numeric;not null"`
}
