// Package quote looks up live prices from the external quote service.
package quote

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound means the symbol is unknown to the quote service.
var ErrNotFound = errors.New("quote: symbol not found")

// Quote is a point-in-time price for one symbol.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Source resolves a ticker symbol to a current quote.
type Source interface {
	Lookup(ctx context.Context, symbol string) (Quote, error)
}
