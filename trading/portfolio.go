package trading

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"paper-trader/models"
)

// Position is one priced holding in a portfolio snapshot.
type Position struct {
	Symbol string
	Name   string
	Shares int64
	Price  decimal.Decimal
	Value  decimal.Decimal
}

// Snapshot is a point-in-time view of a user's portfolio.
type Snapshot struct {
	Positions  []Position
	StockValue decimal.Decimal
	Cash       decimal.Decimal
	Total      decimal.Decimal
}

// Portfolio folds the user's ledger into net share counts per symbol,
// prices each open position and returns the snapshot. Fully closed
// positions (net zero) are filtered out. If any price lookup fails the
// whole snapshot fails; a partially priced portfolio would be a lie.
func (s *Service) Portfolio(ctx context.Context, userID uint) (*Snapshot, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	type holding struct {
		Symbol string
		Shares int64
	}
	var holdings []holding
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("symbol, SUM(shares) AS shares").
		Where("user_id = ?", userID).
		Group("symbol").
		Order("symbol").
		Scan(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate holdings: %w", err)
	}

	snap := &Snapshot{Cash: user.Cash, StockValue: decimal.Zero}
	for _, h := range holdings {
		if h.Shares == 0 {
			continue
		}
		q, err := s.quotes.Lookup(ctx, h.Symbol)
		if err != nil {
			return nil, fmt.Errorf("price %s: %w", h.Symbol, err)
		}
		value := q.Price.Mul(decimal.NewFromInt(h.Shares))
		snap.Positions = append(snap.Positions, Position{
			Symbol: q.Symbol,
			Name:   q.Name,
			Shares: h.Shares,
			Price:  q.Price,
			Value:  value,
		})
		snap.StockValue = snap.StockValue.Add(value)
	}
	snap.Total = snap.StockValue.Add(snap.Cash)
	return snap, nil
}
