// Package trading implements the business logic of the simulator:
// accounts, trade execution against live quotes, and the reconciliation
// of the trade ledger into a priced portfolio snapshot.
package trading

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"paper-trader/models"
	"paper-trader/quote"
)

// Service executes all account and trade operations. The acting user is
// always an explicit parameter; the service holds no request state.
type Service struct {
	db           *gorm.DB
	quotes       quote.Source
	startingCash decimal.Decimal
}

// NewService is constructor.
func NewService(db *gorm.DB, quotes quote.Source, startingCash decimal.Decimal) *Service {
	return &Service{db: db, quotes: quotes, startingCash: startingCash}
}

// Register creates an account with the configured starting cash. The
// unique index on username is the arbiter for duplicates, so two racing
// registrations cannot both commit.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Cash:         s.startingCash,
	}
	if err = s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate checks a username/password pair. Both unknown users and
// wrong passwords return ErrInvalidCredentials so the caller cannot
// tell which field was wrong.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", username, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Buy purchases shares at the current price. The ledger append and the
// cash debit commit together or not at all; the debit is guarded so a
// concurrent spend of the same balance cannot overdraw it.
func (s *Service) Buy(ctx context.Context, userID uint, symbol string, shares int64) error {
	if shares <= 0 {
		return ErrInvalidShares
	}
	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return err
	}
	cost := q.Price.Mul(decimal.NewFromInt(shares))

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return fmt.Errorf("load user %d: %w", userID, err)
		}
		if user.Cash.LessThan(cost) {
			return ErrInsufficientFunds
		}

		entry := models.Transaction{UserID: userID, Symbol: q.Symbol, Shares: shares, Price: q.Price}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND cash >= ?", userID, cost).
			Update("cash", gorm.Expr("cash - ?", cost))
		if res.Error != nil {
			return fmt.Errorf("debit cash: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}
		return nil
	})
}

// Sell disposes of shares the user actually holds, computed from the
// ledger inside the same transaction that appends the sale and credits
// the proceeds.
func (s *Service) Sell(ctx context.Context, userID uint, symbol string, shares int64) error {
	if shares <= 0 {
		return ErrInvalidShares
	}
	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return err
	}
	proceeds := q.Price.Mul(decimal.NewFromInt(shares))

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		held, err := netShares(tx, userID, q.Symbol)
		if err != nil {
			return err
		}
		if held < shares {
			return ErrInsufficientShares
		}

		entry := models.Transaction{UserID: userID, Symbol: q.Symbol, Shares: -shares, Price: q.Price}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("cash", gorm.Expr("cash + ?", proceeds))
		if res.Error != nil {
			return fmt.Errorf("credit cash: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("credit cash: %w", gorm.ErrRecordNotFound)
		}
		return nil
	})
}

func netShares(tx *gorm.DB, userID uint, symbol string) (int64, error) {
	var held int64
	err := tx.Model(&models.Transaction{}).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Select("COALESCE(SUM(shares), 0)").
		Scan(&held).Error
	if err != nil {
		return 0, fmt.Errorf("sum shares for %s: %w", symbol, err)
	}
	return held, nil
}

// History returns the user's full ledger, oldest entry first.
func (s *Service) History(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var entries []models.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

// HeldSymbols lists the symbols with a positive net position, for the
// sell form.
func (s *Service) HeldSymbols(ctx context.Context, userID uint) ([]string, error) {
	var symbols []string
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Group("symbol").
		Having("SUM(shares) > 0").
		Order("symbol").
		Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, fmt.Errorf("list held symbols: %w", err)
	}
	return symbols, nil
}
