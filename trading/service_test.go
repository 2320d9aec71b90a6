package trading

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"paper-trader/models"
	"paper-trader/quote"
)

// stubSource serves fixed prices and never talks to the network.
type stubSource struct {
	prices map[string]decimal.Decimal
	err    error
}

func (s *stubSource) Lookup(_ context.Context, symbol string) (quote.Quote, error) {
	if s.err != nil {
		return quote.Quote{}, s.err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	price, ok := s.prices[symbol]
	if !ok {
		return quote.Quote{}, quote.ErrNotFound
	}
	return quote.Quote{Symbol: symbol, Name: symbol + " Inc", Price: price}, nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a second connection would see a different in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Transaction{}))
	return db
}

func newTestService(t *testing.T, prices map[string]decimal.Decimal) (*Service, *gorm.DB, *stubSource) {
	t.Helper()
	db := testDB(t)
	src := &stubSource{prices: prices}
	return NewService(db, src, decimal.NewFromInt(10000)), db, src
}

func cashOf(t *testing.T, db *gorm.DB, userID uint) decimal.Decimal {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	return user.Cash
}

func TestRegister(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.Cash.Equal(decimal.NewFromInt(10000)))
	assert.NotEqual(t, "hunter2", user.PasswordHash)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, db, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "different")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "alice").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	testTable := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "correct credentials", username: "alice", password: "hunter2"},
		{name: "wrong password", username: "alice", password: "letmein", wantErr: ErrInvalidCredentials},
		{name: "unknown user", username: "bob", password: "hunter2", wantErr: ErrInvalidCredentials},
	}
	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			user, err := svc.Authenticate(ctx, testCase.username, testCase.password)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)
		})
	}
}

func TestBuyAndSellFlow(t *testing.T) {
	svc, db, src := newTestService(t, map[string]decimal.Decimal{
		"NFLX": decimal.NewFromInt(500),
	})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.Buy(ctx, user.ID, "nflx", 10))
	assert.True(t, cashOf(t, db, user.ID).Equal(decimal.NewFromInt(5000)))

	entries, err := svc.History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "NFLX", entries[0].Symbol)
	assert.EqualValues(t, 10, entries[0].Shares)
	assert.True(t, entries[0].Price.Equal(decimal.NewFromInt(500)))

	src.prices["NFLX"] = decimal.NewFromInt(600)
	require.NoError(t, svc.Sell(ctx, user.ID, "NFLX", 4))
	assert.True(t, cashOf(t, db, user.ID).Equal(decimal.NewFromInt(7400)))

	entries, err = svc.History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.EqualValues(t, -4, entries[1].Shares)
	assert.True(t, entries[1].Price.Equal(decimal.NewFromInt(600)))

	snap, err := svc.Portfolio(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, "NFLX", snap.Positions[0].Symbol)
	assert.EqualValues(t, 6, snap.Positions[0].Shares)
	assert.True(t, snap.Positions[0].Value.Equal(decimal.NewFromInt(3600)))
	assert.True(t, snap.Total.Equal(decimal.NewFromInt(11000)))
}

func TestBuyInsufficientFunds(t *testing.T) {
	svc, db, _ := newTestService(t, map[string]decimal.Decimal{
		"AMZN": decimal.NewFromInt(6000),
	})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	err = svc.Buy(ctx, user.ID, "AMZN", 2)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// neither the cash nor the ledger may have moved
	assert.True(t, cashOf(t, db, user.ID).Equal(decimal.NewFromInt(10000)))
	entries, err := svc.History(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuyUnknownSymbol(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	err = svc.Buy(ctx, user.ID, "NOPE", 1)
	assert.ErrorIs(t, err, quote.ErrNotFound)

	entries, err := svc.History(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTradeRejectsNonPositiveShares(t *testing.T) {
	svc, _, _ := newTestService(t, map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(100),
	})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	for _, shares := range []int64{0, -5} {
		assert.ErrorIs(t, svc.Buy(ctx, user.ID, "AAPL", shares), ErrInvalidShares)
		assert.ErrorIs(t, svc.Sell(ctx, user.ID, "AAPL", shares), ErrInvalidShares)
	}
}

func TestSellInsufficientShares(t *testing.T) {
	svc, db, _ := newTestService(t, map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(100),
	})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.Buy(ctx, user.ID, "AAPL", 5))

	err = svc.Sell(ctx, user.ID, "AAPL", 6)
	assert.ErrorIs(t, err, ErrInsufficientShares)

	assert.True(t, cashOf(t, db, user.ID).Equal(decimal.NewFromInt(9500)))
	entries, err := svc.History(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSellSymbolNeverOwned(t *testing.T) {
	svc, _, _ := newTestService(t, map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(100),
		"MSFT": decimal.NewFromInt(300),
	})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.Buy(ctx, user.ID, "AAPL", 5))

	err = svc.Sell(ctx, user.ID, "MSFT", 1)
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

// Net position per symbol must always equal the arithmetic sum of the
// signed share counts in the ledger, whatever the op sequence was.
func TestNetSharesMatchesLedgerSum(t *testing.T) {
	svc, db, _ := newTestService(t, map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(10),
		"MSFT": decimal.NewFromInt(20),
	})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)

	ops := []struct {
		sell   bool
		symbol string
		shares int64
	}{
		{symbol: "AAPL", shares: 10},
		{symbol: "MSFT", shares: 5},
		{sell: true, symbol: "AAPL", shares: 3},
		{symbol: "AAPL", shares: 2},
		{sell: true, symbol: "MSFT", shares: 5},
		{sell: true, symbol: "AAPL", shares: 9},
	}
	for _, op := range ops {
		if op.sell {
			require.NoError(t, svc.Sell(ctx, user.ID, op.symbol, op.shares))
		} else {
			require.NoError(t, svc.Buy(ctx, user.ID, op.symbol, op.shares))
		}
	}

	entries, err := svc.History(ctx, user.ID)
	require.NoError(t, err)

	sums := make(map[string]int64)
	for _, e := range entries {
		sums[e.Symbol] += e.Shares
	}
	for symbol, want := range sums {
		got, err := netShares(db, user.ID, symbol)
		require.NoError(t, err)
		assert.Equal(t, want, got, symbol)
	}
	assert.EqualValues(t, 0, sums["AAPL"])
	assert.EqualValues(t, 0, sums["MSFT"])
}

func TestPortfolioFiltersClosedPositions(t *testing.T) {
	svc, _, _ := newTestService(t, map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(100),
		"MSFT": decimal.NewFromInt(300),
	})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.Buy(ctx, user.ID, "AAPL", 10))
	require.NoError(t, svc.Sell(ctx, user.ID, "AAPL", 10))
	require.NoError(t, svc.Buy(ctx, user.ID, "MSFT", 5))

	snap, err := svc.Portfolio(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, "MSFT", snap.Positions[0].Symbol)
	assert.True(t, snap.StockValue.Equal(decimal.NewFromInt(1500)))
	assert.True(t, snap.Total.Equal(snap.Cash.Add(snap.StockValue)))
}

func TestPortfolioFailsWhenQuoteFails(t *testing.T) {
	svc, _, src := newTestService(t, map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(100),
	})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.Buy(ctx, user.ID, "AAPL", 1))

	src.err = errors.New("provider down")
	_, err = svc.Portfolio(ctx, user.ID)
	assert.Error(t, err)
}

func TestHistoryOrderedOldestFirst(t *testing.T) {
	svc, _, _ := newTestService(t, map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(100),
	})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.Buy(ctx, user.ID, "AAPL", 3))
	require.NoError(t, svc.Buy(ctx, user.ID, "AAPL", 2))
	require.NoError(t, svc.Sell(ctx, user.ID, "AAPL", 4))

	entries, err := svc.History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.EqualValues(t, 3, entries[0].Shares)
	assert.EqualValues(t, 2, entries[1].Shares)
	assert.EqualValues(t, -4, entries[2].Shares)
}

func TestHeldSymbols(t *testing.T) {
	svc, _, _ := newTestService(t, map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(100),
		"MSFT": decimal.NewFromInt(300),
		"NFLX": decimal.NewFromInt(500),
	})
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.Buy(ctx, user.ID, "NFLX", 1))
	require.NoError(t, svc.Buy(ctx, user.ID, "AAPL", 2))
	require.NoError(t, svc.Buy(ctx, user.ID, "MSFT", 3))
	require.NoError(t, svc.Sell(ctx, user.ID, "MSFT", 3))

	symbols, err := svc.HeldSymbols(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "NFLX"}, symbols)
}
