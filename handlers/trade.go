package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"paper-trader/quote"
	"paper-trader/trading"
)

// BuyForm renders the purchase page.
func (h *Handler) BuyForm(c *gin.Context) {
	c.HTML(http.StatusOK, "buy.html", nil)
}

// Buy executes a purchase and returns to the portfolio.
func (h *Handler) Buy(c *gin.Context) {
	symbol, shares, ok := tradeInput(c)
	if !ok {
		return
	}

	err := h.trades.Buy(c.Request.Context(), currentUser(c), symbol, shares)
	switch {
	case errors.Is(err, quote.ErrNotFound):
		apology(c, http.StatusBadRequest, "symbol not valid")
	case errors.Is(err, trading.ErrInsufficientFunds):
		apology(c, http.StatusForbidden, "not enough money")
	case err != nil:
		internalError(c, err)
	default:
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// SellForm renders the sale page with the symbols the user holds.
func (h *Handler) SellForm(c *gin.Context) {
	symbols, err := h.trades.HeldSymbols(c.Request.Context(), currentUser(c))
	if err != nil {
		internalError(c, err)
		return
	}
	c.HTML(http.StatusOK, "sell.html", gin.H{"Symbols": symbols})
}

// Sell executes a sale and returns to the portfolio.
func (h *Handler) Sell(c *gin.Context) {
	symbol, shares, ok := tradeInput(c)
	if !ok {
		return
	}

	err := h.trades.Sell(c.Request.Context(), currentUser(c), symbol, shares)
	switch {
	case errors.Is(err, quote.ErrNotFound):
		apology(c, http.StatusBadRequest, "symbol not valid")
	case errors.Is(err, trading.ErrInsufficientShares):
		apology(c, http.StatusBadRequest, "must provide an amount equal to or less than what you own")
	case err != nil:
		internalError(c, err)
	default:
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// tradeInput validates the shared buy/sell form fields. On failure it
// has already rendered the apology page.
func tradeInput(c *gin.Context) (symbol string, shares int64, ok bool) {
	symbol = c.PostForm("symbol")
	if symbol == "" {
		apology(c, http.StatusBadRequest, "must provide symbol")
		return "", 0, false
	}
	raw := c.PostForm("shares")
	if raw == "" {
		apology(c, http.StatusBadRequest, "must provide number of shares")
		return "", 0, false
	}
	shares, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || shares <= 0 {
		apology(c, http.StatusBadRequest, "must provide a positive number of shares")
		return "", 0, false
	}
	return symbol, shares, true
}
