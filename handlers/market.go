package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"paper-trader/quote"
)

// QuoteForm renders the quote lookup page.
func (h *Handler) QuoteForm(c *gin.Context) {
	c.HTML(http.StatusOK, "quote.html", nil)
}

// Quote looks up a symbol and renders the result.
func (h *Handler) Quote(c *gin.Context) {
	symbol := c.PostForm("symbol")
	if symbol == "" {
		apology(c, http.StatusBadRequest, "must provide symbol")
		return
	}

	q, err := h.quotes.Lookup(c.Request.Context(), symbol)
	if errors.Is(err, quote.ErrNotFound) {
		apology(c, http.StatusBadRequest, "must return valid ticker")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.HTML(http.StatusOK, "quoted.html", q)
}
