package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Index renders the portfolio snapshot.
func (h *Handler) Index(c *gin.Context) {
	snap, err := h.trades.Portfolio(c.Request.Context(), currentUser(c))
	if err != nil {
		internalError(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", snap)
}

// History renders the user's full trade ledger, oldest first.
func (h *Handler) History(c *gin.Context) {
	entries, err := h.trades.History(c.Request.Context(), currentUser(c))
	if err != nil {
		internalError(c, err)
		return
	}
	c.HTML(http.StatusOK, "history.html", gin.H{"Entries": entries})
}
