// Package handlers contains the gin controllers for the HTTP surface.
// They validate form input, call the trading service and render a page;
// no business logic lives here.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"paper-trader/quote"
	"paper-trader/trading"
)

// SessionStore issues, resolves and revokes login sessions.
type SessionStore interface {
	Create(ctx context.Context, userID uint) (string, error)
	Get(ctx context.Context, token string) (uint, error)
	Delete(ctx context.Context, token string) error
}

// Handler bundles the dependencies of all routes.
type Handler struct {
	trades   *trading.Service
	quotes   quote.Source
	sessions SessionStore
}

// New is constructor.
func New(trades *trading.Service, quotes quote.Source, sessions SessionStore) *Handler {
	return &Handler{trades: trades, quotes: quotes, sessions: sessions}
}

// NotFound renders the 404 page for unknown routes.
func (h *Handler) NotFound(c *gin.Context) {
	apology(c, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// apology renders the error page, mirroring the status code in the body.
func apology(c *gin.Context, status int, message string) {
	c.HTML(status, "apology.html", gin.H{"Code": status, "Message": message})
}

// internalError logs the cause and renders a generic 500 page.
func internalError(c *gin.Context, err error) {
	log.WithError(err).Errorf("%s %s failed", c.Request.Method, c.Request.URL.Path)
	apology(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func currentUser(c *gin.Context) uint {
	return c.MustGet("user_id").(uint)
}
