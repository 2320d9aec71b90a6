// Package middleware holds the gin middleware shared by the routes.
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"paper-trader/session"
)

// Sessions resolves a session token to a user id.
type Sessions interface {
	Get(ctx context.Context, token string) (uint, error)
}

// Auth requires a valid session cookie and puts the user id into the
// gin context under "user_id". Anonymous requests are bounced to the
// login page.
func Auth(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.CookieName)
		if err != nil || token == "" {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		userID, err := sessions.Get(c.Request.Context(), token)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

// NoCache keeps account pages out of browser and proxy caches.
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}
