package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"paper-trader/session"
	"paper-trader/trading"
)

// RegisterForm renders the registration page.
func (h *Handler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", nil)
}

// Register creates an account and logs the new user in.
func (h *Handler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	confirmation := c.PostForm("confirmation")

	switch {
	case username == "":
		apology(c, http.StatusBadRequest, "must provide username")
		return
	case password == "":
		apology(c, http.StatusBadRequest, "must provide password")
		return
	case confirmation == "":
		apology(c, http.StatusBadRequest, "must provide password confirmation")
		return
	case password != confirmation:
		apology(c, http.StatusBadRequest, "passwords don't match")
		return
	}

	user, err := h.trades.Register(c.Request.Context(), username, password)
	if errors.Is(err, trading.ErrUsernameTaken) {
		apology(c, http.StatusBadRequest, "username not available")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}

	h.startSession(c, user.ID)
}

// LoginForm renders the login page.
func (h *Handler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// Login authenticates and establishes a session. Any session carried in
// by the request is dropped first.
func (h *Handler) Login(c *gin.Context) {
	if token, err := c.Cookie(session.CookieName); err == nil && token != "" {
		if err = h.sessions.Delete(c.Request.Context(), token); err != nil {
			internalError(c, err)
			return
		}
	}

	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" {
		apology(c, http.StatusForbidden, "must provide username")
		return
	}
	if password == "" {
		apology(c, http.StatusForbidden, "must provide password")
		return
	}

	user, err := h.trades.Authenticate(c.Request.Context(), username, password)
	if errors.Is(err, trading.ErrInvalidCredentials) {
		apology(c, http.StatusForbidden, "invalid username and/or password")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}

	h.startSession(c, user.ID)
}

// Logout revokes the session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(session.CookieName); err == nil && token != "" {
		if err = h.sessions.Delete(c.Request.Context(), token); err != nil {
			internalError(c, err)
			return
		}
	}
	c.SetCookie(session.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) startSession(c *gin.Context, userID uint) {
	token, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.SetCookie(session.CookieName, token, 0, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}
