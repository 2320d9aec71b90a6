package handlers

import (
	"github.com/gin-gonic/gin"

	"paper-trader/middleware"
)

// Mount wires every route onto the router. Auth-required routes sit
// behind the session middleware.
func (h *Handler) Mount(router *gin.Engine) {
	router.GET("/register", h.RegisterForm)
	router.POST("/register", h.Register)
	router.GET("/login", h.LoginForm)
	router.POST("/login", h.Login)
	router.GET("/logout", h.Logout)

	auth := router.Group("/")
	auth.Use(middleware.Auth(h.sessions))
	{
		auth.GET("/", h.Index)
		auth.GET("/buy", h.BuyForm)
		auth.POST("/buy", h.Buy)
		auth.GET("/sell", h.SellForm)
		auth.POST("/sell", h.Sell)
		auth.GET("/quote", h.QuoteForm)
		auth.POST("/quote", h.Quote)
		auth.GET("/history", h.History)
	}

	router.NoRoute(h.NotFound)
}
