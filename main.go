package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"paper-trader/config"
	"paper-trader/database"
	"paper-trader/handlers"
	"paper-trader/middleware"
	"paper-trader/quote"
	"paper-trader/session"
	"paper-trader/trading"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err = database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err = rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	quotes := quote.NewClient(cfg.QuoteAPIKey, rdb)
	sessions := session.NewStore(rdb, cfg.SessionTTL)
	trades := trading.NewService(db, quotes, decimal.NewFromInt(cfg.StartingCash))
	h := handlers.New(trades, quotes, sessions)

	router := gin.Default()
	router.SetFuncMap(handlers.FuncMap())
	router.LoadHTMLGlob("templates/*.html")
	router.Use(middleware.NoCache())
	h.Mount(router)

	log.Infof("listening on %s", cfg.Addr)
	if err = router.Run(cfg.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
