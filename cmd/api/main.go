package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/karpix25/mini-karpix/internal/config"
	"github.com/karpix25/mini-karpix/internal/content"
	"github.com/karpix25/mini-karpix/internal/handlers"
	"github.com/karpix25/mini-karpix/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	table, err := cfg.RankTable()
	if err != nil {
		log.Fatalf("invalid rank table: %v", err)
	}

	db, err := store.InitDB(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}
	store.SetDB(db)

	if err := store.InitRedis(cfg.Redis.Addr); err != nil {
		log.Fatalf("failed to init redis: %v", err)
	}

	r := gin.Default()

	// health
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := &handlers.API{
		Ranks:            table,
		Library:          content.NewLibrary(cfg.Content.Dir),
		BotToken:         cfg.Telegram.BotToken,
		PointsPerMessage: cfg.Scoring.PointsPerMessage,
		TopN:             cfg.Leaderboard.TopN,
		CacheTTL:         time.Duration(cfg.Leaderboard.CacheTTL) * time.Second,
	}
	api.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.API.Port)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
