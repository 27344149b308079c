package main

import (
	"log"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/karpix25/mini-karpix/internal/collector"
	"github.com/karpix25/mini-karpix/internal/config"
	"github.com/karpix25/mini-karpix/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Telegram.BotToken == "" || cfg.Telegram.GroupID == 0 {
		log.Fatal("telegram.bot_token and telegram.group_id must be configured")
	}

	db, err := store.InitDB(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}
	store.SetDB(db)

	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second, AllowedUpdates: []string{"message", "chat_member"}},
	})
	if err != nil {
		log.Fatalf("failed to start bot: %v", err)
	}

	col := &collector.Collector{
		GroupID:          cfg.Telegram.GroupID,
		PointsPerMessage: cfg.Scoring.PointsPerMessage,
	}
	col.Register(b)

	log.Printf("collector started for group %d", cfg.Telegram.GroupID)
	b.Start()
}
