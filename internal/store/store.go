package store

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/karpix25/mini-karpix/internal/models"
)

var db *gorm.DB

// RDB is the optional leaderboard cache. Nil when redis is not configured.
var RDB *redis.Client

// InitDB opens the database and migrates the schema. A postgres:// DSN uses
// the postgres driver, anything else is treated as a sqlite path.
func InitDB(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	d, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := d.AutoMigrate(
		&models.Subscriber{},
		&models.Message{},
		&models.Course{},
		&models.Lesson{},
		&models.LessonCompletion{},
		&models.Admin{},
	); err != nil {
		return nil, err
	}
	return d, nil
}

func SetDB(d *gorm.DB) { db = d }

func GetDB() *gorm.DB { return db }

// InitRedis connects the cache client. Empty addr leaves caching disabled.
func InitRedis(addr string) error {
	if addr == "" {
		return nil
	}
	c := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	RDB = c
	log.Println("Redis connection established")
	return nil
}
