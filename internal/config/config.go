package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/karpix25/mini-karpix/internal/rank"
)

type Config struct {
	API struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"api"`
	Admin struct {
		Port      int    `mapstructure:"port"`
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"admin"`
	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`
	Telegram struct {
		BotToken string `mapstructure:"bot_token"`
		GroupID  int64  `mapstructure:"group_id"`
	} `mapstructure:"telegram"`
	Content struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"content"`
	Scoring struct {
		PointsPerMessage int `mapstructure:"points_per_message"`
	} `mapstructure:"scoring"`
	Leaderboard struct {
		TopN     int `mapstructure:"top_n"`
		CacheTTL int `mapstructure:"cache_ttl_seconds"`
	} `mapstructure:"leaderboard"`
	Ranks []rank.Tier `mapstructure:"ranks"`
}

// Load reads config.yaml from the working directory with env overrides
// (KARPIX_DATABASE_DSN and friends). A missing file falls back to defaults.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("karpix")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api.port", 8080)
	viper.SetDefault("admin.port", 8081)
	viper.SetDefault("admin.jwt_secret", "change-me-in-config")
	viper.SetDefault("database.dsn", "data.db")
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("content.dir", "./content")
	viper.SetDefault("scoring.points_per_message", 2)
	viper.SetDefault("leaderboard.top_n", 20)
	viper.SetDefault("leaderboard.cache_ttl_seconds", 60)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		fmt.Println("No config file found, using defaults")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.Ranks) == 0 {
		cfg.Ranks = rank.DefaultTiers()
	}
	return &cfg, nil
}

// RankTable builds the validated tier ladder from configuration. A broken
// ladder is a startup error, not something to limp along with.
func (c *Config) RankTable() (rank.Table, error) {
	return rank.NewTable(c.Ranks)
}
