// Package bootstrap wires the process-wide dependencies shared by the
// server and the command line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"

	"boardapi/internal/cache"
	"boardapi/internal/config"
	"boardapi/internal/database"
	"boardapi/internal/models"
	"boardapi/internal/seed"
	"boardapi/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with demo data.
	SeedDemo bool
}

// Runtime holds the connected dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client // nil when Redis is unreachable
	Store storage.ObjectStore
}

// InitRuntime connects to the database, Redis and the object store, and
// optionally seeds demo data.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("object storage init failed: %w", err)
	}

	if opts.SeedDemo {
		if err := seedDemo(cfg, db); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return &Runtime{DB: db, Redis: cache.GetClient(), Store: store}, nil
}

// seedDemo seeds only a development database that has no users yet.
func seedDemo(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		log.Printf("demo seed skipped: %d users already present", users)
		return nil
	}
	_, err := seed.Seed(db, seed.Options{NumUsers: 10, NumBoards: 40, MaxDays: 30})
	return err
}
