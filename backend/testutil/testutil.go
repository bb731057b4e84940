// Package testutil provides databases, redis clients and tokens for package tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/utils"
)

var dbSeq atomic.Int64

// DB opens a private in-memory sqlite database with all tables migrated.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	// one connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := utils.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

// Redis connects to TEST_REDIS_ADDR when it is set and to an in-process
// miniredis otherwise.
func Redis(tb testing.TB) *redis.Client {
	tb.Helper()

	opts := &redis.Options{Addr: os.Getenv("TEST_REDIS_ADDR"), DB: 15}
	if opts.Addr == "" {
		opts = &redis.Options{Addr: miniredis.RunT(tb).Addr()}
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		tb.Fatalf("redis ping: %v", err)
	}
	if err := rdb.FlushDB(ctx).Err(); err != nil {
		tb.Fatalf("redis flush: %v", err)
	}
	tb.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func Config() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		Currency:           "usd",
		FrontendURL:        "http://frontend.test",
		PublicBaseURL:      "http://api.test",
		PurchaseRateLimit:  100,
		PurchaseRateWindow: time.Minute,
		OutboundTimeout:    time.Second,
		MaxUploadBytes:     1 << 20,
	}
}

// Token signs a token for a user with the given role.
func Token(tb testing.TB, cfg *config.Config, userID, role string) string {
	tb.Helper()
	token, err := utils.GenerateJWTToken(models.Identity{
		UserID: userID,
		Name:   "User " + userID,
		Email:  userID + "@example.com",
		Role:   role,
	}, cfg, time.Hour)
	if err != nil {
		tb.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}
