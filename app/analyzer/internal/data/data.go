package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/iWorld-y/fact_radar/app/analyzer/internal/conf"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Data 持有外部存储连接，按 Store 配置只打开需要的那一个
type Data struct {
	db  *sql.DB
	rdb *redis.Client
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	d := &Data{}

	switch storeOf(c) {
	case StorePostgres:
		if c.Database == nil || c.Database.Source == "" {
			return nil, nil, fmt.Errorf("postgres store requires data.database.source")
		}
		driver := c.Database.Driver
		if driver == "" {
			driver = "postgres"
		}
		db, err := sql.Open(driver, c.Database.Source)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, err
		}
		if _, err := db.Exec(`
			CREATE TABLE IF NOT EXISTS analyses (
				id TEXT PRIMARY KEY,
				content_type TEXT NOT NULL,
				content TEXT NOT NULL,
				language TEXT NOT NULL,
				verdict TEXT NOT NULL,
				confidence INTEGER NOT NULL,
				payload JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to init analyses table: %w", err)
		}
		d.db = db

	case StoreRedis:
		if c.Redis == nil || c.Redis.Addr == "" {
			return nil, nil, fmt.Errorf("redis store requires data.redis.addr")
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       int(c.Redis.Db),
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		d.rdb = rdb
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		if d.db != nil {
			d.db.Close()
		}
		if d.rdb != nil {
			d.rdb.Close()
		}
	}
	return d, cleanup, nil
}

func storeOf(c *conf.Data) string {
	if c == nil || c.Store == "" {
		return StoreMemory
	}
	return c.Store
}
