package data

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/fact_radar/app/analyzer/internal/conf"
	"github.com/iWorld-y/fact_radar/app/analyzer/internal/repo"
)

const (
	defaultMemoryLimit = 1000
	defaultRedisTTL    = 7 * 24 * time.Hour
)

// NewResultRepo 根据配置选择结果仓库实现
func NewResultRepo(c *conf.Data, d *Data, logger log.Logger) repo.ResultRepo {
	helper := log.NewHelper(logger)
	switch storeOf(c) {
	case StorePostgres:
		if d.db != nil {
			helper.Info("result store: postgres")
			return NewPostgresResultRepo(d.db, logger)
		}
	case StoreRedis:
		if d.rdb != nil {
			ttl := defaultRedisTTL
			if c.Redis.Ttl != "" {
				if v, err := time.ParseDuration(c.Redis.Ttl); err == nil {
					ttl = v
				}
			}
			helper.Infof("result store: redis (ttl %s)", ttl)
			return NewRedisResultRepo(d.rdb, ttl, logger)
		}
	case StoreMemory:
	default:
		helper.Warnf("unknown result store %q, using memory", c.Store)
	}

	limit := defaultMemoryLimit
	if c != nil && c.MemoryLimit > 0 {
		limit = int(c.MemoryLimit)
	}
	helper.Infof("result store: memory (limit %d)", limit)
	return NewMemoryResultRepo(limit)
}
