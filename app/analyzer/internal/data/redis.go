package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/iWorld-y/fact_radar/app/analyzer/internal/domain"
	"github.com/iWorld-y/fact_radar/app/analyzer/internal/repo"
)

const (
	resultKeyPrefix = "fact_radar:result:"
	resultIndexKey  = "fact_radar:results"
)

// redisResultRepo 每条记录一个带 TTL 的 JSON 值，另用有序集合按时间索引
type redisResultRepo struct {
	rdb *redis.Client
	ttl time.Duration
	log *log.Helper
}

func NewRedisResultRepo(rdb *redis.Client, ttl time.Duration, logger log.Logger) repo.ResultRepo {
	return &redisResultRepo{rdb: rdb, ttl: ttl, log: log.NewHelper(logger)}
}

func (r *redisResultRepo) Save(ctx context.Context, rec *domain.AnalysisRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal analysis %s: %w", rec.ID, err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, resultKeyPrefix+rec.ID, data, r.ttl)
	pipe.ZAdd(ctx, resultIndexKey, redis.Z{Score: float64(rec.CreatedAt.UnixNano()), Member: rec.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save analysis %s: %w", rec.ID, err)
	}
	return nil
}

func (r *redisResultRepo) Get(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	data, err := r.rdb.Get(ctx, resultKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repo.ErrResultNotFound
		}
		return nil, err
	}

	var rec domain.AnalysisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal analysis %s: %w", id, err)
	}
	return &rec, nil
}

func (r *redisResultRepo) List(ctx context.Context, limit int) ([]*domain.AnalysisRecord, int, error) {
	ids, err := r.rdb.ZRevRange(ctx, resultIndexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, 0, err
	}

	out := make([]*domain.AnalysisRecord, 0, len(ids))
	if len(ids) > 0 {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = resultKeyPrefix + id
		}
		values, err := r.rdb.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, 0, err
		}

		var expired []any
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				expired = append(expired, ids[i])
				continue
			}
			var rec domain.AnalysisRecord
			if err := json.Unmarshal([]byte(s), &rec); err != nil {
				r.log.Warnf("skip corrupt analysis %s: %v", ids[i], err)
				continue
			}
			out = append(out, &rec)
		}
		// 值已过期的索引项顺带清理
		if len(expired) > 0 {
			if err := r.rdb.ZRem(ctx, resultIndexKey, expired...).Err(); err != nil {
				r.log.Warnf("prune expired index entries: %v", err)
			}
		}
	}

	total, err := r.rdb.ZCard(ctx, resultIndexKey).Result()
	if err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}
