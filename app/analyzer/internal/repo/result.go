package repo

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"

	"github.com/iWorld-y/fact_radar/app/analyzer/internal/domain"
)

// ErrResultNotFound 结果不存在
var ErrResultNotFound = errors.NotFound("RESULT_NOT_FOUND", "result not found")

// ResultRepo 分析结果仓库接口
type ResultRepo interface {
	// Save 保存一条分析记录，ID 相同则覆盖
	Save(ctx context.Context, rec *domain.AnalysisRecord) error
	// Get 根据ID获取分析记录，不存在时返回 ErrResultNotFound
	Get(ctx context.Context, id string) (*domain.AnalysisRecord, error)
	// List 按时间倒序获取最近 limit 条记录及总数
	List(ctx context.Context, limit int) ([]*domain.AnalysisRecord, int, error)
}
