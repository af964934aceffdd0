package usecase

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/fact_radar/app/analyzer/internal/domain"
	"github.com/iWorld-y/fact_radar/app/analyzer/internal/repo"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/engine"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/model"
)

const (
	DefaultArchiveLimit = 20
	MaxArchiveLimit     = 100
	maxStoredContent    = 500

	// batchWorkers 批量分析时同时进行的条目数
	batchWorkers = 3
)

// Analyzer 分析引擎
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalyzeRequest) (map[string]any, error)
	VerifyImage(ctx context.Context, content, language string) (model.ImageVerification, error)
	StreamAnalysis(ctx context.Context, req model.AnalyzeRequest, emit engine.EmitFunc) error
	StreamImage(ctx context.Context, content, language string, emit engine.EmitFunc) error
	Translate(ctx context.Context, text, target string) (string, error)
	Mode() map[string]bool
}

// AnalysisUseCase 核查业务逻辑：调用引擎并存档结果
type AnalysisUseCase struct {
	engine Analyzer
	repo   repo.ResultRepo
	log    *log.Helper
	now    func() time.Time
}

// NewAnalysisUseCase 创建核查业务逻辑实例
func NewAnalysisUseCase(engine Analyzer, repo repo.ResultRepo, logger log.Logger) *AnalysisUseCase {
	return &AnalysisUseCase{engine: engine, repo: repo, log: log.NewHelper(logger), now: time.Now}
}

// Analyze 分析并存档，存档失败不影响返回
func (uc *AnalysisUseCase) Analyze(ctx context.Context, req *model.AnalyzeRequest) (map[string]any, error) {
	payload, err := uc.engine.Analyze(ctx, *req)
	if err != nil {
		return nil, toServiceError(err)
	}
	uc.archive(ctx, req, payload)
	return payload, nil
}

// AnalyzeBatch 批量分析文本，单条失败只记录在对应条目中，结果顺序与请求一致
func (uc *AnalysisUseCase) AnalyzeBatch(ctx context.Context, reqs []*model.AnalyzeRequest) ([]model.BatchItem, error) {
	if len(reqs) == 0 {
		return nil, errors.BadRequest("INVALID_REQUEST", "batch is empty")
	}
	if len(reqs) > model.MaxBatchSize {
		return nil, errors.BadRequest("BATCH_TOO_LARGE", fmt.Sprintf("Too many requests (max %d per batch)", model.MaxBatchSize))
	}

	items := make([]model.BatchItem, len(reqs))
	var g errgroup.Group
	g.SetLimit(batchWorkers)
	for i, req := range reqs {
		g.Go(func() error {
			if req == nil {
				items[i] = model.BatchItem{Error: "request is empty"}
				return nil
			}
			payload, err := uc.Analyze(ctx, req)
			if err != nil {
				items[i] = model.BatchItem{Error: errors.FromError(err).Message}
				return nil
			}
			items[i] = model.BatchItem{Success: true, Result: payload}
			return nil
		})
	}
	_ = g.Wait()
	return items, nil
}

// Stream 流式分析，result 事件中的结果会被存档
func (uc *AnalysisUseCase) Stream(ctx context.Context, req *model.AnalyzeRequest, emit engine.EmitFunc) error {
	return uc.engine.StreamAnalysis(ctx, *req, func(ev engine.Event) error {
		if ev.Type == engine.EventResult {
			if payload, ok := ev.Result.(map[string]any); ok {
				uc.archive(ctx, req, payload)
			}
		}
		return emit(ev)
	})
}

// VerifyImage 图片取证
func (uc *AnalysisUseCase) VerifyImage(ctx context.Context, req *model.AnalyzeRequest) (*model.ImageVerification, error) {
	res, err := uc.engine.VerifyImage(ctx, req.Content, req.Language)
	if err != nil {
		return nil, toServiceError(err)
	}
	return &res, nil
}

// StreamImage 流式图片取证
func (uc *AnalysisUseCase) StreamImage(ctx context.Context, req *model.AnalyzeRequest, emit engine.EmitFunc) error {
	return uc.engine.StreamImage(ctx, req.Content, req.Language, emit)
}

// GetResult 获取已存档的原始结果
func (uc *AnalysisUseCase) GetResult(ctx context.Context, id string) (json.RawMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, repo.ErrResultNotFound
	}
	rec, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.Payload, nil
}

// Archive 最近的核查记录，limit 默认 20，最大 100
func (uc *AnalysisUseCase) Archive(ctx context.Context, limit int) ([]model.ArchiveEntry, int, error) {
	if limit <= 0 {
		limit = DefaultArchiveLimit
	}
	limit = min(limit, MaxArchiveLimit)

	recs, total, err := uc.repo.List(ctx, limit)
	if err != nil {
		return nil, 0, err
	}
	entries := make([]model.ArchiveEntry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, r.Entry())
	}
	return entries, total, nil
}

// Translate 翻译文本
func (uc *AnalysisUseCase) Translate(ctx context.Context, text, target string) (string, error) {
	out, err := uc.engine.Translate(ctx, text, target)
	if err != nil {
		return "", toServiceError(err)
	}
	return out, nil
}

// Checks 健康检查中各组件的状态
func (uc *AnalysisUseCase) Checks(ctx context.Context) map[string]string {
	checks := map[string]string{"engine": "ok"}
	for name, on := range uc.engine.Mode() {
		if on {
			checks[name] = "configured"
		} else {
			checks[name] = "mock"
		}
	}
	if _, _, err := uc.repo.List(ctx, 1); err != nil {
		checks["store"] = "error: " + err.Error()
	} else {
		checks["store"] = "ok"
	}
	return checks
}

func (uc *AnalysisUseCase) archive(ctx context.Context, req *model.AnalyzeRequest, payload map[string]any) {
	rec, err := uc.recordOf(req, payload)
	if err != nil {
		uc.log.WithContext(ctx).Warnf("skip archiving: %v", err)
		return
	}
	if err := uc.repo.Save(ctx, rec); err != nil {
		uc.log.WithContext(ctx).Errorf("archive analysis %s failed: %v", rec.ID, err)
	}
}

func (uc *AnalysisUseCase) recordOf(req *model.AnalyzeRequest, payload map[string]any) (*domain.AnalysisRecord, error) {
	id, _ := payload["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("payload has no id")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload %s: %w", id, err)
	}

	rec := &domain.AnalysisRecord{
		ID:          id,
		ContentType: req.ContentType,
		Language:    req.Language,
		Payload:     data,
		CreatedAt:   uc.now(),
	}
	if rec.ContentType == "" {
		rec.ContentType = model.ContentTypeText
	}
	// 图片只存摘要，不存 base64
	if input, ok := payload["input"].(string); ok && input != "" {
		rec.Content = input
	} else {
		rec.Content = req.Content
	}
	if r := []rune(rec.Content); len(r) > maxStoredContent {
		rec.Content = string(r[:maxStoredContent]) + "..."
	}
	if v, ok := payload["verdict"].(map[string]any); ok {
		rec.Verdict, _ = v["label"].(string)
		switch c := v["confidence"].(type) {
		case int:
			rec.Confidence = c
		case float64:
			rec.Confidence = int(c)
		}
	}
	return rec, nil
}

// toServiceError 将引擎错误映射为带状态码的 kratos 错误
func toServiceError(err error) error {
	switch {
	case stderrors.Is(err, engine.ErrEmptyContent),
		stderrors.Is(err, engine.ErrUnsupportedContentType),
		stderrors.Is(err, engine.ErrInvalidImage),
		stderrors.Is(err, engine.ErrInvalidURL),
		stderrors.Is(err, engine.ErrUnsupportedLanguage):
		return errors.BadRequest("INVALID_REQUEST", err.Error())
	case stderrors.Is(err, engine.ErrTranslatorUnavailable):
		return errors.ServiceUnavailable("TRANSLATOR_UNAVAILABLE", err.Error())
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return errors.GatewayTimeout("ANALYSIS_TIMEOUT", err.Error())
	default:
		return errors.InternalServer("ANALYSIS_FAILED", err.Error()).WithCause(err)
	}
}
