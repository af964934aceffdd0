package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/fact_radar/app/analyzer/internal/usecase"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/model"
)

// Version 健康检查中上报的服务版本，由 main 设置
var Version = "dev"

// TranslateRequest /api/translate 请求体
type TranslateRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

// TranslateReply /api/translate 响应
type TranslateReply struct {
	Translated string `json:"translated"`
}

// BatchRequest /api/v1/analyze-batch 请求体，线上格式为 AnalyzeRequest 数组
type BatchRequest struct {
	Items []*model.AnalyzeRequest
}

// ArchiveRequest /api/v1/archive 查询参数
type ArchiveRequest struct {
	Limit int `json:"limit"`
}

// ArchiveReply /api/v1/archive 响应
type ArchiveReply struct {
	Analyses []model.ArchiveEntry `json:"analyses"`
	Total    int                  `json:"total"`
}

// GetResultRequest /api/v1/results/{id} 路径参数
type GetResultRequest struct {
	ID string `json:"id"`
}

// HealthReply /health 响应
type HealthReply struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

type AnalyzerService struct {
	uc  *usecase.AnalysisUseCase
	log *log.Helper
}

func NewAnalyzerService(uc *usecase.AnalysisUseCase, logger log.Logger) *AnalyzerService {
	return &AnalyzerService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

func (s *AnalyzerService) Analyze(ctx context.Context, req *model.AnalyzeRequest) (map[string]any, error) {
	return s.uc.Analyze(ctx, req)
}

func (s *AnalyzerService) AnalyzeBatch(ctx context.Context, req *BatchRequest) (*model.BatchReply, error) {
	items, err := s.uc.AnalyzeBatch(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	return &model.BatchReply{Results: items, Total: len(items)}, nil
}

func (s *AnalyzerService) VerifyImage(ctx context.Context, req *model.AnalyzeRequest) (*model.ImageVerification, error) {
	return s.uc.VerifyImage(ctx, req)
}

func (s *AnalyzerService) GetResult(ctx context.Context, req *GetResultRequest) (json.RawMessage, error) {
	return s.uc.GetResult(ctx, req.ID)
}

func (s *AnalyzerService) Archive(ctx context.Context, req *ArchiveRequest) (*ArchiveReply, error) {
	entries, total, err := s.uc.Archive(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	return &ArchiveReply{Analyses: entries, Total: total}, nil
}

func (s *AnalyzerService) Translate(ctx context.Context, req *TranslateRequest) (*TranslateReply, error) {
	if req.Text == "" {
		return nil, errors.BadRequest("INVALID_REQUEST", "text is required")
	}
	out, err := s.uc.Translate(ctx, req.Text, req.Target)
	if err != nil {
		return nil, err
	}
	return &TranslateReply{Translated: out}, nil
}

func (s *AnalyzerService) Health(ctx context.Context, _ *struct{}) (*HealthReply, error) {
	return &HealthReply{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    s.uc.Checks(ctx),
	}, nil
}

func parseLimit(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
