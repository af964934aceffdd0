package domain

import (
	"encoding/json"
	"time"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/model"
)

// AnalysisRecord 一次分析的存档记录，Payload 为返回给前端的原始结果
type AnalysisRecord struct {
	ID          string
	ContentType string
	Content     string
	Language    string
	Verdict     string
	Confidence  int
	Payload     json.RawMessage
	CreatedAt   time.Time
}

// Entry 转换为归档列表条目
func (r *AnalysisRecord) Entry() model.ArchiveEntry {
	return model.ArchiveEntry{
		ID:          r.ID,
		ContentType: r.ContentType,
		Content:     r.Content,
		Language:    r.Language,
		Verdict:     r.Verdict,
		Confidence:  r.Confidence,
		CreatedAt:   r.CreatedAt,
	}
}
