package model

import "time"

// 内容类型
const (
	ContentTypeText  = "text"
	ContentTypeURL   = "url"
	ContentTypeImage = "image"
)

// Result 规范化后的核查结果，构建完成后不再修改
type Result struct {
	ID                 string         `json:"id"`
	Input              string         `json:"input"`
	Domain             string         `json:"domain"`
	Verdict            Verdict        `json:"verdict"`
	QuickAnalysis      []Finding      `json:"quick_analysis"`
	Evidence           []Evidence     `json:"evidence"`
	EducationChecklist []string       `json:"education_checklist"`
	DeepReport         DeepReport     `json:"deep_report"`
	Audit              map[string]any `json:"audit,omitempty"`
	SimpleExplanation  string         `json:"simple_explanation"`
}

// Verdict 结论与置信度
type Verdict struct {
	Label      string     `json:"label"`
	Confidence int        `json:"confidence"` // 0-100
	Breakdown  *Breakdown `json:"breakdown,omitempty"`
}

// Breakdown 置信度的五项子评分，均为 0-100
type Breakdown struct {
	FactChecks           int `json:"factChecks"`
	SourceCredibility    int `json:"sourceCredibility"`
	ModelConsensus       int `json:"modelConsensus"`
	TechnicalFeasibility int `json:"technicalFeasibility"`
	CrossMedia           int `json:"crossMedia"`
}

// Finding 快速分析中的一条发现
type Finding struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
}

// Evidence 引用的外部来源
type Evidence struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Note  string `json:"note,omitempty"`
}

// DeepReport 可展开的详细报告
type DeepReport struct {
	Summary  string    `json:"summary,omitempty"`
	Sections []Section `json:"sections"`
}

// Section 详细报告中的一个章节
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// AnalyzeRequest /api/v1/analyze 请求体
type AnalyzeRequest struct {
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
	Language    string `json:"language"`
}

// MaxBatchSize 单次批量分析的最大条数
const MaxBatchSize = 10

// BatchItem 批量分析中单条的结果，Result 为后端原始结果
type BatchItem struct {
	Success bool           `json:"success"`
	Result  map[string]any `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// BatchReply /api/v1/analyze-batch 响应，Results 与请求顺序一致
type BatchReply struct {
	Results []BatchItem `json:"results"`
	Total   int         `json:"total"`
}

// ImageVerification /api/v1/verify-image 响应
type ImageVerification struct {
	Forensic  Forensic       `json:"forensic"`
	OCRText   string         `json:"ocr_text"`
	FactCheck ImageFactCheck `json:"fact_check"`
	Education []string       `json:"education"`
}

// Forensic 图片取证信息
type Forensic struct {
	Format            string   `json:"format"`
	SizeBytes         int      `json:"size_bytes"`
	SHA256            string   `json:"sha256"`
	ManipulationScore int      `json:"manipulation_score"`
	Findings          []string `json:"findings"`
}

// ImageFactCheck 图片内容的核查结论
type ImageFactCheck struct {
	Label      string `json:"label"`
	Confidence int    `json:"confidence"`
	Summary    string `json:"summary"`
}

// ArchiveEntry 历史核查记录摘要
type ArchiveEntry struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	Content     string    `json:"content"`
	Language    string    `json:"language"`
	Verdict     string    `json:"verdict"`
	Confidence  int       `json:"confidence"`
	CreatedAt   time.Time `json:"created_at"`
}
