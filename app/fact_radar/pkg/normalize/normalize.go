// Package normalize 将宽松的后端分析结果转换为界面可直接使用的 model.Result。
//
// 所有缺失或格式错误的字段都按固定规则补默认值，转换本身不会失败。
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/model"
)

const (
	DefaultID         = "live-analysis"
	DefaultDomain     = "General"
	DefaultLabel      = "⚠️ Caution"
	DefaultConfidence = 50

	placeholderFinding = "Additional analysis point"
	defaultTitle       = "Professional Source"
	defaultURL         = "#"
	defaultNote        = "Evidence snippet"
)

// IconPalette 快速分析按位置循环使用的图标
var IconPalette = [5]string{"🎭", "🌍", "🧬", "🔍", "📊"}

var fallbackChecklist = []string{
	"Check multiple credible sources before accepting or sharing a claim.",
	"Trace the information back to its original source.",
	"Be wary of content designed to provoke strong emotions.",
}

var lineBreak = regexp.MustCompile(`\r\n|\n|\r`)

// NormalizeJSON 解析并规范化后端响应体
func NormalizeJSON(data []byte) model.Result {
	return Normalize(Decode(data))
}

// Normalize 生成满足不变量的 Result：置信度必有值，快速分析与清单非空
func Normalize(p Payload) model.Result {
	factChecks := p.factChecksFound()
	evidenceCount := len(p.Evidence)

	confidence := DefaultConfidence
	if p.Verdict.Confidence != nil {
		confidence = clampScore(*p.Verdict.Confidence)
	}
	label := orDefault(p.Verdict.Label, DefaultLabel)

	breakdown := syntheticBreakdown(factChecks, evidenceCount, confidence)
	applyBreakdown(&breakdown, p.Verdict.Breakdown)

	return model.Result{
		ID:     orDefault(p.ID, DefaultID),
		Input:  p.Input,
		Domain: orDefault(p.Domain, DefaultDomain),
		Verdict: model.Verdict{
			Label:      label,
			Confidence: confidence,
			Breakdown:  &breakdown,
		},
		QuickAnalysis:      quickAnalysis(p.QuickAnalysis, factChecks),
		Evidence:           evidence(p.Evidence),
		EducationChecklist: checklist(p.EducationChecklist, p.Checklist),
		DeepReport:         deepReport(p, factChecks, evidenceCount),
		Audit:              copyMap(p.Audit),
		SimpleExplanation: fmt.Sprintf(
			"This claim was rated %s with %d%% confidence. We checked %d professional fact-check sources to reach this decision.",
			label, confidence, factChecks),
	}
}

func (p Payload) factChecksFound() int {
	n, ok := numberOf(p.Audit["fact_checks_found"])
	if !ok || n < 0 {
		return 0
	}
	// 超出 int32 的计数按上限处理，避免转换溢出
	return int(math.Min(n, math.MaxInt32))
}

func quickAnalysis(q QuickAnalysis, factChecks int) []model.Finding {
	var out []model.Finding
	switch q.Kind {
	case QuickText:
		for _, line := range lineBreak.Split(q.Text, -1) {
			text := stripBullet(line)
			if text == "" {
				continue
			}
			out = append(out, model.Finding{Icon: IconPalette[len(out)%len(IconPalette)], Text: text})
		}
	case QuickItems:
		out = make([]model.Finding, 0, len(q.Items))
		for i, item := range q.Items {
			out = append(out, model.Finding{
				Icon: orDefault(item.Icon, IconPalette[i%len(IconPalette)]),
				Text: orDefault(item.Text, placeholderFinding),
			})
		}
	}
	if len(out) > 0 {
		return out
	}
	return []model.Finding{
		{Icon: IconPalette[0], Text: fmt.Sprintf("Found %d professional fact-check sources related to this claim.", factChecks)},
		{Icon: IconPalette[1], Text: "Cross-referenced the claim against available credible sources."},
		{Icon: IconPalette[2], Text: "The verdict reflects the combined weight of the available verification signals."},
	}
}

// stripBullet 去掉行首的一个 -、•、* 标记
func stripBullet(line string) string {
	line = strings.TrimSpace(line)
	for _, marker := range []string{"-", "•", "*"} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker))
		}
	}
	return line
}

func checklist(candidates ...Checklist) []string {
	for _, c := range candidates {
		var out []string
		switch c.Kind {
		case ChecklistStrings:
			out = append(out, c.Strings...)
		case ChecklistPairs:
			for _, pair := range c.Pairs {
				switch {
				case pair.Point != "" && pair.Explanation != "":
					out = append(out, pair.Point+": "+pair.Explanation)
				case pair.Point != "":
					out = append(out, pair.Point)
				case pair.Explanation != "":
					out = append(out, pair.Explanation)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return append([]string(nil), fallbackChecklist...)
}

func syntheticBreakdown(factChecks, evidenceCount, confidence int) model.Breakdown {
	b := model.Breakdown{
		FactChecks:           75,
		SourceCredibility:    70,
		ModelConsensus:       confidence,
		TechnicalFeasibility: 75,
		CrossMedia:           min(90, evidenceCount*20+50),
	}
	if factChecks > 0 {
		b.FactChecks = 90
	}
	if evidenceCount > 0 {
		b.SourceCredibility = 85
	}
	return b
}

// applyBreakdown 用后端提供的子评分覆盖合成值
func applyBreakdown(b *model.Breakdown, provided map[string]float64) {
	for key, score := range provided {
		switch key {
		case "factChecks":
			b.FactChecks = clampScore(score)
		case "sourceCredibility":
			b.SourceCredibility = clampScore(score)
		case "modelConsensus":
			b.ModelConsensus = clampScore(score)
		case "technicalFeasibility":
			b.TechnicalFeasibility = clampScore(score)
		case "crossMedia":
			b.CrossMedia = clampScore(score)
		}
	}
}

func evidence(raw []RawEvidence) []model.Evidence {
	out := make([]model.Evidence, 0, len(raw))
	for _, e := range raw {
		out = append(out, model.Evidence{
			Title: firstNonEmpty(e.Source, e.Title, defaultTitle),
			URL:   firstNonEmpty(e.URL, defaultURL),
			Note:  firstNonEmpty(e.Snippet, e.Note, defaultNote),
		})
	}
	return out
}

func deepReport(p Payload, factChecks, evidenceCount int) model.DeepReport {
	return model.DeepReport{
		Summary: p.Verdict.Summary,
		Sections: []model.Section{
			{
				Heading: "Methodology",
				Content: fmt.Sprintf(
					"Multi-source verification: %d professional fact-check sources and %d evidence items were cross-referenced before the verdict was assigned.",
					factChecks, evidenceCount),
			},
			{
				Heading: "Intelligence Report",
				Content: prettyBlock(p.Intelligence, "No intelligence report was provided for this analysis."),
			},
			{
				Heading: "Audit Trail",
				Content: prettyBlock(p.Audit, "No audit metadata was provided for this analysis."),
			},
		},
	}
}

func prettyBlock(m map[string]any, empty string) string {
	if len(m) == 0 {
		return empty
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return empty
	}
	return strings.TrimRight(buf.String(), "\n")
}

func clampScore(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
