package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// QuickKind quick_analysis 字段的形态
type QuickKind int

const (
	QuickAbsent QuickKind = iota
	QuickText
	QuickItems
)

// RawFinding 后端给出的单条分析，空字符串表示缺失
type RawFinding struct {
	Icon string
	Text string
}

// QuickAnalysis quick_analysis 的字符串/数组联合类型
type QuickAnalysis struct {
	Kind  QuickKind
	Text  string
	Items []RawFinding
}

// ChecklistKind 清单字段的形态
type ChecklistKind int

const (
	ChecklistAbsent ChecklistKind = iota
	ChecklistStrings
	ChecklistPairs
)

// Pair 形如 {point, explanation} 的清单条目
type Pair struct {
	Point       string
	Explanation string
}

// Checklist education_checklist / checklist 的联合类型
type Checklist struct {
	Kind    ChecklistKind
	Strings []string
	Pairs   []Pair
}

// RawVerdict 后端结论，Confidence 为 nil 表示缺失
type RawVerdict struct {
	Label      string
	Confidence *float64
	Summary    string
	Breakdown  map[string]float64
}

// RawEvidence 后端证据条目
type RawEvidence struct {
	Source  string
	Title   string
	URL     string
	Snippet string
	Note    string
}

// Payload 宽松的后端分析结果，所有字段均可缺失
type Payload struct {
	ID                 string
	Input              string
	Domain             string
	Verdict            RawVerdict
	Evidence           []RawEvidence
	QuickAnalysis      QuickAnalysis
	EducationChecklist Checklist
	Checklist          Checklist
	Audit              map[string]any
	Intelligence       map[string]any
}

// Decode 解析后端响应体，无法解析时返回空 Payload
func Decode(data []byte) Payload {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Payload{}
	}
	return FromMap(m)
}

// FromMap 从已解码的 JSON 对象构建 Payload
func FromMap(m map[string]any) Payload {
	if m == nil {
		return Payload{}
	}
	p := Payload{
		ID:                 stringOf(m["id"]),
		Input:              stringOf(m["input"]),
		Domain:             stringOf(m["domain"]),
		QuickAnalysis:      quickAnalysisOf(m["quick_analysis"]),
		EducationChecklist: checklistOf(m["education_checklist"]),
		Checklist:          checklistOf(m["checklist"]),
		Audit:              objectOf(m["audit"]),
		Intelligence:       objectOf(m["intelligence"]),
	}

	if v := objectOf(m["verdict"]); v != nil {
		p.Verdict.Label = stringOf(v["label"])
		p.Verdict.Summary = stringOf(v["summary"])
		if c, ok := numberOf(v["confidence"]); ok {
			p.Verdict.Confidence = &c
		}
		if b := objectOf(v["breakdown"]); b != nil {
			scores := make(map[string]float64, len(b))
			for k, raw := range b {
				if n, ok := numberOf(raw); ok {
					scores[k] = n
				}
			}
			if len(scores) > 0 {
				p.Verdict.Breakdown = scores
			}
		}
	}

	if items, ok := listOf(m["evidence"]); ok {
		p.Evidence = make([]RawEvidence, 0, len(items))
		for _, item := range items {
			e := objectOf(item)
			p.Evidence = append(p.Evidence, RawEvidence{
				Source:  stringOf(e["source"]),
				Title:   stringOf(e["title"]),
				URL:     stringOf(e["url"]),
				Snippet: stringOf(e["snippet"]),
				Note:    stringOf(e["note"]),
			})
		}
	}
	return p
}

func quickAnalysisOf(v any) QuickAnalysis {
	if t, ok := v.(string); ok {
		return QuickAnalysis{Kind: QuickText, Text: t}
	}
	if list, ok := listOf(v); ok {
		items := make([]RawFinding, 0, len(list))
		for _, item := range list {
			switch it := item.(type) {
			case string:
				items = append(items, RawFinding{Text: strings.TrimSpace(it)})
			case map[string]any:
				items = append(items, RawFinding{Icon: stringOf(it["icon"]), Text: stringOf(it["text"])})
			default:
				items = append(items, RawFinding{})
			}
		}
		return QuickAnalysis{Kind: QuickItems, Items: items}
	}
	return QuickAnalysis{}
}

func checklistOf(v any) Checklist {
	items, ok := listOf(v)
	if !ok {
		return Checklist{}
	}

	allStrings := true
	for _, item := range items {
		if _, ok := item.(string); !ok {
			allStrings = false
			break
		}
	}
	if allStrings {
		c := Checklist{Kind: ChecklistStrings}
		for _, item := range items {
			if s := strings.TrimSpace(item.(string)); s != "" {
				c.Strings = append(c.Strings, s)
			}
		}
		return c
	}

	c := Checklist{Kind: ChecklistPairs}
	for _, item := range items {
		switch it := item.(type) {
		case string:
			c.Pairs = append(c.Pairs, Pair{Point: strings.TrimSpace(it)})
		case map[string]any:
			c.Pairs = append(c.Pairs, Pair{Point: stringOf(it["point"]), Explanation: stringOf(it["explanation"])})
		}
	}
	return c
}

// listOf 同时接受 JSON 解码得到的 []any 与进程内构造的具体切片
func listOf(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func objectOf(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// stringOf 只接受字符串，空白字符串视为缺失
func stringOf(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
