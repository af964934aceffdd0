package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/logger"
	fm "github.com/iWorld-y/fact_radar/app/fact_radar/pkg/model"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/normalize"
)

// 进度事件类型
const (
	EventMessage      = "message"
	EventSectionStart = "section_start"
	EventLine         = "line"
	EventSectionEnd   = "section_end"
	EventResult       = "result"
	EventComplete     = "complete"
	EventError        = "error"
)

// Event 流式进度事件
type Event struct {
	Type    string `json:"type"`
	Section string `json:"section,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// EmitFunc 输出一个事件；返回错误（如客户端断开）时停止推送
type EmitFunc func(Event) error

// StreamAnalysis 分析并逐段推送进度，最终事件为 result + complete，或单个 error
func (e *Engine) StreamAnalysis(ctx context.Context, req fm.AnalyzeRequest, emit EmitFunc) error {
	s := &stepper{ctx: ctx, emit: emit, delay: e.cfg.Stream.StepDelay()}

	s.send(Event{Type: EventMessage, Content: "🚀 Starting analysis..."})
	s.send(Event{Type: EventMessage, Content: "🧠 Analyzing content..."})
	if s.err != nil {
		return s.err
	}

	payload, err := e.Analyze(ctx, req)
	if err != nil {
		_ = emit(Event{Type: EventError, Content: err.Error()})
		return err
	}
	// 复用前端同一套归一化逻辑生成展示行
	result := normalize.Normalize(normalize.FromMap(payload))

	s.section("verdict", "🎯 Verdict: "+result.Verdict.Label,
		fmt.Sprintf("Confidence: %d%%", result.Verdict.Confidence), result.DeepReport.Summary)

	var lines []string
	for _, f := range result.QuickAnalysis {
		lines = append(lines, f.Icon+" "+f.Text)
	}
	s.section("analysis", "🧠 Quick Analysis", lines...)

	lines = lines[:0]
	for i, ev := range result.Evidence {
		if i == 3 {
			break
		}
		lines = append(lines, ev.Title+": "+truncateRunes(ev.Note, 100, "..."))
	}
	s.section("evidence", "🔍 Evidence Found", lines...)

	lines = lines[:0]
	for i, item := range result.EducationChecklist {
		if i == 3 {
			break
		}
		lines = append(lines, "✓ "+item)
	}
	s.section("checklist", "📋 Verification Checklist", lines...)

	s.send(Event{Type: EventResult, Result: payload})
	s.send(Event{Type: EventComplete, Content: "✅ Analysis complete!"})
	return s.err
}

// StreamImage 图片取证的流式版本
func (e *Engine) StreamImage(ctx context.Context, content, language string, emit EmitFunc) error {
	s := &stepper{ctx: ctx, emit: emit, delay: e.cfg.Stream.StepDelay()}

	s.send(Event{Type: EventMessage, Content: "🖼️ Reading image..."})
	if s.err != nil {
		return s.err
	}

	res, err := e.VerifyImage(ctx, content, language)
	if err != nil {
		_ = emit(Event{Type: EventError, Content: err.Error()})
		return err
	}

	s.section("forensic", "🔬 Forensic Analysis", res.Forensic.Findings...)
	s.section("fact_check", "🎯 Verdict: "+res.FactCheck.Label,
		fmt.Sprintf("Confidence: %d%%", res.FactCheck.Confidence), res.FactCheck.Summary)
	s.section("education", "📋 Verification Checklist", res.Education...)

	s.send(Event{Type: EventResult, Result: res})
	s.send(Event{Type: EventComplete, Content: "✅ Image verification complete!"})
	return s.err
}

// stepper 按固定节奏推送事件，首个错误之后的调用均为空操作
type stepper struct {
	ctx   context.Context
	emit  EmitFunc
	delay time.Duration
	err   error
}

func (s *stepper) send(ev Event) {
	if s.err != nil {
		return
	}
	if err := s.emit(ev); err != nil {
		logger.Log.Debugf("stream closed by consumer: %v", err)
		s.err = err
		return
	}
	s.pause()
}

func (s *stepper) section(key, title string, lines ...string) {
	s.send(Event{Type: EventSectionStart, Section: key, Title: title})
	for _, line := range lines {
		if line == "" {
			continue
		}
		s.send(Event{Type: EventLine, Section: key, Content: line})
	}
	s.send(Event{Type: EventSectionEnd, Section: key})
}

func (s *stepper) pause() {
	if s.delay <= 0 || s.err != nil {
		return
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-s.ctx.Done():
		s.err = s.ctx.Err()
	case <-t.C:
	}
}
