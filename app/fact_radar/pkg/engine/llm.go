package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/logger"
)

const maxRetries = 3

// retryBaseDelay 429 退避的基础间隔，按 2^i 递增
var retryBaseDelay = 2 * time.Second

type llmVerdict struct {
	VerdictLabel string   `json:"verdict_label"`
	Confidence   float64  `json:"confidence"`
	Analysis     []string `json:"analysis"`
	Reasoning    string   `json:"reasoning"`
}

const reasonPrompt = `Analyze this claim for misinformation. Return ONLY valid JSON, no markdown:
{
	"verdict_label": "✅ Verified" | "❌ False" | "⚠️ Caution",
	"confidence": 0-100,
	"analysis": ["bullet 1", "bullet 2", "bullet 3"],
	"reasoning": "brief explanation"
}
Write the analysis and reasoning in language "%s".

CLAIM: %s`

// reason 请求 LLM 给出结构化判定
func (e *Engine) reason(ctx context.Context, text, lang string) (*verdict, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: "You are a JSON generator. Output JSON only."},
		{Role: schema.User, Content: fmt.Sprintf(reasonPrompt, lang, text)},
	}

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		content, err := e.generate(ctx, messages)
		if err != nil {
			return nil, err
		}

		var out llmVerdict
		if err := json.Unmarshal([]byte(stripFence(content)), &out); err != nil {
			lastErr = err
			logger.Log.Debugf("llm returned invalid json (attempt %d): %v", i+1, err)
			continue
		}

		v := &verdict{
			Label:      canonicalLabel(out.VerdictLabel),
			Confidence: int(math.Round(math.Max(0, math.Min(100, out.Confidence)))),
			Summary:    strings.TrimSpace(out.Reasoning),
			Analysis:   out.Analysis,
		}
		if v.Summary == "" {
			v.Summary = "Analysis completed."
		}
		return v, nil
	}
	return nil, fmt.Errorf("json unmarshal after retries: %w", lastErr)
}

// Translate 使用 LLM 翻译文本
func (e *Engine) Translate(ctx context.Context, text, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyContent
	}
	tag, ok := parseLanguage(target)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, target)
	}
	if e.chatModel == nil {
		return "", ErrTranslatorUnavailable
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: "You are a translator. Output only the translated text."},
		{Role: schema.User, Content: fmt.Sprintf("Translate the following text into language %q:\n\n%s", tag, text)},
	}
	out, err := e.generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// generate 带限流与 429 退避的单次生成
func (e *Engine) generate(ctx context.Context, messages []*schema.Message) (string, error) {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := e.chatModel.Generate(ctx, messages)
		if err == nil {
			return resp.Content, nil
		}
		if !isRateLimited(err) {
			return "", err
		}
		lastErr = err
		if i < maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryBaseDelay * time.Duration(1<<i)):
			}
		}
	}
	return "", lastErr
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func canonicalLabel(label string) string {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "false"):
		return LabelFalse
	case strings.Contains(lower, "verified"), strings.Contains(lower, "true"):
		return LabelVerified
	default:
		return LabelCaution
	}
}
