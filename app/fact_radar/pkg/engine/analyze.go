package engine

import (
	"context"
	"fmt"
	"html"
	"math"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/factcheck"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/logger"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/search"
	"github.com/iWorld-y/fact_radar/app/fact_radar/pkg/wikipedia"
)

const (
	maxFactCheckEvidence = 2
	maxSearchEvidence    = 3
	maxSnippetRunes      = 150
	maxPageRunes         = 5000
)

const (
	mockModelVersion = "fact-radar-rules-1"
	statusMock       = "MOCK_ANALYSIS_SUCCESS"
	statusLLM        = "LLM_ANALYSIS_SUCCESS"
	statusFetchFail  = "URL_FETCH_FAILED"
	statusImage      = "IMAGE_ANALYSIS_SUCCESS"
)

// gathered 并发收集到的外部证据
type gathered struct {
	claims  []factcheck.Claim
	results []search.Result
	answer  string
	wiki    *wikipedia.Summary
	llm     *verdict
}

// gather 并发查询事实核查、网页搜索、百科与 LLM。
// 每一路有独立时限，整体受证据收集总时限约束；任何一路失败或超时都降级为空结果。
func (e *Engine) gather(ctx context.Context, text, lang string) gathered {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeouts.Evidence())
	defer cancel()

	var out gathered
	g, gctx := errgroup.WithContext(ctx)
	t := e.cfg.Timeouts

	if e.checker != nil {
		g.Go(func() error {
			claims, err := callWithin(gctx, t.FactCheck(), func(ctx context.Context) ([]factcheck.Claim, error) {
				if err := e.limiter.Wait(ctx); err != nil {
					return nil, err
				}
				return e.checker.Search(ctx, text, lang)
			})
			if err != nil {
				logger.Log.Warnf("fact check failed: %v", err)
				return nil
			}
			out.claims = claims
			return nil
		})
	}

	if e.searcher != nil {
		g.Go(func() error {
			resp, err := callWithin(gctx, t.Search(), func(ctx context.Context) (*search.Response, error) {
				if err := e.limiter.Wait(ctx); err != nil {
					return nil, err
				}
				return e.searcher.Search(ctx, &search.Request{
					Query:      text,
					Topic:      "general",
					Language:   lang,
					MaxResults: e.cfg.Search.MaxResults,
				})
			})
			if err != nil {
				logger.Log.Warnf("web search failed: %v", err)
				return nil
			}
			out.results, out.answer = resp.Results, resp.Answer
			return nil
		})
	}

	if e.wiki != nil {
		g.Go(func() error {
			s, err := callWithin(gctx, t.Wikipedia(), func(ctx context.Context) (*wikipedia.Summary, error) {
				return e.wiki.Summary(ctx, text)
			})
			if err != nil {
				logger.Log.Warnf("wikipedia lookup failed: %v", err)
				return nil
			}
			out.wiki = s
			return nil
		})
	}

	if e.chatModel != nil {
		g.Go(func() error {
			v, err := callWithin(gctx, t.LLM(), func(ctx context.Context) (*verdict, error) {
				return e.reason(ctx, text, lang)
			})
			if err != nil {
				logger.Log.Warnf("llm reasoning failed, falling back to rules: %v", err)
				return nil
			}
			out.llm = v
			return nil
		})
	}

	_ = g.Wait()
	return out
}

// callWithin 在 limit 内等待 fn 返回；fn 不响应取消时也按时返回超时错误
func callWithin[T any](ctx context.Context, limit time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// toEnglish 非拉丁文字的文本先译为英文再检索与分类，翻译失败时沿用原文
func (e *Engine) toEnglish(ctx context.Context, text string) (query, detected string, translated bool) {
	detected = detectScriptLanguage(text)
	if detected == "" || e.chatModel == nil {
		return text, detected, false
	}

	out, err := callWithin(ctx, e.cfg.Timeouts.Translate(), func(ctx context.Context) (string, error) {
		return e.Translate(ctx, text, "en")
	})
	if err != nil || out == "" {
		logger.Log.Warnf("translate %s text failed, using original: %v", detected, err)
		return text, detected, false
	}
	return out, detected, true
}

// analyzeText 分析一段文本；input 为回显给前端的原始输入，domain 为空时按声明类型推断
func (e *Engine) analyzeText(ctx context.Context, text, input, lang, domain string, started time.Time) map[string]any {
	query, detected, translated := e.toEnglish(ctx, text)
	ct := DetectClaimType(query)
	g := e.gather(ctx, query, lang)

	v := mockVerdict(query)
	status, version := statusMock, mockModelVersion
	var quick any
	if g.llm != nil {
		v = *g.llm
		status, version = statusLLM, "llm:"+e.cfg.LLM.Model
		quick = findingsFrom(v.Analysis, len(g.claims), len(g.results), v.Confidence)
	} else {
		quick = quickAnalysisText(ct, len(g.claims), len(g.results))
	}

	evidence := e.evidenceFrom(g)
	if domain == "" {
		domain = domainFor(ct)
	}

	intel := intelligenceFor(ct, v)
	if g.wiki != nil {
		intel["context"] = "Wikipedia: " + e.clean(g.wiki.Extract)
	}
	if g.answer != "" {
		intel["web_consensus"] = e.clean(g.answer)
	}

	fields := map[string]any{
		"fact_checks_found":    len(g.claims),
		"search_results_found": len(g.results),
		"wikipedia_found":      g.wiki != nil,
		"claim_type":           string(ct),
		"model_version":        version,
		"status":               status,
		"language":             lang,
		"translated":           translated,
	}
	if detected != "" {
		fields["detected_language"] = detected
	}

	return map[string]any{
		"id":     newAnalysisID(),
		"input":  input,
		"domain": domain,
		"verdict": map[string]any{
			"label":      v.Label,
			"confidence": v.Confidence,
			"summary":    v.Summary,
		},
		"evidence":       evidence,
		"quick_analysis": quick,
		"checklist":      checklistFor(ct),
		"intelligence":   intel,
		"audit":          e.audit(started, fields),
	}
}

func (e *Engine) analyzeURL(ctx context.Context, raw, lang string, started time.Time) (map[string]any, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	page, err := e.fetch(ctx, u.String())
	if err != nil || strings.TrimSpace(page.Text) == "" {
		if err == nil {
			err = fmt.Errorf("no readable text")
		}
		logger.Log.Warnf("fetch %s failed: %v", u, err)
		return e.unreachablePayload(u.String(), lang, err, started), nil
	}

	text := truncateRunes(strings.TrimSpace(page.Text), maxPageRunes, "")
	if page.Title != "" {
		text = page.Title + "\n" + text
	}
	payload := e.analyzeText(ctx, text, u.String(), lang, "Web Content", started)
	audit := payload["audit"].(map[string]any)
	audit["source_url"] = u.String()
	audit["page_title"] = page.Title
	return payload, nil
}

// unreachablePayload 页面无法抓取时提示人工核查
func (e *Engine) unreachablePayload(rawURL, lang string, cause error, started time.Time) map[string]any {
	return map[string]any{
		"id":     newAnalysisID(),
		"input":  rawURL,
		"domain": "Web Content",
		"verdict": map[string]any{
			"label":      LabelCaution,
			"confidence": 50,
			"summary":    "The page could not be retrieved automatically; verify it manually.",
		},
		"evidence": []map[string]any{{
			"source":  "Original page",
			"url":     rawURL,
			"snippet": "Page could not be fetched: " + cause.Error(),
		}},
		"quick_analysis": "- The page could not be retrieved for automated analysis.\n" +
			"- Open the link in a browser and check the publisher and date.\n" +
			"- Search for the headline on established news sites.",
		"checklist": checklistFor(ClaimGeneral),
		"audit": e.audit(started, map[string]any{
			"fact_checks_found":    0,
			"search_results_found": 0,
			"claim_type":           string(ClaimGeneral),
			"model_version":        mockModelVersion,
			"status":               statusFetchFail,
			"language":             lang,
			"source_url":           rawURL,
		}),
	}
}

func (e *Engine) audit(started time.Time, fields map[string]any) map[string]any {
	now := e.now()
	fields["trace_id"] = uuid.NewString()
	fields["analysis_time"] = now.UTC().Format(time.RFC3339)
	fields["processing_time"] = math.Round(now.Sub(started).Seconds()*1000) / 1000
	return fields
}

// evidenceFrom 事实核查结论在前，其次是百科背景，网页搜索结果在后
func (e *Engine) evidenceFrom(g gathered) []map[string]any {
	evidence := make([]map[string]any, 0, maxFactCheckEvidence+1+maxSearchEvidence)

	for _, c := range g.claims {
		if len(evidence) >= maxFactCheckEvidence {
			break
		}
		if len(c.Reviews) == 0 {
			continue
		}
		r := c.Reviews[0]
		publisher := r.Publisher
		if publisher == "" {
			publisher = "Independent Fact Checker"
		}
		rating := r.Rating
		if rating == "" {
			rating = "Checked"
		}
		evidence = append(evidence, map[string]any{
			"source":  publisher + " - " + rating,
			"url":     r.URL,
			"snippet": "Claim: " + e.clean(c.Text),
		})
	}

	if g.wiki != nil {
		evidence = append(evidence, map[string]any{
			"source":  "Wikipedia: " + g.wiki.Title,
			"url":     g.wiki.URL,
			"snippet": e.clean(g.wiki.Extract) + " Encyclopedic background for the claim.",
		})
	}

	added := 0
	for _, r := range g.results {
		if added >= maxSearchEvidence {
			break
		}
		if r.URL == "" {
			continue
		}
		evidence = append(evidence, map[string]any{
			"source":  e.clean(r.Title),
			"url":     r.URL,
			"snippet": e.clean(r.Content),
		})
		added++
	}
	return evidence
}

// clean 去除 HTML 并截断
func (e *Engine) clean(s string) string {
	s = html.UnescapeString(e.sanitizer.Sanitize(s))
	s = strings.Join(strings.Fields(s), " ")
	return truncateRunes(s, maxSnippetRunes, "...")
}

func truncateRunes(s string, n int, suffix string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + suffix
}

func domainFor(ct ClaimType) string {
	switch ct {
	case ClaimVaccine, ClaimHealth:
		return "Health"
	case ClaimElection:
		return "Politics"
	case ClaimClimate:
		return "Science"
	case ClaimFinancial:
		return "Finance"
	default:
		return "General"
	}
}

// findingsFrom LLM 路径下的要点列表，缺失的位置用证据统计补齐
func findingsFrom(points []string, factChecks, searchResults, confidence int) []map[string]any {
	fallback := []string{
		fmt.Sprintf("Found %d fact-check sources", factChecks),
		fmt.Sprintf("Analyzed %d web sources", searchResults),
		fmt.Sprintf("AI confidence: %d%%", confidence),
	}
	icons := []string{"🎭", "🌍", "🧬", "🔍", "📊"}
	n := max(len(points), len(fallback))
	items := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		text := ""
		if i < len(points) {
			text = strings.TrimSpace(points[i])
		}
		if text == "" && i < len(fallback) {
			text = fallback[i]
		}
		if text == "" {
			continue
		}
		items = append(items, map[string]any{"icon": icons[i%len(icons)], "text": text})
	}
	return items
}
