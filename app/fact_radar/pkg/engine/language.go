package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// parseLanguage 解析 BCP 47 语言标签，返回基础语言（如 "zh-Hans-CN" -> "zh"）
func parseLanguage(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	return base.String(), true
}

// normalizeLanguage 无法识别时回退为英文
func normalizeLanguage(s string) string {
	if base, ok := parseLanguage(s); ok {
		return base
	}
	return "en"
}

// scripts 非拉丁文字与其最常见语言的对应关系，按顺序匹配
var scripts = []struct {
	table *unicode.RangeTable
	lang  string
}{
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Hangul, "ko"},
	{unicode.Han, "zh"},
	{unicode.Cyrillic, "ru"},
	{unicode.Arabic, "ar"},
	{unicode.Devanagari, "hi"},
	{unicode.Greek, "el"},
	{unicode.Hebrew, "he"},
	{unicode.Thai, "th"},
}

// minScriptShare 某种文字占字母的比例超过该值时判定为对应语言
const minScriptShare = 0.3

// detectScriptLanguage 按文字系统识别非拉丁语言，拉丁文字或无法判定时返回空串
func detectScriptLanguage(text string) string {
	counts := make([]int, len(scripts))
	letters := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for i, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[i]++
				break
			}
		}
	}
	if letters == 0 {
		return ""
	}

	// 日文混用汉字，出现假名即视为日文
	if kana := counts[0] + counts[1]; kana > 0 && float64(kana+counts[3])/float64(letters) >= minScriptShare {
		return "ja"
	}
	best, bestCount := -1, 0
	for i, n := range counts {
		if n > bestCount {
			best, bestCount = i, n
		}
	}
	if best >= 0 && float64(bestCount)/float64(letters) >= minScriptShare {
		return scripts[best].lang
	}
	return ""
}
