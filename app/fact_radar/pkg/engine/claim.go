package engine

import (
	"fmt"
	"strings"
)

// ClaimType 声明类型
type ClaimType string

const (
	ClaimVaccine   ClaimType = "vaccine_conspiracy"
	ClaimElection  ClaimType = "election_misinformation"
	ClaimHealth    ClaimType = "health_misinformation"
	ClaimClimate   ClaimType = "climate_misinformation"
	ClaimFinancial ClaimType = "financial_misinformation"
	ClaimGeneral   ClaimType = "general_misinformation"
)

const (
	LabelVerified = "✅ Verified"
	LabelFalse    = "❌ False"
	LabelCaution  = "⚠️ Caution"
)

// 按顺序匹配，先命中者优先
var claimKeywords = []struct {
	typ      ClaimType
	keywords []string
}{
	{ClaimVaccine, []string{"vaccine", "vaccination", "microchip", "tracking"}},
	{ClaimElection, []string{"election", "vote", "fraud", "rigged"}},
	{ClaimHealth, []string{"covid", "coronavirus", "pandemic", "lockdown"}},
	{ClaimClimate, []string{"climate", "global warming", "carbon"}},
	{ClaimFinancial, []string{"economy", "stock", "financial", "crash"}},
}

// DetectClaimType 根据关键词判断声明类型
func DetectClaimType(text string) ClaimType {
	lower := strings.ToLower(text)
	for _, ck := range claimKeywords {
		if containsAny(lower, ck.keywords...) {
			return ck.typ
		}
	}
	return ClaimGeneral
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

type verdict struct {
	Label      string
	Confidence int
	Summary    string
	Analysis   []string
}

// mockVerdict 无 LLM 时的规则判定
func mockVerdict(text string) verdict {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "dead", "died"):
		return verdict{Label: LabelFalse, Confidence: 85, Summary: "Claims about deaths require verification from official sources."}
	case containsAny(lower, "covid", "vaccine"):
		return verdict{Label: LabelCaution, Confidence: 70, Summary: "Medical claims need expert verification."}
	case containsAny(lower, "election", "vote"):
		return verdict{Label: LabelCaution, Confidence: 60, Summary: "Political claims require fact-checking."}
	default:
		return verdict{Label: LabelCaution, Confidence: 60, Summary: "Claim requires further verification."}
	}
}

// quickAnalysisText 规则引擎输出的换行分隔要点
func quickAnalysisText(ct ClaimType, factChecks, searchResults int) string {
	pattern := "Misinformation pattern detected: uses emotional triggers and unverified sources to spread rapidly."
	consensus := "Evidence-based analysis compares this claim against verified information from authoritative sources."
	switch ct {
	case ClaimVaccine:
		pattern = "Vaccine conspiracy pattern: exploits fears about medical interventions using technically implausible claims."
		consensus = "Medical authorities worldwide report no credible evidence supporting this type of vaccine claim."
	case ClaimElection:
		pattern = "Electoral misinformation pattern: undermines trust in democratic processes through unsubstantiated allegations."
		consensus = "Electoral authorities maintain multiple verification layers and transparency measures."
	case ClaimHealth:
		pattern = "Health misinformation pattern: exploits medical anxieties and contradicts established scientific consensus."
		consensus = "Medical consensus from health authorities and peer-reviewed research should be consulted."
	case ClaimClimate:
		pattern = "Climate misinformation pattern: cherry-picks data points against long-term scientific measurements."
		consensus = "Climate science bodies publish peer-reviewed assessments that address this kind of claim."
	case ClaimFinancial:
		pattern = "Financial misinformation pattern: uses urgency and fear to provoke hasty decisions."
		consensus = "Regulators and established financial press are the reference for market claims."
	}

	var evidence string
	switch {
	case factChecks == 0 && searchResults == 0:
		evidence = "Limited verification sources available - manual fact-checking through official channels recommended."
	case searchResults == 0:
		evidence = fmt.Sprintf("Verified through %d professional fact-checking organizations.", factChecks)
	case factChecks == 0:
		evidence = fmt.Sprintf("Cross-referenced with %d additional sources, though professional fact-checks are not yet available.", searchResults)
	default:
		evidence = fmt.Sprintf("Cross-verified with %d professional fact-checkers and %d additional sources.", factChecks, searchResults)
	}

	return "- " + pattern + "\n- " + evidence + "\n- " + consensus
}

// checklistFor 每种声明类型的核查清单
func checklistFor(ct ClaimType) []map[string]any {
	items := []map[string]any{
		{"point": "Check the source", "explanation": "Look for the original publisher and their track record for accuracy."},
		{"point": "Cross-reference", "explanation": "Confirm the claim with at least two independent credible outlets."},
		{"point": "Check the date", "explanation": "Old stories are often recirculated out of context."},
	}
	var specific map[string]any
	switch ct {
	case ClaimVaccine, ClaimHealth:
		specific = map[string]any{"point": "Consult health authorities", "explanation": "WHO, CDC and national health agencies publish guidance on medical claims."}
	case ClaimElection:
		specific = map[string]any{"point": "Consult election officials", "explanation": "Official electoral bodies publish audited results and procedures."}
	case ClaimClimate:
		specific = map[string]any{"point": "Read the science", "explanation": "IPCC and national science academies summarize the evidence."}
	case ClaimFinancial:
		specific = map[string]any{"point": "Verify with regulators", "explanation": "Market regulators and company filings are primary sources."}
	default:
		return items
	}
	return append([]map[string]any{specific}, items...)
}

// intelligenceFor 多维度情报摘要
func intelligenceFor(ct ClaimType, v verdict) map[string]any {
	intel := map[string]any{
		"psychological": "Content relies on emotional framing; pause before sharing.",
		"technical":     fmt.Sprintf("Automated assessment: %s (%d%% confidence).", v.Label, v.Confidence),
	}
	switch ct {
	case ClaimVaccine, ClaimHealth:
		intel["scientific"] = "Peer-reviewed medical research is the reference point for this claim."
	case ClaimElection:
		intel["political"] = "Claims about electoral integrity can affect public trust in institutions."
	case ClaimClimate:
		intel["scientific"] = "Long-term climate records and assessment reports address this topic."
		intel["geopolitical"] = "Climate policy claims often carry international policy implications."
	case ClaimFinancial:
		intel["financial"] = "Market-moving claims should be checked against regulatory filings."
	}
	return intel
}
