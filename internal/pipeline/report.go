package pipeline

import (
	"fmt"
	"strings"
	"time"
)

const memoDisclaimer = "*Automated screening memo. Not investment advice; verify all figures before committee review.*"

// BuildReportMarkdown renders the evaluation as an acquisition memo.
func BuildReportMarkdown(env *ResponseEnvelope) string {
	var b strings.Builder
	buildHeader(&b, env)
	buildExecutiveSummary(&b, env)
	buildScoreBreakdown(&b, env)
	buildSynergySection(&b, env)
	buildRiskSection(&b, env)
	buildBenchmarkSection(&b, env)
	buildTeamSection(&b, env)
	buildBusinessModelSection(&b, env)
	buildMemoMetadata(&b, env)
	return b.String()
}

func buildHeader(b *strings.Builder, env *ResponseEnvelope) {
	fmt.Fprintf(b, "# Acquisition Evaluation Memo\n\n")
	fmt.Fprintf(b, "- Target: %s\n", orUnnamed(env.CompanyName))
	if env.AcquirerName != "" {
		fmt.Fprintf(b, "- Acquirer: %s\n", env.AcquirerName)
	}
	fmt.Fprintf(b, "- Date: %s\n\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(b, "%s\n\n", memoDisclaimer)
}

func buildExecutiveSummary(b *strings.Builder, env *ResponseEnvelope) {
	fmt.Fprintf(b, "## Executive Summary\n\n")
	if env.Explanation != nil {
		fmt.Fprintf(b, "**Recommendation:** `%s` (confidence %.2f)\n\n", env.Explanation.Decision, env.Explanation.Confidence)
		for _, r := range env.Explanation.Rationale {
			fmt.Fprintf(b, "- %s\n", r)
		}
		b.WriteString("\n")
	} else {
		fmt.Fprintf(b, "**Recommendation unavailable** (explanation generation failed)\n\n")
		if env.ExplanationError != "" {
			fmt.Fprintf(b, "%s\n\n", env.ExplanationError)
		}
	}
	fmt.Fprintf(b, "- Acquisition score: %.3f\n", env.DecisionScore.AcquisitionScore)
	fmt.Fprintf(b, "- M&A likelihood: %.3f\n", env.MnaLikelihood)
	fmt.Fprintf(b, "- Valuation forecast: $%.0f (₹%.0f)\n", env.ValuationForecastUSD, env.ValuationForecastINR)
	fmt.Fprintf(b, "- Combined risk: %.3f\n\n", env.Risk.CombinedRiskScore)
}

func buildScoreBreakdown(b *strings.Builder, env *ResponseEnvelope) {
	s := env.DecisionScore
	fmt.Fprintf(b, "## Score Breakdown\n\n")
	fmt.Fprintf(b, "| Component | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Likelihood (weighted, confidence x%.2f) | %.4f |\n", s.ConfidenceMultiplier, s.LikelihoodComponent)
	fmt.Fprintf(b, "| Synergy | %.4f |\n", s.SynergyComponent)
	fmt.Fprintf(b, "| Valuation agreement | %.4f |\n", s.ValuationComponent)
	fmt.Fprintf(b, "| Team | %.4f |\n", s.TeamComponent)
	fmt.Fprintf(b, "| Benchmark | %.4f |\n", s.BenchmarkComponent)
	fmt.Fprintf(b, "| Risk penalty | %.4f |\n", s.RiskPenalty)
	fmt.Fprintf(b, "| **Acquisition score** | **%.4f** |\n\n", s.AcquisitionScore)
}

func buildSynergySection(b *strings.Builder, env *ResponseEnvelope) {
	s := env.SynergyDetails
	fmt.Fprintf(b, "## Strategic Fit\n\n")
	fmt.Fprintf(b, "- Market similarity: %.3f\n", s.MarketSimilarity)
	fmt.Fprintf(b, "- Tech similarity: %.3f\n", s.TechSimilarity)
	fmt.Fprintf(b, "- Revenue synergy: %.3f\n", s.RevenueSynergyScore)
	fmt.Fprintf(b, "- Cost synergy: %.3f\n", s.CostSynergyScore)
	fmt.Fprintf(b, "- Overall synergy: %.3f\n\n", s.OverallSynergyScore)
}

func buildRiskSection(b *strings.Builder, env *ResponseEnvelope) {
	r := env.Risk
	fmt.Fprintf(b, "## Risk Profile\n\n")
	fmt.Fprintf(b, "- Funding risk: %.3f\n", r.FundingRisk)
	fmt.Fprintf(b, "- Team risk: %.3f\n", r.TeamRisk)
	fmt.Fprintf(b, "- Synergy risk: %.3f\n", r.SynergyRisk)
	fmt.Fprintf(b, "- Valuation risk: %.3f\n", r.ValuationRisk)
	fmt.Fprintf(b, "- Combined: %.3f\n\n", r.CombinedRiskScore)
}

func buildBenchmarkSection(b *strings.Builder, env *ResponseEnvelope) {
	g := env.Benchmarks
	fmt.Fprintf(b, "## Benchmark Gaps\n\n")
	fmt.Fprintf(b, "Signed gaps against industry reference values, clamped to [-1, 1].\n\n")
	fmt.Fprintf(b, "- Funding raised: %+.3f\n", g.FundingBenchmarkGap)
	fmt.Fprintf(b, "- Team experience: %+.3f\n", g.TeamExperienceGap)
	fmt.Fprintf(b, "- Synergy: %+.3f\n", g.SynergyBenchmarkGap)
	fmt.Fprintf(b, "- Revenue multiple: %+.3f\n", g.ValuationMultipleGap)
	fmt.Fprintf(b, "- Revenue growth: %+.3f\n", g.GrowthBenchmarkGap)
	fmt.Fprintf(b, "- Trailing revenue: %+.3f\n\n", g.RevenueTTMGap)
}

func buildTeamSection(b *strings.Builder, env *ResponseEnvelope) {
	t := env.TeamDetails
	fmt.Fprintf(b, "## Team\n\n")
	fmt.Fprintf(b, "- Founders: %d (avg %.1f years experience, %d prior exits)\n", t.FounderCount, t.AvgExperience, t.ExitsCount)
	fmt.Fprintf(b, "- Estimated team size: %.0f\n", t.EstimatedTeamSize)
	fmt.Fprintf(b, "- Strength score: %.2f\n", t.TeamStrengthScore)
	fmt.Fprintf(b, "- Composition score: %.2f\n", t.TeamCompositionScore)
	for _, f := range t.FounderDetails {
		exit := "no exit"
		if f.HasExit {
			exit = "prior exit"
		}
		fmt.Fprintf(b, "- %s, %.1f years (%s, %s)\n", f.ExperienceLevel, f.Experience, orUnnamed(f.Role), exit)
	}
	b.WriteString("\n")
}

func buildBusinessModelSection(b *strings.Builder, env *ResponseEnvelope) {
	bm := env.BusinessModelEvaluation
	fmt.Fprintf(b, "## Business Model\n\n")
	fmt.Fprintf(b, "- Viability score: %.3f\n", bm.BusinessModelScore)
	fmt.Fprintf(b, "- Funding efficiency: %.3f\n", bm.FundingEfficiency)
	fmt.Fprintf(b, "- Execution strength: %.3f\n", bm.TeamStrengthForExecution)
	fmt.Fprintf(b, "- Revenue sustainability: %.3f\n\n", bm.RevenueSustainability)
	for _, p := range env.BusinessModelInsights.KeyPatterns {
		fmt.Fprintf(b, "- %s\n", p)
	}
	b.WriteString("\n")
}

func buildMemoMetadata(b *strings.Builder, env *ResponseEnvelope) {
	m := env.Metadata
	fmt.Fprintf(b, "## Run Metadata\n\n")
	fmt.Fprintf(b, "- Duration: %dms\n", m.DurationMS)
	fmt.Fprintf(b, "- Degraded: %t\n", m.Degraded)
	if m.DegradedReason != nil {
		fmt.Fprintf(b, "- Reason: %s\n", *m.DegradedReason)
	}
	fmt.Fprintf(b, "- Likelihood fallback: %t\n", m.LikelihoodFallback)
	fmt.Fprintf(b, "- Valuation fallback: %t\n", m.ValuationFallback)
	fmt.Fprintf(b, "- Explanation attempts: %d\n", m.ExplanationAttempts)
	if m.ExplanationModel != "" {
		fmt.Fprintf(b, "- Explanation model: %s\n", m.ExplanationModel)
	}
}

func orUnnamed(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(unnamed)"
	}
	return s
}
