// Package decision combines all sub-scores into a single acquisition score
// via dynamically weighted composition, then applies the risk penalty.
package decision

import (
	"math"

	"github.com/smartacquirer/smartacquirer/internal/benchmark"
	"github.com/smartacquirer/smartacquirer/internal/features"
)

// Component weights. The likelihood weight is additionally modulated by the
// confidence multiplier below.
const (
	weightLikelihood = 0.35
	weightSynergy    = 0.25
	weightValuation  = 0.15
	weightTeam       = 0.15
	weightBenchmark  = 0.10
)

// Confidence multiplier bounds and triggers. Strong corroborating signals or
// elevated risk shift the weight of the single most volatile input without
// letting it dominate or vanish. Thresholds are calibration constants carried
// over verbatim; do not re-derive.
const (
	confidenceFloor      = 0.8
	confidenceCeiling    = 1.2
	synergyBonusAbove    = 0.7
	teamBonusAbove       = 7.0
	riskPenaltyAbove     = 0.5
	confidenceAdjustStep = 0.1
)

// maxRiskPenalty floors the penalty multiplier at 0.5: risk mitigates the
// score but never categorically vetoes it.
const maxRiskPenalty = 0.5

// Score is the decision output: the final acquisition score plus every
// intermediate component, kept for auditability and the explanation fact
// sheet.
type Score struct {
	AcquisitionScore     float64 `json:"acquisition_score"`
	BlendedLikelihood    float64 `json:"mna_likelihood"`
	LikelihoodComponent  float64 `json:"mna_component"`
	SynergyComponent     float64 `json:"synergy_component"`
	ValuationComponent   float64 `json:"valuation_component"`
	TeamComponent        float64 `json:"team_component"`
	BenchmarkComponent   float64 `json:"benchmark_component"`
	RiskPenalty          float64 `json:"risk_penalty"`
	ValuationAgreement   float64 `json:"valuation_agreement_score"`
	BenchmarkComposite   float64 `json:"benchmark_composite_score"`
	ConfidenceMultiplier float64 `json:"confidence_multiplier"`
}

// Compute runs the fixed-order composition over the fully merged feature
// set. All inputs default gracefully to neutral values when absent; there are
// no error conditions and no hidden randomness.
func Compute(fs *features.FeatureSet) Score {
	s := Score{}

	s.ValuationAgreement = valuationAgreement(
		fs.Num("valuation_forecast_usd"),
		fs.Num("valuation_proxy_current"),
	)

	s.BlendedLikelihood = blendedLikelihood(fs)
	overallSynergy := fs.NumOr("overall_synergy_score", 0.5)
	teamStrength := fs.NumOr("team_strength_score", 0.5)
	combinedRisk := fs.NumOr("combined_risk_score", 0.3)

	s.BenchmarkComposite = clamp01((benchmarkMean(fs) + 1) / 2)

	s.ConfidenceMultiplier = confidenceMultiplier(overallSynergy, teamStrength, combinedRisk)
	s.LikelihoodComponent = weightLikelihood * s.BlendedLikelihood * s.ConfidenceMultiplier
	s.SynergyComponent = weightSynergy * overallSynergy
	s.ValuationComponent = weightValuation * s.ValuationAgreement
	s.TeamComponent = weightTeam * teamStrength
	s.BenchmarkComponent = weightBenchmark * s.BenchmarkComposite

	raw := s.LikelihoodComponent + s.SynergyComponent + s.ValuationComponent +
		s.TeamComponent + s.BenchmarkComponent

	s.RiskPenalty = math.Min(maxRiskPenalty, combinedRisk)
	s.AcquisitionScore = clamp01(raw * (1.0 - s.RiskPenalty))
	return s
}

// blendedLikelihood counters the class-imbalance bias of the external
// classifier by blending its raw probability with corroborating fundamentals.
func blendedLikelihood(fs *features.FeatureSet) float64 {
	modelPrediction := fs.Num("mna_likelihood")
	fundingEfficiency := fs.NumOr("funding_efficiency", 0.5)
	teamStrength := fs.NumOr("team_strength_score", 0.5) / 10.0
	synergy := fs.NumOr("overall_synergy_score", 0.5)
	growth := fs.NumOr("revenue_growth_mom", 0.1)
	grossMargin := fs.NumOr("gross_margin", 0.5)
	exits := fs.Num("exits_count")
	founders := fs.NumOr("founder_count", 1)

	normalizedGrowth := clamp01(growth / 0.5)

	blended := 0.20*modelPrediction +
		0.20*fundingEfficiency +
		0.20*teamStrength +
		0.15*synergy +
		0.10*normalizedGrowth +
		0.10*grossMargin +
		0.03*math.Min(1.0, exits/3.0) +
		0.02*math.Min(1.0, founders/5.0)
	return clamp01(blended)
}

// valuationAgreement rewards forecasts that do not wildly exceed the grounded
// current estimate: 1.0 at or below parity, linearly down to 0 at 2x,
// symmetric penalty above.
func valuationAgreement(forecastUSD, proxyUSD float64) float64 {
	ratio := forecastUSD / (proxyUSD + 1)
	ratio = math.Max(0, math.Min(2, ratio))
	if ratio <= 1.0 {
		return 1.0
	}
	return math.Max(0, 2.0-ratio)
}

func benchmarkMean(fs *features.FeatureSet) float64 {
	gaps := benchmark.Gaps{
		FundingBenchmarkGap:  fs.Num("funding_benchmark_gap"),
		TeamExperienceGap:    fs.Num("team_experience_gap"),
		SynergyBenchmarkGap:  fs.Num("synergy_benchmark_gap"),
		ValuationMultipleGap: fs.Num("valuation_multiple_gap"),
		GrowthBenchmarkGap:   fs.Num("growth_benchmark_gap"),
		RevenueTTMGap:        fs.Num("revenue_ttm_gap"),
	}
	return gaps.Mean()
}

func confidenceMultiplier(synergy, teamStrength, combinedRisk float64) float64 {
	factor := 1.0
	if synergy > synergyBonusAbove {
		factor += confidenceAdjustStep
	}
	if teamStrength > teamBonusAbove {
		factor += confidenceAdjustStep
	}
	if combinedRisk > riskPenaltyAbove {
		factor -= confidenceAdjustStep
	}
	return math.Max(confidenceFloor, math.Min(confidenceCeiling, factor))
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
