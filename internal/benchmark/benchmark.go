// Package benchmark maps raw feature values onto signed gaps against fixed
// industry reference values.
package benchmark

import (
	"math"

	"github.com/smartacquirer/smartacquirer/internal/features"
)

// Industry reference values. Calibration constants, not tunable per request.
const (
	AvgTotalRaisedUSD      = 5_000_000.0
	AvgTeamExperienceYears = 7.0
	AvgSynergyScore        = 0.6
	AvgRevenueMultiple     = 5.0
	AvgRevenueGrowthMoM    = 0.08
	AvgTTMRevenueUSD       = 1_200_000.0
)

// Gaps holds the six benchmark gaps, each a signed ratio clamped to [-1, 1].
type Gaps struct {
	FundingBenchmarkGap  float64 `json:"funding_benchmark_gap"`
	TeamExperienceGap    float64 `json:"team_experience_gap"`
	SynergyBenchmarkGap  float64 `json:"synergy_benchmark_gap"`
	ValuationMultipleGap float64 `json:"valuation_multiple_gap"`
	GrowthBenchmarkGap   float64 `json:"growth_benchmark_gap"`
	RevenueTTMGap        float64 `json:"revenue_ttm_gap"`
}

// Compute derives the six gaps from the merged feature set. Missing metrics
// read as 0 before gap computation.
func Compute(fs *features.FeatureSet) Gaps {
	return Gaps{
		FundingBenchmarkGap:  Gap(fs.Num("total_raised_usd"), AvgTotalRaisedUSD),
		TeamExperienceGap:    Gap(fs.Num("avg_experience"), AvgTeamExperienceYears),
		SynergyBenchmarkGap:  Gap(fs.Num("overall_synergy_score"), AvgSynergyScore),
		ValuationMultipleGap: Gap(fs.Num("revenue_multiple_proxy"), AvgRevenueMultiple),
		GrowthBenchmarkGap:   Gap(fs.Num("revenue_growth_mom"), AvgRevenueGrowthMoM),
		RevenueTTMGap:        Gap(fs.Num("revenue_ttm"), AvgTTMRevenueUSD),
	}
}

// Gap is the signed relative deviation (value-benchmark)/benchmark clamped to
// [-1, 1]. A zero benchmark yields gap 0 by convention.
func Gap(value, bench float64) float64 {
	if bench == 0 {
		return 0
	}
	gap := (value - bench) / bench
	return math.Max(-1.0, math.Min(1.0, gap))
}

// Mean is the unweighted average of the six gaps, used by the decision
// composite.
func (g Gaps) Mean() float64 {
	return (g.FundingBenchmarkGap + g.TeamExperienceGap + g.SynergyBenchmarkGap +
		g.ValuationMultipleGap + g.GrowthBenchmarkGap + g.RevenueTTMGap) / 6.0
}

// Apply records the gaps as feature metrics for downstream stages.
func (g Gaps) Apply(fs *features.FeatureSet) error {
	pairs := []struct {
		key string
		val float64
	}{
		{"funding_benchmark_gap", g.FundingBenchmarkGap},
		{"team_experience_gap", g.TeamExperienceGap},
		{"synergy_benchmark_gap", g.SynergyBenchmarkGap},
		{"valuation_multiple_gap", g.ValuationMultipleGap},
		{"growth_benchmark_gap", g.GrowthBenchmarkGap},
		{"revenue_ttm_gap", g.RevenueTTMGap},
	}
	for _, p := range pairs {
		if err := fs.SetNum(p.key, p.val); err != nil {
			return err
		}
	}
	return nil
}
