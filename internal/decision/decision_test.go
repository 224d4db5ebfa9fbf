package decision

import (
	"testing"

	"github.com/smartacquirer/smartacquirer/internal/features"
)

func candidate(t *testing.T, combinedRisk float64) *features.FeatureSet {
	t.Helper()
	fs := features.NewFeatureSet()
	for key, v := range map[string]float64{
		"mna_likelihood":          0.85,
		"valuation_forecast_usd":  5_000_000,
		"valuation_proxy_current": 6_000_000,
		"overall_synergy_score":   0.9,
		"team_strength_score":     8.2,
		"combined_risk_score":     combinedRisk,
		"funding_efficiency":      0.8,
		"revenue_growth_mom":      0.3,
		"gross_margin":            0.75,
		"exits_count":             2,
		"founder_count":           3,
		"funding_benchmark_gap":   0.4,
		"team_experience_gap":     0.2,
		"synergy_benchmark_gap":   0.5,
		"valuation_multiple_gap":  0.1,
		"growth_benchmark_gap":    0.9,
		"revenue_ttm_gap":         0.3,
	} {
		if err := fs.SetNum(key, v); err != nil {
			t.Fatalf("SetNum(%s): %v", key, err)
		}
	}
	return fs
}

func TestComputeBounds(t *testing.T) {
	for name, fs := range map[string]*features.FeatureSet{
		"empty":  features.NewFeatureSet(),
		"strong": candidate(t, 0.2),
	} {
		s := Compute(fs)
		if s.AcquisitionScore < 0 || s.AcquisitionScore > 1 {
			t.Fatalf("%s: AcquisitionScore=%f out of range", name, s.AcquisitionScore)
		}
		for comp, v := range map[string]float64{
			"likelihood": s.LikelihoodComponent,
			"synergy":    s.SynergyComponent,
			"valuation":  s.ValuationComponent,
			"team":       s.TeamComponent,
			"benchmark":  s.BenchmarkComponent,
		} {
			if v < 0 {
				t.Fatalf("%s: %s component negative: %f", name, comp, v)
			}
		}
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	fs := candidate(t, 0.2)
	if Compute(fs) != Compute(fs) {
		t.Fatal("repeated composition over the same features diverged")
	}
}

func TestConfidenceMultiplierBounds(t *testing.T) {
	cases := []struct {
		synergy, team, risk float64
		want                float64
	}{
		{0.9, 8, 0.2, 1.2},
		{0.9, 8, 0.6, 1.1},
		{0.5, 5, 0.3, 1.0},
		{0.5, 5, 0.9, 0.9},
		{0.71, 7.1, 0.51, 1.1},
	}
	for _, tc := range cases {
		got := confidenceMultiplier(tc.synergy, tc.team, tc.risk)
		if got != tc.want {
			t.Fatalf("confidenceMultiplier(%f,%f,%f)=%f want=%f", tc.synergy, tc.team, tc.risk, got, tc.want)
		}
		if got < confidenceFloor || got > confidenceCeiling {
			t.Fatalf("multiplier %f escaped [%f,%f]", got, confidenceFloor, confidenceCeiling)
		}
	}
}

func TestRiskPenaltyFloor(t *testing.T) {
	lowRisk := Compute(candidate(t, 0.2))
	penalized := Compute(candidate(t, 1.5))

	if penalized.RiskPenalty != maxRiskPenalty {
		t.Fatalf("RiskPenalty=%f want floor at %f", penalized.RiskPenalty, maxRiskPenalty)
	}
	if penalized.AcquisitionScore >= lowRisk.AcquisitionScore {
		t.Fatalf("higher risk did not lower the score: %f vs %f", penalized.AcquisitionScore, lowRisk.AcquisitionScore)
	}
	if penalized.AcquisitionScore <= 0 {
		t.Fatal("penalty must mitigate, not zero out, an otherwise strong score")
	}
}

func TestValuationAgreement(t *testing.T) {
	cases := []struct {
		forecast, proxy, want float64
	}{
		{0, 0, 1.0},
		{1_000_000, 2_000_000, 1.0},
		{2_000_000, 2_000_000, 1.0},
		{3_000_000, 2_000_000, 0.5},
		{10_000_000, 2_000_000, 0},
	}
	for _, tc := range cases {
		got := valuationAgreement(tc.forecast, tc.proxy)
		if diff := got - tc.want; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("valuationAgreement(%f,%f)=%f want=%f", tc.forecast, tc.proxy, got, tc.want)
		}
	}
}

func TestBlendedLikelihoodDefaultsAreNeutral(t *testing.T) {
	got := blendedLikelihood(features.NewFeatureSet())
	if got <= 0.2 || got >= 0.6 {
		t.Fatalf("blended likelihood over defaults=%f, want mildly neutral", got)
	}
}

func TestBenchmarkCompositeMapsGapMean(t *testing.T) {
	fs := features.NewFeatureSet()
	for _, key := range []string{
		"funding_benchmark_gap", "team_experience_gap", "synergy_benchmark_gap",
		"valuation_multiple_gap", "growth_benchmark_gap", "revenue_ttm_gap",
	} {
		if err := fs.SetNum(key, -1); err != nil {
			t.Fatalf("SetNum(%s): %v", key, err)
		}
	}
	if s := Compute(fs); s.BenchmarkComposite != 0 {
		t.Fatalf("all gaps at -1 should map to composite 0, got %f", s.BenchmarkComposite)
	}
}
