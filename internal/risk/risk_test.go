package risk

import (
	"math"
	"testing"

	"github.com/smartacquirer/smartacquirer/internal/features"
)

func TestStageRiskLookup(t *testing.T) {
	cases := []struct {
		label string
		want  float64
	}{
		{"Pre-seed", stageRiskPreSeed},
		{"Pre-Seed", stageRiskPreSeed},
		{"PreSeed", stageRiskPreSeed},
		{"Seed", stageRiskSeed},
		{"Series A", stageRiskLater},
		{"Series C", stageRiskLater},
		{"", stageRiskLater},
		{"Unknown", stageRiskLater},
	}
	for _, tc := range cases {
		if got := StageRisk(tc.label); got != tc.want {
			t.Fatalf("StageRisk(%q)=%f want=%f", tc.label, got, tc.want)
		}
	}
}

func TestCombinedRiskIsUnweightedMean(t *testing.T) {
	fs := features.NewFeatureSet()
	_ = fs.SetNum("num_rounds", 3)
	_ = fs.SetNum("total_raised_usd", 4_000_000)
	_ = fs.SetNum("avg_experience", 6)
	_ = fs.SetNum("founder_count", 2)
	_ = fs.SetNum("exits_count", 1)
	_ = fs.SetNum("overall_synergy_score", 0.8)
	_ = fs.SetNum("revenue_multiple_proxy", 6)
	_ = fs.SetNum("valuation_forecast_usd", 2_000_000)
	_ = fs.SetNum("revenue_ttm", 500_000)
	_ = fs.SetLabel("last_round_type", "Series A")

	p := Compute(fs)
	want := (p.FundingRisk + p.TeamRisk + p.SynergyRisk + p.ValuationRisk) / 4.0
	if p.CombinedRiskScore != want {
		t.Fatalf("CombinedRiskScore=%f want exact mean %f", p.CombinedRiskScore, want)
	}
}

func TestAllRisksInUnitInterval(t *testing.T) {
	extremes := []*features.FeatureSet{
		features.NewFeatureSet(),
		func() *features.FeatureSet {
			fs := features.NewFeatureSet()
			_ = fs.SetNum("num_rounds", 100)
			_ = fs.SetNum("total_raised_usd", 1e12)
			_ = fs.SetNum("avg_experience", 50)
			_ = fs.SetNum("founder_count", 20)
			_ = fs.SetNum("exits_count", 10)
			_ = fs.SetNum("overall_synergy_score", 5)
			_ = fs.SetNum("revenue_multiple_proxy", 1000)
			_ = fs.SetNum("valuation_forecast_usd", 1e12)
			_ = fs.SetNum("revenue_ttm", 1)
			return fs
		}(),
	}
	for i, fs := range extremes {
		p := Compute(fs)
		for name, v := range map[string]float64{
			"funding":  p.FundingRisk,
			"team":     p.TeamRisk,
			"synergy":  p.SynergyRisk,
			"valuation": p.ValuationRisk,
			"combined": p.CombinedRiskScore,
		} {
			if v < 0 || v > 1 {
				t.Fatalf("case %d: %s risk out of range: %f", i, name, v)
			}
		}
	}
}

func TestModerateScenario(t *testing.T) {
	// 2 rounds totaling $2.5M, 2 founders avg 4y with 1 exit, synergy 0.9,
	// monthly revenue $10k at 5% growth, 0.7 margin.
	fs := features.NewFeatureSet()
	_ = fs.SetNum("num_rounds", 2)
	_ = fs.SetNum("total_raised_usd", 2_500_000)
	_ = fs.SetNum("avg_experience", 4)
	_ = fs.SetNum("founder_count", 2)
	_ = fs.SetNum("exits_count", 1)
	_ = fs.SetNum("overall_synergy_score", 0.9)
	_ = fs.SetNum("revenue_multiple_proxy", 5.25)
	_ = fs.SetNum("revenue_ttm", 120_000)
	_ = fs.SetNum("valuation_forecast_usd", 630_000)
	_ = fs.SetLabel("last_round_type", "Series A")

	p := Compute(fs)
	if p.FundingRisk < 0.5 || p.FundingRisk > 0.7 {
		t.Fatalf("FundingRisk=%f want moderate 0.5-0.7", p.FundingRisk)
	}
	if math.Abs(p.SynergyRisk-0.1) > 1e-9 {
		t.Fatalf("SynergyRisk=%f want 0.1", p.SynergyRisk)
	}
	if p.CombinedRiskScore <= 0.2 || p.CombinedRiskScore >= 0.6 {
		t.Fatalf("CombinedRiskScore=%f want strictly between 0.2 and 0.6", p.CombinedRiskScore)
	}
}

func TestZeroExitsMaxExitRisk(t *testing.T) {
	noExits := features.NewFeatureSet()
	_ = noExits.SetNum("avg_experience", 10)
	_ = noExits.SetNum("founder_count", 3)
	_ = noExits.SetNum("exits_count", 0)

	oneExit := features.NewFeatureSet()
	_ = oneExit.SetNum("avg_experience", 10)
	_ = oneExit.SetNum("founder_count", 3)
	_ = oneExit.SetNum("exits_count", 1)

	if Compute(noExits).TeamRisk <= Compute(oneExit).TeamRisk {
		t.Fatal("zero exits should carry strictly higher team risk")
	}
}

func TestApplyRecordsProfile(t *testing.T) {
	fs := features.NewFeatureSet()
	p := Profile{FundingRisk: 0.5, TeamRisk: 0.4, SynergyRisk: 0.1, ValuationRisk: 0.2, CombinedRiskScore: 0.3}
	if err := p.Apply(fs); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if fs.Num("combined_risk_score") != 0.3 {
		t.Fatal("profile not recorded")
	}
}
