// Package risk derives four partial risk scores from the merged feature set
// and folds them into one combined risk score. Higher = riskier.
package risk

import (
	"math"
	"strings"

	"github.com/smartacquirer/smartacquirer/internal/features"
)

// Cap denominators for the risk sub-ratios. Calibration constants.
const (
	roundsCap        = 5.0
	raisedCapUSD     = 10_000_000.0
	experienceCapYrs = 10.0
	foundersCap      = 3.0
	exitsCap         = 2.0
	multipleCap      = 15.0
	forecastRatioCap = 20.0
)

// Stage risk by last funding-round label. Unknown labels fall through to the
// later-stage value.
const (
	stageRiskPreSeed = 0.8
	stageRiskSeed    = 0.5
	stageRiskLater   = 0.2
)

type Profile struct {
	FundingRisk       float64 `json:"funding_risk"`
	TeamRisk          float64 `json:"team_risk"`
	SynergyRisk       float64 `json:"synergy_risk"`
	ValuationRisk     float64 `json:"valuation_risk"`
	CombinedRiskScore float64 `json:"combined_risk_score"`
}

func Compute(fs *features.FeatureSet) Profile {
	p := Profile{
		FundingRisk:   fundingRisk(fs),
		TeamRisk:      teamRisk(fs),
		SynergyRisk:   synergyRisk(fs),
		ValuationRisk: valuationRisk(fs),
	}
	p.CombinedRiskScore = (p.FundingRisk + p.TeamRisk + p.SynergyRisk + p.ValuationRisk) / 4.0
	return p
}

func fundingRisk(fs *features.FeatureSet) float64 {
	roundsRisk := 1.0 - math.Min(fs.Num("num_rounds")/roundsCap, 1.0)
	raisedRisk := 1.0 - math.Min(fs.Num("total_raised_usd")/raisedCapUSD, 1.0)
	stage := StageRisk(fs.Label("last_round_type"))
	return clamp01(roundsRisk*0.4 + raisedRisk*0.4 + stage*0.2)
}

// StageRisk looks up the discrete risk for a funding-round label.
func StageRisk(label string) float64 {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(label), "-", "")) {
	case "preseed", "pre seed":
		return stageRiskPreSeed
	case "seed":
		return stageRiskSeed
	default:
		return stageRiskLater
	}
}

func teamRisk(fs *features.FeatureSet) float64 {
	experienceRisk := 1.0 - math.Min(fs.Num("avg_experience")/experienceCapYrs, 1.0)
	founderRisk := 1.0 - math.Min(fs.NumOr("founder_count", 1)/foundersCap, 1.0)
	exits := fs.Num("exits_count")
	exitsRisk := 1.0
	if exits > 0 {
		exitsRisk = 1.0 - math.Min(exits/exitsCap, 1.0)
	}
	return clamp01(experienceRisk*0.4 + founderRisk*0.3 + exitsRisk*0.3)
}

func synergyRisk(fs *features.FeatureSet) float64 {
	return clamp01(1.0 - fs.NumOr("overall_synergy_score", 0.5))
}

func valuationRisk(fs *features.FeatureSet) float64 {
	multipleRisk := math.Min(fs.NumOr("revenue_multiple_proxy", 5.0)/multipleCap, 1.0)
	forecastRatio := fs.Num("valuation_forecast_usd") / math.Max(fs.Num("revenue_ttm"), 1)
	forecastRisk := math.Min(forecastRatio/forecastRatioCap, 1.0)
	return clamp01(multipleRisk*0.5 + forecastRisk*0.5)
}

// Apply records the profile as feature metrics for the decision composer and
// fact sheet.
func (p Profile) Apply(fs *features.FeatureSet) error {
	pairs := []struct {
		key string
		val float64
	}{
		{"funding_risk", p.FundingRisk},
		{"team_risk", p.TeamRisk},
		{"synergy_risk", p.SynergyRisk},
		{"valuation_risk", p.ValuationRisk},
		{"combined_risk_score", p.CombinedRiskScore},
	}
	for _, pr := range pairs {
		if err := fs.SetNum(pr.key, pr.val); err != nil {
			return err
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
