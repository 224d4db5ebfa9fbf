package features

import "math"

// BusinessModelFeatures is the composite extractor: it re-derives funding,
// team, and revenue signals from the raw documents and blends them into a
// single business-model viability score. A few of its outputs intentionally
// duplicate other extractors' keys with identical values (pass-through fields
// tolerated by FeatureSet.SetNum).
type BusinessModelFeatures struct {
	BusinessModelScore       float64 `json:"business_model_score"`
	FundingEfficiency        float64 `json:"funding_efficiency"`
	TeamStrengthForExecution float64 `json:"team_strength_for_execution"`
	RevenueSustainability    float64 `json:"revenue_sustainability"`
	NumFundingRounds         int     `json:"num_funding_rounds"`
	TotalRaisedUSD           float64 `json:"total_raised_usd"`
	FounderCount             int     `json:"founder_count"`
	AvgFounderExperience     float64 `json:"avg_founder_experience"`
	AnnualRevenueUSD         float64 `json:"annual_revenue_usd"`
	GrossMargin              float64 `json:"gross_margin"`
}

func ExtractBusinessModel(funding Funding, team Team, financials Financials) BusinessModelFeatures {
	out := BusinessModelFeatures{
		NumFundingRounds: len(funding.Rounds),
		FounderCount:     len(team.Founders),
		GrossMargin:      financials.GrossMargin,
	}
	for _, r := range funding.Rounds {
		out.TotalRaisedUSD += r.AmountValue()
	}

	totalExperience := 0.0
	for _, f := range team.Founders {
		totalExperience += f.ExperienceYears
	}
	out.AvgFounderExperience = totalExperience / math.Max(1, float64(out.FounderCount))

	monthly := 0.0
	if financials.MonthlyRevenueUSD != nil {
		monthly = *financials.MonthlyRevenueUSD
	}
	out.AnnualRevenueUSD = monthly * 12
	if financials.AnnualRevenueUSD != nil {
		out.AnnualRevenueUSD = *financials.AnnualRevenueUSD
	}

	if out.NumFundingRounds > 0 {
		avgRound := out.TotalRaisedUSD / float64(out.NumFundingRounds)
		out.FundingEfficiency = math.Min(1.0, avgRound/5_000_000)
	}

	out.TeamStrengthForExecution = math.Min(1.0, (float64(out.FounderCount)*0.3+out.AvgFounderExperience*0.7)/10)
	out.RevenueSustainability = math.Min(1.0, out.GrossMargin*0.7+(out.AnnualRevenueUSD/1_000_000)*0.3)

	out.BusinessModelScore = out.FundingEfficiency*0.3 +
		out.TeamStrengthForExecution*0.3 +
		out.RevenueSustainability*0.4
	return out
}

func (b BusinessModelFeatures) Apply(fs *FeatureSet) error {
	pairs := []struct {
		key string
		val float64
	}{
		{"business_model_score", b.BusinessModelScore},
		{"funding_efficiency", b.FundingEfficiency},
		{"team_strength_for_execution", b.TeamStrengthForExecution},
		{"revenue_sustainability", b.RevenueSustainability},
		{"num_funding_rounds", float64(b.NumFundingRounds)},
		{"total_raised_usd", b.TotalRaisedUSD},
		{"founder_count", float64(b.FounderCount)},
		{"avg_founder_experience", b.AvgFounderExperience},
		{"annual_revenue_usd", b.AnnualRevenueUSD},
		{"gross_margin", b.GrossMargin},
	}
	for _, p := range pairs {
		if err := fs.SetNum(p.key, p.val); err != nil {
			return err
		}
	}
	return nil
}
