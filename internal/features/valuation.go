package features

import "math"

// Revenue-multiple heuristic calibration. The proxy multiple starts from a
// 3-10x baseline midpoint and scales with month-over-month growth (expressed
// as a percentage), capped so runaway growth cannot produce absurd multiples.
const (
	baselineMultiple = 5.0
	maxGrowthFactor  = 2.0
	minMultiple      = 1.0
	maxMultiple      = 15.0
)

type ValuationFeatures struct {
	RevenueTTM           float64 `json:"revenue_ttm"`
	RevenueGrowthMoM     float64 `json:"revenue_growth_mom"`
	GrossMargin          float64 `json:"gross_margin"`
	EBITDAMargin         float64 `json:"ebitda_margin"`
	RevenueMultipleProxy float64 `json:"revenue_multiple_proxy"`
	ValuationProxyUSD    float64 `json:"valuation_proxy_current"`
}

func ExtractValuation(doc Financials) ValuationFeatures {
	revenueTTM := 0.0
	switch {
	case doc.AnnualRevenueUSD != nil:
		revenueTTM = *doc.AnnualRevenueUSD
	case doc.MonthlyRevenueUSD != nil:
		revenueTTM = *doc.MonthlyRevenueUSD * 12
	}

	growthFactor := math.Min(1+doc.RevenueGrowthMoM/100, maxGrowthFactor)
	multiple := baselineMultiple * growthFactor
	multiple = math.Max(minMultiple, math.Min(multiple, maxMultiple))

	return ValuationFeatures{
		RevenueTTM:           revenueTTM,
		RevenueGrowthMoM:     doc.RevenueGrowthMoM,
		GrossMargin:          doc.GrossMargin,
		EBITDAMargin:         doc.EBITDAMargin,
		RevenueMultipleProxy: multiple,
		ValuationProxyUSD:    revenueTTM * multiple,
	}
}

func (v ValuationFeatures) Apply(fs *FeatureSet) error {
	pairs := []struct {
		key string
		val float64
	}{
		{"revenue_ttm", v.RevenueTTM},
		{"revenue_growth_mom", v.RevenueGrowthMoM},
		{"gross_margin", v.GrossMargin},
		{"ebitda_margin", v.EBITDAMargin},
		{"revenue_multiple_proxy", v.RevenueMultipleProxy},
		{"valuation_proxy_current", v.ValuationProxyUSD},
	}
	for _, p := range pairs {
		if err := fs.SetNum(p.key, p.val); err != nil {
			return err
		}
	}
	return nil
}
