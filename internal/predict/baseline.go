package predict

import (
	"context"
	"math"
)

// Baseline models stand in for the offline-trained classifier and regressor
// so the service runs end-to-end without a model-serving dependency. They are
// deterministic calibrated heuristics over the documented vectors, not
// trained artifacts.

type BaselineLikelihoodModel struct{}

func (BaselineLikelihoodModel) PredictLikelihood(_ context.Context, vec []float64) (float64, error) {
	if len(vec) != len(LikelihoodFeatureOrder) {
		return 0, &VectorSizeError{Want: len(LikelihoodFeatureOrder), Got: len(vec)}
	}
	// Logistic blend over the strongest historical signals: synergy, team
	// strength, funding traction.
	z := -1.2 +
		1.8*vec[11] + // overall_synergy_score
		0.12*vec[3] + // team_strength_score
		0.25*math.Min(vec[0]/5, 1) + // num_rounds
		0.4*math.Min(vec[1]/10_000_000, 1) + // total_raised_usd
		0.3*math.Min(vec[6]/2, 1) // exits_count
	return 1.0 / (1.0 + math.Exp(-z)), nil
}

type BaselineValuationModel struct{}

func (BaselineValuationModel) PredictValuation(_ context.Context, vec []float64) (float64, error) {
	if len(vec) != len(ValuationFeatureOrder) {
		return 0, &VectorSizeError{Want: len(ValuationFeatureOrder), Got: len(vec)}
	}
	revenueTTM := vec[12]
	multiple := vec[16]
	proxy := vec[17]
	growthLift := 1 + math.Min(math.Max(vec[13], 0)/100, 1) // revenue_growth_mom as pct
	marginLift := 1 + math.Max(vec[14], 0)*0.5              // gross_margin
	est := proxy
	if est <= 0 {
		est = revenueTTM * math.Max(multiple, 1)
	}
	est *= growthLift * marginLift
	if est <= 0 {
		est = FallbackValuationUSD
	}
	return est, nil
}

type VectorSizeError struct {
	Want int
	Got  int
}

func (e *VectorSizeError) Error() string {
	if e.Got < e.Want {
		return "feature vector too short"
	}
	return "feature vector too long"
}
