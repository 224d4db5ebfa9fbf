// Package predict defines the contracts for the two pre-trained models the
// pipeline consults: an acquisition-likelihood classifier and a forward
// valuation regressor. Both consume fixed-order numeric vectors and are
// treated as pure, fallible collaborators — a failing predictor is replaced
// by a neutral default, never surfaced as a request failure.
package predict

import (
	"context"
	"log"
	"sync"

	"github.com/smartacquirer/smartacquirer/internal/features"
)

// Neutral defaults substituted when a predictor fails.
const (
	FallbackLikelihood   = 0.5
	FallbackValuationUSD = 1_000_000.0
)

// LikelihoodFeatureOrder documents the 12-field input vector of the
// acquisition-likelihood model. Order is part of the model contract.
var LikelihoodFeatureOrder = []string{
	"num_rounds", "total_raised_usd", "avg_round_size",
	"team_strength_score", "founder_count", "avg_experience", "exits_count",
	"market_similarity", "tech_similarity", "revenue_synergy_score",
	"cost_synergy_score", "overall_synergy_score",
}

// ValuationFeatureOrder documents the 18-field input vector of the valuation
// model: the likelihood vector plus six financial fields.
var ValuationFeatureOrder = append(append([]string{}, LikelihoodFeatureOrder...),
	"revenue_ttm", "revenue_growth_mom", "gross_margin", "ebitda_margin",
	"revenue_multiple_proxy", "valuation_proxy_current",
)

type LikelihoodModel interface {
	// PredictLikelihood returns an acquisition probability in [0,1].
	PredictLikelihood(ctx context.Context, vec []float64) (float64, error)
}

type ValuationModel interface {
	// PredictValuation returns a forward valuation estimate in USD.
	PredictValuation(ctx context.Context, vec []float64) (float64, error)
}

// Vector assembles a feature vector in the given order; missing metrics read
// as 0.
func Vector(fs *features.FeatureSet, order []string) []float64 {
	vec := make([]float64, len(order))
	for i, key := range order {
		vec[i] = fs.Num(key)
	}
	return vec
}

// Outcome carries both model outputs plus flags recording whether either
// fell back to its neutral default.
type Outcome struct {
	Likelihood           float64 `json:"mna_likelihood"`
	ValuationForecastUSD float64 `json:"valuation_forecast_usd"`
	LikelihoodFallback   bool    `json:"likelihood_fallback,omitempty"`
	ValuationFallback    bool    `json:"valuation_fallback,omitempty"`
}

// Run invokes both models concurrently; the two calls are independent pure
// functions with no ordering dependency. Either failure is recovered with
// the fixed fallback constant and logged.
func Run(ctx context.Context, lm LikelihoodModel, vm ValuationModel, fs *features.FeatureSet) Outcome {
	out := Outcome{Likelihood: FallbackLikelihood, ValuationForecastUSD: FallbackValuationUSD}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if lm == nil {
			out.LikelihoodFallback = true
			return
		}
		v, err := lm.PredictLikelihood(ctx, Vector(fs, LikelihoodFeatureOrder))
		if err != nil {
			log.Printf("smartacquirer predictor_fallback model=likelihood err=%q", err.Error())
			out.LikelihoodFallback = true
			return
		}
		out.Likelihood = clamp01(v)
	}()
	go func() {
		defer wg.Done()
		if vm == nil {
			out.ValuationFallback = true
			return
		}
		v, err := vm.PredictValuation(ctx, Vector(fs, ValuationFeatureOrder))
		if err != nil {
			log.Printf("smartacquirer predictor_fallback model=valuation err=%q", err.Error())
			out.ValuationFallback = true
			return
		}
		out.ValuationForecastUSD = v
	}()
	wg.Wait()
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
