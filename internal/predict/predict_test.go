package predict

import (
	"context"
	"errors"
	"testing"

	"github.com/smartacquirer/smartacquirer/internal/features"
)

type stubLikelihood struct {
	v   float64
	err error
}

func (s stubLikelihood) PredictLikelihood(context.Context, []float64) (float64, error) {
	return s.v, s.err
}

type stubValuation struct {
	v   float64
	err error
}

func (s stubValuation) PredictValuation(context.Context, []float64) (float64, error) {
	return s.v, s.err
}

func TestVectorOrderAndDefaults(t *testing.T) {
	fs := features.NewFeatureSet()
	_ = fs.SetNum("num_rounds", 2)
	_ = fs.SetNum("overall_synergy_score", 0.9)
	vec := Vector(fs, LikelihoodFeatureOrder)
	if len(vec) != 12 {
		t.Fatalf("len=%d", len(vec))
	}
	if vec[0] != 2 {
		t.Fatalf("vec[0]=%f want num_rounds", vec[0])
	}
	if vec[11] != 0.9 {
		t.Fatalf("vec[11]=%f want overall_synergy_score", vec[11])
	}
	if vec[1] != 0 {
		t.Fatalf("missing metric should default to 0, got %f", vec[1])
	}
}

func TestValuationOrderExtendsLikelihoodOrder(t *testing.T) {
	if len(ValuationFeatureOrder) != 18 {
		t.Fatalf("len=%d", len(ValuationFeatureOrder))
	}
	for i, key := range LikelihoodFeatureOrder {
		if ValuationFeatureOrder[i] != key {
			t.Fatalf("order diverges at %d: %s vs %s", i, ValuationFeatureOrder[i], key)
		}
	}
	if ValuationFeatureOrder[17] != "valuation_proxy_current" {
		t.Fatalf("last field=%s", ValuationFeatureOrder[17])
	}
}

func TestRunHappyPath(t *testing.T) {
	out := Run(context.Background(), stubLikelihood{v: 0.8}, stubValuation{v: 3_000_000}, features.NewFeatureSet())
	if out.Likelihood != 0.8 || out.ValuationForecastUSD != 3_000_000 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.LikelihoodFallback || out.ValuationFallback {
		t.Fatal("no fallback expected")
	}
}

func TestRunPredictorFailureFallsBack(t *testing.T) {
	out := Run(context.Background(), stubLikelihood{err: errors.New("boom")}, stubValuation{err: errors.New("boom")}, features.NewFeatureSet())
	if out.Likelihood != FallbackLikelihood {
		t.Fatalf("Likelihood=%f", out.Likelihood)
	}
	if out.ValuationForecastUSD != FallbackValuationUSD {
		t.Fatalf("ValuationForecastUSD=%f", out.ValuationForecastUSD)
	}
	if !out.LikelihoodFallback || !out.ValuationFallback {
		t.Fatal("fallback flags not set")
	}
}

func TestRunClampsLikelihood(t *testing.T) {
	out := Run(context.Background(), stubLikelihood{v: 7}, stubValuation{v: 1}, features.NewFeatureSet())
	if out.Likelihood != 1 {
		t.Fatalf("Likelihood=%f want clamp to 1", out.Likelihood)
	}
}

func TestBaselineLikelihoodBounds(t *testing.T) {
	m := BaselineLikelihoodModel{}
	low, err := m.PredictLikelihood(context.Background(), make([]float64, 12))
	if err != nil {
		t.Fatalf("PredictLikelihood: %v", err)
	}
	strong := make([]float64, 12)
	strong[0], strong[1], strong[3], strong[6], strong[11] = 5, 10_000_000, 9, 2, 0.95
	high, err := m.PredictLikelihood(context.Background(), strong)
	if err != nil {
		t.Fatalf("PredictLikelihood: %v", err)
	}
	if low < 0 || low > 1 || high < 0 || high > 1 {
		t.Fatalf("out of range: low=%f high=%f", low, high)
	}
	if high <= low {
		t.Fatalf("strong signals should raise likelihood: low=%f high=%f", low, high)
	}
}

func TestBaselineVectorSizeChecked(t *testing.T) {
	if _, err := (BaselineLikelihoodModel{}).PredictLikelihood(context.Background(), make([]float64, 3)); err == nil {
		t.Fatal("expected size error")
	}
	var vs *VectorSizeError
	_, err := (BaselineValuationModel{}).PredictValuation(context.Background(), make([]float64, 3))
	if !errors.As(err, &vs) {
		t.Fatalf("expected VectorSizeError, got %v", err)
	}
}

func TestBaselineValuationFallsBackToProxy(t *testing.T) {
	vec := make([]float64, 18)
	vec[12] = 1_200_000 // revenue_ttm
	vec[16] = 5         // revenue_multiple_proxy
	got, err := (BaselineValuationModel{}).PredictValuation(context.Background(), vec)
	if err != nil {
		t.Fatalf("PredictValuation: %v", err)
	}
	if got < 1_200_000 {
		t.Fatalf("estimate=%f unexpectedly below trailing revenue", got)
	}
}
