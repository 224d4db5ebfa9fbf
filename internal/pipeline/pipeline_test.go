package pipeline

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/smartacquirer/smartacquirer/internal/explain"
	"github.com/smartacquirer/smartacquirer/internal/features"
	"github.com/smartacquirer/smartacquirer/internal/predict"
)

type fixedLikelihood struct {
	v   float64
	err error
}

func (m fixedLikelihood) PredictLikelihood(context.Context, []float64) (float64, error) {
	return m.v, m.err
}

type fixedValuation struct {
	v   float64
	err error
}

func (m fixedValuation) PredictValuation(context.Context, []float64) (float64, error) {
	return m.v, m.err
}

type failingExplainer struct{}

func (failingExplainer) Explain(context.Context, explain.Request) explain.Result {
	return explain.Result{FailureReason: "invalid json: unexpected token", Attempts: 2}
}

func monthly(v float64) *float64 { return &v }

func sampleRequest() Request {
	return Request{
		CompanyName:  "TargetCo",
		AcquirerName: "AcquirerCo",
		Funding: features.Funding{Rounds: []features.FundingRound{
			{Type: "Seed", Amount: 1_000_000},
			{Type: "Series A", Amount: 1_500_000},
		}},
		Team: features.Team{
			Founders: []features.Founder{
				{ExperienceYears: 5, HasExit: true},
				{ExperienceYears: 3},
			},
			EstimatedTeamSize: 25,
		},
		Acquirer: features.Company{Industry: "analytics", Market: "b2b saas", TechStack: []string{"go", "postgres"}, TeamSize: 200},
		Target:   features.Company{Industry: "analytics", Market: "b2b saas", TechStack: []string{"go", "python"}, TeamSize: 20},
		Financials: features.Financials{
			MonthlyRevenueUSD: monthly(10_000),
			RevenueGrowthMoM:  5,
			GrossMargin:       0.7,
			EBITDAMargin:      0.1,
		},
	}
}

func TestEvaluateHappyPath(t *testing.T) {
	p := New(fixedLikelihood{v: 0.8}, fixedValuation{v: 3_000_000}, explain.RuleBased{})
	env, err := p.Evaluate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if env.MnaLikelihood != 0.8 || env.ValuationForecastUSD != 3_000_000 {
		t.Fatalf("predictor outputs not propagated: %+v", env)
	}
	if env.ValuationForecastINR != 3_000_000*USDToINRRate {
		t.Fatalf("INR conversion wrong: %f", env.ValuationForecastINR)
	}
	if env.Explanation == nil {
		t.Fatal("rule-based explainer should always produce an explanation")
	}
	if env.Metadata.Degraded {
		t.Fatalf("unexpected degraded run: %+v", env.Metadata)
	}
	if env.DecisionScore.AcquisitionScore <= 0 || env.DecisionScore.AcquisitionScore > 1 {
		t.Fatalf("AcquisitionScore=%f", env.DecisionScore.AcquisitionScore)
	}
	if env.Features["mna_likelihood"] != 0.8 {
		t.Fatal("merged feature snapshot missing predictor output")
	}
	if env.Funding.NumRounds != 2 || env.TeamDetails.FounderCount != 2 {
		t.Fatalf("extractor outputs not in envelope: %+v %+v", env.Funding, env.TeamDetails)
	}
	if env.ReportMarkdown == "" {
		t.Fatal("missing report")
	}
}

func TestEvaluatePredictorFailureFallsBackAndDegrades(t *testing.T) {
	p := New(fixedLikelihood{err: errors.New("model offline")}, fixedValuation{err: errors.New("model offline")}, explain.RuleBased{})
	env, err := p.Evaluate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if env.MnaLikelihood != predict.FallbackLikelihood {
		t.Fatalf("MnaLikelihood=%f", env.MnaLikelihood)
	}
	if env.ValuationForecastUSD != predict.FallbackValuationUSD {
		t.Fatalf("ValuationForecastUSD=%f", env.ValuationForecastUSD)
	}
	if !env.Metadata.Degraded || !env.Metadata.LikelihoodFallback || !env.Metadata.ValuationFallback {
		t.Fatalf("degraded flags not set: %+v", env.Metadata)
	}
}

func TestEvaluateExplanationFailureIsNonFatal(t *testing.T) {
	p := New(fixedLikelihood{v: 0.6}, fixedValuation{v: 1_000_000}, failingExplainer{})
	env, err := p.Evaluate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if env.Explanation != nil {
		t.Fatal("expected null explanation sentinel")
	}
	if env.ExplanationError == "" || !env.Metadata.Degraded {
		t.Fatalf("failure not recorded: %+v", env.Metadata)
	}
	if env.DecisionScore.AcquisitionScore <= 0 {
		t.Fatal("scoring must complete even without explanation")
	}
}

func TestValuationRiskComputedBeforeForecastMerge(t *testing.T) {
	// The risk stage runs before predictor outputs merge, so valuation risk
	// reflects only the multiple term regardless of the forecast magnitude.
	p := New(fixedLikelihood{v: 0.5}, fixedValuation{v: 1e12}, explain.RuleBased{})
	env, err := p.Evaluate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := 0.5 * math.Min(env.Financials.RevenueMultipleProxy/15.0, 1.0)
	if math.Abs(env.Risk.ValuationRisk-want) > 1e-9 {
		t.Fatalf("ValuationRisk=%f want %f (forecast must not contribute)", env.Risk.ValuationRisk, want)
	}
}

func TestConvertToINR(t *testing.T) {
	if got := ConvertToINR(1_000_000); got != 83_000_000 {
		t.Fatalf("ConvertToINR=%f", got)
	}
}

func TestReportMarkdownSections(t *testing.T) {
	p := New(fixedLikelihood{v: 0.8}, fixedValuation{v: 3_000_000}, explain.RuleBased{})
	env, err := p.Evaluate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	for _, heading := range []string{
		"# Acquisition Evaluation Memo",
		"## Executive Summary",
		"## Score Breakdown",
		"## Strategic Fit",
		"## Risk Profile",
		"## Benchmark Gaps",
		"## Team",
		"## Business Model",
		"## Run Metadata",
	} {
		if !strings.Contains(env.ReportMarkdown, heading) {
			t.Fatalf("report missing %q", heading)
		}
	}
	if !strings.Contains(env.ReportMarkdown, "TargetCo") || !strings.Contains(env.ReportMarkdown, "AcquirerCo") {
		t.Fatal("report missing party names")
	}
}

func TestReportDegradedRecommendation(t *testing.T) {
	p := New(fixedLikelihood{v: 0.6}, fixedValuation{v: 1_000_000}, failingExplainer{})
	env, err := p.Evaluate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !strings.Contains(env.ReportMarkdown, "Recommendation unavailable") {
		t.Fatal("degraded report missing failure notice")
	}
}
