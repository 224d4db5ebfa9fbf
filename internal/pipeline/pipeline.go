// Package pipeline orchestrates a full acquisition evaluation: feature
// extraction, benchmark gaps, risk composition, external predictors, decision
// scoring, and explanation generation. Data flows strictly forward; every
// entity is created within a single Evaluate call.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/smartacquirer/smartacquirer/internal/benchmark"
	"github.com/smartacquirer/smartacquirer/internal/decision"
	"github.com/smartacquirer/smartacquirer/internal/explain"
	"github.com/smartacquirer/smartacquirer/internal/features"
	"github.com/smartacquirer/smartacquirer/internal/predict"
	"github.com/smartacquirer/smartacquirer/internal/risk"
)

// USDToINRRate is the fixed conversion rate applied to reported valuations.
const USDToINRRate = 83.0

func ConvertToINR(usd float64) float64 { return usd * USDToINRRate }

// Request carries the five raw input documents plus optional display names.
type Request struct {
	CompanyName  string              `json:"company_name,omitempty"`
	AcquirerName string              `json:"acquirer_name,omitempty"`
	Funding      features.Funding    `json:"funding_json"`
	Team         features.Team       `json:"team_json"`
	Acquirer     features.Company    `json:"acquirer_json"`
	Target       features.Company    `json:"target_json"`
	Financials   features.Financials `json:"financials_json"`
}

// Metadata records how the evaluation ran, mirroring the degraded-mode
// contract: predictor fallbacks and a failed explanation degrade the response
// but never fail it.
type Metadata struct {
	StartedAt           time.Time `json:"started_at"`
	CompletedAt         time.Time `json:"completed_at"`
	DurationMS          int64     `json:"duration_ms"`
	Degraded            bool      `json:"degraded"`
	DegradedReason      *string   `json:"degraded_reason,omitempty"`
	LikelihoodFallback  bool      `json:"likelihood_fallback"`
	ValuationFallback   bool      `json:"valuation_fallback"`
	ExplanationAttempts int       `json:"explanation_attempts"`
	ExplanationModel    string    `json:"explanation_model,omitempty"`
}

// BusinessModelInsights is static reviewer guidance attached to every
// evaluation for the memo's business-model section.
type BusinessModelInsights struct {
	Insights    string   `json:"insights"`
	KeyPatterns []string `json:"key_patterns"`
}

func defaultInsights() BusinessModelInsights {
	return BusinessModelInsights{
		Insights: "Business model evaluation insights from VC practices",
		KeyPatterns: []string{
			"Scalability through innovative approaches addressing market pain points",
			"Sustainable revenue models with subscription-based services",
			"Strong competitive advantages through patented technology",
			"Clear paths to profitability with diversified revenue streams",
		},
	}
}

// ResponseEnvelope is the full evaluation payload: headline numbers, every
// intermediate feature set, the decision breakdown, and the explanation or
// its failure sentinel.
type ResponseEnvelope struct {
	EvaluationID            string                         `json:"evaluation_id,omitempty"`
	CompanyName             string                         `json:"company_name,omitempty"`
	AcquirerName            string                         `json:"acquirer_name,omitempty"`
	MnaLikelihood           float64                        `json:"mna_likelihood"`
	ValuationForecastUSD    float64                        `json:"valuation_forecast_usd"`
	ValuationForecastINR    float64                        `json:"valuation_forecast_inr"`
	Funding                 features.FundingFeatures       `json:"funding_json"`
	Financials              features.ValuationFeatures     `json:"financials_json"`
	SynergyDetails          features.SynergyFeatures       `json:"synergy_details"`
	BusinessModelEvaluation features.BusinessModelFeatures `json:"business_model_evaluation"`
	BusinessModelInsights   BusinessModelInsights          `json:"business_model_insights"`
	Risk                    risk.Profile                   `json:"risk"`
	Benchmarks              benchmark.Gaps                 `json:"benchmarks"`
	DecisionScore           decision.Score                 `json:"decision_score"`
	Explanation             *explain.Explanation           `json:"explanation"`
	ExplanationError        string                         `json:"explanation_error,omitempty"`
	TeamDetails             features.TeamFeatures          `json:"team_details"`
	Features                map[string]float64             `json:"features"`
	ReportMarkdown          string                         `json:"report_markdown"`
	Metadata                Metadata                       `json:"metadata"`
}

type Pipeline struct {
	likelihood predict.LikelihoodModel
	valuation  predict.ValuationModel
	explainer  explain.Explainer
	tracer     trace.Tracer
}

// New wires the pipeline's collaborators. A nil explainer falls back to the
// deterministic rule-based one so evaluation always completes.
func New(lm predict.LikelihoodModel, vm predict.ValuationModel, ex explain.Explainer) *Pipeline {
	if ex == nil {
		ex = explain.RuleBased{}
	}
	return &Pipeline{
		likelihood: lm,
		valuation:  vm,
		explainer:  ex,
		tracer:     otel.Tracer("smartacquirer/pipeline"),
	}
}

func (p *Pipeline) Evaluate(ctx context.Context, req Request) (*ResponseEnvelope, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.evaluate",
		trace.WithAttributes(attribute.String("company", req.CompanyName)))
	defer span.End()

	started := time.Now()
	env := &ResponseEnvelope{
		CompanyName:           req.CompanyName,
		AcquirerName:          req.AcquirerName,
		BusinessModelInsights: defaultInsights(),
		Metadata:              Metadata{StartedAt: started},
	}

	// Stage 1: extractors, merged under the conflict-detecting policy.
	env.Funding = features.ExtractFunding(req.Funding)
	env.TeamDetails = features.ExtractTeam(req.Team)
	env.SynergyDetails = features.ExtractSynergy(req.Acquirer, req.Target)
	env.Financials = features.ExtractValuation(req.Financials)
	env.BusinessModelEvaluation = features.ExtractBusinessModel(req.Funding, req.Team, req.Financials)

	fs := features.NewFeatureSet()
	appliers := []struct {
		stage string
		apply func(*features.FeatureSet) error
	}{
		{"funding", env.Funding.Apply},
		{"team", env.TeamDetails.Apply},
		{"synergy", env.SynergyDetails.Apply},
		{"valuation", env.Financials.Apply},
		{"business_model", env.BusinessModelEvaluation.Apply},
	}
	for _, a := range appliers {
		if err := a.apply(fs); err != nil {
			return nil, fmt.Errorf("merge %s features: %w", a.stage, err)
		}
	}

	// Stage 2: benchmark gaps.
	env.Benchmarks = benchmark.Compute(fs)
	if err := env.Benchmarks.Apply(fs); err != nil {
		return nil, fmt.Errorf("merge benchmark gaps: %w", err)
	}

	// Stage 3: risk profile. Runs before the predictors merge their outputs,
	// so valuation risk sees no forecast on this pass.
	env.Risk = risk.Compute(fs)
	if err := env.Risk.Apply(fs); err != nil {
		return nil, fmt.Errorf("merge risk profile: %w", err)
	}

	// Stage 4: external predictors, concurrently, with neutral fallbacks.
	predictCtx, predictSpan := p.tracer.Start(ctx, "pipeline.predict")
	outcome := predict.Run(predictCtx, p.likelihood, p.valuation, fs)
	predictSpan.End()
	env.MnaLikelihood = outcome.Likelihood
	env.ValuationForecastUSD = outcome.ValuationForecastUSD
	env.ValuationForecastINR = ConvertToINR(outcome.ValuationForecastUSD)
	env.Metadata.LikelihoodFallback = outcome.LikelihoodFallback
	env.Metadata.ValuationFallback = outcome.ValuationFallback
	if err := fs.SetNum("mna_likelihood", outcome.Likelihood); err != nil {
		return nil, fmt.Errorf("merge predictor outputs: %w", err)
	}
	if err := fs.SetNum("valuation_forecast_usd", outcome.ValuationForecastUSD); err != nil {
		return nil, fmt.Errorf("merge predictor outputs: %w", err)
	}

	// Stage 5: decision composition.
	env.DecisionScore = decision.Compute(fs)
	span.SetAttributes(attribute.Float64("acquisition_score", env.DecisionScore.AcquisitionScore))

	// Stage 6: explanation with validate-and-retry.
	explainCtx, explainSpan := p.tracer.Start(ctx, "pipeline.explain")
	res := p.explainer.Explain(explainCtx, explain.Request{
		Company:  req.CompanyName,
		Acquirer: req.AcquirerName,
		Features: fs,
		Score:    env.DecisionScore,
	})
	explainSpan.End()
	env.Explanation = res.Explanation
	env.ExplanationError = res.FailureReason
	env.Metadata.ExplanationAttempts = res.Attempts
	env.Metadata.ExplanationModel = res.Model

	finalizeMetadata(env)
	env.Features = fs.Snapshot()
	env.ReportMarkdown = BuildReportMarkdown(env)

	log.Printf("smartacquirer evaluate_done company=%q score=%.4f likelihood=%.4f risk=%.4f degraded=%t elapsed_ms=%d",
		req.CompanyName, env.DecisionScore.AcquisitionScore, env.MnaLikelihood,
		env.Risk.CombinedRiskScore, env.Metadata.Degraded, env.Metadata.DurationMS)
	return env, nil
}

func finalizeMetadata(env *ResponseEnvelope) {
	m := &env.Metadata
	switch {
	case env.Explanation == nil:
		reason := "Explanation generation failed after retry. Response completed without explanation."
		m.Degraded = true
		m.DegradedReason = &reason
	case m.LikelihoodFallback || m.ValuationFallback:
		reason := "One or more external predictors failed. Neutral defaults substituted."
		m.Degraded = true
		m.DegradedReason = &reason
	}
	m.CompletedAt = time.Now()
	m.DurationMS = m.CompletedAt.Sub(m.StartedAt).Milliseconds()
}
