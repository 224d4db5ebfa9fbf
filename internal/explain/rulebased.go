package explain

import (
	"context"
	"fmt"
)

// Label policy thresholds shared with downstream reporting.
const (
	acquireLikelihoodMin = 0.7
	acquireSynergyMin    = 0.6
	investigateMin       = 0.4
)

// RuleBased derives the explanation directly from the computed metrics with
// no LLM call. It always succeeds, which makes it the degraded-mode and
// no-API-key path.
type RuleBased struct{}

func (RuleBased) Explain(_ context.Context, req Request) Result {
	likelihood := req.Score.BlendedLikelihood
	synergy := 0.5
	risk := 0.0
	if req.Features != nil {
		synergy = req.Features.NumOr("overall_synergy_score", 0.5)
		risk = req.Features.Num("combined_risk_score")
	}

	decision := DecisionPass
	switch {
	case likelihood >= acquireLikelihoodMin && synergy >= acquireSynergyMin:
		decision = DecisionAcquire
	case likelihood >= investigateMin:
		decision = DecisionInvestigate
	}

	confidence := (likelihood + synergy) / 2
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	exp := &Explanation{
		Decision:   decision,
		Confidence: confidence,
		Rationale: []string{
			fmt.Sprintf("Blended acquisition likelihood is %.2f.", likelihood),
			fmt.Sprintf("Overall synergy score is %.2f.", synergy),
			fmt.Sprintf("Combined risk score is %.2f.", risk),
		},
		KeyDrivers: []KeyDriver{
			{Name: "mna_likelihood", Value: likelihood, Impact: impactFor(likelihood, investigateMin, acquireLikelihoodMin)},
			{Name: "overall_synergy_score", Value: synergy, Impact: impactFor(synergy, 0.4, acquireSynergyMin)},
			{Name: "combined_risk_score", Value: risk, Impact: riskImpact(risk)},
		},
		SuggestedActions: actionsFor(decision),
	}
	return Result{Explanation: exp, Attempts: 1, Model: "rule-based"}
}

func impactFor(v, low, high float64) string {
	switch {
	case v >= high:
		return "positive"
	case v < low:
		return "negative"
	default:
		return "neutral"
	}
}

func riskImpact(risk float64) string {
	switch {
	case risk > 0.5:
		return "negative"
	case risk < 0.3:
		return "positive"
	default:
		return "neutral"
	}
}

func actionsFor(decision string) []string {
	switch decision {
	case DecisionAcquire:
		return []string{"Open due diligence and prepare a term sheet."}
	case DecisionInvestigate:
		return []string{"Request detailed financials.", "Schedule a management meeting."}
	default:
		return []string{"Revisit after the next funding round or material traction change."}
	}
}
