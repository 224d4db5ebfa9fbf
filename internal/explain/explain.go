// Package explain produces the human-readable decision explanation. The LLM
// path runs a strict generate-validate loop with exactly one retry; when both
// attempts fail the evaluation still completes with a null explanation and a
// recorded reason. A deterministic rule-based explainer covers deployments
// without an API key.
package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/smartacquirer/smartacquirer/internal/decision"
	"github.com/smartacquirer/smartacquirer/internal/features"
)

// Decision labels the explainer may emit.
const (
	DecisionAcquire     = "ACQUIRE"
	DecisionInvestigate = "INVESTIGATE"
	DecisionPass        = "PASS"
)

const (
	maxRationaleItems   = 5
	minSuggestedActions = 1
	maxSuggestedActions = 3
)

const retryFeedback = "Return ONLY valid JSON following the schema."

type KeyDriver struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Impact string  `json:"impact"`
}

type Explanation struct {
	Decision         string      `json:"decision"`
	Confidence       float64     `json:"confidence"`
	Rationale        []string    `json:"rationale"`
	KeyDrivers       []KeyDriver `json:"key_drivers"`
	SuggestedActions []string    `json:"suggested_actions"`
}

// Request carries everything the explainer is allowed to reference.
type Request struct {
	Company  string
	Acquirer string
	Features *features.FeatureSet
	Score    decision.Score
}

// Result is always populated: either Explanation is non-nil, or
// FailureReason says why both attempts were rejected.
type Result struct {
	Explanation   *Explanation `json:"explanation"`
	FailureReason string       `json:"explanation_error,omitempty"`
	Attempts      int          `json:"attempts"`
	Model         string       `json:"model,omitempty"`
}

type Explainer interface {
	Explain(ctx context.Context, req Request) Result
}

type LLMExplainer struct {
	caller LLMCaller
}

func NewLLMExplainer(caller LLMCaller) *LLMExplainer {
	return &LLMExplainer{caller: caller}
}

// Explain runs the generate-validate loop: build prompt, call, parse,
// validate. The first rejection triggers exactly one retry with corrective
// feedback appended; the second rejection degrades to a null explanation
// rather than failing the evaluation.
func (e *LLMExplainer) Explain(ctx context.Context, req Request) Result {
	res := Result{Model: e.caller.ModelName()}
	prompt := buildPrompt(req)

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		res.Attempts = attempt
		fullPrompt := prompt
		if attempt > 1 {
			fullPrompt += "\n\n" + retryFeedback
		}

		start := time.Now()
		raw, err := e.caller.GenerateJSON(ctx, fullPrompt)
		if err != nil {
			class := classifyTransportError(err)
			log.Printf("smartacquirer explain_transport_error attempt=%d class=%d elapsed_ms=%d err=%q", attempt, class, time.Since(start).Milliseconds(), err.Error())
			lastErr = fmt.Errorf("llm transport failure: %w", err)
			if class == failureClient {
				break
			}
			continue
		}

		exp, err := parseAndValidate(raw)
		if err != nil {
			log.Printf("smartacquirer explain_rejected attempt=%d elapsed_ms=%d err=%q", attempt, time.Since(start).Milliseconds(), err.Error())
			lastErr = err
			continue
		}
		log.Printf("smartacquirer explain_accepted attempt=%d elapsed_ms=%d decision=%s", attempt, time.Since(start).Milliseconds(), exp.Decision)
		res.Explanation = exp
		return res
	}

	res.FailureReason = lastErr.Error()
	return res
}

func parseAndValidate(raw string) (*Explanation, error) {
	clean := stripCodeFences(raw)
	if clean == "" {
		return nil, fmt.Errorf("empty response")
	}
	var exp Explanation
	if err := json.Unmarshal([]byte(clean), &exp); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if err := Validate(&exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

// Validate enforces the response schema contract: decision enum, confidence
// bounds, at most 5 rationale items, 1 to 3 suggested actions. An empty
// rationale is tolerated and key driver entries are passed through as-is.
func Validate(exp *Explanation) error {
	switch exp.Decision {
	case DecisionAcquire, DecisionInvestigate, DecisionPass:
	default:
		return fmt.Errorf("decision %q not one of ACQUIRE, INVESTIGATE, PASS", exp.Decision)
	}
	if exp.Confidence < 0 || exp.Confidence > 1 {
		return fmt.Errorf("confidence %f outside [0,1]", exp.Confidence)
	}
	if len(exp.Rationale) > maxRationaleItems {
		return fmt.Errorf("rationale must have at most %d items, got %d", maxRationaleItems, len(exp.Rationale))
	}
	if len(exp.SuggestedActions) < minSuggestedActions || len(exp.SuggestedActions) > maxSuggestedActions {
		return fmt.Errorf("suggested_actions must have %d to %d items, got %d", minSuggestedActions, maxSuggestedActions, len(exp.SuggestedActions))
	}
	return nil
}

func buildPrompt(req Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Evaluate %s as an acquisition target", req.Company)
	if req.Acquirer != "" {
		fmt.Fprintf(&sb, " for %s", req.Acquirer)
	}
	sb.WriteString(".\n\nFACT SHEET (all numbers are authoritative, do not recompute):\n")

	s := req.Score
	fmt.Fprintf(&sb, "- acquisition_score: %.4f\n", s.AcquisitionScore)
	fmt.Fprintf(&sb, "- mna_likelihood: %.4f\n", s.BlendedLikelihood)
	fmt.Fprintf(&sb, "- valuation_agreement_score: %.4f\n", s.ValuationAgreement)
	fmt.Fprintf(&sb, "- benchmark_composite_score: %.4f\n", s.BenchmarkComposite)
	fmt.Fprintf(&sb, "- confidence_multiplier: %.4f\n", s.ConfidenceMultiplier)
	fmt.Fprintf(&sb, "- risk_penalty: %.4f\n", s.RiskPenalty)

	if req.Features != nil {
		for _, key := range req.Features.Keys() {
			fmt.Fprintf(&sb, "- %s: %.4f\n", key, req.Features.Num(key))
		}
		labels := req.Features.Labels()
		labelKeys := make([]string, 0, len(labels))
		for k := range labels {
			labelKeys = append(labelKeys, k)
		}
		sort.Strings(labelKeys)
		for _, k := range labelKeys {
			fmt.Fprintf(&sb, "- %s: %s\n", k, labels[k])
		}
	}

	sb.WriteString(`
Respond with a single JSON object using exactly this schema:
{
  "decision": "ACQUIRE" | "INVESTIGATE" | "PASS",
  "confidence": <number 0..1>,
  "rationale": [<1 to 5 short strings>],
  "key_drivers": [{"name": <feature name>, "value": <number>, "impact": "positive" | "negative" | "neutral"}],
  "suggested_actions": [<1 to 3 short strings>]
}
No prose outside the JSON object.`)
	return sb.String()
}
