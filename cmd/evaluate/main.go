// Command evaluate runs a single acquisition evaluation from a JSON input
// file and prints the result, without starting the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/smartacquirer/smartacquirer/internal/explain"
	"github.com/smartacquirer/smartacquirer/internal/pipeline"
	"github.com/smartacquirer/smartacquirer/internal/predict"
	"github.com/smartacquirer/smartacquirer/internal/render"
)

func main() {
	inputFlag := flag.String("input", "", "path to a JSON evaluation request (required)")
	outFlag := flag.String("out", "", "write the full result envelope JSON to this file instead of stdout")
	reportFlag := flag.String("report", "", "write the memo markdown to this file")
	pdfFlag := flag.String("pdf", "", "render the memo to PDF at this path (requires a local Chromium)")
	ruleBasedFlag := flag.Bool("rule-based", false, "skip the LLM and use the rule-based explainer")
	flag.Parse()

	if *inputFlag == "" {
		flag.Usage()
		log.Fatal("missing required flag: -input")
	}

	blob, err := os.ReadFile(*inputFlag)
	if err != nil {
		log.Fatalf("failed to read input: %v", err)
	}
	var req pipeline.Request
	if err := json.Unmarshal(blob, &req); err != nil {
		log.Fatalf("invalid request json: %v", err)
	}

	var explainer explain.Explainer = explain.RuleBased{}
	if !*ruleBasedFlag {
		if caller, err := explain.NewAnthropicCallerFromEnv(); err != nil {
			log.Printf("smartacquirer explain_fallback reason=%q", err.Error())
		} else {
			explainer = explain.NewLLMExplainer(caller)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	p := pipeline.New(predict.BaselineLikelihoodModel{}, predict.BaselineValuationModel{}, explainer)
	env, err := p.Evaluate(ctx, req)
	if err != nil {
		log.Fatalf("evaluation failed: %v", err)
	}

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode result: %v", err)
	}
	if *outFlag == "" {
		os.Stdout.Write(out)
		os.Stdout.Write([]byte("\n"))
	} else if err := os.WriteFile(*outFlag, out, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *outFlag, err)
	}

	if *reportFlag != "" {
		if err := os.WriteFile(*reportFlag, []byte(env.ReportMarkdown), 0o644); err != nil {
			log.Fatalf("failed to write %s: %v", *reportFlag, err)
		}
		log.Printf("smartacquirer report_written path=%s", *reportFlag)
	}

	if *pdfFlag != "" {
		meta := render.Meta{
			Company:     env.CompanyName,
			Acquirer:    env.AcquirerName,
			CompletedAt: env.Metadata.CompletedAt,
		}
		if env.Explanation != nil {
			meta.Decision = env.Explanation.Decision
		}
		pdf, err := render.NewChromiumPDFRenderer().Render(ctx, env.ReportMarkdown, meta)
		if err != nil {
			log.Fatalf("failed to render pdf: %v", err)
		}
		if err := os.WriteFile(*pdfFlag, pdf, 0o644); err != nil {
			log.Fatalf("failed to write %s: %v", *pdfFlag, err)
		}
		log.Printf("smartacquirer pdf_written path=%s bytes=%d", *pdfFlag, len(pdf))
	}
}
