package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/smartacquirer/smartacquirer/internal/explain"
	"github.com/smartacquirer/smartacquirer/internal/httpapi"
	"github.com/smartacquirer/smartacquirer/internal/pipeline"
	"github.com/smartacquirer/smartacquirer/internal/predict"
	"github.com/smartacquirer/smartacquirer/internal/render"
	"github.com/smartacquirer/smartacquirer/internal/store"
	"github.com/smartacquirer/smartacquirer/internal/telemetry"
)

func main() {
	addrFlag := flag.String("addr", "", "listen address (overrides PORT env var)")
	dbFlag := flag.String("db", "", "path to SQLite database file (overrides SMARTACQUIRER_DB env var)")
	companiesCSV := flag.String("companies-csv", "", "seed the reference directory from a companies CSV")
	acquisitionsCSV := flag.String("acquisitions-csv", "", "seed the reference directory from an acquisitions CSV")
	flag.Parse()

	addr := *addrFlag
	if addr == "" {
		addr = ":8080"
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		}
	}

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, "smartacquirer")
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	// Resolve DB path: --db flag > SMARTACQUIRER_DB env > default file.
	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = os.Getenv("SMARTACQUIRER_DB")
	}
	if dbPath == "" {
		dbPath = "./data/smartacquirer.db"
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open store (%s): %v", dbPath, err)
	}
	defer st.Close()
	log.Printf("smartacquirer store_ready db=%s", dbPath)

	if *companiesCSV != "" {
		n, err := st.SeedCompaniesCSV(ctx, *companiesCSV)
		if err != nil {
			log.Fatalf("failed to seed companies from %s: %v", *companiesCSV, err)
		}
		log.Printf("smartacquirer seeded_companies count=%d", n)
	}
	if *acquisitionsCSV != "" {
		n, err := st.SeedAcquisitionsCSV(ctx, *acquisitionsCSV)
		if err != nil {
			log.Fatalf("failed to seed acquisitions from %s: %v", *acquisitionsCSV, err)
		}
		log.Printf("smartacquirer seeded_acquisitions count=%d", n)
	}

	var explainer explain.Explainer
	if caller, err := explain.NewAnthropicCallerFromEnv(); err != nil {
		log.Printf("smartacquirer explain_fallback reason=%q", err.Error())
		explainer = explain.RuleBased{}
	} else {
		explainer = explain.NewLLMExplainer(caller)
		log.Printf("smartacquirer explain_ready model=%s", caller.ModelName())
	}

	p := pipeline.New(predict.BaselineLikelihoodModel{}, predict.BaselineValuationModel{}, explainer)
	h := httpapi.NewServer(p, st, render.NewChromiumPDFRenderer())

	log.Printf("smartacquirer listening on %s", addr)
	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal(err)
	}
}
