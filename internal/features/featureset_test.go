package features

import (
	"errors"
	"testing"
)

func TestFeatureSetConflictOnDifferentValue(t *testing.T) {
	fs := NewFeatureSet()
	if err := fs.SetNum("total_raised_usd", 100); err != nil {
		t.Fatalf("SetNum: %v", err)
	}
	err := fs.SetNum("total_raised_usd", 200)
	if err == nil {
		t.Fatal("expected conflict error")
	}
	var kc *KeyConflictError
	if !errors.As(err, &kc) || kc.Key != "total_raised_usd" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFeatureSetIdenticalValuePassThrough(t *testing.T) {
	fs := NewFeatureSet()
	if err := fs.SetNum("gross_margin", 0.7); err != nil {
		t.Fatalf("SetNum: %v", err)
	}
	if err := fs.SetNum("gross_margin", 0.7); err != nil {
		t.Fatalf("identical re-write should be tolerated: %v", err)
	}
	if fs.Num("gross_margin") != 0.7 {
		t.Fatalf("unexpected value %f", fs.Num("gross_margin"))
	}
}

func TestFeatureSetDefaults(t *testing.T) {
	fs := NewFeatureSet()
	if fs.Num("missing") != 0 {
		t.Fatal("missing key should read as 0")
	}
	if fs.NumOr("missing", 0.5) != 0.5 {
		t.Fatal("NumOr should fall back to default")
	}
	if fs.Has("missing") {
		t.Fatal("Has should be false for missing key")
	}
}

func TestFeatureSetMergePropagatesConflict(t *testing.T) {
	a := NewFeatureSet()
	b := NewFeatureSet()
	_ = a.SetNum("founder_count", 2)
	_ = b.SetNum("founder_count", 3)
	if err := a.Merge(b); err == nil {
		t.Fatal("expected merge conflict")
	}
}

func TestExtractorOutputsMergeCleanly(t *testing.T) {
	funding := Funding{Rounds: []FundingRound{{Type: "Seed", Amount: 1000000}, {Type: "Series A", Amount: 5000000}}}
	team := Team{Founders: []Founder{{ExperienceYears: 5, HasExit: true}, {ExperienceYears: 3}}}
	monthly := 10000.0
	financials := Financials{MonthlyRevenueUSD: &monthly, RevenueGrowthMoM: 5, GrossMargin: 0.7}
	acquirer := Company{Industry: "software", Market: "b2b", TechStack: []string{"go"}, TeamSize: 200}
	target := Company{Industry: "software", Market: "b2b", TechStack: []string{"go", "python"}, TeamSize: 20}

	fs := NewFeatureSet()
	steps := []interface{ Apply(*FeatureSet) error }{
		ExtractFunding(funding),
		ExtractTeam(team),
		ExtractSynergy(acquirer, target),
		ExtractValuation(financials),
		ExtractBusinessModel(funding, team, financials),
	}
	for _, s := range steps {
		if err := s.Apply(fs); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	if got := fs.Num("total_raised_usd"); got != 6000000 {
		t.Fatalf("total_raised_usd=%f", got)
	}
	if got := fs.Label("last_round_type"); got != "Series A" {
		t.Fatalf("last_round_type=%q", got)
	}
}
