package features

import (
	"math"
	"testing"
)

func TestExtractTeamAverages(t *testing.T) {
	got := ExtractTeam(Team{Founders: []Founder{
		{ExperienceYears: 5, HasExit: true},
		{ExperienceYears: 3},
	}})
	if got.FounderCount != 2 {
		t.Fatalf("FounderCount=%d", got.FounderCount)
	}
	if got.AvgExperience != 4 {
		t.Fatalf("AvgExperience=%f", got.AvgExperience)
	}
	if got.ExitsCount != 1 {
		t.Fatalf("ExitsCount=%d", got.ExitsCount)
	}
}

func TestExtractTeamEmpty(t *testing.T) {
	got := ExtractTeam(Team{})
	if got.AvgExperience != 0 || got.TeamStrengthScore != 0 || got.TeamCompositionScore != 0 {
		t.Fatalf("unexpected output: %+v", got)
	}
}

func TestExperienceLevels(t *testing.T) {
	cases := []struct {
		years float64
		want  string
	}{
		{0, levelJunior},
		{2.9, levelJunior},
		{3, levelMidLevel},
		{6.9, levelMidLevel},
		{7, levelSenior},
		{14.9, levelSenior},
		{15, levelExecutive},
		{30, levelExecutive},
	}
	for _, tc := range cases {
		if got := experienceLevel(tc.years); got != tc.want {
			t.Fatalf("experienceLevel(%f)=%q want=%q", tc.years, got, tc.want)
		}
	}
}

func TestTeamStrengthComposition(t *testing.T) {
	// Two founders (0.4), avg 10y (5.0), one exit (1.0), 2 distinct levels
	// (0.6), one senior (0.4), no team size factor.
	got := ExtractTeam(Team{Founders: []Founder{
		{ExperienceYears: 14, HasExit: true}, // Senior
		{ExperienceYears: 6},                 // Mid-level
	}})
	want := 2*0.2 + 10*0.5 + 1*1.0 + 2*0.3 + 1*0.4
	if math.Abs(got.TeamStrengthScore-want) > 1e-9 {
		t.Fatalf("TeamStrengthScore=%f want=%f", got.TeamStrengthScore, want)
	}
}

func TestTeamSizeFactorCapped(t *testing.T) {
	small := ExtractTeam(Team{Founders: []Founder{{ExperienceYears: 5}}, EstimatedTeamSize: 50})
	huge := ExtractTeam(Team{Founders: []Founder{{ExperienceYears: 5}}, EstimatedTeamSize: 100000})
	if huge.TeamStrengthScore-small.TeamStrengthScore > 2.0 {
		t.Fatalf("team size factor not capped: small=%f huge=%f", small.TeamStrengthScore, huge.TeamStrengthScore)
	}
}

func TestCompositionScoreBounds(t *testing.T) {
	got := ExtractTeam(Team{
		Founders:          []Founder{{ExperienceYears: 1}, {ExperienceYears: 5}, {ExperienceYears: 10}},
		EstimatedTeamSize: 10,
	})
	if got.TeamCompositionScore < 0 || got.TeamCompositionScore > 10 {
		t.Fatalf("TeamCompositionScore=%f out of range", got.TeamCompositionScore)
	}
}
