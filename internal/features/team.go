package features

import "math"

// Experience-level buckets used for team composition analysis.
const (
	levelJunior    = "Junior"
	levelMidLevel  = "Mid-level"
	levelSenior    = "Senior"
	levelExecutive = "Executive"
)

// Ideal share of each experience level for a startup-sized team; the
// composition score measures distance from this distribution.
var idealDistribution = map[string]float64{
	levelJunior:    0.40,
	levelMidLevel:  0.35,
	levelSenior:    0.20,
	levelExecutive: 0.05,
}

type FounderDetail struct {
	Experience      float64 `json:"experience"`
	ExperienceLevel string  `json:"experience_level"`
	HasExit         bool    `json:"has_exit"`
	Role            string  `json:"role"`
	Education       string  `json:"education"`
}

type ExperienceDistribution struct {
	Junior    int `json:"junior"`
	MidLevel  int `json:"mid_level"`
	Senior    int `json:"senior"`
	Executive int `json:"executive"`
}

type TeamFeatures struct {
	TeamStrengthScore      float64                `json:"team_strength_score"`
	FounderCount           int                    `json:"founder_count"`
	AvgExperience          float64                `json:"avg_experience"`
	ExitsCount             int                    `json:"exits_count"`
	EstimatedTeamSize      float64                `json:"estimated_team_size"`
	FounderDetails         []FounderDetail        `json:"founder_details"`
	Distribution           ExperienceDistribution `json:"experience_distribution"`
	TeamCompositionScore   float64                `json:"team_composition_score"`
}

func ExtractTeam(doc Team) TeamFeatures {
	out := TeamFeatures{
		FounderCount:      len(doc.Founders),
		EstimatedTeamSize: doc.EstimatedTeamSize,
		FounderDetails:    make([]FounderDetail, 0, len(doc.Founders)),
	}

	totalExperience := 0.0
	levels := make([]string, 0, len(doc.Founders))
	for _, f := range doc.Founders {
		totalExperience += f.ExperienceYears
		if f.HasExit {
			out.ExitsCount++
		}
		level := experienceLevel(f.ExperienceYears)
		levels = append(levels, level)
		role := f.Role
		if role == "" {
			role = "Founder"
		}
		out.FounderDetails = append(out.FounderDetails, FounderDetail{
			Experience:      f.ExperienceYears,
			ExperienceLevel: level,
			HasExit:         f.HasExit,
			Role:            role,
			Education:       f.Education,
		})
	}
	if out.FounderCount > 0 {
		out.AvgExperience = totalExperience / float64(out.FounderCount)
	}

	for _, level := range levels {
		switch level {
		case levelJunior:
			out.Distribution.Junior++
		case levelMidLevel:
			out.Distribution.MidLevel++
		case levelSenior:
			out.Distribution.Senior++
		case levelExecutive:
			out.Distribution.Executive++
		}
	}

	out.TeamStrengthScore = teamStrength(out, levels)
	out.TeamCompositionScore = compositionScore(out.Distribution, doc.EstimatedTeamSize)
	return out
}

func experienceLevel(years float64) string {
	switch {
	case years < 3:
		return levelJunior
	case years < 7:
		return levelMidLevel
	case years < 15:
		return levelSenior
	default:
		return levelExecutive
	}
}

func teamStrength(t TeamFeatures, levels []string) float64 {
	founderFactor := float64(t.FounderCount) * 0.2
	experienceFactor := t.AvgExperience * 0.5
	exitFactor := float64(t.ExitsCount) * 1.0

	teamSizeFactor := 0.0
	if t.EstimatedTeamSize > 0 {
		teamSizeFactor = math.Min(t.EstimatedTeamSize/100, 2.0)
	}

	unique := map[string]struct{}{}
	for _, l := range levels {
		unique[l] = struct{}{}
	}
	diversityFactor := 0.0
	if len(unique) > 1 {
		diversityFactor = float64(len(unique)) * 0.3
	}

	seniorFactor := float64(t.Distribution.Senior+t.Distribution.Executive) * 0.4

	return founderFactor + experienceFactor + exitFactor + teamSizeFactor + diversityFactor + seniorFactor
}

func compositionScore(dist ExperienceDistribution, teamSize float64) float64 {
	if teamSize <= 0 {
		return 0
	}
	actual := map[string]float64{
		levelJunior:    float64(dist.Junior) / teamSize,
		levelMidLevel:  float64(dist.MidLevel) / teamSize,
		levelSenior:    float64(dist.Senior) / teamSize,
		levelExecutive: float64(dist.Executive) / teamSize,
	}
	score := 0.0
	for level, idealPct := range idealDistribution {
		levelScore := 1.0 - math.Abs(actual[level]-idealPct)
		score += levelScore * idealPct
	}
	return score * 10
}

func (t TeamFeatures) Apply(fs *FeatureSet) error {
	pairs := []struct {
		key string
		val float64
	}{
		{"team_strength_score", t.TeamStrengthScore},
		{"founder_count", float64(t.FounderCount)},
		{"avg_experience", t.AvgExperience},
		{"exits_count", float64(t.ExitsCount)},
		{"estimated_team_size", t.EstimatedTeamSize},
		{"team_composition_score", t.TeamCompositionScore},
	}
	for _, p := range pairs {
		if err := fs.SetNum(p.key, p.val); err != nil {
			return err
		}
	}
	return nil
}
