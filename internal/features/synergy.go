package features

import (
	"math"
	"strings"
)

// SynergyFeatures measures similarity and complementarity between an acquirer
// and a target across market, technology, and team-size axes.
type SynergyFeatures struct {
	MarketSimilarity    float64 `json:"market_similarity"`
	TechSimilarity      float64 `json:"tech_similarity"`
	RevenueSynergyScore float64 `json:"revenue_synergy_score"`
	CostSynergyScore    float64 `json:"cost_synergy_score"`
	OverallSynergyScore float64 `json:"overall_synergy_score"`
}

func ExtractSynergy(acquirer, target Company) SynergyFeatures {
	marketSim := (labelSimilarity(acquirer.Market, target.Market) +
		labelSimilarity(acquirer.Industry, target.Industry)) / 2

	techSim := jaccard(acquirer.TechStack, target.TechStack)

	revenueSynergy := marketSim + (acquirer.TeamSize+target.TeamSize)/100

	costSynergy := 0.0
	if target.TeamSize > 0 {
		ratio := acquirer.TeamSize / target.TeamSize
		costSynergy = math.Min(ratio/2, 1.0)
	}

	overall := marketSim*0.35 + techSim*0.35 + revenueSynergy*0.15 + costSynergy*0.15

	return SynergyFeatures{
		MarketSimilarity:    marketSim,
		TechSimilarity:      techSim,
		RevenueSynergyScore: revenueSynergy,
		CostSynergyScore:    costSynergy,
		OverallSynergyScore: overall,
	}
}

// labelSimilarity compares two free-text labels: 1.0 for an exact
// case-insensitive match, 0.8 when one contains the other, otherwise 0.
// Two empty labels count as identical.
func labelSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	a, b = strings.ToLower(a), strings.ToLower(b)
	switch {
	case a == b:
		return 1.0
	case strings.Contains(a, b) || strings.Contains(b, a):
		return 0.8
	default:
		return 0.0
	}
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	setA := map[string]struct{}{}
	for _, v := range a {
		setA[v] = struct{}{}
	}
	setB := map[string]struct{}{}
	for _, v := range b {
		setB[v] = struct{}{}
	}
	intersection := 0
	for v := range setA {
		if _, ok := setB[v]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func (s SynergyFeatures) Apply(fs *FeatureSet) error {
	pairs := []struct {
		key string
		val float64
	}{
		{"market_similarity", s.MarketSimilarity},
		{"tech_similarity", s.TechSimilarity},
		{"revenue_synergy_score", s.RevenueSynergyScore},
		{"cost_synergy_score", s.CostSynergyScore},
		{"overall_synergy_score", s.OverallSynergyScore},
	}
	for _, p := range pairs {
		if err := fs.SetNum(p.key, p.val); err != nil {
			return err
		}
	}
	return nil
}
