package features

// FundingFeatures summarizes the funding history document.
type FundingFeatures struct {
	NumRounds      int     `json:"num_rounds"`
	TotalRaisedUSD float64 `json:"total_raised_usd"`
	AvgRoundSize   float64 `json:"avg_round_size"`
	LastRoundType  string  `json:"last_round_type"`
}

func ExtractFunding(doc Funding) FundingFeatures {
	out := FundingFeatures{NumRounds: len(doc.Rounds), LastRoundType: "None"}
	for _, r := range doc.Rounds {
		out.TotalRaisedUSD += r.AmountValue()
	}
	if out.NumRounds > 0 {
		out.AvgRoundSize = out.TotalRaisedUSD / float64(out.NumRounds)
		last := doc.Rounds[out.NumRounds-1]
		if last.Type != "" {
			out.LastRoundType = last.Type
		} else {
			out.LastRoundType = "Unknown"
		}
	}
	return out
}

func (f FundingFeatures) Apply(fs *FeatureSet) error {
	if err := fs.SetNum("num_rounds", float64(f.NumRounds)); err != nil {
		return err
	}
	if err := fs.SetNum("total_raised_usd", f.TotalRaisedUSD); err != nil {
		return err
	}
	if err := fs.SetNum("avg_round_size", f.AvgRoundSize); err != nil {
		return err
	}
	return fs.SetLabel("last_round_type", f.LastRoundType)
}
