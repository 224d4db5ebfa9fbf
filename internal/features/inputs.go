package features

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexAmount accepts a JSON number or a numeric-looking string. String values
// are sanitized by digit extraction, so "$2,500,000" parses as 2500000 and a
// garbage string parses as 0 rather than failing the request.
type FlexAmount float64

func (a *FlexAmount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = 0
		return nil
	}
	if strings.HasPrefix(s, "\"") {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			*a = 0
			return nil
		}
		*a = FlexAmount(digitsToFloat(raw))
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		*a = 0
		return nil
	}
	*a = FlexAmount(v)
	return nil
}

func digitsToFloat(s string) float64 {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

type FundingRound struct {
	Type      string      `json:"type"`
	Amount    FlexAmount  `json:"amount"`
	AmountUSD *FlexAmount `json:"amount_usd,omitempty"`
}

// AmountValue prefers the explicit amount_usd field when present.
func (r FundingRound) AmountValue() float64 {
	if r.AmountUSD != nil {
		return float64(*r.AmountUSD)
	}
	return float64(r.Amount)
}

type Funding struct {
	Rounds []FundingRound `json:"rounds"`
}

type Founder struct {
	ExperienceYears float64 `json:"experience_years"`
	HasExit         bool    `json:"has_exit"`
	Role            string  `json:"role,omitempty"`
	Education       string  `json:"education,omitempty"`
}

type Team struct {
	Founders          []Founder `json:"founders"`
	EstimatedTeamSize float64   `json:"estimated_team_size,omitempty"`
}

// Company describes one side of the strategic-fit pair.
type Company struct {
	Industry  string   `json:"industry"`
	Market    string   `json:"market"`
	TechStack []string `json:"tech_stack"`
	TeamSize  float64  `json:"team_size"`
}

type Financials struct {
	MonthlyRevenueUSD *float64 `json:"monthly_revenue_usd,omitempty"`
	AnnualRevenueUSD  *float64 `json:"annual_revenue_usd,omitempty"`
	RevenueGrowthMoM  float64  `json:"revenue_growth_mom,omitempty"`
	GrossMargin       float64  `json:"gross_margin,omitempty"`
	EBITDAMargin      float64  `json:"ebitda_margin,omitempty"`
}
