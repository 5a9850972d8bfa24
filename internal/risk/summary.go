package risk

// Summary aggregates a batch of evaluations.
type Summary struct {
	Total                   int     `json:"total_opportunities"`
	Executable              int     `json:"executable"`
	Consideration           int     `json:"consideration"`
	Avoid                   int     `json:"avoid"`
	AverageRiskScore        float64 `json:"average_risk_score"`
	AverageProfitPercentage float64 `json:"average_profit_percentage"`
	ExecutionRate           float64 `json:"execution_rate"` // Percentage of EXECUTE recommendations
}

// Summarize counts recommendations and averages risk and profit.
func Summarize(evals []Evaluation) Summary {
	if len(evals) == 0 {
		return Summary{}
	}

	var s Summary
	var riskSum, profitSum float64
	for _, ev := range evals {
		switch ev.Recommendation {
		case Execute:
			s.Executable++
		case Consider:
			s.Consideration++
		case Avoid:
			s.Avoid++
		}
		riskSum += ev.RiskScore
		profitSum += ev.ProfitPercentage
	}

	s.Total = len(evals)
	s.AverageRiskScore = riskSum / float64(s.Total)
	s.AverageProfitPercentage = profitSum / float64(s.Total)
	s.ExecutionRate = float64(s.Executable) / float64(s.Total) * 100
	return s
}
