package services

import (
	"math"

	"folio/internal/models"
)

// riskService implements the risk scoring engine. It is a pure computation
// over a security's preloaded catalog links: no I/O, no stored state.
type riskService struct{}

// NewRiskService creates a new RiskServicer.
func NewRiskService() RiskServicer {
	return &riskService{}
}

// Score returns the product of the three catalog coefficients:
//
//	base_risk_coefficient(industry) * risk_multiplier(type) * variance_multiplier(tier)
//
// Each axis scales the score independently; coefficients are dimensionless,
// so the industry coefficient is the baseline score for a common stock in the
// low variance tier. A security whose links do not all resolve scores the
// 0.0 sentinel instead of failing; risk display must never take down a
// portfolio view. Callers should log that condition as an integrity warning.
func (riskService) Score(security *models.Security) float64 {
	if security == nil {
		return 0.0
	}
	if security.Industry.ID == "" || security.SecurityType.ID == "" || security.VarianceTier.ID == "" {
		return 0.0
	}

	score := security.Industry.BaseRiskCoefficient *
		security.SecurityType.RiskMultiplier *
		security.VarianceTier.VarianceMultiplier

	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0.0
	}
	return score
}

// Scoreable reports whether all three catalog links resolve, letting callers
// distinguish a genuine zero-coefficient score from the dangling-link sentinel.
func Scoreable(security *models.Security) bool {
	return security != nil &&
		security.Industry.ID != "" &&
		security.SecurityType.ID != "" &&
		security.VarianceTier.ID != ""
}
