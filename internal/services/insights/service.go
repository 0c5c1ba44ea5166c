// Package insights produces portfolio analysis
package insights

import (
	"context"
	"fmt"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
	"github.com/bobmcallan/gripvest/internal/services/portfolio"
)

const (
	// HighRiskWarning is the high-risk share at which a volatility warning is given
	HighRiskWarning = 50.0
	// LowRiskFloor is the low-risk share below which diversification is advised
	LowRiskFloor = 30.0
)

// Ensure Service implements InsightsService
var _ interfaces.InsightsService = (*Service)(nil)

// Service implements InsightsService
type Service struct {
	client interfaces.MarketplaceClient
	gemini interfaces.GeminiClient // nil when no API key is configured
	logger *common.Logger
}

// NewService creates a new insights service. gemini may be nil.
func NewService(client interfaces.MarketplaceClient, gemini interfaces.GeminiClient, logger *common.Logger) *Service {
	return &Service{
		client: client,
		gemini: gemini,
		logger: logger,
	}
}

// Insights fetches the server's analysis. When that fails the figures are
// computed locally from investments and narrated by Gemini, or by fixed
// rules when Gemini is unavailable.
func (s *Service) Insights(ctx context.Context, session *models.Session, investments []*models.Investment) common.Result[*models.Insights] {
	if !session.Authenticated() {
		return common.Failure[*models.Insights](models.ErrUnauthenticated)
	}
	return common.Attempt(ctx, func(ctx context.Context) (*models.Insights, error) {
		return s.client.GetInsights(ctx, session.Token)
	}).UseFallbackIf(s.logger, "insights", models.IsFallbackEligible, func() *models.Insights {
		return s.local(ctx, investments)
	})
}

func (s *Service) local(ctx context.Context, investments []*models.Investment) *models.Insights {
	in := Compute(investments)
	if s.gemini != nil && in.TotalInvested > 0 {
		lines, err := s.gemini.NarrateInsights(ctx, in, investments)
		if err == nil {
			in.Insights = lines
			return in
		}
		s.logger.Warn().Err(err).Msg("Gemini narration failed, using rule-based insights")
	}
	in.Insights = Rules(in)
	return in
}

// Compute derives the insight figures from the active investments.
func Compute(investments []*models.Investment) *models.Insights {
	return &models.Insights{
		TotalInvested:    portfolio.ActiveInvested(investments),
		RiskDistribution: portfolio.RiskDistribution(investments),
		ExpectedReturns:  portfolio.ActiveExpectedReturns(investments),
	}
}

// Rules narrates in with deterministic advice.
func Rules(in *models.Insights) []string {
	if in.TotalInvested <= 0 {
		return []string{
			"You have no active investments yet. Browse the product catalog to start building your portfolio.",
			"Consider reviewing your portfolio quarterly to maintain optimal risk balance.",
		}
	}

	var lines []string
	d := in.RiskDistribution
	if d.High >= HighRiskWarning {
		lines = append(lines, fmt.Sprintf("Your portfolio has a high-risk allocation of %.2f%%, which may lead to higher volatility but potentially greater returns.", d.High))
	}
	if d.Low < LowRiskFloor {
		lines = append(lines, "Consider diversifying into more low-risk investments to balance your portfolio and reduce overall risk.")
	} else if d.Low >= 70 {
		lines = append(lines, fmt.Sprintf("%.2f%% of your portfolio is in low-risk products; moderate-risk products could improve returns without much added volatility.", d.Low))
	}
	lines = append(lines,
		fmt.Sprintf("Your expected returns of %s represent a %.2f%% return on your total investment.",
			common.FormatMoney(in.ExpectedReturns), in.ExpectedReturns/in.TotalInvested*100),
		fmt.Sprintf("Your risk profile is %s.", d.Profile()),
		"Consider reviewing your portfolio quarterly to maintain optimal risk balance.",
	)
	return lines
}
