// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
)

const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultMaxInsights = 5
)

// Ensure Client implements GeminiClient
var _ interfaces.GeminiClient = (*Client)(nil)

// Client implements the GeminiClient interface
type Client struct {
	client      *genai.Client
	model       string
	maxInsights int
	timeout     time.Duration
	logger      *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxInsights caps the number of narrated insight lines
func WithMaxInsights(n int) ClientOption {
	return func(c *Client) {
		c.maxInsights = n
	}
}

// WithTimeout bounds each generation request. Zero leaves it to the caller's context.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:      genaiClient,
		model:       DefaultModel,
		maxInsights: DefaultMaxInsights,
		logger:      common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateContent generates AI content from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// NarrateInsights asks the model for short, plain-language advice lines
// about the given portfolio figures.
func (c *Client) NarrateInsights(ctx context.Context, insights *models.Insights, investments []*models.Investment) ([]string, error) {
	text, err := c.GenerateContent(ctx, buildInsightsPrompt(insights, investments, c.maxInsights))
	if err != nil {
		return nil, err
	}
	lines := parseInsightLines(text, c.maxInsights)
	if len(lines) == 0 {
		return nil, fmt.Errorf("no insights in model response")
	}
	return lines, nil
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// buildInsightsPrompt creates the prompt for portfolio narration
func buildInsightsPrompt(in *models.Insights, investments []*models.Investment, maxLines int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are an investment advisor for a retail investment marketplace in India.
Write at most %d short insights (one sentence each, one per line, no numbering, no markdown)
about the following portfolio. Mention concrete figures. Amounts are in Indian Rupees (%s).

`, maxLines, common.CurrencySymbol)

	fmt.Fprintf(&sb, "Total invested: %s\n", common.FormatMoney(in.TotalInvested))
	fmt.Fprintf(&sb, "Expected returns: %s\n", common.FormatMoney(in.ExpectedReturns))
	fmt.Fprintf(&sb, "Risk distribution: low %.1f%%, moderate %.1f%%, high %.1f%%\n",
		in.RiskDistribution.Low, in.RiskDistribution.Moderate, in.RiskDistribution.High)
	fmt.Fprintf(&sb, "Risk profile: %s\n", in.RiskDistribution.Profile())

	if len(investments) > 0 {
		sb.WriteString("\nActive holdings:\n")
		for _, inv := range investments {
			if !inv.IsActive() {
				continue
			}
			yield, tenure := 0.0, 0
			if inv.Product != nil {
				yield, tenure = inv.Product.AnnualYield, inv.Product.TenureMonths
			}
			fmt.Fprintf(&sb, "- %s: %s invested, %s risk, %.2f%% yield, %d months\n",
				inv.ProductName(), common.FormatMoney(inv.AmountInvested), inv.RiskLevel(), yield, tenure)
		}
	}

	return sb.String()
}

var bulletPrefix = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)

// parseInsightLines splits a model response into clean insight lines,
// stripping bullets and numbering.
func parseInsightLines(text string, maxLines int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = bulletPrefix.ReplaceAllString(strings.TrimSpace(line), "")
		line = strings.Trim(line, "*_ ")
		if line == "" {
			continue
		}
		out = append(out, line)
		if maxLines > 0 && len(out) == maxLines {
			break
		}
	}
	return out
}
