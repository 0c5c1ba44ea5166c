package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bobmcallan/gripvest/internal/app"
	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/models"
)

// Delegate to common format helpers
func formatMoney(v float64) string       { return common.FormatMoney(v) }
func formatSignedMoney(v float64) string { return common.FormatSignedMoney(v) }
func formatPct(v float64) string         { return common.FormatPct(v) }

var headingStyle = lipgloss.NewStyle().Bold(true)

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

// sourceNote flags data that did not come from the API.
func sourceNote(source common.Source) string {
	if source == common.SourceFallback {
		return "(offline: showing locally stored data)\n"
	}
	return ""
}

func formatRange(p *models.Product) string {
	if p.MaxInvestment == nil {
		return formatMoney(p.MinInvestment) + "+"
	}
	return formatMoney(p.MinInvestment) + " - " + formatMoney(*p.MaxInvestment)
}

// formatProducts renders the catalog as a table
func formatProducts(products []*models.Product, source common.Source) string {
	var sb strings.Builder
	sb.WriteString(headingStyle.Render("Products"))
	sb.WriteString("\n")
	sb.WriteString(sourceNote(source))
	if len(products) == 0 {
		sb.WriteString("No products available.\n")
		return sb.String()
	}

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			p.InvestmentType.Label(),
			string(p.RiskLevel),
			formatPct(p.AnnualYield),
			fmt.Sprintf("%d mo", p.TenureMonths),
			formatRange(p),
		})
	}
	sb.WriteString(renderTable([]string{"ID", "Name", "Type", "Risk", "Yield", "Tenure", "Investment"}, rows))
	sb.WriteString("\n")
	return sb.String()
}

// formatProduct renders one product's details
func formatProduct(p *models.Product) string {
	var sb strings.Builder
	sb.WriteString(headingStyle.Render(p.Name))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("ID:          %s\n", p.ID))
	sb.WriteString(fmt.Sprintf("Type:        %s\n", p.InvestmentType.Label()))
	sb.WriteString(fmt.Sprintf("Risk:        %s\n", p.RiskLevel))
	sb.WriteString(fmt.Sprintf("Yield:       %s per year\n", formatPct(p.AnnualYield)))
	sb.WriteString(fmt.Sprintf("Tenure:      %d months\n", p.TenureMonths))
	sb.WriteString(fmt.Sprintf("Investment:  %s\n", formatRange(p)))
	if p.Description != "" {
		sb.WriteString(fmt.Sprintf("\n%s\n", p.Description))
	}
	return sb.String()
}

// formatPortfolio renders the summary, risk split and investment table
func formatPortfolio(snap *app.Snapshot) string {
	var sb strings.Builder
	s := snap.Summary

	sb.WriteString(headingStyle.Render("Portfolio"))
	sb.WriteString("\n")
	sb.WriteString(sourceNote(sourceOf(snap.ProductsSource, snap.InvestmentsSource)))
	if snap.Session != nil && snap.Session.User != nil {
		sb.WriteString(fmt.Sprintf("Balance:            %s\n", formatMoney(snap.Session.User.Balance)))
	}
	sb.WriteString(fmt.Sprintf("Total Invested:     %s\n", formatMoney(s.TotalInvested)))
	sb.WriteString(fmt.Sprintf("Current Value:      %s\n", formatMoney(s.CurrentValue)))
	sb.WriteString(fmt.Sprintf("Expected Returns:   %s (%s)\n", formatSignedMoney(s.TotalReturns), formatPct(s.ReturnsPercentage)))
	sb.WriteString(fmt.Sprintf("Active Investments: %d\n", s.ActiveInvestments))

	if !snap.RiskDistribution.IsZero() {
		d := snap.RiskDistribution
		sb.WriteString(fmt.Sprintf("Risk Split:         low %s, moderate %s, high %s (%s)\n",
			formatPct(d.Low), formatPct(d.Moderate), formatPct(d.High), snap.RiskProfile))
	}
	sb.WriteString("\n")

	if len(snap.Investments) == 0 {
		sb.WriteString("No investments yet. Browse 'gripvest products' to get started.\n")
		return sb.String()
	}
	sb.WriteString(formatInvestments(snap.Investments))
	return sb.String()
}

// formatInvestments renders investments as a table
func formatInvestments(investments []*models.Investment) string {
	rows := make([][]string, 0, len(investments))
	for _, inv := range investments {
		status := string(models.NormalizeStatus(string(inv.Status)))
		if inv.Local {
			status += " (offline)"
		}
		purchased := "-"
		if !inv.PurchaseDate.IsZero() {
			purchased = inv.PurchaseDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			inv.ID,
			inv.ProductName(),
			formatMoney(inv.AmountInvested),
			formatMoney(inv.CurrentValue),
			formatSignedMoney(inv.ExpectedReturn),
			purchased,
			status,
		})
	}
	return renderTable([]string{"ID", "Product", "Invested", "Value", "Expected", "Purchased", "Status"}, rows) + "\n"
}

// formatInvestment summarises a single purchase or cancellation
func formatInvestment(verb string, inv *models.Investment) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s in %s (id %s)\n", verb, formatMoney(inv.AmountInvested), inv.ProductName(), inv.ID))
	sb.WriteString(fmt.Sprintf("Expected return: %s", formatSignedMoney(inv.ExpectedReturn)))
	if m := inv.MaturityDate(); !m.IsZero() {
		sb.WriteString(fmt.Sprintf(", matures %s", m.Format("2006-01-02")))
	}
	sb.WriteString("\n")
	if inv.Local {
		sb.WriteString("The marketplace was unreachable; the investment was recorded locally.\n")
	}
	return sb.String()
}

// formatInsights renders figures and advice lines
func formatInsights(in *models.Insights, source common.Source) string {
	var sb strings.Builder
	sb.WriteString(headingStyle.Render("Insights"))
	sb.WriteString("\n")
	sb.WriteString(sourceNote(source))
	sb.WriteString(fmt.Sprintf("Total Invested:   %s\n", formatMoney(in.TotalInvested)))
	sb.WriteString(fmt.Sprintf("Expected Returns: %s\n", formatMoney(in.ExpectedReturns)))
	d := in.RiskDistribution
	sb.WriteString(fmt.Sprintf("Risk Split:       low %s, moderate %s, high %s\n\n", formatPct(d.Low), formatPct(d.Moderate), formatPct(d.High)))
	for _, line := range in.Insights {
		sb.WriteString("- " + line + "\n")
	}
	return sb.String()
}

// formatSession describes the logged in user
func formatSession(session *models.Session) string {
	u := session.User
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <%s>\n", u.DisplayName(), u.Email))
	sb.WriteString(fmt.Sprintf("Role:    %s\n", u.Role))
	if u.RiskAppetite != "" {
		sb.WriteString(fmt.Sprintf("Risk:    %s\n", u.RiskAppetite))
	}
	sb.WriteString(fmt.Sprintf("Balance: %s\n", formatMoney(u.Balance)))
	if session.IsDemo() {
		sb.WriteString("Demo session (marketplace unreachable at login)\n")
	}
	return sb.String()
}

// formatStats renders catalog statistics
func formatStats(stats *models.CatalogStats) string {
	var sb strings.Builder
	sb.WriteString(headingStyle.Render("Catalog"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Products:           %d\n", stats.TotalProducts))
	sb.WriteString(fmt.Sprintf("Average Yield:      %s\n", formatPct(stats.AverageYield)))
	sb.WriteString(fmt.Sprintf("High Risk Products: %d\n", stats.HighRiskProducts))
	return sb.String()
}
