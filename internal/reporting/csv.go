package reporting

import (
	"fmt"
	"strings"

	"islanddao-governance/internal/domain"
)

// RenderCSV renders power records as CSV string.
// Shape: wallet,native,delegated,total with one row per wallet, input order.
func RenderCSV(records []domain.PowerRecord) string {
	var sb strings.Builder

	// Header
	sb.WriteString("wallet,native,delegated,total\n")

	// Rows
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%d\n",
			r.Wallet,
			r.Native,
			r.Delegated,
			r.Total,
		))
	}

	return sb.String()
}

// RenderReportCSV renders a full report's leaderboard as CSV, with ranks.
func RenderReportCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("rank,wallet,native,delegated,total\n")
	for _, row := range r.Leaderboard {
		sb.WriteString(fmt.Sprintf("%d,%s,%d,%d,%d\n",
			row.Rank,
			row.Wallet,
			row.Native,
			row.Delegated,
			row.Total,
		))
	}

	return sb.String()
}
