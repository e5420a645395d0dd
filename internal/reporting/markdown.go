package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Governance Power Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Scan summary
	sb.WriteString("## Scan Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Scan ID | %s |\n", r.Scan.ScanID))
	sb.WriteString(fmt.Sprintf("| Realm | %s |\n", r.Scan.Realm))
	sb.WriteString(fmt.Sprintf("| Governing Mint | %s |\n", r.Scan.GoverningMint))
	sb.WriteString(fmt.Sprintf("| Slot | %d |\n", r.Scan.Slot))
	sb.WriteString(fmt.Sprintf("| Scanned At | %s |\n", time.Unix(r.Scan.ScannedAt, 0).UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("| Voter Accounts | %d |\n", r.Scan.VoterAccounts))
	sb.WriteString(fmt.Sprintf("| Decoded | %d |\n", r.Scan.Decoded))
	sb.WriteString(fmt.Sprintf("| Skipped (malformed) | %d |\n", r.Scan.SkippedMalformed))
	sb.WriteString(fmt.Sprintf("| Excluded (overflow) | %d |\n", r.Scan.Overflowed))
	sb.WriteString("\n")

	if r.Scan.SkippedMalformed > 0 || r.Scan.Overflowed > 0 {
		sb.WriteString(fmt.Sprintf("Totals reflect the %d decoded accounts only.\n\n", r.Scan.Decoded))
	}

	// Leaderboard
	sb.WriteString("## Leaderboard\n\n")
	if len(r.Leaderboard) > 0 {
		sb.WriteString("| Rank | Wallet | Native | Delegated | Total |\n")
		sb.WriteString("|------|--------|--------|-----------|-------|\n")
		for _, row := range r.Leaderboard {
			sb.WriteString(fmt.Sprintf("| %d | %s | %d | %d | %d |\n",
				row.Rank, row.Wallet, row.Native, row.Delegated, row.Total))
		}
	} else {
		sb.WriteString("No wallets with voting power.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
