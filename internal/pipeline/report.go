package pipeline

import (
	"fmt"
	"strings"
)

// FormatSummary renders run statistics for the terminal.
func FormatSummary(stats *Stats) string {
	var b strings.Builder

	b.WriteString("# Build summary\n")
	if stats == nil {
		b.WriteString("No run.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "- Divisions: %d (%d cached, %d downloaded)\n",
		stats.Divisions, stats.Fetch.Hits, stats.Fetch.Fetched)
	fmt.Fprintf(&b, "- Cross-reference entries: %d\n", stats.XRef)
	fmt.Fprintf(&b, "- Rows fetched: %d (%d dropped)\n", stats.Fetch.Rows, stats.Assembly.DroppedRows)
	fmt.Fprintf(&b, "- Groupements: %d\n", stats.Assembly.Groupements)
	fmt.Fprintf(&b, "- Membres: %d (%d communes without INSEE code)\n",
		stats.Assembly.Membres, stats.Assembly.UnresolvedCommunes)

	b.WriteString("\n## Phases\n")
	for _, p := range stats.Phases {
		status := "ok"
		if p.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(&b, "- %s: %s (%dms)\n", p.Name, status, p.Duration)
		if p.Error != "" {
			fmt.Fprintf(&b, "  Error: %s\n", p.Error)
		}
	}
	return b.String()
}
