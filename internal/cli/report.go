package cli

import (
	"fmt"
	"strings"

	"github.com/perceptlab/staircase"
)

// maxReportRows caps the trial table so long runs stay readable; the full
// sequence is always available through --json.
const maxReportRows = 40

// buildReport renders the run outcome as markdown.
func buildReport(sess *staircase.Session, rows []TrialRow, threshold float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Simulated run: %s\n\n", sess.Name())
	fmt.Fprintf(&b, "Simulated observer threshold: **%.4g**\n\n", threshold)

	b.WriteString("## Staircases\n\n")
	b.WriteString("| label | final estimate | finished |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, proc := range sess.Procedures() {
		fmt.Fprintf(&b, "| %s | %.4g | %v |\n", proc.Name(), proc.Value(), proc.Finished())
	}

	fmt.Fprintf(&b, "\n## Trials (%d total)\n\n", len(rows))
	b.WriteString("| # | label | intensity | response |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	shown := rows
	if len(shown) > maxReportRows {
		shown = shown[len(shown)-maxReportRows:]
		fmt.Fprintf(&b, "| … | _%d earlier trials omitted_ | | |\n", len(rows)-maxReportRows)
	}
	for _, row := range shown {
		fmt.Fprintf(&b, "| %d | %s | %.4g | %d |\n", row.Index, row.Label, row.Intensity, row.Response)
	}

	return b.String()
}
