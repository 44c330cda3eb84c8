package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/mvp-joe/specmodel/internal/pipeline"
)

var (
	okColor      = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	labelColor   = color.New(color.Bold)
)

// printSummary writes the counts of one run.
func printSummary(w io.Writer, stats *pipeline.Stats) {
	okColor.Fprintf(w, "✓ Extracted %s types from %s documents in %.1fs\n",
		formatNumber(stats.Classes+stats.Enumerations+stats.Primitives),
		formatNumber(stats.Documents),
		stats.Duration.Seconds())
	fmt.Fprintf(w, "  Classes:      %s\n", formatNumber(stats.Classes))
	fmt.Fprintf(w, "  Enumerations: %s\n", formatNumber(stats.Enumerations))
	fmt.Fprintf(w, "  Primitives:   %s\n", formatNumber(stats.Primitives))
	fmt.Fprintf(w, "  Packages:     %s\n", formatNumber(stats.Packages))
	fmt.Fprintf(w, "  Root classes: %s\n", formatNumber(stats.RootClasses))
	if stats.Discarded > 0 {
		fmt.Fprintf(w, "  Discarded:    %s\n", formatNumber(stats.Discarded))
	}
}

// printDiagnostics writes one line per warning.
func printDiagnostics(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	labelColor.Fprintf(w, "%d warning(s):\n", len(warnings))
	for _, msg := range warnings {
		fmt.Fprintf(w, "  %s %s\n", warningColor.Sprint("warning:"), msg)
	}
}

// formatNumber formats integer with thousand separators.
// Examples: 1234 -> "1,234", 1234567 -> "1,234,567"
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return formatNumber(n/1000) + fmt.Sprintf(",%03d", n%1000)
}
