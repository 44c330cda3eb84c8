package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/specmodel/internal/pipeline"
)

// CLIProgressReporter implements pipeline.ProgressReporter with progress bars.
type CLIProgressReporter struct {
	out    io.Writer
	quiet  bool
	docBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a reporter drawing on out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{out: out, quiet: quiet}
}

func (c *CLIProgressReporter) OnDocumentsStart(total int) {
	if c.quiet || total == 0 {
		return
	}
	c.docBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Parsing documents"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("docs/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnDocumentParsed(path string, types int) {
	if c.docBar != nil {
		c.docBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnResolveStart(types int) {
	if c.docBar != nil {
		c.docBar.Finish()
		c.docBar = nil
	}
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "Resolving %s types...\n", formatNumber(types))
}

func (c *CLIProgressReporter) OnComplete(stats *pipeline.Stats) {
	if c.quiet {
		return
	}
	printSummary(c.out, stats)
}
