package pipeline

import "time"

// ProgressReporter provides callbacks for reporting extraction progress.
// Implementations can display progress bars, log messages, or remain silent.
// The pipeline never calls a reporter from two goroutines at once.
type ProgressReporter interface {
	// OnDocumentsStart is called before the documents are read.
	OnDocumentsStart(total int)

	// OnDocumentParsed is called after each document is parsed.
	OnDocumentParsed(path string, types int)

	// OnResolveStart is called before the pooled model is assembled and resolved.
	OnResolveStart(types int)

	// OnComplete is called when the run completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDocumentsStart(total int)              {}
func (n *NoOpProgressReporter) OnDocumentParsed(path string, types int) {}
func (n *NoOpProgressReporter) OnResolveStart(types int)                {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)                 {}

// Stats summarizes one run.
type Stats struct {
	Documents    int
	Classes      int
	Enumerations int
	Primitives   int
	Packages     int
	RootClasses  int
	Discarded    int // duplicate or package-less types
	Warnings     int
	Duration     time.Duration
}
