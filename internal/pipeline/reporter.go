package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/makutaku/bundlefix/internal/version"
)

// Reporter is the one-way notification surface of a pipeline run. It never
// blocks the pipeline and never influences its decisions; implementations
// that feed a UI must marshal onto their own execution context.
type Reporter interface {
	Progress(text string)
	Success()
	Error(report *Report)
}

// Report describes a failed run with enough context for a bug report: the
// specific condition text, the environment, and where in the pipeline the
// failure happened.
type Report struct {
	// Message is the user-actionable description of the exact failure.
	Message string
	// Platform is the OS/arch the tool is running on.
	Platform string
	// Version is the running tool version.
	Version string
	// Trace lists the pipeline stages entered, most recent first.
	Trace []string
}

// String formats the report the way it is shown to users.
func (r *Report) String() string {
	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString("\n\nDebug info:\n")
	for _, stage := range r.Trace {
		fmt.Fprintf(&b, "  at %s\n", stage)
	}
	fmt.Fprintf(&b, "  (%s %s)", r.Version, r.Platform)
	return b.String()
}

// newReport builds a Report for err, with trace stages most recent first.
func newReport(err error, trace []string) *Report {
	message := err.Error()

	// A malformed version number deserves a friendlier explanation than
	// the raw parse error, since the user can fix it themselves.
	var invalid *version.InvalidVersionError
	if errors.As(err, &invalid) {
		message = fmt.Sprintf(
			"The project's version number %q is invalid. Repackage the project using a version number that is exactly three numbers separated by periods, like 1.0.0 or 1.2.3.",
			invalid.Version)
	}

	reversed := make([]string, 0, len(trace))
	for i := len(trace) - 1; i >= 0; i-- {
		reversed = append(reversed, trace[i])
	}

	return &Report{
		Message:  message,
		Platform: version.Platform,
		Version:  version.GetVersionString(),
		Trace:    reversed,
	}
}

// NopReporter discards all notifications.
type NopReporter struct{}

func (NopReporter) Progress(string) {}
func (NopReporter) Success()        {}
func (NopReporter) Error(*Report)   {}
