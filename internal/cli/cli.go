package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/makutaku/bundlefix/internal/config"
	"github.com/makutaku/bundlefix/internal/pipeline"
)

// loadConfig reads the persistent --config and --verbose flags, loads the
// configuration, and applies the logging settings.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	config.ConfigureLogging(cfg.Log, verbose)
	return cfg, nil
}

// reporterEvent is a single notification from a pipeline run.
type reporterEvent struct {
	progress string
	report   *pipeline.Report
	success  bool
}

// channelReporter forwards pipeline notifications to a channel so the
// command goroutine can consume them without the pipeline ever blocking on
// terminal output. The buffer is sized well above the handful of events a
// run emits.
type channelReporter struct {
	events chan reporterEvent
}

func newChannelReporter() *channelReporter {
	return &channelReporter{events: make(chan reporterEvent, 64)}
}

func (r *channelReporter) Progress(text string) {
	r.events <- reporterEvent{progress: text}
}

func (r *channelReporter) Success() {
	r.events <- reporterEvent{success: true}
}

func (r *channelReporter) Error(report *pipeline.Report) {
	r.events <- reporterEvent{report: report}
}

// drain prints events until the run goroutine finishes, then returns the
// run's error.
func (r *channelReporter) drain(done <-chan error) error {
	for {
		select {
		case ev := <-r.events:
			printEvent(ev)
		case err := <-done:
			// Flush anything emitted just before completion.
			for {
				select {
				case ev := <-r.events:
					printEvent(ev)
				default:
					return err
				}
			}
		}
	}
}

func printEvent(ev reporterEvent) {
	switch {
	case ev.progress != "":
		fmt.Println(ev.progress)
	case ev.success:
		fmt.Println("Success")
	case ev.report != nil:
		fmt.Fprintln(os.Stderr, ev.report.String())
	}
}
