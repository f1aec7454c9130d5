package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/makutaku/bundlefix/internal/version"
)

func NewCheckUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-update",
		Short: "Check whether a newer release is available",
		RunE:  runCheckUpdate,
	}
}

func runCheckUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.Update.Disabled {
		fmt.Println("Update checking is disabled in the configuration")
		return nil
	}

	current := version.GetVersion().Version
	latest, outOfDate, err := version.UpdateAvailable(cmd.Context(), cfg.Update.URL, current)

	var invalid *version.InvalidVersionError
	if errors.As(err, &invalid) {
		// Development builds don't carry a release version; still useful
		// to show what the latest release is.
		fmt.Printf("Running %s; latest release is %s\n", current, latest)
		return nil
	}
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}

	if outOfDate {
		fmt.Printf("An update is available: %s (running %s)\n", latest, current)
	} else {
		fmt.Printf("Up to date (running %s, latest %s)\n", current, latest)
	}
	return nil
}
