package cli

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/makutaku/bundlefix/internal/pipeline"
	"github.com/makutaku/bundlefix/internal/tools"
)

func NewProcessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [bundle.zip]",
		Short: "Repair a packaged Windows app bundle and optionally build an installer",
		Long: `Process an Electron or NW.js Windows application zip produced by a packager.

The zip is validated and extracted; the executable's icon and version
metadata are repaired with rcedit and the archive is rewritten in place.
Optionally an Inno Setup installer is compiled from the corrected tree.`,
		Args: cobra.ExactArgs(1),
		RunE: runProcess,
	}

	cmd.Flags().Bool("fix-metadata", true, "Fix the executable's icon and version metadata")
	cmd.Flags().Bool("installer", false, "Build a Windows installer from the bundle")
	cmd.Flags().String("installer-dest", "", "Where to write the installer (default: \"<bundle> Setup.exe\" next to the archive)")
	cmd.Flags().Bool("yes", false, "Proceed without the confirmation prompt")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	archive := args[0]

	fixMetadata, _ := cmd.Flags().GetBool("fix-metadata")
	installer, _ := cmd.Flags().GetBool("installer")
	installerDest, _ := cmd.Flags().GetString("installer-dest")
	yes, _ := cmd.Flags().GetBool("yes")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if installerDest != "" {
		installer = true
	}
	if installer && installerDest == "" {
		installerDest = defaultInstallerDestination(archive)
	}

	runner := tools.ExecRunner{}
	icons := &tools.ExecIconConverter{ToolPath: cfg.Tools.IconConverter, Runner: runner}
	fixer := tools.NewMetadataFixer(cfg.Tools.Rcedit, runner, icons)
	builder := tools.NewInstallerBuilder(cfg.Tools.Iscc, runner, icons)

	reporter := newChannelReporter()
	p := pipeline.New(archive, fixer, builder, reporter)
	defer p.Close()

	ctx := cmd.Context()

	done := make(chan error, 1)
	go func() {
		_, err := p.Extract(ctx)
		done <- err
	}()
	if err := reporter.drain(done); err != nil {
		return fmt.Errorf("failed to open bundle: %w", err)
	}

	fmt.Printf("Opened: %s\n", filepath.Base(archive))
	fmt.Printf("Extracted to: %s\n", p.Root())

	// The only cancellation point: the user may decline after reviewing
	// what was extracted. Once the steps start they run to completion.
	if !yes && !confirm(cmd.InOrStdin()) {
		fmt.Println("Aborted")
		return nil
	}

	opts := pipeline.Options{
		FixMetadata:          fixMetadata,
		CreateInstaller:      installer,
		InstallerDestination: installerDest,
	}

	go func() {
		done <- p.Run(ctx, opts)
	}()
	if err := reporter.drain(done); err != nil {
		return err
	}

	if installer {
		fmt.Printf("Installer written to %s\n", installerDest)
	}
	return nil
}

// defaultInstallerDestination suggests "<bundle> Setup.exe" next to the
// archive.
func defaultInstallerDestination(archive string) string {
	base := strings.TrimSuffix(filepath.Base(archive), filepath.Ext(archive))
	return filepath.Join(filepath.Dir(archive), base+" Setup.exe")
}

func confirm(in io.Reader) bool {
	fmt.Print("Continue? [y/N] ")
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
