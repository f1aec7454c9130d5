package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/makutaku/bundlefix/internal/bundle"
)

func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [bundle.zip]",
		Short: "Classify a zip without extracting it",
		Long: `Inspect a zip's member list and report whether it is a valid Electron or
NW.js Windows bundle. No entry contents are read and nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}

	cmd.Flags().Bool("json", false, "Output the classification in JSON format")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")

	classification, err := bundle.ClassifyArchive(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		out := struct {
			InnerFolder string `json:"inner_folder"`
			Members     int    `json:"members"`
		}{classification.InnerFolder, len(classification.Members)}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal classification: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Valid Electron/NW.js Windows bundle\n")
	fmt.Printf("Inner folder: %s\n", classification.InnerFolder)
	fmt.Printf("Members: %d\n", len(classification.Members))
	return nil
}
