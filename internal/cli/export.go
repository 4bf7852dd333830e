package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agusx1211/promptarena/internal/profile"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export your profile as JSON",
	Long: `Write a snapshot of your profile to a JSON file. Without a file argument
the name is derived from your username, e.g. ada_battle_data_<ms>.json.
Use '-' to write to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	p, err := a.requireProfile()
	if err != nil {
		return err
	}
	now := a.now()
	data, err := json.MarshalIndent(profile.Export(p, now), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	data = append(data, '\n')

	path := profile.ExportFileName(p.Username, now)
	if len(args) > 0 {
		path = args[0]
	}
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Printf("\n  %sExported%s %s's profile to %s\n\n", styleBoldGreen, colorReset, p.Username, path)
	return nil
}
