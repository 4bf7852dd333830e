package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agusx1211/promptarena/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg"},
	Short:   "Manage promptarena configuration",
	Long: `Show and change ~/.promptarena/config.json.

Environment variables (PROMPTARENA_API_KEY, PROMPTARENA_MODEL,
PROMPTARENA_STORAGE, ...) and .env files override the file at runtime.

Examples:
  promptarena config show
  promptarena config set api.model gpt-4o-mini
  promptarena config set game.time_limit_secs 180
  promptarena config keys`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List keys accepted by config set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, k := range config.Keys() {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

func init() {
	configShowCmd.Flags().Bool("file", false, "Show only config.json, without environment overrides")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	load := config.Load
	if fileOnly, _ := cmd.Flags().GetBool("file"); fileOnly {
		load = config.LoadFile
	}
	cfg, err := load()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(redacted(cfg), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s# %s%s\n", colorDim, filepath.Join(config.Dir(), "config.json"), colorReset)
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// redacted returns a copy of cfg with secrets masked.
func redacted(cfg *config.Config) config.Config {
	out := *cfg
	out.API.APIKey = mask(out.API.APIKey)
	out.Leaderboard.AccessKeyID = mask(out.Leaderboard.AccessKeyID)
	out.Leaderboard.SecretAccessKey = mask(out.Leaderboard.SecretAccessKey)
	out.Server.AuthToken = mask(out.Server.AuthToken)
	if out.Storage.DatabaseURL != "" {
		out.Storage.DatabaseURL = "(set)"
	}
	return out
}

// mask keeps the last four characters of long secrets.
func mask(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile()
	if err != nil {
		return err
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	key, shown := strings.ToLower(strings.TrimSpace(args[0])), args[1]
	if key == "api.key" || key == "storage.database_url" {
		shown = mask(shown)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, shown)
	return nil
}
