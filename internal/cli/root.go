package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/agusx1211/promptarena/internal/buildinfo"
	"github.com/agusx1211/promptarena/internal/debug"
)

const (
	// ANSI color codes
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"

	// Combined styles
	styleBoldCyan   = "\033[1;36m"
	styleBoldGreen  = "\033[1;32m"
	styleBoldYellow = "\033[1;33m"
	styleBoldRed    = "\033[1;31m"
	styleBoldWhite  = "\033[1;37m"
)

var rootCmd = &cobra.Command{
	Use:   "promptarena",
	Short: "Prompt engineering battles in the terminal",
	Long: colorBold + `
  ___                     _      _
 | _ \_ _ ___ _ __  _ __ | |_   /_\  _ _ ___ _ _  __ _
 |  _/ '_/ _ \ '  \| '_ \|  _| / _ \| '_/ -_) ' \/ _` + "`" + ` |
 |_| |_| \___/_|_|_| .__/ \__|/_/ \_\_| \___|_||_\__,_|
                   |_|` + colorReset + `

  ` + styleBoldCyan + `Prompt Arena` + colorReset + ` v` + buildinfo.Current().Version + `

  Timed prompt-crafting rounds scored by an evaluator model, with XP,
  levels, achievements and a shared leaderboard.

  Run ` + styleBoldWhite + `promptarena` + colorReset + ` in a terminal to play, or ` + styleBoldWhite + `promptarena profile create` + colorReset + ` to get started.

` + colorBold + `Getting Started:` + colorReset + `
  promptarena profile create --username ada --avatar robot
  promptarena battle                     Play a timed round
  promptarena play --file prompt.txt     Score a prompt in one shot
  promptarena levels                     Show level progress
  promptarena leaderboard                Show standings
  promptarena serve                      Start the web arena

` + colorBold + `Configuration:` + colorReset + `
  Set PROMPTARENA_API_KEY (or OPENAI_API_KEY) to score with a model.
  Without a key, rounds are scored by the offline heuristic.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			return cmd.Help()
		}
		return runBattle(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.PersistentFlags().Bool("debug", false, "Enable verbose debug logging to ~/.promptarena/debug/")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		debugFlag, _ := cmd.Flags().GetBool("debug")
		if !debugFlag && !debug.ShouldEnableFromEnv() {
			return nil
		}
		logPath, err := debug.Init()
		if err != nil {
			return fmt.Errorf("initializing debug logger: %w", err)
		}
		fmt.Fprintf(os.Stderr, "%s[debug]%s logging to %s\n", colorDim, colorReset, logPath)
		bi := buildinfo.Current()
		debug.LogKV("cli", "promptarena starting",
			"version", bi.Version,
			"commit", bi.CommitHash,
			"build_date", bi.BuildDate,
			"pid", os.Getpid(),
			"command", cmd.Name(),
			"args", args,
		)
		return nil
	}
}

// Execute runs the root command.
func Execute() {
	defer debug.Close()
	if err := rootCmd.Execute(); err != nil {
		debug.Logf("cli", "exit with error: %v", err)
		fmt.Fprintf(os.Stderr, "%sError: %s%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	debug.Logf("cli", "exit success")
}
