package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/agusx1211/promptarena/internal/tui"
)

var battleCmd = &cobra.Command{
	Use:     "battle",
	Aliases: []string{"tui", "arena"},
	Short:   "Play timed rounds in the interactive terminal UI",
	Long: `Opens the full-screen arena. Each round shows the scenario briefing,
then gives you the crafting window to write and submit a prompt before the
clock runs out. New players are taken through profile creation first.`,
	RunE: runBattle,
}

func init() {
	rootCmd.AddCommand(battleCmd)
}

func runBattle(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("battle needs an interactive terminal (use 'promptarena play' for scripted rounds)")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.session.Close()
	return tui.Run(tui.Deps{
		Engine:  a.engine,
		Session: a.session,
		Catalog: a.catalog,
		Rand:    a.engine.Rand,
		Now:     a.now,
	})
}
