package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agusx1211/promptarena/internal/catalog"
)

var tipsCmd = &cobra.Command{
	Use:     "tips",
	Aliases: []string{"tip"},
	Short:   "Show prompt engineering tips",
	RunE:    runTips,
}

var tutorialCmd = &cobra.Command{
	Use:     "tutorial",
	Aliases: []string{"howto", "guide"},
	Short:   "Walk through how a battle works",
	RunE:    runTutorial,
}

func init() {
	tipsCmd.Flags().Bool("all", false, "Show every tip instead of a random one")
	rootCmd.AddCommand(tipsCmd)
	rootCmd.AddCommand(tutorialCmd)
}

func runTips(cmd *cobra.Command, args []string) error {
	if all, _ := cmd.Flags().GetBool("all"); all {
		printHeader("Tips")
		for i, tip := range catalog.Tips {
			fmt.Printf("  %s%2d.%s %s\n", colorBold, i+1, colorReset, tip)
		}
		fmt.Println()
		return nil
	}
	fmt.Printf("\n  %sTip:%s %s\n\n", styleBoldCyan, colorReset, catalog.Tip(nil))
	return nil
}

func runTutorial(cmd *cobra.Command, args []string) error {
	printHeader("How to Play")
	for i, step := range catalog.Tutorial {
		fmt.Printf("\n  %s%d. %s%s\n", styleBoldWhite, i+1, step.Title, colorReset)
		fmt.Printf("     %s\n", step.Content)
	}
	fmt.Println()
	return nil
}
