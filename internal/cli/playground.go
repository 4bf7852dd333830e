package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agusx1211/promptarena/internal/evaluator"
	"github.com/agusx1211/promptarena/internal/history"
	"github.com/agusx1211/promptarena/internal/ids"
	"github.com/agusx1211/promptarena/internal/llm"
	"github.com/agusx1211/promptarena/internal/prompt"
)

var playgroundCmd = &cobra.Command{
	Use:     "playground",
	Aliases: []string{"pg"},
	Short:   "Get feedback on prompts outside of battles",
	Long: `Review standalone prompts without affecting your profile. Reviews list
strengths, improvements, and recommendations, and may suggest a rewritten
prompt. The last 20 reviews are kept.

Examples:
  promptarena playground review --file prompt.txt --context "support inbox triage"
  promptarena playground history`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var playgroundReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a prompt",
	RunE:  runPlaygroundReview,
}

var playgroundHistoryCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"list", "ls"},
	Short:   "List recent reviews",
	RunE:    runPlaygroundHistory,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Ask the model for a short analysis of a prompt",
	Long: `Send a prompt to the configured model for a brief written analysis.
Unlike playground reviews, analysis needs an API key and is not saved.`,
	RunE: runAnalyze,
}

func init() {
	for _, c := range []*cobra.Command{playgroundReviewCmd, analyzeCmd} {
		c.Flags().StringP("prompt", "p", "", "Prompt text (inline)")
		c.Flags().StringP("file", "f", "", "Read the prompt from a file (use '-' for stdin)")
	}
	playgroundReviewCmd.Flags().String("context", "", "What the prompt is for")
	playgroundHistoryCmd.Flags().IntP("limit", "n", history.MaxReviews, "Number of reviews to show")

	playgroundCmd.AddCommand(playgroundReviewCmd)
	playgroundCmd.AddCommand(playgroundHistoryCmd)
	rootCmd.AddCommand(playgroundCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// promptFromFlags reads --prompt or --file.
func promptFromFlags(cmd *cobra.Command) (string, error) {
	inline, _ := cmd.Flags().GetString("prompt")
	file, _ := cmd.Flags().GetString("file")
	text, err := resolveTextFlag(inline, file)
	if err != nil {
		return "", fmt.Errorf("resolving prompt: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("provide a prompt via --prompt or --file")
	}
	return text, nil
}

func runPlaygroundReview(cmd *cobra.Command, args []string) error {
	text, err := promptFromFlags(cmd)
	if err != nil {
		return err
	}
	background, _ := cmd.Flags().GetString("context")
	a, err := openApp()
	if err != nil {
		return err
	}

	rev := a.engine.Evaluator.Review(commandContext(cmd), text, background)
	now := a.now()
	score := rev.QualityScore
	entry := history.Review{
		ID:      ids.Review(now),
		Prompt:  text,
		Context: strings.TrimSpace(background),
		Score:   &score,
		Date:    now.UTC(),
	}
	if _, err := a.engine.History.AddReview(entry); err != nil {
		fmt.Printf("%sWarning: review not saved: %v%s\n", colorYellow, err, colorReset)
	}

	printReview(entry.ID, rev)
	return nil
}

func printReview(id string, rev evaluator.Review) {
	printHeader("Prompt Review")
	printField("ID", id)
	label := rev.QualityLabel
	if label == "" {
		label = evaluator.QualityLabel(rev.QualityScore)
	}
	printFieldColored("Quality", fmt.Sprintf("%s (%s)", formatScore(rev.QualityScore), label), scoreColor(rev.QualityScore))
	if rev.Source == evaluator.SourceHeuristic {
		printField("Reviewer", "offline heuristic")
	}
	printList("Strengths", rev.Strengths)
	printList("Improvements", rev.Improvements)
	printList("Recommendations", rev.Recommendations)
	if improved := strings.TrimSpace(rev.ImprovedVersion); improved != "" {
		fmt.Printf("\n  %sSuggested rewrite%s\n", colorBold, colorReset)
		fmt.Println(colorDim + "  " + strings.Repeat("-", 60) + colorReset)
		for _, line := range strings.Split(improved, "\n") {
			fmt.Printf("  %s\n", line)
		}
	}
	fmt.Println()
}

func runPlaygroundHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	reviews := history.ListReviews(a.engine.History.Reviews(), limit)

	printHeader("Playground Reviews")
	if len(reviews) == 0 {
		fmt.Printf("  %sNo reviews yet.%s\n\n", colorDim, colorReset)
		return nil
	}
	var rows [][]string
	for _, r := range reviews {
		score := "-"
		if r.Score != nil {
			score = scoreColor(*r.Score) + formatScore(*r.Score) + colorReset
		}
		rows = append(rows, []string{
			r.ID,
			r.Date.Local().Format("2006-01-02 15:04"),
			score,
			truncate(firstLine(r.Prompt), 48),
		})
	}
	printTable([]string{"ID", "DATE", "SCORE", "PROMPT"}, rows)
	fmt.Println()
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := promptFromFlags(cmd)
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}

	analysis, err := a.engine.Evaluator.Analyze(commandContext(cmd), text)
	if err != nil {
		if errors.Is(err, llm.ErrNoAPIKey) {
			return fmt.Errorf("analysis needs a model: %w", err)
		}
		return fmt.Errorf("analyzing prompt: %w", err)
	}

	printHeader("Prompt Analysis")
	printStats(prompt.Measure(text), a.engine.Limits)
	fmt.Println()
	for _, line := range strings.Split(analysis, "\n") {
		fmt.Printf("  %s\n", line)
	}
	fmt.Println()
	return nil
}
