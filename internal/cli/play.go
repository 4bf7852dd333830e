package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agusx1211/promptarena/internal/battle"
	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/evaluator"
	"github.com/agusx1211/promptarena/internal/progression"
	"github.com/agusx1211/promptarena/internal/prompt"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Score a prompt against a scenario in one shot",
	Long: `Play a single round without the timer: the prompt is validated, scored,
executed against the scenario data, and recorded like any other battle.

The prompt can be given inline, read from a file, or piped on stdin.

Examples:
  promptarena play --scenario email-summary --file prompt.txt
  promptarena play --prompt "You are an analyst. Summarize..." --time 95
  cat prompt.txt | promptarena play --file -
  promptarena play --list`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringP("scenario", "s", "", "Scenario id (random when empty)")
	playCmd.Flags().StringP("prompt", "p", "", "Prompt text (inline)")
	playCmd.Flags().StringP("file", "f", "", "Read the prompt from a file (use '-' for stdin)")
	playCmd.Flags().Int("time", 0, "Seconds spent crafting, recorded in history")
	playCmd.Flags().Bool("json", false, "Print the outcome as JSON")
	playCmd.Flags().Bool("list", false, "List scenarios and exit")
	rootCmd.AddCommand(playCmd)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runPlay(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	if list, _ := cmd.Flags().GetBool("list"); list {
		printScenarios(a.catalog)
		return nil
	}
	if _, err := a.requireProfile(); err != nil {
		return err
	}

	inline, _ := cmd.Flags().GetString("prompt")
	file, _ := cmd.Flags().GetString("file")
	text, err := resolveTextFlag(inline, file)
	if err != nil {
		return fmt.Errorf("resolving prompt: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("provide a prompt via --prompt or --file")
	}

	scenarioID, _ := cmd.Flags().GetString("scenario")
	secs, _ := cmd.Flags().GetInt("time")
	out, err := a.engine.Play(commandContext(cmd), a.session, scenarioID, text, time.Duration(max(secs, 0))*time.Second)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printOutcome(out)
	return nil
}

func printScenarios(cat *catalog.Catalog) {
	printHeader("Scenarios")
	var rows [][]string
	for _, sc := range cat.Scenarios {
		rows = append(rows, []string{sc.ID, truncate(sc.Title, 40), sc.Category, sc.Difficulty})
	}
	printTable([]string{"ID", "TITLE", "CATEGORY", "DIFFICULTY"}, rows)
	fmt.Printf("\n  %sTotal: %d scenario(s)%s\n\n", colorDim, len(cat.Scenarios), colorReset)
}

// printOutcome renders a resolved round.
func printOutcome(out *battle.Outcome) {
	rec := out.Record
	printHeader("Battle: " + rec.ScenarioTitle)
	verdict := "Defeat"
	if out.Win {
		verdict = "Victory"
	}
	printFieldColored("Result", verdict, scoreColor(out.Score))
	printFieldColored("Score", formatScore(out.Score), scoreColor(out.Score))
	printField("XP earned", fmt.Sprintf("+%d", out.XPEarned))
	if out.LeveledUp() {
		printFieldColored("Level up", fmt.Sprintf("%d -> %d", out.OldLevel, out.NewLevel), styleBoldYellow)
	}
	printField("Time", fmt.Sprintf("%ds", rec.TimeTaken))
	printField("Battle ID", rec.ID)
	if out.Rank > 0 {
		printField("Rank", fmt.Sprintf("#%d", out.Rank))
	}

	printEvaluation(out.Evaluation)

	for _, ach := range out.NewAchievements {
		fmt.Printf("\n  %sAchievement unlocked:%s %s %s - %s", styleBoldYellow, colorReset, ach.Icon, ach.Name, ach.Description)
	}
	for _, id := range out.GrantedPowerUps {
		name := id
		if pu, ok := progression.FindPowerUp(id); ok {
			name = pu.Name
		}
		fmt.Printf("\n  %sPower-up granted:%s %s", styleBoldCyan, colorReset, name)
	}
	if len(out.NewAchievements) > 0 || len(out.GrantedPowerUps) > 0 {
		fmt.Println()
	}

	if output := strings.TrimSpace(out.Execution.Output); output != "" {
		fmt.Printf("\n  %sModel output%s\n", colorBold, colorReset)
		fmt.Println(colorDim + "  " + strings.Repeat("-", 60) + colorReset)
		for _, line := range strings.Split(truncate(output, 1200), "\n") {
			fmt.Printf("  %s\n", line)
		}
	}
	for _, w := range out.Warnings {
		fmt.Fprintf(os.Stderr, "%sWarning: %s%s\n", colorYellow, w, colorReset)
	}
	fmt.Println()
}

func printEvaluation(r evaluator.Result) {
	fmt.Printf("\n  %sBreakdown%s", colorBold, colorReset)
	if r.Source == evaluator.SourceHeuristic {
		fmt.Printf(" %s(offline heuristic)%s", colorDim, colorReset)
	}
	if r.Adjusted {
		fmt.Printf(" %s(out-of-range scores clamped)%s", colorYellow, colorReset)
	}
	fmt.Println()
	printField("AI evaluation", fmt.Sprintf("%.1f/4", r.Scores.AIEvaluation))
	printField("Format", fmt.Sprintf("%.1f/2", r.Scores.FormatQuality))
	printField("Efficiency", fmt.Sprintf("%.1f/2", r.Scores.Efficiency))
	printField("Accuracy", fmt.Sprintf("%.1f/2", r.Scores.TechnicalAccuracy))
	printList("Strengths", r.Feedback.Strengths)
	printList("Improvements", r.Feedback.Improvements)
	printList("Tips", r.Feedback.Tips)
}

// printStats renders length and token figures for a draft.
func printStats(s prompt.Stats, l prompt.Limits) {
	printField("Length", fmt.Sprintf("%d chars (%d-%d)", s.Chars, l.Min, l.Max))
	printField("Words", fmt.Sprintf("%d", s.Words))
	printField("Est. tokens", fmt.Sprintf("%d", s.Tokens))
}
