package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agusx1211/promptarena/internal/history"
	"github.com/agusx1211/promptarena/internal/progression"
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"battles", "log"},
	Short:   "List recent battles",
	Long: `List your most recent battles, newest first. Only the last 50 battles
are kept.

Examples:
  promptarena history
  promptarena history --limit 25
  promptarena history show battle_1777626005000`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <battle-id>",
	Short: "Show one battle with its prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var levelsCmd = &cobra.Command{
	Use:     "levels",
	Aliases: []string{"level", "xp"},
	Short:   "Show the level table and your progress",
	RunE:    runLevels,
}

var achievementsCmd = &cobra.Command{
	Use:     "achievements",
	Aliases: []string{"ach", "badges"},
	Short:   "List achievements and which you have unlocked",
	RunE:    runAchievements,
}

var powerupsCmd = &cobra.Command{
	Use:     "powerups",
	Aliases: []string{"powerup", "pu"},
	Short:   "List power-ups and your charges",
	Long: `List power-ups and your remaining charges. Charges are granted when you
level up and are spent from the battle screen (F1-F4).`,
	RunE: runPowerUps,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 10, "Number of battles to show")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(powerupsCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	all := a.engine.History.Battles()
	battles := history.List(all, limit)

	printHeader("Battle History")
	if len(battles) == 0 {
		fmt.Printf("  %sNo battles yet.%s\n\n", colorDim, colorReset)
		return nil
	}
	var rows [][]string
	for _, b := range battles {
		rows = append(rows, []string{
			b.ID,
			b.Date.Local().Format("2006-01-02 15:04"),
			truncate(b.ScenarioTitle, 32),
			scoreColor(b.Score) + formatScore(b.Score) + colorReset,
			fmt.Sprintf("+%d", b.XPEarned),
			fmt.Sprintf("%ds", b.TimeTaken),
		})
	}
	printTable([]string{"ID", "DATE", "SCENARIO", "SCORE", "XP", "TIME"}, rows)
	fmt.Printf("\n  %sShowing %d of %d battle(s)%s\n\n", colorDim, len(battles), len(all), colorReset)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	for _, b := range a.engine.History.Battles() {
		if b.ID != args[0] {
			continue
		}
		printHeader("Battle: " + b.ScenarioTitle)
		printField("ID", b.ID)
		printField("Scenario", b.ScenarioID)
		printField("Date", b.Date.Local().Format("2006-01-02 15:04:05"))
		printFieldColored("Score", formatScore(b.Score), scoreColor(b.Score))
		printField("XP earned", fmt.Sprintf("+%d", b.XPEarned))
		printField("Time", fmt.Sprintf("%ds", b.TimeTaken))
		printList("Criteria", b.ScenarioCriteria)

		fmt.Printf("\n  %sPrompt%s\n", colorBold, colorReset)
		fmt.Println(colorDim + "  " + strings.Repeat("-", 60) + colorReset)
		for _, line := range strings.Split(b.Prompt, "\n") {
			fmt.Printf("  %s\n", line)
		}
		fmt.Println()
		return nil
	}
	return fmt.Errorf("battle %q not found", args[0])
}

func runLevels(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	xp := -1
	if p := a.session.Profile(); p != nil {
		xp = p.XP
	}

	printHeader("Levels")
	current := 0
	if xp >= 0 {
		current = progression.LevelForXP(xp).Level
	}
	var rows [][]string
	for _, lv := range progression.Levels {
		marker := ""
		if lv.Level == current {
			marker = styleBoldYellow + "<- you" + colorReset
		}
		rows = append(rows, []string{fmt.Sprintf("%d", lv.Level), lv.Name, fmt.Sprintf("%d", lv.XPRequired), marker})
	}
	printTable([]string{"LEVEL", "NAME", "XP", ""}, rows)

	if xp >= 0 {
		info := progression.LevelForXP(xp)
		fmt.Println()
		printField("XP", fmt.Sprintf("%d", xp))
		printField("Progress", fmt.Sprintf("%s %.0f%%", progressBar(info.Progress, 24), info.Progress*100))
		printField("Next level at", fmt.Sprintf("%d XP (%d to go)", info.XPForNextLevel, info.XPToNext))
	}
	fmt.Println()
	return nil
}

func runAchievements(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	p := a.session.Profile()

	printHeader("Achievements")
	var rows [][]string
	unlocked := 0
	for _, ach := range progression.Achievements {
		status := colorDim + "locked" + colorReset
		if p != nil && p.HasAchievement(ach.ID) {
			status = colorGreen + "unlocked" + colorReset
			unlocked++
		}
		rows = append(rows, []string{ach.Icon, ach.Name, ach.Description, status})
	}
	printTable([]string{"", "NAME", "DESCRIPTION", "STATUS"}, rows)
	fmt.Printf("\n  %s%d/%d unlocked%s\n\n", colorDim, unlocked, len(progression.Achievements), colorReset)
	return nil
}

// powerUpKeys are the battle screen bindings.
var powerUpKeys = map[string]string{
	progression.PowerUpHint:             "F1",
	progression.PowerUpTimeExtension:    "F2",
	progression.PowerUpPeerReview:       "F3",
	progression.PowerUpDoubleSubmission: "F4",
}

func runPowerUps(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	p := a.session.Profile()

	printHeader("Power-ups")
	var rows [][]string
	for _, pu := range progression.PowerUps {
		charges := 0
		if p != nil {
			charges = p.PowerUps[pu.ID]
		}
		rows = append(rows, []string{
			powerUpKeys[pu.ID],
			pu.ID,
			pu.Name,
			pu.Description,
			fmt.Sprintf("%d", charges),
		})
	}
	printTable([]string{"KEY", "ID", "NAME", "EFFECT", "CHARGES"}, rows)
	fmt.Println()
	return nil
}
