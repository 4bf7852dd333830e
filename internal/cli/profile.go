package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/profile"
	"github.com/agusx1211/promptarena/internal/progression"
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"me", "player"},
	Short:   "Manage your player profile",
	Long: `Create, show, edit, and reset your player profile.

A profile holds your username, avatar, team, XP, battle counters, unlocked
achievements, and power-up charges. Usernames cannot be changed after
creation; reset the profile to start over.

Examples:
  promptarena profile create --username ada --avatar robot --team "Core"
  promptarena profile show
  promptarena profile edit --team "Platform"
  promptarena profile reset --yes`,
	RunE: runProfileShow,
}

var profileCreateCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"new", "init"},
	Short:   "Create your profile",
	RunE:    runProfileCreate,
}

var profileShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"get", "view"},
	Short:   "Show your profile",
	RunE:    runProfileShow,
}

var profileEditCmd = &cobra.Command{
	Use:     "edit",
	Aliases: []string{"update", "set"},
	Short:   "Change your avatar or team",
	RunE:    runProfileEdit,
}

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete your profile, history, and local leaderboard",
	RunE:  runProfileReset,
}

func init() {
	profileCreateCmd.Flags().String("username", "", "Username, 1-20 characters (required)")
	profileCreateCmd.Flags().String("avatar", "", "Avatar id (see `profile create --list-avatars`)")
	profileCreateCmd.Flags().String("team", "", "Team name")
	profileCreateCmd.Flags().Bool("list-avatars", false, "List available avatars and exit")

	profileEditCmd.Flags().String("avatar", "", "New avatar id")
	profileEditCmd.Flags().String("team", "", "New team name")

	profileResetCmd.Flags().Bool("yes", false, "Confirm the reset")

	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profileResetCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	if list, _ := cmd.Flags().GetBool("list-avatars"); list {
		printAvatars(a.catalog)
		return nil
	}
	if a.session.Profile() != nil {
		return fmt.Errorf("a profile already exists (run 'promptarena profile reset' to start over)")
	}

	username, _ := cmd.Flags().GetString("username")
	avatarID, _ := cmd.Flags().GetString("avatar")
	team, _ := cmd.Flags().GetString("team")
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("--username is required")
	}
	avatar, err := resolveAvatar(a.catalog, avatarID)
	if err != nil {
		return err
	}

	p, err := profile.New(username, avatar.ID, avatar.URL, team, a.now())
	if err != nil {
		return err
	}
	if err := a.engine.Profiles.Save(p); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	fmt.Println()
	fmt.Printf("  %sProfile created.%s Welcome to the arena, %s!\n", styleBoldGreen, colorReset, p.Username)
	printField("Avatar", avatar.Icon+" "+avatar.Name)
	if p.TeamName != "" {
		printField("Team", p.TeamName)
	}
	printField("Level", levelLabel(p.XP))
	fmt.Printf("\n  Run %spromptarena tutorial%s for a walkthrough, or %spromptarena battle%s to play.\n\n",
		styleBoldWhite, colorReset, styleBoldWhite, colorReset)
	return nil
}

// resolveAvatar looks up id, defaulting to the first avatar when empty.
func resolveAvatar(cat *catalog.Catalog, id string) (catalog.Avatar, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		if len(cat.Avatars) == 0 {
			return catalog.Avatar{}, nil
		}
		return cat.Avatars[0], nil
	}
	if av, ok := cat.Avatar(id); ok {
		return av, nil
	}
	ids := make([]string, 0, len(cat.Avatars))
	for _, av := range cat.Avatars {
		ids = append(ids, av.ID)
	}
	return catalog.Avatar{}, fmt.Errorf("unknown avatar %q (choose one of: %s)", id, strings.Join(ids, ", "))
}

func printAvatars(cat *catalog.Catalog) {
	printHeader("Avatars")
	var rows [][]string
	for _, av := range cat.Avatars {
		rows = append(rows, []string{av.ID, av.Icon, av.Name})
	}
	printTable([]string{"ID", "", "NAME"}, rows)
	fmt.Println()
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	p, err := a.requireProfile()
	if err != nil {
		return err
	}

	info := progression.LevelForXP(p.XP)
	printHeader("Profile: " + p.Username)
	avatar := p.AvatarID
	if av, ok := a.catalog.Avatar(p.AvatarID); ok {
		avatar = av.Icon + " " + av.Name
	}
	printField("Avatar", avatar)
	if p.TeamName != "" {
		printField("Team", p.TeamName)
	}
	printFieldColored("Level", levelLabel(p.XP), styleBoldYellow)
	printField("XP", fmt.Sprintf("%d  %s %d to next", p.XP, progressBar(info.Progress, 20), info.XPToNext))
	printField("Battles", fmt.Sprintf("%d (%d wins, %.0f%%)", p.TotalBattles, p.TotalWins, p.WinRate()*100))
	printField("Perfect scores", fmt.Sprintf("%d", p.PerfectScores))
	printFieldColored("Best score", formatScore(p.BestScore), scoreColor(p.BestScore))
	printField("Streak", fmt.Sprintf("%d (longest %d)", p.CurrentStreak, p.LongestStreak))
	printField("Achievements", fmt.Sprintf("%d/%d", len(p.UnlockedAchievements), len(progression.Achievements)))
	printField("Created", p.CreatedAt.Local().Format("2006-01-02 15:04"))

	if recent := progression.RecentAchievements(p, 3); len(recent) > 0 {
		var names []string
		for _, ach := range recent {
			names = append(names, ach.Icon+" "+ach.Name)
		}
		printList("Recent achievements", names)
	}
	fmt.Println()
	return nil
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	p, err := a.requireProfile()
	if err != nil {
		return err
	}

	var req profile.EditRequest
	if cmd.Flags().Changed("avatar") {
		id, _ := cmd.Flags().GetString("avatar")
		av, err := resolveAvatar(a.catalog, id)
		if err != nil {
			return err
		}
		req.AvatarID, req.AvatarURL = &av.ID, &av.URL
	}
	if cmd.Flags().Changed("team") {
		team, _ := cmd.Flags().GetString("team")
		req.TeamName = &team
	}
	if req.AvatarID == nil && req.TeamName == nil {
		return fmt.Errorf("no fields to update (use --avatar or --team)")
	}

	if err := p.Edit(req); err != nil {
		return err
	}
	if err := a.engine.Profiles.Save(p); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	fmt.Println()
	fmt.Printf("  %sProfile updated.%s\n", styleBoldGreen, colorReset)
	printField("Avatar", p.AvatarID)
	printField("Team", p.TeamName)
	fmt.Println()
	return nil
}

func runProfileReset(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		return fmt.Errorf("this deletes your profile, history, and local leaderboard; rerun with --yes to confirm")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	if err := a.engine.Profiles.Reset(); err != nil && !errors.Is(err, profile.ErrNoProfile) {
		return fmt.Errorf("resetting profile: %w", err)
	}
	fmt.Printf("\n  %sProfile reset.%s All local progress was deleted.\n\n", styleBoldYellow, colorReset)
	return nil
}

// levelLabel renders "3 - Prompt Specialist".
func levelLabel(xp int) string {
	info := progression.LevelForXP(xp)
	return fmt.Sprintf("%d - %s", info.Level, info.Name)
}
