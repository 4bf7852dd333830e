package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agusx1211/promptarena/internal/leaderboard"
)

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"lb", "rank", "ranking"},
	Short:   "Show and exchange the leaderboard",
	Long: `Show standings and exchange them with other players.

The local board is updated after every battle. Boards can be exchanged as
JSON files (import/export, or the shared file in leaderboard.file) or
through an S3-compatible bucket (push/pull, see leaderboard.bucket).

Examples:
  promptarena leaderboard
  promptarena leaderboard sync
  promptarena leaderboard export
  promptarena leaderboard import team_leaderboard.json
  promptarena leaderboard push`,
	RunE: runLeaderboardShow,
}

var leaderboardShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list", "ls"},
	Short:   "Show standings",
	RunE:    runLeaderboardShow,
}

var leaderboardSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Write your current stats into the local and shared boards",
	RunE:  runLeaderboardSync,
}

var leaderboardImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge a board file into the local board",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeaderboardImport,
}

var leaderboardExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the local board to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLeaderboardExport,
}

var leaderboardPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Merge the local board into the remote bucket",
	RunE:  runLeaderboardPush,
}

var leaderboardPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Merge the remote bucket into the local board",
	RunE:  runLeaderboardPull,
}

func init() {
	for _, c := range []*cobra.Command{leaderboardCmd, leaderboardShowCmd} {
		c.Flags().IntP("limit", "n", 10, "Number of entries to show (0 = all)")
		c.Flags().Bool("shared", false, "Include the shared leaderboard file")
	}

	leaderboardCmd.AddCommand(leaderboardShowCmd)
	leaderboardCmd.AddCommand(leaderboardSyncCmd)
	leaderboardCmd.AddCommand(leaderboardImportCmd)
	leaderboardCmd.AddCommand(leaderboardExportCmd)
	leaderboardCmd.AddCommand(leaderboardPushCmd)
	leaderboardCmd.AddCommand(leaderboardPullCmd)
	rootCmd.AddCommand(leaderboardCmd)
}

func runLeaderboardShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	board := leaderboard.Load(a.kv)
	if shared, _ := cmd.Flags().GetBool("shared"); shared {
		path := strings.TrimSpace(a.cfg.Leaderboard.SharedFile)
		if path == "" {
			return fmt.Errorf("no shared leaderboard file configured (set leaderboard.file)")
		}
		other, err := leaderboard.LoadFile(path)
		if err != nil {
			return err
		}
		board = leaderboard.Merge(board, other)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	username := ""
	if p := a.session.Profile(); p != nil {
		username = p.Username
	}
	printBoard(board, limit, username)
	return nil
}

// printBoard renders the top entries, highlighting username.
func printBoard(b leaderboard.Board, limit int, username string) {
	printHeader("Leaderboard")
	if len(b.Entries) == 0 {
		fmt.Printf("  %sNo entries yet. Play a battle to get on the board.%s\n\n", colorDim, colorReset)
		return
	}
	self := leaderboard.Key(username)
	var rows [][]string
	for i, e := range b.Top(limit) {
		name := e.Username
		if username != "" && leaderboard.Key(e.Username) == self {
			name = styleBoldYellow + name + colorReset
		}
		rows = append(rows, []string{
			fmt.Sprintf("#%d", i+1),
			name,
			truncate(e.TeamName, 20),
			fmt.Sprintf("%d", e.Level),
			fmt.Sprintf("%d", e.XP),
			fmt.Sprintf("%d/%d", e.TotalWins, e.TotalBattles),
			formatScore(e.BestScore),
		})
	}
	printTable([]string{"RANK", "PLAYER", "TEAM", "LEVEL", "XP", "WINS", "BEST"}, rows)
	if rank := b.Rank(username); username != "" && rank > 0 {
		fmt.Printf("\n  %sYour rank: #%d of %d%s\n", colorDim, rank, len(b.Entries), colorReset)
	}
	fmt.Println()
}

func runLeaderboardSync(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	p, err := a.requireProfile()
	if err != nil {
		return err
	}
	board := leaderboard.Load(a.kv)
	board.Sync(p, a.now())
	if err := leaderboard.Save(a.kv, board); err != nil {
		return fmt.Errorf("saving leaderboard: %w", err)
	}
	fmt.Printf("\n  %sLocal board updated.%s Rank #%d of %d\n", styleBoldGreen, colorReset, board.Rank(p.Username), len(board.Entries))

	if path := strings.TrimSpace(a.cfg.Leaderboard.SharedFile); path != "" {
		shared, err := leaderboard.LoadFile(path)
		if err != nil {
			return err
		}
		shared.Sync(p, a.now())
		if err := leaderboard.SaveFile(path, shared); err != nil {
			return err
		}
		fmt.Printf("  %sShared board updated:%s %s\n", styleBoldGreen, colorReset, path)
	}
	fmt.Println()
	return nil
}

func runLeaderboardImport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	other, err := leaderboard.LoadFile(args[0])
	if err != nil {
		return err
	}
	merged := leaderboard.Merge(leaderboard.Load(a.kv), other)
	if err := leaderboard.Save(a.kv, merged); err != nil {
		return fmt.Errorf("saving leaderboard: %w", err)
	}
	fmt.Printf("\n  %sImported %d entries.%s Board now has %d player(s).\n\n", styleBoldGreen, len(other.Entries), colorReset, len(merged.Entries))
	return nil
}

func runLeaderboardExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		label := "promptarena"
		if p := a.session.Profile(); p != nil && p.TeamName != "" {
			label = p.TeamName
		}
		path = leaderboard.ExportFileName(label, a.now())
	}
	board := leaderboard.Load(a.kv)
	if err := leaderboard.SaveFile(path, board); err != nil {
		return err
	}
	fmt.Printf("\n  %sExported %d entries%s to %s\n\n", styleBoldGreen, len(board.Entries), colorReset, path)
	return nil
}

func runLeaderboardPush(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	remote, err := leaderboard.OpenRemote(ctx, a.cfg.Leaderboard)
	if err != nil {
		return err
	}
	board := leaderboard.Load(a.kv)
	if p := a.session.Profile(); p != nil {
		board.Sync(p, a.now())
	}
	merged, err := remote.Push(ctx, board)
	if err != nil {
		return err
	}
	if err := leaderboard.Save(a.kv, merged); err != nil {
		fmt.Printf("%sWarning: saving local leaderboard: %v%s\n", colorYellow, err, colorReset)
	}
	fmt.Printf("\n  %sPushed.%s Remote board has %d player(s).\n\n", styleBoldGreen, colorReset, len(merged.Entries))
	return nil
}

func runLeaderboardPull(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	remote, err := leaderboard.OpenRemote(ctx, a.cfg.Leaderboard)
	if err != nil {
		return err
	}
	pulled, err := remote.Pull(ctx)
	if err != nil {
		return err
	}
	merged := leaderboard.Merge(leaderboard.Load(a.kv), pulled)
	if err := leaderboard.Save(a.kv, merged); err != nil {
		return fmt.Errorf("saving leaderboard: %w", err)
	}
	username := ""
	if p := a.session.Profile(); p != nil {
		username = p.Username
	}
	printBoard(merged, 10, username)
	return nil
}
