package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agusx1211/promptarena/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bi := buildinfo.Current()
		fmt.Fprintf(cmd.OutOrStdout(), "promptarena %s\n", bi)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
