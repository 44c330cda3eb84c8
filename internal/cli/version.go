package cli

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/specmodel/internal/export"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

var shortVersion bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and snapshot format versions",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if shortVersion {
			fmt.Fprintln(out, Version)
			return
		}
		fmt.Fprintf(out, "specmodel %s\n", color.New(color.FgGreen, color.Bold).Sprint(Version))
		for _, row := range [][2]string{
			{"Git commit", GitCommit},
			{"Build date", BuildDate},
			{"Go", runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH},
			{"Snapshot format", export.FormatVersion},
		} {
			fmt.Fprintf(out, "%-16s %s\n", row[0]+":", row[1])
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&shortVersion, "short", false, "Print only the version number")
}
