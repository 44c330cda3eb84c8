// Package cli implements the specmodel command line.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("specmodel.cli")

var (
	cfgFile   string
	verbosity int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "specmodel",
	Short: "Extract an object model from specification documents",
	Long: `specmodel reads the text of specification documents (word-position dumps or
pre-rendered text), recognizes class, enumeration and primitive definitions,
and assembles them into one package tree with a resolved inheritance hierarchy.

Configuration is read from .specmodel/config.yml in the working directory,
overridden by SPECMODEL_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(verbosity)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .specmodel/config.yml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "verbose output (repeat for debug)")
}

// configureLogging maps the -v count onto commonlog levels: notices and
// warnings by default, info with -v, debug with -vv.
func configureLogging(count int) {
	commonlog.Configure(count, nil)
}
