package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/provscan/provscan/cmd/comment"
	"github.com/provscan/provscan/cmd/report"
	"github.com/provscan/provscan/cmd/scan"
	"github.com/provscan/provscan/cmd/upload"
	"github.com/provscan/provscan/cmd/version"
	"github.com/provscan/provscan/pkg/shared/config"
	"github.com/provscan/provscan/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "provscan [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Provscan verifies provenance and citation compliance of computational codebases.",
		Long: `Provscan is a compliance scanner for computational-science codebases.
	It extracts functions, docstrings and module-level constants from source
	trees, evaluates a configurable rule set against them, and aggregates the
	violations into a deterministic verdict report for CI gating.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(report.ReportCmd)
	rootCmd.AddCommand(comment.CommentCmd)
	rootCmd.AddCommand(upload.UploadCmd)
}

// Execute runs the CLI and returns the process exit code. Compliance
// verdicts carry their own exit codes so CI can tell a rejection (2, or 3
// for conditional in strict mode) from an internal tool failure (1).
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		var cmdErr *errors.CommandError
		if stderrors.As(err, &cmdErr) {
			return cmdErr.ExitCode
		}
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize config: %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	scan.Init(AppConfig)
	report.Init(AppConfig)
	comment.Init(AppConfig)
	upload.Init(AppConfig)
}
