package report

import (
	"fmt"

	"github.com/spf13/cobra"

	internalreport "github.com/provscan/provscan/internal/report"
	"github.com/provscan/provscan/pkg/shared/config"
	"github.com/provscan/provscan/pkg/shared/errors"
	"github.com/provscan/provscan/pkg/shared/logger"
)

// RunOptionsReport holds the arguments for the report command.
type RunOptionsReport struct {
	InputFile  string
	Format     string
	OutputPath string
	Strict     bool
}

var (
	AppConfig          *config.Config
	reportOptions      RunOptionsReport
	exampleReportUsage = `  # Printing the summary of a saved report
  provscan report --input report.json

  # Converting a saved report to SARIF
  provscan report --input report.json --format sarif --output report.sarif

  # Gating a CI stage on a previously produced report
  provscan report --input report.json --strict`
)

// ReportCmd represents the report command.
var ReportCmd = &cobra.Command{
	Use:                   "report --input/-i PATH [--format/-f FORMAT] [--output/-o PATH] [--strict]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleReportUsage,
	Short:                 "Renders a saved compliance report and gates on its verdict",
	RunE:                  runReportCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runReportCommand executes the report command.
func runReportCommand(cmd *cobra.Command, args []string) error {
	logger := logger.NewLogger(AppConfig, "core-report")

	if err := validateReportArgs(&reportOptions); err != nil {
		logger.Error("invalid report arguments", "error", err)
		return err
	}

	rep, err := internalreport.Load(reportOptions.InputFile)
	if err != nil {
		logger.Error("failed to load report", "error", err)
		return err
	}

	switch reportOptions.Format {
	case "sarif":
		if err := rep.WriteSARIF(reportOptions.OutputPath, "dev"); err != nil {
			logger.Error("failed to write SARIF report", "error", err)
			return err
		}
		logger.Info("SARIF report written", "path", reportOptions.OutputPath)
	default:
		fmt.Print(rep.Text())
	}

	if code := internalreport.ExitCode(rep.Verdict, reportOptions.Strict); code != 0 {
		return errors.NewCommandError(code, "compliance verdict: %s", rep.Verdict)
	}
	return nil
}

// validateReportArgs validates the arguments provided to the report command.
func validateReportArgs(opts *RunOptionsReport) error {
	if opts.InputFile == "" {
		return fmt.Errorf("the 'input' flag must be specified")
	}
	switch opts.Format {
	case "", "text":
	case "sarif":
		if opts.OutputPath == "" {
			return fmt.Errorf("the 'output' flag must be specified for SARIF format")
		}
	default:
		return fmt.Errorf("unsupported report format %q, must be 'text' or 'sarif'", opts.Format)
	}
	return nil
}

// Initialize flags for the report command.
func init() {
	ReportCmd.Flags().StringVarP(&reportOptions.InputFile, "input", "i", "", "Path to a structured report produced by the scan command.")
	ReportCmd.Flags().StringVarP(&reportOptions.Format, "format", "f", "text", "Rendering format (text, sarif).")
	ReportCmd.Flags().StringVarP(&reportOptions.OutputPath, "output", "o", "", "Path for the rendered output when the format requires a file.")
	ReportCmd.Flags().BoolVar(&reportOptions.Strict, "strict", false, "Fail (exit 3) on a conditional verdict instead of passing.")
	ReportCmd.Flags().BoolP("help", "h", false, "Show help for the report command.")
}
