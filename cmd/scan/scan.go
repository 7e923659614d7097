package scan

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provscan/provscan/internal/gitmeta"
	"github.com/provscan/provscan/internal/report"
	"github.com/provscan/provscan/internal/rules"
	"github.com/provscan/provscan/internal/scanner"
	"github.com/provscan/provscan/internal/storage"
	"github.com/provscan/provscan/pkg/shared/config"
	"github.com/provscan/provscan/pkg/shared/errors"
	"github.com/provscan/provscan/pkg/shared/files"
	"github.com/provscan/provscan/pkg/shared/logger"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	RulesPath  string
	Format     string
	ReportPath string
	Threads    int
	Strict     bool
	Verbose    bool
}

var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scanning the current directory with the built-in rules
  provscan scan

  # Scanning a specific tree with a rules file and 4 parallel workers
  provscan scan --rules rules.yml -j 4 /path/to/project

  # Writing a SARIF report for the code-scanning UI
  provscan scan --format sarif --report results.sarif /path/to/project

  # Gating CI: conditional verdicts also fail the build
  provscan scan --strict /path/to/project`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan [--rules/-r PATH] [--format/-f FORMAT] [--report PATH] [-j THREADS_NUMBER, default=1] [--strict] [PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scans a source tree for compliance violations and derives a verdict",
	RunE:                  runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) error {
	logger := logger.NewLogger(AppConfig, "core-scan")

	target, err := validateScanArgs(&scanOptions, args)
	if err != nil {
		logger.Error("invalid scan arguments", "error", err)
		return err
	}

	rulesPath := config.SetThenString(scanOptions.RulesPath, AppConfig.Scanner.RulesPath)
	ruleSet, err := rules.Load(rulesPath)
	if err != nil {
		logger.Error("failed to load rule set", "error", err)
		return err
	}

	threads := config.SetThenInt(scanOptions.Threads, AppConfig.Scanner.Threads)
	s := scanner.New(ruleSet, threads, logger)

	violations, err := s.Scan(target)
	if err != nil {
		logger.Error("scan failed", "error", err)
		return err
	}

	rep, err := report.Aggregate(violations, report.Options{HighThreshold: AppConfig.Verdict.HighThreshold})
	if err != nil {
		logger.Error("failed to aggregate violations", "error", err)
		return err
	}
	rep.Root = target

	if md, err := gitmeta.Collect(target); err == nil && md != nil {
		rep.Repository = md
	}

	if err := writeReport(rep, &scanOptions, logger); err != nil {
		logger.Error("failed to write report", "error", err)
		return err
	}

	if scanOptions.Verbose {
		for _, v := range rep.Violations {
			logger.Info("violation", "rule", v.RuleID, "severity", v.Severity, "location", v.Location(), "detail", v.Detail)
		}
	}

	fmt.Print(rep.Text())

	if code := report.ExitCode(rep.Verdict, scanOptions.Strict); code != 0 {
		return errors.NewCommandError(code, "compliance verdict: %s", rep.Verdict)
	}

	logger.Info("scan command completed successfully", "verdict", rep.Verdict)
	return nil
}

// writeReport persists the report: always as a JSON artifact under the
// provscan home, and additionally to the path and format the user asked for.
func writeReport(rep *report.Report, opts *RunOptionsScan, logger hclog.Logger) error {
	data, err := rep.JSON()
	if err != nil {
		return err
	}

	backend, err := storage.NewLocal(config.GetArtifactsHome())
	if err != nil {
		return err
	}
	artifactName := fmt.Sprintf("scan_%s_%s.json", time.Now().UTC().Format("2006-01-02T15:04:05Z"), rep.ID)
	location, err := backend.Put(context.Background(), artifactName, data)
	if err != nil {
		return err
	}
	logger.Info("report artifact saved", "path", location)

	if opts.ReportPath == "" {
		return nil
	}

	fullPath, _, err := files.DetermineFileFullPath(opts.ReportPath, artifactName)
	if err != nil {
		return err
	}

	switch opts.Format {
	case "sarif":
		if err := rep.WriteSARIF(fullPath, "dev"); err != nil {
			return err
		}
	case "text":
		if err := os.WriteFile(fullPath, []byte(rep.Text()), 0644); err != nil {
			return err
		}
	default:
		if err := files.WriteJsonFile(fullPath, data); err != nil {
			return err
		}
	}
	logger.Info("report written", "path", fullPath, "format", opts.Format)
	return nil
}

// Initialize flags for the scan command.
func init() {
	ScanCmd.Flags().StringVarP(&scanOptions.RulesPath, "rules", "r", "", "Path to a YAML rules file overriding the built-in rule set.")
	ScanCmd.Flags().StringVarP(&scanOptions.Format, "format", "f", "json", "Format for the report written with --report (json, sarif, text).")
	ScanCmd.Flags().StringVar(&scanOptions.ReportPath, "report", "", "Path to the output file or directory where the report will be saved.")
	ScanCmd.Flags().IntVarP(&scanOptions.Threads, "threads", "j", 0, "Number of concurrent workers parsing files.")
	ScanCmd.Flags().BoolVar(&scanOptions.Strict, "strict", false, "Fail (exit 3) on a conditional verdict instead of passing.")
	ScanCmd.Flags().BoolVarP(&scanOptions.Verbose, "verbose", "v", false, "Log every violation as it is reported.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}
