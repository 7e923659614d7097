package comment

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provscan/provscan/internal/report"
	"github.com/provscan/provscan/internal/vcs"
	"github.com/provscan/provscan/pkg/shared"
	"github.com/provscan/provscan/pkg/shared/config"
	"github.com/provscan/provscan/pkg/shared/httpclient"
	"github.com/provscan/provscan/pkg/shared/logger"
)

// RunOptionsComment holds the arguments for the comment command.
type RunOptionsComment struct {
	InputFile  string
	VCSName    string
	RepoURL    string
	PullNumber int
	BaseURL    string
}

var (
	AppConfig           *config.Config
	commentOptions      RunOptionsComment
	exampleCommentUsage = `  # Posting a report summary on a GitHub pull request
  PROVSCAN_GITHUB_TOKEN=... provscan comment --vcs github --repo https://github.com/acme/physics --pr 42 --input report.json

  # Posting on a self-hosted GitLab merge request
  PROVSCAN_GITLAB_TOKEN=... provscan comment --vcs gitlab --base-url https://gitlab.example.com --repo https://gitlab.example.com/acme/physics --pr 7 --input report.json`
)

// CommentCmd represents the comment command.
var CommentCmd = &cobra.Command{
	Use:                   "comment --input/-i PATH --vcs VCS_NAME --repo URL --pr NUMBER [--base-url URL]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleCommentUsage,
	Short:                 "Posts a report summary as a pull request comment",
	RunE:                  runCommentCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runCommentCommand executes the comment command.
func runCommentCommand(cmd *cobra.Command, args []string) error {
	if !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-comment")

	if err := validateCommentArgs(&commentOptions); err != nil {
		logger.Error("invalid comment arguments", "error", err)
		return err
	}

	rep, err := report.Load(commentOptions.InputFile)
	if err != nil {
		logger.Error("failed to load report", "error", err)
		return err
	}

	target, err := vcs.ParseTarget(commentOptions.RepoURL, commentOptions.PullNumber)
	if err != nil {
		logger.Error("failed to resolve comment target", "error", err)
		return err
	}

	commenter, err := newCommenter(&commentOptions, logger)
	if err != nil {
		logger.Error("failed to create VCS client", "error", err)
		return err
	}

	if err := commenter.Comment(context.Background(), target, rep.Text()); err != nil {
		logger.Error("failed to post comment", "error", err)
		return err
	}

	logger.Info("comment posted", "vcs", commentOptions.VCSName, "repository", target.Repository, "pr", target.PullNumber)
	return nil
}

// newCommenter builds the VCS client for the requested platform. Tokens come
// from the environment so CI secrets never land in shell history.
func newCommenter(opts *RunOptionsComment, log hclog.Logger) (vcs.Commenter, error) {
	switch opts.VCSName {
	case "github":
		return vcs.NewGithubCommenter(os.Getenv("PROVSCAN_GITHUB_TOKEN"), log), nil
	case "gitlab":
		return vcs.NewGitlabCommenter(os.Getenv("PROVSCAN_GITLAB_TOKEN"), opts.BaseURL, log)
	case "bitbucket":
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("the 'base-url' flag must be specified for bitbucket")
		}
		client := httpclient.NewRestyClient(log, AppConfig)
		return vcs.NewBitbucketCommenter(
			client,
			opts.BaseURL,
			os.Getenv("PROVSCAN_BITBUCKET_USERNAME"),
			os.Getenv("PROVSCAN_BITBUCKET_TOKEN"),
			log,
		), nil
	default:
		return nil, fmt.Errorf("unsupported VCS %q, must be one of: github, gitlab, bitbucket", opts.VCSName)
	}
}

// validateCommentArgs validates the arguments provided to the comment command.
func validateCommentArgs(opts *RunOptionsComment) error {
	if opts.InputFile == "" {
		return fmt.Errorf("the 'input' flag must be specified")
	}
	if opts.VCSName == "" {
		return fmt.Errorf("the 'vcs' flag must be specified")
	}
	if opts.RepoURL == "" {
		return fmt.Errorf("the 'repo' flag must be specified")
	}
	if opts.PullNumber <= 0 {
		return fmt.Errorf("the 'pr' flag must be a positive pull request number")
	}
	return nil
}

// Initialize flags for the comment command.
func init() {
	CommentCmd.Flags().StringVarP(&commentOptions.InputFile, "input", "i", "", "Path to a structured report produced by the scan command.")
	CommentCmd.Flags().StringVar(&commentOptions.VCSName, "vcs", "", "VCS platform to post to (github, gitlab, bitbucket).")
	CommentCmd.Flags().StringVar(&commentOptions.RepoURL, "repo", "", "Repository URL the pull request belongs to.")
	CommentCmd.Flags().IntVar(&commentOptions.PullNumber, "pr", 0, "Pull request (merge request) number.")
	CommentCmd.Flags().StringVar(&commentOptions.BaseURL, "base-url", "", "Base URL for self-hosted GitLab or Bitbucket instances.")
	CommentCmd.Flags().BoolP("help", "h", false, "Show help for the comment command.")
}
