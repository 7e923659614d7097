package vcs

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v47/github"
	"github.com/hashicorp/go-hclog"
)

// GithubCommenter posts report summaries as issue comments on GitHub pull
// requests.
type GithubCommenter struct {
	client *github.Client
	logger hclog.Logger
}

// NewGithubCommenter creates a GitHub commenter. An empty token gives an
// unauthenticated client, which only works against public repositories with
// heavy rate limits.
func NewGithubCommenter(token string, logger hclog.Logger) *GithubCommenter {
	var httpClient *http.Client
	if token != "" {
		tp := &github.BasicAuthTransport{
			Username: "provscan",
			Password: token,
		}
		httpClient = tp.Client()
	}
	return &GithubCommenter{
		client: github.NewClient(httpClient),
		logger: logger,
	}
}

// Comment implements Commenter. GitHub models PR comments as issue comments.
func (g *GithubCommenter) Comment(ctx context.Context, target Target, body string) error {
	g.logger.Debug("posting GitHub PR comment", "namespace", target.Namespace, "repository", target.Repository, "pr", target.PullNumber)

	comment := &github.IssueComment{Body: &body}
	_, _, err := g.client.Issues.CreateComment(ctx, target.Namespace, target.Repository, target.PullNumber, comment)
	if err != nil {
		return fmt.Errorf("failed to create GitHub comment: %w", err)
	}
	return nil
}
