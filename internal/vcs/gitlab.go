package vcs

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	gitlab "github.com/xanzy/go-gitlab"
)

// GitlabCommenter posts report summaries as merge request notes.
type GitlabCommenter struct {
	client *gitlab.Client
	logger hclog.Logger
}

// NewGitlabCommenter creates a GitLab commenter against the given base URL;
// an empty baseURL means gitlab.com.
func NewGitlabCommenter(token, baseURL string, logger hclog.Logger) (*GitlabCommenter, error) {
	var opts []gitlab.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}
	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return &GitlabCommenter{client: client, logger: logger}, nil
}

// Comment implements Commenter.
func (g *GitlabCommenter) Comment(ctx context.Context, target Target, body string) error {
	pid := fmt.Sprintf("%s/%s", target.Namespace, target.Repository)
	g.logger.Debug("posting GitLab MR note", "project", pid, "mr", target.PullNumber)

	opts := &gitlab.CreateMergeRequestNoteOptions{Body: &body}
	_, _, err := g.client.Notes.CreateMergeRequestNote(pid, target.PullNumber, opts, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to create GitLab note: %w", err)
	}
	return nil
}
