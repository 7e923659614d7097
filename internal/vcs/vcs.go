package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/gitsight/go-vcsurl"
)

// Target identifies the pull request a report summary is posted to.
type Target struct {
	Domain     string
	Namespace  string
	Repository string
	PullNumber int
}

// Commenter posts a comment on a pull request.
type Commenter interface {
	Comment(ctx context.Context, target Target, body string) error
}

// ParseTarget resolves a repository URL into a comment target.
func ParseTarget(repoURL string, pullNumber int) (Target, error) {
	if pullNumber <= 0 {
		return Target{}, fmt.Errorf("pull request number must be positive, got %d", pullNumber)
	}

	info, err := vcsurl.Parse(repoURL)
	if err != nil {
		return Target{}, fmt.Errorf("failed to parse VCS URL %q: %w", repoURL, err)
	}

	namespace := ""
	if info.Username != "" {
		namespace = info.Username
	}
	fullName := info.FullName
	if namespace == "" && strings.Contains(fullName, "/") {
		namespace = strings.SplitN(fullName, "/", 2)[0]
	}

	return Target{
		Domain:     string(info.Host),
		Namespace:  namespace,
		Repository: info.Name,
		PullNumber: pullNumber,
	}, nil
}
