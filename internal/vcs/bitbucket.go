package vcs

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
)

// BitbucketCommenter posts report summaries on Bitbucket Server pull
// requests through the REST API.
type BitbucketCommenter struct {
	client   *resty.Client
	baseURL  string
	username string
	token    string
	logger   hclog.Logger
}

// NewBitbucketCommenter creates a Bitbucket Server commenter. baseURL is the
// server root, e.g. https://bitbucket.example.com.
func NewBitbucketCommenter(client *resty.Client, baseURL, username, token string, logger hclog.Logger) *BitbucketCommenter {
	return &BitbucketCommenter{
		client:   client,
		baseURL:  baseURL,
		username: username,
		token:    token,
		logger:   logger,
	}
}

// Comment implements Commenter.
func (b *BitbucketCommenter) Comment(ctx context.Context, target Target, body string) error {
	url := fmt.Sprintf("%s/rest/api/1.0/projects/%s/repos/%s/pull-requests/%d/comments",
		b.baseURL, target.Namespace, target.Repository, target.PullNumber)
	b.logger.Debug("posting Bitbucket PR comment", "url", url)

	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBasicAuth(b.username, b.token).
		SetBody(map[string]string{"text": body}).
		Post(url)
	if err != nil {
		return fmt.Errorf("failed to create Bitbucket comment: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("Bitbucket comment request failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
