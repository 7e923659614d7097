package vcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want Target
	}{
		{
			name: "github https",
			url:  "https://github.com/acme/physics",
			want: Target{Domain: "github.com", Namespace: "acme", Repository: "physics", PullNumber: 42},
		},
		{
			name: "gitlab https",
			url:  "https://gitlab.com/acme/physics",
			want: Target{Domain: "gitlab.com", Namespace: "acme", Repository: "physics", PullNumber: 42},
		},
		{
			name: "ssh remote",
			url:  "git@github.com:acme/physics.git",
			want: Target{Domain: "github.com", Namespace: "acme", Repository: "physics", PullNumber: 42},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, err := ParseTarget(tc.url, 42)
			require.NoError(t, err)
			assert.Equal(t, tc.want, target)
		})
	}
}

func TestParseTargetRejectsBadInput(t *testing.T) {
	_, err := ParseTarget("https://github.com/acme/physics", 0)
	assert.Error(t, err)

	_, err = ParseTarget("https://github.com/acme/physics", -1)
	assert.Error(t, err)

	_, err = ParseTarget("not a url at all", 1)
	assert.Error(t, err)
}
