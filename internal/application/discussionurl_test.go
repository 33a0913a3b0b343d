package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
)

func TestParseDiscussionURL(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   model.PullRequestRef
		wantOK bool
	}{
		{"pull url", "https://github.com/acme/rfd/pull/123", model.PullRequestRef{RepoFullName: "acme/rfd", Number: 123}, true},
		{"trailing segment", "https://github.com/acme/rfd/pull/7/files", model.PullRequestRef{RepoFullName: "acme/rfd", Number: 7}, true},
		{"trailing slash", "https://github.com/acme/rfd/pull/7/", model.PullRequestRef{RepoFullName: "acme/rfd", Number: 7}, true},
		{"empty", "", model.PullRequestRef{}, false},
		{"issue url", "https://github.com/acme/rfd/issues/5", model.PullRequestRef{}, false},
		{"other host", "https://gitlab.com/acme/rfd/pull/5", model.PullRequestRef{}, false},
		{"bad number", "https://github.com/acme/rfd/pull/abc", model.PullRequestRef{}, false},
		{"zero number", "https://github.com/acme/rfd/pull/0", model.PullRequestRef{}, false},
		{"too short", "https://github.com/acme/rfd", model.PullRequestRef{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDiscussionURL(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
