package application

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
)

// ParseDiscussionURL extracts the pull request behind an RFD discussion link
// of the form https://github.com/{owner}/{repo}/pull/{number}. Trailing path
// segments such as "/files" are ignored.
func ParseDiscussionURL(raw string) (model.PullRequestRef, bool) {
	if raw == "" {
		return model.PullRequestRef{}, false
	}

	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Hostname(), "github.com") {
		return model.PullRequestRef{}, false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[0] == "" || parts[1] == "" || parts[2] != "pull" {
		return model.PullRequestRef{}, false
	}

	number, err := strconv.Atoi(parts[3])
	if err != nil || number <= 0 {
		return model.PullRequestRef{}, false
	}

	return model.PullRequestRef{
		RepoFullName: parts[0] + "/" + parts[1],
		Number:       number,
	}, true
}
