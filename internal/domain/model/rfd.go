package model

import (
	"fmt"
	"time"
)

// RFD is a single Request for Discussion document as served by the RFD
// content API. HTML is already rendered; its block elements carry the
// data-lineno attribute used for anchoring.
type RFD struct {
	Number        int
	Title         string
	State         RFDState
	Authors       []string
	DiscussionURL string
	SourcePath    string // e.g. "rfd/0042/README.adoc"
	HTML          string
	CommitSHA     string
	UpdatedAt     time.Time
}

// Label returns the zero-padded display name, e.g. "RFD 0042".
func (r RFD) Label() string {
	return fmt.Sprintf("RFD %04d", r.Number)
}

// RFDSummary is the index listing entry for an RFD.
type RFDSummary struct {
	Number    int
	Title     string
	State     RFDState
	UpdatedAt time.Time
}

// PullRequestRef identifies the GitHub pull request hosting an RFD's discussion.
type PullRequestRef struct {
	RepoFullName string
	Number       int
}

// String returns "owner/repo#123".
func (p PullRequestRef) String() string {
	return fmt.Sprintf("%s#%d", p.RepoFullName, p.Number)
}
