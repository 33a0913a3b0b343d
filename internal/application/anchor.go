package application

import (
	"strconv"
	"strings"

	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
)

type indexedCandidate struct {
	candidate model.AnchorCandidate
	line      int
}

// AnchorIndex is a candidate set with line attributes parsed once, so that
// many comments can be matched against the same rendered document.
type AnchorIndex struct {
	entries []indexedCandidate
}

// NewAnchorIndex parses the candidates' line attributes. Candidates with a
// missing, unparsable, or non-positive line are left out.
func NewAnchorIndex(candidates []model.AnchorCandidate) *AnchorIndex {
	entries := make([]indexedCandidate, 0, len(candidates))
	for _, c := range candidates {
		line, ok := parseLineAttr(c.Line)
		if !ok {
			continue
		}
		entries = append(entries, indexedCandidate{candidate: c, line: line})
	}
	return &AnchorIndex{entries: entries}
}

// Len returns the number of usable candidates.
func (idx *AnchorIndex) Len() int {
	return len(idx.entries)
}

// Match finds the candidate to anchor a comment on targetLine to. An exact
// line match wins; a later exact match replaces an earlier one. Otherwise the
// closest candidate below the target is chosen. Candidates above the target
// never match. A nil target or no qualifying candidate reports false.
func (idx *AnchorIndex) Match(targetLine *int) (model.AnchorCandidate, bool) {
	if targetLine == nil {
		return model.AnchorCandidate{}, false
	}
	target := *targetLine

	var exact, closest *indexedCandidate
	bestDelta := 0

	for i := range idx.entries {
		e := &idx.entries[i]
		switch {
		case e.line == target:
			exact = e
		case e.line < target:
			delta := target - e.line
			if closest == nil || delta < bestDelta {
				closest = e
				bestDelta = delta
			}
		}
	}

	if exact != nil {
		return exact.candidate, true
	}
	if closest != nil {
		return closest.candidate, true
	}
	return model.AnchorCandidate{}, false
}

// MatchAnchor is the one-shot form of AnchorIndex.Match.
func MatchAnchor(targetLine *int, candidates []model.AnchorCandidate) (model.AnchorCandidate, bool) {
	return NewAnchorIndex(candidates).Match(targetLine)
}

// parseLineAttr parses a data-lineno style attribute. Only positive decimal
// integers are accepted.
func parseLineAttr(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	line, err := strconv.Atoi(raw)
	if err != nil || line <= 0 {
		return 0, false
	}
	return line, true
}

// AnchorThreads places every comment thread of the review discussions
// against the rendered document. When sourcePath is set, only threads whose
// root comment is on that file are considered.
func AnchorThreads(idx *AnchorIndex, discussions []model.Discussion, sourcePath string) []model.ThreadAnchor {
	var anchors []model.ThreadAnchor

	for _, d := range discussions {
		if d.Kind != model.DiscussionKindReview {
			continue
		}

		for _, t := range d.Threads {
			root := t.Root()
			if sourcePath != "" && root.Path != sourcePath {
				continue
			}

			anchor := model.ThreadAnchor{
				ThreadRootID: t.RootID,
				ReviewID:     d.Review.ID,
			}

			if root.IsOutdated() {
				anchor.Status = model.AnchorStatusOutdated
				anchors = append(anchors, anchor)
				continue
			}

			anchor.TargetLine = *root.Line
			if c, ok := idx.Match(root.Line); ok {
				anchor.Status = model.AnchorStatusAnchored
				anchor.Ref = c.Ref
				anchor.AnchorLine, _ = parseLineAttr(c.Line)
			} else {
				anchor.Status = model.AnchorStatusUnanchored
			}
			anchors = append(anchors, anchor)
		}
	}

	return anchors
}
