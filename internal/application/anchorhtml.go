package application

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
)

// LineAttr is the attribute the RFD renderer sets on block elements to record
// the source line they were produced from.
const LineAttr = "data-lineno"

// anchorIDPrefix prefixes ids generated for line-tagged elements that lack one.
const anchorIDPrefix = "rfd-line-"

// AnnotateAnchors parses a rendered RFD fragment, gives every element that
// carries LineAttr an id (keeping existing ids), and returns the re-rendered
// fragment with one candidate per such element in document order. Generated
// ids never reuse an id already present in the fragment, and every candidate
// gets a distinct Ref.
func AnnotateAnchors(fragment string) (string, []model.AnchorCandidate, error) {
	if strings.TrimSpace(fragment) == "" {
		return fragment, nil, nil
	}

	parent := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return "", nil, fmt.Errorf("parse rendered html: %w", err)
	}

	taken := make(map[string]bool)
	for _, n := range nodes {
		collectIDs(n, taken)
	}

	var candidates []model.AnchorCandidate
	claimed := make(map[string]bool)
	seq := 0

	nextID := func() string {
		for {
			seq++
			id := fmt.Sprintf("%s%d", anchorIDPrefix, seq)
			if !taken[id] {
				taken[id] = true
				return id
			}
		}
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if line, ok := attr(n, LineAttr); ok {
				id, _ := attr(n, "id")
				if id == "" || claimed[id] {
					id = nextID()
					setAttr(n, "id", id)
				}
				claimed[id] = true
				candidates = append(candidates, model.AnchorCandidate{Ref: id, Line: line})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	var buf strings.Builder
	for _, n := range nodes {
		walk(n)
		if err := html.Render(&buf, n); err != nil {
			return "", nil, fmt.Errorf("render annotated html: %w", err)
		}
	}

	return buf.String(), candidates, nil
}

// collectIDs records every non-empty id in the subtree rooted at n.
func collectIDs(n *html.Node, ids map[string]bool) {
	if n.Type == html.ElementNode {
		if id, ok := attr(n, "id"); ok && id != "" {
			ids[id] = true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectIDs(c, ids)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
