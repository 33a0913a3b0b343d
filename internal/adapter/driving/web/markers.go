package web

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// threadMarker links a block of the document to one anchored thread.
type threadMarker struct {
	ThreadDOMID string
	Comments    int
}

// injectMarkers appends a marker link to every element whose id has markers,
// in the order given. Elements without markers are left untouched.
func injectMarkers(doc string, markers map[string][]threadMarker) (string, error) {
	if len(markers) == 0 || strings.TrimSpace(doc) == "" {
		return doc, nil
	}

	parent := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(doc), parent)
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		// Collect children first; appended markers must not be walked.
		var children []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}

		if n.Type == html.ElementNode {
			for _, m := range markers[idOf(n)] {
				n.AppendChild(markerNode(m))
			}
		}

		for _, c := range children {
			walk(c)
		}
	}

	var buf strings.Builder
	for _, n := range nodes {
		walk(n)
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("render document: %w", err)
		}
	}

	return buf.String(), nil
}

func idOf(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "id" {
			return a.Val
		}
	}
	return ""
}

func markerNode(m threadMarker) *html.Node {
	a := &html.Node{
		Type:     html.ElementNode,
		Data:     "a",
		DataAtom: atom.A,
		Attr: []html.Attribute{
			{Key: "class", Val: "thread-marker"},
			{Key: "href", Val: "#" + m.ThreadDOMID},
			{Key: "title", Val: pluralize(m.Comments, "comment")},
		},
	}
	a.AppendChild(&html.Node{Type: html.TextNode, Data: strconv.Itoa(m.Comments)})
	return a
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
