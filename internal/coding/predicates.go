// Package coding implements the coding-task side panel: three sequential
// stages, each a pure pass/fail predicate over editable text, gated by a
// per-stage deadline. Stage timeout invokes the parent's verdict trigger;
// completing all stages emits a one-shot win signal.
package coding

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Stage 1 looks for this element id and requires this attribute non-empty.
const (
	altTargetID   = "img1"
	altTargetAttr = "alt"
)

// CheckAltText parses src as an HTML fragment and reports whether an element
// with id "img1" exists and carries a non-empty alt attribute. Unparseable
// input fails the check rather than erroring; the html parser is tolerant,
// so in practice this means "no matching element".
func CheckAltText(src string) bool {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return false
	}
	node := findByID(doc, altTargetID)
	if node == nil {
		return false
	}
	for _, attr := range node.Attr {
		if attr.Key == altTargetAttr && attr.Val != "" {
			return true
		}
	}
	return false
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// CheckCredentials passes iff both fields are non-empty after trimming.
func CheckCredentials(username, password string) bool {
	return strings.TrimSpace(username) != "" && strings.TrimSpace(password) != ""
}

// Sequence bounds for stage 3: the integers 0..20 inclusive, comma-separated.
const sequenceMax = 20

// CheckSequence passes iff the input, split on commas with each part trimmed
// and empty parts dropped, is exactly "0","1",...,"20" in order.
func CheckSequence(input string) bool {
	var parts []string
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) != sequenceMax+1 {
		return false
	}
	for i, p := range parts {
		if p != strconv.Itoa(i) {
			return false
		}
	}
	return true
}
