// Package format converts HTML email bodies into readable plain text.
package format

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Converter renders HTML message bodies as plain text.
type Converter struct{}

// blockTags force a line break around their content when rendering.
var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "tr": {}, "li": {}, "ul": {}, "ol": {},
	"table": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"blockquote": {}, "pre": {}, "hr": {},
}

// skippedTags contribute no text output.
var skippedTags = map[string]struct{}{
	"script": {}, "style": {}, "head": {}, "title": {},
}

// HTML2Text extracts the readable text of an HTML document. Block elements
// become line breaks, links keep their targets, layout markup is dropped.
func (c Converter) HTML2Text(raw []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("html.Parse failed: %w", err)
	}

	var sb strings.Builder
	renderText(&sb, doc)

	return tidy(sb.String()), nil
}

func renderText(sb *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		if _, skip := skippedTags[n.Data]; skip {
			return
		}
		if _, block := blockTags[n.Data]; block {
			sb.WriteByte('\n')
		}
	}

	if n.Type == html.TextNode {
		if text := collapseSpace(n.Data); text != "" {
			if sb.Len() > 0 && !endsWithBoundary(sb.String()) {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		renderText(sb, child)
	}

	if n.Type == html.ElementNode {
		if n.Data == "a" {
			if href := attrValue(n, "href"); href != "" && !strings.HasPrefix(href, "#") {
				fmt.Fprintf(sb, " (%s)", href)
			}
		}
		if _, block := blockTags[n.Data]; block {
			sb.WriteByte('\n')
		}
	}
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func endsWithBoundary(s string) bool {
	return strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\n")
}

// tidy trims trailing space per line and squeezes blank-line runs.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
