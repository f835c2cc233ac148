package services

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText flattens HTML product descriptions to plain text before they go
// into a PDF or JPEG cell. Legacy catalog rows sometimes carry markup pasted
// from supplier pages.
func HTMLToText(htmlContent string) string {
	if !strings.ContainsAny(htmlContent, "<>") {
		return strings.TrimSpace(htmlContent)
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		// If parsing fails, return the original content
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
				text.WriteString("\n")
			case "li":
				text.WriteString("\n- ")
			case "td", "th":
				text.WriteString(" ")
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}
	extractText(doc)

	// Collapse runs of whitespace left behind by the markup
	fields := strings.Fields(text.String())
	return strings.Join(fields, " ")
}
