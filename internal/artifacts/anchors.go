package artifacts

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// outerHTML snippets are diagnostic only, so long anchors are truncated.
const maxOuterHTMLRunes = 500

// ExtractAnchors parses the document and returns every anchor element
// in document order. baseURL is the page's final URL; hrefs are
// resolved against it the way the browser resolves the DOM href
// property.
func ExtractAnchors(baseURL string, body io.Reader) []Anchor {
	doc, err := html.Parse(body)
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	var anchors []Anchor
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			anchors = append(anchors, newAnchor(base, n))
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return anchors
}

func newAnchor(base *url.URL, n *html.Node) Anchor {
	anchor := Anchor{OuterHTML: renderOuterHTML(n)}
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "href":
			href := resolveHref(base, attr.Val)
			anchor.Href = &href
		case "target":
			anchor.Target = attr.Val
		case "rel":
			anchor.Rel = attr.Val
		}
	}
	return anchor
}

// resolveHref resolves relative references against the document URL.
// Absolute hrefs pass through, and values that do not parse are kept
// verbatim so the audits can flag them as unknown destinations.
func resolveHref(base *url.URL, raw string) string {
	trimmed := strings.TrimSpace(raw)
	ref, err := url.Parse(trimmed)
	if err != nil || base == nil {
		return trimmed
	}
	if ref.IsAbs() {
		return trimmed
	}
	return base.ResolveReference(ref).String()
}

func renderOuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	out := buf.String()
	if runes := []rune(out); len(runes) > maxOuterHTMLRunes {
		out = string(runes[:maxOuterHTMLRunes]) + "..."
	}
	return out
}
