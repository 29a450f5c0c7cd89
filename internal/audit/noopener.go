package audit

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pageaudit/pageaudit-cli/internal/artifacts"
)

// NoopenerAuditID identifies the cross-origin anchor check.
const NoopenerAuditID = "external-anchors-rel-noopener"

// AnchorSummary is the row shape reported for each unsafe anchor.
// Href is the literal "Unknown" when the anchor had no usable href.
type AnchorSummary struct {
	Href      string `json:"href"`
	Target    string `json:"target"`
	Rel       string `json:"rel"`
	OuterHTML string `json:"outer_html"`
}

// AnchorClassification is the outcome of classifying a page's anchors:
// the anchors judged unsafe, in input order, plus one warning per
// anchor whose destination could not be determined.
type AnchorClassification struct {
	Failing  []AnchorSummary
	Warnings []string
}

// ClassifyUnsafeAnchors flags target=_blank links to other origins that
// omit rel=noopener/noreferrer. Such links hand the destination page a
// window.opener reference it can use to redirect the originating tab.
//
// The filter is stable and runs in three narrowing stages:
//
//  1. target must be exactly "_blank" and rel must contain neither
//     "noopener" nor "noreferrer".
//  2. the href must point at a different host than the page. An href
//     that does not parse as an absolute URL is kept (unknown cannot be
//     assumed safe) and produces a warning naming the anchor.
//  3. of the anchors that did parse, only http(s) destinations are
//     reported; mailto:, tel:, javascript: and similar schemes never
//     open a window the destination could abuse.
//
// pageURL must be a valid absolute URL; anything else is a precondition
// violation reported as an error.
func ClassifyUnsafeAnchors(pageURL string, anchors []artifacts.Anchor) (*AnchorClassification, error) {
	page, err := parseAbsoluteURL(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	pageHost := urlHost(page)

	out := &AnchorClassification{
		Failing:  []AnchorSummary{},
		Warnings: []string{},
	}

	for _, anchor := range anchors {
		if anchor.Target != "_blank" ||
			strings.Contains(anchor.Rel, "noopener") ||
			strings.Contains(anchor.Rel, "noreferrer") {
			continue
		}

		href := anchor.HrefString()
		dest, err := parseAbsoluteURL(href)
		if err != nil {
			// Destination unknown: keep the anchor and tell the user why.
			out.Warnings = append(out.Warnings, fmt.Sprintf(
				"Unable to determine the destination for anchor (%s). "+
					"If it is not used as a hyperlink, consider removing target=_blank.",
				anchor.OuterHTML))
		} else {
			if urlHost(dest) == pageHost {
				continue
			}
			if href != "" && !strings.HasPrefix(strings.ToLower(href), "http") {
				continue
			}
		}

		out.Failing = append(out.Failing, summarizeAnchor(href, anchor))
	}

	return out, nil
}

// urlHost mirrors the browser URL.host: host plus port, except that a
// port matching the scheme default is dropped, so https://a.com:443
// and https://a.com compare as the same host.
func urlHost(u *url.URL) string {
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		return u.Hostname()
	}
	return u.Host
}

// parseAbsoluteURL matches the browser URL constructor the anchor
// hrefs were resolved for: relative references and bare strings fail.
func parseAbsoluteURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("url %q is not absolute", raw)
	}
	return u, nil
}

func summarizeAnchor(href string, anchor artifacts.Anchor) AnchorSummary {
	if href == "" {
		href = "Unknown"
	}
	return AnchorSummary{
		Href:      href,
		Target:    anchor.Target,
		Rel:       anchor.Rel,
		OuterHTML: anchor.OuterHTML,
	}
}

// NoopenerAudit wraps the anchor classifier as a registered rule check.
type NoopenerAudit struct{}

func (NoopenerAudit) Meta() Meta {
	return Meta{
		ID:           NoopenerAuditID,
		Title:        "Links to cross-origin destinations are safe",
		FailureTitle: "Links to cross-origin destinations are unsafe",
		Description: "Add rel=\"noopener\" or rel=\"noreferrer\" to any external links opened " +
			"with target=\"_blank\" to improve performance and prevent the destination " +
			"page from hijacking the originating tab via window.opener.",
		Category:          "Tab-napping",
		RequiredArtifacts: []string{"URL", "AnchorElements"},
	}
}

func (a NoopenerAudit) Run(page *artifacts.Bundle) (Result, error) {
	classification, err := ClassifyUnsafeAnchors(page.FinalURL, page.Anchors)
	if err != nil {
		return Result{}, err
	}

	meta := a.Meta()
	result := Result{
		AuditID:   meta.ID,
		Title:     meta.Title,
		CheckedAt: time.Now().UTC(),
		Score:     1,
		Warnings:  classification.Warnings,
		Details:   anchorTable(classification.Failing),
	}
	if len(classification.Failing) > 0 {
		result.Score = 0
		result.Title = meta.FailureTitle
		result.Notes = fmt.Sprintf("%d unsafe cross-origin link(s) found", len(classification.Failing))
	}
	return result, nil
}

// anchorTable builds the three-column details table the report layer
// renders. Column order is part of the output contract. Rows also
// carry an outer_html key for diagnostics in results.json; renderers
// project the declared columns only.
func anchorTable(failing []AnchorSummary) *TableDetails {
	details := &TableDetails{
		Columns: []TableColumn{
			{Key: "href", Label: "URL"},
			{Key: "target", Label: "Target"},
			{Key: "rel", Label: "Rel"},
		},
		Rows: make([]map[string]string, 0, len(failing)),
	}
	for _, anchor := range failing {
		details.Rows = append(details.Rows, map[string]string{
			"href":       anchor.Href,
			"target":     anchor.Target,
			"rel":        anchor.Rel,
			"outer_html": anchor.OuterHTML,
		})
	}
	return details
}

func init() {
	Register(NoopenerAudit{})
}
