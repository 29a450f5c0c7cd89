package artifacts

import (
	"net/http"
	"time"
)

// Anchor is a single anchor element extracted from the audited page.
// Href mirrors the DOM href property: nil when the element carries no
// href attribute at all, otherwise the attribute value resolved against
// the document URL. Target and Rel default to empty strings when the
// attributes are absent.
type Anchor struct {
	Href      *string `json:"href,omitempty"`
	Target    string  `json:"target,omitempty"`
	Rel       string  `json:"rel,omitempty"`
	OuterHTML string  `json:"outer_html,omitempty"`
}

// HrefString returns the anchor href, or "" when the attribute is absent.
func (a Anchor) HrefString() string {
	if a.Href == nil {
		return ""
	}
	return *a.Href
}

// Bundle holds the collected artifacts for one page. Audits treat a
// bundle as immutable input.
type Bundle struct {
	RequestedURL string      `json:"requested_url"`
	FinalURL     string      `json:"final_url"`
	Headers      http.Header `json:"headers,omitempty"`
	Anchors      []Anchor    `json:"anchors,omitempty"`
	FetchedAt    time.Time   `json:"fetched_at"`
}
