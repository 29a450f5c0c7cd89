package audit

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pageaudit/pageaudit-cli/internal/artifacts"
)

func strPtr(s string) *string { return &s }

func blankAnchor(href, rel, outerHTML string) artifacts.Anchor {
	return artifacts.Anchor{
		Href:      strPtr(href),
		Target:    "_blank",
		Rel:       rel,
		OuterHTML: outerHTML,
	}
}

func TestClassifyUnsafeAnchors_CrossOriginBlank(t *testing.T) {
	cls, err := ClassifyUnsafeAnchors("https://a.com", []artifacts.Anchor{
		blankAnchor("https://b.com/x", "", ""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cls.Failing) != 1 {
		t.Fatalf("expected 1 failing anchor, got %d", len(cls.Failing))
	}
	want := AnchorSummary{Href: "https://b.com/x", Target: "_blank", Rel: "", OuterHTML: ""}
	if cls.Failing[0] != want {
		t.Errorf("summary = %+v, want %+v", cls.Failing[0], want)
	}
	if len(cls.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", cls.Warnings)
	}
}

func TestClassifyUnsafeAnchors_FilterStages(t *testing.T) {
	tests := []struct {
		name    string
		anchor  artifacts.Anchor
		failing bool
	}{
		{
			name:    "rel noopener is safe",
			anchor:  blankAnchor("https://b.com", "noopener", ""),
			failing: false,
		},
		{
			name:    "rel noreferrer is safe",
			anchor:  blankAnchor("https://b.com", "noreferrer", ""),
			failing: false,
		},
		{
			name:    "noopener among other rel tokens is safe",
			anchor:  blankAnchor("https://b.com", "noopener nofollow", ""),
			failing: false,
		},
		{
			name:    "rel tokens are case-sensitive",
			anchor:  blankAnchor("https://b.com", "NoOpener", ""),
			failing: true,
		},
		{
			name:    "same host is safe",
			anchor:  blankAnchor("https://a.com/page", "", ""),
			failing: false,
		},
		{
			name:    "different port counts as a different host",
			anchor:  blankAnchor("https://a.com:8080/page", "", ""),
			failing: true,
		},
		{
			name:    "explicit default port is the same host",
			anchor:  blankAnchor("https://a.com:443/page", "", ""),
			failing: false,
		},
		{
			name:    "mailto never opens an abusable window",
			anchor:  blankAnchor("mailto:x@b.com", "", ""),
			failing: false,
		},
		{
			name:    "javascript scheme is skipped",
			anchor:  blankAnchor("javascript:void(0)", "", ""),
			failing: false,
		},
		{
			name: "target self is never flagged",
			anchor: artifacts.Anchor{
				Href:   strPtr("https://b.com"),
				Target: "_self",
			},
			failing: false,
		},
		{
			name: "empty target is never flagged",
			anchor: artifacts.Anchor{
				Href: strPtr("https://b.com"),
			},
			failing: false,
		},
		{
			name:    "uppercase HTTP scheme passes the prefix check",
			anchor:  blankAnchor("HTTPS://b.com/x", "", ""),
			failing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls, err := ClassifyUnsafeAnchors("https://a.com", []artifacts.Anchor{tt.anchor})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(cls.Failing) == 1; got != tt.failing {
				t.Errorf("failing = %v, want %v (result %+v)", got, tt.failing, cls.Failing)
			}
		})
	}
}

func TestClassifyUnsafeAnchors_UnparsableHref(t *testing.T) {
	cls, err := ClassifyUnsafeAnchors("https://a.com", []artifacts.Anchor{
		blankAnchor("not a url", "", "<a target=\"_blank\" href=\"not a url\">x</a>"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cls.Failing) != 1 {
		t.Fatalf("expected unparsable href to be flagged, got %+v", cls.Failing)
	}
	if len(cls.Warnings) != 1 {
		t.Fatalf("expected exactly 1 warning, got %d", len(cls.Warnings))
	}
	if !strings.Contains(cls.Warnings[0], "<a target=\"_blank\" href=\"not a url\">x</a>") {
		t.Errorf("warning should name the anchor's outer HTML, got %q", cls.Warnings[0])
	}
}

func TestClassifyUnsafeAnchors_MissingHref(t *testing.T) {
	cls, err := ClassifyUnsafeAnchors("https://a.com", []artifacts.Anchor{
		{Target: "_blank"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cls.Failing) != 1 {
		t.Fatalf("expected anchor without href to be flagged, got %+v", cls.Failing)
	}
	if cls.Failing[0].Href != "Unknown" {
		t.Errorf("href = %q, want %q", cls.Failing[0].Href, "Unknown")
	}
}

func TestClassifyUnsafeAnchors_InvalidPageURL(t *testing.T) {
	if _, err := ClassifyUnsafeAnchors("not a url", nil); err == nil {
		t.Fatal("expected error for unparsable page url")
	}
}

func TestClassifyUnsafeAnchors_OrderAndIdempotence(t *testing.T) {
	anchors := []artifacts.Anchor{
		blankAnchor("https://b.com/1", "", ""),
		blankAnchor("https://a.com/safe", "", ""),
		blankAnchor("not a url", "", "<a>1</a>"),
		blankAnchor("https://c.com/2", "", ""),
	}

	first, err := ClassifyUnsafeAnchors("https://a.com", anchors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantHrefs := []string{"https://b.com/1", "not a url", "https://c.com/2"}
	gotHrefs := make([]string, 0, len(first.Failing))
	for _, f := range first.Failing {
		gotHrefs = append(gotHrefs, f.Href)
	}
	if !reflect.DeepEqual(gotHrefs, wantHrefs) {
		t.Errorf("failing hrefs = %v, want %v", gotHrefs, wantHrefs)
	}

	second, err := ClassifyUnsafeAnchors("https://a.com", anchors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("classifier is not idempotent: %+v vs %+v", first, second)
	}
}

func TestNoopenerAudit_Run(t *testing.T) {
	bundle := &artifacts.Bundle{
		FinalURL: "https://a.com",
		Anchors: []artifacts.Anchor{
			blankAnchor("https://b.com/x", "", ""),
		},
	}

	result, err := NoopenerAudit{}.Run(bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 0 {
		t.Errorf("score = %d, want 0", result.Score)
	}
	if result.Details == nil {
		t.Fatal("expected details table")
	}

	wantColumns := []TableColumn{
		{Key: "href", Label: "URL"},
		{Key: "target", Label: "Target"},
		{Key: "rel", Label: "Rel"},
	}
	if !reflect.DeepEqual(result.Details.Columns, wantColumns) {
		t.Errorf("columns = %+v, want %+v", result.Details.Columns, wantColumns)
	}
	if len(result.Details.Rows) != 1 || result.Details.Rows[0]["href"] != "https://b.com/x" {
		t.Errorf("unexpected rows: %+v", result.Details.Rows)
	}
	if _, ok := result.Details.Rows[0]["outer_html"]; !ok {
		t.Error("rows should carry the outer_html diagnostic key")
	}
}

func TestClassifyUnsafeAnchors_DefaultPortNormalized(t *testing.T) {
	tests := []struct {
		name    string
		pageURL string
		href    string
		failing bool
	}{
		{"https page with explicit 443 href", "https://a.com", "https://a.com:443/x", false},
		{"https page with 443 serves page on 443", "https://a.com:443", "https://a.com/x", false},
		{"http page with explicit 80 href", "http://a.com", "http://a.com:80/x", false},
		{"default port of the other scheme differs", "https://a.com", "http://a.com:443/x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls, err := ClassifyUnsafeAnchors(tt.pageURL, []artifacts.Anchor{
				blankAnchor(tt.href, "", ""),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(cls.Failing) == 1; got != tt.failing {
				t.Errorf("failing = %v, want %v", got, tt.failing)
			}
		})
	}
}

func TestNoopenerAudit_RunPasses(t *testing.T) {
	bundle := &artifacts.Bundle{
		FinalURL: "https://a.com",
		Anchors: []artifacts.Anchor{
			blankAnchor("https://b.com", "noopener", ""),
			{Href: strPtr("/local"), Target: "_self"},
		},
	}

	result, err := NoopenerAudit{}.Run(bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Passed() {
		t.Errorf("expected pass, got %+v", result)
	}
}

func TestNoopenerAudit_RunInvalidPageURL(t *testing.T) {
	if _, err := (NoopenerAudit{}).Run(&artifacts.Bundle{FinalURL: "::bad::"}); err == nil {
		t.Fatal("expected error for invalid page url")
	}
}
