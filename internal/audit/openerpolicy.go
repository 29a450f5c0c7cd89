package audit

import (
	"strings"
	"time"

	"github.com/pageaudit/pageaudit-cli/internal/artifacts"
)

// OpenerPolicyAuditID identifies the Cross-Origin-Opener-Policy check.
const OpenerPolicyAuditID = "origin-isolation-coop"

// OpenerPolicyAudit checks the Cross-Origin-Opener-Policy response
// header. COOP severs the window.opener relationship for the whole
// page the same way rel=noopener does for individual links, so the two
// checks complement each other.
type OpenerPolicyAudit struct{}

func (OpenerPolicyAudit) Meta() Meta {
	return Meta{
		ID:           OpenerPolicyAuditID,
		Title:        "Page isolates itself from cross-origin openers",
		FailureTitle: "Page does not isolate itself from cross-origin openers",
		Description: "Serve 'Cross-Origin-Opener-Policy: same-origin' so windows opened from " +
			"other origins cannot retain a scripting reference to this page.",
		Category:          "Tab-napping",
		RequiredArtifacts: []string{"URL", "ResponseHeaders"},
	}
}

func (a OpenerPolicyAudit) Run(page *artifacts.Bundle) (Result, error) {
	meta := a.Meta()
	result := Result{
		AuditID:   meta.ID,
		Title:     meta.Title,
		CheckedAt: time.Now().UTC(),
	}

	value := ""
	if page.Headers != nil {
		value = strings.TrimSpace(page.Headers.Get("Cross-Origin-Opener-Policy"))
	}

	switch strings.ToLower(value) {
	case "same-origin", "same-origin-allow-popups":
		result.Score = 1
		result.Notes = "Cross-Origin-Opener-Policy: " + value
	case "":
		result.Title = meta.FailureTitle
		result.Notes = "Cross-Origin-Opener-Policy header is not set"
	case "unsafe-none":
		result.Title = meta.FailureTitle
		result.Notes = "Cross-Origin-Opener-Policy is set to 'unsafe-none' which provides no isolation"
	default:
		result.Title = meta.FailureTitle
		result.Notes = "Unrecognized Cross-Origin-Opener-Policy value: " + value
	}

	return result, nil
}

func init() {
	Register(OpenerPolicyAudit{})
}
