package audit

import (
	"time"

	"github.com/pageaudit/pageaudit-cli/internal/artifacts"
)

// Meta is the descriptor a rule check registers with: a stable ID plus
// the strings and artifact names the report layer renders.
type Meta struct {
	ID                string
	Title             string
	FailureTitle      string
	Description       string
	Category          string
	RequiredArtifacts []string
}

// TableColumn pairs a row key with its display label.
type TableColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// TableDetails is the tabular payload attached to a failing result.
// Rows are keyed by column key and keep the order the check emitted.
// A row may carry extra diagnostic keys beyond the declared columns;
// renderers project the columns only.
type TableDetails struct {
	Columns []TableColumn       `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// Result represents the outcome of a single audit over one page.
type Result struct {
	AuditID   string        `json:"audit_id"`
	Title     string        `json:"title"`
	CheckedAt time.Time     `json:"checked_at"`
	Score     int           `json:"score"` // 1 pass, 0 fail
	Notes     string        `json:"notes,omitempty"`
	Details   *TableDetails `json:"details,omitempty"`
	Warnings  []string      `json:"warnings,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Passed reports whether the audit completed and scored a pass.
func (r Result) Passed() bool {
	return r.Error == "" && r.Score == 1
}

// Audit is the interface every rule check implements.
type Audit interface {
	// Meta returns the audit descriptor.
	Meta() Meta

	// Run evaluates the check against one page's artifacts. The bundle
	// is never mutated. An error return means the check could not run
	// at all (for example an unparsable page URL); partial findings are
	// reported through the Result instead.
	Run(page *artifacts.Bundle) (Result, error)
}
