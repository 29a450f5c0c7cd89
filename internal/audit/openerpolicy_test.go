package audit

import (
	"net/http"
	"testing"

	"github.com/pageaudit/pageaudit-cli/internal/artifacts"
)

func TestOpenerPolicyAudit_Run(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"same-origin passes", "same-origin", 1},
		{"same-origin-allow-popups passes", "same-origin-allow-popups", 1},
		{"mixed case passes", "Same-Origin", 1},
		{"unsafe-none fails", "unsafe-none", 0},
		{"missing header fails", "", 0},
		{"garbage value fails", "whatever", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.header != "" {
				headers.Set("Cross-Origin-Opener-Policy", tt.header)
			}

			result, err := OpenerPolicyAudit{}.Run(&artifacts.Bundle{
				FinalURL: "https://a.com",
				Headers:  headers,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Score != tt.want {
				t.Errorf("score = %d, want %d (notes: %s)", result.Score, tt.want, result.Notes)
			}
		})
	}
}

func TestOpenerPolicyAudit_NilHeaders(t *testing.T) {
	result, err := OpenerPolicyAudit{}.Run(&artifacts.Bundle{FinalURL: "https://a.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 0 {
		t.Errorf("expected fail without headers, got %+v", result)
	}
}
