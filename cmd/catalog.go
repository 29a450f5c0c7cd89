package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// AuditSpec describes a shipped rule check and its category.
type AuditSpec struct {
	ID       string
	Name     string
	Category string
}

// auditCatalog lists every rule check the tool ships. Keep this slice in
// sync with the registry in internal/audit; catalog_test.go validates the
// contents match.
var auditCatalog = []AuditSpec{
	{ID: "external-anchors-rel-noopener", Name: "Cross-origin links opened in new tabs use rel=noopener", Category: "Tab-napping"},
	{ID: "origin-isolation-coop", Name: "Cross-Origin-Opener-Policy isolates the page", Category: "Tab-napping"},
}

func getAuditCatalog() []AuditSpec {
	out := make([]AuditSpec, len(auditCatalog))
	copy(out, auditCatalog)
	return out
}

var catalogCmd = &cobra.Command{
	Use:   "audits",
	Short: "List the rule checks this tool runs",
	Run: func(cmd *cobra.Command, args []string) {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY")
		for _, spec := range getAuditCatalog() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", spec.ID, spec.Name, spec.Category)
		}
		_ = tw.Flush()
	},
}
