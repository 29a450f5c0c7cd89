package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageaudit/pageaudit-cli/internal/artifacts"
	"github.com/pageaudit/pageaudit-cli/internal/audit"
)

// RunMetadata records who ran the audits and when.
type RunMetadata struct {
	Operator     string    `json:"operator,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	TotalTargets int       `json:"total_targets"`
}

// RunOutput is the results.json payload the report command consumes.
type RunOutput struct {
	Metadata RunMetadata        `json:"metadata"`
	Pages    []audit.PageResult `json:"pages"`
}

var auditCmd = &cobra.Command{
	Use:   "audit <url>...",
	Short: "Fetch pages and run every registered audit against them",
	Long: `Fetch one or more pages and run the registered rule checks against each.

Artifacts (final URL, response headers, anchor elements) are collected once
per page with a plain HTTP fetch; every audit then evaluates the same
immutable bundle. Results are written to results.json inside the results
directory and summarized on stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAuditCommand,
}

func init() {
	auditCmd.Flags().Int("timeout", defaultTimeoutSeconds, "per-page timeout in seconds")
	auditCmd.Flags().Int("concurrency", defaultConcurrency, "maximum number of pages audited at once")
	auditCmd.Flags().Int("rate-limit", defaultRateLimit, "requests per second")
	auditCmd.Flags().String("user-agent", "", "override the collector User-Agent")
	auditCmd.Flags().String("output", "results.json", "results filename inside the results directory")
}

func runAuditCommand(cmd *cobra.Command, args []string) error {
	cfg := auditConfigFromFlags(cmd)

	collector := &artifacts.Collector{
		Timeout:   time.Duration(cfg.TimeoutSecs) * time.Second,
		UserAgent: cfg.UserAgent,
	}
	runner := &audit.Runner{
		Concurrency: cfg.Concurrency,
		RateLimit:   cfg.RateLimit,
		Timeout:     time.Duration(cfg.TimeoutSecs) * time.Second,
	}

	logFn := func(target string, result audit.Result, duration float64) error {
		logger.Infof("audit=%s target=%s score=%d duration=%.3fs", result.AuditID, target, result.Score, duration)
		return nil
	}

	started := time.Now().UTC()
	pages := runner.RunAudits(cmd.Context(), args, audit.Registered(), func(ctx context.Context, target string) (*artifacts.Bundle, error) {
		return collector.Collect(ctx, target)
	}, logFn)

	output := RunOutput{
		Metadata: RunMetadata{
			Operator:     detectOperatorFromEnv(),
			StartedAt:    started,
			CompletedAt:  time.Now().UTC(),
			TotalTargets: len(args),
		},
		Pages: pages,
	}

	outName, _ := cmd.Flags().GetString("output")
	resultsPath := filepath.Join(resultsDir, outName)
	if err := writeRunOutput(resultsPath, output); err != nil {
		return err
	}

	printRunSummary(cmd.OutOrStdout(), output)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s\n", colorInfo("Results:"), resultsPath)
	return nil
}

// auditConfigFromFlags starts from the merged file/default config and lets
// explicitly-set flags win.
func auditConfigFromFlags(cmd *cobra.Command) AuditRuntimeConfig {
	cfg := cliConfig.Audit

	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		cfg.TimeoutSecs, _ = cmd.Flags().GetInt("timeout")
	}
	if f := cmd.Flags().Lookup("concurrency"); f != nil && f.Changed {
		cfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}
	if f := cmd.Flags().Lookup("rate-limit"); f != nil && f.Changed {
		cfg.RateLimit, _ = cmd.Flags().GetInt("rate-limit")
	}
	if f := cmd.Flags().Lookup("user-agent"); f != nil && f.Changed {
		cfg.UserAgent, _ = cmd.Flags().GetString("user-agent")
	}

	return cfg
}

func detectOperatorFromEnv() string {
	if env := os.Getenv("USER"); env != "" {
		return env
	}
	if env := os.Getenv("LOGNAME"); env != "" {
		return env
	}
	return ""
}

func writeRunOutput(path string, output RunOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results to %s: %w", path, err)
	}
	return nil
}

func printRunSummary(w io.Writer, output RunOutput) {
	for _, page := range output.Pages {
		fmt.Fprintf(w, "\n%s %s\n", colorInfo("Page:"), page.Target)
		if page.Error != "" {
			fmt.Fprintf(w, "  %s %s\n", colorError("error:"), page.Error)
			continue
		}
		if page.FinalURL != "" && page.FinalURL != page.Target {
			fmt.Fprintf(w, "  final url: %s\n", page.FinalURL)
		}

		for _, result := range page.Results {
			fmt.Fprintf(w, "  [%s] %s\n", formatVerdict(result.Passed()), result.Title)
			if result.Error != "" {
				fmt.Fprintf(w, "    %s %s\n", colorError("error:"), result.Error)
			}
			if result.Notes != "" {
				fmt.Fprintf(w, "    %s\n", result.Notes)
			}
			printDetailsTable(w, result.Details)
			for _, warning := range result.Warnings {
				fmt.Fprintf(w, "    %s %s\n", colorWarn("warning:"), warning)
			}
		}
	}
}

func printDetailsTable(w io.Writer, details *audit.TableDetails) {
	if details == nil || len(details.Rows) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, column := range details.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprintf(tw, "%s", column.Label)
	}
	fmt.Fprintln(tw)
	for _, row := range details.Rows {
		for i, column := range details.Columns {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprintf(tw, "%s", row[column.Key])
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}
