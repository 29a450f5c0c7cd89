package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/pageaudit/pageaudit-cli/internal/audit"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from a saved audit run",
}

var reportGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render results.json as markdown, PDF, or pretty JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		format, _ := cmd.Flags().GetString("format")

		format = strings.ToLower(format)
		if format != "md" && format != "pdf" && format != "json" {
			return fmt.Errorf("invalid format: %s (must be md, pdf, or json)", format)
		}

		output, err := loadRunOutput(resolveResultsPath(input))
		if err != nil {
			return err
		}

		var content []byte
		switch format {
		case "md":
			content, err = generateMarkdownReport(output)
		case "pdf":
			content, err = generatePDFReportBytes(output)
		case "json":
			content, err = json.MarshalIndent(output, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("generate %s report: %w", format, err)
		}

		reportPath := filepath.Join(resultsDir, "report."+format)
		if err := os.WriteFile(reportPath, content, 0o644); err != nil {
			return fmt.Errorf("write report to %s: %w", reportPath, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", colorSuccess("Report written:"), reportPath)
		return nil
	},
}

func init() {
	reportGenerateCmd.Flags().String("input", "results.json", "results file (relative paths resolve inside the results directory)")
	reportGenerateCmd.Flags().String("format", "md", "report format: md, pdf, or json")
	reportCmd.AddCommand(reportGenerateCmd)
}

func resolveResultsPath(input string) string {
	if filepath.IsAbs(input) {
		return input
	}
	return filepath.Join(resultsDir, input)
}

func loadRunOutput(path string) (RunOutput, error) {
	var output RunOutput
	data, err := os.ReadFile(path)
	if err != nil {
		return output, fmt.Errorf("read results file: %w", err)
	}
	if err := json.Unmarshal(data, &output); err != nil {
		return output, fmt.Errorf("parse results file %s: %w", path, err)
	}
	return output, nil
}

func generateMarkdownReport(output RunOutput) ([]byte, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1("Page Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Operator", output.Metadata.Operator},
			{"Started", output.Metadata.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Completed", output.Metadata.CompletedAt.Format("2006-01-02 15:04:05 MST")},
			{"Targets", strconv.Itoa(output.Metadata.TotalTargets)},
		},
	})
	md.PlainText("")

	writeMarkdownSummary(md, output)

	for _, page := range output.Pages {
		md.H2(page.Target)
		md.PlainText("")
		if page.Error != "" {
			md.PlainText("Collection failed: " + page.Error)
			md.PlainText("")
			continue
		}
		if page.FinalURL != "" && page.FinalURL != page.Target {
			md.PlainText("Final URL: " + page.FinalURL)
			md.PlainText("")
		}
		for _, result := range page.Results {
			writeMarkdownResult(md, result)
		}
	}

	if err := md.Build(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMarkdownSummary(md *markdown.Markdown, output RunOutput) {
	md.H2("Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(output.Pages))
	for _, page := range output.Pages {
		verdict := "✅ Pass"
		if !page.Passed() {
			verdict = "❌ Fail"
		}
		rows = append(rows, []string{page.Target, verdict})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Result"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeMarkdownResult(md *markdown.Markdown, result audit.Result) {
	verdict := "✅"
	if !result.Passed() {
		verdict = "❌"
	}
	md.H3(verdict + " " + result.Title)
	md.PlainText("")

	if result.Error != "" {
		md.PlainText("Audit error: " + result.Error)
		md.PlainText("")
	}
	if result.Notes != "" {
		md.PlainText(result.Notes)
		md.PlainText("")
	}

	if result.Details != nil && len(result.Details.Rows) > 0 {
		header := make([]string, 0, len(result.Details.Columns))
		for _, column := range result.Details.Columns {
			header = append(header, column.Label)
		}
		rows := make([][]string, 0, len(result.Details.Rows))
		for _, row := range result.Details.Rows {
			cells := make([]string, 0, len(result.Details.Columns))
			for _, column := range result.Details.Columns {
				cells = append(cells, row[column.Key])
			}
			rows = append(rows, cells)
		}
		md.Table(markdown.TableSet{Header: header, Rows: rows})
		md.PlainText("")
	}

	if len(result.Warnings) > 0 {
		md.BulletList(result.Warnings...)
		md.PlainText("")
	}
}

func generatePDFReportBytes(output RunOutput) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Page Audit Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Metadata section
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Operator: %s", output.Metadata.Operator), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Started: %s", output.Metadata.StartedAt.Format("2006-01-02 15:04:05 MST")), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Completed: %s", output.Metadata.CompletedAt.Format("2006-01-02 15:04:05 MST")), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Targets: %d", output.Metadata.TotalTargets), "", 1, "", false, 0, "")
	pdf.Ln(5)

	for _, page := range output.Pages {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(0, 8, page.Target, "", 1, "", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		if page.Error != "" {
			pdf.MultiCell(0, 5, "Collection failed: "+page.Error, "", "", false)
			pdf.Ln(3)
			continue
		}

		for _, result := range page.Results {
			verdict := "PASS"
			if !result.Passed() {
				verdict = "FAIL"
			}
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(0, 6, fmt.Sprintf("[%s] %s", verdict, result.Title), "", 1, "", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			if result.Notes != "" {
				pdf.MultiCell(0, 5, result.Notes, "", "", false)
			}
			if result.Details != nil {
				for _, row := range result.Details.Rows {
					line := make([]string, 0, len(result.Details.Columns))
					for _, column := range result.Details.Columns {
						line = append(line, fmt.Sprintf("%s: %s", column.Label, row[column.Key]))
					}
					pdf.MultiCell(0, 5, "- "+strings.Join(line, " | "), "", "", false)
				}
			}
			for _, warning := range result.Warnings {
				pdf.MultiCell(0, 5, "Warning: "+warning, "", "", false)
			}
			pdf.Ln(2)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
