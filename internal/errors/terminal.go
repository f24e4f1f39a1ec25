package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// FormatForTerminal formats a RigError for terminal output
func (e RigError) FormatForTerminal(noColor bool) string {
	var sb strings.Builder

	header := severityColor(e.Severity)
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if noColor {
		header.DisableColor()
		cyan.DisableColor()
		gray.DisableColor()
	}

	header.Fprintf(&sb, "%s[%s]", strings.ToUpper(e.Severity.String()[:1])+e.Severity.String()[1:], e.Code)
	fmt.Fprintf(&sb, ": %s\n", e.Message)

	if e.Document != "" {
		cyan.Fprint(&sb, "  --> ")
		fmt.Fprintf(&sb, "%s\n", e.Document)
	}
	if e.Bone != "" {
		cyan.Fprint(&sb, "  --> ")
		fmt.Fprintf(&sb, "bone %s\n", e.Bone)
	}
	gray.Fprintf(&sb, "  phase: %s, category: %s\n", e.Phase, e.Category())

	if len(e.Related) > 0 {
		fmt.Fprintf(&sb, "\nRelated:\n")
		for i, related := range e.Related {
			if related.Bone != "" {
				fmt.Fprintf(&sb, "  %d. %s (bone %s)\n", i+1, related.Message, related.Bone)
			} else {
				fmt.Fprintf(&sb, "  %d. %s\n", i+1, related.Message)
			}
		}
	}

	return sb.String()
}

func severityColor(severity Severity) *color.Color {
	switch severity {
	case Info:
		return color.New(color.FgBlue, color.Bold)
	case Warning:
		return color.New(color.FgYellow, color.Bold)
	case Error:
		return color.New(color.FgRed, color.Bold)
	case Fatal:
		return color.New(color.FgHiRed, color.Bold)
	default:
		return color.New(color.Reset)
	}
}

// FormatSummary formats a summary of errors and warnings
func FormatSummary(errorCount, warningCount int, noColor bool) string {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	blue := color.New(color.FgBlue)
	if noColor {
		red.DisableColor()
		yellow.DisableColor()
		blue.DisableColor()
	}

	var parts []string
	if errorCount > 0 {
		parts = append(parts, red.Sprintf("%d error(s)", errorCount))
	}
	if warningCount > 0 {
		parts = append(parts, yellow.Sprintf("%d warning(s)", warningCount))
	}

	if len(parts) == 0 {
		return blue.Sprint("No errors or warnings") + "\n"
	}
	return fmt.Sprintf("\nNormalization failed with %s\n", strings.Join(parts, " and "))
}
