// Package report renders a finished pipeline state as a document:
// markdown for the terminal and files, LaTeX for typeset output.
package report

import (
	"fmt"
	"os"
	"strings"

	"edgescout/internal/pipeline"
)

// Markdown returns the run's report as markdown. A run that never
// produced a final report gets a short incomplete-run summary instead,
// and an input validation failure gets the validation message alone.
func Markdown(s *pipeline.State) string {
	if s.InputValidationError != "" {
		return fmt.Sprintf("# Validation Error\n\n%s\n", s.InputValidationError)
	}
	if s.FinalOutput != "" {
		return s.FinalOutput
	}

	var b strings.Builder
	b.WriteString("# Workflow Incomplete\n\n")
	b.WriteString("The research workflow did not complete successfully.\n")
	fmt.Fprintf(&b, "\nLast stage reached: `%s`\n", s.CurrentStage)
	if errs := s.Errors(); len(errs) > 0 {
		b.WriteString("\nErrors encountered:\n\n")
		for _, msg := range errs {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}
	if warns := s.Warnings(); len(warns) > 0 {
		b.WriteString("\nWarnings:\n\n")
		for _, msg := range warns {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}
	return b.String()
}

// SaveMarkdown writes the run's markdown report to path. It refuses to
// write when no final report was produced.
func SaveMarkdown(s *pipeline.State, path string) error {
	if s.FinalOutput == "" {
		return fmt.Errorf("no report to save: workflow incomplete at stage %s", s.CurrentStage)
	}
	return os.WriteFile(path, []byte(s.FinalOutput), 0o644)
}
