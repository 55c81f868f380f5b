// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/candidate-tracker/internal/schemas"
	"github.com/jonathan/candidate-tracker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads line to the box's inner width in runes.
func pad(line string) string {
	width := boxWidth - 4
	if utf8.RuneCountInString(line) > width {
		runes := []rune(line)
		return string(runes[:width-3]) + "..."
	}
	return line + strings.Repeat(" ", width-utf8.RuneCountInString(line))
}

// orDash renders empty values as "-".
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// PrintCandidate outputs a human-readable summary of an extracted profile.
func (p *Printer) PrintCandidate(profile *types.CandidateProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name:        %s\n", profile.FullName)
	fmt.Fprintf(&sb, "Member ID:   %s\n", profile.MemberID)
	fmt.Fprintf(&sb, "Headline:    %s\n", orDash(profile.Headline))
	fmt.Fprintf(&sb, "Title:       %s\n", orDash(profile.CurrentTitle))
	fmt.Fprintf(&sb, "Company:     %s\n", orDash(profile.Designation))
	fmt.Fprintf(&sb, "Location:    %s\n", orDash(profile.Location))
	fmt.Fprintf(&sb, "Industry:    %s\n", orDash(profile.Industry))
	fmt.Fprintf(&sb, "Connections: %s\n", orDash(profile.ConnectionsCount))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Education:   %s\n", orDash(profile.Education.String()))
	if profile.Education.QualificationCode != "" || profile.Education.PassoutYear != "" {
		fmt.Fprintf(&sb, "             %s, %s\n", orDash(profile.Education.QualificationCode), orDash(profile.Education.PassoutYear))
	}
	fmt.Fprintf(&sb, "In role:     %s\n", orDash(profile.Experience.CurrentRoleDuration))
	fmt.Fprintf(&sb, "Total:       %s\n", orDash(profile.Experience.TotalExperience))

	if len(profile.TopSkills) > 0 {
		sb.WriteString("\nTop skills:\n")
		for i, skill := range profile.TopSkills {
			if i >= maxItemsToShow {
				fmt.Fprintf(&sb, "  ... and %d more\n", len(profile.TopSkills)-maxItemsToShow)
				break
			}
			fmt.Fprintf(&sb, "  • %s\n", skill)
		}
	}

	p.printBox("EXTRACTED CANDIDATE", sb.String())
}

// PrintValidation outputs schema violations for one record.
func (p *Printer) PrintValidation(source string, err *schemas.ValidationError) {
	if err == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Source: %s\n\n", source)
	for i, fe := range err.Errors {
		if i >= maxItemsToShow {
			fmt.Fprintf(&sb, "... and %d more\n", len(err.Errors)-maxItemsToShow)
			break
		}
		fmt.Fprintf(&sb, "✗ %s: %s\n", fe.Field, fe.Message)
	}
	p.printBox(fmt.Sprintf("SCHEMA VIOLATIONS (%d)", len(err.Errors)), sb.String())
}

// PrintBatchSummary outputs totals for an extraction batch.
func (p *Printer) PrintBatchSummary(total, failed int, elapsed time.Duration) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pages:     %d\n", total)
	fmt.Fprintf(&sb, "Extracted: %d\n", total-failed)
	fmt.Fprintf(&sb, "Failed:    %d\n", failed)
	fmt.Fprintf(&sb, "Elapsed:   %s\n", elapsed.Round(time.Millisecond))
	p.printBox("EXTRACTION SUMMARY", sb.String())
}
