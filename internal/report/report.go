package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Summary counts what one run did.
type Summary struct {
	Root   string
	DryRun bool

	Renamed        int
	RenameFailures int

	Scanned      int
	FilesFixed   int
	ImportsFixed int
	Unresolved   int
	FileFailures int

	// Fingerprints of the tree before and after the run, when computed.
	Before string
	After  string
}

func (s *Summary) HasWarnings() bool {
	return s.RenameFailures > 0 || s.Unresolved > 0 || s.FileFailures > 0
}

func (s *Summary) HasChanges() bool {
	return s.Renamed > 0 || s.FilesFixed > 0
}

type styles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return styles{
		title: r.NewStyle().Bold(true),
		ok:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66BB6A"}),
		warn:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#FFB74D"}),
		muted: r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
}

// Format renders the summary with the color profile of r. A nil renderer
// uses lipgloss.DefaultRenderer.
func Format(s *Summary, r *lipgloss.Renderer) string {
	var b strings.Builder
	st := newStyles(r)

	title := "casefold summary"
	if s.DryRun {
		title += " (dry run)"
	}
	b.WriteString(st.title.Render(title))
	b.WriteString("\n")
	b.WriteString(st.muted.Render("  root: " + s.Root))
	b.WriteString("\n\n")

	verb := "renamed"
	if s.DryRun {
		verb = "to rename"
	}
	st.line(&b, fmt.Sprintf("Entries %s", verb), s.Renamed, false)
	st.line(&b, "Rename failures", s.RenameFailures, true)
	st.line(&b, "Source files scanned", s.Scanned, false)
	st.line(&b, "Files with fixed imports", s.FilesFixed, false)
	st.line(&b, "Imports fixed", s.ImportsFixed, false)
	st.line(&b, "Unresolved imports", s.Unresolved, true)
	st.line(&b, "File failures", s.FileFailures, true)

	if s.Before != "" {
		b.WriteString("\n")
		b.WriteString(st.muted.Render("  fingerprint before: " + s.Before))
		b.WriteString("\n")
		if s.After != "" {
			b.WriteString(st.muted.Render("  fingerprint after:  " + s.After))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case s.HasWarnings():
		b.WriteString(st.warn.Render("Done with warnings."))
	case !s.HasChanges():
		b.WriteString(st.ok.Render("Nothing to do, tree is already normalized."))
	default:
		b.WriteString(st.ok.Render("All done! Files/folders lowercased and imports updated."))
	}
	b.WriteString("\n")
	return b.String()
}

func (st styles) line(b *strings.Builder, label string, n int, warn bool) {
	value := fmt.Sprintf("%d", n)
	if warn && n > 0 {
		value = st.warn.Render(value)
	}
	fmt.Fprintf(b, "  %-26s %s\n", label+":", value)
}
