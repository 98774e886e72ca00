package report

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func plainRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}

func TestSummary_Flags(t *testing.T) {
	s := &Summary{}
	if s.HasChanges() || s.HasWarnings() {
		t.Error("Empty summary should report neither changes nor warnings")
	}

	s.Renamed = 2
	if !s.HasChanges() {
		t.Error("Renames should count as changes")
	}

	s.Unresolved = 1
	if !s.HasWarnings() {
		t.Error("Unresolved imports should count as warnings")
	}
}

func TestFormat_Counts(t *testing.T) {
	out := Format(&Summary{
		Root:         "/repo/src",
		Renamed:      3,
		Scanned:      10,
		FilesFixed:   2,
		ImportsFixed: 5,
	}, plainRenderer())

	for _, want := range []string{"/repo/src", "Entries renamed:", "Imports fixed:", "5", "All done!"} {
		if !strings.Contains(out, want) {
			t.Errorf("Report missing %q:\n%s", want, out)
		}
	}
}

func TestFormat_DryRunAndWarnings(t *testing.T) {
	out := Format(&Summary{
		Root:       "/repo",
		DryRun:     true,
		Renamed:    1,
		Unresolved: 2,
		Before:     "abc",
		After:      "def",
	}, plainRenderer())

	for _, want := range []string{"(dry run)", "Entries to rename:", "warnings", "fingerprint before: abc", "fingerprint after:  def"} {
		if !strings.Contains(out, want) {
			t.Errorf("Report missing %q:\n%s", want, out)
		}
	}
}

func TestFormat_NothingToDo(t *testing.T) {
	out := Format(&Summary{Root: "/repo", Scanned: 4}, plainRenderer())
	if !strings.Contains(out, "Nothing to do") {
		t.Errorf("Expected no-op message:\n%s", out)
	}
}

func TestFormat_ColorProfile(t *testing.T) {
	s := &Summary{Root: "/repo", Renamed: 1, Unresolved: 3}

	if out := Format(s, plainRenderer()); strings.Contains(out, "\x1b[") {
		t.Errorf("Ascii profile should not emit escape sequences:\n%q", out)
	}

	colored := lipgloss.NewRenderer(io.Discard)
	colored.SetColorProfile(termenv.TrueColor)
	if out := Format(s, colored); !strings.Contains(out, "\x1b[") {
		t.Errorf("TrueColor profile should style the report:\n%q", out)
	}
}
