// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/allyourbase/allyourbase/internal/basecheck"
	"github.com/allyourbase/allyourbase/internal/discovery"
)

// renderSummary writes the human-readable audit summary.
func renderSummary(w io.Writer, s basecheck.Summary, mods []discovery.Mod) {
	if s.Skipped {
		_, _ = fmt.Fprintln(w, SubtitleStyle.Render("Audit skipped: the gate requires developer mode (use --dev-mode or dev_mode: true)."))
		return
	}

	trusted := 0
	for _, m := range mods {
		if m.IsTrusted() {
			trusted++
		}
	}

	rows := []string{
		TitleStyle.Render("Audit summary"),
		row("Mods", fmt.Sprintf("%d (%d base)", len(mods), trusted)),
		row("Overlay documents", strconv.Itoa(s.DocumentsScanned)),
		row("Base templates", strconv.Itoa(s.KnownNames)),
		row("Collisions", countStyle(len(s.Collisions), WarningStyle).Render(strconv.Itoa(len(s.Collisions)))),
	}
	if s.AutoFix {
		rows = append(rows, row("Removed", fmt.Sprintf("%d definition(s) from %d file(s)", s.Removed, persistedFiles(s))))
	}
	rows = append(rows, row("Integrity", countStyle(len(s.Violations), ErrorStyle).Render(fmt.Sprintf("%d violation(s)", len(s.Violations)))))
	_, _ = fmt.Fprintln(w, summaryBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))

	if len(s.Files) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, TitleStyle.Render("Files"))
		for _, f := range s.Files {
			_, _ = fmt.Fprintln(w, fileLine(f))
		}
	}

	if len(s.Violations) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, TitleStyle.Render("Chemicals without a usable addiction effect"))
		for _, v := range s.Violations {
			_, _ = fmt.Fprintf(w, "  %s %s (%s): %s\n", ErrorStyle.Render("✗"), CmdStyle.Render(v.Record.DefName), v.Record.ModName, v.Reason)
		}
	}
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

// countStyle highlights non-zero counts.
func countStyle(n int, style lipgloss.Style) lipgloss.Style {
	if n == 0 {
		return SuccessStyle
	}
	return style
}

func persistedFiles(s basecheck.Summary) int {
	n := 0
	for _, f := range s.Files {
		if f.Persisted {
			n++
		}
	}
	return n
}

func fileLine(f basecheck.FileSummary) string {
	var sb strings.Builder
	switch {
	case f.Error != "":
		sb.WriteString("  " + ErrorStyle.Render("✗") + " ")
	case f.Persisted:
		sb.WriteString("  " + SuccessStyle.Render("✓") + " ")
	default:
		sb.WriteString("  " + WarningStyle.Render("!") + " ")
	}
	sb.WriteString(CmdStyle.Render(f.Path))
	fmt.Fprintf(&sb, " [%s] %d collision(s)", f.ModName, f.Collisions)
	if len(f.Removed) > 0 {
		sb.WriteString(", removed " + strings.Join(f.Removed, ", "))
	}
	if f.Error != "" {
		sb.WriteString("\n      " + ErrorStyle.Render(f.Error))
	}
	return sb.String()
}
