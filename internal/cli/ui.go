package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stacksize/pkg/report"
)

// Palette. 256-color codes so the table reads the same on light and dark
// terminals.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed    = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconArrow  = "→"
	iconCached = "cached"
	iconFresh  = "fresh"
)

// statusOut receives status lines (success, info, written files, hints).
// Results go to the command's output instead, so `-f json | jq` and
// `-f markdown > table.md` stay clean.
var statusOut io.Writer = os.Stderr

type statusKind struct {
	icon  string
	style lipgloss.Style
}

var (
	statusSuccess = statusKind{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	statusError   = statusKind{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	statusInfo    = statusKind{"›", lipgloss.NewStyle().Foreground(colorGray)}
	statusWarning = statusKind{"!", lipgloss.NewStyle().Foreground(colorYellow)}
)

func (k statusKind) line(format string, args ...any) string {
	return k.style.Render(k.icon) + " " + fmt.Sprintf(format, args...)
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(statusOut, statusSuccess.line(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(statusOut, statusError.line(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(statusOut, statusInfo.line(format, args...))
}

// printDetail prints an indented, dimmed follow-up to a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a file the command wrote.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// formatWarning renders a warning that belongs to a result, such as names
// dropped from an estimate.
func formatWarning(format string, args ...any) string {
	return statusWarning.style.Render(statusWarning.icon) + " " + StyleWarning.Render(fmt.Sprintf(format, args...))
}

func writeKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// renderReportTable renders the report as a bordered table with the same
// columns as the markdown output plus the package count.
func renderReportTable(r *report.Report) string {
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []string{
			row.Profile,
			row.R,
			row.Quarto,
			row.Tex,
			fmt.Sprint(row.Packages),
			report.HumanSize(row.TotalBytes),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Setup Script", "R", "Quarto", "Tex", "Packages", "Total").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return styleHeader.Padding(0, 1)
			case col == 0:
				return base.Foreground(colorWhite)
			case col >= 4:
				return base.Foreground(colorCyan).Align(lipgloss.Right)
			}
			return base.Foreground(colorGray)
		})
	return t.Render()
}

// formatStats renders the run summary on a single line.
func formatStats(records, cacheHits, rows int) string {
	var parts []string
	if records > 0 {
		parts = append(parts, fmt.Sprintf("%d packages indexed", records))
	}
	parts = append(parts, fmt.Sprintf("%d profiles", rows))

	status := iconFresh
	statusStyle := styleComputed
	if rows > 0 && cacheHits == rows {
		status = iconCached
		statusStyle = styleCached
	} else if cacheHits > 0 {
		status = fmt.Sprintf("%d %s", cacheHits, iconCached)
	}
	parts = append(parts, statusStyle.Render(status))

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	return line
}

// joinLimited joins at most n names and notes how many were left out.
func joinLimited(names []string, n int) string {
	if len(names) <= n {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s, +%d more", strings.Join(names[:n], ", "), len(names)-n)
}
