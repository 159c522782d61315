package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"nbr/internal/dispatch"
	"nbr/internal/history"
)

// tone is the severity a status line is rendered with.
type tone int

const (
	toneInfo tone = iota
	toneGood
	toneWarn
	toneBad
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const labelWidth = 12

func (t tone) label() string {
	switch t {
	case toneGood:
		return "OK"
	case toneWarn:
		return "WARN"
	case toneBad:
		return "FAIL"
	default:
		return "INFO"
	}
}

func (t tone) color() string {
	switch t {
	case toneGood:
		return ansiGreen
	case toneWarn:
		return ansiYellow
	case toneBad:
		return ansiRed
	default:
		return ansiBlue
	}
}

// sectionTone grades a section; a completed section with skipped files warns.
func sectionTone(section dispatch.SectionReport) tone {
	switch {
	case section.Status == dispatch.StatusFailed || section.Status == dispatch.StatusCanceled:
		return toneBad
	case section.Skipped > 0 || section.Collisions > 0:
		return toneWarn
	default:
		return toneGood
	}
}

func runTone(status history.RunStatus) tone {
	switch status {
	case history.RunCompleted:
		return toneGood
	case history.RunWarnings, history.RunRunning:
		return toneWarn
	default:
		return toneBad
	}
}

func checkTone(passed bool) tone {
	if passed {
		return toneGood
	}
	return toneBad
}

// column describes one table column. Numeric columns are right aligned.
type column struct {
	title   string
	numeric bool
}

// console writes one command's output, either for a terminal or as JSON.
type console struct {
	out      io.Writer
	colorize bool
}

func newConsole(cmd *cobra.Command) *console {
	out := cmd.OutOrStdout()
	return &console{out: out, colorize: isTerminal(out)}
}

// emit writes v as indented JSON.
func (c *console) emit(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

// status writes "  Label:      [TONE] message".
func (c *console) status(label string, t tone, message string) {
	c.println(c.paint(t.color(), formatStatus(label, t, message)))
}

func (c *console) heading(title string) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	c.println(c.paint(ansiBlue, line))
	c.println(c.paint(ansiBlue, strings.Repeat("-", len(line))))
}

// table renders rows under columns. Short rows are padded with blanks.
func (c *console) table(columns []column, rows [][]string) {
	if len(columns) == 0 {
		return
	}
	c.println(formatTable(columns, rows))
}

func (c *console) paint(color, s string) string {
	if !c.colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func formatStatus(label string, t tone, message string) string {
	badge := "[" + t.label() + "]"
	if message != "" {
		badge += " " + message
	}
	return fmt.Sprintf("  %-*s %s", labelWidth, label+":", badge)
}

func formatTable(columns []column, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.title
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
