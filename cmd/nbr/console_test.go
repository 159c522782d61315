package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"nbr/internal/dispatch"
	"nbr/internal/history"
)

func TestFormatStatus(t *testing.T) {
	if got := formatStatus("Build", toneWarn, "2 skipped"); got != "  Build:       [WARN] 2 skipped" {
		t.Fatalf("unexpected line %q", got)
	}
	if got := formatStatus("Section 3", toneBad, ""); got != "  Section 3:   [FAIL]" {
		t.Fatalf("unexpected line %q", got)
	}
}

func TestConsolePaintsOnlyWhenColorized(t *testing.T) {
	var buf bytes.Buffer
	c := &console{out: &buf, colorize: true}
	c.status("Build", toneBad, "")
	line := strings.TrimSuffix(buf.String(), "\n")
	if !strings.HasPrefix(line, ansiRed) || !strings.HasSuffix(line, ansiReset) {
		t.Fatalf("expected red line, got %q", line)
	}

	buf.Reset()
	c.colorize = false
	c.heading("demo.nbrlist")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("unexpected escape codes in %q", buf.String())
	}
	requireContains(t, buf.String(), "== demo.nbrlist ==")
}

func TestIsTerminalIgnoresBuffers(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
}

func TestConsoleTablePadsShortRows(t *testing.T) {
	var buf bytes.Buffer
	c := &console{out: &buf}
	c.table([]column{{title: "Source"}, {title: "Converted", numeric: true}}, [][]string{{"a.png"}})
	requireContains(t, buf.String(), "a.png")
	requireContains(t, buf.String(), "Converted")

	buf.Reset()
	c.table(nil, [][]string{{"x"}})
	if buf.Len() != 0 {
		t.Fatalf("expected no output without columns, got %q", buf.String())
	}
}

func TestSectionTone(t *testing.T) {
	cases := []struct {
		name    string
		section dispatch.SectionReport
		want    tone
	}{
		{"clean", dispatch.SectionReport{Status: dispatch.StatusCompleted, Converted: 3}, toneGood},
		{"skips", dispatch.SectionReport{Status: dispatch.StatusCompleted, Skipped: 1}, toneWarn},
		{"collisions", dispatch.SectionReport{Status: dispatch.StatusCompleted, Collisions: 1}, toneWarn},
		{"failed", dispatch.SectionReport{Status: dispatch.StatusFailed, Err: errors.New("missing")}, toneBad},
		{"canceled", dispatch.SectionReport{Status: dispatch.StatusCanceled}, toneBad},
	}
	for _, tc := range cases {
		if got := sectionTone(tc.section); got != tc.want {
			t.Errorf("%s: tone = %s, want %s", tc.name, got.label(), tc.want.label())
		}
	}
}

func TestRunTone(t *testing.T) {
	want := map[history.RunStatus]tone{
		history.RunCompleted: toneGood,
		history.RunWarnings:  toneWarn,
		history.RunRunning:   toneWarn,
		history.RunFailed:    toneBad,
		history.RunCanceled:  toneBad,
	}
	for status, expected := range want {
		if got := runTone(status); got != expected {
			t.Errorf("%s: tone = %s, want %s", status, got.label(), expected.label())
		}
	}
}
