package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nbr/internal/build"
	"nbr/internal/config"
	"nbr/internal/dispatch"
	"nbr/internal/history"
	"nbr/internal/resource"
)

type buildSectionJSON struct {
	Position   int                `json:"position"`
	Type       string             `json:"type"`
	LocalDir   string             `json:"local_dir"`
	OutDir     string             `json:"out_dir"`
	Status     string             `json:"status"`
	OutCreated bool               `json:"out_created,omitempty"`
	Converted  int                `json:"converted"`
	Skipped    int                `json:"skipped"`
	Ignored    int                `json:"ignored"`
	Collisions int                `json:"collisions,omitempty"`
	Error      string             `json:"error,omitempty"`
	Failures   []buildFailureJSON `json:"failures,omitempty"`
}

type buildFailureJSON struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

type buildResultJSON struct {
	RunID          string             `json:"run_id"`
	ListFile       string             `json:"list_file"`
	Status         string             `json:"status"`
	LogPath        string             `json:"log_path,omitempty"`
	DurationMillis int64              `json:"duration_ms"`
	Converted      int                `json:"converted"`
	Skipped        int                `json:"skipped"`
	FailedSections int                `json:"failed_sections"`
	Sections       []buildSectionJSON `json:"sections"`
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var typeName string
	var strategy string
	var workers int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "build <list-file>",
		Short: "Convert every resource named in a list file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			opts := build.Options{ListPath: args[0], Workers: workers}
			if name := strings.TrimSpace(typeName); name != "" {
				t, ok := resource.Parse(name)
				if !ok {
					return fmt.Errorf("unknown resource type %q (expected one of %s)", name, typeNames())
				}
				opts.Filter = &t
			}
			switch s := strings.ToLower(strings.TrimSpace(strategy)); s {
			case "":
			case config.StrategyPool, config.StrategySection:
				opts.Strategy = s
			default:
				return fmt.Errorf("unknown strategy %q (expected %s or %s)", strategy, config.StrategyPool, config.StrategySection)
			}
			if workers < 0 {
				return fmt.Errorf("workers must be non-negative")
			}

			result, err := build.Run(cmd.Context(), cfg, opts)
			if err != nil {
				return err
			}

			c := newConsole(cmd)
			if jsonOutput {
				if err := c.emit(buildResultToJSON(result)); err != nil {
					return err
				}
			} else {
				printBuildResult(c, result)
			}
			if result.Status == history.RunCanceled {
				return context.Canceled
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Only build sections of this resource type")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Scheduling strategy (pool or section)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Worker count for the pool strategy (0 uses the configured value)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

var sectionColumns = []column{
	{title: "#", numeric: true},
	{title: "Type"},
	{title: "Status"},
	{title: "Converted", numeric: true},
	{title: "Skipped", numeric: true},
	{title: "Ignored", numeric: true},
	{title: "Output"},
}

func printBuildResult(c *console, result *build.Result) {
	report := result.Report

	if len(report.Sections) == 0 {
		c.println("No sections selected")
	} else {
		rows := make([][]string, 0, len(report.Sections))
		for _, section := range report.Sections {
			rows = append(rows, []string{
				strconv.Itoa(section.Position),
				section.Type.Label(),
				string(section.Status),
				strconv.Itoa(section.Converted),
				strconv.Itoa(section.Skipped),
				strconv.Itoa(section.Ignored),
				section.OutDir,
			})
		}
		c.table(sectionColumns, rows)
	}

	for _, section := range report.Sections {
		label := fmt.Sprintf("Section %d", section.Position)
		if section.Err != nil {
			c.status(label, sectionTone(section), section.Err.Error())
			continue
		}
		if section.Collisions > 0 {
			c.status(label, toneWarn, fmt.Sprintf("%d sources share an output name", section.Collisions))
		}
		for _, file := range section.Files {
			if !file.OK() {
				c.status(label, toneWarn, file.Err.Error())
			}
		}
	}

	summary := fmt.Sprintf("%d converted, %d skipped in %s", report.Converted(), report.Skipped(), report.Duration().Round(time.Millisecond))
	c.status("Build", runTone(result.Status), fmt.Sprintf("%s (%s)", result.Status, summary))
	if result.LogPath != "" {
		c.status("Log", toneInfo, result.LogPath)
	}
}

func buildResultToJSON(result *build.Result) buildResultJSON {
	report := result.Report
	out := buildResultJSON{
		RunID:          result.RunID,
		ListFile:       result.ListPath,
		Status:         string(result.Status),
		LogPath:        result.LogPath,
		DurationMillis: report.Duration().Milliseconds(),
		Converted:      report.Converted(),
		Skipped:        report.Skipped(),
		FailedSections: report.FailedSections(),
		Sections:       make([]buildSectionJSON, 0, len(report.Sections)),
	}
	for _, section := range report.Sections {
		out.Sections = append(out.Sections, sectionToJSON(section))
	}
	return out
}

func sectionToJSON(section dispatch.SectionReport) buildSectionJSON {
	item := buildSectionJSON{
		Position:   section.Position,
		Type:       section.Type.String(),
		LocalDir:   section.LocalDir,
		OutDir:     section.OutDir,
		Status:     string(section.Status),
		OutCreated: section.OutCreated,
		Converted:  section.Converted,
		Skipped:    section.Skipped,
		Ignored:    section.Ignored,
		Collisions: section.Collisions,
	}
	if section.Err != nil {
		item.Error = section.Err.Error()
	}
	for _, file := range section.Files {
		if file.OK() {
			continue
		}
		item.Failures = append(item.Failures, buildFailureJSON{Source: file.Source, Error: file.Err.Error()})
	}
	return item
}

func typeNames() string {
	names := make([]string, 0, resource.TypeCount)
	for _, t := range resource.All() {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}
