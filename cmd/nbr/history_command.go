package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nbr/internal/history"
)

type runJSON struct {
	ID             string `json:"id"`
	ListFile       string `json:"list_file"`
	Strategy       string `json:"strategy"`
	Filter         string `json:"filter,omitempty"`
	Status         string `json:"status"`
	StartedAt      string `json:"started_at"`
	FinishedAt     string `json:"finished_at,omitempty"`
	Sections       int    `json:"sections"`
	FailedSections int    `json:"failed_sections"`
	Converted      int    `json:"converted"`
	Skipped        int    `json:"skipped"`
	LogPath        string `json:"log_path,omitempty"`
}

type conversionJSON struct {
	Section  int    `json:"section"`
	Type     string `json:"type"`
	Source   string `json:"source"`
	Output   string `json:"output,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error,omitempty"`
	Duration int64  `json:"duration_ms"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var failedOnly bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded build runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if id := strings.TrimSpace(runID); id != "" {
				return showRun(cmd, store, id, failedOnly, jsonOutput)
			}
			if limit <= 0 {
				return fmt.Errorf("limit must be positive")
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if jsonOutput {
				items := make([]runJSON, 0, len(runs))
				for _, run := range runs {
					items = append(items, runToJSON(run))
				}
				return newConsole(cmd).emit(items)
			}

			c := newConsole(cmd)
			if len(runs) == 0 {
				c.println("No builds recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					string(run.Status),
					strconv.Itoa(run.Converted),
					strconv.Itoa(run.Skipped),
					formatDuration(run.Duration()),
					run.ListFile,
				})
			}
			c.table([]column{
				{title: "Run"},
				{title: "Started"},
				{title: "Status"},
				{title: "Converted", numeric: true},
				{title: "Skipped", numeric: true},
				{title: "Duration", numeric: true},
				{title: "List"},
			}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show per-file outcomes for one run")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "With --run, show only skipped files")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return fmt.Errorf("keep must be non-negative")
			}
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), keep)
			if err != nil {
				return fmt.Errorf("prune history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 50, "Number of recent runs to keep")
	return cmd
}

func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, errors.New("build history is disabled (history.enabled = false)")
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func showRun(cmd *cobra.Command, store *history.Store, id string, failedOnly, jsonOutput bool) error {
	run, err := store.Get(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("run %s not found", id)
		}
		return fmt.Errorf("load run: %w", err)
	}
	conversions, err := store.Conversions(cmd.Context(), run.ID, failedOnly)
	if err != nil {
		return fmt.Errorf("load conversions: %w", err)
	}

	c := newConsole(cmd)
	if jsonOutput {
		items := make([]conversionJSON, 0, len(conversions))
		for _, c := range conversions {
			items = append(items, conversionJSON{
				Section:  c.Section,
				Type:     c.ResourceType,
				Source:   c.Source,
				Output:   c.Output,
				Reason:   c.Reason,
				Error:    c.ErrorMessage,
				Duration: c.Duration.Milliseconds(),
			})
		}
		return c.emit(struct {
			Run         runJSON          `json:"run"`
			Conversions []conversionJSON `json:"conversions"`
		}{Run: runToJSON(run), Conversions: items})
	}

	c.heading("Run " + run.ID)
	c.status("List", toneInfo, run.ListFile)
	c.status("Status", runTone(run.Status), string(run.Status))
	if run.LogPath != "" {
		c.status("Log", toneInfo, run.LogPath)
	}

	if len(conversions) == 0 {
		c.println("No conversions recorded")
		return nil
	}
	rows := make([][]string, 0, len(conversions))
	for _, c := range conversions {
		result := "ok"
		if !c.OK() {
			result = c.Reason
		}
		rows = append(rows, []string{
			strconv.Itoa(c.Section),
			c.ResourceType,
			c.Source,
			result,
			formatDuration(c.Duration),
		})
	}
	c.table([]column{
		{title: "#", numeric: true},
		{title: "Type"},
		{title: "Source"},
		{title: "Result"},
		{title: "Duration", numeric: true},
	}, rows)
	return nil
}

func runToJSON(run history.Run) runJSON {
	item := runJSON{
		ID:             run.ID,
		ListFile:       run.ListFile,
		Strategy:       run.Strategy,
		Filter:         run.Filter,
		Status:         string(run.Status),
		StartedAt:      run.StartedAt.UTC().Format(time.RFC3339),
		Sections:       run.Sections,
		FailedSections: run.FailedSections,
		Converted:      run.Converted,
		Skipped:        run.Skipped,
		LogPath:        run.LogPath,
	}
	if !run.FinishedAt.IsZero() {
		item.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	return item
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
