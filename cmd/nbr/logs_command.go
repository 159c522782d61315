package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nbr/internal/build"
	"nbr/internal/history"
	"nbr/internal/logging"
	"nbr/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var runID string
	var level string
	var grep string
	var raw bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the log of the latest or a recorded build",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Paths.LogDir == "" {
				return errors.New("file logging is disabled (paths.log_dir is empty)")
			}

			path := filepath.Join(cfg.Paths.LogDir, build.LatestLogName)
			if id := strings.TrimSpace(runID); id != "" {
				store, err := openHistory(ctx)
				if err != nil {
					return err
				}
				run, err := store.Get(cmd.Context(), id)
				store.Close()
				if err != nil {
					if errors.Is(err, history.ErrNotFound) {
						return fmt.Errorf("run %s not found", id)
					}
					return fmt.Errorf("load run: %w", err)
				}
				if run.LogPath == "" {
					return fmt.Errorf("run %s has no log file", id)
				}
				path = run.LogPath
			}
			if _, err := os.Stat(path); err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("no build log at %s", path)
				}
				return fmt.Errorf("stat log: %w", err)
			}

			filter := logs.Filter{MinLevel: logging.ParseLevel("debug"), Contains: strings.TrimSpace(grep)}
			if strings.TrimSpace(level) != "" {
				filter.MinLevel = logging.ParseLevel(level)
			}
			out := cmd.OutOrStdout()
			emit := func(line string) { printLogLine(out, filter, line, raw) }

			tail, offset, err := logs.Tail(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				emit(line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, 250*time.Millisecond, emit)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	cmd.Flags().StringVar(&runID, "run", "", "Show the log of a recorded run")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level to show (debug, info, warn, error)")
	cmd.Flags().StringVar(&grep, "grep", "", "Only show records whose message contains this text")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON records unchanged")
	return cmd
}

func printLogLine(out io.Writer, filter logs.Filter, line string, raw bool) {
	entry, ok := filter.Match(line)
	if !ok {
		return
	}
	if raw || (entry.Message == "" && len(entry.Attrs) == 0) {
		fmt.Fprintln(out, line)
		return
	}
	fmt.Fprintln(out, entry.Format())
}
