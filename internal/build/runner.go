package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"nbr/internal/config"
	"nbr/internal/convert"
	"nbr/internal/dispatch"
	"nbr/internal/fileutil"
	"nbr/internal/history"
	"nbr/internal/listfile"
	"nbr/internal/loaders"
	"nbr/internal/logging"
	"nbr/internal/preflight"
	"nbr/internal/resource"
)

// ErrLocked reports that another build of the same list file is running.
var ErrLocked = errors.New("another build of this list file is already running")

// LatestLogName is a pointer to the most recent run log inside the log directory.
const LatestLogName = "build.log"

// Options selects what a build converts and how.
type Options struct {
	ListPath string
	// Filter restricts the build to one resource type when set.
	Filter *resource.Type
	// Strategy and Workers override the configured values when set.
	Strategy string
	Workers  int
	// Logger replaces the configured console and run-file logger.
	Logger *slog.Logger
}

// Result describes a finished build.
type Result struct {
	RunID    string
	ListPath string
	LogPath  string
	Status   history.RunStatus
	Report   dispatch.Report
}

// Run executes a build. Errors are returned only for problems that prevent
// the build from starting; per-file and per-section failures are reported
// in Result.Report.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if strings.TrimSpace(opts.ListPath) == "" {
		return nil, errors.New("list file path is required")
	}

	list, err := listfile.Load(opts.ListPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
		return nil, fmt.Errorf("preflight: %s: %s", failed[0].Name, failed[0].Detail)
	}

	lock, err := acquireLock(cfg, list.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	logger, logPath, err := runLogger(cfg, runID, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if logPath != "" {
		if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
			logger.Debug("latest log pointer not updated", logging.Error(err))
		}
	}

	strategy := cfg.Build.Strategy
	if opts.Strategy != "" {
		strategy = opts.Strategy
	}
	workers := cfg.WorkerCount()
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	result := &Result{RunID: runID, ListPath: list.Path, LogPath: logPath}
	started := time.Now()
	selected := len(list.Select(opts.Filter))

	logger.Info("build started",
		logging.String(logging.FieldEventType, "build_started"),
		logging.String(logging.FieldListFile, list.Path),
		logging.Int("sections", selected),
		logging.String("filter", filterName(opts.Filter)),
	)

	recorder := openRecorder(ctx, cfg, logger, history.Run{
		ID:        runID,
		ListFile:  list.Path,
		Strategy:  strategy,
		Filter:    filterName(opts.Filter),
		StartedAt: started,
		Sections:  selected,
		LogPath:   logPath,
	})
	defer recorder.close()

	registry := convert.New(
		convert.WithFontOptions(loaders.FontOptions{Size: cfg.Loaders.FontSize, DPI: cfg.Loaders.FontDPI}),
		convert.WithLogger(logger),
	)
	dispatcher := dispatch.New(registry,
		dispatch.WithStrategy(strategy),
		dispatch.WithWorkers(workers),
		dispatch.WithQueueDepth(cfg.Build.QueueDepth),
		dispatch.WithIgnorePatterns(cfg.Build.Ignore...),
		dispatch.WithLogger(logger),
		dispatch.WithHook(recorder.record),
	)

	runCtx := logging.WithRunID(ctx, runID)
	result.Report = dispatcher.Run(runCtx, list, opts.Filter)
	result.Status = statusOf(ctx, result.Report)
	recorder.finish(result.Status, result.Report)

	removed := logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     cfg.Paths.LogDir,
		Pattern: logging.RunLogPattern,
		Exclude: []string{logPath},
	})

	logger.Info("build finished",
		logging.String(logging.FieldEventType, "build_finished"),
		logging.String("status", string(result.Status)),
		logging.Int("converted", result.Report.Converted()),
		logging.Int("skipped", result.Report.Skipped()),
		logging.Int("failed_sections", result.Report.FailedSections()),
		logging.Int("logs_pruned", removed),
		logging.Duration("duration", time.Since(started)),
	)
	return result, nil
}

// LockPath returns the lock file guarding builds of listPath.
func LockPath(cfg *config.Config, listPath string) string {
	key := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(listPath))).String()[:8]
	return filepath.Join(cfg.LockDir(), fmt.Sprintf("%s-%s.lock", fileutil.Stem(listPath), key))
}

func acquireLock(cfg *config.Config, listPath string) (*flock.Flock, error) {
	if _, err := fileutil.EnsureDir(cfg.LockDir()); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lockPath := LockPath(cfg, listPath)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, lockPath)
	}
	return lock, nil
}

func runLogger(cfg *config.Config, runID string, override *slog.Logger) (*slog.Logger, string, error) {
	if override != nil {
		return override.With(logging.String(logging.FieldRunID, runID)), "", nil
	}
	return logging.NewFromConfig(cfg, runID)
}

func statusOf(ctx context.Context, report dispatch.Report) history.RunStatus {
	if ctx.Err() != nil {
		return history.RunCanceled
	}
	if n := len(report.Sections); n > 0 && report.FailedSections() == n {
		return history.RunFailed
	}
	if report.Clean() {
		return history.RunCompleted
	}
	return history.RunWarnings
}

func filterName(filter *resource.Type) string {
	if filter == nil {
		return ""
	}
	return filter.String()
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, LatestLogName)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}
