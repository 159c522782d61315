package build

import (
	"context"
	"log/slog"
	"time"

	"nbr/internal/config"
	"nbr/internal/convert"
	"nbr/internal/dispatch"
	"nbr/internal/history"
	"nbr/internal/logging"
)

// recorder mirrors a build into the history database. History is best
// effort: failures are logged once and recording stops.
type recorder struct {
	ctx    context.Context
	store  *history.Store
	run    history.Run
	logger *slog.Logger
}

func openRecorder(ctx context.Context, cfg *config.Config, logger *slog.Logger, run history.Run) *recorder {
	r := &recorder{ctx: context.WithoutCancel(ctx), run: run, logger: logger}
	if !cfg.History.Enabled {
		return r
	}
	store, err := history.Open(cfg)
	if err != nil {
		r.fail("history unavailable", err)
		return r
	}
	r.store = store
	if err := store.BeginRun(r.ctx, run); err != nil {
		r.fail("history run not recorded", err)
	}
	return r
}

func (r *recorder) record(result dispatch.FileResult) {
	if r.store == nil {
		return
	}
	c := history.Conversion{
		RunID:        r.run.ID,
		Section:      result.Section,
		ResourceType: result.Type.String(),
		Source:       result.Source,
		Output:       result.Output,
		Duration:     result.Duration,
	}
	if result.Err != nil {
		c.Reason = convert.Reason(result.Err)
		c.ErrorMessage = result.Err.Error()
	}
	if err := r.store.RecordConversion(r.ctx, c); err != nil {
		r.fail("history conversion not recorded", err)
	}
}

func (r *recorder) finish(status history.RunStatus, report dispatch.Report) {
	if r.store == nil {
		return
	}
	r.run.Status = status
	r.run.FinishedAt = time.Now()
	r.run.Sections = len(report.Sections)
	r.run.FailedSections = report.FailedSections()
	r.run.Converted = report.Converted()
	r.run.Skipped = report.Skipped()
	if err := r.store.FinishRun(r.ctx, r.run); err != nil {
		r.fail("history run not finalized", err)
	}
}

func (r *recorder) fail(msg string, err error) {
	logging.WarnWithContext(r.logger, msg, "history_unavailable",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the state directory or disable [history]"),
		logging.String(logging.FieldImpact, "build continues without history"),
	)
	r.close()
}

func (r *recorder) close() {
	if r.store != nil {
		_ = r.store.Close()
		r.store = nil
	}
}
