package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"nbr/internal/convert"
	"nbr/internal/envelope"
	"nbr/internal/fileutil"
	"nbr/internal/listfile"
	"nbr/internal/logging"
	"nbr/internal/resource"
)

// Scheduling strategies.
const (
	StrategyPool    = "pool"
	StrategySection = "section"
)

const defaultQueueDepth = 64

// Converter turns one source file into an envelope under outDir and returns
// the envelope path.
type Converter interface {
	Convert(ctx context.Context, path, outDir string, t resource.Type) (string, error)
}

// Hook observes every file result as it is produced. Calls are serialized.
type Hook func(FileResult)

// Option configures a Dispatcher.
type Option func(*options)

type options struct {
	strategy   string
	workers    int
	queueDepth int
	ignore     []string
	logger     *slog.Logger
	hook       Hook
	now        func() time.Time
}

// WithStrategy selects StrategyPool or StrategySection.
func WithStrategy(strategy string) Option {
	return func(o *options) { o.strategy = strategy }
}

// WithWorkers sets the pool size. Values below one use one worker per CPU.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithQueueDepth bounds the pool's pending work queue.
func WithQueueDepth(n int) Option {
	return func(o *options) { o.queueDepth = n }
}

// WithIgnorePatterns adds gitignore-style patterns applied to directory
// expansion.
func WithIgnorePatterns(patterns ...string) Option {
	return func(o *options) { o.ignore = append(o.ignore, patterns...) }
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHook registers a per-file observer.
func WithHook(hook Hook) Option {
	return func(o *options) { o.hook = hook }
}

// Dispatcher schedules conversions for the sections of a list file.
type Dispatcher struct {
	conv   Converter
	opts   options
	logger *slog.Logger
	hookMu sync.Mutex
}

// New constructs a Dispatcher around conv.
func New(conv Converter, opts ...Option) *Dispatcher {
	o := options{strategy: StrategyPool, queueDepth: defaultQueueDepth, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.NumCPU()
	}
	if o.queueDepth < 1 {
		o.queueDepth = defaultQueueDepth
	}
	if o.strategy != StrategySection {
		o.strategy = StrategyPool
	}
	return &Dispatcher{
		conv:   conv,
		opts:   o,
		logger: logging.NewComponentLogger(o.logger, "dispatch"),
	}
}

// Strategy returns the scheduler in use.
func (d *Dispatcher) Strategy() string {
	return d.opts.strategy
}

// sectionRun is the mutable state of one section during a run.
type sectionRun struct {
	section listfile.ListSection
	logger  *slog.Logger
	sampler *logging.ProgressSampler

	mu     sync.Mutex
	report SectionReport
	total  int
	done   int
}

type workItem struct {
	run  *sectionRun
	path string
}

// Run converts the sections of list matching filter (nil selects all) and
// blocks until every selected section has finished.
func (d *Dispatcher) Run(ctx context.Context, list *listfile.ListContext, filter *resource.Type) Report {
	report := Report{Started: d.opts.now()}
	if id, ok := logging.RunIDFromContext(ctx); ok {
		report.RunID = id
	}

	logger := d.logger
	if list != nil && list.Path != "" {
		logger = logger.With(logging.String(logging.FieldListFile, list.Path))
	}

	indices := list.Select(filter)
	runs := make([]*sectionRun, 0, len(indices))
	for _, i := range indices {
		section := list.Sections[i]
		position := i + 1
		runs = append(runs, &sectionRun{
			section: section,
			logger: logger.With(
				logging.Int(logging.FieldSection, position),
				logging.String(logging.FieldResourceType, section.Type.String()),
			),
			sampler: logging.NewProgressSampler(10),
			report: SectionReport{
				Position: position,
				Type:     section.Type,
				LocalDir: section.LocalDir,
				OutDir:   section.OutDir,
				Status:   StatusCompleted,
			},
		})
	}

	logger.Info("dispatch started",
		logging.String(logging.FieldEventType, "dispatch_started"),
		logging.Int("sections", len(runs)),
		logging.String("strategy", d.opts.strategy),
		logging.Int("workers", d.workerCount()),
	)

	if d.opts.strategy == StrategySection {
		d.runSections(ctx, runs)
	} else {
		d.runPool(ctx, runs)
	}

	report.Finished = d.opts.now()
	report.Sections = make([]SectionReport, 0, len(runs))
	for _, run := range runs {
		d.finishSection(ctx, run)
		report.Sections = append(report.Sections, run.report)
	}

	logger.Info("dispatch finished",
		logging.String(logging.FieldEventType, "dispatch_finished"),
		logging.Int("converted", report.Converted()),
		logging.Int("skipped", report.Skipped()),
		logging.Int("failed_sections", report.FailedSections()),
		logging.Duration("duration", report.Duration()),
	)
	return report
}

func (d *Dispatcher) workerCount() int {
	if d.opts.strategy == StrategySection {
		return 0
	}
	return d.opts.workers
}

// runPool expands every section on its own producer goroutine into one
// bounded queue consumed by a fixed set of workers.
func (d *Dispatcher) runPool(ctx context.Context, runs []*sectionRun) {
	items := make(chan workItem, d.opts.queueDepth)

	var workers sync.WaitGroup
	for range d.opts.workers {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for item := range items {
				if ctx.Err() != nil {
					continue
				}
				d.convert(ctx, item.run, item.path)
			}
		}()
	}

	var producers sync.WaitGroup
	for _, run := range runs {
		producers.Add(1)
		go func(run *sectionRun) {
			defer producers.Done()
			files, ok := d.prepare(run)
			if !ok {
				return
			}
			for _, path := range files {
				select {
				case items <- workItem{run: run, path: path}:
				case <-ctx.Done():
					return
				}
			}
		}(run)
	}

	producers.Wait()
	close(items)
	workers.Wait()
}

// runSections converts each section serially on its own goroutine.
func (d *Dispatcher) runSections(ctx context.Context, runs []*sectionRun) {
	var wg sync.WaitGroup
	for _, run := range runs {
		wg.Add(1)
		go func(run *sectionRun) {
			defer wg.Done()
			files, ok := d.prepare(run)
			if !ok {
				return
			}
			for _, path := range files {
				if ctx.Err() != nil {
					return
				}
				d.convert(ctx, run, path)
			}
		}(run)
	}
	wg.Wait()
}

// prepare validates the section's directories and expands its resources.
// It returns false when the section cannot run.
func (d *Dispatcher) prepare(run *sectionRun) ([]string, bool) {
	section := run.section
	position := run.report.Position

	if err := fileutil.RequireDir(section.LocalDir); err != nil {
		d.failSection(run, &DirectoryError{Section: position, Role: "local", Path: section.LocalDir, Err: err},
			"check that the section's local directory exists")
		return nil, false
	}

	created, err := fileutil.EnsureDir(section.OutDir)
	if err != nil {
		d.failSection(run, &DirectoryError{Section: position, Role: "out", Path: section.OutDir, Err: err},
			"check permissions on the output directory's parent")
		return nil, false
	}
	if created {
		logging.WarnWithContext(run.logger, "output directory created",
			"output_dir_created",
			logging.String("out_dir", section.OutDir),
			logging.String(logging.FieldErrorHint, "create the directory ahead of time to silence this warning"),
			logging.String(logging.FieldImpact, "none; conversion continues"),
		)
	}

	exp := d.expand(position, section.ResourcePaths())
	collisions := d.warnCollisions(run, exp.files)

	run.mu.Lock()
	run.report.OutCreated = created
	run.report.Ignored = exp.ignored
	run.report.Collisions = collisions
	run.total = len(exp.files) + len(exp.missing)
	run.mu.Unlock()

	for _, missing := range exp.missing {
		missing.Type = section.Type
		d.record(run, missing)
	}

	run.logger.Debug("section expanded",
		logging.Int("resources", len(section.Resources)),
		logging.Int("files", len(exp.files)),
		logging.Int("ignored", exp.ignored),
	)
	return exp.files, true
}

// warnCollisions reports files of one section that map to the same envelope.
// Both are still converted and whichever finishes last stays on disk.
func (d *Dispatcher) warnCollisions(run *sectionRun, files []string) int {
	claimed := make(map[string]string, len(files))
	collisions := 0
	for _, file := range files {
		target := envelope.Path(run.section.OutDir, file, run.section.Type)
		first, ok := claimed[target]
		if !ok {
			claimed[target] = file
			continue
		}
		collisions++
		logging.WarnWithContext(run.logger, "output name collision", "output_name_collision",
			logging.String(logging.FieldOutput, target),
			logging.String(logging.FieldSource, file),
			logging.String("first_source", first),
			logging.String(logging.FieldErrorHint, "rename one of the sources or split them into separate sections"),
			logging.String(logging.FieldImpact, "one envelope overwrites the other"),
		)
	}
	return collisions
}

func (d *Dispatcher) failSection(run *sectionRun, err error, hint string) {
	run.mu.Lock()
	run.report.Status = StatusFailed
	run.report.Err = err
	run.mu.Unlock()

	logging.ErrorWithContext(run.logger, "section failed", "section_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
	)
}

func (d *Dispatcher) convert(ctx context.Context, run *sectionRun, path string) {
	started := d.opts.now()
	output, err := d.conv.Convert(ctx, path, run.section.OutDir, run.section.Type)
	d.record(run, FileResult{
		Section:  run.report.Position,
		Type:     run.section.Type,
		Source:   path,
		Output:   output,
		Err:      err,
		Duration: d.opts.now().Sub(started),
	})
}

// record stores a file result, logs it and forwards it to the hook.
func (d *Dispatcher) record(run *sectionRun, result FileResult) {
	run.mu.Lock()
	run.report.Files = append(run.report.Files, result)
	if result.OK() {
		run.report.Converted++
	} else {
		run.report.Skipped++
	}
	run.done++
	done, total := run.done, run.total
	run.mu.Unlock()

	if result.OK() {
		run.logger.Debug("resource converted",
			logging.String(logging.FieldSource, result.Source),
			logging.String(logging.FieldOutput, result.Output),
			logging.Duration("duration", result.Duration),
		)
	} else {
		attrs := []logging.Attr{
			logging.String(logging.FieldSource, result.Source),
			logging.String("reason", convert.Reason(result.Err)),
			logging.Error(result.Err),
		}
		if hint := convert.Hint(result.Err); hint != "" {
			attrs = append(attrs, logging.String(logging.FieldErrorHint, hint))
		}
		logging.WarnWithContext(run.logger, "resource skipped", "resource_skipped", attrs...)
	}

	if run.sampler.ShouldLog(done, total) {
		run.logger.Info("section progress",
			logging.Int("done", done),
			logging.Int("total", total),
		)
	}

	if d.opts.hook != nil {
		d.hookMu.Lock()
		d.opts.hook(result)
		d.hookMu.Unlock()
	}
}

// finishSection settles the section status after all workers have joined.
func (d *Dispatcher) finishSection(ctx context.Context, run *sectionRun) {
	run.mu.Lock()
	defer run.mu.Unlock()

	if run.report.Status == StatusCompleted && run.done < run.total && ctx.Err() != nil {
		run.report.Status = StatusCanceled
		run.report.Err = ctx.Err()
	}
	if run.report.Status != StatusCompleted {
		if errors.Is(run.report.Err, context.Canceled) || errors.Is(run.report.Err, context.DeadlineExceeded) {
			run.logger.Warn("section canceled",
				logging.String(logging.FieldEventType, "section_canceled"),
				logging.Int("done", run.done),
				logging.Int("total", run.total),
			)
		}
		return
	}
	run.logger.Info("section completed",
		logging.String(logging.FieldEventType, "section_completed"),
		logging.String("out_dir", run.section.OutDir),
		logging.Int("converted", run.report.Converted),
		logging.Int("skipped", run.report.Skipped),
		logging.Int("ignored", run.report.Ignored),
	)
}
