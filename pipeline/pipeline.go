// Package pipeline runs the project's named build tasks (apk, aab, setup, ...).
//
// A task is an ordered list of steps, most of which shell out to flutter,
// dart, adb or pod. Steps run sequentially. A failing step is reported with
// its stderr and the task carries on with the next step; the [Result] records
// which steps failed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"

	"github.com/albertocavalcante/go-flutterkit/layout"
)

// ErrUnknownTask is returned by Run for a task name that is not registered.
var ErrUnknownTask = errors.New("unknown task")

// BuildSettings parameterise the release build commands.
type BuildSettings struct {
	// TargetPlatform is passed to `flutter build apk --target-platform`.
	// Empty builds a fat APK.
	TargetPlatform string
	Obfuscate      bool
	// SplitDebugInfo is the --split-debug-info directory, required by
	// --obfuscate.
	SplitDebugInfo string
	// OpenOutputs opens the output directory in the OS file browser after a
	// successful build.
	OpenOutputs bool
}

// DefaultBuildSettings match the project build script.
func DefaultBuildSettings() BuildSettings {
	return BuildSettings{
		TargetPlatform: "android-arm64",
		Obfuscate:      true,
		SplitDebugInfo: "./",
		OpenOutputs:    true,
	}
}

// Pipeline runs tasks for one Flutter project.
type Pipeline struct {
	layout   layout.Layout
	runner   Runner
	reporter *Reporter
	build    BuildSettings
	adb      string
	goos     string
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(p *Pipeline) { p.runner = r }
}

// WithOutput sets where progress is printed.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.reporter = NewReporter(w) }
}

// WithBuildSettings overrides DefaultBuildSettings.
func WithBuildSettings(s BuildSettings) Option {
	return func(p *Pipeline) { p.build = s }
}

// WithADB sets the adb binary used by release-run.
func WithADB(path string) Option {
	return func(p *Pipeline) {
		if path != "" {
			p.adb = path
		}
	}
}

// WithLogger sets the debug logger. nil disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		p.logger = l
	}
}

// New creates a Pipeline for the project at l.
func New(l layout.Layout, opts ...Option) *Pipeline {
	p := &Pipeline{
		layout: l,
		build:  DefaultBuildSettings(),
		adb:    "adb",
		goos:   runtime.GOOS,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		p.runner = ExecRunner{Logger: p.logger}
	}
	if p.reporter == nil {
		p.reporter = NewReporter(os.Stdout)
	}
	return p
}

// StepResult is the outcome of one step.
type StepResult struct {
	Description string
	Err         error
}

// Result is the outcome of a task.
type Result struct {
	Task  string
	Steps []StepResult
}

// Failed reports whether any step failed.
func (r *Result) Failed() bool {
	return len(r.Errors()) > 0
}

// Errors returns the errors of failed steps in order.
func (r *Result) Errors() []error {
	var errs []error
	for _, s := range r.Steps {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errs
}

// Err joins all step errors, or returns nil.
func (r *Result) Err() error {
	return errors.Join(r.Errors()...)
}

// Tasks returns the registered task names in display order.
func Tasks() []string {
	names := make([]string, 0, len(tasks))
	for _, t := range tasks {
		names = append(names, t.name)
	}
	return names
}

// Describe returns the one-line help text of a task.
func Describe(name string) (string, bool) {
	t, ok := lookupTask(name)
	if !ok {
		return "", false
	}
	return t.summary, true
}

// Run executes the named task. The returned error is non-nil only for setup
// problems such as an unknown task; step failures are in the Result.
func (p *Pipeline) Run(ctx context.Context, name string) (*Result, error) {
	t, ok := lookupTask(name)
	if !ok {
		return nil, fmt.Errorf("%w %q: want one of %v", ErrUnknownTask, name, Tasks())
	}
	if err := p.layout.EnsureOutputDirs(); err != nil {
		return nil, err
	}

	p.logger.Debug("running task", "task", t.name, "project", p.layout.ProjectDir)
	p.reporter.Headerf("%s", t.header)

	res := &Result{Task: t.name}
	for _, s := range t.steps(p) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Steps = append(res.Steps, StepResult{Description: s.desc, Err: p.runStep(ctx, s)})
	}

	if t.finish != nil {
		t.finish(ctx, p, res)
	}
	return res, nil
}

func (p *Pipeline) runStep(ctx context.Context, s step) error {
	if s.fn != nil {
		done := p.reporter.Step(s.desc)
		err := s.fn(ctx)
		if err != nil {
			err = &StepError{Step: s.desc, Err: err}
		}
		done(err, "")
		return err
	}

	done := p.reporter.Step(s.desc)
	out, err := p.runner.Run(ctx, s.dir, s.argv[0], s.argv[1:]...)
	if err != nil {
		err = &StepError{Step: s.desc, Command: slices.Clone(s.argv), Stderr: out.Stderr, Err: err}
	}
	done(err, out.Stderr)
	return err
}
