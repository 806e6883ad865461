// Package compiler runs the semantic analysis over syntax-tree files, one
// file or a batch at a time, and reports the outcome as diagnostics.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lhaig/storyscript/internal/config"
	"github.com/lhaig/storyscript/internal/diagnostic"
	"github.com/lhaig/storyscript/internal/linter"
	"github.com/lhaig/storyscript/internal/logger"
	"github.com/lhaig/storyscript/internal/semantic"
	"github.com/lhaig/storyscript/internal/tree"
)

// Unit holds the outcome of checking one tree file
type Unit struct {
	Path        string
	Diagnostics *diagnostic.Diagnostics
	// Analysis is nil when the file could not be loaded or failed analysis
	Analysis *semantic.Result
}

// HasErrors reports whether the unit has error diagnostics
func (u *Unit) HasErrors() bool {
	return u.Diagnostics.HasErrors()
}

// Check analyses root. A semantic error becomes an error diagnostic on the
// returned unit; grammar mismatches are internal errors and are returned.
func Check(a *semantic.Analyzer, root *tree.Node, file string) (*Unit, error) {
	unit := &Unit{Path: file, Diagnostics: diagnostic.New()}

	res, err := a.Analyze(root)
	if err != nil {
		e, ok := diagnostic.AsSemantic(err)
		if !ok {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		unit.Diagnostics.Add(e.Diagnostic(file))
		return unit, nil
	}
	unit.Analysis = res
	return unit, nil
}

// Lint checks root and, when analysis succeeds, adds lint warnings.
func Lint(a *semantic.Analyzer, root *tree.Node, file string) (*Unit, error) {
	unit, err := Check(a, root, file)
	if err != nil || unit.Analysis == nil {
		return unit, err
	}
	for _, d := range linter.Lint(unit.Analysis).All() {
		d.File = file
		unit.Diagnostics.Add(d)
	}
	return unit, nil
}

// Batch holds the units of a multi-file run
type Batch struct {
	// Units follow discovery order; files skipped after a fail-fast stop
	// are absent
	Units []*Unit
	// Stopped is set when fail-fast ended the run early
	Stopped bool
}

// HasErrors reports whether any unit has error diagnostics
func (b *Batch) HasErrors() bool {
	for _, u := range b.Units {
		if u.HasErrors() {
			return true
		}
	}
	return false
}

// Diagnostics merges the diagnostics of every unit
func (b *Batch) Diagnostics() *diagnostic.Diagnostics {
	all := diagnostic.New()
	for _, u := range b.Units {
		all.Merge(u.Diagnostics)
	}
	return all
}

type checkFunc func(a *semantic.Analyzer, root *tree.Node, file string) (*Unit, error)

var errStopped = errors.New("compiler: stopped at first failing unit")

// CheckFiles discovers the tree files under paths and checks them
// concurrently, at most cfg.Jobs at a time.
//
// Files that fail to load are reported as error diagnostics. The returned
// error combines discovery failures, internal analyser errors and parent
// context cancellation; the batch is returned alongside it.
func CheckFiles(ctx context.Context, cfg *config.Config, paths ...string) (*Batch, error) {
	return run(ctx, cfg, Check, paths)
}

// LintFiles is CheckFiles with lint warnings added to every unit that
// analyses cleanly.
func LintFiles(ctx context.Context, cfg *config.Config, paths ...string) (*Batch, error) {
	return run(ctx, cfg, Lint, paths)
}

func run(ctx context.Context, cfg *config.Config, check checkFunc, paths []string) (*Batch, error) {
	log := logger.FromContext(ctx)
	reg := NewRegistry(cfg.Extensions)

	files, errs := reg.Discover(paths...)
	log.Debug("discovered tree files", zap.Int("count", len(files)), zap.Strings("paths", paths))

	analyzer := semantic.New(semantic.Options{Logger: log})
	units := make([]*Unit, len(files))
	unitErrs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			start := time.Now()
			unit, err := checkFile(reg, analyzer, check, path)
			if err != nil {
				log.Info("analysis failed", zap.String("file", path), zap.Error(err))
				unitErrs[i] = err
			} else {
				units[i] = unit
				log.Debug("checked unit",
					zap.String("file", path),
					zap.Int("errors", unit.Diagnostics.ErrorCount()),
					zap.Int("warnings", unit.Diagnostics.WarningCount()),
					zap.Duration("elapsed", time.Since(start)))
				if unit.HasErrors() {
					log.Info("unit has errors", zap.String("file", path))
				}
			}
			if cfg.FailFast && (err != nil || unit.HasErrors()) {
				return errStopped
			}
			return nil
		})
	}

	batch := &Batch{}
	if err := g.Wait(); errors.Is(err, errStopped) {
		batch.Stopped = true
	}
	for _, u := range units {
		if u != nil {
			batch.Units = append(batch.Units, u)
		}
	}

	errs = multierr.Append(errs, multierr.Combine(unitErrs...))
	if err := ctx.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return batch, errs
}

func checkFile(reg *Registry, a *semantic.Analyzer, check checkFunc, path string) (*Unit, error) {
	root, err := reg.Load(path)
	if err != nil {
		unit := &Unit{Path: path, Diagnostics: diagnostic.New()}
		unit.Diagnostics.ErrorfInFile(path, 0, 0, "cannot load syntax tree: %s", err)
		return unit, nil
	}
	return check(a, root, path)
}
