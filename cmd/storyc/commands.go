package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lhaig/storyscript/internal/cli"
	"github.com/lhaig/storyscript/internal/compiler"
	"github.com/lhaig/storyscript/internal/config"
	"github.com/lhaig/storyscript/internal/formatter"
	"github.com/lhaig/storyscript/internal/logger"
	"github.com/lhaig/storyscript/internal/semantic"
	"github.com/lhaig/storyscript/internal/tree"
)

// errFound signals that diagnostics with errors were already printed
var errFound = errors.New("errors found")

const long = `storyc checks storyscript syntax trees.

Trees are YAML or JSON files holding a parsed program. Settings can be
given as flags, as STORYC_* environment variables (STORYC_LOG_LEVEL,
STORYC_JOBS, ...) or in a config file named by --config.`

type runFunc func(ctx context.Context, cfg *config.Config, args []string) error

type app struct {
	stdout, stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "storyc",
		Short:         "Static checks for storyscript syntax trees",
		Long:          long,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(
		a.command("check", "Type-check tree files and directories", cobra.MinimumNArgs(1), a.check),
		a.command("lint", "Type-check and report style warnings", cobra.MinimumNArgs(1), a.lint),
		a.command("scopes", "Print the scopes built for a tree file", cobra.ExactArgs(1), a.scopes),
		a.command("tree", "Print a tree file", cobra.ExactArgs(1), a.tree),
		a.command("fmt", "Print a tree file as storyscript source", cobra.ExactArgs(1), a.format),
	)
	return root
}

// command builds a subcommand carrying the shared configuration options.
func (a *app) command(name, short string, args cobra.PositionalArgs, run runFunc) *cobra.Command {
	cfg := config.NewConfig()
	return cli.NewCommand(viper.New(), &cli.Program{
		Name:      name,
		EnvPrefix: "storyc",
		Short:     short,
		Args:      args,
		Opts:      cfg.Opts(),
		Run: func(ctx context.Context, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, err := logger.New(a.stderr, cfg.Logger())
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return run(logger.NewContextWithLogger(ctx, log), cfg, args)
		},
	})
}

func (a *app) check(ctx context.Context, cfg *config.Config, args []string) error {
	batch, err := compiler.CheckFiles(ctx, cfg, args...)
	if batch != nil {
		if diag := batch.Diagnostics(); diag.Count() > 0 {
			fmt.Fprintln(a.stderr, diag.Format(""))
		}
	}
	if err != nil {
		return err
	}
	if len(batch.Units) == 0 {
		return errors.New("no tree files found")
	}
	return a.summarise(batch)
}

func (a *app) lint(ctx context.Context, cfg *config.Config, args []string) error {
	batch, err := compiler.LintFiles(ctx, cfg, args...)
	diag := batch.Diagnostics()
	if diag.Count() > 0 {
		fmt.Fprintln(a.stdout, diag.Format(""))
	}
	if err != nil {
		return err
	}

	if diag.Count() == 0 {
		fmt.Fprintln(a.stdout, "No lint warnings.")
		return nil
	}
	fmt.Fprintf(a.stdout, "%d warning(s) found.\n", diag.WarningCount())
	if diag.HasErrors() {
		return errFound
	}
	return nil
}

func (a *app) summarise(batch *compiler.Batch) error {
	if batch.Stopped {
		fmt.Fprintln(a.stderr, "Stopped at the first file with errors.")
	}
	if !batch.HasErrors() {
		fmt.Fprintf(a.stdout, "No errors found in %d file(s).\n", len(batch.Units))
		return nil
	}

	failed := 0
	for _, u := range batch.Units {
		if u.HasErrors() {
			failed++
		}
	}
	fmt.Fprintf(a.stderr, "%d of %d file(s) have errors.\n", failed, len(batch.Units))
	return errFound
}

func (a *app) scopes(ctx context.Context, _ *config.Config, args []string) error {
	root, err := tree.Load(args[0])
	if err != nil {
		return err
	}

	analyzer := semantic.New(semantic.Options{Logger: logger.FromContext(ctx)})
	unit, err := compiler.Check(analyzer, root, args[0])
	if err != nil {
		return err
	}
	if unit.HasErrors() {
		fmt.Fprintln(a.stderr, unit.Diagnostics.Format(args[0]))
		return errFound
	}

	fmt.Fprint(a.stdout, unit.Analysis.DumpScopes())
	return nil
}

func (a *app) tree(_ context.Context, _ *config.Config, args []string) error {
	root, err := tree.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(a.stdout, tree.Print(root))
	return nil
}

func (a *app) format(_ context.Context, _ *config.Config, args []string) error {
	root, err := tree.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(a.stdout, formatter.Format(root))
	return nil
}
