package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/piwi3910/ClinicLayout/internal/engine"
	"github.com/piwi3910/ClinicLayout/internal/history"
	"github.com/piwi3910/ClinicLayout/internal/report"
)

const compareNote = `Each scenario gets its own time limit. A scenario cut off by the limit leaves
its last solver run going in the background until it completes, so CPU use
can stay high after the comparison is printed.
`

func runCompare(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		e  env
		in inputs
	)
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	e.register(fs)
	in.register(fs)
	withNote(fs, compareNote)
	if err := parseFlags(fs, args, stderr); err != nil {
		return err
	}

	if err := e.setup(stderr); err != nil {
		return err
	}
	defer e.close()

	proj, err := in.load(e.cfg, e.repo)
	if err != nil {
		return err
	}

	scenarios := engine.BuildDefaultScenarios(proj.Settings)
	results := engine.CompareScenarios(ctx, scenarios, request(proj), e.repo, newSolver(proj.Settings))
	return report.New(stdout).Comparison(results)
}

func runRules(args []string, stdout, stderr io.Writer) error {
	var e env
	fs := flag.NewFlagSet("rules", flag.ContinueOnError)
	e.register(fs)
	n := fs.Int("n", 4, "Treatment room count used to select size tiers")
	if err := parseFlags(fs, args, stderr); err != nil {
		return err
	}
	if *n < 0 {
		return errors.New("-n must not be negative")
	}

	if err := e.setup(stderr); err != nil {
		return err
	}
	defer e.close()

	return report.New(stdout).Rules(e.repo, *n)
}

func runHistory(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var e env
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	e.register(fs)
	dbPath := fs.String("db", "", "Run ledger database (default from configuration)")
	limit := fs.Int("limit", 20, "Number of runs to list (0 = all)")
	if err := parseFlags(fs, args, stderr); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "usage: cliniclayout history [flags] [run-id]")
		return errUsage
	}

	if err := e.setup(stderr); err != nil {
		return err
	}
	defer e.close()

	path := *dbPath
	if path == "" {
		path = e.cfg.HistoryPath
	}
	if path == "" {
		return errors.New("no run history: set history_path in the configuration or use -db")
	}

	ledger, err := history.Open(ctx, path)
	if err != nil {
		return err
	}
	defer ledger.Close()

	printer := report.New(stdout)
	if id := fs.Arg(0); id != "" {
		run, err := ledger.Get(ctx, id)
		if err != nil {
			return err
		}
		return printer.Run(run)
	}

	runs, err := ledger.List(ctx, *limit)
	if err != nil {
		return err
	}
	return printer.Runs(runs)
}
