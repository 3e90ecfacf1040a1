package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/piwi3910/ClinicLayout/internal/engine"
	"github.com/piwi3910/ClinicLayout/internal/export"
	"github.com/piwi3910/ClinicLayout/internal/history"
	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/pbsolver"
	"github.com/piwi3910/ClinicLayout/internal/project"
	"github.com/piwi3910/ClinicLayout/internal/report"
)

// outputs are the export targets of a solve.
type outputs struct {
	pdf    string
	dxf    string
	xlsx   string
	labels string
	save   string
}

func (o *outputs) register(fs *flag.FlagSet) {
	fs.StringVar(&o.pdf, "pdf", "", "Write the plan and room schedule as PDF")
	fs.StringVar(&o.dxf, "dxf", "", "Write the plan as DXF")
	fs.StringVar(&o.xlsx, "xlsx", "", "Write the room schedule as an Excel workbook")
	fs.StringVar(&o.labels, "labels", "", "Write QR room labels as PDF")
	fs.StringVar(&o.save, "save", "", "Save the project with its result")
}

// resolve places relative output paths under dir.
func (o *outputs) resolve(dir string) {
	if dir == "" || dir == "." {
		return
	}
	for _, p := range []*string{&o.pdf, &o.dxf, &o.xlsx, &o.labels, &o.save} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

const solveNote = `Solve time grows quickly with room count. Under the default objective a
program of six rooms or more usually ends at the time limit with a feasible
layout rather than a proven optimum; raise -time-limit or use -objective none
to drop the room size term.
`

func runSolve(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		e   env
		in  inputs
		out outputs
	)
	fs := flag.NewFlagSet("solve", flag.ContinueOnError)
	e.register(fs)
	in.register(fs)
	out.register(fs)
	checkOnly := fs.Bool("check", false, "Check the program and stop before solving")
	withNote(fs, solveNote)
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
	out.resolve(e.cfg.OutputDir)

	printer := report.New(stdout)
	check := engine.ValidateProgram(proj.Program, proj.Shell, e.repo, proj.Settings)
	if err := printer.Program(check); err != nil {
		return err
	}
	if check.HasErrors() {
		return fmt.Errorf("program has %d errors", check.Count(engine.SeverityError))
	}
	if *checkOnly {
		return nil
	}

	layouter, err := engine.New(proj.Settings, e.repo, newSolver(proj.Settings))
	if err != nil {
		return err
	}
	result, solveErr := layouter.Solve(ctx, request(proj))

	violations := engine.Verify(result, model.ExpandProgram(proj.Program), e.repo, proj.Settings)
	if err := printer.Layout(proj.Name, result, violations); err != nil {
		return err
	}
	recordRun(ctx, e.cfg.HistoryPath, proj.Name, result, len(violations))
	if solveErr != nil {
		return solveErr
	}
	for _, v := range violations {
		slog.Warn("layout violation", "kind", v.Kind, "rooms", v.Rooms, "detail", v.Detail, "soft", v.Soft)
	}

	if err := writeOutputs(out, proj.Name, result, proj.Settings); err != nil {
		return err
	}

	if out.save != "" {
		proj.Result = &result
		if err := project.SaveProject(out.save, proj); err != nil {
			return fmt.Errorf("saving project: %w", err)
		}
		slog.Info("project saved", "path", out.save)
		rememberProject(e, out.save)
	}
	return nil
}

func newSolver(s model.LayoutSettings) *pbsolver.Solver {
	opts := pbsolver.DefaultOptions()
	if limit := s.TimeLimit(); limit > 0 {
		opts.TimeLimit = limit
	}
	return pbsolver.New(opts)
}

func writeOutputs(out outputs, title string, result model.LayoutResult, settings model.LayoutSettings) error {
	var errs []error
	write := func(kind, path string, fn func() error) {
		if path == "" {
			return
		}
		if err := fn(); err != nil {
			errs = append(errs, fmt.Errorf("writing %s %s: %w", kind, path, err))
			return
		}
		slog.Info("export written", "kind", kind, "path", path)
	}
	write("pdf", out.pdf, func() error { return export.ExportPDF(out.pdf, title, result, settings) })
	write("dxf", out.dxf, func() error { return export.ExportDXF(out.dxf, result) })
	write("schedule", out.xlsx, func() error { return export.ExportSchedule(out.xlsx, result) })
	write("labels", out.labels, func() error { return export.ExportLabels(out.labels, result) })
	return errors.Join(errs...)
}

// recordRun stores a run summary in the history ledger. Ledger failures
// are logged and never fail the solve.
func recordRun(ctx context.Context, path, projectName string, result model.LayoutResult, violations int) {
	if path == "" {
		return
	}
	ledger, err := history.Open(ctx, path)
	if err != nil {
		slog.Warn("history unavailable", "path", path, "error", err)
		return
	}
	defer ledger.Close()

	run := history.NewRun(projectName, result, violations)
	if err := ledger.Record(ctx, &run); err != nil {
		slog.Warn("recording run failed", "error", err)
		return
	}
	slog.Debug("run recorded", "id", run.ID)
}

func rememberProject(e env, path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	e.cfg.AddRecentProject(path)
	if err := project.SaveAppConfig(e.configFile(), e.cfg); err != nil {
		slog.Warn("updating recent projects failed", "error", err)
	}
}
