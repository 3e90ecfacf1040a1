package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/project"
	"github.com/piwi3910/ClinicLayout/internal/report"
)

const templateUsage = `Usage:
  cliniclayout template save -name NAME [-description TEXT] [input flags]
  cliniclayout template list
  cliniclayout template delete NAME
`

const backupUsage = `Usage:
  cliniclayout backup export FILE
  cliniclayout backup import FILE
`

func runTemplate(_ context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, templateUsage)
		return errUsage
	}
	var (
		e  env
		in inputs
	)
	fs := flag.NewFlagSet("template "+args[0], flag.ContinueOnError)
	e.register(fs)
	description := ""
	if args[0] == "save" {
		in.register(fs)
		fs.StringVar(&description, "description", "", "Template description")
	}
	if err := parseFlags(fs, args[1:], stderr); err != nil {
		return err
	}

	if err := e.setup(stderr); err != nil {
		return err
	}
	defer e.close()
	path := project.TemplatesPath(e.cfg)

	switch args[0] {
	case "save":
		if in.name == "" {
			return errors.New("template save needs -name")
		}
		proj, err := in.load(e.cfg, e.repo)
		if err != nil {
			return err
		}
		tmpl := model.NewProgramTemplate(in.name, description, proj.Shell, proj.Program, proj.Settings)
		replaced, err := project.SaveTemplate(path, tmpl)
		if err != nil {
			return err
		}
		slog.Info("template saved", "name", tmpl.Name, "path", path, "replaced", replaced)
		fmt.Fprintf(stdout, "Saved template %q (%d rooms).\n", tmpl.Name, len(model.ExpandProgram(tmpl.Program)))
		return nil
	case "list":
		store, err := project.LoadTemplates(path)
		if err != nil {
			return err
		}
		return report.New(stdout).Templates(store)
	case "delete":
		if fs.NArg() != 1 {
			fmt.Fprint(stderr, templateUsage)
			return errUsage
		}
		if err := project.DeleteTemplate(path, fs.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Deleted template %q.\n", fs.Arg(0))
		return nil
	}
	fmt.Fprintf(stderr, "unknown template command %q\n\n%s", args[0], templateUsage)
	return errUsage
}

func runBackup(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, backupUsage)
		return errUsage
	}
	var e env
	fs := flag.NewFlagSet("backup "+args[0], flag.ContinueOnError)
	e.register(fs)
	if err := parseFlags(fs, args[1:], stderr); err != nil {
		return err
	}
	if fs.NArg() != 1 || (args[0] != "export" && args[0] != "import") {
		fmt.Fprint(stderr, backupUsage)
		return errUsage
	}
	file := fs.Arg(0)

	if err := e.setup(stderr); err != nil {
		return err
	}
	defer e.close()
	templatesPath := project.TemplatesPath(e.cfg)

	if args[0] == "export" {
		store, err := project.LoadTemplates(templatesPath)
		if err != nil {
			return err
		}
		if err := project.ExportAllData(file, e.cfg, store); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported configuration and %d templates to %s.\n", len(store.Templates), file)
		return nil
	}

	backup, err := project.RestoreAllData(file, e.configFile(), templatesPath)
	if err != nil {
		return err
	}
	slog.Info("backup restored", "file", file, "created_at", backup.CreatedAt)
	fmt.Fprintf(stdout, "Restored configuration and %d templates from %s.\n", len(backup.Templates.Templates), file)
	return nil
}
