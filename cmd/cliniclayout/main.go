// ClinicLayout: floorplan generator for dental clinics.
//
// Rooms from a program are placed inside a rectangular building shell by a
// mixed-integer model of the clinic's planning rules.
//
// Usage:
//
//	cliniclayout solve -shell 60'x40' -room TREATMENT_ROOM=4 -pdf plan.pdf
//	cliniclayout solve -program program.xlsx -shell-dxf shell.dxf -save clinic.clinic
//	cliniclayout compare -project clinic.clinic
//	cliniclayout rules -n 6
//	cliniclayout history [-limit 20] [run-id]
//	cliniclayout template save -name "Four Chair" -shell 60'x40' -room TREATMENT_ROOM=4
//	cliniclayout solve -template "Four Chair" -pdf plan.pdf
//	cliniclayout backup export backup.json
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const usage = `Usage: cliniclayout <command> [flags]

Commands:
  solve     place a room program inside a shell and export the plan
  compare   solve one program under several setting scenarios
  rules     list room types and their size bounds
  history   list recorded solve runs, or show one run
  template  save, list or delete program templates
  backup    export or import configuration and templates
  version   print the version

Run "cliniclayout <command> -h" for command flags.
`

var (
	// errUsage marks a command line that could not be parsed.
	errUsage = errors.New("usage error")
	// errHelp marks a command line that asked for help.
	errHelp = errors.New("help requested")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil, errors.Is(err, errHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		slog.Error("cliniclayout failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "solve":
		return runSolve(ctx, rest, stdout, stderr)
	case "compare":
		return runCompare(ctx, rest, stdout, stderr)
	case "rules":
		return runRules(rest, stdout, stderr)
	case "history":
		return runHistory(ctx, rest, stdout, stderr)
	case "template":
		return runTemplate(ctx, rest, stdout, stderr)
	case "backup":
		return runBackup(rest, stdout, stderr)
	case "version", "-version", "--version":
		fmt.Fprintf(stdout, "cliniclayout %s (built %s)\n", Version, BuildTime)
		return nil
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
	return errUsage
}
