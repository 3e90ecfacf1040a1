package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/project"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

// env is the state shared by every command: configuration, logging and
// the rule repository.
type env struct {
	configPath string
	rulesPath  string
	debug      bool

	cfg     model.AppConfig
	repo    *rules.Repository
	closeFn func() error
}

func (e *env) register(fs *flag.FlagSet) {
	fs.StringVar(&e.configPath, "config", "", "Path to configuration file (default ~/.cliniclayout/config.toml)")
	fs.StringVar(&e.rulesPath, "rules", "", "YAML rule overrides merged over the built-in rules")
	fs.BoolVar(&e.debug, "debug", false, "Enable debug logging")
}

// setup loads the configuration, installs the default logger and loads
// the rules. Callers must call close.
func (e *env) setup(stderr io.Writer) error {
	path := e.configFile()
	cfg, err := project.LoadAppConfig(path)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	e.cfg = cfg

	if err := e.setupLogging(stderr); err != nil {
		return err
	}
	slog.Debug("configuration loaded", "path", path)

	repo, err := rules.Default()
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	for _, override := range []string{cfg.RulesOverridePath, e.rulesPath} {
		if override == "" {
			continue
		}
		repo, err = repo.WithOverridesFile(override)
		if err != nil {
			return fmt.Errorf("applying rule overrides: %w", err)
		}
		slog.Info("rule overrides applied", "path", override, "types", repo.Len())
	}
	e.repo = repo
	return nil
}

// configFile returns the configuration file in use.
func (e *env) configFile() string {
	if e.configPath != "" {
		return e.configPath
	}
	return project.DefaultConfigPath()
}

func (e *env) setupLogging(stderr io.Writer) error {
	level := parseLevel(e.cfg.Log.Level)
	if e.debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if e.cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(e.cfg.Log.File), 0750); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(e.cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		e.closeFn = f.Close
		handler = slog.NewJSONHandler(f, opts)
	} else {
		handler = slog.NewTextHandler(stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func (e *env) close() {
	if e.closeFn != nil {
		_ = e.closeFn()
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// parseFlags parses args into fs, printing errors and help to stderr.
func parseFlags(fs *flag.FlagSet, args []string, stderr io.Writer) error {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return errUsage
	}
	return nil
}

// withNote prints note after the default flag listing on -h.
func withNote(fs *flag.FlagSet, note string) {
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage of %s:\n", fs.Name())
		fs.PrintDefaults()
		fmt.Fprintf(out, "\n%s", note)
	}
}
