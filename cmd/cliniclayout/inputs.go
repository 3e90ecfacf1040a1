package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/ClinicLayout/internal/engine"
	"github.com/piwi3910/ClinicLayout/internal/importer"
	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/project"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

// roomFlags collects repeated -room TYPE=N flags.
type roomFlags []model.RoomRequest

func (r *roomFlags) String() string {
	parts := make([]string, len(*r))
	for i, req := range *r {
		parts[i] = fmt.Sprintf("%s=%d", req.Type, req.Count)
	}
	return strings.Join(parts, ",")
}

func (r *roomFlags) Set(v string) error {
	req, err := parseRoom(v)
	if err != nil {
		return err
	}
	*r = append(*r, req)
	return nil
}

// parseRoom reads TYPE=N or TYPE (one room). The type is normalized the
// way program sheets are, so "treatment room=4" works too.
func parseRoom(v string) (model.RoomRequest, error) {
	name, count, hasCount := strings.Cut(v, "=")
	roomType := importer.NormalizeSpace(name)
	if roomType == "" {
		return model.RoomRequest{}, fmt.Errorf("room %q: missing type", v)
	}
	n := 1
	if hasCount {
		var err error
		n, err = strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 0 {
			return model.RoomRequest{}, fmt.Errorf("room %q: count must be a non-negative integer", v)
		}
	}
	return model.NewRoomRequest(roomType, n), nil
}

// inputs are the flags that describe one layout job.
type inputs struct {
	projectPath string
	template    string
	programPath string
	shell       string
	shellDXF    string
	name        string
	rooms       roomFlags

	timeLimit    int
	objective    string
	scaling      int
	maxEntrances int
	softRules    string
}

func (in *inputs) register(fs *flag.FlagSet) {
	fs.StringVar(&in.projectPath, "project", "", "Load shell, program and settings from a project file")
	fs.StringVar(&in.template, "template", "", "Start from a saved program template")
	fs.StringVar(&in.programPath, "program", "", "Room program spreadsheet (.csv, .tsv, .xlsx)")
	fs.StringVar(&in.shell, "shell", "", `Shell size, e.g. 720x480 (inches) or 60'x40'`)
	fs.StringVar(&in.shellDXF, "shell-dxf", "", "Read the shell outline from a DXF drawing")
	fs.StringVar(&in.name, "name", "", "Project name")
	fs.Var(&in.rooms, "room", "Room request TYPE=N, repeatable")
	fs.IntVar(&in.timeLimit, "time-limit", 0, "Solver time limit in seconds (0 = settings)")
	fs.StringVar(&in.objective, "objective", "", "Room size objective: generous, compact or none")
	fs.IntVar(&in.scaling, "n", 0, "Treatment room count used for sizing (0 = from program)")
	fs.IntVar(&in.maxEntrances, "max-entrances", 0, "Door slots per room (0 = settings)")
	fs.StringVar(&in.softRules, "soft-rules", "", "Soft rule policy: relax, enforce or skip")
}

// load builds the project for a job. Rooms given with -room are added to
// the program, replacing entries of the same type.
func (in *inputs) load(cfg model.AppConfig, repo *rules.Repository) (model.Project, error) {
	proj := model.NewProject()
	cfg.ApplyToSettings(&proj.Settings)

	switch {
	case in.projectPath != "" && in.template != "":
		return proj, errors.New("use either -project or -template")
	case in.projectPath != "":
		loaded, err := project.LoadProject(in.projectPath)
		if err != nil {
			return proj, err
		}
		proj = loaded
		proj.Result = nil
	case in.template != "":
		tmpl, err := project.LoadTemplate(project.TemplatesPath(cfg), in.template)
		if err != nil {
			return proj, err
		}
		proj = tmpl.ToProject(tmpl.Name)
	}

	if in.programPath != "" {
		res, err := importProgram(in.programPath, repo)
		if err != nil {
			return proj, err
		}
		proj.Program = res.Rooms
		proj.Metadata = res.Metadata
		if res.Shell.Valid() {
			proj.Shell = res.Shell
		}
		if proj.Name == "" || proj.Name == "Untitled" {
			proj.Name = res.Metadata.Client
		}
	}
	proj.Program = mergeRooms(proj.Program, in.rooms)

	if in.shellDXF != "" {
		res := importer.ImportShellDXF(in.shellDXF)
		for _, w := range res.Warnings {
			slog.Warn("shell import", "file", in.shellDXF, "warning", w)
		}
		if len(res.Errors) > 0 {
			return proj, fmt.Errorf("importing shell %s: %s", in.shellDXF, strings.Join(res.Errors, "; "))
		}
		proj.Shell = res.Shell
	}
	if in.shell != "" {
		shell, ok := importer.ParseShell(in.shell)
		if !ok {
			return proj, fmt.Errorf("invalid shell size %q", in.shell)
		}
		proj.Shell = shell
	}

	if in.name != "" {
		proj.Name = in.name
	}
	if proj.Name == "" {
		proj.Name = "Untitled"
	}

	if err := in.applySettings(&proj.Settings); err != nil {
		return proj, err
	}

	if !proj.Shell.Valid() {
		return proj, errors.New("no shell: use -shell, -shell-dxf, -project, -template or a program with a project size")
	}
	if len(model.ExpandProgram(proj.Program)) == 0 {
		return proj, errors.New("empty program: use -room, -program, -project or -template")
	}
	return proj, nil
}

func (in *inputs) applySettings(s *model.LayoutSettings) error {
	if in.timeLimit > 0 {
		s.TimeLimitSeconds = in.timeLimit
	}
	if in.objective != "" {
		s.Objective = model.ObjectiveMode(strings.ToLower(in.objective))
	}
	if in.scaling > 0 {
		s.ScalingParam = in.scaling
	}
	if in.maxEntrances > 0 {
		s.MaxEntrances = in.maxEntrances
	}
	if in.softRules != "" {
		s.SoftRules = model.SoftRulePolicy(strings.ToLower(in.softRules))
	}
	return s.Validate()
}

// request turns a project into an engine request.
func request(p model.Project) engine.Request {
	return engine.Request{
		Shell:   p.Shell,
		Program: p.Program,
	}
}

func importProgram(path string, repo *rules.Repository) (importer.ImportResult, error) {
	im := importer.New(repo)
	var res importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		res = im.ImportExcel(path)
	default:
		res = im.ImportCSV(path)
	}
	for _, w := range res.Warnings {
		slog.Warn("program import", "file", path, "warning", w)
	}
	if len(res.Errors) > 0 {
		return res, fmt.Errorf("importing program %s: %s", path, strings.Join(res.Errors, "; "))
	}
	slog.Info("program imported", "file", path, "entries", len(res.Rooms))
	return res, nil
}

// mergeRooms adds extra to program. An extra entry replaces every program
// entry of its type.
func mergeRooms(program []model.RoomRequest, extra []model.RoomRequest) []model.RoomRequest {
	if len(extra) == 0 {
		return program
	}
	replaced := make(map[string]bool, len(extra))
	for _, r := range extra {
		replaced[r.Type] = true
	}
	out := make([]model.RoomRequest, 0, len(program)+len(extra))
	for _, r := range program {
		if !replaced[r.Type] {
			out = append(out, r)
		}
	}
	return append(out, extra...)
}
