package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/piwi3910/ClinicLayout/internal/engine"
	"github.com/piwi3910/ClinicLayout/internal/export"
	"github.com/piwi3910/ClinicLayout/internal/history"
	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

// Printer writes reports to an output stream.
type Printer struct {
	w     io.Writer
	theme Theme
}

// New returns a printer using the default theme.
func New(w io.Writer) *Printer {
	return &Printer{w: w, theme: DefaultTheme()}
}

func (p *Printer) write(parts ...string) error {
	_, err := io.WriteString(p.w, strings.Join(parts, "\n")+"\n")
	return err
}

func (p *Printer) field(label, value string) string {
	return p.theme.Label.Render(label) + p.theme.Value.Render(value)
}

func (p *Printer) status(s model.LayoutStatus) string {
	switch {
	case s == model.StatusOptimal:
		return p.theme.Success.Render(string(s))
	case s.HasLayout():
		return p.theme.Warning.Render(string(s))
	default:
		return p.theme.Error.Render(string(s))
	}
}

// Layout prints a solve summary, the room schedule and any violations.
func (p *Printer) Layout(title string, result model.LayoutResult, violations []engine.Violation) error {
	lines := []string{
		p.theme.Title.Render(title),
		p.theme.Label.Render("Status") + p.status(result.Status),
		p.field("Shell", fmt.Sprintf("%s x %s (%.0f sq ft)",
			export.FeetInches(result.Shell.Width), export.FeetInches(result.Shell.Height),
			export.SquareFeet(result.ShellArea()))),
		p.field("Treatment rooms", strconv.Itoa(result.ScalingParam)),
	}
	if result.Status.HasLayout() {
		lines = append(lines,
			p.field("Rooms", strconv.Itoa(len(result.Rooms))),
			p.field("Doors", strconv.Itoa(result.ActiveDoors())),
			p.field("Efficiency", fmt.Sprintf("%.1f%%", result.Efficiency())),
			p.field("Objective", fmt.Sprintf("%.0f", result.Objective)),
		)
	}
	lines = append(lines,
		p.field("Solve time", result.SolveTime.Round(time.Millisecond).String()),
		p.field("Model", fmt.Sprintf("%d vars, %d constraints, %d probes", result.Variables, result.Constraints, result.Probes)),
		"",
	)
	if result.Status.HasLayout() && len(result.Rooms) > 0 {
		lines = append(lines, p.schedule(result.Rooms))
	}
	if len(violations) > 0 {
		lines = append(lines, p.violations(violations))
	}
	return p.write(lines...)
}

func (p *Printer) schedule(rooms []model.RoomPlacement) string {
	t := NewTable(p.theme,
		Column{Title: "Room", Width: 24},
		Column{Title: "Category", Width: 8},
		Column{Title: "X", Width: 7, Align: lipgloss.Right},
		Column{Title: "Y", Width: 7, Align: lipgloss.Right},
		Column{Title: "Size", Width: 15},
		Column{Title: "Sq Ft", Width: 7, Align: lipgloss.Right},
		Column{Title: "Doors", Width: 5, Align: lipgloss.Right},
		Column{Title: "Sides", Width: 12},
	)
	for _, r := range export.ScheduleOrder(rooms) {
		t.AddRow(export.ScheduleRow(r)...)
	}
	return t.Render()
}

func (p *Printer) violations(vs []engine.Violation) string {
	var b strings.Builder
	b.WriteString(p.theme.Header.Render(fmt.Sprintf("Violations (%d)", len(vs))))
	b.WriteString("\n")
	for _, v := range vs {
		style := p.theme.Error
		if v.Soft {
			style = p.theme.Warning
		}
		b.WriteString("  " + style.Render(v.String()) + "\n")
	}
	return b.String()
}

// Program prints the findings of a program check.
func (p *Printer) Program(r engine.ProgramReport) error {
	est := r.Estimate
	lines := []string{
		p.theme.Title.Render("Program Check"),
		p.field("Instances", strconv.Itoa(len(r.Instances))),
		p.field("Treatment rooms", strconv.Itoa(r.ScalingParam)),
		p.field("Area estimate", fmt.Sprintf("%.0f of %.0f sq ft (%.1f%%)",
			export.SquareFeet(int(est.RequiredArea)), export.SquareFeet(est.ShellArea), est.Utilization)),
	}
	if len(r.Issues) == 0 {
		lines = append(lines, p.theme.Success.Render("No issues found."))
		return p.write(lines...)
	}
	for _, is := range r.Issues {
		var style lipgloss.Style
		switch is.Severity {
		case engine.SeverityError:
			style = p.theme.Error
		case engine.SeverityWarning:
			style = p.theme.Warning
		default:
			style = p.theme.Muted
		}
		msg := is.Message
		if is.Type != "" {
			msg = is.Type + ": " + msg
		}
		lines = append(lines, "  "+style.Render(fmt.Sprintf("[%s] %s", is.Severity, msg)))
	}
	return p.write(lines...)
}

// Comparison prints one row per scenario, best efficiency marked with a star.
func (p *Printer) Comparison(results []engine.ComparisonResult) error {
	best := -1
	for i, r := range results {
		if r.Err != nil || !r.Result.Status.HasLayout() {
			continue
		}
		if best < 0 || r.Efficiency > results[best].Efficiency {
			best = i
		}
	}

	t := NewTable(p.theme,
		Column{Title: "Scenario", Width: 22},
		Column{Title: "Status", Width: 10},
		Column{Title: "Eff %", Width: 6, Align: lipgloss.Right},
		Column{Title: "Doors", Width: 5, Align: lipgloss.Right},
		Column{Title: "Viol", Width: 4, Align: lipgloss.Right},
		Column{Title: "Soft", Width: 4, Align: lipgloss.Right},
		Column{Title: "Time", Width: 9, Align: lipgloss.Right},
	)
	for i, r := range results {
		name := r.Scenario.Name
		if i == best {
			name = "* " + name
		}
		status := string(r.Result.Status)
		if r.Err != nil {
			status = "ERROR"
		}
		t.AddRow(
			name,
			status,
			fmt.Sprintf("%.1f", r.Efficiency),
			strconv.Itoa(r.ActiveDoors),
			strconv.Itoa(r.Violations),
			strconv.Itoa(r.SoftViolations),
			r.Result.SolveTime.Round(time.Millisecond).String(),
		)
	}

	lines := []string{p.theme.Title.Render("Scenario Comparison"), t.Render()}
	for _, r := range results {
		if r.Err != nil {
			lines = append(lines, p.theme.Error.Render(fmt.Sprintf("%s: %v", r.Scenario.Name, r.Err)))
		}
	}
	return p.write(lines...)
}

// Runs prints recorded solve runs, newest first as given.
func (p *Printer) Runs(runs []history.Run) error {
	if len(runs) == 0 {
		return p.write(p.theme.Muted.Render("No runs recorded."))
	}
	t := NewTable(p.theme,
		Column{Title: "ID", Width: 8},
		Column{Title: "When", Width: 16},
		Column{Title: "Project", Width: 18},
		Column{Title: "Shell", Width: 9},
		Column{Title: "Rooms", Width: 5, Align: lipgloss.Right},
		Column{Title: "Status", Width: 10},
		Column{Title: "Eff %", Width: 6, Align: lipgloss.Right},
		Column{Title: "Viol", Width: 4, Align: lipgloss.Right},
	)
	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		t.AddRow(
			id,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Project,
			r.Shell.String(),
			strconv.Itoa(r.Rooms),
			string(r.Status),
			fmt.Sprintf("%.1f", r.Efficiency),
			strconv.Itoa(r.Violations),
		)
	}
	return p.write(p.theme.Title.Render("Run History"), t.Render())
}

// Run prints the details of one recorded run.
func (p *Printer) Run(r history.Run) error {
	return p.write(
		p.theme.Title.Render("Run "+r.ID),
		p.field("Recorded", r.CreatedAt.Local().Format(time.RFC1123)),
		p.field("Project", r.Project),
		p.field("Shell", r.Shell.String()),
		p.field("Rooms", strconv.Itoa(r.Rooms)),
		p.theme.Label.Render("Status")+p.status(r.Status),
		p.field("Objective", fmt.Sprintf("%.0f", r.Objective)),
		p.field("Efficiency", fmt.Sprintf("%.1f%%", r.Efficiency)),
		p.field("Duration", r.Duration.Round(time.Millisecond).String()),
		p.field("Violations", strconv.Itoa(r.Violations)),
	)
}

// Templates prints the stored program templates.
func (p *Printer) Templates(store model.TemplateStore) error {
	if len(store.Templates) == 0 {
		return p.write(p.theme.Muted.Render("No templates saved."))
	}
	t := NewTable(p.theme,
		Column{Title: "Name", Width: 20},
		Column{Title: "Shell", Width: 15},
		Column{Title: "Rooms", Width: 5, Align: lipgloss.Right},
		Column{Title: "Updated", Width: 20},
		Column{Title: "Description", Width: 30},
	)
	for _, tmpl := range store.Templates {
		t.AddRow(
			tmpl.Name,
			export.FeetInches(tmpl.Shell.Width)+" x "+export.FeetInches(tmpl.Shell.Height),
			strconv.Itoa(len(model.ExpandProgram(tmpl.Program))),
			tmpl.UpdatedAt,
			tmpl.Description,
		)
	}
	return p.write(p.theme.Title.Render("Program Templates"), t.Render())
}

// Rules prints the room types in the repository with their size bounds at
// n treatment rooms.
func (p *Printer) Rules(repo *rules.Repository, n int) error {
	t := NewTable(p.theme,
		Column{Title: "Type", Width: 26},
		Column{Title: "Category", Width: 8},
		Column{Title: "Trigger", Width: 10},
		Column{Title: "Min", Width: 15},
		Column{Title: "Max", Width: 15},
	)
	for _, typ := range repo.Types() {
		rule, _ := repo.Get(typ)
		b := engine.TierBounds(rule.Geometry, n)
		t.AddRow(typ, string(rule.Category), string(rule.Existence.Trigger), size(b.MinW, b.MinH), size(b.MaxW, b.MaxH))
	}
	title := fmt.Sprintf("Room Rules (%d types, %d treatment rooms)", repo.Len(), n)
	return p.write(p.theme.Title.Render(title), t.Render())
}

func size(w, h *int) string {
	dim := func(v *int) string {
		if v == nil {
			return "-"
		}
		return export.FeetInches(*v)
	}
	if w == nil && h == nil {
		return "-"
	}
	return dim(w) + " x " + dim(h)
}
