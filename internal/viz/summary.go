package viz

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rhizosoil/internal/state"
	"github.com/san-kum/rhizosoil/internal/storage"
)

// RenderSummary formats a stored run.
func RenderSummary(meta storage.RunMetadata) string {
	var b strings.Builder
	b.WriteString(Title.Render("run "+meta.ID) + "\n")

	row := func(label, value string) {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-12s", label)) + " " + value + "\n")
	}
	row("time step", fmt.Sprintf("%gs", meta.TimeStep))
	row("steps", fmt.Sprintf("%d", meta.Steps))
	row("entities", fmt.Sprintf("%d → %d", meta.Segments, meta.Entities))
	row("forcing", meta.Forcing)
	row("growth", meta.Growth)

	status := StatusOK.Render("ok")
	switch {
	case meta.Error != "":
		status = StatusFail.Render(meta.Error)
	case meta.Unstable > 0:
		status = StatusWarn.Render(fmt.Sprintf("%d unstable temperature corrections", meta.Unstable))
	}
	row("status", status)

	if len(meta.Metrics) > 0 {
		b.WriteString(Separator(40) + "\n" + HeaderStyle.Render("metrics") + "\n")
		for _, name := range slices.Sorted(maps.Keys(meta.Metrics)) {
			b.WriteString(MetricLabel.Render(fmt.Sprintf("%-28s", name)) + " " +
				MetricValue.Render(fmt.Sprintf("%.6g", meta.Metrics[name])) + "\n")
		}
	}
	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// VariableTable lists declarations grouped by role, in declaration order.
func VariableTable(decls []state.Declaration) string {
	groups := map[state.Role][]state.Declaration{}
	for _, d := range decls {
		groups[d.Role] = append(groups[d.Role], d)
	}

	var sections []string
	for _, role := range []state.Role{state.Input, state.StateVariable, state.Parameter} {
		ds := groups[role]
		if len(ds) == 0 {
			continue
		}
		var b strings.Builder
		b.WriteString(HeaderStyle.Render(role.String()) + "\n")
		for _, d := range ds {
			b.WriteString(fmt.Sprintf("%-36s %-12s %12.4g  %s\n", d.Name, d.Unit, d.Default, Subtle.Render(d.Description)))
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
