package viz

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/san-kum/rhizosoil/internal/state"
	"github.com/san-kum/rhizosoil/internal/storage"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestSparklineChart(t *testing.T) {
	got := SparklineChart([]float64{0, 1, 2, 3}, 10)
	if got != "▁▃▅█" {
		t.Errorf("unexpected sparkline %q", got)
	}

	if got := SparklineChart(nil, 3); got != "───" {
		t.Errorf("empty series should render a rule, got %q", got)
	}

	long := make([]float64, 100)
	if n := utf8.RuneCountInString(SparklineChart(long, 20)); n != 20 {
		t.Errorf("expected 20 runes, got %d", n)
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(storage.RunMetadata{
		ID: "abc", TimeStep: 3600, Steps: 2, Segments: 3, Entities: 5,
		Unstable: 4, Metrics: map[string]float64{"peak_C_hexose_soil": 2e-5},
	})

	for _, want := range []string{"run abc", "3600s", "3 → 5", "4 unstable", "peak_C_hexose_soil", "2e-05"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	failed := RenderSummary(storage.RunMetadata{ID: "x", Error: "step 3: boom"})
	if !strings.Contains(failed, "step 3: boom") {
		t.Errorf("failed run should show its error:\n%s", failed)
	}
	if !strings.Contains(out, "◆") || strings.Contains(failed, "◆") {
		t.Error("separator should precede the metrics block only")
	}
}

func TestSeparator(t *testing.T) {
	if n := utf8.RuneCountInString(Separator(40)); n != 40 {
		t.Errorf("expected 40 runes, got %d", n)
	}
	if n := utf8.RuneCountInString(Separator(5)); n != 5 {
		t.Errorf("narrow separator: expected 5 runes, got %d", n)
	}
	if Separator(-1) != Subtle.Render("") {
		t.Error("negative width should render empty")
	}
}

func TestVariableTable(t *testing.T) {
	out := VariableTable([]state.Declaration{
		{Name: "C_hexose_soil", Role: state.StateVariable, Unit: "mol.g-1", Default: 1e-5},
		{Name: "hexose_exudation", Role: state.Input, Unit: "mol.s-1"},
	})
	in := strings.Index(out, "input")
	sv := strings.Index(out, "state_variable")
	if in < 0 || sv < 0 || in > sv {
		t.Errorf("inputs should precede state variables:\n%s", out)
	}
	if strings.Contains(out, "parameter") {
		t.Errorf("empty roles should be omitted:\n%s", out)
	}
}
