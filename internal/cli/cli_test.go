package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	kio "github.com/matzehuels/kitchendesigner/pkg/io"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
	"github.com/matzehuels/kitchendesigner/pkg/pipeline"
	"github.com/matzehuels/kitchendesigner/pkg/solver"
)

var galley = filepath.Join("testdata", "galley.json")

// captureOutput redirects status output to a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

// runRoot executes the root command with args and an isolated environment.
func runRoot(t *testing.T, args ...string) error {
	t.Helper()
	if os.Getenv("XDG_CONFIG_HOME") == "" {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	}
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&logs)
	root.SetErr(&logs)
	return root.ExecuteContext(context.Background())
}

// fakeEngine answers every model with all variables at zero.
type fakeEngine struct{ calls int }

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Solve(_ context.Context, m *milp.Model, _ solver.Options) (*milp.Solution, error) {
	e.calls++
	return m.Solution(milp.StatusOptimal, make([]float64, m.NumVars())), nil
}

func fakeRunner(engine *fakeEngine) func(context.Context) (*pipeline.Runner, error) {
	return func(context.Context) (*pipeline.Runner, error) {
		r := pipeline.NewRunner(nil, nil, log.New(&bytes.Buffer{}))
		r.NewEngine = func(string, *log.Logger) solver.Engine { return engine }
		return r, nil
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"solve", "validate", "model", "render", "view", "engines", "serve", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("root command is missing %q (have %v)", want, names)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root command should have a persistent --config flag")
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"json", []string{"json"}},
		{"json, svg,,pdf", []string{"json", "svg", "pdf"}},
	}
	for _, tt := range tests {
		got := parseList(tt.in)
		if !slices.Equal(got, tt.want) {
			t.Errorf("parseList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "kitchen.json", "kitchen-layout"},
		{"", "plans/kitchen.toml", "plans/kitchen-layout"},
		{"", "kitchen-layout.json", "kitchen-layout"},
		{"out.svg", "kitchen.json", "out"},
		{"out/plan", "kitchen.json", "out/plan"},
		{"plan.v2", "kitchen.json", "plan.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath("plan.svg", "k.json", "svg", true); got != "plan.svg" {
		t.Errorf("single format keeps the explicit path, got %q", got)
	}
	if got := outputPath("plan.svg", "k.json", "pdf", false); got != "plan.pdf" {
		t.Errorf("multiple formats share the base path, got %q", got)
	}
	if got := outputPath("", "k.json", "json", true); got != "k-layout.json" {
		t.Errorf("default output should not overwrite the input, got %q", got)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"json": []byte("{}"), "svg": []byte("<svg/>")}

	paths, err := writeArtifacts(artifacts, []string{"json", "svg", "pdf"}, "kitchen.json", filepath.Join(dir, "sub", "plan"))
	if err != nil {
		t.Fatalf("writeArtifacts failed: %v", err)
	}
	want := []string{filepath.Join(dir, "sub", "plan.json"), filepath.Join(dir, "sub", "plan.svg")}
	if !slices.Equal(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	data, err := os.ReadFile(want[1])
	if err != nil || string(data) != "<svg/>" {
		t.Errorf("svg artifact = %q, %v", data, err)
	}
}

func TestRunSolve(t *testing.T) {
	out := captureOutput(t)
	dir := t.TempDir()
	engine := &fakeEngine{}
	c := New(&bytes.Buffer{}, LogInfo)

	opts := pipeline.Options{Formats: []string{"json", "svg"}}
	flags := solveFlags{output: filepath.Join(dir, "galley"), show: true, breakdown: true, structure: true}
	if err := c.runSolve(context.Background(), galley, opts, flags, fakeRunner(engine)); err != nil {
		t.Fatalf("runSolve failed: %v", err)
	}
	if engine.calls != 1 {
		t.Errorf("engine calls = %d, want 1", engine.calls)
	}

	layout, err := kio.LoadLayout(filepath.Join(dir, "galley.json"))
	if err != nil {
		t.Fatalf("layout not written: %v", err)
	}
	if _, ok := layout["base"]; !ok {
		t.Errorf("layout is missing part base: %v", layout)
	}
	if _, err := os.Stat(filepath.Join(dir, "galley.svg")); err != nil {
		t.Errorf("svg not written: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Solved", "optimal", "CONSTRAINTS", "Fixture", "Term"} {
		if !strings.Contains(got, want) {
			t.Errorf("output is missing %q:\n%s", want, got)
		}
	}
}

func TestRunSolveMissingDocument(t *testing.T) {
	captureOutput(t)
	c := New(&bytes.Buffer{}, LogInfo)

	err := c.runSolve(context.Background(), filepath.Join(t.TempDir(), "none.json"), pipeline.Options{}, solveFlags{}, fakeRunner(&fakeEngine{}))
	if !errors.IsInput(err) {
		t.Errorf("missing document error = %v, want an input error", err)
	}
}

func TestSolveRejectsUnknownFormat(t *testing.T) {
	captureOutput(t)
	err := runRoot(t, "solve", galley, "--format", "gif", "--no-cache")
	if errors.GetCode(err) != errors.ErrCodeInvalidSettings {
		t.Errorf("error = %v, want INVALID_SETTINGS", err)
	}
}

func TestValidateCommand(t *testing.T) {
	out := captureOutput(t)

	if err := runRoot(t, "validate", galley); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out.String(), "is valid") {
		t.Errorf("output = %q, want success", out.String())
	}
}

func TestValidateCommandMissingFile(t *testing.T) {
	captureOutput(t)
	err := runRoot(t, "validate", filepath.Join(t.TempDir(), "none.json"))
	if errors.GetCode(err) != errors.ErrCodeFileNotFound {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestModelCommand(t *testing.T) {
	out := captureOutput(t)
	dir := t.TempDir()
	lp := filepath.Join(dir, "galley.lp")
	dot := filepath.Join(dir, "galley.dot")

	if err := runRoot(t, "model", galley, "-o", lp, "--graph", dot); err != nil {
		t.Fatalf("model failed: %v", err)
	}

	data, err := os.ReadFile(lp)
	if err != nil {
		t.Fatalf("model not written: %v", err)
	}
	if !strings.Contains(string(data), "Maximize") {
		t.Error("LP output should contain a Maximize section")
	}
	graph, err := os.ReadFile(dot)
	if err != nil {
		t.Fatalf("graph not written: %v", err)
	}
	if !strings.HasPrefix(string(graph), "digraph") {
		t.Errorf("graph should be DOT source, got %.40q", graph)
	}
	if !strings.Contains(out.String(), "VARIABLES") {
		t.Errorf("structure table missing from output:\n%s", out.String())
	}
}

func TestModelCommandRejectsGraphExtension(t *testing.T) {
	captureOutput(t)
	err := runRoot(t, "model", galley, "--graph", filepath.Join(t.TempDir(), "g.png"))
	if errors.GetCode(err) != errors.ErrCodeInvalidSettings {
		t.Errorf("error = %v, want INVALID_SETTINGS", err)
	}
}

func TestRenderAndViewCommands(t *testing.T) {
	captureOutput(t)
	dir := t.TempDir()
	c := New(&bytes.Buffer{}, LogInfo)

	base := filepath.Join(dir, "galley")
	opts := pipeline.Options{Formats: []string{"json"}}
	if err := c.runSolve(context.Background(), galley, opts, solveFlags{output: base}, fakeRunner(&fakeEngine{})); err != nil {
		t.Fatalf("runSolve failed: %v", err)
	}
	layoutPath := base + ".json"

	if err := runRoot(t, "render", galley, layoutPath, "-f", "svg,xlsx", "--view", "strips"); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for _, ext := range []string{".svg", ".xlsx"} {
		if _, err := os.Stat(filepath.Join(dir, "galley-layout"+ext)); err != nil {
			t.Errorf("render did not write %s: %v", ext, err)
		}
	}

	out := captureOutput(t)
	if err := runRoot(t, "view", layoutPath, "--plain"); err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if !strings.Contains(out.String(), "base") {
		t.Errorf("view output should list the parts:\n%s", out.String())
	}
}

func TestLayoutModelNavigation(t *testing.T) {
	l := kio.Layout{
		"upper": {Padding: 5, Fixtures: []kio.PlacedFixture{{Fixture: "cupboard", Width: 60}}},
		"base":  {Padding: 0, Fixtures: []kio.PlacedFixture{{Fixture: "sink", Width: 60}, {Fixture: "oven", Width: 60}}},
	}
	m := NewLayoutModel(l)
	if !slices.Equal(m.Parts, []string{"base", "upper"}) {
		t.Fatalf("parts = %v, want sorted names", m.Parts)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(LayoutModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after down = %d, want 1", m.Cursor)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(LayoutModel)
	if m.Cursor != 1 {
		t.Errorf("cursor should stop at the last part, got %d", m.Cursor)
	}
	if view := m.View(); !strings.Contains(view, "cupboard") {
		t.Errorf("view should show the selected part's fixtures:\n%s", view)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = next.(LayoutModel)
	if m.Cursor != 0 {
		t.Errorf("cursor after k = %d, want 0", m.Cursor)
	}
	if view := m.View(); !strings.Contains(view, "oven") {
		t.Errorf("view should show base fixtures:\n%s", view)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestPartTable(t *testing.T) {
	got := partTable(kio.PartLayout{Padding: 10, Fixtures: []kio.PlacedFixture{{Fixture: "sink", Width: 60}, {Fixture: "oven", Width: 60}}})
	for _, want := range []string{"padding", "sink", "oven", "70", "130"} {
		if !strings.Contains(got, want) {
			t.Errorf("part table is missing %q:\n%s", want, got)
		}
	}
}
