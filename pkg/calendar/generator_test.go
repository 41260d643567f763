package calendar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jordanwei/bipcal/pkg/config"
)

var now = time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC)

func writeProject(t *testing.T, plan string) string {
	t.Helper()
	dir := t.TempDir()
	plansDir := filepath.Join(dir, "plans")
	if err := os.MkdirAll(plansDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(plansDir, "launch-plan.md"), []byte(plan), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func testConfig(t *testing.T, projects ...config.Project) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Timezone = "UTC"
	cfg.OutputDir = t.TempDir()
	cfg.Projects = projects
	return cfg
}

func TestGenerate(t *testing.T) {
	plan := strings.Join([]string{
		"# Launch Plan",
		"",
		"**Day 1 (Jun 12)** - focus:",
		"- [ ] Fix login bug (2h)",
		"- [x] Deploy to prod already",
		"**Day 2 (Jun 1)**",
		"- [ ] Old task before today (1h)",
	}, "\n")
	project := writeProject(t, plan)
	cfg := testConfig(t, config.Project{Name: "fire-api", Path: project})

	res, err := NewGenerator(cfg, zap.NewNop()).Generate(now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Tasks != 1 || len(res.Slots) != 1 {
		t.Fatalf("tasks = %d, slots = %d, want 1/1", res.Tasks, len(res.Slots))
	}

	slot := res.Slots[0]
	if slot.Task.Title != "Fix login bug" || slot.Start.Hour() != 9 {
		t.Errorf("slot = %+v", slot)
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(data)
	if !strings.Contains(doc, "SUMMARY:[fire-api] Fix login bug") {
		t.Errorf("event missing from ICS:\n%s", doc)
	}
	if !strings.Contains(doc, "DTSTART;TZID=UTC:20250612T090000") {
		t.Errorf("start time missing from ICS:\n%s", doc)
	}
	if filepath.Base(res.Path) != OutputFile {
		t.Errorf("path = %s", res.Path)
	}
}

func TestGenerateNothingToSchedule(t *testing.T) {
	project := writeProject(t, "# Empty plan\n\njust prose, no tasks\n")
	cfg := testConfig(t, config.Project{Name: "p", Path: project})

	res, err := NewGenerator(cfg, zap.NewNop()).Generate(now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Path != "" || res.Tasks != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, OutputFile)); !os.IsNotExist(err) {
		t.Error("no calendar file should be written")
	}
}

func TestGenerateMissingPlansDir(t *testing.T) {
	cfg := testConfig(t, config.Project{Name: "p", Path: t.TempDir()})
	res, err := NewGenerator(cfg, zap.NewNop()).Generate(now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Tasks != 0 {
		t.Errorf("tasks = %d from a project without plans", res.Tasks)
	}
}

func TestGenerateMultipleProjects(t *testing.T) {
	p1 := writeProject(t, "**Day 1 (Jun 12)**\n- [ ] Backend work item (1h)\n")
	p2 := writeProject(t, "**Day 1 (Jun 12)**\n- [ ] Frontend work item (1h)\n")
	cfg := testConfig(t,
		config.Project{Name: "fire-api", Path: p1},
		config.Project{Name: "fire-web", Path: p2},
	)

	res, err := NewGenerator(cfg, zap.NewNop()).Generate(now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Tasks != 2 {
		t.Fatalf("tasks = %d, want 2", res.Tasks)
	}
	// Configured order decides who gets the morning slot.
	if res.Slots[0].Task.Project != "fire-api" {
		t.Errorf("first slot project = %s", res.Slots[0].Task.Project)
	}
}
