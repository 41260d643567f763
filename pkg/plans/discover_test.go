package plans

import (
	"os"
	"path/filepath"
	"testing"
)

func touchFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func baseNames(paths []string) map[string]bool {
	out := make(map[string]bool, len(paths))
	for _, p := range paths {
		out[filepath.Base(p)] = true
	}
	return out
}

func TestPlanFiles(t *testing.T) {
	project := t.TempDir()
	touchFiles(t, project,
		"plans/week1.md",
		"plans/sprint/week2.md",
		"plans/notes.txt",
		"plans/_archived_/old.md",
		"README.md", // outside plans/
	)

	files, err := PlanFiles(project)
	if err != nil {
		t.Fatal(err)
	}
	got := baseNames(files)
	if len(files) != 2 || !got["week1.md"] || !got["week2.md"] {
		t.Errorf("files = %v", files)
	}
}

func TestPlanFilesMissingDir(t *testing.T) {
	files, err := PlanFiles(t.TempDir())
	if err != nil || files != nil {
		t.Errorf("got %v, %v; want nil, nil", files, err)
	}
}

func TestLaunchPlanFiles(t *testing.T) {
	project := t.TempDir()
	touchFiles(t, project,
		"launch-plan.md",
		"docs/Q3-Launch-Plan.md", // case-insensitive, anywhere in the tree
		"plans/week1.md",         // no launch in the name
		"launch-notes.md",        // no plan in the name
		"_archived_/launch-plan.md",
	)

	files, err := LaunchPlanFiles(project)
	if err != nil {
		t.Fatal(err)
	}
	got := baseNames(files)
	if len(files) != 2 || !got["launch-plan.md"] || !got["Q3-Launch-Plan.md"] {
		t.Errorf("files = %v", files)
	}
}

func TestLaunchPlanFilesMissingProject(t *testing.T) {
	files, err := LaunchPlanFiles(filepath.Join(t.TempDir(), "gone"))
	if err != nil || files != nil {
		t.Errorf("got %v, %v; want nil, nil", files, err)
	}
}
