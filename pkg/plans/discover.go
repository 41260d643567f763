package plans

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PlansDir is the subdirectory inside each project that holds planning
// documents for calendar generation.
const PlansDir = "plans"

// archivedMarker excludes retired documents wherever it appears in a path.
const archivedMarker = "_archived_"

// PlanFiles returns every markdown file under <projectPath>/plans/,
// recursively, skipping archived paths. A missing project or plans
// directory yields (nil, nil): a skippable non-result, not an error.
func PlanFiles(projectPath string) ([]string, error) {
	plansDir := filepath.Join(projectPath, PlansDir)
	if _, err := os.Stat(plansDir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return collectMarkdown(plansDir, func(string) bool { return true })
}

// LaunchPlanFiles returns every markdown file anywhere under the project
// whose name contains both "launch" and "plan" — the documents the
// reschedule engine owns.
func LaunchPlanFiles(projectPath string) ([]string, error) {
	if _, err := os.Stat(projectPath); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return collectMarkdown(projectPath, func(name string) bool {
		lower := strings.ToLower(name)
		return strings.Contains(lower, "launch") && strings.Contains(lower, "plan")
	})
}

func collectMarkdown(root string, match func(name string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		if strings.Contains(path, archivedMarker) {
			return nil
		}
		if match(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
