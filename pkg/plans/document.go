package plans

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Document is an editable line-array view of a planning file. Edits go
// through Transform, which can only rewrite single lines, and Save refuses
// to shrink the file — planning documents are historical records and lines
// are never deleted.
type Document struct {
	Path          string
	Lines         []string
	originalCount int
}

// LoadDocument reads a file into its line representation.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	lines := strings.Split(string(data), "\n")
	return &Document{Path: path, Lines: lines, originalCount: len(lines)}, nil
}

// Transform applies a pure rewrite to one line. Out-of-range indexes are
// reported, not panicked on: the file may have changed since extraction.
func (d *Document) Transform(line int, fn func(string) string) error {
	if line < 0 || line >= len(d.Lines) {
		return fmt.Errorf("line %d out of range in %s (%d lines)", line, d.Path, len(d.Lines))
	}
	d.Lines[line] = fn(d.Lines[line])
	return nil
}

// Save writes the document back after verifying the structural invariant:
// the rewritten file must not have fewer lines than it was loaded with.
func (d *Document) Save() error {
	if len(d.Lines) < d.originalCount {
		return fmt.Errorf("refusing to write %s: %d lines, loaded with %d", d.Path, len(d.Lines), d.originalCount)
	}
	content := strings.Join(d.Lines, "\n")
	if err := os.WriteFile(d.Path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", d.Path, err)
	}
	return nil
}

const movedMarker = "[moved to"

// AnnotateMoved rewrites an unchecked checkbox token into a moved-to
// marker, preserving every other character on the line. It reports false
// when the line has no open checkbox or already carries a marker, which
// makes repeated reschedule runs idempotent.
//
// Only the spaced "[ ]" token is rewritten. The extractor also accepts
// the bare "[]" form, so such a task stays unmarked and surfaces again on
// the next run while its date remains in the lookback window.
func AnnotateMoved(line string, newDate time.Time) (string, bool) {
	if !strings.Contains(line, "[ ]") || strings.Contains(line, movedMarker) {
		return line, false
	}
	marker := fmt.Sprintf("%s %s]", movedMarker, newDate.Format("Jan 2"))
	return strings.Replace(line, "[ ]", marker, 1), true
}
