// Package index persists the mapping from uploaded slot keys to Google
// Calendar event IDs, so repeated uploads patch events in place instead of
// inserting duplicates.
package index

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const appDir = "bipcal"

// EventIndex maps a slot key (date + summary) to the Google event ID it
// was uploaded as. Single-process usage; no locking.
type EventIndex struct {
	Mappings map[string]string `json:"mappings"`
	Path     string            `json:"-"`
	dirty    bool
}

// NewEventIndex loads the index from the user config dir, starting empty
// when no file exists yet.
func NewEventIndex() (*EventIndex, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", appDir, "events.json")

	idx := &EventIndex{
		Mappings: make(map[string]string),
		Path:     path,
	}
	if _, err := os.Stat(path); err == nil {
		if err := idx.load(); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func (idx *EventIndex) load() error {
	f, err := os.Open(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&idx.Mappings)
}

// Save writes the index back if anything changed.
func (idx *EventIndex) Save() error {
	if !idx.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(idx.Path), 0o700); err != nil {
		return err
	}
	f, err := os.Create(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(idx.Mappings); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *EventIndex) Get(key string) string {
	return idx.Mappings[key]
}

func (idx *EventIndex) Set(key, eventID string) {
	if idx.Mappings[key] != eventID {
		idx.Mappings[key] = eventID
		idx.dirty = true
	}
}

func (idx *EventIndex) Remove(key string) {
	if _, exists := idx.Mappings[key]; exists {
		delete(idx.Mappings, key)
		idx.dirty = true
	}
}
