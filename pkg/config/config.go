package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Project is one monitored repository with planning documents.
type Project struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Config carries everything the calendar generator and the reschedule
// engine need. It is constructed once and passed into each component; no
// package-level state.
type Config struct {
	Timezone      string    `yaml:"timezone"`
	WorkStartHour int       `yaml:"work_start_hour"`
	LunchStart    int       `yaml:"lunch_start"`
	LunchEnd      int       `yaml:"lunch_end"`
	GapMinutes    int       `yaml:"gap_minutes"`
	WeeklyHours   int       `yaml:"weekly_hours"` // total across all projects
	OutputDir     string    `yaml:"output_dir"`
	BriefFile     string    `yaml:"brief_file"` // per-project contextual brief, relative to project path
	Projects      []Project `yaml:"projects"`

	Upload UploadConfig `yaml:"upload"`
}

// UploadConfig selects the calendar distribution destinations.
type UploadConfig struct {
	Gist      bool   `yaml:"gist"`
	GistToken string `yaml:"-"` // from GITHUB_GIST_TOKEN, never written to disk
	GCal      bool   `yaml:"gcal"`
	Calendar  string `yaml:"calendar"` // Google Calendar name for the gcal destination
}

// Default returns a config with the stock work-hours layout. Callers still
// need to fill in Projects.
func Default() *Config {
	return &Config{
		Timezone:      "Asia/Shanghai",
		WorkStartHour: 9,
		LunchStart:    12,
		LunchEnd:      14,
		GapMinutes:    20,
		WeeklyHours:   17,
		OutputDir:     "data",
		BriefFile:     "docs/brief.md",
		Upload:        UploadConfig{Calendar: "Tasks"},
	}
}

// Load reads a YAML config file, applies defaults for unset fields, and
// pulls secrets from the environment.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	cfg := Default()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.applyDefaults()
	cfg.Upload.GistToken = os.Getenv("GITHUB_GIST_TOKEN")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.WorkStartHour == 0 {
		c.WorkStartHour = d.WorkStartHour
	}
	if c.LunchStart == 0 {
		c.LunchStart = d.LunchStart
	}
	if c.LunchEnd == 0 {
		c.LunchEnd = d.LunchEnd
	}
	if c.GapMinutes == 0 {
		c.GapMinutes = d.GapMinutes
	}
	if c.WeeklyHours == 0 {
		c.WeeklyHours = d.WeeklyHours
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.BriefFile == "" {
		c.BriefFile = d.BriefFile
	}
	if c.Upload.Calendar == "" {
		c.Upload.Calendar = d.Upload.Calendar
	}
}

// Validate rejects configs the scheduler cannot work with.
func (c *Config) Validate() error {
	if c.LunchEnd < c.LunchStart {
		return fmt.Errorf("config: lunch_end %d before lunch_start %d", c.LunchEnd, c.LunchStart)
	}
	if c.WorkStartHour < 0 || c.WorkStartHour > 23 {
		return fmt.Errorf("config: work_start_hour %d out of range", c.WorkStartHour)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: unknown timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone. Validate has already checked
// it, so failures fall back to the system zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ProjectOrder maps project names to their configured priority rank.
func (c *Config) ProjectOrder() map[string]int {
	order := make(map[string]int, len(c.Projects))
	for i, p := range c.Projects {
		order[p.Name] = i
	}
	return order
}

// DailyBudgetHours returns the per-project daily ceiling: the weekly total
// split evenly across configured projects, divided over 5 working days,
// never below one hour.
func (c *Config) DailyBudgetHours() float64 {
	n := len(c.Projects)
	if n == 0 {
		n = 1
	}
	weekly := float64(c.WeeklyHours / n) // integer split, matching the weekly allocation
	daily := weekly / 5
	if daily < 1 {
		daily = 1
	}
	return daily
}
