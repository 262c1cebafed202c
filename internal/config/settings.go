package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/handiism/notecorpus/internal/score"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvWorkers  = "NOTECORPUS_WORKERS"
	EnvOutput   = "NOTECORPUS_OUTPUT"
	EnvLogLevel = "NOTECORPUS_LOG_LEVEL"
)

var validate = validator.New()

// PartSelection describes which instrument part supplies the tokens.
type PartSelection struct {
	// Mode is one of index, name, program or first.
	Mode    string `json:"mode" yaml:"mode" validate:"oneof=index name program first"`
	Index   int    `json:"index" yaml:"index" validate:"gte=0"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty" validate:"required_if=Mode name"`
	Program int    `json:"program,omitempty" yaml:"program,omitempty" validate:"gte=0,lte=127"`
}

// Settings holds all configuration options.
type Settings struct {
	// Input and output
	Patterns []string `json:"patterns" yaml:"patterns"`
	Output   string   `json:"output" yaml:"output" validate:"required"`

	// Processing
	Workers      int           `json:"workers" yaml:"workers" validate:"gte=0"`
	PartSelector PartSelection `json:"part_selector" yaml:"part_selector"`

	// Artifact
	Compress        bool `json:"compress" yaml:"compress"`
	IncludeFailures bool `json:"include_failures" yaml:"include_failures"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist" yaml:"create_playlist"`
	PlaylistFormat string `json:"playlist_format" yaml:"playlist_format" validate:"oneof=m3u pls"`
	M3UExtended    bool   `json:"m3u_extended" yaml:"m3u_extended"`

	// Reporting
	LogLevel      string `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	ProgressEvery int    `json:"progress_every" yaml:"progress_every" validate:"gte=0"`
	MetricsFile   string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Patterns: []string{"data/**/*.mid"},
		Output:   filepath.Join("data", "notes.ntcp"),

		Workers: runtime.NumCPU(),
		PartSelector: PartSelection{
			Mode:  "index",
			Index: 1,
		},

		Compress:        true,
		IncludeFailures: true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		LogLevel:      "info",
		ProgressEvery: 50,
	}
}

// Load reads settings from a JSON or YAML file, chosen by extension.
// A missing file yields the defaults. Environment overrides are applied
// afterwards.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := unmarshal(path, data, settings); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	if err := settings.ApplyEnv(); err != nil {
		return nil, err
	}
	return settings, nil
}

func unmarshal(path string, data []byte, s *Settings) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, s)
	default:
		return json.Unmarshal(data, s)
	}
}

// Save writes settings to a JSON or YAML file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from NOTECORPUS_* environment variables.
func (s *Settings) ApplyEnv() error {
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		s.Workers = n
	}
	if v := os.Getenv(EnvOutput); v != "" {
		s.Output = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = strings.ToLower(v)
	}
	return nil
}

// Validate checks the settings for consistency.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// WorkerCount returns the pool size, falling back to the number of CPUs.
func (s *Settings) WorkerCount() int {
	if s.Workers < 1 {
		return runtime.NumCPU()
	}
	return s.Workers
}

// ToSelector converts the part selection to a score.PartSelector.
func (s *Settings) ToSelector() score.PartSelector {
	ps := s.PartSelector
	switch ps.Mode {
	case "name":
		return score.NameSelector{Name: ps.Name}
	case "program":
		return score.ProgramSelector{Program: ps.Program}
	case "first":
		return score.FirstPitchedSelector{}
	default:
		return score.IndexSelector{Index: ps.Index}
	}
}
