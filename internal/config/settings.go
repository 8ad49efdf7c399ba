package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// APIKeyEnv overrides Settings.OracleAPIKey when set.
const APIKeyEnv = "TRACKYEAR_API_KEY"

// Settings holds all configuration options.
type Settings struct {
	// Catalog settings
	ManifestPath string   `toml:"manifest_path"`
	LibraryRoot  string   `toml:"library_root"`
	Categories   []string `toml:"categories"`
	Extensions   []string `toml:"extensions"`

	// Checkpoint files
	ResultPath   string `toml:"result_path"`
	SnapshotPath string `toml:"snapshot_path"`

	// Oracle settings
	OracleBaseURL        string  `toml:"oracle_base_url"`
	OracleModel          string  `toml:"oracle_model"`
	OracleAPIKey         string  `toml:"oracle_api_key"`
	OracleTimeoutSeconds int     `toml:"oracle_timeout_seconds"`
	OracleMaxRetries     int     `toml:"oracle_max_retries"`
	OracleRetryCooldown  float64 `toml:"oracle_retry_cooldown"`
	OracleRetryMaxDelay  float64 `toml:"oracle_retry_max_delay"`
	CachePath            string  `toml:"cache_path"`

	// Runner settings
	Workers int `toml:"workers"`

	// Playlist export
	PlaylistFormat string `toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `toml:"m3u_extended"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "trackyear")
	return &Settings{
		ManifestPath: filepath.Join(homeDir, "Documents", "rekordbox", "rekordbox.xml"),
		LibraryRoot:  "music-library",
		Categories:   []string{"alt-rock", "hiphop", "reggae", "rnb", "top40"},
		Extensions:   []string{".mp3", ".m4a"},

		ResultPath:   filepath.Join(dataDir, "track-years.csv"),
		SnapshotPath: filepath.Join(dataDir, "track-manifest.csv"),

		OracleBaseURL:        "https://api.openai.com/v1/chat/completions",
		OracleModel:          "gpt-4o-mini",
		OracleTimeoutSeconds: 30,
		OracleMaxRetries:     4,
		OracleRetryCooldown:  1,
		OracleRetryMaxDelay:  20,
		CachePath:            filepath.Join(dataDir, "answers.db"),

		Workers: 1,

		PlaylistFormat: "m3u",
		M3UExtended:    true,

		LogLevel:  "info",
		LogFormat: "console",
	}
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "trackyear", "config.toml")
	}
	return "trackyear.toml"
}

// Load reads settings from a TOML file.
//
// A missing file yields DefaultSettings. Values present in the file replace
// the defaults; the API key environment variable wins over both.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	settings.applyEnv()
	settings.normalize()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to a TOML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate reports settings that cannot drive a run.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.ResultPath) == "" {
		return errors.New("config: result_path is required")
	}
	if strings.TrimSpace(s.SnapshotPath) == "" {
		return errors.New("config: snapshot_path is required")
	}
	if filepath.Clean(s.ResultPath) == filepath.Clean(s.SnapshotPath) {
		return errors.New("config: result_path and snapshot_path must differ")
	}
	if s.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", s.Workers)
	}
	if s.OracleMaxRetries < 0 {
		return fmt.Errorf("config: oracle_max_retries must not be negative, got %d", s.OracleMaxRetries)
	}
	switch s.PlaylistFormat {
	case "m3u", "pls", "wpl", "zpl":
	default:
		return fmt.Errorf("config: unsupported playlist_format %q", s.PlaylistFormat)
	}
	return nil
}

// OracleTimeout returns the per-attempt oracle timeout.
func (s *Settings) OracleTimeout() time.Duration {
	return time.Duration(s.OracleTimeoutSeconds) * time.Second
}

// OracleBackoff returns the base and maximum retry delays.
func (s *Settings) OracleBackoff() (base, maxDelay time.Duration) {
	return seconds(s.OracleRetryCooldown), seconds(s.OracleRetryMaxDelay)
}

func (s *Settings) applyEnv() {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		s.OracleAPIKey = key
	}
}

func (s *Settings) normalize() {
	s.ManifestPath = expandHome(strings.TrimSpace(s.ManifestPath))
	s.ResultPath = expandHome(strings.TrimSpace(s.ResultPath))
	s.SnapshotPath = expandHome(strings.TrimSpace(s.SnapshotPath))
	s.CachePath = expandHome(strings.TrimSpace(s.CachePath))
	s.LogFile = expandHome(strings.TrimSpace(s.LogFile))
	s.PlaylistFormat = strings.ToLower(strings.TrimSpace(s.PlaylistFormat))
	if s.PlaylistFormat == "" {
		s.PlaylistFormat = "m3u"
	}
	if s.Workers == 0 {
		s.Workers = 1
	}

	categories := s.Categories[:0]
	for _, c := range s.Categories {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	s.Categories = categories

	extensions := s.Extensions[:0]
	for _, e := range s.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		extensions = append(extensions, e)
	}
	s.Extensions = extensions
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func seconds(v float64) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}
