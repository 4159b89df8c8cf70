package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"coopscout/internal/sources"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// FeedConfig describes one input feed file.
type FeedConfig struct {
	ID                string           `toml:"id"`
	Kind              string           `toml:"kind"`
	Path              string           `toml:"path"`
	Format            string           `toml:"format"`
	Fields            sources.FieldMap `toml:"fields"`
	FilterCooperative bool             `toml:"filter_cooperative"`
}

// Embeddings contains embedding provider settings.
type Embeddings struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Dimensions     int    `toml:"dimensions"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CacheEnabled   bool   `toml:"cache_enabled"`
}

// Fetch contains website retrieval settings.
type Fetch struct {
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	Concurrency     int    `toml:"concurrency"`
	MaxContentChars int    `toml:"max_content_chars"`
	UserAgent       string `toml:"user_agent"`
}

// Ranking contains similarity ranking settings.
type Ranking struct {
	Threshold float64 `toml:"threshold"`
	Workers   int     `toml:"workers"`
}

// Review contains interactive review session settings.
type Review struct {
	MaxItems       int     `toml:"max_items"`
	MinScore       float64 `toml:"min_score"`
	BrowserCommand string  `toml:"browser_command"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for coopscout.
//
// Configuration sections by subsystem:
//   - Paths: registry, cache, and log directories
//   - Feeds: the input feed files and their field mappings
//   - Embeddings: similarity embedding provider (local or HTTP)
//   - Fetch: website content retrieval limits
//   - Ranking: similarity threshold and concurrency
//   - Review: interactive session caps and browser integration
//   - Logging: log format and level
type Config struct {
	Paths      Paths        `toml:"paths"`
	Feeds      []FeedConfig `toml:"feeds"`
	Embeddings Embeddings   `toml:"embeddings"`
	Fetch      Fetch        `toml:"fetch"`
	Ranking    Ranking      `toml:"ranking"`
	Review     Review       `toml:"review"`
	Logging    Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/coopscout/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("coopscout.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RegistryPath returns the registry snapshot location.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.Paths.DataDir, "registry.json")
}

// CachePath returns the embedding cache database location.
func (c *Config) CachePath() string {
	return filepath.Join(c.Paths.DataDir, "embeddings.db")
}

// SourceFeeds converts the configured feeds into source descriptors. Kinds
// were checked during Validate, so unparseable values cannot reach here.
func (c *Config) SourceFeeds() []sources.Feed {
	feeds := make([]sources.Feed, 0, len(c.Feeds))
	for _, fc := range c.Feeds {
		kind, _ := sources.ParseKind(fc.Kind)
		feeds = append(feeds, sources.Feed{
			ID:                fc.ID,
			Kind:              kind,
			Path:              fc.Path,
			Format:            fc.Format,
			Fields:            fc.Fields,
			FilterCooperative: fc.FilterCooperative,
		})
	}
	return feeds
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
