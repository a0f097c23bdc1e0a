package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Scorer names.
const (
	ScorerLexical = "lexical"
	ScorerDense   = "dense"
)

// Match modes.
const (
	MatchFuzzy = "fuzzy"
	MatchExact = "exact"
)

// Text fields used for scoring.
const (
	TextNotes = "notes"
	TextRich  = "rich"
)

// Budget actions.
const (
	BudgetWarn   = "warn"
	BudgetReject = "reject"
)

// DefaultBoost is the per-field categorical bonus.
const DefaultBoost = 0.15

// DefaultFuzzyThreshold is the minimum partial-ratio similarity for a fuzzy match.
const DefaultFuzzyThreshold = 70

// Config holds the stylist service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig holds the outfit catalog source.
type CatalogConfig struct {
	Source          string `yaml:"source"` // file path or http(s) URL
	FetchTimeoutSec int    `yaml:"fetch_timeout_sec"`
}

// RankingConfig holds ranking engine settings.
type RankingConfig struct {
	Scorer         string   `yaml:"scorer"`     // lexical (default), dense
	MatchMode      string   `yaml:"match_mode"` // fuzzy (default), exact
	FuzzyThreshold int      `yaml:"fuzzy_threshold"`
	Text           string   `yaml:"text"` // notes (default), rich
	Boost          *float64 `yaml:"boost"`
	OnScoringError string   `yaml:"on_scoring_error"` // fail (default), unscored
}

// EmbeddingConfig holds dense scorer provider settings.
type EmbeddingConfig struct {
	Provider            string       `yaml:"provider"`
	APIKey              string       `yaml:"api_key"`
	BaseURL             string       `yaml:"base_url"`
	Model               string       `yaml:"model"`
	Dimensions          int          `yaml:"dimensions"`
	DocumentInstruction string       `yaml:"document_instruction"`
	QueryInstruction    string       `yaml:"query_instruction"`
	MaxBatchSize        int          `yaml:"max_batch_size"`
	Budget              BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token limits for the embedding provider. Zero means unlimited.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"`
	Action            string `yaml:"action"` // warn (default), reject
}

// Enabled reports whether any limit is set.
func (b BudgetConfig) Enabled() bool {
	return b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0
}

// CacheConfig holds embedding cache (Redis/Valkey) settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"` // 0 = no expiry
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from the given YAML file.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// LoadDotEnv loads variables from a .env file outside production.
// Variables already set in the process environment win.
// Returns the loaded path, or "" when nothing was loaded.
func LoadDotEnv(env string) string {
	if env == "prod" {
		return ""
	}
	for _, path := range []string{".env", filepath.Join(projectRoot(), ".env")} {
		if !fileExists(path) {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Catalog.FetchTimeoutSec <= 0 {
		c.Catalog.FetchTimeoutSec = 30
	}
	if c.Ranking.Scorer == "" {
		c.Ranking.Scorer = ScorerLexical
	}
	if c.Ranking.MatchMode == "" {
		c.Ranking.MatchMode = MatchFuzzy
	}
	if c.Ranking.FuzzyThreshold <= 0 {
		c.Ranking.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if c.Ranking.Text == "" {
		c.Ranking.Text = TextNotes
	}
	if c.Ranking.Boost == nil {
		b := DefaultBoost
		c.Ranking.Boost = &b
	}
	if c.Ranking.OnScoringError == "" {
		c.Ranking.OnScoringError = "fail"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.MaxBatchSize <= 0 {
		c.Embedding.MaxBatchSize = 256
	}
	if c.Embedding.Budget.Action == "" {
		c.Embedding.Budget.Action = BudgetWarn
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if strings.TrimSpace(c.Catalog.Source) == "" {
		return fmt.Errorf("catalog.source is required")
	}
	if err := c.Ranking.validate(); err != nil {
		return err
	}
	if c.Ranking.Scorer == ScorerDense {
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for the dense scorer")
		}
		if c.Embedding.BaseURL == "" {
			return fmt.Errorf("embedding.base_url is required for the dense scorer")
		}
	}
	if err := c.Embedding.Budget.validate(); err != nil {
		return err
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	return nil
}

func (r *RankingConfig) validate() error {
	switch r.Scorer {
	case ScorerLexical, ScorerDense:
	default:
		return fmt.Errorf("ranking.scorer must be %q or %q, got %q", ScorerLexical, ScorerDense, r.Scorer)
	}
	switch r.MatchMode {
	case MatchFuzzy, MatchExact:
	default:
		return fmt.Errorf("ranking.match_mode must be %q or %q, got %q", MatchFuzzy, MatchExact, r.MatchMode)
	}
	if r.FuzzyThreshold > 100 {
		return fmt.Errorf("ranking.fuzzy_threshold must be between 1 and 100, got %d", r.FuzzyThreshold)
	}
	switch r.Text {
	case TextNotes, TextRich:
	default:
		return fmt.Errorf("ranking.text must be %q or %q, got %q", TextNotes, TextRich, r.Text)
	}
	if r.Boost != nil && *r.Boost < 0 {
		return fmt.Errorf("ranking.boost must not be negative, got %g", *r.Boost)
	}
	switch r.OnScoringError {
	case "fail", "unscored":
	default:
		return fmt.Errorf("ranking.on_scoring_error must be \"fail\" or \"unscored\", got %q", r.OnScoringError)
	}
	return nil
}

func (b *BudgetConfig) validate() error {
	if b.DailyTokenLimit < 0 || b.MonthlyTokenLimit < 0 {
		return fmt.Errorf("embedding.budget limits must not be negative")
	}
	switch b.Action {
	case BudgetWarn, BudgetReject:
	default:
		return fmt.Errorf("embedding.budget.action must be %q or %q, got %q", BudgetWarn, BudgetReject, b.Action)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	if path := filepath.Join(projectRoot(), "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func projectRoot() string {
	_, b, _, _ := runtime.Caller(0)
	return filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
