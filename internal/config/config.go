package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/megaverse/internal/api"
	"github.com/danmuck/megaverse/internal/sandbox"
)

// ClientConfig is everything megaversectl reads from its config file.
type ClientConfig struct {
	API    api.Config
	DryRun bool
	// ShowGrid prints the goal grid with pending cells after planning.
	ShowGrid bool
}

// SandboxConfig is everything sandboxctl reads from its config file.
type SandboxConfig struct {
	Server sandbox.Config
	// GoalFile is a YAML goal fixture; empty serves a cross of CrossSize/CrossMargin.
	GoalFile    string
	Phase       int
	CrossSize   int
	CrossMargin int
}

type clientFile struct {
	BaseURL           string  `toml:"base_url"`
	CandidateID       string  `toml:"candidate_id"`
	VerifySSL         bool    `toml:"verify_ssl"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Timeout           string  `toml:"timeout"`
	RetryDelay        string  `toml:"retry_delay"`
	MaxRetries        int     `toml:"max_retries"`
	GoalTTL           string  `toml:"goal_ttl"`
	CurrentTTL        string  `toml:"current_ttl"`
	DryRun            bool    `toml:"dry_run"`
	ShowGrid          bool    `toml:"show_grid"`
}

type sandboxFile struct {
	Addr              string   `toml:"addr"`
	BasePath          string   `toml:"base_path"`
	CorsOrigins       []string `toml:"cors_origins"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Burst             int      `toml:"burst"`
	Goal              string   `toml:"goal"`
	Phase             int      `toml:"phase"`
	CrossSize         int      `toml:"cross_size"`
	CrossMargin       int      `toml:"cross_margin"`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{API: api.DefaultConfig()}
}

func DefaultSandboxConfig() SandboxConfig {
	return SandboxConfig{
		Server:      sandbox.Config{}.WithDefaults(),
		Phase:       1,
		CrossSize:   11,
		CrossMargin: 2,
	}
}

// LoadClientConfig applies the keys path defines over DefaultClientConfig and validates the result.
// The candidate id may be absent; the CLI argument supplies it.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	var raw clientFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("load client config: %w", err)
	}

	if meta.IsDefined("base_url") {
		cfg.API.BaseURL = strings.TrimSpace(raw.BaseURL)
	}
	if meta.IsDefined("candidate_id") {
		cfg.API.CandidateID = strings.TrimSpace(raw.CandidateID)
	}
	if meta.IsDefined("verify_ssl") {
		cfg.API.VerifySSL = raw.VerifySSL
	}
	if meta.IsDefined("requests_per_second") {
		cfg.API.RequestsPerSecond = raw.RequestsPerSecond
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"timeout", raw.Timeout, &cfg.API.Timeout},
		{"retry_delay", raw.RetryDelay, &cfg.API.RetryDelay},
		{"goal_ttl", raw.GoalTTL, &cfg.API.GoalTTL},
		{"current_ttl", raw.CurrentTTL, &cfg.API.CurrentTTL},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return ClientConfig{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}
	if meta.IsDefined("max_retries") {
		cfg.API.MaxRetries = raw.MaxRetries
	}
	if meta.IsDefined("dry_run") {
		cfg.DryRun = raw.DryRun
	}
	if meta.IsDefined("show_grid") {
		cfg.ShowGrid = raw.ShowGrid
	}

	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func LoadSandboxConfig(path string) (SandboxConfig, error) {
	cfg := DefaultSandboxConfig()

	var raw sandboxFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return SandboxConfig{}, fmt.Errorf("load sandbox config: %w", err)
	}

	if meta.IsDefined("addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("base_path") {
		cfg.Server.BasePath = strings.TrimSpace(raw.BasePath)
	}
	if meta.IsDefined("cors_origins") {
		cfg.Server.CORSOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("requests_per_second") {
		cfg.Server.RequestsPerSecond = raw.RequestsPerSecond
	}
	if meta.IsDefined("burst") {
		cfg.Server.Burst = raw.Burst
	}
	if meta.IsDefined("goal") {
		cfg.GoalFile = strings.TrimSpace(raw.Goal)
		// Relative fixture paths resolve against the config file.
		if cfg.GoalFile != "" && !filepath.IsAbs(cfg.GoalFile) {
			cfg.GoalFile = filepath.Join(filepath.Dir(path), cfg.GoalFile)
		}
	}
	if meta.IsDefined("phase") {
		cfg.Phase = raw.Phase
	}
	if meta.IsDefined("cross_size") {
		cfg.CrossSize = raw.CrossSize
	}
	if meta.IsDefined("cross_margin") {
		cfg.CrossMargin = raw.CrossMargin
	}

	if err := ValidateSandboxConfig(cfg); err != nil {
		return SandboxConfig{}, err
	}
	return cfg, nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	if base := strings.TrimSpace(cfg.API.BaseURL); base != "" {
		u, err := url.Parse(base)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("client config base_url must be an absolute http(s) url: %q", base)
		}
	}
	if cfg.API.RequestsPerSecond < 0 {
		return fmt.Errorf("client config requests_per_second must be >= 0")
	}
	if cfg.API.MaxRetries < 0 {
		return fmt.Errorf("client config max_retries must be >= 0")
	}
	for key, d := range map[string]time.Duration{
		"timeout":     cfg.API.Timeout,
		"retry_delay": cfg.API.RetryDelay,
		"goal_ttl":    cfg.API.GoalTTL,
		"current_ttl": cfg.API.CurrentTTL,
	} {
		if d < 0 {
			return fmt.Errorf("client config %s must not be negative", key)
		}
	}
	return nil
}

func ValidateSandboxConfig(cfg SandboxConfig) error {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("sandbox config missing addr")
	}
	if cfg.Server.RequestsPerSecond < 0 {
		return fmt.Errorf("sandbox config requests_per_second must be >= 0")
	}
	if cfg.GoalFile == "" {
		if cfg.CrossSize <= 0 {
			return fmt.Errorf("sandbox config cross_size must be > 0 when no goal file is set")
		}
		if cfg.CrossMargin < 0 || 2*cfg.CrossMargin >= cfg.CrossSize {
			return fmt.Errorf("sandbox config cross_margin %d leaves no cells in a %d grid", cfg.CrossMargin, cfg.CrossSize)
		}
	}
	return nil
}
