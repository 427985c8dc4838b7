package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	KindClient  = "client"
	KindSandbox = "sandbox"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindClient:
		return clientTemplate, nil
	case KindSandbox:
		return sandboxTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// Load validates the file at path as the given kind.
func Load(path, kind string) error {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindClient:
		_, err := LoadClientConfig(path)
		return err
	case KindSandbox:
		_, err := LoadSandboxConfig(path)
		return err
	default:
		return fmt.Errorf("unknown config kind: %s", kind)
	}
}

// DefaultPath is where configgen writes a kind's config when no output is given.
func DefaultPath(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindClient:
		return "cmd/megaversectl/config.toml", nil
	case KindSandbox:
		return "cmd/sandboxctl/config.toml", nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

const clientTemplate = `base_url = "https://challenge.crossmint.io/api"
# candidate_id = ""
verify_ssl = false
requests_per_second = 1.0
timeout = "30s"
retry_delay = "5s"
# 0 retries rate-limited requests without bound
max_retries = 0
goal_ttl = "5m"
current_ttl = "30s"
dry_run = false
show_grid = false
`

const sandboxTemplate = `addr = ":8080"
base_path = "/api"
cors_origins = ["http://localhost:3000"]
# 0 disables 429 emulation
requests_per_second = 0
burst = 1
# goal = "goal.yaml"
phase = 1
cross_size = 11
cross_margin = 2
`
