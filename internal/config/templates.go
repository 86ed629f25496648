package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const bridgeTemplate = `# Chaddybot Bridge Configuration
# Every key here can also be set through the environment; environment
# values win over this file.

[server]
# HTTP listen port (env: BRIDGE_PORT)
port = 8090
# Shared secret expected in the X-Bridge-Key header (env: BRIDGE_SHARED_SECRET)
# WARNING: keep this file secure if you set the secret here.
shared_secret = ""
# Outer bound for one decision request, in seconds (env: BRIDGE_DEADLINE_SECONDS)
deadline_seconds = 30

[provider]
# Completion API key (env: OPENAI_API_KEY)
api_key = ""
# Override the completion endpoint, e.g. for a local proxy (env: OPENAI_BASE_URL)
base_url = ""
# Model to request (env: BRIDGE_MODEL)
model = "gpt-4o-mini"
# Prompt variant: structured, lines, scalper, swing (env: BRIDGE_PROMPT_VARIANT)
prompt_variant = "structured"

[log]
# Log level: debug, info, warn, error (env: BRIDGE_LOG_LEVEL)
level = "info"

[journal]
# Record every decision in a local SQLite journal
enabled = true
# Journal database path (env: BRIDGE_JOURNAL_PATH)
path = ""
`

// WriteTemplate writes the annotated config template to the given
// directory. It refuses to overwrite an existing file.
func WriteTemplate(configDir string) (string, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "bridge.toml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists at %s", path)
	}

	// Restricted permissions: the file may hold the shared secret.
	if err := os.WriteFile(path, []byte(bridgeTemplate), 0600); err != nil {
		return "", fmt.Errorf("writing config template: %w", err)
	}

	return path, nil
}
