package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Agent     AgentConfig     `koanf:"agent"`
	Journal   JournalConfig   `koanf:"journal"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

type AgentConfig struct {
	RoleManifest    string `koanf:"role_manifest"`
	ConceptManifest string `koanf:"concept_manifest"`
	MaxMessageBytes int    `koanf:"max_message_bytes"`
}

type JournalConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Provider string `koanf:"provider"` // sqlite, inmemory
	Path     string `koanf:"path"`
}

// Global k instance
var k = koanf.New(".")

func Load(path string) (*Config, error) {
	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("telemetry.exporter", "stdout")

	k.Set("agent.role_manifest", "role_manifest.yaml")
	k.Set("agent.concept_manifest", "")
	k.Set("agent.max_message_bytes", 64*1024)

	k.Set("journal.enabled", false)
	k.Set("journal.provider", "sqlite")
	k.Set("journal.path", "scriptor.db")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (SCRIPTOR_AGENT_ROLE_MANIFEST -> agent.role_manifest)
	if err := k.Load(env.Provider("SCRIPTOR_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "SCRIPTOR_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
