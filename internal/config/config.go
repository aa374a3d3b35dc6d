// Package config loads the process configuration from the environment,
// with a .env file applied first when present.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"cadpilot/internal/units"
)

type Config struct {
	Port string
	Env  string

	LLM      LLMConfig
	Session  SessionConfig
	Snapshot SnapshotConfig
	Artifact ArtifactConfig
}

type LLMConfig struct {
	// Provider is "gemini" or "fake" for offline sessions.
	Provider string
	Model    string
}

type SessionConfig struct {
	// DefaultUnit applies when parsed text carries no unit token.
	DefaultUnit units.Unit
	// ConfidenceThreshold is the floor below which intents escalate to a
	// clarification.
	ConfidenceThreshold float64
	// PreviewHistory bounds the per-broker preview ring.
	PreviewHistory int
}

type SnapshotConfig struct {
	// Path is the file backend location; DSN switches to Postgres.
	Path string
	DSN  string
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:     *port,
		Env:      env,
		LLM:      loadLLMConfig(),
		Session:  loadSessionConfig(),
		Snapshot: loadSnapshotConfig(),
		Artifact: loadArtifactConfig(env),
	}, nil
}

func loadLLMConfig() LLMConfig {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if provider == "" {
		provider = "gemini"
	}
	return LLMConfig{
		Provider: provider,
		Model:    firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_MODEL")), "gemini-2.5-flash"),
	}
}

func loadSessionConfig() SessionConfig {
	unit := units.Millimeter
	if tok := strings.TrimSpace(os.Getenv("SESSION_DEFAULT_UNIT")); tok != "" {
		if u, err := units.ParseUnit(tok); err == nil {
			unit = u
		}
	}
	threshold := 0.0
	if raw := strings.TrimSpace(os.Getenv("SESSION_CONFIDENCE_THRESHOLD")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			threshold = v
		}
	}
	history := 0
	if raw := strings.TrimSpace(os.Getenv("PREVIEW_HISTORY_SIZE")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			history = v
		}
	}
	return SessionConfig{
		DefaultUnit:         unit,
		ConfidenceThreshold: threshold,
		PreviewHistory:      history,
	}
}

func loadSnapshotConfig() SnapshotConfig {
	return SnapshotConfig{
		Path: firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_PATH")), "data/snapshots.json"),
		DSN:  strings.TrimSpace(os.Getenv("SNAPSHOT_PG_DSN")),
	}
}

func loadArtifactConfig(env string) ArtifactConfig {
	endpoint := resolveArtifactEndpoint(env)
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "cadpilot-exports"),
		UseSSL:    resolveArtifactUseSSL(env),
	}
}

func resolveArtifactEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
}

func resolveArtifactUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
