package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Recognizer RecognizerConfig
	Gallery    GalleryConfig
	Matching   MatchingConfig
	Database   DatabaseConfig
	SIS        SISConfig
	LogLevel   string
}

type RecognizerConfig struct {
	URL   string // defaults to http://localhost:8001
	Model string // defaults to facenet512
}

type GalleryConfig struct {
	StudentDir string // root folder of per-class student reference images
	ExportDir  string // folder CSV exports are written to
}

// MatchingConfig holds the matching thresholds and bounds. Defaults ship in
// the embedded defaults.yaml; each field can be overridden by env.
type MatchingConfig struct {
	SelfieThreshold float64 `yaml:"selfie_threshold"`
	GroupThreshold  float64 `yaml:"group_threshold"`
	MaxGroupRefs    int     `yaml:"max_group_refs"`
	FaceEdge        int     `yaml:"face_edge"`
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type SISConfig struct {
	DSN string // MySQL DSN of the upstream student information system (optional)
}

type defaultsFile struct {
	Matching MatchingConfig `yaml:"matching"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var defaults defaultsFile
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// Embedded file, cannot happen in practice.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	m := defaults.Matching

	return &Config{
		Recognizer: RecognizerConfig{
			URL:   envString("RECOGNIZER_URL", "http://localhost:8001"),
			Model: envString("RECOGNIZER_MODEL", "facenet512"),
		},
		Gallery: GalleryConfig{
			StudentDir: envString("STUDENT_DB_DIR", "student_db"),
			ExportDir:  envString("EXPORT_DIR", "prof_db"),
		},
		Matching: MatchingConfig{
			SelfieThreshold: envFloat("SELFIE_THRESHOLD", m.SelfieThreshold),
			GroupThreshold:  envFloat("GROUP_THRESHOLD", m.GroupThreshold),
			MaxGroupRefs:    envInt("MAX_GROUP_REFS", m.MaxGroupRefs),
			FaceEdge:        envInt("FACE_EDGE", m.FaceEdge),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		SIS: SISConfig{
			DSN: os.Getenv("SIS_DATABASE_URL"),
		},
		LogLevel: envString("LOG_LEVEL", "info"),
	}
}
