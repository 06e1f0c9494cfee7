package config

import (
	"os"
	"strconv"
)

type Config struct {
	Extractor  ExtractorConfig
	Recognizer RecognizerConfig
	Database   DatabaseConfig
	Timetable  TimetableConfig
}

// ExtractorConfig points at the face embedding sidecar service.
type ExtractorConfig struct {
	URL string // defaults to http://localhost:8000
	Dim int    // embedding dimensionality, defaults to 512 (buffalo_l)
}

// RecognizerConfig controls the identity matching operating point.
type RecognizerConfig struct {
	Threshold float64 // minimum cosine similarity for a positive match, defaults to 0.5
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL (gallery + attendance store)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// TimetableConfig points at the university scheduling database (read-only).
type TimetableConfig struct {
	DSN string // MySQL DSN, e.g. timetable:timetable@tcp(mysql:3306)/university
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

// envFloat reads an environment variable and parses it as a float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Extractor: ExtractorConfig{
			URL: os.Getenv("EXTRACTOR_URL"),
			Dim: envInt("EMBEDDING_DIM", 512),
		},
		Recognizer: RecognizerConfig{
			Threshold: envFloat("MATCH_THRESHOLD", 0.5),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Timetable: TimetableConfig{
			DSN: os.Getenv("TIMETABLE_DATABASE_URL"),
		},
	}
}
