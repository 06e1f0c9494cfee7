package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EXTRACTOR_URL", "")
	t.Setenv("EMBEDDING_DIM", "")
	t.Setenv("MATCH_THRESHOLD", "")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "")

	cfg := Load()

	if cfg.Extractor.Dim != 512 {
		t.Errorf("expected default embedding dim 512, got %d", cfg.Extractor.Dim)
	}
	if cfg.Recognizer.Threshold != 0.5 {
		t.Errorf("expected default threshold 0.5, got %f", cfg.Recognizer.Threshold)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected default max open conns 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("expected default max idle conns 5, got %d", cfg.Database.MaxIdleConns)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("EXTRACTOR_URL", "http://extractor:9000")
	t.Setenv("EMBEDDING_DIM", "768")
	t.Setenv("MATCH_THRESHOLD", "0.62")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/attend")
	t.Setenv("TIMETABLE_DATABASE_URL", "timetable:secret@tcp(mysql:3306)/university")

	cfg := Load()

	if cfg.Extractor.URL != "http://extractor:9000" {
		t.Errorf("unexpected extractor URL: %s", cfg.Extractor.URL)
	}
	if cfg.Extractor.Dim != 768 {
		t.Errorf("expected embedding dim 768, got %d", cfg.Extractor.Dim)
	}
	if cfg.Recognizer.Threshold != 0.62 {
		t.Errorf("expected threshold 0.62, got %f", cfg.Recognizer.Threshold)
	}
	if cfg.Database.URL != "postgres://user:pass@db:5432/attend" {
		t.Errorf("unexpected database URL: %s", cfg.Database.URL)
	}
	if cfg.Timetable.DSN != "timetable:secret@tcp(mysql:3306)/university" {
		t.Errorf("unexpected timetable DSN: %s", cfg.Timetable.DSN)
	}
}

func TestEnvIntIgnoresInvalid(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"empty", "", 10},
		{"garbage", "abc", 10},
		{"negative", "-3", 10},
		{"zero", "0", 10},
		{"valid", "42", 42},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_INT", tc.value)
			if got := envInt("TEST_ENV_INT", 10); got != tc.expected {
				t.Errorf("envInt(%q) = %d; want %d", tc.value, got, tc.expected)
			}
		})
	}
}
