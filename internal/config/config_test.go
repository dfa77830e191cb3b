package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MOVE_TIME_MS", "KAFKA_BROKERS", "ALLOWED_ORIGINS", "PARALLEL_SEARCH", "ENV", "DEFAULT_PROFILE"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig()

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.MoveTime != 800*time.Millisecond {
		t.Errorf("MoveTime = %v, want 800ms", cfg.MoveTime)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Errorf("expected no brokers, got %v", cfg.KafkaBrokers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate outside production: %v", err)
	}

	engine := cfg.EngineConfig()
	if engine.Rows != 6 || engine.Columns != 7 || engine.WinLength != 4 {
		t.Errorf("unexpected engine dimensions %+v", engine)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://play.example.com")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("MOVE_TIME_MS", "250")
	t.Setenv("PARALLEL_SEARCH", "true")
	t.Setenv("CLEANUP_INTERVAL", "15m")
	t.Setenv("BOARD_COLUMNS", "not-a-number")

	cfg := LoadConfig()

	wantOrigins := []string{"https://play.example.com", "https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, wantOrigins) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, wantOrigins)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"k1:9092", "k2:9092"}) {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.MoveTime != 250*time.Millisecond || !cfg.ParallelSearch {
		t.Errorf("search settings not applied: %v %v", cfg.MoveTime, cfg.ParallelSearch)
	}
	if cfg.CleanupInterval != 15*time.Minute {
		t.Errorf("CleanupInterval = %v, want 15m", cfg.CleanupInterval)
	}
	if cfg.BoardColumns != 7 {
		t.Errorf("bad integer should fall back to the default, got %d", cfg.BoardColumns)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if err := LoadConfig().Validate(); err == nil {
		t.Errorf("production without a JWT secret should fail")
	}

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DEFAULT_PROFILE", "grandmaster")
	if err := LoadConfig().Validate(); err == nil {
		t.Errorf("unknown default profile should fail")
	}

	t.Setenv("DEFAULT_PROFILE", "hard")
	t.Setenv("API_CLIENTS", "arena")
	if err := LoadConfig().Validate(); err == nil {
		t.Errorf("malformed API_CLIENTS should fail")
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("FLAG", "maybe")
	if !GetEnvAsBool("FLAG", true) {
		t.Errorf("unparsable bool should fall back to the default")
	}
	t.Setenv("FLAG", "0")
	if GetEnvAsBool("FLAG", true) {
		t.Errorf("0 should parse as false")
	}
}
