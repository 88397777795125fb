package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.JWT.TTL != 24*time.Hour || cfg.Kafka.Workers != 8 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "localhost:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if !cfg.Development() {
		t.Fatalf("expected development env by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":    "secret",
		"JWT_TTL":       "15m",
		"KAFKA_BROKERS": "k1:9092,k2:9092",
		"LOGIN_RATE":    "0.5",
		"ENV":           "production",
	}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.JWT.TTL != 15*time.Minute {
		t.Fatalf("unexpected ttl %s", cfg.JWT.TTL)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Limits.LoginRate != 0.5 || cfg.Development() {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing JWT_SECRET")
	}
}
