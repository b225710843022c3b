package main

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_SharesAPIEnvNames(t *testing.T) {
	t.Setenv("CHAUFFEUR_DB_DSN", "postgres://bench@db:5432/chauffeur")
	t.Setenv("CHAUFFEUR_REDIS_ADDR", "cache:6379")
	t.Setenv("CHAUFFEUR_BENCH_BASE_URL", "http://api:8080/")
	t.Setenv("CHAUFFEUR_BENCH_CONCURRENCY", "4")
	t.Setenv("CHAUFFEUR_BENCH_DURATION", "2s")

	cfg := loadConfig()

	if cfg.DSN != "postgres://bench@db:5432/chauffeur" || cfg.RedisAddr != "cache:6379" {
		t.Errorf("dsn=%q redis=%q, want the CHAUFFEUR_DB_DSN / CHAUFFEUR_REDIS_ADDR values", cfg.DSN, cfg.RedisAddr)
	}
	if cfg.BaseURL != "http://api:8080" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
	if cfg.Concurrency != 4 || cfg.Duration != 2*time.Second || cfg.WidgetID != "demo" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestMigrationFilesParse(t *testing.T) {
	tables, err := extractTables("../../migrations/0001_init.sql")
	if err != nil {
		t.Fatalf("extractTables: %v", err)
	}
	want := []string{"widgets", "widget_vehicles", "zones", "packages", "surcharges", "promo_codes"}
	if strings.Join(tables, ",") != strings.Join(want, ",") {
		t.Errorf("tables = %v, want %v", tables, want)
	}

	seed, err := os.ReadFile("../../migrations/0002_demo_widget.sql")
	if err != nil {
		t.Fatalf("read seed: %v", err)
	}
	stmts := splitSQL(string(seed))
	if len(stmts) != 6 {
		t.Fatalf("got %d seed statements, want 6", len(stmts))
	}
	for _, s := range stmts {
		if !strings.HasPrefix(s, "INSERT INTO") {
			t.Errorf("unexpected statement %.40q", s)
		}
	}
}
