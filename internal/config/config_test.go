package config

import (
	"os"
	"testing"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/medstock")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.DBMaxConns != 20 {
		t.Errorf("expected default DB_MAX_CONNS 20, got %d", cfg.DBMaxConns)
	}
	if !cfg.IsDev() {
		t.Error("expected IsDev true by default")
	}
}

func TestLoad_RequiresJWTSecretOutsideDev(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/medstock")
	os.Setenv("ENV", "production")
	os.Unsetenv("JWT_SECRET")
	defer func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("ENV")
	}()

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing in production")
	}

	os.Setenv("JWT_SECRET", "super-secret")
	defer os.Unsetenv("JWT_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction true")
	}
}

func TestLoad_CORSOriginsFromEnv(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/medstock")
	os.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")
	defer func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("CORS_ORIGINS")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
	if cfg.CORSOrigins[1] != "http://b.example" {
		t.Errorf("unexpected origins: %v", cfg.CORSOrigins)
	}
}
