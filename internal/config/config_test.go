package config

import (
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"MONGODB_HOST", "MONGODB_USER", "MONGODB_PASSWORD", "MONGODB_DATABASE",
		"MONGODB_URI", "MONGODB_SESSION_SECRET", "SESSION_SECRET",
		"PORT", "GIN_MODE", "CORS_ALLOWED_ORIGINS", "BCRYPT_COST", "PUBLIC_DIR",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Port = %s, want 3000", cfg.Port)
	}
	if cfg.GinMode != "debug" {
		t.Errorf("GinMode = %s, want debug", cfg.GinMode)
	}
	if cfg.BcryptCost != 16 {
		t.Errorf("BcryptCost = %d, want 16", cfg.BcryptCost)
	}
	if cfg.PublicDir != "public" {
		t.Errorf("PublicDir = %s, want public", cfg.PublicDir)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("MONGODB_DATABASE", "appdb")
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.MongoDatabase != "appdb" {
		t.Errorf("MongoDatabase = %s, want appdb", cfg.MongoDatabase)
	}
	if cfg.BcryptCost != 4 {
		t.Errorf("BcryptCost = %d, want 4", cfg.BcryptCost)
	}
}

func TestDatabaseURIFromParts(t *testing.T) {
	cfg := &Config{
		MongoHost:     "cluster0.example.mongodb.net",
		MongoUser:     "app user",
		MongoPassword: "p@ss:word/1",
	}

	uri := cfg.DatabaseURI()

	if !strings.HasPrefix(uri, "mongodb+srv://") {
		t.Fatalf("unexpected scheme: %s", uri)
	}
	if strings.Contains(uri, "p@ss:word/1") {
		t.Fatalf("credentials were not escaped: %s", uri)
	}
	if !strings.Contains(uri, "@cluster0.example.mongodb.net/") {
		t.Fatalf("host missing: %s", uri)
	}
}

func TestDatabaseURIOverride(t *testing.T) {
	cfg := &Config{
		MongoHost: "ignored.example.net",
		MongoURI:  "mongodb://localhost:27017",
	}

	if uri := cfg.DatabaseURI(); uri != "mongodb://localhost:27017" {
		t.Fatalf("override not honored: %s", uri)
	}
}

func TestValidateReleaseModeRequiresSecrets(t *testing.T) {
	cfg := &Config{
		GinMode:       "release",
		MongoHost:     "cluster0.example.mongodb.net",
		MongoDatabase: "appdb",
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing secrets in release mode")
	}

	cfg.SessionSecret = "signing-secret"
	cfg.SessionStoreSecret = "store-secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error with full config: %v", err)
	}
}

func TestValidateDebugModeIsLenient(t *testing.T) {
	cfg := &Config{GinMode: "debug"}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error in debug mode: %v", err)
	}
}
