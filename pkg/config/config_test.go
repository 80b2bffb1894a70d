package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MONGO_TRANSACTIONS", "true")
	t.Setenv("PROFILE_CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT_BURST", "7")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Port != "8080" || c.MongoDB != "pressroom" || c.NotifyConcurrency != 8 {
		t.Fatalf("defaults not applied: %+v", c)
	}
	if !c.MongoTransactions || c.ProfileCacheTTL != 90*time.Second || c.RateLimitBurst != 7 {
		t.Fatalf("env not applied: %+v", c)
	}
	if c.IsProduction() {
		t.Fatal("default env should not be production")
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error without JWT_SECRET")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "MONGO_URI: mongodb://file:27017\nJWT_SECRET: fromfile\nPORT: \"9000\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.MongoURI != "mongodb://file:27017" || c.Port != "9000" {
		t.Fatalf("file values not applied: %+v", c)
	}
}
