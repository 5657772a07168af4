package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("MANAGER_PIN", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.ManagerPIN != "" {
		t.Fatalf("expected empty MANAGER_PIN when unset, got %q", cfg.ManagerPIN)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "TIMEZONE", "LOW_STOCK_DEFAULT_LIMIT", "PRODUCT_CACHE_TTL_SECONDS", "DB_AUTO_MIGRATE", "REDIS_INVOICE_SEQUENCE", "ACCESS_TOKEN_TTL_MINUTES"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Address() != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Address())
	}
	if cfg.Timezone != "America/Bogota" || cfg.LowStockDefault != 10 || cfg.ProductCacheTTLSeconds != 30 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.AutoMigrate || cfg.RedisInvoiceSequence {
		t.Fatalf("expected auto migrate on and redis sequence off, got %+v", cfg)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("expected 480 minute tokens, got %d", cfg.AccessTokenTTLMinutes)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("LOW_STOCK_DEFAULT_LIMIT", "-4")
	t.Setenv("REDIS_DB", "two")
	t.Setenv("REDIS_INVOICE_SEQUENCE", "true")

	cfg := Load()
	if cfg.LowStockDefault != 10 || cfg.RedisDB != 0 {
		t.Fatalf("expected fallbacks, got limit=%d db=%d", cfg.LowStockDefault, cfg.RedisDB)
	}
	if !cfg.RedisInvoiceSequence {
		t.Fatalf("expected redis sequence enabled")
	}
}

func TestLocation(t *testing.T) {
	cfg := Config{Timezone: "UTC"}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v err=%v", loc, err)
	}

	cfg.Timezone = "Mars/Olympus"
	if _, err := cfg.Location(); err == nil {
		t.Fatalf("expected unknown zone to fail")
	}
}
