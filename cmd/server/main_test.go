package main

import (
	"context"
	"testing"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/config"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store/memory"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	cases := map[string]config.Config{
		"short secret":   {AuthSecret: "short", ManagerPIN: "739154"},
		"short pin":      {AuthSecret: "0123456789abcdef0123456789abcdef", ManagerPIN: "7391"},
		"common pin":     {AuthSecret: "0123456789abcdef0123456789abcdef", ManagerPIN: "123456"},
		"repeated digit": {AuthSecret: "0123456789abcdef0123456789abcdef", ManagerPIN: "444444"},
		"descending":     {AuthSecret: "0123456789abcdef0123456789abcdef", ManagerPIN: "987654"},
		"letters":        {AuthSecret: "0123456789abcdef0123456789abcdef", ManagerPIN: "73a154"},
	}
	for name, cfg := range cases {
		if err := validateSecurityConfig(cfg); err == nil {
			t.Fatalf("%s: expected weak security config to be rejected", name)
		}
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef", ManagerPIN: "739154"})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestOpenRepositoryWithoutDatabaseUsesMemory(t *testing.T) {
	repo, closeFn, err := openRepository(context.Background(), config.Config{})
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	if closeFn != nil {
		t.Fatalf("expected nothing to close for the memory store")
	}
	if _, ok := repo.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", repo)
	}
}

func TestConnectRedisSkipsWhenUnset(t *testing.T) {
	if client := connectRedis(context.Background(), config.Config{}); client != nil {
		t.Fatalf("expected no client without REDIS_ADDR")
	}
}
