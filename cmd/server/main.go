package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/redis/go-redis/v9"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/cache"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/config"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/httpapi"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/numbering"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/service"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store/memory"
	pgstore "github.com/XGallardoX/Arquitectura-de-Software/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("invalid TIMEZONE: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if closeRepo != nil {
		closers = append(closers, closeRepo)
	}

	opts := service.Options{
		CacheTTL:      time.Duration(cfg.ProductCacheTTLSeconds) * time.Second,
		Location:      loc,
		LowStockLimit: cfg.LowStockDefault,
		Logger:        log.Default(),
	}
	if client := connectRedis(ctx, cfg); client != nil {
		closers = append(closers, client.Close)
		opts.Cache = cache.NewRedisProductCache(client)
		log.Println("cache: redis")
		if cfg.RedisInvoiceSequence {
			opts.Sequencer = numbering.NewRedisSequencer(client, repo.MaxInvoiceSequence)
			log.Println("invoice numbering: redis")
		}
	} else {
		log.Println("cache: noop")
	}

	svc := service.New(repo, opts)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.ManagerPIN, repo)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("POS backend listening on %s (timezone %s)", cfg.Address(), loc)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}
	log.Println("server stopped")
}

// openRepository uses postgres when DATABASE_URL is set and refuses to fall
// back to memory if it is unreachable.
func openRepository(ctx context.Context, cfg config.Config) (store.Repository, func() error, error) {
	if cfg.DatabaseURL == "" {
		log.Println("repository: in-memory")
		return memory.NewSeeded(), nil, nil
	}

	if cfg.AutoMigrate {
		if err := pgstore.Migrate(cfg.DatabaseURL); err != nil {
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		log.Println("database migrations applied")
	}
	pg, err := pgstore.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
	}
	log.Println("repository: postgres")
	return pg, pg.Close, nil
}

// connectRedis returns nil when Redis is not configured or does not answer.
func connectRedis(ctx context.Context, cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable (%v), continuing without it", err)
		_ = client.Close()
		return nil
	}
	return client
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if len(cfg.ManagerPIN) < 6 {
		return fmt.Errorf("MANAGER_PIN must be set and at least 6 digits")
	}
	for _, r := range cfg.ManagerPIN {
		if r < '0' || r > '9' {
			return fmt.Errorf("MANAGER_PIN must contain digits only")
		}
	}
	if err := validatePINStrength(cfg.ManagerPIN); err != nil {
		return fmt.Errorf("MANAGER_PIN is too weak: %w", err)
	}
	return nil
}

// validatePINStrength rejects repeated digits, straight runs and a short list
// of common PINs.
func validatePINStrength(pin string) error {
	known := map[string]bool{
		"123456": true, "654321": true, "121212": true, "112233": true,
		"123123": true, "696969": true, "159753": true, "101010": true,
	}
	if known[pin] {
		return fmt.Errorf("common PIN not allowed")
	}

	allSame := true
	for i := 1; i < len(pin); i++ {
		if pin[i] != pin[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("all-same-digit PIN not allowed")
	}

	ascending, descending := true, true
	for i := 1; i < len(pin); i++ {
		diff := int(pin[i]) - int(pin[i-1])
		if diff != 1 {
			ascending = false
		}
		if diff != -1 {
			descending = false
		}
	}
	if ascending || descending {
		return fmt.Errorf("sequential PIN not allowed")
	}
	return nil
}
