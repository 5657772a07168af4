package httpapi

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
)

type userStoreStub struct {
	mu      sync.Mutex
	users   map[string]domain.UserAccount
	updates int
}

func (s *userStoreStub) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]domain.UserAccount)
	}
	s.users[user.Username] = user
	return nil
}

func (s *userStoreStub) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserAccount, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *userStoreStub) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[username]
	user.Password = password
	s.users[username] = user
	s.updates++
	return nil
}

func TestAuthManagerUpgradesLegacyPlainPassword(t *testing.T) {
	users := &userStoreStub{
		users: map[string]domain.UserAccount{
			"admin": {
				Username:  "admin",
				Password:  "admin123",
				Role:      domain.RoleAdmin,
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, "123456", users)
	_, err := manager.Login(context.Background(), domain.LoginRequest{
		Username: "admin",
		Password: "admin123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	stored, err := users.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 user, got %d", len(stored))
	}
	if stored[0].Password == "admin123" {
		t.Fatalf("expected password to be upgraded from plain-text")
	}
	if !strings.HasPrefix(stored[0].Password, "$2") {
		t.Fatalf("expected bcrypt password hash, got %s", stored[0].Password)
	}
	if users.updates != 1 {
		t.Fatalf("expected one password upgrade, got %d", users.updates)
	}
}

func TestCreateCashierStoresPasswordHash(t *testing.T) {
	users := &userStoreStub{
		users: map[string]domain.UserAccount{
			"admin": {
				Username:  "admin",
				Password:  "admin123",
				Role:      domain.RoleAdmin,
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, "123456", users)
	cashier, err := manager.CreateCashier(context.Background(), domain.CashierCreateRequest{
		Username: "barista",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("create cashier failed: %v", err)
	}
	if cashier.Username != "barista" {
		t.Fatalf("unexpected username %s", cashier.Username)
	}

	stored, err := users.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	var found *domain.UserAccount
	for i := range stored {
		if stored[i].Username == "barista" {
			found = &stored[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("expected cashier to be saved")
	}
	if found.Password == "pass1234" {
		t.Fatalf("expected cashier password to be hashed")
	}
	if !strings.HasPrefix(found.Password, "$2") {
		t.Fatalf("expected bcrypt hash prefix, got %s", found.Password)
	}

	_, err = manager.Login(context.Background(), domain.LoginRequest{
		Username: "barista",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("login with hashed cashier failed: %v", err)
	}
}

func TestManagerPINIsHashedAndStillValidates(t *testing.T) {
	users := &userStoreStub{users: map[string]domain.UserAccount{}}
	manager := NewAuthManager("test-secret", time.Hour, "654321", users)

	if manager.managerPIN == "654321" {
		t.Fatalf("expected manager pin to be stored as hash, got plain-text")
	}

	if !manager.ValidateManagerPIN("654321") {
		t.Fatalf("expected manager pin validation to succeed")
	}

	if manager.ValidateManagerPIN("111111") {
		t.Fatalf("expected wrong manager pin to fail")
	}
}

func TestEmptyManagerPINDisablesVoids(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, "", &userStoreStub{})

	if manager.ValidateManagerPIN("") || manager.ValidateManagerPIN("123456") {
		t.Fatalf("expected every pin to be rejected when none is configured")
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	users := &userStoreStub{users: map[string]domain.UserAccount{
		"admin": {Username: "admin", Password: "admin123", Role: domain.RoleAdmin, Active: true},
	}}
	issuer := NewAuthManager("secret-one", time.Hour, "123456", users)
	other := NewAuthManager("secret-two", time.Hour, "123456", users)

	resp, err := issuer.Login(context.Background(), domain.LoginRequest{Username: "Admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", resp.Role)
	}

	actor, err := issuer.ParseToken(resp.AccessToken)
	if err != nil || actor.Username != "admin" || actor.Role != domain.RoleAdmin {
		t.Fatalf("unexpected actor %+v err=%v", actor, err)
	}
	if _, err := other.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}

func TestInactiveAccountCannotLogin(t *testing.T) {
	users := &userStoreStub{users: map[string]domain.UserAccount{
		"ghost": {Username: "ghost", Password: "ghost123", Role: domain.RoleCashier, Active: false},
	}}
	manager := NewAuthManager("test-secret", time.Hour, "123456", users)

	if _, err := manager.Login(context.Background(), domain.LoginRequest{Username: "ghost", Password: "ghost123"}); err == nil {
		t.Fatalf("expected inactive account to be refused")
	}
}
