package httpapi

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/service"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/validation"
)

const maxBodyBytes = 1 << 20

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
	pinLimiter    *attemptLimiter
	csrfSecret    []byte
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string) *API {
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		log.Printf("[http] WARN: crypto/rand failed, csrf tokens use a fixed secret: %v", err)
		csrfSecret = []byte("csrf-fallback-secret-change-me!!")
	}
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		pinLimiter:    newAttemptLimiter(8, time.Minute),
		csrfSecret:    csrfSecret,
	}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.securityHeaders)
	r.Use(a.requestLog)
	r.Use(a.csrfGuard)

	r.Get("/healthz", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)
		r.Get("/auth/csrf-token", a.handleCSRFToken)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth(domain.RoleCashier, domain.RoleAdmin))

			r.Get("/products", a.handleListProducts)
			r.Get("/products/search", a.handleSearchProducts)
			r.Get("/products/low-stock", a.handleLowStock)
			r.Get("/products/{id}", a.handleGetProduct)

			r.Get("/tax-rates", a.handleListTaxRates)
			r.Get("/payment-methods", a.handleListPaymentMethods)
			r.Get("/employees", a.handleListEmployees)
			r.Get("/customers", a.handleListCustomers)
			r.Post("/customers", a.handleCreateCustomer)
			r.Patch("/customers/{id}", a.handleUpdateCustomer)

			r.Get("/sales", a.handleListSales)
			r.Post("/sales", a.handleCreateSale)
			r.Get("/sales/{id}", a.handleGetSale)
			r.Post("/sales/{id}/void", a.handleVoidSale)

			r.Get("/invoice-config", a.handleGetInvoiceConfig)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth(domain.RoleAdmin))

			r.Post("/products", a.handleCreateProduct)
			r.Patch("/products/{id}", a.handleUpdateProduct)
			r.Delete("/products/{id}", a.handleDeleteProduct)

			r.Post("/tax-rates", a.handleCreateTaxRate)
			r.Patch("/tax-rates/{id}", a.handleUpdateTaxRate)
			r.Post("/payment-methods", a.handleCreatePaymentMethod)
			r.Patch("/payment-methods/{id}", a.handleUpdatePaymentMethod)
			r.Post("/employees", a.handleCreateEmployee)
			r.Patch("/employees/{id}", a.handleUpdateEmployee)
			r.Get("/suppliers", a.handleListSuppliers)
			r.Post("/suppliers", a.handleCreateSupplier)
			r.Patch("/suppliers/{id}", a.handleUpdateSupplier)

			r.Post("/sales/{id}/reactivate", a.handleReactivateSale)

			r.Get("/purchases", a.handleListPurchases)
			r.Post("/purchases", a.handleCreatePurchase)
			r.Get("/purchases/{id}", a.handleGetPurchase)
			r.Put("/purchases/{id}", a.handleModifyPurchase)

			r.Put("/invoice-config", a.handleUpdateInvoiceConfig)
			r.Get("/audit-logs", a.handleAuditLogs)
			r.Get("/users/cashiers", a.handleListCashiers)
			r.Post("/users/cashiers", a.handleCreateCashier)
		})
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("route not found"))
	})
	return r
}

// csrfTokenForHour is an HMAC-SHA256 over the hour bucket, hex encoded.
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

func (a *API) generateCSRFToken() string {
	return a.csrfTokenForHour(time.Now().UTC().Truncate(time.Hour).Unix())
}

// validateCSRFToken accepts the current and the previous hour bucket.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	current := time.Now().UTC().Truncate(time.Hour).Unix()
	return hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(current))) ||
		hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(current-3600)))
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Body != nil && isMutating(r.Method) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		startedAt := time.Now()
		next.ServeHTTP(ww, r)
		log.Printf("[http] %s %s %d %s req=%s", r.Method, r.URL.Path, ww.Status(), time.Since(startedAt), middleware.GetReqID(r.Context()))
	})
}

// Login is exempt: clients call it before they can fetch a token.
var csrfExemptPaths = map[string]bool{
	"/api/v1/auth/login": true,
}

func (a *API) csrfGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isMutating(r.Method) && !csrfExemptPaths[r.URL.Path] {
			if !a.validateCSRFToken(strings.TrimSpace(r.Header.Get("X-CSRF-Token"))) {
				writeError(w, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func (a *API) requireAuth(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
				writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
				return
			}

			actor, err := a.auth.ParseToken(strings.TrimSpace(authorization[len("Bearer "):]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, err)
				return
			}
			if !isRoleAllowed(actor.Role, roles) {
				writeError(w, http.StatusForbidden, errors.New("forbidden role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(service.WithActor(r.Context(), actor)))
		})
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCSRFToken hands out the token mutating requests must echo in X-CSRF-Token.
func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"csrf_token": a.generateCSRFToken(),
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	if parsed, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && parsed > 0 {
		limit = parsed
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

// parseOptionalBool reads "true"/"false"; anything else means no filter.
func parseOptionalBool(raw string) *bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &v
}

// statusFor is the single place service errors become HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrAdminRequired):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrAlreadyVoided),
		errors.Is(err, store.ErrNotVoided),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrProductInUse):
		return http.StatusConflict
	case errors.Is(err, store.ErrInsufficientPayment),
		errors.Is(err, store.ErrReferenceNotFound),
		errors.Is(err, store.ErrProductNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrInvalidLine),
		errors.Is(err, store.ErrInvalidTransaction):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeServiceError adds the structured parts of typed errors to the body.
func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		writeError(w, status, err)
		return
	}

	body := map[string]any{"error": err.Error()}
	var stockErr *store.StockError
	if errors.As(err, &stockErr) {
		body["shortages"] = stockErr.Shortages
	}
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		body["fields"] = validationErr.Fields
	}
	writeJSON(w, status, body)
}

// writeError keeps 5xx bodies generic; the detail only goes to the log.
func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		log.Printf("[http] internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
