package memory

import (
	"cmp"
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/numbering"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/xid"
)

var _ store.Repository = (*Store)(nil)

type Store struct {
	mu              sync.RWMutex
	products        map[string]domain.Product
	taxRates        map[string]domain.TaxRate
	paymentMethods  map[string]domain.PaymentMethod
	customers       map[string]domain.Customer
	employees       map[string]domain.Employee
	suppliers       map[string]domain.Supplier
	invoiceConfig   *domain.InvoiceConfig
	invoices        map[string]domain.Invoice
	sequences       map[string]int64
	purchases       map[string]domain.Purchase
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// New returns an empty store with no users.
func New() *Store {
	return &Store{
		products:        make(map[string]domain.Product),
		taxRates:        make(map[string]domain.TaxRate),
		paymentMethods:  make(map[string]domain.PaymentMethod),
		customers:       make(map[string]domain.Customer),
		employees:       make(map[string]domain.Employee),
		suppliers:       make(map[string]domain.Supplier),
		invoices:        make(map[string]domain.Invoice),
		sequences:       make(map[string]int64),
		purchases:       make(map[string]domain.Purchase),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: make(map[string]domain.UserAccount),
	}
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Passwords come from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD with
// dev defaults when unset.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"cashier", cashierPwd, domain.RoleCashier},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewSeeded returns a store stocked like a small bar: drinks, the usual tax
// rates and payment methods, one employee, one customer and one supplier.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	for _, p := range []struct {
		id, code, name, category string
		cost, price              string
		stock, min               int
	}{
		{"prd-aguila", "CER-AGU-330", "Cerveza Aguila 330ml", "cerveza", "2100.00", "3500.00", 120, 24},
		{"prd-club", "CER-CLU-330", "Cerveza Club Colombia 330ml", "cerveza", "2600.00", "4200.00", 96, 24},
		{"prd-poker", "CER-POK-330", "Cerveza Poker 330ml", "cerveza", "2000.00", "3300.00", 8, 24},
		{"prd-guaro", "LIC-ANT-750", "Aguardiente Antioqueno 750ml", "licor", "38000.00", "65000.00", 12, 4},
		{"prd-ron", "LIC-RVC-750", "Ron Viejo de Caldas 750ml", "licor", "42000.00", "72000.00", 5, 3},
		{"prd-agua", "BEB-AGU-600", "Agua Cristal 600ml", "bebida", "900.00", "2000.00", 60, 12},
		{"prd-gaseosa", "BEB-GAS-400", "Gaseosa Postobon 400ml", "bebida", "1500.00", "3000.00", 48, 12},
		{"prd-mani", "SNK-MAN-050", "Mani salado 50g", "snack", "1200.00", "2500.00", 30, 10},
	} {
		s.products[p.id] = domain.Product{
			ID:            p.id,
			Code:          p.code,
			Name:          p.name,
			Category:      p.category,
			PurchasePrice: decimal.RequireFromString(p.cost),
			SalePrice:     decimal.RequireFromString(p.price),
			Stock:         p.stock,
			MinStock:      p.min,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	for _, r := range []struct{ id, name, percent string }{
		{"tax-exento", "Exento", "0.000"},
		{"tax-iva19", "IVA 19%", "19.000"},
		{"tax-iva5", "IVA 5%", "5.000"},
	} {
		s.taxRates[r.id] = domain.TaxRate{ID: r.id, Name: r.name, Percent: decimal.RequireFromString(r.percent), Active: true, CreatedAt: now}
	}

	for _, m := range []struct{ id, name string }{
		{"pay-efectivo", "Efectivo"},
		{"pay-debito", "Tarjeta Debito"},
		{"pay-credito", "Tarjeta Credito"},
		{"pay-transferencia", "Transferencia"},
		{"pay-nequi", "Nequi"},
		{"pay-daviplata", "Daviplata"},
	} {
		s.paymentMethods[m.id] = domain.PaymentMethod{ID: m.id, Name: m.name, Active: true, CreatedAt: now}
	}

	s.employees["emp-001"] = domain.Employee{ID: "emp-001", FirstName: "Laura", LastName: "Gomez", Phone: "3001234567", Active: true, CreatedAt: now}
	s.customers["cus-001"] = domain.Customer{ID: "cus-001", Name: "Consumidor Final", Active: true, CreatedAt: now}
	s.suppliers["sup-001"] = domain.Supplier{ID: "sup-001", Name: "Distribuidora Bavaria", Phone: "6015550101", Active: true, CreatedAt: now}
	s.usersByUsername = seedUsers()

	return s
}

func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s}
	defer func() {
		if r := recover(); r != nil {
			tx.rollback()
			panic(r)
		}
	}()
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (s *Store) ListProducts(_ context.Context, includeInactive bool) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if !includeInactive && !p.Active {
			continue
		}
		products = append(products, p)
	}
	slices.SortFunc(products, compareProducts)
	return products, nil
}

func (s *Store) SearchProducts(_ context.Context, query string, limit int) ([]domain.Product, error) {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, 16)
	for _, p := range s.products {
		if !p.Active {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Code), query) &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Category), query) {
			continue
		}
		products = append(products, p)
	}
	slices.SortFunc(products, compareProducts)
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (s *Store) ListLowStockProducts(_ context.Context, threshold int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, 16)
	for _, p := range s.products {
		if p.Active && p.Stock <= threshold {
			products = append(products, p)
		}
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmp.Or(cmp.Compare(a.Stock, b.Stock), cmp.Compare(a.Name, b.Name))
	})
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.Code == "" || product.Name == "" || product.Stock < 0 {
		return nil, store.ErrInvalidTransaction
	}
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ID]; exists {
		return nil, store.ErrDuplicate
	}
	for _, p := range s.products {
		if strings.EqualFold(p.Code, product.Code) {
			return nil, store.ErrDuplicate
		}
	}
	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	product.Code = existing.Code
	product.Stock = existing.Stock
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	s.products[product.ID] = product

	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	for _, inv := range s.invoices {
		for _, line := range inv.Lines {
			if line.ProductID == id {
				return store.ErrProductInUse
			}
		}
	}
	for _, p := range s.purchases {
		for _, line := range p.Lines {
			if line.ProductID == id {
				return store.ErrProductInUse
			}
		}
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListTaxRates(_ context.Context) ([]domain.TaxRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.taxRates, func(a, b domain.TaxRate) int {
		return cmp.Or(a.Percent.Cmp(b.Percent), cmp.Compare(a.Name, b.Name))
	}), nil
}

func (s *Store) GetTaxRate(_ context.Context, id string) (*domain.TaxRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getValue(s.taxRates, id)
}

func (s *Store) CreateTaxRate(_ context.Context, rate domain.TaxRate) (*domain.TaxRate, error) {
	if rate.ID == "" {
		rate.ID = xid.New("tax")
	}
	if rate.CreatedAt.IsZero() {
		rate.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return insertValue(s.taxRates, rate.ID, rate)
}

func (s *Store) UpdateTaxRate(_ context.Context, rate domain.TaxRate) (*domain.TaxRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.taxRates[rate.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	rate.Percent = existing.Percent
	rate.CreatedAt = existing.CreatedAt
	s.taxRates[rate.ID] = rate
	return &rate, nil
}

func (s *Store) ListPaymentMethods(_ context.Context) ([]domain.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.paymentMethods, func(a, b domain.PaymentMethod) int {
		return cmp.Compare(a.Name, b.Name)
	}), nil
}

func (s *Store) GetPaymentMethod(_ context.Context, id string) (*domain.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getValue(s.paymentMethods, id)
}

func (s *Store) CreatePaymentMethod(_ context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error) {
	if method.ID == "" {
		method.ID = xid.New("pay")
	}
	if method.CreatedAt.IsZero() {
		method.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.paymentMethods {
		if strings.EqualFold(m.Name, method.Name) {
			return nil, store.ErrDuplicate
		}
	}
	return insertValue(s.paymentMethods, method.ID, method)
}

func (s *Store) UpdatePaymentMethod(_ context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.paymentMethods[method.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	for _, m := range s.paymentMethods {
		if m.ID != method.ID && strings.EqualFold(m.Name, method.Name) {
			return nil, store.ErrDuplicate
		}
	}
	method.CreatedAt = existing.CreatedAt
	s.paymentMethods[method.ID] = method
	return &method, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.customers, func(a, b domain.Customer) int {
		return cmp.Compare(a.Name, b.Name)
	}), nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getValue(s.customers, id)
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" {
		customer.ID = xid.New("cus")
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return insertValue(s.customers, customer.ID, customer)
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.customers[customer.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	customer.CreatedAt = existing.CreatedAt
	s.customers[customer.ID] = customer
	return &customer, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.employees, func(a, b domain.Employee) int {
		return cmp.Or(cmp.Compare(a.LastName, b.LastName), cmp.Compare(a.FirstName, b.FirstName))
	}), nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getValue(s.employees, id)
}

func (s *Store) CreateEmployee(_ context.Context, employee domain.Employee) (*domain.Employee, error) {
	if employee.ID == "" {
		employee.ID = xid.New("emp")
	}
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.employeePhoneTaken(employee.Phone, employee.ID) {
		return nil, store.ErrDuplicate
	}
	return insertValue(s.employees, employee.ID, employee)
}

func (s *Store) UpdateEmployee(_ context.Context, employee domain.Employee) (*domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.employees[employee.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if s.employeePhoneTaken(employee.Phone, employee.ID) {
		return nil, store.ErrDuplicate
	}
	employee.CreatedAt = existing.CreatedAt
	s.employees[employee.ID] = employee
	return &employee, nil
}

func (s *Store) employeePhoneTaken(phone string, exceptID string) bool {
	if phone == "" {
		return false
	}
	for _, e := range s.employees {
		if e.ID != exceptID && e.Phone == phone {
			return true
		}
	}
	return false
}

func (s *Store) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.suppliers, func(a, b domain.Supplier) int {
		return cmp.Compare(a.Name, b.Name)
	}), nil
}

func (s *Store) GetSupplier(_ context.Context, id string) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getValue(s.suppliers, id)
}

func (s *Store) CreateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	if supplier.ID == "" {
		supplier.ID = xid.New("sup")
	}
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return insertValue(s.suppliers, supplier.ID, supplier)
}

func (s *Store) UpdateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.suppliers[supplier.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	supplier.CreatedAt = existing.CreatedAt
	s.suppliers[supplier.ID] = supplier
	return &supplier, nil
}

func (s *Store) GetInvoiceConfig(_ context.Context) (*domain.InvoiceConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.invoiceConfig == nil {
		return nil, store.ErrNotFound
	}
	cfg := *s.invoiceConfig
	return &cfg, nil
}

func (s *Store) SaveInvoiceConfig(_ context.Context, cfg domain.InvoiceConfig) (*domain.InvoiceConfig, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.invoiceConfig != nil {
		cfg.ID = s.invoiceConfig.ID
		cfg.CreatedAt = s.invoiceConfig.CreatedAt
	} else {
		if cfg.ID == "" {
			cfg.ID = xid.New("cfg")
		}
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now
	saved := cfg
	s.invoiceConfig = &saved
	return &cfg, nil
}

func (s *Store) GetInvoice(_ context.Context, id string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cloned := cloneInvoice(inv)
	return &cloned, nil
}

func (s *Store) ListInvoices(_ context.Context, filter store.InvoiceFilter) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invoices := make([]domain.Invoice, 0, 32)
	for _, inv := range s.invoices {
		if filter.IssueDate != "" && inv.IssueDate != filter.IssueDate {
			continue
		}
		if filter.Voided != nil && inv.Voided != *filter.Voided {
			continue
		}
		invoices = append(invoices, cloneInvoice(inv))
	}
	slices.SortFunc(invoices, func(a, b domain.Invoice) int {
		return cmp.Compare(b.ID, a.ID)
	})
	if filter.Limit > 0 && len(invoices) > filter.Limit {
		invoices = invoices[:filter.Limit]
	}
	return invoices, nil
}

func (s *Store) MaxInvoiceSequence(_ context.Context, day time.Time) (int64, error) {
	date := day.Format(time.DateOnly)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var highest int64
	for _, inv := range s.invoices {
		if inv.IssueDate != date {
			continue
		}
		_, seq, err := numbering.Parse(inv.ID)
		if err != nil {
			continue
		}
		highest = max(highest, seq)
	}
	return highest, nil
}

func (s *Store) GetPurchase(_ context.Context, id string) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.purchases[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cloned := clonePurchase(p)
	return &cloned, nil
}

func (s *Store) ListPurchases(_ context.Context, limit int) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchases := make([]domain.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		purchases = append(purchases, clonePurchase(p))
	}
	slices.SortFunc(purchases, func(a, b domain.Purchase) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	if limit > 0 && len(purchases) > limit {
		purchases = purchases[:limit]
	}
	return purchases, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, 64)
	for i := len(s.auditLogs) - 1; i >= 0; i-- {
		entry := s.auditLogs[i]
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidTransaction
	}
	if user.Role == "" {
		user.Role = domain.RoleCashier
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrDuplicate
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.usersByUsername, func(a, b domain.UserAccount) int {
		return cmp.Compare(a.Username, b.Username)
	}), nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidTransaction
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func compareProducts(a, b domain.Product) int {
	return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Name, b.Name))
}

func sortedValues[T any](m map[string]T, compare func(a, b T) int) []T {
	values := make([]T, 0, len(m))
	for _, v := range m {
		values = append(values, v)
	}
	slices.SortFunc(values, compare)
	return values
}

func getValue[T any](m map[string]T, id string) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &v, nil
}

func insertValue[T any](m map[string]T, id string, v T) (*T, error) {
	if _, exists := m[id]; exists {
		return nil, store.ErrDuplicate
	}
	m[id] = v
	return &v, nil
}

func cloneInvoice(src domain.Invoice) domain.Invoice {
	dst := src
	dst.Lines = slices.Clone(src.Lines)
	if src.VoidedAt != nil {
		at := *src.VoidedAt
		dst.VoidedAt = &at
	}
	return dst
}

func clonePurchase(src domain.Purchase) domain.Purchase {
	dst := src
	dst.Lines = slices.Clone(src.Lines)
	return dst
}
