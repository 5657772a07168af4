package store

import (
	"context"
	"time"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
)

type InvoiceFilter struct {
	// IssueDate is YYYY-MM-DD; empty means any date.
	IssueDate string
	Voided    *bool
	Limit     int
}

// Tx is the unit of work handed to Repository.RunInTx. Every write made
// through it commits or rolls back together.
type Tx interface {
	// StockProducts returns the requested products keyed by id and holds
	// them against concurrent stock changes until the unit of work ends.
	// Unknown ids are absent from the map.
	StockProducts(ctx context.Context, ids []string) (map[string]domain.Product, error)
	// AdjustStock adds delta to the product's stock. It fails with
	// ErrInsufficientStock rather than let stock go negative.
	AdjustStock(ctx context.Context, productID string, delta int) error

	GetEmployee(ctx context.Context, id string) (*domain.Employee, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	GetTaxRate(ctx context.Context, id string) (*domain.TaxRate, error)
	GetPaymentMethod(ctx context.Context, id string) (*domain.PaymentMethod, error)
	GetSupplier(ctx context.Context, id string) (*domain.Supplier, error)

	// EnsureInvoiceConfig returns the invoice configuration, creating one
	// with an empty prefix when none exists yet.
	EnsureInvoiceConfig(ctx context.Context) (*domain.InvoiceConfig, error)
	// NextInvoiceSequence atomically bumps and returns the 1-based counter
	// for the given issue date.
	NextInvoiceSequence(ctx context.Context, day time.Time) (int64, error)
	InsertInvoice(ctx context.Context, invoice domain.Invoice) error
	GetInvoiceForUpdate(ctx context.Context, id string) (*domain.Invoice, error)
	SetInvoiceVoided(ctx context.Context, id string, voided bool, at *time.Time, reason string) error

	InsertPurchase(ctx context.Context, purchase domain.Purchase) error
	GetPurchaseForUpdate(ctx context.Context, id string) (*domain.Purchase, error)
	// ReplacePurchase rewrites the header and swaps the full line set.
	ReplacePurchase(ctx context.Context, purchase domain.Purchase) error
}

type Repository interface {
	// RunInTx executes fn inside one unit of work. fn must only touch the
	// store through tx.
	RunInTx(ctx context.Context, fn func(tx Tx) error) error

	ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error)
	ListLowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	// UpdateProduct persists every field except stock.
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListTaxRates(ctx context.Context) ([]domain.TaxRate, error)
	GetTaxRate(ctx context.Context, id string) (*domain.TaxRate, error)
	CreateTaxRate(ctx context.Context, rate domain.TaxRate) (*domain.TaxRate, error)
	UpdateTaxRate(ctx context.Context, rate domain.TaxRate) (*domain.TaxRate, error)

	ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, id string) (*domain.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error)

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)

	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	GetEmployee(ctx context.Context, id string) (*domain.Employee, error)
	CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error)

	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*domain.Supplier, error)
	CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)

	GetInvoiceConfig(ctx context.Context) (*domain.InvoiceConfig, error)
	SaveInvoiceConfig(ctx context.Context, cfg domain.InvoiceConfig) (*domain.InvoiceConfig, error)

	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, error)
	// MaxInvoiceSequence is the highest sequence already used on the given
	// issue date, 0 when none.
	MaxInvoiceSequence(ctx context.Context, day time.Time) (int64, error)
	GetPurchase(ctx context.Context, id string) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, limit int) ([]domain.Purchase, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
