package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/cache"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/pricing"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/validation"
)

var maxTaxPercent = decimal.NewFromInt(100)

// ListProducts serves the active catalog from cache when it can.
func (s *Service) ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	if includeInactive {
		return s.repo.ListProducts(ctx, true)
	}

	if products, ok, err := s.cache.Get(ctx, cache.ActiveProductsKey); err != nil {
		s.logger.Printf("[service] WARN: product cache read failed: %v", err)
	} else if ok {
		return products, nil
	}

	products, err := s.repo.ListProducts(ctx, false)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cache.ActiveProductsKey, products, s.cacheTTL); err != nil {
		s.logger.Printf("[service] WARN: product cache write failed: %v", err)
	}
	return products, nil
}

func (s *Service) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.SearchProducts(ctx, query, limit)
}

// LowStockProducts lists active products at or below threshold units. A zero
// threshold uses the configured default.
func (s *Service) LowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error) {
	if threshold < 0 {
		return nil, store.ErrInvalidTransaction
	}
	if threshold == 0 {
		threshold = s.lowStockLimit
	}
	return s.repo.ListLowStockProducts(ctx, threshold)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		Category:      strings.TrimSpace(req.Category),
		PurchasePrice: pricing.Round(req.PurchasePrice),
		SalePrice:     pricing.Round(req.SalePrice),
		Stock:         req.InitialStock,
		MinStock:      req.MinStock,
		Active:        true,
	}
	if err := validateProduct(product); err != nil {
		return domain.Product{}, err
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateProducts(ctx)
	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("code=%s,price=%s,stock=%d", created.Code, created.SalePrice.StringFixed(2), created.Stock))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.repo.GetProduct(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		updated.Category = strings.TrimSpace(*req.Category)
	}
	if req.PurchasePrice != nil {
		updated.PurchasePrice = pricing.Round(*req.PurchasePrice)
	}
	if req.SalePrice != nil {
		updated.SalePrice = pricing.Round(*req.SalePrice)
	}
	if req.MinStock != nil {
		updated.MinStock = *req.MinStock
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}
	if err := validateProduct(updated); err != nil {
		return domain.Product{}, err
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.invalidateProducts(ctx)
	s.logAudit(ctx, "product_update", "product", saved.ID, fmt.Sprintf("active=%t,price=%s", saved.Active, saved.SalePrice.StringFixed(2)))
	return *saved, nil
}

// DeleteProduct refuses products that appear on any invoice or purchase;
// deactivate those instead.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.invalidateProducts(ctx)
	s.logAudit(ctx, "product_delete", "product", id, "")
	return nil
}

func validateProduct(p domain.Product) error {
	v := validation.Violations{}
	validation.Required("code", p.Code, v)
	validation.MaxLen("code", p.Code, 32, v)
	validation.Required("name", p.Name, v)
	validation.MaxLen("name", p.Name, 120, v)
	validation.MaxLen("category", p.Category, 60, v)
	validation.NonNegative("purchase_price", p.PurchasePrice, v)
	validation.Positive("sale_price", p.SalePrice, v)
	validation.NonNegativeInt("initial_stock", p.Stock, v)
	validation.NonNegativeInt("min_stock", p.MinStock, v)
	return v.Err()
}

func (s *Service) ListTaxRates(ctx context.Context) ([]domain.TaxRate, error) {
	return s.repo.ListTaxRates(ctx)
}

func (s *Service) CreateTaxRate(ctx context.Context, req domain.TaxRateCreateRequest) (domain.TaxRate, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.TaxRate{}, err
	}

	rate := domain.TaxRate{Name: strings.TrimSpace(req.Name), Percent: req.Percent, Active: true}
	v := validation.Violations{}
	validation.Required("name", rate.Name, v)
	validation.Range("percent", rate.Percent, decimal.Zero, maxTaxPercent, v)
	if !rate.Percent.Equal(rate.Percent.Round(3)) {
		v["percent"] = "max_3_decimals"
	}
	if err := v.Err(); err != nil {
		return domain.TaxRate{}, err
	}

	created, err := s.repo.CreateTaxRate(ctx, rate)
	if err != nil {
		return domain.TaxRate{}, err
	}
	s.logAudit(ctx, "tax_rate_create", "tax_rate", created.ID, fmt.Sprintf("percent=%s", created.Percent.StringFixed(3)))
	return *created, nil
}

// UpdateTaxRate can rename or deactivate a rate; the percentage is fixed once
// created because invoices point at it.
func (s *Service) UpdateTaxRate(ctx context.Context, id string, req domain.TaxRateUpdateRequest) (domain.TaxRate, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.TaxRate{}, err
	}
	existing, err := s.repo.GetTaxRate(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.TaxRate{}, err
	}

	updated := *existing
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}
	v := validation.Violations{}
	validation.Required("name", updated.Name, v)
	if err := v.Err(); err != nil {
		return domain.TaxRate{}, err
	}

	saved, err := s.repo.UpdateTaxRate(ctx, updated)
	if err != nil {
		return domain.TaxRate{}, err
	}
	s.logAudit(ctx, "tax_rate_update", "tax_rate", saved.ID, fmt.Sprintf("name=%s,active=%t", saved.Name, saved.Active))
	return *saved, nil
}

func (s *Service) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx)
}

func (s *Service) CreatePaymentMethod(ctx context.Context, req domain.PaymentMethodCreateRequest) (domain.PaymentMethod, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.PaymentMethod{}, err
	}
	method := domain.PaymentMethod{Name: strings.TrimSpace(req.Name), Active: true}
	v := validation.Violations{}
	validation.Required("name", method.Name, v)
	validation.MaxLen("name", method.Name, 60, v)
	if err := v.Err(); err != nil {
		return domain.PaymentMethod{}, err
	}

	created, err := s.repo.CreatePaymentMethod(ctx, method)
	if err != nil {
		return domain.PaymentMethod{}, err
	}
	s.logAudit(ctx, "payment_method_create", "payment_method", created.ID, created.Name)
	return *created, nil
}

func (s *Service) UpdatePaymentMethod(ctx context.Context, id string, req domain.PaymentMethodUpdateRequest) (domain.PaymentMethod, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.PaymentMethod{}, err
	}
	existing, err := s.repo.GetPaymentMethod(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.PaymentMethod{}, err
	}

	updated := *existing
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}
	v := validation.Violations{}
	validation.Required("name", updated.Name, v)
	validation.MaxLen("name", updated.Name, 60, v)
	if err := v.Err(); err != nil {
		return domain.PaymentMethod{}, err
	}

	saved, err := s.repo.UpdatePaymentMethod(ctx, updated)
	if err != nil {
		return domain.PaymentMethod{}, err
	}
	s.logAudit(ctx, "payment_method_update", "payment_method", saved.ID, fmt.Sprintf("name=%s,active=%t", saved.Name, saved.Active))
	return *saved, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// CreateCustomer is open to cashiers so a buyer can be registered at the till.
func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	customer := domain.Customer{
		Name:   strings.TrimSpace(req.Name),
		Phone:  strings.TrimSpace(req.Phone),
		Email:  strings.TrimSpace(req.Email),
		Active: true,
	}
	if err := validateContact(customer.Name, customer.Phone, customer.Email); err != nil {
		return domain.Customer{}, err
	}

	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}
	s.logAudit(ctx, "customer_create", "customer", created.ID, created.Name)
	return *created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	existing, err := s.repo.GetCustomer(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Customer{}, err
	}

	updated := *existing
	applyString(&updated.Name, req.Name)
	applyString(&updated.Phone, req.Phone)
	applyString(&updated.Email, req.Email)
	if req.Active != nil {
		updated.Active = *req.Active
	}
	if err := validateContact(updated.Name, updated.Phone, updated.Email); err != nil {
		return domain.Customer{}, err
	}

	saved, err := s.repo.UpdateCustomer(ctx, updated)
	if err != nil {
		return domain.Customer{}, err
	}
	s.logAudit(ctx, "customer_update", "customer", saved.ID, fmt.Sprintf("active=%t", saved.Active))
	return *saved, nil
}

func (s *Service) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.ListEmployees(ctx)
}

func (s *Service) CreateEmployee(ctx context.Context, req domain.EmployeeCreateRequest) (domain.Employee, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.Employee{}, err
	}
	employee := domain.Employee{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		Active:    true,
	}
	if err := validateEmployee(employee); err != nil {
		return domain.Employee{}, err
	}

	created, err := s.repo.CreateEmployee(ctx, employee)
	if err != nil {
		return domain.Employee{}, err
	}
	s.logAudit(ctx, "employee_create", "employee", created.ID, created.FullName())
	return *created, nil
}

func (s *Service) UpdateEmployee(ctx context.Context, id string, req domain.EmployeeUpdateRequest) (domain.Employee, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.Employee{}, err
	}
	existing, err := s.repo.GetEmployee(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Employee{}, err
	}

	updated := *existing
	applyString(&updated.FirstName, req.FirstName)
	applyString(&updated.LastName, req.LastName)
	applyString(&updated.Phone, req.Phone)
	applyString(&updated.Email, req.Email)
	if req.Active != nil {
		updated.Active = *req.Active
	}
	if err := validateEmployee(updated); err != nil {
		return domain.Employee{}, err
	}

	saved, err := s.repo.UpdateEmployee(ctx, updated)
	if err != nil {
		return domain.Employee{}, err
	}
	s.logAudit(ctx, "employee_update", "employee", saved.ID, fmt.Sprintf("active=%t", saved.Active))
	return *saved, nil
}

func validateEmployee(e domain.Employee) error {
	v := validation.Violations{}
	validation.Required("first_name", e.FirstName, v)
	validation.MaxLen("first_name", e.FirstName, 60, v)
	validation.MaxLen("last_name", e.LastName, 60, v)
	validation.Phone("phone", e.Phone, v)
	validation.Email("email", e.Email, v)
	return v.Err()
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierCreateRequest) (domain.Supplier, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.Supplier{}, err
	}
	supplier := domain.Supplier{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Email:   strings.TrimSpace(req.Email),
		Active:  true,
	}
	if err := validateContact(supplier.Name, supplier.Phone, supplier.Email); err != nil {
		return domain.Supplier{}, err
	}

	created, err := s.repo.CreateSupplier(ctx, supplier)
	if err != nil {
		return domain.Supplier{}, err
	}
	s.logAudit(ctx, "supplier_create", "supplier", created.ID, created.Name)
	return *created, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, id string, req domain.SupplierUpdateRequest) (domain.Supplier, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.Supplier{}, err
	}
	existing, err := s.repo.GetSupplier(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Supplier{}, err
	}

	updated := *existing
	applyString(&updated.Name, req.Name)
	applyString(&updated.Phone, req.Phone)
	applyString(&updated.Address, req.Address)
	applyString(&updated.Email, req.Email)
	if req.Active != nil {
		updated.Active = *req.Active
	}
	if err := validateContact(updated.Name, updated.Phone, updated.Email); err != nil {
		return domain.Supplier{}, err
	}

	saved, err := s.repo.UpdateSupplier(ctx, updated)
	if err != nil {
		return domain.Supplier{}, err
	}
	s.logAudit(ctx, "supplier_update", "supplier", saved.ID, fmt.Sprintf("active=%t", saved.Active))
	return *saved, nil
}

// GetInvoiceConfig creates the configuration with an empty prefix on first use.
func (s *Service) GetInvoiceConfig(ctx context.Context) (domain.InvoiceConfig, error) {
	cfg, err := s.repo.GetInvoiceConfig(ctx)
	if err == nil {
		return *cfg, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.InvoiceConfig{}, err
	}

	err = s.repo.RunInTx(ctx, func(tx store.Tx) error {
		cfg, err = tx.EnsureInvoiceConfig(ctx)
		return err
	})
	if err != nil {
		return domain.InvoiceConfig{}, err
	}
	return *cfg, nil
}

func (s *Service) UpdateInvoiceConfig(ctx context.Context, req domain.InvoiceConfigUpdateRequest) (domain.InvoiceConfig, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.InvoiceConfig{}, err
	}
	prefix := strings.TrimSpace(req.Prefix)
	v := validation.Violations{}
	validation.MaxLen("prefix", prefix, 16, v)
	if err := v.Err(); err != nil {
		return domain.InvoiceConfig{}, err
	}

	saved, err := s.repo.SaveInvoiceConfig(ctx, domain.InvoiceConfig{Prefix: prefix})
	if err != nil {
		return domain.InvoiceConfig{}, err
	}
	s.logAudit(ctx, "invoice_config_update", "invoice_config", saved.ID, "prefix="+saved.Prefix)
	return *saved, nil
}

func validateContact(name, phone, email string) error {
	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.MaxLen("name", name, 120, v)
	validation.Phone("phone", phone, v)
	validation.Email("email", email, v)
	return v.Err()
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
