package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/xid"
)

var _ store.Repository = (*Store)(nil)

// maxTxAttempts bounds how often RunInTx replays a unit of work that lost a
// serialization conflict.
const maxTxAttempts = 3

const (
	productColumns = `id, code, name, description, category, purchase_price, sale_price,
		stock, min_stock, active, created_at, updated_at`
	taxRateColumns       = `id, name, percent, active, created_at`
	paymentMethodColumns = `id, name, active, created_at`
	customerColumns      = `id, name, phone, email, active, created_at`
	employeeColumns      = `id, first_name, last_name, phone, email, active, created_at`
	supplierColumns      = `id, name, phone, address, email, active, created_at`
	invoiceConfigColumns = `id, prefix, created_at, updated_at`
	invoiceColumns       = `id, config_id, to_char(issue_date, 'YYYY-MM-DD') AS issue_date, issued_at,
		employee_id, COALESCE(customer_id, '') AS customer_id, tax_rate_id, tax_rate_percent,
		payment_method_id, subtotal, tax_base, tax_amount, tip, total, received, change_due,
		voided, voided_at, void_reason, created_by`
	invoiceLineColumns  = `invoice_id, line_no, product_id, product_name, qty, unit_price, subtotal`
	purchaseColumns     = `id, COALESCE(supplier_id, '') AS supplier_id, notes, total, created_by, created_at, updated_at`
	purchaseLineColumns = `purchase_id, line_no, product_id, product_name, qty, unit_cost, subtotal`
	auditLogColumns     = `id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at`
)

type Store struct {
	db *sqlx.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}
	// Domain types carry json tags only; the column names match them.
	db.Mapper = reflectx.NewMapperFunc("json", strings.ToLower)

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RunInTx runs fn in a serializable transaction and replays it when
// PostgreSQL reports a serialization failure.
func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = s.runOnce(ctx, fn)
		if !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

func (s *Store) runOnce(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	products := make([]domain.Product, 0, 64)
	err := s.db.SelectContext(ctx, &products, `
		SELECT `+productColumns+`
		FROM products
		WHERE active OR $1
		ORDER BY category, name
	`, includeInactive)
	return products, err
}

func (s *Store) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	products := make([]domain.Product, 0, 16)
	err := s.db.SelectContext(ctx, &products, `
		SELECT `+productColumns+`
		FROM products
		WHERE active AND (code ILIKE $1 OR name ILIKE $1 OR category ILIKE $1)
		ORDER BY category, name
		LIMIT NULLIF($2::int, 0)
	`, pattern, limit)
	return products, err
}

func (s *Store) ListLowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error) {
	products := make([]domain.Product, 0, 16)
	err := s.db.SelectContext(ctx, &products, `
		SELECT `+productColumns+`
		FROM products
		WHERE active AND stock <= $1
		ORDER BY stock, name
	`, threshold)
	return products, err
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return getOne[domain.Product](ctx, s.db, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Code == "" || product.Name == "" || product.Stock < 0 {
		return nil, store.ErrInvalidTransaction
	}
	if product.ID == "" {
		product.ID = xid.New("prd")
	}

	created, err := getOne[domain.Product](ctx, s.db, `
		INSERT INTO products (id, code, name, description, category, purchase_price, sale_price,
			stock, min_stock, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
		RETURNING `+productColumns,
		product.ID, product.Code, product.Name, product.Description, product.Category,
		product.PurchasePrice, product.SalePrice, product.Stock, product.MinStock, product.Active)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	updated, err := getOne[domain.Product](ctx, s.db, `
		UPDATE products
		SET name = $2, description = $3, category = $4, purchase_price = $5, sale_price = $6,
			min_stock = $7, active = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		product.ID, product.Name, product.Description, product.Category,
		product.PurchasePrice, product.SalePrice, product.MinStock, product.Active)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err)
	}
	return expectAffected(res)
}

func (s *Store) ListTaxRates(ctx context.Context) ([]domain.TaxRate, error) {
	rates := make([]domain.TaxRate, 0, 8)
	err := s.db.SelectContext(ctx, &rates, `SELECT `+taxRateColumns+` FROM tax_rates ORDER BY percent, name`)
	return rates, err
}

func (s *Store) GetTaxRate(ctx context.Context, id string) (*domain.TaxRate, error) {
	return getOne[domain.TaxRate](ctx, s.db, `SELECT `+taxRateColumns+` FROM tax_rates WHERE id = $1`, id)
}

func (s *Store) CreateTaxRate(ctx context.Context, rate domain.TaxRate) (*domain.TaxRate, error) {
	if rate.ID == "" {
		rate.ID = xid.New("tax")
	}
	created, err := getOne[domain.TaxRate](ctx, s.db, `
		INSERT INTO tax_rates (id, name, percent, active, created_at)
		VALUES ($1,$2,$3,$4,now())
		RETURNING `+taxRateColumns,
		rate.ID, rate.Name, rate.Percent, rate.Active)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (s *Store) UpdateTaxRate(ctx context.Context, rate domain.TaxRate) (*domain.TaxRate, error) {
	updated, err := getOne[domain.TaxRate](ctx, s.db, `
		UPDATE tax_rates SET name = $2, active = $3
		WHERE id = $1
		RETURNING `+taxRateColumns,
		rate.ID, rate.Name, rate.Active)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return updated, nil
}

func (s *Store) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	methods := make([]domain.PaymentMethod, 0, 8)
	err := s.db.SelectContext(ctx, &methods, `SELECT `+paymentMethodColumns+` FROM payment_methods ORDER BY name`)
	return methods, err
}

func (s *Store) GetPaymentMethod(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	return getOne[domain.PaymentMethod](ctx, s.db, `SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id = $1`, id)
}

func (s *Store) CreatePaymentMethod(ctx context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error) {
	if method.ID == "" {
		method.ID = xid.New("pay")
	}
	created, err := getOne[domain.PaymentMethod](ctx, s.db, `
		INSERT INTO payment_methods (id, name, active, created_at)
		VALUES ($1,$2,$3,now())
		RETURNING `+paymentMethodColumns,
		method.ID, method.Name, method.Active)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (s *Store) UpdatePaymentMethod(ctx context.Context, method domain.PaymentMethod) (*domain.PaymentMethod, error) {
	updated, err := getOne[domain.PaymentMethod](ctx, s.db, `
		UPDATE payment_methods SET name = $2, active = $3
		WHERE id = $1
		RETURNING `+paymentMethodColumns,
		method.ID, method.Name, method.Active)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return updated, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers := make([]domain.Customer, 0, 32)
	err := s.db.SelectContext(ctx, &customers, `SELECT `+customerColumns+` FROM customers ORDER BY name`)
	return customers, err
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return getOne[domain.Customer](ctx, s.db, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" {
		customer.ID = xid.New("cus")
	}
	created, err := getOne[domain.Customer](ctx, s.db, `
		INSERT INTO customers (id, name, phone, email, active, created_at)
		VALUES ($1,$2,$3,$4,$5,now())
		RETURNING `+customerColumns,
		customer.ID, customer.Name, customer.Phone, customer.Email, customer.Active)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	updated, err := getOne[domain.Customer](ctx, s.db, `
		UPDATE customers SET name = $2, phone = $3, email = $4, active = $5
		WHERE id = $1
		RETURNING `+customerColumns,
		customer.ID, customer.Name, customer.Phone, customer.Email, customer.Active)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return updated, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	employees := make([]domain.Employee, 0, 16)
	err := s.db.SelectContext(ctx, &employees, `SELECT `+employeeColumns+` FROM employees ORDER BY last_name, first_name`)
	return employees, err
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	return getOne[domain.Employee](ctx, s.db, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
}

func (s *Store) CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error) {
	if employee.ID == "" {
		employee.ID = xid.New("emp")
	}
	created, err := getOne[domain.Employee](ctx, s.db, `
		INSERT INTO employees (id, first_name, last_name, phone, email, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
		RETURNING `+employeeColumns,
		employee.ID, employee.FirstName, employee.LastName, employee.Phone, employee.Email, employee.Active)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error) {
	updated, err := getOne[domain.Employee](ctx, s.db, `
		UPDATE employees SET first_name = $2, last_name = $3, phone = $4, email = $5, active = $6
		WHERE id = $1
		RETURNING `+employeeColumns,
		employee.ID, employee.FirstName, employee.LastName, employee.Phone, employee.Email, employee.Active)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return updated, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers := make([]domain.Supplier, 0, 16)
	err := s.db.SelectContext(ctx, &suppliers, `SELECT `+supplierColumns+` FROM suppliers ORDER BY name`)
	return suppliers, err
}

func (s *Store) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	return getOne[domain.Supplier](ctx, s.db, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
}

func (s *Store) CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	if supplier.ID == "" {
		supplier.ID = xid.New("sup")
	}
	created, err := getOne[domain.Supplier](ctx, s.db, `
		INSERT INTO suppliers (id, name, phone, address, email, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
		RETURNING `+supplierColumns,
		supplier.ID, supplier.Name, supplier.Phone, supplier.Address, supplier.Email, supplier.Active)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (s *Store) UpdateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	updated, err := getOne[domain.Supplier](ctx, s.db, `
		UPDATE suppliers SET name = $2, phone = $3, address = $4, email = $5, active = $6
		WHERE id = $1
		RETURNING `+supplierColumns,
		supplier.ID, supplier.Name, supplier.Phone, supplier.Address, supplier.Email, supplier.Active)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return updated, nil
}

func (s *Store) GetInvoiceConfig(ctx context.Context) (*domain.InvoiceConfig, error) {
	return getOne[domain.InvoiceConfig](ctx, s.db, `SELECT `+invoiceConfigColumns+` FROM invoice_configs WHERE singleton`)
}

func (s *Store) SaveInvoiceConfig(ctx context.Context, cfg domain.InvoiceConfig) (*domain.InvoiceConfig, error) {
	if cfg.ID == "" {
		cfg.ID = xid.New("cfg")
	}
	return getOne[domain.InvoiceConfig](ctx, s.db, `
		INSERT INTO invoice_configs (id, prefix, created_at, updated_at)
		VALUES ($1,$2,now(),now())
		ON CONFLICT (singleton)
		DO UPDATE SET prefix = EXCLUDED.prefix, updated_at = now()
		RETURNING `+invoiceConfigColumns,
		cfg.ID, cfg.Prefix)
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return loadInvoice(ctx, s.db, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

func (s *Store) MaxInvoiceSequence(ctx context.Context, day time.Time) (int64, error) {
	var highest int64
	err := s.db.GetContext(ctx, &highest, `
		SELECT COALESCE(MAX(substring(id FROM 7)::bigint), 0)
		FROM invoices
		WHERE issue_date = $1::date
	`, day.Format(time.DateOnly))
	return highest, err
}

func (s *Store) ListInvoices(ctx context.Context, filter store.InvoiceFilter) ([]domain.Invoice, error) {
	conds := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if filter.IssueDate != "" {
		args = append(args, filter.IssueDate)
		conds = append(conds, fmt.Sprintf("issue_date = $%d::date", len(args)))
	}
	if filter.Voided != nil {
		args = append(args, *filter.Voided)
		conds = append(conds, fmt.Sprintf("voided = $%d", len(args)))
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	invoices := make([]domain.Invoice, 0, 32)
	if err := s.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, err
	}
	if err := attachInvoiceLines(ctx, s.db, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (s *Store) GetPurchase(ctx context.Context, id string) (*domain.Purchase, error) {
	return loadPurchase(ctx, s.db, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id)
}

func (s *Store) ListPurchases(ctx context.Context, limit int) ([]domain.Purchase, error) {
	purchases := make([]domain.Purchase, 0, 32)
	err := s.db.SelectContext(ctx, &purchases, `
		SELECT `+purchaseColumns+`
		FROM purchases
		ORDER BY created_at DESC, id
		LIMIT NULLIF($1::int, 0)
	`, limit)
	if err != nil {
		return nil, err
	}
	for i := range purchases {
		lines, err := selectPurchaseLines(ctx, s.db, purchases[i].ID)
		if err != nil {
			return nil, err
		}
		purchases[i].Lines = lines
	}
	return purchases, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 200
	}
	logs := make([]domain.AuditLog, 0, limit)
	err := s.db.SelectContext(ctx, &logs, `
		SELECT `+auditLogColumns+`
		FROM audit_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`, from, to, limit)
	return logs, err
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password_hash, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	return mapWriteError(err)
}

// ListUsers scans by hand: the password hash is hidden from the json mapper.
func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password_hash, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidTransaction
	}
	res, err := s.db.ExecContext(ctx, `UPDATE app_users SET password_hash = $2 WHERE username = $1`, username, password)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func getOne[T any](ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*T, error) {
	var v T
	if err := sqlx.GetContext(ctx, q, &v, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func loadInvoice(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*domain.Invoice, error) {
	invoice, err := getOne[domain.Invoice](ctx, q, query, args...)
	if err != nil {
		return nil, err
	}
	invoices := []domain.Invoice{*invoice}
	if err := attachInvoiceLines(ctx, q, invoices); err != nil {
		return nil, err
	}
	return &invoices[0], nil
}

func attachInvoiceLines(ctx context.Context, q sqlx.QueryerContext, invoices []domain.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		ids = append(ids, inv.ID)
	}

	lines := make([]domain.InvoiceLine, 0, len(invoices)*4)
	if err := sqlx.SelectContext(ctx, q, &lines, `
		SELECT `+invoiceLineColumns+`
		FROM invoice_lines
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, line_no
	`, ids); err != nil {
		return err
	}

	byInvoice := make(map[string][]domain.InvoiceLine, len(invoices))
	for _, line := range lines {
		byInvoice[line.InvoiceID] = append(byInvoice[line.InvoiceID], line)
	}
	for i := range invoices {
		invoices[i].Lines = byInvoice[invoices[i].ID]
		if invoices[i].Lines == nil {
			invoices[i].Lines = []domain.InvoiceLine{}
		}
	}
	return nil
}

func loadPurchase(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*domain.Purchase, error) {
	purchase, err := getOne[domain.Purchase](ctx, q, query, args...)
	if err != nil {
		return nil, err
	}
	lines, err := selectPurchaseLines(ctx, q, purchase.ID)
	if err != nil {
		return nil, err
	}
	purchase.Lines = lines
	return purchase, nil
}

func selectPurchaseLines(ctx context.Context, q sqlx.QueryerContext, purchaseID string) ([]domain.PurchaseLine, error) {
	lines := make([]domain.PurchaseLine, 0, 8)
	err := sqlx.SelectContext(ctx, q, &lines, `
		SELECT `+purchaseLineColumns+`
		FROM purchase_lines
		WHERE purchase_id = $1
		ORDER BY line_no
	`, purchaseID)
	return lines, err
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return store.ErrDuplicate
	case isForeignKeyViolation(err):
		return store.ErrProductInUse
	}
	return err
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == "23505"
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == "23503"
}

func isSerializationFailure(err error) bool {
	return pgErrorCode(err) == "40001"
}

func escapeLike(val string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(val)
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}
