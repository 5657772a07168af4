package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/xid"
)

var _ store.Tx = (*pgTx)(nil)

type pgTx struct {
	tx *sqlx.Tx
}

// StockProducts locks the rows in id order so concurrent sales touching the
// same products queue instead of deadlocking.
func (t *pgTx) StockProducts(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	products := make([]domain.Product, 0, len(ids))
	if err := t.tx.SelectContext(ctx, &products, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, ids); err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (t *pgTx) AdjustStock(ctx context.Context, productID string, delta int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1 AND stock + $2 >= 0
	`, productID, delta)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := t.tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID); err != nil {
		return err
	}
	if !exists {
		return store.ErrProductNotFound
	}
	return store.ErrInsufficientStock
}

func (t *pgTx) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	return getOne[domain.Employee](ctx, t.tx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
}

func (t *pgTx) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return getOne[domain.Customer](ctx, t.tx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (t *pgTx) GetTaxRate(ctx context.Context, id string) (*domain.TaxRate, error) {
	return getOne[domain.TaxRate](ctx, t.tx, `SELECT `+taxRateColumns+` FROM tax_rates WHERE id = $1`, id)
}

func (t *pgTx) GetPaymentMethod(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	return getOne[domain.PaymentMethod](ctx, t.tx, `SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id = $1`, id)
}

func (t *pgTx) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	return getOne[domain.Supplier](ctx, t.tx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
}

func (t *pgTx) EnsureInvoiceConfig(ctx context.Context) (*domain.InvoiceConfig, error) {
	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO invoice_configs (id, prefix, created_at, updated_at)
		VALUES ($1, '', now(), now())
		ON CONFLICT (singleton) DO NOTHING
	`, xid.New("cfg")); err != nil {
		return nil, err
	}
	return getOne[domain.InvoiceConfig](ctx, t.tx, `SELECT `+invoiceConfigColumns+` FROM invoice_configs WHERE singleton`)
}

func (t *pgTx) NextInvoiceSequence(ctx context.Context, day time.Time) (int64, error) {
	var next int64
	err := t.tx.GetContext(ctx, &next, `
		INSERT INTO invoice_sequences (day, last_value)
		VALUES ($1::date, 1)
		ON CONFLICT (day)
		DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value
	`, day.Format(time.DateOnly))
	return next, err
}

func (t *pgTx) InsertInvoice(ctx context.Context, invoice domain.Invoice) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO invoices (
			id, config_id, issue_date, issued_at, employee_id, customer_id, tax_rate_id,
			tax_rate_percent, payment_method_id, subtotal, tax_base, tax_amount, tip, total,
			received, change_due, voided, voided_at, void_reason, created_by
		)
		VALUES ($1,$2,$3::date,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`,
		invoice.ID, invoice.ConfigID, invoice.IssueDate, invoice.IssuedAt, invoice.EmployeeID,
		nullIfEmpty(invoice.CustomerID), invoice.TaxRateID, invoice.TaxRatePercent, invoice.PaymentMethodID,
		invoice.Subtotal, invoice.TaxBase, invoice.TaxAmount, invoice.Tip, invoice.Total,
		invoice.Received, invoice.ChangeDue, invoice.Voided, nullTime(invoice.VoidedAt), invoice.VoidReason,
		invoice.CreatedBy,
	)
	if err != nil {
		return insertError(err)
	}

	for _, line := range invoice.Lines {
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO invoice_lines (invoice_id, line_no, product_id, product_name, qty, unit_price, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, invoice.ID, line.LineNo, line.ProductID, line.ProductName, line.Qty, line.UnitPrice, line.Subtotal); err != nil {
			return insertError(err)
		}
	}
	return nil
}

func (t *pgTx) GetInvoiceForUpdate(ctx context.Context, id string) (*domain.Invoice, error) {
	return loadInvoice(ctx, t.tx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

func (t *pgTx) SetInvoiceVoided(ctx context.Context, id string, voided bool, at *time.Time, reason string) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE invoices
		SET voided = $2, voided_at = $3, void_reason = $4
		WHERE id = $1
	`, id, voided, nullTime(at), reason)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (t *pgTx) InsertPurchase(ctx context.Context, purchase domain.Purchase) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO purchases (id, supplier_id, notes, total, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, purchase.ID, nullIfEmpty(purchase.SupplierID), purchase.Notes, purchase.Total,
		purchase.CreatedBy, purchase.CreatedAt, purchase.UpdatedAt)
	if err != nil {
		return insertError(err)
	}
	return t.insertPurchaseLines(ctx, purchase)
}

func (t *pgTx) GetPurchaseForUpdate(ctx context.Context, id string) (*domain.Purchase, error) {
	return loadPurchase(ctx, t.tx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 FOR UPDATE`, id)
}

func (t *pgTx) ReplacePurchase(ctx context.Context, purchase domain.Purchase) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE purchases
		SET supplier_id = $2, notes = $3, total = $4, updated_at = $5
		WHERE id = $1
	`, purchase.ID, nullIfEmpty(purchase.SupplierID), purchase.Notes, purchase.Total, purchase.UpdatedAt)
	if err != nil {
		return insertError(err)
	}
	if err := expectAffected(res); err != nil {
		return err
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM purchase_lines WHERE purchase_id = $1`, purchase.ID); err != nil {
		return err
	}
	return t.insertPurchaseLines(ctx, purchase)
}

func (t *pgTx) insertPurchaseLines(ctx context.Context, purchase domain.Purchase) error {
	for _, line := range purchase.Lines {
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO purchase_lines (purchase_id, line_no, product_id, product_name, qty, unit_cost, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, purchase.ID, line.LineNo, line.ProductID, line.ProductName, line.Qty, line.UnitCost, line.Subtotal); err != nil {
			return insertError(err)
		}
	}
	return nil
}

// insertError maps constraint failures on invoice and purchase writes. A
// foreign key miss here means a referenced row vanished mid-flight.
func insertError(err error) error {
	switch {
	case isUniqueViolation(err):
		return store.ErrDuplicate
	case isForeignKeyViolation(err):
		return store.ErrReferenceNotFound
	}
	return err
}
