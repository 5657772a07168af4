package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/ledger"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/numbering"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/pricing"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/validation"
)

// CreateSale verifies stock, prices the cart, numbers the invoice and moves
// stock in one unit of work. A returned error means nothing was written.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Invoice, error) {
	violations := validation.Violations{}
	if len(req.Items) == 0 {
		violations["items"] = "required"
	}
	validation.NonNegative("tip", req.Tip, violations)
	validation.NonNegative("received", req.Received, violations)
	if err := violations.Err(); err != nil {
		return domain.Invoice{}, err
	}

	items := toLedgerItems(req.Items)
	issued := s.localNow()
	createdBy := actorName(ctx)

	var invoice domain.Invoice
	err := s.repo.RunInTx(ctx, func(tx store.Tx) error {
		if _, err := activeRef("employee", req.EmployeeID, func() (*domain.Employee, error) {
			return tx.GetEmployee(ctx, req.EmployeeID)
		}, func(e *domain.Employee) bool { return e.Active }); err != nil {
			return err
		}
		rate, err := activeRef("tax rate", req.TaxRateID, func() (*domain.TaxRate, error) {
			return tx.GetTaxRate(ctx, req.TaxRateID)
		}, func(r *domain.TaxRate) bool { return r.Active })
		if err != nil {
			return err
		}
		if _, err := activeRef("payment method", req.PaymentMethodID, func() (*domain.PaymentMethod, error) {
			return tx.GetPaymentMethod(ctx, req.PaymentMethodID)
		}, func(m *domain.PaymentMethod) bool { return m.Active }); err != nil {
			return err
		}
		if req.CustomerID != "" {
			if _, err := resolve("customer", req.CustomerID, func() (*domain.Customer, error) {
				return tx.GetCustomer(ctx, req.CustomerID)
			}); err != nil {
				return err
			}
		}

		report, err := ledger.CheckBatch(ctx, tx, items)
		if err != nil {
			return err
		}
		if err := report.Err(); err != nil {
			return err
		}

		merged := ledger.Merge(items)
		products, err := tx.StockProducts(ctx, productIDs(merged))
		if err != nil {
			return err
		}

		priced := make([]pricing.Line, 0, len(merged))
		lines := make([]domain.InvoiceLine, 0, len(merged))
		for i, item := range merged {
			product := products[item.ProductID]
			line := pricing.Line{UnitPrice: product.SalePrice, Qty: item.Qty}
			priced = append(priced, line)
			lines = append(lines, domain.InvoiceLine{
				LineNo:      i + 1,
				ProductID:   product.ID,
				ProductName: product.Name,
				Qty:         item.Qty,
				UnitPrice:   product.SalePrice,
				Subtotal:    pricing.Round(line.Subtotal()),
			})
		}

		totals, err := pricing.Compute(priced, rate.Percent, req.Tip)
		if err != nil {
			return err
		}
		if !sumSubtotals(lines).Equal(totals.Subtotal) {
			return fmt.Errorf("%w: line subtotals do not add up to %s", store.ErrInvalidTransaction, totals.Subtotal)
		}
		change, err := pricing.Change(totals.Total, req.Received)
		if err != nil {
			return err
		}

		cfg, err := tx.EnsureInvoiceConfig(ctx)
		if err != nil {
			return err
		}
		seq, err := s.nextSequence(ctx, tx, issued)
		if err != nil {
			return err
		}

		id := numbering.Format(issued, seq)
		for i := range lines {
			lines[i].InvoiceID = id
		}
		invoice = domain.Invoice{
			ID:              id,
			ConfigID:        cfg.ID,
			IssueDate:       issued.Format(time.DateOnly),
			IssuedAt:        issued.UTC(),
			EmployeeID:      req.EmployeeID,
			CustomerID:      req.CustomerID,
			TaxRateID:       rate.ID,
			TaxRatePercent:  rate.Percent,
			PaymentMethodID: req.PaymentMethodID,
			Subtotal:        totals.Subtotal,
			TaxBase:         totals.TaxBase,
			TaxAmount:       totals.TaxAmount,
			Tip:             totals.Tip,
			Total:           totals.Total,
			Received:        pricing.Round(req.Received),
			ChangeDue:       pricing.Round(change),
			CreatedBy:       createdBy,
			Lines:           lines,
		}
		if err := tx.InsertInvoice(ctx, invoice); err != nil {
			return fmt.Errorf("insert invoice %s: %w", id, err)
		}
		return ledger.DecrementBatch(ctx, tx, merged)
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.invalidateProducts(ctx)
	s.logAudit(ctx, "sale_create", "invoice", invoice.ID, fmt.Sprintf("lines=%d,total=%s,payment=%s", len(invoice.Lines), invoice.Total.StringFixed(2), invoice.PaymentMethodID))
	s.logger.Printf("[service] sale %s committed total=%s by=%s", invoice.ID, invoice.Total.StringFixed(2), createdBy)
	return invoice, nil
}

// VoidSale restores every line's stock and flags the invoice. Totals stay as
// they were for the audit trail.
func (s *Service) VoidSale(ctx context.Context, invoiceID string, reason string) (domain.Invoice, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return domain.Invoice{}, store.ErrInvalidTransaction
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unspecified"
	}

	voidedAt := s.now().UTC()
	var invoice domain.Invoice
	err := s.repo.RunInTx(ctx, func(tx store.Tx) error {
		current, err := tx.GetInvoiceForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if current.Voided {
			return fmt.Errorf("%w: %s", store.ErrAlreadyVoided, invoiceID)
		}

		if err := ledger.IncrementBatch(ctx, tx, invoiceItems(*current)); err != nil {
			return err
		}
		if err := tx.SetInvoiceVoided(ctx, invoiceID, true, &voidedAt, reason); err != nil {
			return err
		}

		current.Voided = true
		current.VoidedAt = &voidedAt
		current.VoidReason = reason
		invoice = *current
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.invalidateProducts(ctx)
	s.logAudit(ctx, "sale_void", "invoice", invoice.ID, reason)
	return invoice, nil
}

// ReactivateSale puts a voided invoice back in force. Stock is verified and
// taken again, so it fails when the goods were sold in the meantime.
func (s *Service) ReactivateSale(ctx context.Context, invoiceID string) (domain.Invoice, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.Invoice{}, err
	}
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return domain.Invoice{}, store.ErrInvalidTransaction
	}

	var invoice domain.Invoice
	err := s.repo.RunInTx(ctx, func(tx store.Tx) error {
		current, err := tx.GetInvoiceForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !current.Voided {
			return fmt.Errorf("%w: %s", store.ErrNotVoided, invoiceID)
		}

		if err := ledger.DecrementBatch(ctx, tx, invoiceItems(*current)); err != nil {
			return err
		}
		if err := tx.SetInvoiceVoided(ctx, invoiceID, false, nil, ""); err != nil {
			return err
		}

		current.Voided = false
		current.VoidedAt = nil
		current.VoidReason = ""
		invoice = *current
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.invalidateProducts(ctx)
	s.logAudit(ctx, "sale_reactivate", "invoice", invoice.ID, "")
	return invoice, nil
}

func (s *Service) GetInvoice(ctx context.Context, invoiceID string) (domain.Invoice, error) {
	invoice, err := s.repo.GetInvoice(ctx, strings.TrimSpace(invoiceID))
	if err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

// ListInvoices lists one issue date, today when date is empty.
func (s *Service) ListInvoices(ctx context.Context, date string, voided *bool, limit int) (domain.InvoiceListResponse, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = s.localNow().Format(time.DateOnly)
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return domain.InvoiceListResponse{}, store.ErrInvalidTransaction
	}
	if limit < 1 || limit > 500 {
		limit = 200
	}

	invoices, err := s.repo.ListInvoices(ctx, store.InvoiceFilter{IssueDate: date, Voided: voided, Limit: limit})
	if err != nil {
		return domain.InvoiceListResponse{}, err
	}
	return domain.InvoiceListResponse{Date: date, Invoices: invoices}, nil
}

func (s *Service) nextSequence(ctx context.Context, tx store.Tx, day time.Time) (int64, error) {
	if s.sequencer != nil {
		return s.sequencer.Next(ctx, day)
	}
	return tx.NextInvoiceSequence(ctx, day)
}

// activeRef resolves a required reference and rejects deactivated rows.
func activeRef[T any](kind string, id string, get func() (*T, error), active func(*T) bool) (*T, error) {
	v, err := resolve(kind, id, get)
	if err != nil {
		return nil, err
	}
	if !active(v) {
		return nil, &store.ReferenceError{Kind: kind, ID: id}
	}
	return v, nil
}

func toLedgerItems(items []domain.LineItem) []ledger.Item {
	out := make([]ledger.Item, 0, len(items))
	for _, item := range items {
		out = append(out, ledger.Item{ProductID: strings.TrimSpace(item.ProductID), Qty: item.Qty})
	}
	return out
}

func invoiceItems(invoice domain.Invoice) []ledger.Item {
	out := make([]ledger.Item, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		out = append(out, ledger.Item{ProductID: line.ProductID, Qty: line.Qty})
	}
	return out
}

func productIDs(items []ledger.Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func sumSubtotals(lines []domain.InvoiceLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal)
	}
	return total
}
