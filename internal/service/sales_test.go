package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
)

func TestCreateSaleDecrementsStockAndPricesInvoice(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := cashierCtx()

	req := saleRequest(
		domain.LineItem{ProductID: "prd-aguila", Qty: 2},
		domain.LineItem{ProductID: "prd-mani", Qty: 1},
	)
	req.Received = dec("20000")

	invoice, err := svc.CreateSale(ctx, req)
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if got := stockOf(t, repo, "prd-aguila"); got != 118 {
		t.Fatalf("expected aguila stock 118, got %d", got)
	}
	if got := stockOf(t, repo, "prd-mani"); got != 29 {
		t.Fatalf("expected mani stock 29, got %d", got)
	}

	if invoice.ID != "2503090001" {
		t.Fatalf("expected invoice id 2503090001, got %s", invoice.ID)
	}
	if invoice.IssueDate != "2025-03-09" {
		t.Fatalf("expected issue date 2025-03-09, got %s", invoice.IssueDate)
	}
	if !invoice.Subtotal.Equal(dec("9500")) || !invoice.TaxAmount.Equal(dec("1805")) || !invoice.Total.Equal(dec("11305")) {
		t.Fatalf("unexpected totals subtotal=%s tax=%s total=%s", invoice.Subtotal, invoice.TaxAmount, invoice.Total)
	}
	if !invoice.ChangeDue.Equal(dec("8695")) {
		t.Fatalf("expected change 8695, got %s", invoice.ChangeDue)
	}
	if !invoice.TaxBase.Equal(invoice.Subtotal) {
		t.Fatalf("expected tax base to equal subtotal")
	}
	if !sumSubtotals(invoice.Lines).Equal(invoice.Subtotal) {
		t.Fatalf("line subtotals %s do not match invoice subtotal %s", sumSubtotals(invoice.Lines), invoice.Subtotal)
	}
	if invoice.CreatedBy != "cashier" || invoice.Voided {
		t.Fatalf("unexpected invoice state: %+v", invoice)
	}

	stored, err := svc.GetInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if len(stored.Lines) != 2 || !stored.Lines[0].UnitPrice.Equal(dec("3500")) {
		t.Fatalf("unexpected stored lines: %+v", stored.Lines)
	}
}

func TestCreateSaleTaxExamples(t *testing.T) {
	svc, _ := newTestService(t)

	product, err := svc.CreateProduct(adminCtx(), domain.ProductCreateRequest{
		Code:         "TEST-100",
		Name:         "Botella de prueba",
		SalePrice:    dec("100.00"),
		InitialStock: 10,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	taxed, err := svc.CreateSale(cashierCtx(), saleRequest(domain.LineItem{ProductID: product.ID, Qty: 1}))
	if err != nil {
		t.Fatalf("sale with iva: %v", err)
	}
	if !taxed.TaxAmount.Equal(dec("19.00")) || !taxed.Total.Equal(dec("119.00")) {
		t.Fatalf("expected tax 19.00 and total 119.00, got %s and %s", taxed.TaxAmount, taxed.Total)
	}

	req := saleRequest(domain.LineItem{ProductID: product.ID, Qty: 1})
	req.TaxRateID = "tax-exento"
	exempt, err := svc.CreateSale(cashierCtx(), req)
	if err != nil {
		t.Fatalf("exempt sale: %v", err)
	}
	if !exempt.TaxAmount.IsZero() || !exempt.Total.Equal(dec("100")) {
		t.Fatalf("expected zero tax and total 100, got %s and %s", exempt.TaxAmount, exempt.Total)
	}
}

func TestCreateSaleNumbersPerDay(t *testing.T) {
	repo := newSeededRepo()
	now := fixedTime
	svc := New(repo, Options{Location: bogota, Now: func() time.Time { return now }})
	ctx := cashierCtx()

	want := []string{"2503090001", "2503090002"}
	for _, id := range want {
		invoice, err := svc.CreateSale(ctx, saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 1}))
		if err != nil {
			t.Fatalf("create sale: %v", err)
		}
		if invoice.ID != id {
			t.Fatalf("expected %s, got %s", id, invoice.ID)
		}
	}

	now = fixedTime.Add(24 * time.Hour)
	invoice, err := svc.CreateSale(ctx, saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 1}))
	if err != nil {
		t.Fatalf("create sale next day: %v", err)
	}
	if invoice.ID != "2503100001" {
		t.Fatalf("expected numbering to restart the next day, got %s", invoice.ID)
	}
}

func TestCreateSaleUsesBusinessTimeZoneForIssueDate(t *testing.T) {
	repo := newSeededRepo()
	// 02:00 UTC on the 10th is still the 9th in Bogota.
	svc := New(repo, Options{Location: bogota, Now: func() time.Time {
		return time.Date(2025, time.March, 10, 2, 0, 0, 0, time.UTC)
	}})

	invoice, err := svc.CreateSale(cashierCtx(), saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 1}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if invoice.ID != "2503090001" || invoice.IssueDate != "2025-03-09" {
		t.Fatalf("expected local date 2025-03-09, got id=%s date=%s", invoice.ID, invoice.IssueDate)
	}
}

func TestCreateSaleUsesInjectedSequencer(t *testing.T) {
	repo := newSeededRepo()
	svc := New(repo, Options{
		Location:  bogota,
		Now:       func() time.Time { return fixedTime },
		Sequencer: fixedSequencer(42),
	})

	invoice, err := svc.CreateSale(cashierCtx(), saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 1}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if invoice.ID != "2503090042" {
		t.Fatalf("expected sequencer number, got %s", invoice.ID)
	}
}

func TestCreateSaleInsufficientStockMutatesNothing(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := cashierCtx()

	_, err := svc.CreateSale(ctx, saleRequest(
		domain.LineItem{ProductID: "prd-aguila", Qty: 1},
		domain.LineItem{ProductID: "prd-ron", Qty: 6},
		domain.LineItem{ProductID: "prd-ghost", Qty: 1},
	))
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var stockErr *store.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected *store.StockError, got %T", err)
	}
	if len(stockErr.Shortages) != 2 {
		t.Fatalf("expected both failing lines reported, got %+v", stockErr.Shortages)
	}
	ron := stockErr.Shortages[0]
	if ron.ProductID != "prd-ron" || ron.Available != 5 || ron.Requested != 6 {
		t.Fatalf("unexpected shortage: %+v", ron)
	}
	if !stockErr.Shortages[1].Missing {
		t.Fatalf("expected unknown product to be reported missing")
	}

	if got := stockOf(t, repo, "prd-aguila"); got != 120 {
		t.Fatalf("expected aguila untouched at 120, got %d", got)
	}
	if got := stockOf(t, repo, "prd-ron"); got != 5 {
		t.Fatalf("expected ron untouched at 5, got %d", got)
	}

	list, err := svc.ListInvoices(ctx, "", nil, 0)
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	if len(list.Invoices) != 0 {
		t.Fatalf("expected no invoice, got %d", len(list.Invoices))
	}

	invoice, err := svc.CreateSale(ctx, saleRequest(domain.LineItem{ProductID: "prd-ron", Qty: 5}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if invoice.ID != "2503090001" {
		t.Fatalf("expected failed sale not to consume a number, got %s", invoice.ID)
	}
}

func TestCreateSaleMergesDuplicateLines(t *testing.T) {
	svc, repo := newTestService(t)

	invoice, err := svc.CreateSale(cashierCtx(), saleRequest(
		domain.LineItem{ProductID: "prd-ron", Qty: 3},
		domain.LineItem{ProductID: "prd-ron", Qty: 2},
	))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if len(invoice.Lines) != 1 || invoice.Lines[0].Qty != 5 {
		t.Fatalf("expected one merged line of 5, got %+v", invoice.Lines)
	}
	if got := stockOf(t, repo, "prd-ron"); got != 0 {
		t.Fatalf("expected ron stock 0, got %d", got)
	}

	_, err = svc.CreateSale(cashierCtx(), saleRequest(
		domain.LineItem{ProductID: "prd-guaro", Qty: 7},
		domain.LineItem{ProductID: "prd-guaro", Qty: 6},
	))
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected merged quantity 13 to exceed stock 12, got %v", err)
	}
}

func TestCreateSaleInsufficientPayment(t *testing.T) {
	svc, repo := newTestService(t)

	product, err := svc.CreateProduct(adminCtx(), domain.ProductCreateRequest{
		Code:         "TEST-50",
		Name:         "Combo",
		SalePrice:    dec("50.00"),
		InitialStock: 3,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	req := saleRequest(domain.LineItem{ProductID: product.ID, Qty: 1})
	req.TaxRateID = "tax-exento"
	req.Received = dec("49.99")
	_, err = svc.CreateSale(cashierCtx(), req)
	if !errors.Is(err, store.ErrInsufficientPayment) {
		t.Fatalf("expected insufficient payment, got %v", err)
	}
	if got := stockOf(t, repo, product.ID); got != 3 {
		t.Fatalf("expected stock 3 after rejected sale, got %d", got)
	}

	req.Received = dec("50.00")
	invoice, err := svc.CreateSale(cashierCtx(), req)
	if err != nil {
		t.Fatalf("exact payment: %v", err)
	}
	if !invoice.ChangeDue.IsZero() {
		t.Fatalf("expected no change, got %s", invoice.ChangeDue)
	}
}

func TestCreateSaleReferenceNotFound(t *testing.T) {
	svc, repo := newTestService(t)

	cases := map[string]func(*domain.SaleCreateRequest){
		"missing employee":       func(r *domain.SaleCreateRequest) { r.EmployeeID = "" },
		"unknown employee":       func(r *domain.SaleCreateRequest) { r.EmployeeID = "emp-404" },
		"unknown tax rate":       func(r *domain.SaleCreateRequest) { r.TaxRateID = "tax-404" },
		"unknown payment method": func(r *domain.SaleCreateRequest) { r.PaymentMethodID = "pay-404" },
		"unknown customer":       func(r *domain.SaleCreateRequest) { r.CustomerID = "cus-404" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 1})
			mutate(&req)
			_, err := svc.CreateSale(cashierCtx(), req)
			if !errors.Is(err, store.ErrReferenceNotFound) {
				t.Fatalf("expected reference not found, got %v", err)
			}
		})
	}

	if got := stockOf(t, repo, "prd-agua"); got != 60 {
		t.Fatalf("expected agua untouched at 60, got %d", got)
	}

	req := saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 1})
	req.CustomerID = "cus-001"
	if _, err := svc.CreateSale(cashierCtx(), req); err != nil {
		t.Fatalf("sale with known customer: %v", err)
	}
}

func TestCreateSaleRejectsInactiveReferences(t *testing.T) {
	svc, _ := newTestService(t)

	inactive := false
	if _, err := svc.UpdatePaymentMethod(adminCtx(), "pay-nequi", domain.PaymentMethodUpdateRequest{Active: &inactive}); err != nil {
		t.Fatalf("deactivate payment method: %v", err)
	}

	req := saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 1})
	req.PaymentMethodID = "pay-nequi"
	if _, err := svc.CreateSale(cashierCtx(), req); !errors.Is(err, store.ErrReferenceNotFound) {
		t.Fatalf("expected inactive payment method to be rejected, got %v", err)
	}
}

func TestCreateSaleValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.CreateSale(cashierCtx(), saleRequest()); !errors.Is(err, store.ErrInvalidTransaction) {
		t.Fatalf("expected empty cart to be invalid, got %v", err)
	}

	req := saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 1})
	req.Tip = dec("-1")
	if _, err := svc.CreateSale(cashierCtx(), req); !errors.Is(err, store.ErrInvalidTransaction) {
		t.Fatalf("expected negative tip to be invalid, got %v", err)
	}

	req = saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 0})
	if _, err := svc.CreateSale(cashierCtx(), req); !errors.Is(err, store.ErrInvalidLine) {
		t.Fatalf("expected zero quantity to be an invalid line, got %v", err)
	}
}

func TestCreateSaleAddsTipToTotal(t *testing.T) {
	svc, _ := newTestService(t)

	req := saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 1})
	req.TaxRateID = "tax-exento"
	req.Tip = dec("500")
	invoice, err := svc.CreateSale(cashierCtx(), req)
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if !invoice.Total.Equal(dec("2500")) || !invoice.Tip.Equal(dec("500")) {
		t.Fatalf("expected total 2500 with tip 500, got %s and %s", invoice.Total, invoice.Tip)
	}
}

func TestVoidSaleRestoresStockOnce(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := cashierCtx()

	invoice, err := svc.CreateSale(ctx, saleRequest(
		domain.LineItem{ProductID: "prd-club", Qty: 6},
		domain.LineItem{ProductID: "prd-gaseosa", Qty: 2},
	))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	voided, err := svc.VoidSale(ctx, invoice.ID, "cliente cambio de opinion")
	if err != nil {
		t.Fatalf("void sale: %v", err)
	}
	if !voided.Voided || voided.VoidedAt == nil {
		t.Fatalf("expected invoice to be voided, got %+v", voided)
	}
	if !voided.Total.Equal(invoice.Total) {
		t.Fatalf("expected totals preserved on void, got %s want %s", voided.Total, invoice.Total)
	}
	if got := stockOf(t, repo, "prd-club"); got != 96 {
		t.Fatalf("expected club stock restored to 96, got %d", got)
	}
	if got := stockOf(t, repo, "prd-gaseosa"); got != 48 {
		t.Fatalf("expected gaseosa stock restored to 48, got %d", got)
	}

	_, err = svc.VoidSale(ctx, invoice.ID, "again")
	if !errors.Is(err, store.ErrAlreadyVoided) {
		t.Fatalf("expected already voided, got %v", err)
	}
	if got := stockOf(t, repo, "prd-club"); got != 96 {
		t.Fatalf("expected no extra restock, got %d", got)
	}

	if _, err := svc.VoidSale(ctx, "2503099999", ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReactivateSale(t *testing.T) {
	svc, repo := newTestService(t)

	first, err := svc.CreateSale(cashierCtx(), saleRequest(domain.LineItem{ProductID: "prd-ron", Qty: 5}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if _, err := svc.ReactivateSale(adminCtx(), first.ID); !errors.Is(err, store.ErrNotVoided) {
		t.Fatalf("expected not voided, got %v", err)
	}
	if _, err := svc.VoidSale(cashierCtx(), first.ID, "error de caja"); err != nil {
		t.Fatalf("void: %v", err)
	}
	if _, err := svc.ReactivateSale(cashierCtx(), first.ID); !errors.Is(err, store.ErrAdminRequired) {
		t.Fatalf("expected admin required, got %v", err)
	}

	reactivated, err := svc.ReactivateSale(adminCtx(), first.ID)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if reactivated.Voided || reactivated.VoidedAt != nil {
		t.Fatalf("expected active invoice, got %+v", reactivated)
	}
	if got := stockOf(t, repo, "prd-ron"); got != 0 {
		t.Fatalf("expected stock taken again, got %d", got)
	}

	if _, err := svc.VoidSale(cashierCtx(), first.ID, "otra vez"); err != nil {
		t.Fatalf("second void: %v", err)
	}
	if _, err := svc.CreateSale(cashierCtx(), saleRequest(domain.LineItem{ProductID: "prd-ron", Qty: 3})); err != nil {
		t.Fatalf("sale after void: %v", err)
	}
	if _, err := svc.ReactivateSale(adminCtx(), first.ID); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock on reactivation, got %v", err)
	}
	if got := stockOf(t, repo, "prd-ron"); got != 2 {
		t.Fatalf("expected stock 2 after failed reactivation, got %d", got)
	}
	inv, _ := svc.GetInvoice(context.Background(), first.ID)
	if !inv.Voided {
		t.Fatalf("expected invoice to stay voided")
	}
}

func TestListInvoicesFiltersByVoided(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := cashierCtx()

	a, _ := svc.CreateSale(ctx, saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 1}))
	if _, err := svc.CreateSale(ctx, saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 1})); err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if _, err := svc.VoidSale(ctx, a.ID, ""); err != nil {
		t.Fatalf("void: %v", err)
	}

	voided := true
	list, err := svc.ListInvoices(ctx, "2025-03-09", &voided, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Invoices) != 1 || list.Invoices[0].ID != a.ID {
		t.Fatalf("expected only the voided invoice, got %+v", list.Invoices)
	}

	all, err := svc.ListInvoices(ctx, "", nil, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if all.Date != "2025-03-09" || len(all.Invoices) != 2 {
		t.Fatalf("expected 2 invoices for today, got %d on %s", len(all.Invoices), all.Date)
	}

	if _, err := svc.ListInvoices(ctx, "09/03/2025", nil, 0); !errors.Is(err, store.ErrInvalidTransaction) {
		t.Fatalf("expected bad date to be rejected, got %v", err)
	}
}

func TestSaleUsesInvoiceConfigFallback(t *testing.T) {
	svc, repo := newTestService(t)

	if _, err := repo.GetInvoiceConfig(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no config before first sale, got %v", err)
	}

	invoice, err := svc.CreateSale(cashierCtx(), saleRequest(domain.LineItem{ProductID: "prd-agua", Qty: 1}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	cfg, err := svc.GetInvoiceConfig(context.Background())
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if cfg.Prefix != "" || cfg.ID == "" || cfg.ID != invoice.ConfigID {
		t.Fatalf("expected invoice to reference created config, got cfg=%+v invoice config=%s", cfg, invoice.ConfigID)
	}

	updated, err := svc.UpdateInvoiceConfig(adminCtx(), domain.InvoiceConfigUpdateRequest{Prefix: "BAR"})
	if err != nil {
		t.Fatalf("update config: %v", err)
	}
	if updated.ID != cfg.ID || updated.Prefix != "BAR" {
		t.Fatalf("expected same config with new prefix, got %+v", updated)
	}
}
