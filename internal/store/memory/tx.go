package memory

import (
	"context"
	"time"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/xid"
)

var _ store.Tx = (*memTx)(nil)

// memTx runs with the store's write lock held. Each write pushes an undo
// step; rollback replays them newest first.
type memTx struct {
	s    *Store
	undo []func()
}

func (t *memTx) record(step func()) {
	t.undo = append(t.undo, step)
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) StockProducts(_ context.Context, ids []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := t.s.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (t *memTx) AdjustStock(_ context.Context, productID string, delta int) error {
	prev, ok := t.s.products[productID]
	if !ok {
		return store.ErrProductNotFound
	}
	if prev.Stock+delta < 0 {
		return store.ErrInsufficientStock
	}

	next := prev
	next.Stock += delta
	next.UpdatedAt = time.Now().UTC()
	t.s.products[productID] = next
	t.record(func() { t.s.products[productID] = prev })
	return nil
}

func (t *memTx) GetEmployee(_ context.Context, id string) (*domain.Employee, error) {
	return getValue(t.s.employees, id)
}

func (t *memTx) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	return getValue(t.s.customers, id)
}

func (t *memTx) GetTaxRate(_ context.Context, id string) (*domain.TaxRate, error) {
	return getValue(t.s.taxRates, id)
}

func (t *memTx) GetPaymentMethod(_ context.Context, id string) (*domain.PaymentMethod, error) {
	return getValue(t.s.paymentMethods, id)
}

func (t *memTx) GetSupplier(_ context.Context, id string) (*domain.Supplier, error) {
	return getValue(t.s.suppliers, id)
}

func (t *memTx) EnsureInvoiceConfig(_ context.Context) (*domain.InvoiceConfig, error) {
	if t.s.invoiceConfig != nil {
		cfg := *t.s.invoiceConfig
		return &cfg, nil
	}

	now := time.Now().UTC()
	cfg := domain.InvoiceConfig{ID: xid.New("cfg"), Prefix: "", CreatedAt: now, UpdatedAt: now}
	stored := cfg
	t.s.invoiceConfig = &stored
	t.record(func() { t.s.invoiceConfig = nil })
	return &cfg, nil
}

func (t *memTx) NextInvoiceSequence(_ context.Context, day time.Time) (int64, error) {
	key := day.Format(time.DateOnly)
	prev, existed := t.s.sequences[key]
	t.s.sequences[key] = prev + 1
	t.record(func() {
		if existed {
			t.s.sequences[key] = prev
			return
		}
		delete(t.s.sequences, key)
	})
	return prev + 1, nil
}

func (t *memTx) InsertInvoice(_ context.Context, invoice domain.Invoice) error {
	if _, exists := t.s.invoices[invoice.ID]; exists {
		return store.ErrDuplicate
	}
	t.s.invoices[invoice.ID] = cloneInvoice(invoice)
	t.record(func() { delete(t.s.invoices, invoice.ID) })
	return nil
}

func (t *memTx) GetInvoiceForUpdate(_ context.Context, id string) (*domain.Invoice, error) {
	inv, ok := t.s.invoices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cloned := cloneInvoice(inv)
	return &cloned, nil
}

func (t *memTx) SetInvoiceVoided(_ context.Context, id string, voided bool, at *time.Time, reason string) error {
	prev, ok := t.s.invoices[id]
	if !ok {
		return store.ErrNotFound
	}

	next := cloneInvoice(prev)
	next.Voided = voided
	next.VoidedAt = nil
	if at != nil {
		ts := *at
		next.VoidedAt = &ts
	}
	next.VoidReason = reason
	t.s.invoices[id] = next
	t.record(func() { t.s.invoices[id] = prev })
	return nil
}

func (t *memTx) InsertPurchase(_ context.Context, purchase domain.Purchase) error {
	if _, exists := t.s.purchases[purchase.ID]; exists {
		return store.ErrDuplicate
	}
	t.s.purchases[purchase.ID] = clonePurchase(purchase)
	t.record(func() { delete(t.s.purchases, purchase.ID) })
	return nil
}

func (t *memTx) GetPurchaseForUpdate(_ context.Context, id string) (*domain.Purchase, error) {
	p, ok := t.s.purchases[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cloned := clonePurchase(p)
	return &cloned, nil
}

func (t *memTx) ReplacePurchase(_ context.Context, purchase domain.Purchase) error {
	prev, ok := t.s.purchases[purchase.ID]
	if !ok {
		return store.ErrNotFound
	}
	t.s.purchases[purchase.ID] = clonePurchase(purchase)
	t.record(func() { t.s.purchases[purchase.ID] = prev })
	return nil
}
