// Package ledger owns per-product available quantity: it verifies batches
// and applies stock movements through the store's unit of work.
package ledger

import (
	"context"
	"fmt"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
)

type Item struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// Reader is satisfied by store.Tx.
type Reader interface {
	StockProducts(ctx context.Context, ids []string) (map[string]domain.Product, error)
}

// Writer is satisfied by store.Tx.
type Writer interface {
	Reader
	AdjustStock(ctx context.Context, productID string, delta int) error
}

// Report lists every problem in a batch so all of them can be shown at once.
type Report struct {
	Valid   bool             `json:"valid"`
	Errors  []string         `json:"errors"`
	Details []store.Shortage `json:"details"`
}

func (r Report) Err() error {
	if r.Valid {
		return nil
	}
	return &store.StockError{Shortages: r.Details}
}

// Merge folds repeated products into one line, keeping first-seen order.
func Merge(items []Item) []Item {
	index := make(map[string]int, len(items))
	merged := make([]Item, 0, len(items))
	for _, item := range items {
		if pos, ok := index[item.ProductID]; ok {
			merged[pos].Qty += item.Qty
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

func HasSufficient(ctx context.Context, r Reader, productID string, qty int) (bool, error) {
	products, err := r.StockProducts(ctx, []string{productID})
	if err != nil {
		return false, err
	}
	product, ok := products[productID]
	return ok && product.Active && product.Stock >= qty, nil
}

// CheckBatch validates every line independently. Inactive products count as
// missing since they cannot be sold.
func CheckBatch(ctx context.Context, r Reader, items []Item) (Report, error) {
	return check(ctx, r, items, true)
}

func check(ctx context.Context, r Reader, items []Item, activeOnly bool) (Report, error) {
	if err := validateQty(items); err != nil {
		return Report{}, err
	}
	merged := Merge(items)

	products, err := r.StockProducts(ctx, productIDs(merged))
	if err != nil {
		return Report{}, err
	}

	report := Report{Valid: true}
	for _, item := range merged {
		product, ok := products[item.ProductID]
		if !ok || (activeOnly && !product.Active) {
			report.add(store.Shortage{ProductID: item.ProductID, Requested: item.Qty, Missing: true})
			continue
		}
		if product.Stock < item.Qty {
			report.add(store.Shortage{
				ProductID: item.ProductID,
				Name:      product.Name,
				Requested: item.Qty,
				Available: product.Stock,
			})
		}
	}
	return report, nil
}

// DecrementBatch re-verifies the whole batch and only then moves stock, so
// either every line is reduced or none is.
func DecrementBatch(ctx context.Context, w Writer, items []Item) error {
	report, err := CheckBatch(ctx, w, items)
	if err != nil {
		return err
	}
	return apply(ctx, w, report, items)
}

// WithdrawBatch takes back stock an earlier IncrementBatch added. Unlike
// DecrementBatch it accepts inactive products.
func WithdrawBatch(ctx context.Context, w Writer, items []Item) error {
	report, err := check(ctx, w, items, false)
	if err != nil {
		return err
	}
	return apply(ctx, w, report, items)
}

func apply(ctx context.Context, w Writer, report Report, items []Item) error {
	if err := report.Err(); err != nil {
		return err
	}
	for _, item := range Merge(items) {
		if err := w.AdjustStock(ctx, item.ProductID, -item.Qty); err != nil {
			return fmt.Errorf("decrement %s: %w", item.ProductID, err)
		}
	}
	return nil
}

// IncrementBatch adds quantities back. Inactive products are still restocked.
func IncrementBatch(ctx context.Context, w Writer, items []Item) error {
	if err := validateQty(items); err != nil {
		return err
	}
	merged := Merge(items)

	products, err := w.StockProducts(ctx, productIDs(merged))
	if err != nil {
		return err
	}
	for _, item := range merged {
		if _, ok := products[item.ProductID]; !ok {
			return fmt.Errorf("%w: %s", store.ErrProductNotFound, item.ProductID)
		}
	}

	for _, item := range merged {
		if err := w.AdjustStock(ctx, item.ProductID, item.Qty); err != nil {
			return fmt.Errorf("increment %s: %w", item.ProductID, err)
		}
	}
	return nil
}

func (r *Report) add(s store.Shortage) {
	r.Valid = false
	r.Errors = append(r.Errors, s.String())
	r.Details = append(r.Details, s)
}

func validateQty(items []Item) error {
	for _, item := range items {
		if item.ProductID == "" {
			return &store.LineError{ProductID: "(empty)", Reason: "product is required"}
		}
		if item.Qty < 1 {
			return &store.LineError{ProductID: item.ProductID, Reason: "quantity must be at least 1"}
		}
	}
	return nil
}

func productIDs(items []Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
