package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
)

type fakeStock struct {
	products map[string]domain.Product
	writes   int
}

func newFakeStock() *fakeStock {
	return &fakeStock{products: map[string]domain.Product{
		"beer":  {ID: "beer", Name: "Beer", Stock: 5, Active: true},
		"water": {ID: "water", Name: "Water", Stock: 20, Active: true},
		"old":   {ID: "old", Name: "Discontinued", Stock: 3, Active: false},
	}}
}

func (f *fakeStock) StockProducts(_ context.Context, ids []string) (map[string]domain.Product, error) {
	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (f *fakeStock) AdjustStock(_ context.Context, productID string, delta int) error {
	p, ok := f.products[productID]
	if !ok {
		return store.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return store.ErrInsufficientStock
	}
	p.Stock += delta
	f.products[productID] = p
	f.writes++
	return nil
}

func TestHasSufficient(t *testing.T) {
	f := newFakeStock()
	ctx := context.Background()

	cases := []struct {
		id   string
		qty  int
		want bool
	}{
		{id: "beer", qty: 5, want: true},
		{id: "beer", qty: 6, want: false},
		{id: "missing", qty: 1, want: false},
		{id: "old", qty: 1, want: false},
	}
	for _, tc := range cases {
		got, err := HasSufficient(ctx, f, tc.id, tc.qty)
		if err != nil {
			t.Fatalf("has sufficient %s: %v", tc.id, err)
		}
		if got != tc.want {
			t.Fatalf("HasSufficient(%s, %d) = %t, want %t", tc.id, tc.qty, got, tc.want)
		}
	}
}

func TestCheckBatchAggregatesEveryFailure(t *testing.T) {
	f := newFakeStock()

	report, err := CheckBatch(context.Background(), f, []Item{
		{ProductID: "beer", Qty: 6},
		{ProductID: "water", Qty: 2},
		{ProductID: "ghost", Qty: 1},
	})
	if err != nil {
		t.Fatalf("check batch: %v", err)
	}
	if report.Valid {
		t.Fatalf("expected invalid report")
	}
	if len(report.Errors) != 2 || len(report.Details) != 2 {
		t.Fatalf("expected 2 failures, got %v", report.Errors)
	}
	if report.Details[0].ProductID != "beer" || report.Details[0].Available != 5 || report.Details[0].Requested != 6 {
		t.Fatalf("unexpected first shortage %+v", report.Details[0])
	}
	if !report.Details[1].Missing {
		t.Fatalf("expected ghost product to be reported missing")
	}
	if f.writes != 0 {
		t.Fatalf("check batch must not write")
	}
}

func TestCheckBatchMergesDuplicateLines(t *testing.T) {
	f := newFakeStock()

	report, err := CheckBatch(context.Background(), f, []Item{
		{ProductID: "beer", Qty: 3},
		{ProductID: "beer", Qty: 3},
	})
	if err != nil {
		t.Fatalf("check batch: %v", err)
	}
	if report.Valid || report.Details[0].Requested != 6 {
		t.Fatalf("expected merged request of 6 to fail, got %+v", report)
	}
}

func TestDecrementBatchIsAllOrNothing(t *testing.T) {
	f := newFakeStock()

	err := DecrementBatch(context.Background(), f, []Item{
		{ProductID: "water", Qty: 2},
		{ProductID: "beer", Qty: 6},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	var stockErr *store.StockError
	if !errors.As(err, &stockErr) || len(stockErr.Shortages) != 1 {
		t.Fatalf("expected one shortage, got %v", err)
	}
	if f.products["water"].Stock != 20 || f.products["beer"].Stock != 5 {
		t.Fatalf("expected no stock mutation, got water=%d beer=%d", f.products["water"].Stock, f.products["beer"].Stock)
	}

	if err := DecrementBatch(context.Background(), f, []Item{{ProductID: "water", Qty: 2}, {ProductID: "beer", Qty: 5}}); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if f.products["water"].Stock != 18 || f.products["beer"].Stock != 0 {
		t.Fatalf("unexpected stock water=%d beer=%d", f.products["water"].Stock, f.products["beer"].Stock)
	}
}

func TestDecrementBatchReportsMissingProduct(t *testing.T) {
	f := newFakeStock()

	err := DecrementBatch(context.Background(), f, []Item{{ProductID: "ghost", Qty: 1}})
	if !errors.Is(err, store.ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}
}

func TestIncrementBatch(t *testing.T) {
	f := newFakeStock()

	if err := IncrementBatch(context.Background(), f, []Item{{ProductID: "old", Qty: 2}, {ProductID: "beer", Qty: 1}}); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if f.products["old"].Stock != 5 || f.products["beer"].Stock != 6 {
		t.Fatalf("unexpected stock old=%d beer=%d", f.products["old"].Stock, f.products["beer"].Stock)
	}

	err := IncrementBatch(context.Background(), f, []Item{{ProductID: "ghost", Qty: 1}})
	if !errors.Is(err, store.ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}
}

func TestRejectsNonPositiveQuantity(t *testing.T) {
	f := newFakeStock()

	_, err := CheckBatch(context.Background(), f, []Item{{ProductID: "beer", Qty: 0}})
	if !errors.Is(err, store.ErrInvalidLine) {
		t.Fatalf("expected invalid line, got %v", err)
	}
}

func TestWithdrawBatchAcceptsInactiveProducts(t *testing.T) {
	f := newFakeStock()
	ctx := context.Background()

	if err := WithdrawBatch(ctx, f, []Item{{ProductID: "old", Qty: 2}}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := f.products["old"].Stock; got != 1 {
		t.Fatalf("expected stock 1, got %d", got)
	}

	err := WithdrawBatch(ctx, f, []Item{{ProductID: "old", Qty: 2}, {ProductID: "water", Qty: 1}})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if got := f.products["water"].Stock; got != 20 {
		t.Fatalf("expected water untouched at 20, got %d", got)
	}
}
