package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/ledger"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/pricing"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/xid"
)

func (s *Service) CreatePurchase(ctx context.Context, req domain.PurchaseCreateRequest) (domain.Purchase, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return domain.Purchase{}, err
	}
	inputs, err := normalizePurchaseLines(req.Lines)
	if err != nil {
		return domain.Purchase{}, err
	}
	supplierID := strings.TrimSpace(req.SupplierID)

	now := s.now().UTC()
	purchase := domain.Purchase{
		ID:         xid.New("pur"),
		SupplierID: supplierID,
		Notes:      strings.TrimSpace(req.Notes),
		CreatedBy:  actor.Username,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.repo.RunInTx(ctx, func(tx store.Tx) error {
		if err := checkSupplier(ctx, tx, supplierID); err != nil {
			return err
		}
		lines, err := buildPurchaseLines(ctx, tx, purchase.ID, inputs)
		if err != nil {
			return err
		}
		purchase.Lines = lines
		purchase.Total = purchaseTotal(lines)

		if err := tx.InsertPurchase(ctx, purchase); err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		return ledger.IncrementBatch(ctx, tx, purchaseItems(lines))
	})
	if err != nil {
		return domain.Purchase{}, err
	}

	s.invalidateProducts(ctx)
	s.logAudit(ctx, "purchase_create", "purchase", purchase.ID, fmt.Sprintf("lines=%d,total=%s", len(purchase.Lines), purchase.Total.StringFixed(2)))
	return purchase, nil
}

// ModifyPurchase takes back the stock the old lines added, then applies the
// new lines. The withdrawal fails when that stock has already been sold.
func (s *Service) ModifyPurchase(ctx context.Context, purchaseID string, req domain.PurchaseModifyRequest) (domain.Purchase, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.Purchase{}, err
	}
	purchaseID = strings.TrimSpace(purchaseID)
	if purchaseID == "" {
		return domain.Purchase{}, store.ErrInvalidTransaction
	}
	inputs, err := normalizePurchaseLines(req.Lines)
	if err != nil {
		return domain.Purchase{}, err
	}

	var purchase domain.Purchase
	err = s.repo.RunInTx(ctx, func(tx store.Tx) error {
		current, err := tx.GetPurchaseForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}

		if req.SupplierID != nil {
			current.SupplierID = strings.TrimSpace(*req.SupplierID)
			if err := checkSupplier(ctx, tx, current.SupplierID); err != nil {
				return err
			}
		}
		if req.Notes != nil {
			current.Notes = strings.TrimSpace(*req.Notes)
		}

		if err := ledger.WithdrawBatch(ctx, tx, purchaseItems(current.Lines)); err != nil {
			return fmt.Errorf("reverse purchase %s: %w", purchaseID, err)
		}

		lines, err := buildPurchaseLines(ctx, tx, current.ID, inputs)
		if err != nil {
			return err
		}
		current.Lines = lines
		current.Total = purchaseTotal(lines)
		current.UpdatedAt = s.now().UTC()

		if err := tx.ReplacePurchase(ctx, *current); err != nil {
			return err
		}
		if err := ledger.IncrementBatch(ctx, tx, purchaseItems(lines)); err != nil {
			return err
		}
		purchase = *current
		return nil
	})
	if err != nil {
		return domain.Purchase{}, err
	}

	s.invalidateProducts(ctx)
	s.logAudit(ctx, "purchase_modify", "purchase", purchase.ID, fmt.Sprintf("lines=%d,total=%s", len(purchase.Lines), purchase.Total.StringFixed(2)))
	return purchase, nil
}

func (s *Service) GetPurchase(ctx context.Context, purchaseID string) (domain.Purchase, error) {
	purchase, err := s.repo.GetPurchase(ctx, strings.TrimSpace(purchaseID))
	if err != nil {
		return domain.Purchase{}, err
	}
	return *purchase, nil
}

func (s *Service) ListPurchases(ctx context.Context, limit int) (domain.PurchaseListResponse, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	purchases, err := s.repo.ListPurchases(ctx, limit)
	if err != nil {
		return domain.PurchaseListResponse{}, err
	}
	return domain.PurchaseListResponse{Purchases: purchases}, nil
}

func normalizePurchaseLines(lines []domain.PurchaseLineInput) ([]domain.PurchaseLineInput, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: purchase needs at least one line", store.ErrInvalidTransaction)
	}
	out := make([]domain.PurchaseLineInput, 0, len(lines))
	for _, line := range lines {
		line.ProductID = strings.TrimSpace(line.ProductID)
		if line.ProductID == "" {
			return nil, &store.LineError{ProductID: "(empty)", Reason: "product is required"}
		}
		if line.Qty < 1 {
			return nil, &store.LineError{ProductID: line.ProductID, Reason: "quantity must be at least 1"}
		}
		if !line.UnitCost.IsPositive() {
			return nil, &store.LineError{ProductID: line.ProductID, Reason: "unit cost must be positive"}
		}
		line.UnitCost = pricing.Round(line.UnitCost)
		out = append(out, line)
	}
	return out, nil
}

func checkSupplier(ctx context.Context, tx store.Tx, supplierID string) error {
	if supplierID == "" {
		return nil
	}
	_, err := resolve("supplier", supplierID, func() (*domain.Supplier, error) {
		return tx.GetSupplier(ctx, supplierID)
	})
	return err
}

func buildPurchaseLines(ctx context.Context, tx store.Tx, purchaseID string, inputs []domain.PurchaseLineInput) ([]domain.PurchaseLine, error) {
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ProductID)
	}
	products, err := tx.StockProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.PurchaseLine, 0, len(inputs))
	for i, in := range inputs {
		product, ok := products[in.ProductID]
		if !ok {
			return nil, &store.ReferenceError{Kind: "product", ID: in.ProductID}
		}
		lines = append(lines, domain.PurchaseLine{
			PurchaseID:  purchaseID,
			LineNo:      i + 1,
			ProductID:   product.ID,
			ProductName: product.Name,
			Qty:         in.Qty,
			UnitCost:    in.UnitCost,
			Subtotal:    pricing.Round(in.UnitCost.Mul(decimal.NewFromInt(int64(in.Qty)))),
		})
	}
	return lines, nil
}

func purchaseTotal(lines []domain.PurchaseLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal)
	}
	return total
}

func purchaseItems(lines []domain.PurchaseLine) []ledger.Item {
	out := make([]ledger.Item, 0, len(lines))
	for _, line := range lines {
		out = append(out, ledger.Item{ProductID: line.ProductID, Qty: line.Qty})
	}
	return out
}
