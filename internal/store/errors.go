package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrReferenceNotFound   = errors.New("reference not found")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrInvalidLine         = errors.New("invalid line")
	ErrAlreadyVoided       = errors.New("invoice already voided")
	ErrNotVoided           = errors.New("invoice is not voided")
	ErrDuplicate           = errors.New("already exists")
	ErrProductInUse        = errors.New("product is referenced by invoices or purchases")
	ErrAdminRequired       = errors.New("admin role required")
)

// Shortage describes one cart line the ledger could not serve.
type Shortage struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Missing   bool   `json:"missing,omitempty"`
}

func (s Shortage) String() string {
	if s.Missing {
		return fmt.Sprintf("product %s does not exist", s.ProductID)
	}
	name := s.Name
	if name == "" {
		name = s.ProductID
	}
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", name, s.Available, s.Requested)
}

// StockError carries every failing line of a batch, not only the first one.
type StockError struct {
	Shortages []Shortage
}

func (e *StockError) Error() string {
	msgs := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		msgs = append(msgs, s.String())
	}
	return "insufficient stock: " + strings.Join(msgs, "; ")
}

func (e *StockError) Is(target error) bool {
	switch target {
	case ErrInsufficientStock:
		return true
	case ErrProductNotFound:
		for _, s := range e.Shortages {
			if s.Missing {
				return true
			}
		}
	}
	return false
}

type ReferenceError struct {
	Kind string
	ID   string
}

func (e *ReferenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s is required", e.Kind)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *ReferenceError) Is(target error) bool {
	return target == ErrReferenceNotFound
}

type LineError struct {
	ProductID string
	Reason    string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("invalid line for product %s: %s", e.ProductID, e.Reason)
}

func (e *LineError) Is(target error) bool {
	return target == ErrInvalidLine
}

type PaymentError struct {
	Total    decimal.Decimal
	Received decimal.Decimal
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: total %s, received %s", e.Total.StringFixed(2), e.Received.StringFixed(2))
}

func (e *PaymentError) Is(target error) bool {
	return target == ErrInsufficientPayment
}
