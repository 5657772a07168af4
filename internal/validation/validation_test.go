package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
)

func TestViolationsCollectEveryField(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	Positive("sale_price", decimal.Zero, v)
	NonNegativeInt("min_stock", -1, v)
	Email("email", "not-an-email", v)
	Phone("phone", "31x", v)

	if len(v) != 5 {
		t.Fatalf("expected 5 violations, got %d: %v", len(v), v)
	}

	err := v.Err()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, store.ErrInvalidTransaction) {
		t.Fatalf("expected validation error to match ErrInvalidTransaction")
	}
	var verr *Error
	if !errors.As(err, &verr) || verr.Fields["name"] != "required" {
		t.Fatalf("expected name to be reported as required, got %v", err)
	}
}

func TestOptionalContactFieldsAcceptEmpty(t *testing.T) {
	v := Violations{}
	Email("email", "", v)
	Phone("phone", "", v)
	Phone("mobile", "3001234567", v)
	Email("work_email", "bar@example.com", v)

	if err := v.Err(); err != nil {
		t.Fatalf("expected no violations, got %v", err)
	}
}

func TestRange(t *testing.T) {
	v := Violations{}
	Range("percent", decimal.NewFromInt(101), decimal.Zero, decimal.NewFromInt(100), v)
	Range("ok", decimal.RequireFromString("19.000"), decimal.Zero, decimal.NewFromInt(100), v)
	if v["percent"] != "out_of_range" {
		t.Fatalf("expected percent out of range, got %v", v)
	}
	if _, ok := v["ok"]; ok {
		t.Fatalf("did not expect violation for 19.000")
	}
}
