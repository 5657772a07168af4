// Package validation collects per-field problems so a request can be rejected
// with every issue at once.
package validation

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Err returns nil when there is nothing to report.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	fields := make(map[string]string, len(v))
	for k, val := range v {
		fields[k] = val
	}
	return &Error{Fields: fields}
}

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

func Positive(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v[field] = "must_be_positive"
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func Range(field string, val, minVal, maxVal decimal.Decimal, v Violations) {
	if val.LessThan(minVal) || val.GreaterThan(maxVal) {
		v[field] = "out_of_range"
	}
}

func MaxLen(field, value string, n int, v Violations) {
	if len([]rune(value)) > n {
		v[field] = fmt.Sprintf("max_length_%d", n)
	}
}

// Email accepts an empty value; contact emails are optional.
func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v[field] = "invalid_email"
	}
}

// Phone accepts an empty value or 7 to 15 digits with an optional leading +.
func Phone(field, value string, v Violations) {
	if value == "" {
		return
	}
	digits := strings.TrimPrefix(value, "+")
	if len(digits) < 7 || len(digits) > 15 {
		v[field] = "invalid_phone"
		return
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			v[field] = "invalid_phone"
			return
		}
	}
}

type Error struct {
	Fields map[string]string `json:"fields"`
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *Error) Is(target error) bool {
	return target == store.ErrInvalidTransaction
}
