package service

import (
	"context"
	"strings"
	"time"

	"github.com/XGallardoX/Arquitectura-de-Software/internal/domain"
	"github.com/XGallardoX/Arquitectura-de-Software/internal/store"
)

// ListAuditLogs returns one local calendar day of audit entries, newest first.
func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	date = strings.TrimSpace(date)
	var day time.Time
	if date == "" {
		now := s.localNow()
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	} else {
		parsed, err := time.ParseInLocation(time.DateOnly, date, s.loc)
		if err != nil {
			return nil, store.ErrInvalidTransaction
		}
		day = parsed
	}
	if limit < 1 || limit > 1000 {
		limit = 200
	}

	return s.repo.ListAuditLogs(ctx, day.UTC(), day.AddDate(0, 0, 1).UTC(), limit)
}
