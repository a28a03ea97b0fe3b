package audit

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends one audit entry. Audit failures are reported to the caller;
// whether they abort the surrounding operation is the caller's call.
func (s *Service) Record(ctx context.Context, category, action, target, description, actor string) error {
	if category == "" || action == "" {
		return fmt.Errorf("category and action are required")
	}
	return s.repo.Append(ctx, &Entry{
		Category:    category,
		Action:      action,
		Target:      target,
		Description: description,
		Actor:       actor,
	})
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByCategory(ctx context.Context, category string, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListByCategory(ctx, category, limit, offset)
}
