package audit

import "context"

type Repository interface {
	Append(ctx context.Context, e *Entry) error
	List(ctx context.Context, limit, offset int) ([]*Entry, int, error)
	ListByCategory(ctx context.Context, category string, limit, offset int) ([]*Entry, int, error)
}
