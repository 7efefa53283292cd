package report

import (
	"context"
	"time"
)

type Repository interface {
	Insert(ctx context.Context, r *Report) (int64, error)
	List(ctx context.Context) ([]*Report, error)
	// ListByDate returns reports created on the given calendar day.
	ListByDate(ctx context.Context, day time.Time) ([]*Report, error)
	// MarkAttended flags the report as handled. A missing or already
	// attended id is a not-found error.
	MarkAttended(ctx context.Context, id int64, attendedAt time.Time) error
}
