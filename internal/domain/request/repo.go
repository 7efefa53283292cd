package request

import (
	"context"
	"time"
)

type PatientRepository interface {
	// GetByCURP returns the patient identified by the exact CURP, or a
	// not-found error.
	GetByCURP(ctx context.Context, curp string) (*Patient, error)
	Insert(ctx context.Context, p *Patient) (int64, error)
	// SearchByCURP matches a CURP fragment, newest patients first.
	SearchByCURP(ctx context.Context, fragment string, limit int) ([]*Patient, error)
}

type ServiceRepository interface {
	// Resolve maps (serviceType, subID) to the service row id.
	Resolve(ctx context.Context, serviceType string, subID int64) (int64, error)
	List(ctx context.Context) ([]*ServiceView, error)
}

type RequestRepository interface {
	Insert(ctx context.Context, req *Request) (int64, error)
	GetStatus(ctx context.Context, id int64) (string, error)
	// Close sets the final status, justification and closing time, guarded
	// by the request still being pending. Returns false when the guard
	// fails.
	Close(ctx context.Context, id int64, status, justification string, closedAt time.Time) (bool, error)
	InsertLine(ctx context.Context, line *Line) error
	// SetLineSupplied updates the supplied quantity and per-line
	// justification of the line keyed by (requestID, itemID).
	SetLineSupplied(ctx context.Context, requestID int64, itemID string, supplied int, justification string) error
	Lines(ctx context.Context, requestID int64) ([]*Line, error)
	List(ctx context.Context, limit, offset int) ([]*View, int, error)
	ListPending(ctx context.Context) ([]*View, error)
	Get(ctx context.Context, id int64) (*View, error)
	Aggregate(ctx context.Context, start, end time.Time) ([]*ItemUsage, error)
	// Unfulfilled totals requested quantities per item over lines that
	// received nothing in [start, end), largest total first.
	Unfulfilled(ctx context.Context, start, end time.Time) ([]*UnfulfilledItem, error)
}
