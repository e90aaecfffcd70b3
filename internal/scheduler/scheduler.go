package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Handler is invoked when a scheduled deadline comes due. Returning an error
// re-queues the entry, so handlers must tolerate repeat invocations.
type Handler func(ctx context.Context, bookingID uuid.UUID) error

// Scheduler arranges a durable, at-least-once callback at or after a
// deadline. Entries survive process restarts; exactly-once delivery is NOT
// guaranteed and consumers must be idempotent.
type Scheduler interface {
	Schedule(ctx context.Context, at time.Time, bookingID uuid.UUID) error
}
