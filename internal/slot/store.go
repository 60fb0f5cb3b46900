package slot

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicateSlot is returned by Insert when a slot, open or booked,
	// already occupies the requested (date, time).
	ErrDuplicateSlot = errors.New("slot already exists for that date and time")
)

// Store owns the slot inventory. Claim is the only operation with a
// concurrency contract: under concurrent callers targeting the same
// (date, time), exactly one claim succeeds.
type Store interface {
	// ListAvailable returns open slots whose date falls in the inclusive
	// window [from, to], ordered by scheduled time ascending.
	ListAvailable(ctx context.Context, from, to time.Time) ([]Slot, error)

	// ListBooked returns all booked slots ordered by scheduled time ascending.
	ListBooked(ctx context.Context) ([]Slot, error)

	// Claim atomically books the open slot at the given time, stamping the
	// patient fields. Returns false when no open slot matches, which includes
	// losing the race to a concurrent caller.
	Claim(ctx context.Context, at time.Time, name, phone string, m Modality) (bool, error)

	// Release returns a slot to open and clears patient fields. Releasing an
	// already-open slot is a no-op.
	Release(ctx context.Context, id int64) error

	// Insert creates a new open slot, failing with ErrDuplicateSlot when the
	// (date, time) is taken.
	Insert(ctx context.Context, at time.Time) (*Slot, error)

	// DeleteOne removes a slot regardless of state. Unknown ids are no-ops.
	DeleteOne(ctx context.Context, id int64) error

	// DeleteMany removes a batch of slots regardless of state.
	DeleteMany(ctx context.Context, ids []int64) error
}
