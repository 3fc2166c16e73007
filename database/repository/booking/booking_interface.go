package bookingRepo

import (
	"context"
	"time"

	"timeslice/models"
)

// HelperEarnings is the per-helper rollup of completed bookings used for platform benchmarks.
type HelperEarnings struct {
	HelperID  string `bson:"_id"`
	Completed int    `bson:"completed"`
	Credits   int    `bson:"credits"`
}

// BookingRepository defines read access to bookings.
type BookingRepository interface {
	// FindByUserAndRange returns bookings where the user is helper or task provider, created in [start, end).
	FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.Booking, error)
	// AggregateCompletedByHelper groups completed bookings created in [start, end) by helper.
	AggregateCompletedByHelper(ctx context.Context, start, end time.Time) ([]HelperEarnings, error)
	// FindActiveByUser returns confirmed, in-progress and work-submitted bookings of the user.
	FindActiveByUser(ctx context.Context, userID string) ([]models.Booking, error)
}
