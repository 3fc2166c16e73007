package applicationRepo

import (
	"context"
	"time"

	"timeslice/models"
)

// ApplicantStats is the per-applicant rollup used for platform benchmarks.
type ApplicantStats struct {
	ApplicantID string `bson:"_id"`
	Submitted   int    `bson:"submitted"`
	Accepted    int    `bson:"accepted"`
}

// ApplicationRepository defines read access to task applications.
type ApplicationRepository interface {
	// FindByUserAndRange returns applications the user submitted or received, created in [start, end).
	FindByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]models.Application, error)
	// AggregateByApplicant groups every application created in [start, end) by applicant.
	AggregateByApplicant(ctx context.Context, start, end time.Time) ([]ApplicantStats, error)
	// CountPendingReceived counts pending applications on the user's tasks.
	CountPendingReceived(ctx context.Context, userID string) (int, error)
}
