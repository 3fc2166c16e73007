package userRepo

import (
	"context"

	"timeslice/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID. It returns (nil, nil) when no user matches.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetRated retrieves every user that has received at least one review.
	GetRated(ctx context.Context) ([]models.User, error)
	// CountAll returns the number of registered users.
	CountAll(ctx context.Context) (int, error)
}
