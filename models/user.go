// models/user.go
package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a platform member. A user can post tasks (task provider)
// and perform tasks for others (helper).
type User struct {
	ID             string    `bson:"id" json:"id"`
	Name           string    `bson:"name" json:"name"`
	Email          string    `bson:"email" json:"email"`
	Role           string    `bson:"role" json:"role"`
	Skills         []string  `bson:"skills,omitempty" json:"skills,omitempty"`
	Credits        int       `bson:"credits" json:"credits"`               // Current credit balance
	Rating         float64   `bson:"rating" json:"rating"`                 // Running mean of received reviews, 0-5
	TotalRatings   int       `bson:"totalRatings" json:"totalRatings"`     // Number of received reviews
	CompletedTasks int       `bson:"completedTasks" json:"completedTasks"` // Tasks completed as a helper
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}
