package shows

import (
	"time"

	"cinetix/internal/movies"

	"github.com/google/uuid"
)

// Show is a single scheduled screening of a movie.
// Price is in minor currency units (cents); financial totals never touch
// floating point.
type Show struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MovieID   uuid.UUID `gorm:"type:uuid;index;not null" json:"movie_id"`
	StartTime time.Time `gorm:"index;not null" json:"start_time"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Movie *movies.Movie `json:"movie,omitempty" gorm:"foreignKey:MovieID;constraint:OnDelete:RESTRICT;"`
}

// TableName sets the table name for Show
func (Show) TableName() string {
	return "shows"
}

// HasStarted reports whether the screening has already begun
func (s *Show) HasStarted(now time.Time) bool {
	return !now.Before(s.StartTime)
}
