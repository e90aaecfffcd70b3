package movies

import (
	"time"

	"github.com/google/uuid"
)

// Movie is a locally persisted copy of the catalog provider's metadata.
// A record is created when the first show for the movie is scheduled so the
// booking and verification paths never depend on the provider being up.
type Movie struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CatalogID      int64     `gorm:"uniqueIndex;not null" json:"catalog_id"`
	Title          string    `gorm:"type:varchar(255);not null" json:"title"`
	Overview       string    `gorm:"type:text" json:"overview"`
	PosterURL      string    `gorm:"type:varchar(512)" json:"poster_url"`
	BackdropURL    string    `gorm:"type:varchar(512)" json:"backdrop_url"`
	RuntimeMinutes int       `gorm:"not null" json:"runtime_minutes"`
	ReleaseDate    string    `gorm:"type:varchar(10)" json:"release_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName sets the table name for Movie
func (Movie) TableName() string {
	return "movies"
}

// Runtime returns the movie length as a duration
func (m *Movie) Runtime() time.Duration {
	return time.Duration(m.RuntimeMinutes) * time.Minute
}
