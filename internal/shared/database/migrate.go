package database

import (
	"cinetix/internal/bookings"
	"cinetix/internal/movies"
	"cinetix/internal/seatmap"
	"cinetix/internal/shows"
	"cinetix/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	return db.AutoMigrate(
		&users.User{},
		&movies.Movie{},
		&shows.Show{},
		&bookings.Booking{},
		&seatmap.SeatClaim{},
	)
}
