package seatmap

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the authoritative seat occupancy record for shows.
// Claims are written and released inside the transactions owned by the
// bookings repository; this interface covers the read side only.
type Repository interface {
	// IsAvailable reports whether none of the labels are claimed. It is a
	// fast pre-check; the unique index on seat claims is the real arbiter.
	IsAvailable(ctx context.Context, showID uuid.UUID, labels []string) (bool, error)
	OccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) IsAvailable(ctx context.Context, showID uuid.UUID, labels []string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&SeatClaim{}).
		Where("show_id = ? AND seat_label IN ?", showID, labels).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *repository) OccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	var labels []string
	err := r.db.WithContext(ctx).
		Model(&SeatClaim{}).
		Where("show_id = ?", showID).
		Order("seat_label ASC").
		Pluck("seat_label", &labels).Error
	return labels, err
}

