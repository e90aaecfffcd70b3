package seatmap

import (
	"time"

	"github.com/google/uuid"
)

// SeatClaim is one occupied seat in a show. The unique index on
// (show_id, seat_label) is what makes concurrent overlapping reservations
// impossible: the second writer hits a duplicate-key error and the whole
// claim set rolls back.
type SeatClaim struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_show_seat" json:"show_id"`
	SeatLabel string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_show_seat" json:"seat_label"`
	UserID    string    `gorm:"type:varchar(64);not null" json:"user_id"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the table name for SeatClaim
func (SeatClaim) TableName() string {
	return "seat_claims"
}
