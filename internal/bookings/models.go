package bookings

import (
	"strings"
	"time"

	"cinetix/internal/shows"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking is one reservation of seats for a show. Amount is in minor
// currency units. Token is the single-use ticket credential: it is minted
// in the paid transition and stays nil while the hold is unpaid, so the
// nullable unique index never collides on pending rows. CheckedIn flips
// exactly once at venue entry.
type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShowID     uuid.UUID `gorm:"type:uuid;index;not null" json:"show_id"`
	UserID     string    `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Seats      string    `gorm:"type:text;not null" json:"-"`
	Amount     int64     `gorm:"not null" json:"amount"`
	Currency   string    `gorm:"type:varchar(3);not null" json:"currency"`
	IsPaid     bool      `gorm:"not null;default:false" json:"is_paid"`
	PaymentRef string    `gorm:"type:varchar(64)" json:"-"`
	Token      *string   `gorm:"type:varchar(36);uniqueIndex" json:"-"`
	CheckedIn  bool      `gorm:"not null;default:false" json:"checked_in"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Show *shows.Show `json:"show,omitempty" gorm:"foreignKey:ShowID;constraint:OnDelete:RESTRICT;"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// BeforeCreate assigns the booking id. The id is generated here rather than
// by the database because seat claims created in the same transaction
// reference it.
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// SeatLabels returns the reserved seat labels in stored order
func (b *Booking) SeatLabels() []string {
	if b.Seats == "" {
		return nil
	}
	return strings.Split(b.Seats, ",")
}

// SetSeatLabels stores the seat labels in serialized form
func (b *Booking) SetSeatLabels(labels []string) {
	b.Seats = strings.Join(labels, ",")
}
