package bookings

import (
	"context"
	"errors"
	"time"

	"cinetix/internal/seatmap"
	"cinetix/internal/shows"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// CreateBookingWithClaims atomically verifies the show, prices the
	// booking, and claims the seats. Returns ErrSeatConflict if any seat is
	// already taken, ErrShowNotFound / ErrShowStarted for show problems.
	CreateBookingWithClaims(ctx context.Context, booking *Booking, labels []string, now time.Time) error

	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByToken(ctx context.Context, token string) (*Booking, error)
	SetPaymentRef(ctx context.Context, id uuid.UUID, ref string) error

	// MarkPaid promotes the booking to paid exactly once. The second and
	// later calls report false with no error.
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)

	// ReleaseIfUnpaid deletes the booking and its seat claims unless payment
	// already landed. Reports whether a release actually happened.
	ReleaseIfUnpaid(ctx context.Context, id uuid.UUID) (bool, error)

	// MarkCheckedIn consumes the ticket credential exactly once
	MarkCheckedIn(ctx context.Context, token string) (bool, error)

	// DeleteWithClaims removes the booking unconditionally; used to roll
	// back a reservation whose checkout session could not be created.
	DeleteWithClaims(ctx context.Context, id uuid.UUID) error

	GetUserBookings(ctx context.Context, userID string) ([]Booking, error)
	GetAllBookings(ctx context.Context, limit, offset int) ([]Booking, int64, error)
	PaidBookingStats(ctx context.Context) (count int64, revenue int64, err error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBookingWithClaims(ctx context.Context, booking *Booking, labels []string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the show row so concurrent reservations for the same show
		// serialize here; the unique index on seat_claims is the final
		// arbiter either way.
		var show shows.Show
		err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&show, "id = ?", booking.ShowID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShowNotFound
			}
			return err
		}

		if show.HasStarted(now) {
			return ErrShowStarted
		}

		booking.Amount = show.Price * int64(len(labels))
		booking.SetSeatLabels(labels)

		if err := tx.Create(booking).Error; err != nil {
			return err
		}

		claims := make([]seatmap.SeatClaim, 0, len(labels))
		for _, label := range labels {
			claims = append(claims, seatmap.SeatClaim{
				ShowID:    booking.ShowID,
				SeatLabel: label,
				UserID:    booking.UserID,
				BookingID: booking.ID,
			})
		}

		if err := tx.Create(&claims).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSeatConflict
			}
			return err
		}

		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Show").
		Preload("Show.Movie").
		First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByToken(ctx context.Context, token string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Show").
		Preload("Show.Movie").
		First(&booking, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) SetPaymentRef(ctx context.Context, id uuid.UUID, ref string) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Update("payment_ref", ref).Error
}

func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	// The paid transition settles the checkout session, so the session
	// handle is cleared, and mints the single-use ticket token. Repeat
	// confirmations match zero rows and leave the token untouched.
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]interface{}{
			"is_paid":     true,
			"payment_ref": "",
			"token":       uuid.New().String(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ReleaseIfUnpaid(ctx context.Context, id uuid.UUID) (bool, error) {
	released := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The conditional delete arbitrates against a concurrent payment
		// confirmation: whichever statement commits first wins.
		result := tx.Where("id = ? AND is_paid = ?", id, false).Delete(&Booking{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		released = true
		return tx.Where("booking_id = ?", id).Delete(&seatmap.SeatClaim{}).Error
	})
	return released, err
}

func (r *repository) MarkCheckedIn(ctx context.Context, token string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("token = ? AND is_paid = ? AND checked_in = ?", token, true, false).
		Update("checked_in", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) DeleteWithClaims(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", id).Delete(&seatmap.SeatClaim{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Booking{}).Error
	})
}

func (r *repository) GetUserBookings(ctx context.Context, userID string) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("Show").
		Preload("Show.Movie").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) GetAllBookings(ctx context.Context, limit, offset int) ([]Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Booking{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("Show").
		Preload("Show.Movie").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bookings).Error
	return bookings, total, err
}

func (r *repository) PaidBookingStats(ctx context.Context) (int64, int64, error) {
	var stats struct {
		Count   int64
		Revenue int64
	}
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS revenue").
		Where("is_paid = ?", true).
		Scan(&stats).Error
	return stats.Count, stats.Revenue, err
}
