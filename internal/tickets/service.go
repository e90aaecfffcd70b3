package tickets

import (
	"context"
	"errors"
	"time"

	"cinetix/internal/bookings"
	"cinetix/internal/users"
	"cinetix/pkg/logger"

	"github.com/google/uuid"
)

// fallbackShowLength bounds ticket validity when the movie runtime is unknown
const fallbackShowLength = 4 * time.Hour

// BookingStore is what the verification gate needs from the booking records
type BookingStore interface {
	GetByToken(ctx context.Context, token string) (*bookings.Booking, error)
	MarkCheckedIn(ctx context.Context, token string) (bool, error)
}

// VerifyResult is what the gate operator sees after a scan
type VerifyResult struct {
	BookingID  uuid.UUID `json:"booking_id"`
	MovieTitle string    `json:"movie_title"`
	ShowTime   time.Time `json:"show_time"`
	Seats      []string  `json:"seats"`
	GuestName  string    `json:"guest_name,omitempty"`
}

type Service interface {
	// Verify admits the ticket holder exactly once. A token can only ever
	// produce one successful scan, no matter how many gates race on it.
	Verify(ctx context.Context, token string) (*VerifyResult, error)
}

type service struct {
	store       BookingStore
	users       users.Repository
	entryWindow time.Duration
	logger      *logger.Logger
	now         func() time.Time
}

func NewService(store BookingStore, userRepo users.Repository, entryWindow time.Duration) Service {
	return &service{
		store:       store,
		users:       userRepo,
		entryWindow: entryWindow,
		logger:      logger.GetDefault(),
		now:         time.Now,
	}
}

func (s *service) Verify(ctx context.Context, token string) (*VerifyResult, error) {
	booking, err := s.store.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	// An unpaid booking's token must never admit anyone, even if the client
	// somehow obtained it before payment.
	if !booking.IsPaid {
		return nil, ErrTicketNotFound
	}

	if booking.CheckedIn {
		s.logger.LogTicketScanned(ctx, booking.ID.String(), false)
		return nil, ErrAlreadyUsed
	}

	// Without the show record the entry window cannot be evaluated; refuse
	// the scan and leave the ticket unconsumed for a later retry.
	if booking.Show == nil {
		s.logger.LogTicketScanned(ctx, booking.ID.String(), false)
		return nil, ErrShowUnavailable
	}

	start := booking.Show.StartTime
	end := start.Add(s.showLength(booking))
	now := s.now()

	if now.Before(start.Add(-s.entryWindow)) {
		return nil, ErrTooEarly
	}
	if now.After(end) {
		return nil, ErrExpired
	}

	// The conditional update is the arbiter when two gates scan the same
	// token at once.
	admitted, err := s.store.MarkCheckedIn(ctx, token)
	if err != nil {
		return nil, err
	}
	if !admitted {
		s.logger.LogTicketScanned(ctx, booking.ID.String(), false)
		return nil, ErrAlreadyUsed
	}

	s.logger.LogTicketScanned(ctx, booking.ID.String(), true)

	result := &VerifyResult{
		BookingID: booking.ID,
		ShowTime:  start,
		Seats:     booking.SeatLabels(),
	}
	if booking.Show.Movie != nil {
		result.MovieTitle = booking.Show.Movie.Title
	}
	if user, err := s.users.GetByID(ctx, booking.UserID); err == nil {
		result.GuestName = user.Name
	}
	return result, nil
}

func (s *service) showLength(booking *bookings.Booking) time.Duration {
	if booking.Show != nil && booking.Show.Movie != nil {
		if runtime := booking.Show.Movie.Runtime(); runtime > 0 {
			return runtime
		}
	}
	return fallbackShowLength
}
