package bookings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"cinetix/internal/notifications"
	"cinetix/internal/payments"
	"cinetix/internal/scheduler"
	"cinetix/internal/seatmap"
	"cinetix/internal/shared/config"
	"cinetix/internal/users"
	"cinetix/pkg/logger"

	"github.com/google/uuid"
)

// seatLabelPattern matches row letter(s) plus seat number, e.g. "A1", "AB12"
var seatLabelPattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9]{1,2}$`)

type Service interface {
	// Reserve claims the seats, opens a checkout session, and schedules the
	// hold expiry. Exactly one of two outcomes is possible for each seat:
	// claimed by this booking, or ErrSeatConflict.
	Reserve(ctx context.Context, userID string, req CreateBookingRequest) (*BookingResponse, error)

	// ConfirmPayment is the webhook entry point. Repeat confirmations for a
	// paid booking are no-ops returning the current state.
	ConfirmPayment(ctx context.Context, bookingID uuid.UUID, status payments.Status) (*BookingResponse, error)

	// OnExpire releases the seats of an unpaid booking whose hold ran out.
	// Safe to call any number of times for the same booking.
	OnExpire(ctx context.Context, bookingID uuid.UUID) error

	OccupiedSeats(ctx context.Context, showID uuid.UUID) (*OccupiedSeatsResponse, error)
	GetUserBookings(ctx context.Context, userID string) ([]BookingResponse, error)
	GetAllBookings(ctx context.Context, page, limit int) (*BookingListResponse, error)

	// PaidBookingStats feeds the admin dashboard
	PaidBookingStats(ctx context.Context) (int64, int64, error)
}

type service struct {
	repo      Repository
	seats     seatmap.Repository
	users     users.Repository
	gateway   payments.Gateway
	scheduler scheduler.Scheduler
	publisher notifications.Publisher
	cfg       config.BookingConfig
	logger    *logger.Logger
	now       func() time.Time

	// Backoff bounds for re-trying a failed expiry registration
	scheduleRetryBase time.Duration
	scheduleRetryMax  time.Duration
}

func NewService(
	repo Repository,
	seats seatmap.Repository,
	userRepo users.Repository,
	gateway payments.Gateway,
	sched scheduler.Scheduler,
	publisher notifications.Publisher,
	cfg config.BookingConfig,
) Service {
	return &service{
		repo:              repo,
		seats:             seats,
		users:             userRepo,
		gateway:           gateway,
		scheduler:         sched,
		publisher:         publisher,
		cfg:               cfg,
		logger:            logger.GetDefault(),
		now:               time.Now,
		scheduleRetryBase: 200 * time.Millisecond,
		scheduleRetryMax:  30 * time.Second,
	}
}

func (s *service) Reserve(ctx context.Context, userID string, req CreateBookingRequest) (*BookingResponse, error) {
	showID, err := uuid.Parse(req.ShowID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid show id", ErrInvalidSeats)
	}

	labels, err := s.validateSeats(req.Seats)
	if err != nil {
		return nil, err
	}

	// Cheap occupancy pre-check so obviously taken seats fail before the
	// reservation transaction opens. The unique index on seat claims still
	// arbitrates races that slip past it.
	available, err := s.seats.IsAvailable(ctx, showID, labels)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrSeatConflict
	}

	now := s.now()
	booking := &Booking{
		ShowID:   showID,
		UserID:   userID,
		Currency: s.cfg.Currency,
	}

	if err := s.repo.CreateBookingWithClaims(ctx, booking, labels, now); err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateSession(ctx, booking.ID, booking.Amount, booking.Currency)
	if err != nil {
		// Checkout could not be opened, so give the seats back immediately
		// rather than waiting for the hold to expire.
		if delErr := s.repo.DeleteWithClaims(ctx, booking.ID); delErr != nil {
			s.logger.ErrorWithContext(ctx, "failed to roll back booking after gateway error", delErr, map[string]interface{}{
				"booking_id": booking.ID.String(),
			})
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if err := s.repo.SetPaymentRef(ctx, booking.ID, session.Ref); err != nil {
		s.logger.ErrorWithContext(ctx, "failed to store payment ref", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
	}

	s.scheduleExpiry(ctx, booking.ID, now.Add(s.cfg.HoldDuration))

	s.logger.LogBookingCreated(ctx, booking.ID.String(), showID.String(), userID)

	resp := toBookingResponse(booking)
	resp.PaymentURL = session.URL
	expiresAt := now.Add(s.cfg.HoldDuration)
	resp.ExpiresAt = &expiresAt
	return &resp, nil
}

// scheduleExpiry registers the hold deadline. A hold without a registered
// deadline would never release its seats, so a failed registration is
// retried in the background with capped exponential backoff until it lands.
// The retry loop runs detached from the request context: the reservation
// already succeeded from the client's view.
func (s *service) scheduleExpiry(ctx context.Context, bookingID uuid.UUID, at time.Time) {
	err := s.scheduler.Schedule(ctx, at, bookingID)
	if err == nil {
		return
	}

	s.logger.ErrorWithContext(ctx, "failed to schedule hold expiry, retrying in background", err, map[string]interface{}{
		"booking_id": bookingID.String(),
	})

	go func() {
		bg := context.Background()
		delay := s.scheduleRetryBase
		for {
			time.Sleep(delay)
			if err := s.scheduler.Schedule(bg, at, bookingID); err == nil {
				s.logger.InfoWithContext(bg, "hold expiry scheduled after retry", map[string]interface{}{
					"booking_id": bookingID.String(),
				})
				return
			}
			delay *= 2
			if delay > s.scheduleRetryMax {
				delay = s.scheduleRetryMax
			}
		}
	}()
}

func (s *service) validateSeats(seats []string) ([]string, error) {
	if len(seats) == 0 {
		return nil, fmt.Errorf("%w: no seats requested", ErrInvalidSeats)
	}
	if len(seats) > s.cfg.MaxSeatsPerBooking {
		return nil, fmt.Errorf("%w: at most %d seats per booking", ErrInvalidSeats, s.cfg.MaxSeatsPerBooking)
	}

	seen := make(map[string]struct{}, len(seats))
	for _, label := range seats {
		if !seatLabelPattern.MatchString(label) {
			return nil, fmt.Errorf("%w: bad seat label %q", ErrInvalidSeats, label)
		}
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("%w: duplicate seat label %q", ErrInvalidSeats, label)
		}
		seen[label] = struct{}{}
	}
	return seats, nil
}

func (s *service) ConfirmPayment(ctx context.Context, bookingID uuid.UUID, status payments.Status) (*BookingResponse, error) {
	if status != payments.StatusSuccess {
		// Failed or canceled checkouts are not released here; the hold
		// expiry reclaims the seats on schedule.
		s.logger.InfoWithContext(ctx, "ignoring non-success payment report", map[string]interface{}{
			"booking_id": bookingID.String(),
			"status":     string(status),
		})
		booking, err := s.repo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		resp := toBookingResponse(booking)
		return &resp, nil
	}

	promoted, err := s.repo.MarkPaid(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		// The hold expired and the seats were released before the payment
		// report arrived. Nothing to settle against.
		return nil, err
	}

	if promoted {
		s.logger.LogPaymentConfirmed(ctx, bookingID.String())
		s.notifyConfirmed(ctx, booking)
	}

	resp := toBookingResponse(booking)
	return &resp, nil
}

func (s *service) OnExpire(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			// Already released, or rolled back after a gateway failure
			return nil
		}
		return err
	}

	released, err := s.repo.ReleaseIfUnpaid(ctx, bookingID)
	if err != nil {
		return err
	}
	if !released {
		// Payment landed first; the booking stays
		return nil
	}

	s.logger.LogBookingExpired(ctx, bookingID.String(), len(booking.SeatLabels()))
	s.notifyReleased(ctx, booking)
	return nil
}

func (s *service) OccupiedSeats(ctx context.Context, showID uuid.UUID) (*OccupiedSeatsResponse, error) {
	labels, err := s.seats.OccupiedSeats(ctx, showID)
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []string{}
	}
	return &OccupiedSeatsResponse{ShowID: showID, OccupiedSeats: labels}, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID string) ([]BookingResponse, error) {
	bookings, err := s.repo.GetUserBookings(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, toBookingResponse(&bookings[i]))
	}
	return responses, nil
}

func (s *service) GetAllBookings(ctx context.Context, page, limit int) (*BookingListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	bookings, total, err := s.repo.GetAllBookings(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	responses := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, toBookingResponse(&bookings[i]))
	}

	return &BookingListResponse{
		Bookings: responses,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

func (s *service) PaidBookingStats(ctx context.Context) (int64, int64, error) {
	return s.repo.PaidBookingStats(ctx)
}

func (s *service) notifyConfirmed(ctx context.Context, booking *Booking) {
	user, details, ok := s.notificationDetails(ctx, booking)
	if !ok {
		return
	}
	n := notifications.NewBookingConfirmed(user.Email, user.Name, details)
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.logger.ErrorWithContext(ctx, "failed to publish confirmation notification", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
	}
}

func (s *service) notifyReleased(ctx context.Context, booking *Booking) {
	user, details, ok := s.notificationDetails(ctx, booking)
	if !ok {
		return
	}
	n := notifications.NewBookingReleased(user.Email, user.Name, details)
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.logger.ErrorWithContext(ctx, "failed to publish release notification", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
	}
}

func (s *service) notificationDetails(ctx context.Context, booking *Booking) (*users.User, notifications.BookingDetails, bool) {
	user, err := s.users.GetByID(ctx, booking.UserID)
	if err != nil || user.Email == "" {
		return nil, notifications.BookingDetails{}, false
	}

	details := notifications.BookingDetails{
		BookingID: booking.ID.String(),
		Seats:     booking.SeatLabels(),
		Amount:    booking.Amount,
		Currency:  booking.Currency,
	}
	if booking.Show != nil {
		details.ShowTime = booking.Show.StartTime
		if booking.Show.Movie != nil {
			details.MovieTitle = booking.Show.Movie.Title
		}
	}
	return user, details, true
}
