package bookings

import "errors"

var (
	// ErrSeatConflict means at least one requested seat was claimed by a
	// concurrent or earlier reservation.
	ErrSeatConflict = errors.New("one or more seats are already taken")

	// ErrShowNotFound means the referenced show does not exist
	ErrShowNotFound = errors.New("show not found")

	// ErrShowStarted means the screening has already begun and no further
	// reservations are accepted.
	ErrShowStarted = errors.New("show has already started")

	// ErrBookingNotFound means no booking matches the given id
	ErrBookingNotFound = errors.New("booking not found")

	// ErrGateway means the payment provider could not create a checkout
	// session; the reservation was rolled back.
	ErrGateway = errors.New("payment gateway unavailable")

	// ErrInvalidSeats means the seat selection failed validation
	ErrInvalidSeats = errors.New("invalid seat selection")
)
