package tickets

import "errors"

var (
	// ErrTicketNotFound means no paid booking matches the scanned token
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrAlreadyUsed means the ticket was consumed by an earlier scan
	ErrAlreadyUsed = errors.New("ticket already used")

	// ErrTooEarly means the scan happened before the entry window opened
	ErrTooEarly = errors.New("entry window not open yet")

	// ErrExpired means the show is over and the ticket no longer admits
	ErrExpired = errors.New("ticket expired")

	// ErrShowUnavailable means the show backing the ticket could not be
	// loaded, so the entry window cannot be checked
	ErrShowUnavailable = errors.New("show details unavailable")
)
