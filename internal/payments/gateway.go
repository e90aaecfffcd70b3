package payments

import (
	"context"

	"github.com/google/uuid"
)

// Status is the gateway's reported outcome for a payment session
type Status string

const (
	StatusSuccess  Status = "SUCCESS"
	StatusFailed   Status = "FAILED"
	StatusCanceled Status = "CANCELED"
)

// Session is the opaque handle the gateway hands back for a checkout.
// The booking id travels as the correlation key so webhook reports can be
// matched back to the reservation.
type Session struct {
	Ref string `json:"ref"`
	URL string `json:"url"`
}

// Gateway is the contract the reservation flow needs from the hosted
// payment provider. The concrete vendor protocol is out of scope.
type Gateway interface {
	CreateSession(ctx context.Context, bookingID uuid.UUID, amount int64, currency string) (*Session, error)
}
