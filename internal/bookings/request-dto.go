package bookings

// CreateBookingRequest is the payload for reserving seats on a show
type CreateBookingRequest struct {
	ShowID string   `json:"show_id" binding:"required,uuid"`
	Seats  []string `json:"seats" binding:"required,min=1"`
}

// PaymentWebhookRequest is the payment provider's report for a checkout
// session. Status is the provider's terminal outcome for the session.
type PaymentWebhookRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
	Status    string `json:"status" binding:"required"`
	Ref       string `json:"ref"`
}
