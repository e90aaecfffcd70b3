package bookings

import (
	"time"

	"github.com/google/uuid"
)

// BookingResponse is the client view of a booking
type BookingResponse struct {
	ID         uuid.UUID     `json:"id"`
	ShowID     uuid.UUID     `json:"show_id"`
	Seats      []string      `json:"seats"`
	Amount     int64         `json:"amount"`
	Currency   string        `json:"currency"`
	IsPaid     bool          `json:"is_paid"`
	CheckedIn  bool          `json:"checked_in"`
	CreatedAt  time.Time     `json:"created_at"`
	Show       *ShowSummary  `json:"show,omitempty"`
	Ticket     *TicketDetail `json:"ticket,omitempty"`
	PaymentURL string        `json:"payment_url,omitempty"`
	ExpiresAt  *time.Time    `json:"expires_at,omitempty"`
}

// ShowSummary is the embedded show information on a booking
type ShowSummary struct {
	ID         uuid.UUID `json:"id"`
	MovieTitle string    `json:"movie_title"`
	StartTime  time.Time `json:"start_time"`
	Price      int64     `json:"price"`
}

// TicketDetail carries the scannable credential for a paid booking
type TicketDetail struct {
	Token string `json:"token"`
}

// OccupiedSeatsResponse lists the taken seats for a show
type OccupiedSeatsResponse struct {
	ShowID        uuid.UUID `json:"show_id"`
	OccupiedSeats []string  `json:"occupied_seats"`
}

// BookingListResponse is a paginated booking collection for the admin view
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

func toBookingResponse(b *Booking) BookingResponse {
	resp := BookingResponse{
		ID:        b.ID,
		ShowID:    b.ShowID,
		Seats:     b.SeatLabels(),
		Amount:    b.Amount,
		Currency:  b.Currency,
		IsPaid:    b.IsPaid,
		CheckedIn: b.CheckedIn,
		CreatedAt: b.CreatedAt,
	}

	if b.Show != nil {
		summary := &ShowSummary{
			ID:        b.Show.ID,
			StartTime: b.Show.StartTime,
			Price:     b.Show.Price,
		}
		if b.Show.Movie != nil {
			summary.MovieTitle = b.Show.Movie.Title
		}
		resp.Show = summary
	}

	// The ticket credential only exists once the booking is paid
	if b.IsPaid && b.Token != nil {
		resp.Ticket = &TicketDetail{Token: *b.Token}
	}

	return resp
}
