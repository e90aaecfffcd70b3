package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType discriminates the email templates
type NotificationType string

const (
	TypeBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	TypeBookingReleased  NotificationType = "BOOKING_RELEASED"
)

// EmailNotification is the message that travels over the notification topic.
// Data carries the template variables so the consumer never needs a
// database round trip.
type EmailNotification struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Recipient string                 `json:"recipient"`
	Name      string                 `json:"name"`
	Subject   string                 `json:"subject"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"created_at"`
}

// BookingDetails are the template variables shared by the booking emails
type BookingDetails struct {
	BookingID  string
	MovieTitle string
	ShowTime   time.Time
	Seats      []string
	Amount     int64
	Currency   string
}

// NewBookingConfirmed builds the confirmation email message
func NewBookingConfirmed(recipient, name string, details BookingDetails) *EmailNotification {
	return &EmailNotification{
		ID:        uuid.New().String(),
		Type:      TypeBookingConfirmed,
		Recipient: recipient,
		Name:      name,
		Subject:   "Your booking is confirmed - " + details.MovieTitle,
		Data: map[string]interface{}{
			"booking_id":  details.BookingID,
			"movie_title": details.MovieTitle,
			"show_time":   details.ShowTime.Format(time.RFC1123),
			"seats":       details.Seats,
			"amount":      details.Amount,
			"currency":    details.Currency,
		},
		CreatedAt: time.Now(),
	}
}

// NewBookingReleased builds the hold-expired email message
func NewBookingReleased(recipient, name string, details BookingDetails) *EmailNotification {
	return &EmailNotification{
		ID:        uuid.New().String(),
		Type:      TypeBookingReleased,
		Recipient: recipient,
		Name:      name,
		Subject:   "Your seat hold expired - " + details.MovieTitle,
		Data: map[string]interface{}{
			"booking_id":  details.BookingID,
			"movie_title": details.MovieTitle,
			"show_time":   details.ShowTime.Format(time.RFC1123),
			"seats":       details.Seats,
		},
		CreatedAt: time.Now(),
	}
}

// ToJSON serializes the notification for the wire
func (n *EmailNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// FromJSON deserializes a notification from the wire
func FromJSON(data []byte) (*EmailNotification, error) {
	var n EmailNotification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// PartitionKey keeps all messages for one recipient on one partition so
// their emails arrive in order.
func (n *EmailNotification) PartitionKey() string {
	return n.Recipient
}
