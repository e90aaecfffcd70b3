package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MockGateway simulates the hosted payment provider for development and
// testing. Sessions always succeed; the checkout URL points at a local page.
type MockGateway struct {
	CheckoutBaseURL string
}

func NewMockGateway(checkoutBaseURL string) *MockGateway {
	if checkoutBaseURL == "" {
		checkoutBaseURL = "https://checkout.local"
	}
	return &MockGateway{CheckoutBaseURL: strings.TrimRight(checkoutBaseURL, "/")}
}

func (g *MockGateway) CreateSession(ctx context.Context, bookingID uuid.UUID, amount int64, currency string) (*Session, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("invalid session amount: %d", amount)
	}

	ref := "cs_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:24]
	return &Session{
		Ref: ref,
		URL: fmt.Sprintf("%s/pay/%s?booking=%s", g.CheckoutBaseURL, ref, bookingID),
	}, nil
}
