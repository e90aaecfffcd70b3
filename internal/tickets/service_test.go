package tickets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinetix/internal/bookings"
	"cinetix/internal/movies"
	"cinetix/internal/shows"
	"cinetix/internal/users"
	"cinetix/pkg/logger"

	"github.com/google/uuid"
)

type fakeBookingStore struct {
	mu      sync.Mutex
	byToken map[string]*bookings.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{byToken: make(map[string]*bookings.Booking)}
}

func (s *fakeBookingStore) add(b *bookings.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[*b.Token] = b
}

func (s *fakeBookingStore) GetByToken(ctx context.Context, token string) (*bookings.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byToken[token]
	if !ok {
		return nil, bookings.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (s *fakeBookingStore) MarkCheckedIn(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byToken[token]
	if !ok || !b.IsPaid || b.CheckedIn {
		return false, nil
	}
	b.CheckedIn = true
	return true, nil
}

type staticUsers struct{}

func (staticUsers) Upsert(ctx context.Context, user *users.User) error { return nil }

func (staticUsers) GetByID(ctx context.Context, id string) (*users.User, error) {
	return &users.User{ID: id, Email: "guest@example.com", Name: "Alex Guest"}, nil
}

var showStart = time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)

func paidBooking(store *fakeBookingStore) *bookings.Booking {
	token := uuid.New().String()
	b := &bookings.Booking{
		ID:     uuid.New(),
		UserID: "user-1",
		Token:  &token,
		IsPaid: true,
		Show: &shows.Show{
			ID:        uuid.New(),
			StartTime: showStart,
			Movie:     &movies.Movie{Title: "Blade Runner", RuntimeMinutes: 120},
		},
	}
	b.SetSeatLabels([]string{"A1", "A2"})
	store.add(b)
	return b
}

func newTestService(store *fakeBookingStore, at time.Time) *service {
	return &service{
		store:       store,
		users:       staticUsers{},
		entryWindow: time.Hour,
		logger:      logger.GetDefault(),
		now:         func() time.Time { return at },
	}
}

func TestVerifyAdmits(t *testing.T) {
	store := newFakeBookingStore()
	b := paidBooking(store)
	svc := newTestService(store, showStart.Add(-30*time.Minute))

	result, err := svc.Verify(context.Background(), *b.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BookingID != b.ID {
		t.Errorf("booking id = %s, want %s", result.BookingID, b.ID)
	}
	if result.MovieTitle != "Blade Runner" {
		t.Errorf("movie title = %q", result.MovieTitle)
	}
	if result.GuestName != "Alex Guest" {
		t.Errorf("guest name = %q", result.GuestName)
	}
	if len(result.Seats) != 2 {
		t.Errorf("seats = %v, want 2 labels", result.Seats)
	}
}

func TestVerifyUnknownToken(t *testing.T) {
	svc := newTestService(newFakeBookingStore(), showStart)

	_, err := svc.Verify(context.Background(), uuid.New().String())
	if !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestVerifyUnpaidBooking(t *testing.T) {
	store := newFakeBookingStore()
	b := paidBooking(store)
	store.byToken[*b.Token].IsPaid = false
	svc := newTestService(store, showStart)

	_, err := svc.Verify(context.Background(), *b.Token)
	if !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound for unpaid booking, got %v", err)
	}
}

func TestVerifyWindow(t *testing.T) {
	// Show at 19:00, runtime 120 minutes, entry opens 60 minutes before
	cases := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{"just before window opens", showStart.Add(-61 * time.Minute), ErrTooEarly},
		{"just after window opens", showStart.Add(-59 * time.Minute), nil},
		{"mid show", showStart.Add(60 * time.Minute), nil},
		{"just before show ends", showStart.Add(119 * time.Minute), nil},
		{"after show ends", showStart.Add(121 * time.Minute), ErrExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeBookingStore()
			b := paidBooking(store)
			svc := newTestService(store, tc.at)

			_, err := svc.Verify(context.Background(), *b.Token)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestVerifyMissingShowDoesNotConsume(t *testing.T) {
	store := newFakeBookingStore()
	b := paidBooking(store)
	store.byToken[*b.Token].Show = nil
	svc := newTestService(store, showStart)

	if _, err := svc.Verify(context.Background(), *b.Token); !errors.Is(err, ErrShowUnavailable) {
		t.Fatalf("expected ErrShowUnavailable, got %v", err)
	}

	// Once the show loads again the same token must still admit
	store.byToken[*b.Token].Show = &shows.Show{
		ID:        uuid.New(),
		StartTime: showStart,
		Movie:     &movies.Movie{Title: "Blade Runner", RuntimeMinutes: 120},
	}
	if _, err := svc.Verify(context.Background(), *b.Token); err != nil {
		t.Fatalf("ticket was consumed by the failed scan: %v", err)
	}
}

func TestVerifyRejectedScanDoesNotConsume(t *testing.T) {
	store := newFakeBookingStore()
	b := paidBooking(store)

	// Too-early scan must leave the ticket usable
	early := newTestService(store, showStart.Add(-2*time.Hour))
	if _, err := early.Verify(context.Background(), *b.Token); !errors.Is(err, ErrTooEarly) {
		t.Fatalf("expected ErrTooEarly, got %v", err)
	}

	inWindow := newTestService(store, showStart)
	if _, err := inWindow.Verify(context.Background(), *b.Token); err != nil {
		t.Fatalf("ticket was consumed by a rejected scan: %v", err)
	}
}

func TestVerifySingleUse(t *testing.T) {
	store := newFakeBookingStore()
	b := paidBooking(store)
	svc := newTestService(store, showStart)

	if _, err := svc.Verify(context.Background(), *b.Token); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	if _, err := svc.Verify(context.Background(), *b.Token); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed, got %v", err)
	}
}

func TestVerifyConcurrentScansSingleAdmission(t *testing.T) {
	store := newFakeBookingStore()
	b := paidBooking(store)
	svc := newTestService(store, showStart)

	const gates = 16
	var wg sync.WaitGroup
	admitted := make(chan struct{}, gates)
	rejected := make(chan error, gates)

	for i := 0; i < gates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Verify(context.Background(), *b.Token); err != nil {
				rejected <- err
			} else {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)
	close(rejected)

	if got := len(admitted); got != 1 {
		t.Fatalf("admissions = %d, want exactly 1", got)
	}
	for err := range rejected {
		if !errors.Is(err, ErrAlreadyUsed) {
			t.Errorf("rejected scan got %v, want ErrAlreadyUsed", err)
		}
	}
}

func TestVerifyUnknownRuntimeUsesFallback(t *testing.T) {
	store := newFakeBookingStore()
	b := paidBooking(store)
	store.byToken[*b.Token].Show.Movie.RuntimeMinutes = 0

	// Inside the fallback window
	svc := newTestService(store, showStart.Add(3*time.Hour))
	if _, err := svc.Verify(context.Background(), *b.Token); err != nil {
		t.Fatalf("unexpected error inside fallback window: %v", err)
	}

	// Outside the fallback window
	store2 := newFakeBookingStore()
	b2 := paidBooking(store2)
	store2.byToken[*b2.Token].Show.Movie.RuntimeMinutes = 0
	svc2 := newTestService(store2, showStart.Add(5*time.Hour))
	if _, err := svc2.Verify(context.Background(), *b2.Token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired outside fallback window, got %v", err)
	}
}
