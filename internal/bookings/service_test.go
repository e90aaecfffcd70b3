package bookings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"cinetix/internal/notifications"
	"cinetix/internal/payments"
	"cinetix/internal/scheduler"
	"cinetix/internal/seatmap"
	"cinetix/internal/shared/config"
	"cinetix/internal/shows"
	"cinetix/internal/users"
	"cinetix/pkg/logger"

	"github.com/google/uuid"
)

// fakeStore implements both the bookings Repository and the seatmap
// Repository over in-memory maps, honoring the same atomicity contract the
// real transactions provide: a claim set either lands whole or not at all.
type fakeStore struct {
	mu       sync.Mutex
	shows    map[uuid.UUID]*shows.Show
	bookings map[uuid.UUID]Booking
	claims   map[string]seatmap.SeatClaim
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		shows:    make(map[uuid.UUID]*shows.Show),
		bookings: make(map[uuid.UUID]Booking),
		claims:   make(map[string]seatmap.SeatClaim),
	}
}

func claimKey(showID uuid.UUID, label string) string {
	return showID.String() + "|" + label
}

func (s *fakeStore) addShow(price int64, start time.Time) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.shows[id] = &shows.Show{ID: id, StartTime: start, Price: price}
	return id
}

func (s *fakeStore) CreateBookingWithClaims(ctx context.Context, booking *Booking, labels []string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	show, ok := s.shows[booking.ShowID]
	if !ok {
		return ErrShowNotFound
	}
	if show.HasStarted(now) {
		return ErrShowStarted
	}

	for _, label := range labels {
		if _, taken := s.claims[claimKey(booking.ShowID, label)]; taken {
			return ErrSeatConflict
		}
	}

	booking.ID = uuid.New()
	booking.Amount = show.Price * int64(len(labels))
	booking.SetSeatLabels(labels)
	booking.CreatedAt = now

	for _, label := range labels {
		s.claims[claimKey(booking.ShowID, label)] = seatmap.SeatClaim{
			ShowID:    booking.ShowID,
			SeatLabel: label,
			UserID:    booking.UserID,
			BookingID: booking.ID,
		}
	}
	s.bookings[booking.ID] = *booking
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	b.Show = s.shows[b.ShowID]
	return &b, nil
}

func (s *fakeStore) GetByToken(ctx context.Context, token string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.Token != nil && *b.Token == token {
			b.Show = s.shows[b.ShowID]
			return &b, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (s *fakeStore) SetPaymentRef(ctx context.Context, id uuid.UUID, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[id]; ok {
		b.PaymentRef = ref
		s.bookings[id] = b
	}
	return nil
}

func (s *fakeStore) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.IsPaid {
		return false, nil
	}
	b.IsPaid = true
	b.PaymentRef = ""
	tok := uuid.New().String()
	b.Token = &tok
	s.bookings[id] = b
	return true, nil
}

func (s *fakeStore) ReleaseIfUnpaid(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.IsPaid {
		return false, nil
	}
	delete(s.bookings, id)
	for key, claim := range s.claims {
		if claim.BookingID == id {
			delete(s.claims, key)
		}
	}
	return true, nil
}

func (s *fakeStore) MarkCheckedIn(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.bookings {
		if b.Token != nil && *b.Token == token && b.IsPaid && !b.CheckedIn {
			b.CheckedIn = true
			s.bookings[id] = b
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) DeleteWithClaims(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bookings, id)
	for key, claim := range s.claims {
		if claim.BookingID == id {
			delete(s.claims, key)
		}
	}
	return nil
}

func (s *fakeStore) GetUserBookings(ctx context.Context, userID string) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			b.Show = s.shows[b.ShowID]
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) GetAllBookings(ctx context.Context, limit, offset int) ([]Booking, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Booking
	for _, b := range s.bookings {
		out = append(out, b)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (s *fakeStore) PaidBookingStats(ctx context.Context) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count, revenue int64
	for _, b := range s.bookings {
		if b.IsPaid {
			count++
			revenue += b.Amount
		}
	}
	return count, revenue, nil
}

// seatmap.Repository side

func (s *fakeStore) IsAvailable(ctx context.Context, showID uuid.UUID, labels []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, label := range labels {
		if _, taken := s.claims[claimKey(showID, label)]; taken {
			return false, nil
		}
	}
	return true, nil
}

func (s *fakeStore) OccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var labels []string
	for _, claim := range s.claims {
		if claim.ShowID == showID {
			labels = append(labels, claim.SeatLabel)
		}
	}
	sort.Strings(labels)
	return labels, nil
}

type fakeGateway struct {
	fail bool
}

func (g *fakeGateway) CreateSession(ctx context.Context, bookingID uuid.UUID, amount int64, currency string) (*payments.Session, error) {
	if g.fail {
		return nil, errors.New("provider down")
	}
	return &payments.Session{Ref: "cs_test", URL: "https://checkout.local/pay/cs_test"}, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []*notifications.EmailNotification
}

func (p *fakePublisher) Publish(ctx context.Context, n *notifications.EmailNotification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) byType(t notifications.NotificationType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, n := range p.sent {
		if n.Type == t {
			count++
		}
	}
	return count
}

type fakeUsers struct{}

func (fakeUsers) Upsert(ctx context.Context, user *users.User) error { return nil }

func (fakeUsers) GetByID(ctx context.Context, id string) (*users.User, error) {
	return &users.User{ID: id, Email: "guest@example.com", Name: "Guest"}, nil
}

func testConfig() config.BookingConfig {
	return config.BookingConfig{
		HoldDuration:       10 * time.Minute,
		MaxSeatsPerBooking: 5,
		EntryWindowBefore:  time.Hour,
		Currency:           "USD",
	}
}

func newTestService(t *testing.T, gateway payments.Gateway) (*service, *fakeStore, *fakePublisher, *scheduler.MemoryScheduler) {
	t.Helper()
	store := newFakeStore()
	publisher := &fakePublisher{}
	sched := scheduler.NewMemoryScheduler()
	svc := &service{
		repo:              store,
		seats:             store,
		users:             fakeUsers{},
		gateway:           gateway,
		scheduler:         sched,
		publisher:         publisher,
		cfg:               testConfig(),
		logger:            logger.GetDefault(),
		now:               func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		scheduleRetryBase: time.Millisecond,
		scheduleRetryMax:  10 * time.Millisecond,
	}
	return svc, store, publisher, sched
}

// flakyScheduler fails the first few registrations before delegating to the
// in-memory scheduler.
type flakyScheduler struct {
	mu       sync.Mutex
	inner    *scheduler.MemoryScheduler
	failures int
}

func (f *flakyScheduler) Schedule(ctx context.Context, at time.Time, bookingID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("deadline store unavailable")
	}
	return f.inner.Schedule(ctx, at, bookingID)
}

func futureShow(store *fakeStore) uuid.UUID {
	return store.addShow(1500, time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC))
}

func TestReserveValidation(t *testing.T) {
	svc, store, _, _ := newTestService(t, &fakeGateway{})
	showID := futureShow(store)

	cases := []struct {
		name  string
		seats []string
	}{
		{"no seats", nil},
		{"too many seats", []string{"A1", "A2", "A3", "A4", "A5", "A6"}},
		{"bad label", []string{"1A"}},
		{"lowercase label", []string{"a1"}},
		{"duplicate label", []string{"A1", "A1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
				ShowID: showID.String(),
				Seats:  tc.seats,
			})
			if !errors.Is(err, ErrInvalidSeats) {
				t.Fatalf("expected ErrInvalidSeats, got %v", err)
			}
		})
	}
}

func TestReserveUnknownShow(t *testing.T) {
	svc, _, _, _ := newTestService(t, &fakeGateway{})

	_, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
		ShowID: uuid.New().String(),
		Seats:  []string{"A1"},
	})
	if !errors.Is(err, ErrShowNotFound) {
		t.Fatalf("expected ErrShowNotFound, got %v", err)
	}
}

func TestReserveStartedShow(t *testing.T) {
	svc, store, _, _ := newTestService(t, &fakeGateway{})
	showID := store.addShow(1500, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC))

	_, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"A1"},
	})
	if !errors.Is(err, ErrShowStarted) {
		t.Fatalf("expected ErrShowStarted, got %v", err)
	}
}

func TestReserveSuccess(t *testing.T) {
	svc, store, _, sched := newTestService(t, &fakeGateway{})
	showID := futureShow(store)

	resp, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"A1", "A2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Amount != 3000 {
		t.Errorf("amount = %d, want 3000", resp.Amount)
	}
	if resp.PaymentURL == "" {
		t.Error("expected a payment URL")
	}
	if resp.ExpiresAt == nil {
		t.Error("expected an expiry time")
	} else if got := resp.ExpiresAt.Sub(svc.now()); got != 10*time.Minute {
		t.Errorf("hold length = %v, want 10m", got)
	}
	if resp.Ticket != nil {
		t.Error("unpaid booking must not expose a ticket")
	}

	occupied, _ := store.OccupiedSeats(context.Background(), showID)
	if strings.Join(occupied, ",") != "A1,A2" {
		t.Errorf("occupied = %v, want [A1 A2]", occupied)
	}
	if sched.Pending() != 1 {
		t.Errorf("pending deadlines = %d, want 1", sched.Pending())
	}
}

func TestReserveSeatConflict(t *testing.T) {
	svc, store, _, _ := newTestService(t, &fakeGateway{})
	showID := futureShow(store)

	if _, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"A1", "A2"},
	}); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	_, err := svc.Reserve(context.Background(), "user-2", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"A2", "A3"},
	})
	if !errors.Is(err, ErrSeatConflict) {
		t.Fatalf("expected ErrSeatConflict, got %v", err)
	}

	// The losing request must not leave partial claims behind
	occupied, _ := store.OccupiedSeats(context.Background(), showID)
	if strings.Join(occupied, ",") != "A1,A2" {
		t.Errorf("occupied = %v, want [A1 A2]", occupied)
	}
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	svc, store, _, _ := newTestService(t, &fakeGateway{})
	showID := futureShow(store)

	const contenders = 32
	var wg sync.WaitGroup
	successes := make(chan uuid.UUID, contenders)
	conflicts := make(chan error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			resp, err := svc.Reserve(context.Background(), fmt.Sprintf("user-%d", n), CreateBookingRequest{
				ShowID: showID.String(),
				Seats:  []string{"B7"},
			})
			if err != nil {
				conflicts <- err
				return
			}
			successes <- resp.ID
		}(i)
	}
	wg.Wait()
	close(successes)
	close(conflicts)

	if got := len(successes); got != 1 {
		t.Fatalf("winners = %d, want exactly 1", got)
	}
	for err := range conflicts {
		if !errors.Is(err, ErrSeatConflict) {
			t.Errorf("loser got %v, want ErrSeatConflict", err)
		}
	}

	occupied, _ := store.OccupiedSeats(context.Background(), showID)
	if len(occupied) != 1 || occupied[0] != "B7" {
		t.Errorf("occupied = %v, want [B7]", occupied)
	}
}

func TestConcurrentReserveDisjointSeats(t *testing.T) {
	svc, store, _, _ := newTestService(t, &fakeGateway{})
	showID := futureShow(store)

	const rows = 8
	var wg sync.WaitGroup
	errs := make(chan error, rows)

	for i := 0; i < rows; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), fmt.Sprintf("user-%d", n), CreateBookingRequest{
				ShowID: showID.String(),
				Seats:  []string{fmt.Sprintf("%c1", 'A'+n), fmt.Sprintf("%c2", 'A'+n)},
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("disjoint reservation failed: %v", err)
		}
	}

	occupied, _ := store.OccupiedSeats(context.Background(), showID)
	if len(occupied) != rows*2 {
		t.Errorf("occupied count = %d, want %d", len(occupied), rows*2)
	}
}

func TestReserveGatewayRollback(t *testing.T) {
	svc, store, _, sched := newTestService(t, &fakeGateway{fail: true})
	showID := futureShow(store)

	_, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"C4"},
	})
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}

	occupied, _ := store.OccupiedSeats(context.Background(), showID)
	if len(occupied) != 0 {
		t.Errorf("seats not released after gateway failure: %v", occupied)
	}
	if sched.Pending() != 0 {
		t.Errorf("no expiry should be scheduled after rollback, got %d", sched.Pending())
	}

	// The seat is immediately reusable
	if _, err := svc.Reserve(context.Background(), "user-2", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"C4"},
	}); !errors.Is(err, ErrGateway) {
		t.Fatalf("expected ErrGateway on retry too, got %v", err)
	}
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	svc, store, publisher, _ := newTestService(t, &fakeGateway{})
	showID := futureShow(store)

	resp, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"D1"},
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	// Before payment there is no ticket credential, only a checkout session
	pending, err := store.GetByID(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if pending.Token != nil {
		t.Error("unpaid booking must not carry a ticket token")
	}
	if pending.PaymentRef == "" {
		t.Error("unpaid booking should reference its checkout session")
	}

	first, err := svc.ConfirmPayment(context.Background(), resp.ID, payments.StatusSuccess)
	if err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	if !first.IsPaid {
		t.Error("booking not marked paid")
	}
	if first.Ticket == nil || first.Ticket.Token == "" {
		t.Fatal("paid booking must expose its ticket token")
	}

	// The paid transition settles the session and mints the token
	settled, err := store.GetByID(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if settled.PaymentRef != "" {
		t.Errorf("payment ref not cleared after confirmation: %q", settled.PaymentRef)
	}
	if settled.Token == nil {
		t.Fatal("paid booking lost its ticket token")
	}

	second, err := svc.ConfirmPayment(context.Background(), resp.ID, payments.StatusSuccess)
	if err != nil {
		t.Fatalf("repeat confirm failed: %v", err)
	}
	if !second.IsPaid {
		t.Error("repeat confirm lost the paid state")
	}
	if second.Ticket.Token != first.Ticket.Token {
		t.Error("ticket token changed across confirmations")
	}

	if got := publisher.byType(notifications.TypeBookingConfirmed); got != 1 {
		t.Errorf("confirmation notifications = %d, want 1", got)
	}
}

func TestReserveSchedulerOutageRecovers(t *testing.T) {
	store := newFakeStore()
	inner := scheduler.NewMemoryScheduler()
	flaky := &flakyScheduler{inner: inner, failures: 4}
	svc := &service{
		repo:              store,
		seats:             store,
		users:             fakeUsers{},
		gateway:           &fakeGateway{},
		scheduler:         flaky,
		publisher:         &fakePublisher{},
		cfg:               testConfig(),
		logger:            logger.GetDefault(),
		now:               func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		scheduleRetryBase: time.Millisecond,
		scheduleRetryMax:  10 * time.Millisecond,
	}
	showID := futureShow(store)

	resp, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"K1"},
	})
	if err != nil {
		t.Fatalf("reserve failed despite scheduler outage: %v", err)
	}
	if resp.ExpiresAt == nil {
		t.Fatal("expected an expiry time")
	}

	// The background retry must land the deadline once the store recovers,
	// otherwise the hold would never release its seats.
	deadline := time.Now().Add(2 * time.Second)
	for inner.Pending() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("hold deadline never registered, pending = %d", inner.Pending())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestConfirmPaymentUnknownBooking(t *testing.T) {
	svc, _, _, _ := newTestService(t, &fakeGateway{})

	_, err := svc.ConfirmPayment(context.Background(), uuid.New(), payments.StatusSuccess)
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestConfirmPaymentNonSuccessKeepsHold(t *testing.T) {
	svc, store, publisher, _ := newTestService(t, &fakeGateway{})
	showID := futureShow(store)

	resp, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"D2"},
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	after, err := svc.ConfirmPayment(context.Background(), resp.ID, payments.StatusFailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.IsPaid {
		t.Error("failed payment must not mark the booking paid")
	}

	occupied, _ := store.OccupiedSeats(context.Background(), showID)
	if len(occupied) != 1 {
		t.Errorf("hold must persist until expiry, occupied = %v", occupied)
	}
	if got := publisher.byType(notifications.TypeBookingConfirmed); got != 0 {
		t.Errorf("no confirmation expected, got %d", got)
	}
}

func TestExpireReleasesUnpaid(t *testing.T) {
	svc, store, publisher, _ := newTestService(t, &fakeGateway{})
	showID := futureShow(store)

	resp, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"E1", "E2"},
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	if err := svc.OnExpire(context.Background(), resp.ID); err != nil {
		t.Fatalf("expire failed: %v", err)
	}

	occupied, _ := store.OccupiedSeats(context.Background(), showID)
	if len(occupied) != 0 {
		t.Errorf("seats not released: %v", occupied)
	}
	if _, err := store.GetByID(context.Background(), resp.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("booking should be gone, got %v", err)
	}
	if got := publisher.byType(notifications.TypeBookingReleased); got != 1 {
		t.Errorf("release notifications = %d, want 1", got)
	}

	// Second delivery of the same deadline is a no-op
	if err := svc.OnExpire(context.Background(), resp.ID); err != nil {
		t.Fatalf("repeat expire errored: %v", err)
	}
	if got := publisher.byType(notifications.TypeBookingReleased); got != 1 {
		t.Errorf("repeat expire sent another notification, total %d", got)
	}
}

func TestExpirePaidBookingIsNoop(t *testing.T) {
	svc, store, publisher, _ := newTestService(t, &fakeGateway{})
	showID := futureShow(store)

	resp, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"F1"},
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if _, err := svc.ConfirmPayment(context.Background(), resp.ID, payments.StatusSuccess); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if err := svc.OnExpire(context.Background(), resp.ID); err != nil {
		t.Fatalf("expire errored: %v", err)
	}

	booking, err := store.GetByID(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("paid booking was deleted: %v", err)
	}
	if !booking.IsPaid {
		t.Error("paid flag lost")
	}
	occupied, _ := store.OccupiedSeats(context.Background(), showID)
	if len(occupied) != 1 {
		t.Errorf("paid seats must stay claimed, occupied = %v", occupied)
	}
	if got := publisher.byType(notifications.TypeBookingReleased); got != 0 {
		t.Errorf("no release notification expected, got %d", got)
	}
}

func TestConcurrentExpireAndConfirm(t *testing.T) {
	for i := 0; i < 20; i++ {
		svc, store, _, _ := newTestService(t, &fakeGateway{})
		showID := futureShow(store)

		resp, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
			ShowID: showID.String(),
			Seats:  []string{"G1"},
		})
		if err != nil {
			t.Fatalf("reserve failed: %v", err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.OnExpire(context.Background(), resp.ID)
		}()
		go func() {
			defer wg.Done()
			svc.ConfirmPayment(context.Background(), resp.ID, payments.StatusSuccess)
		}()
		wg.Wait()

		booking, err := store.GetByID(context.Background(), resp.ID)
		occupied, _ := store.OccupiedSeats(context.Background(), showID)

		switch {
		case err == nil && booking.IsPaid && len(occupied) == 1:
			// confirm won
		case errors.Is(err, ErrBookingNotFound) && len(occupied) == 0:
			// expiry won
		default:
			t.Fatalf("inconsistent terminal state: booking=%+v err=%v occupied=%v", booking, err, occupied)
		}
	}
}

func TestGetUserBookings(t *testing.T) {
	svc, store, _, _ := newTestService(t, &fakeGateway{})
	showID := futureShow(store)

	for _, seats := range [][]string{{"H1"}, {"H2"}} {
		if _, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
			ShowID: showID.String(),
			Seats:  seats,
		}); err != nil {
			t.Fatalf("reserve failed: %v", err)
		}
	}
	if _, err := svc.Reserve(context.Background(), "user-2", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"H3"},
	}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	mine, err := svc.GetUserBookings(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("user bookings = %d, want 2", len(mine))
	}
}

func TestPaidBookingStats(t *testing.T) {
	svc, store, _, _ := newTestService(t, &fakeGateway{})
	showID := futureShow(store)

	paid, err := svc.Reserve(context.Background(), "user-1", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"J1", "J2"},
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if _, err := svc.Reserve(context.Background(), "user-2", CreateBookingRequest{
		ShowID: showID.String(),
		Seats:  []string{"J3"},
	}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if _, err := svc.ConfirmPayment(context.Background(), paid.ID, payments.StatusSuccess); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	count, revenue, err := svc.PaidBookingStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("paid count = %d, want 1", count)
	}
	if revenue != 3000 {
		t.Errorf("revenue = %d, want 3000", revenue)
	}
}
