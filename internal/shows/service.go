package shows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinetix/internal/movies"
	"cinetix/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovieService is the slice of the movies service the show flow needs
type MovieService interface {
	EnsureMovie(ctx context.Context, catalogID int64) (*movies.Movie, error)
}

// BookingStatsProvider supplies aggregate booking numbers for the dashboard
// (implemented by the bookings service; declared here to avoid a package cycle)
type BookingStatsProvider interface {
	PaidBookingStats(ctx context.Context) (count int64, revenue int64, err error)
}

type Service interface {
	CreateShow(ctx context.Context, req CreateShowRequest) (*Show, error)
	GetShow(ctx context.Context, id string) (*Show, error)
	ListUpcoming(ctx context.Context) ([]ShowResponse, error)
	ListPast(ctx context.Context) ([]ShowResponse, error)
	Dashboard(ctx context.Context) (*DashboardResponse, error)
}

type service struct {
	repo         Repository
	movieService MovieService
	stats        BookingStatsProvider
	now          func() time.Time
}

func NewService(repo Repository, movieService MovieService, stats BookingStatsProvider) Service {
	return &service{
		repo:         repo,
		movieService: movieService,
		stats:        stats,
		now:          time.Now,
	}
}

// CreateShow schedules a screening, persisting the catalog movie locally first
func (s *service) CreateShow(ctx context.Context, req CreateShowRequest) (*Show, error) {
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start time: %w", err)
	}
	if startTime.Before(s.now()) {
		return nil, fmt.Errorf("start time must be in the future")
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}

	movie, err := s.movieService.EnsureMovie(ctx, req.CatalogMovieID)
	if err != nil {
		if errors.Is(err, movies.ErrCatalogNotFound) {
			return nil, fmt.Errorf("movie not found in catalog")
		}
		return nil, fmt.Errorf("failed to resolve movie: %w", err)
	}

	show := &Show{
		MovieID:   movie.ID,
		StartTime: startTime,
		Price:     req.Price,
	}
	if err := s.repo.Create(ctx, show); err != nil {
		return nil, fmt.Errorf("failed to create show: %w", err)
	}

	show.Movie = movie
	logger.GetDefault().LogShowCreated(ctx, show.ID.String(), movie.ID.String())
	return show, nil
}

func (s *service) GetShow(ctx context.Context, id string) (*Show, error) {
	showID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid show ID: %w", err)
	}

	show, err := s.repo.GetByID(ctx, showID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("show not found")
		}
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	return show, nil
}

func (s *service) ListUpcoming(ctx context.Context) ([]ShowResponse, error) {
	upcoming, err := s.repo.ListUpcoming(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming shows: %w", err)
	}
	return toShowResponses(upcoming), nil
}

func (s *service) ListPast(ctx context.Context) ([]ShowResponse, error) {
	past, err := s.repo.ListPast(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list past shows: %w", err)
	}
	return toShowResponses(past), nil
}

// Dashboard aggregates paid bookings, revenue, active shows and user count
func (s *service) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	count, revenue, err := s.stats.PaidBookingStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	active, err := s.repo.ListUpcoming(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list active shows: %w", err)
	}

	userCount, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	return &DashboardResponse{
		TotalPaidBookings: count,
		TotalRevenue:      revenue,
		ActiveShows:       toShowResponses(active),
		TotalUsers:        userCount,
	}, nil
}

func toShowResponses(list []Show) []ShowResponse {
	responses := make([]ShowResponse, 0, len(list))
	for i := range list {
		responses = append(responses, toShowResponse(&list[i]))
	}
	return responses
}
