package movies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinetix/pkg/cache"
	"cinetix/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const nowPlayingCacheKey = "cinetix:movies:now_playing"

type Service interface {
	NowPlaying(ctx context.Context) ([]CatalogMovie, error)
	// EnsureMovie persists the catalog movie locally and returns the record.
	EnsureMovie(ctx context.Context, catalogID int64) (*Movie, error)
	GetMovie(ctx context.Context, id string) (*Movie, error)
}

type service struct {
	repo         Repository
	catalog      CatalogClient
	cacheService cache.Service
	cacheTTL     time.Duration
}

func NewService(repo Repository, catalog CatalogClient, cacheService cache.Service, cacheTTL time.Duration) Service {
	return &service{
		repo:         repo,
		catalog:      catalog,
		cacheService: cacheService,
		cacheTTL:     cacheTTL,
	}
}

// NowPlaying proxies the provider's listing with a cache-aside read
func (s *service) NowPlaying(ctx context.Context) ([]CatalogMovie, error) {
	if s.cacheService != nil {
		var cached []CatalogMovie
		if err := s.cacheService.Get(ctx, nowPlayingCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	listing, err := s.catalog.NowPlaying(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch now playing movies: %w", err)
	}

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, nowPlayingCacheKey, listing, s.cacheTTL); err != nil {
			logger.GetDefault().Debug("failed to cache now playing listing", "error", err)
		}
	}

	return listing, nil
}

func (s *service) EnsureMovie(ctx context.Context, catalogID int64) (*Movie, error) {
	movie, err := s.repo.GetByCatalogID(ctx, catalogID)
	if err == nil {
		return movie, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up movie: %w", err)
	}

	detail, err := s.catalog.MovieDetail(ctx, catalogID)
	if err != nil {
		if errors.Is(err, ErrCatalogNotFound) {
			return nil, ErrCatalogNotFound
		}
		return nil, fmt.Errorf("failed to fetch movie detail: %w", err)
	}

	movie = &Movie{
		CatalogID:      detail.CatalogID,
		Title:          detail.Title,
		Overview:       detail.Overview,
		PosterURL:      detail.PosterPath,
		BackdropURL:    detail.BackdropPath,
		RuntimeMinutes: detail.RuntimeMinutes,
		ReleaseDate:    detail.ReleaseDate,
	}
	if err := s.repo.Upsert(ctx, movie); err != nil {
		return nil, fmt.Errorf("failed to persist movie: %w", err)
	}

	return s.repo.GetByCatalogID(ctx, catalogID)
}

func (s *service) GetMovie(ctx context.Context, id string) (*Movie, error) {
	movieID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid movie ID: %w", err)
	}

	movie, err := s.repo.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("movie not found")
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return movie, nil
}
