package movies

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Upsert(ctx context.Context, movie *Movie) error
	GetByID(ctx context.Context, id uuid.UUID) (*Movie, error)
	GetByCatalogID(ctx context.Context, catalogID int64) (*Movie, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Upsert inserts the movie or refreshes metadata for an existing catalog id
func (r *repository) Upsert(ctx context.Context, movie *Movie) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "catalog_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "overview", "poster_url", "backdrop_url", "runtime_minutes", "release_date", "updated_at"}),
	}).Create(movie).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Movie, error) {
	var movie Movie
	err := r.db.WithContext(ctx).First(&movie, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *repository) GetByCatalogID(ctx context.Context, catalogID int64) (*Movie, error) {
	var movie Movie
	err := r.db.WithContext(ctx).First(&movie, "catalog_id = ?", catalogID).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}
