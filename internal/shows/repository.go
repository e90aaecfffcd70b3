package shows

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, show *Show) error
	GetByID(ctx context.Context, id uuid.UUID) (*Show, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]Show, error)
	ListPast(ctx context.Context, now time.Time) ([]Show, error)
	CountUsers(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, show *Show) error {
	return r.db.WithContext(ctx).Create(show).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	var show Show
	err := r.db.WithContext(ctx).
		Preload("Movie").
		First(&show, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &show, nil
}

func (r *repository) ListUpcoming(ctx context.Context, now time.Time) ([]Show, error) {
	var shows []Show
	err := r.db.WithContext(ctx).
		Preload("Movie").
		Where("start_time >= ?", now).
		Order("start_time ASC").
		Find(&shows).Error
	return shows, err
}

func (r *repository) ListPast(ctx context.Context, now time.Time) ([]Show, error) {
	var shows []Show
	err := r.db.WithContext(ctx).
		Preload("Movie").
		Where("start_time < ?", now).
		Order("start_time DESC").
		Find(&shows).Error
	return shows, err
}

func (r *repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("users").Count(&count).Error
	return count, err
}
