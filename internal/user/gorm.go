package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository expects a *gorm.DB opened with TranslateError enabled so
// unique violations surface as gorm.ErrDuplicatedKey.
func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, u *User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)))
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *gormRepository) first(tx *gorm.DB) (*User, error) {
	var u User
	err := tx.First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
