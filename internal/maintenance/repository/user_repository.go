package repository

import (
	"context"
	"errors"

	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
	"gorm.io/gorm"
)

// UserRepository persists operator accounts.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID loads one user.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsername loads one user by login name.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update saves user changes.
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// ListByRole returns active users, optionally filtered by role. Used by
// the presentation layer to populate executor/engineer pickers.
func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]entity.User, error) {
	query := r.db.WithContext(ctx).Where("status = ?", "active")
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var users []entity.User
	err := query.Order("name ASC").Find(&users).Error
	return users, err
}
