package repository

import (
	"context"
	"errors"

	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmailConfigRepository persists the role-to-mailbox notification mapping.
type EmailConfigRepository struct {
	db *gorm.DB
}

// NewEmailConfigRepository creates an email config repository.
func NewEmailConfigRepository(db *gorm.DB) *EmailConfigRepository {
	return &EmailConfigRepository{db: db}
}

// FindByKey loads the config for one role key.
func (r *EmailConfigRepository) FindByKey(ctx context.Context, key string) (*entity.EmailConfig, error) {
	var cfg entity.EmailConfig
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// List returns every configured role mapping.
func (r *EmailConfigRepository) List(ctx context.Context) ([]entity.EmailConfig, error) {
	var cfgs []entity.EmailConfig
	err := r.db.WithContext(ctx).Order("key ASC").Find(&cfgs).Error
	return cfgs, err
}

// Upsert creates or replaces the mapping for cfg.Key.
func (r *EmailConfigRepository) Upsert(ctx context.Context, cfg *entity.EmailConfig) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "description", "updated_at"}),
		}).
		Create(cfg).Error
}
