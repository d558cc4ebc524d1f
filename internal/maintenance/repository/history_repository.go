package repository

import (
	"context"

	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
	"gorm.io/gorm"
)

// HistoryRepository persists the request audit trail.
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a history repository.
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts one audit row.
func (r *HistoryRepository) Create(ctx context.Context, h *entity.RequestHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// ListByRequest returns the audit trail for one request, oldest first.
func (r *HistoryRepository) ListByRequest(ctx context.Context, requestID uint) ([]entity.RequestHistory, error) {
	var rows []entity.RequestHistory
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
