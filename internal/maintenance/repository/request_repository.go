package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
	"gorm.io/gorm"
)

// RequestRepository persists maintenance requests.
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a request repository.
func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new request.
func (r *RequestRepository) Create(ctx context.Context, req *entity.MaintenanceRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// FindByID loads one request with its requester, assignee and history.
func (r *RequestRepository) FindByID(ctx context.Context, id uint) (*entity.MaintenanceRequest, error) {
	var req entity.MaintenanceRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("AssignedTo").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("History.Actor").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// List returns one page of requests ordered by id descending, plus the
// total count for the filter. Search matches case-insensitively against
// title, the numeric id, or the status display label.
func (r *RequestRepository) List(ctx context.Context, page, pageSize int, search string) ([]entity.MaintenanceRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.MaintenanceRequest{})

	if search != "" {
		query = query.Where(searchClause(r.db, search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []entity.MaintenanceRequest
	err := query.
		Preload("Requester").
		Preload("AssignedTo").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// searchClause builds the title/id/status-label match. LOWER(...) LIKE is
// used instead of ILIKE so the same query runs on Postgres and on the
// sqlite test database.
func searchClause(db *gorm.DB, search string) *gorm.DB {
	clause := db.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")

	if id, err := strconv.ParseUint(search, 10, 64); err == nil {
		clause = clause.Or("id = ?", uint(id))
	}

	var matching []string
	for _, status := range entity.AllStatuses() {
		if strings.Contains(strings.ToLower(entity.StatusLabel(status)), strings.ToLower(search)) {
			matching = append(matching, status)
		}
	}
	if len(matching) > 0 {
		clause = clause.Or("status IN ?", matching)
	}
	return clause
}

// ListAll returns every request ordered for board rendering: highest GUT
// score first within the newest-first tiebreak. Dedicated unpaginated
// query for the Kanban view.
func (r *RequestRepository) ListAll(ctx context.Context) ([]entity.MaintenanceRequest, error) {
	var requests []entity.MaintenanceRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("AssignedTo").
		Order("gut_gravity * gut_urgency * gut_tendency DESC, id DESC").
		Find(&requests).Error
	return requests, err
}

// CountByStatus returns per-status request totals.
func (r *RequestRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&entity.MaintenanceRequest{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(entity.AllStatuses()))
	for _, status := range entity.AllStatuses() {
		counts[status] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
