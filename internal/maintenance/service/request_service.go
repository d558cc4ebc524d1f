package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/repository"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/shared/workflow"
	"gorm.io/gorm"
)

// RequestService owns the request lifecycle: creation, queries and the
// single transition entry point. All workflow mutations go through
// ApplyTransition; nothing else writes workflow fields.
type RequestService struct {
	db        *gorm.DB
	repo      *repository.RequestRepository
	histories *repository.HistoryRepository
	notifier  *NotificationService
}

// NewRequestService creates a request service.
func NewRequestService(db *gorm.DB, repo *repository.RequestRepository, histories *repository.HistoryRepository, notifier *NotificationService) *RequestService {
	return &RequestService{db: db, repo: repo, histories: histories, notifier: notifier}
}

// CreateRequestInput carries the requester-supplied fields. Workflow
// fields are not accepted here; every new request starts at OPEN.
type CreateRequestInput struct {
	Title              string `json:"title" binding:"required"`
	ProblemDescription string `json:"problem_description" binding:"required"`
	Process            string `json:"process" binding:"required"`
	Equipment          string `json:"equipment" binding:"required"`
	GutGravity         int    `json:"gut_gravity" binding:"required"`
	GutUrgency         int    `json:"gut_urgency" binding:"required"`
	GutTendency        int    `json:"gut_tendency" binding:"required"`
	Photo              string `json:"photo"`
}

// Create opens a new request at OPEN and records the CREATED audit row.
func (s *RequestService) Create(ctx context.Context, in CreateRequestInput, requesterID uint) (*entity.MaintenanceRequest, error) {
	var missing []string
	for field, value := range map[string]string{
		"title":               in.Title,
		"problem_description": in.ProblemDescription,
		"process":             in.Process,
		"equipment":           in.Equipment,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, workflow.NewValidationError(missing...)
	}

	if _, err := workflow.GUTScore(in.GutGravity, in.GutUrgency, in.GutTendency); err != nil {
		return nil, err
	}

	req := &entity.MaintenanceRequest{
		Title:              in.Title,
		ProblemDescription: in.ProblemDescription,
		Process:            in.Process,
		Equipment:          in.Equipment,
		GutGravity:         in.GutGravity,
		GutUrgency:         in.GutUrgency,
		GutTendency:        in.GutTendency,
		Photo:              in.Photo,
		Status:             entity.StatusOpen,
		RequesterID:        requesterID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewRequestRepository(tx).Create(ctx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		history := &entity.RequestHistory{
			ID:        uuid.New().String(),
			RequestID: req.ID,
			Action:    entity.HistoryCreated,
			ActorID:   requesterID,
			ToStatus:  entity.StatusOpen,
		}
		if err := repository.NewHistoryRepository(tx).Create(ctx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		go s.notifier.NotifyRole(context.Background(), entity.RoleApproverProd, req, "request created")
	}

	return req, nil
}

// Get loads one request with associations.
func (s *RequestService) Get(ctx context.Context, id uint) (*entity.MaintenanceRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, workflow.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// History returns the audit trail for one request, oldest first.
func (s *RequestService) History(ctx context.Context, id uint) ([]entity.RequestHistory, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&entity.MaintenanceRequest{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check request: %w", err)
	}
	if count == 0 {
		return nil, workflow.ErrNotFound
	}
	return s.histories.ListByRequest(ctx, id)
}

// List returns one page of requests plus the total count.
func (s *RequestService) List(ctx context.Context, page, pageSize int, search string) ([]entity.MaintenanceRequest, int64, error) {
	return s.repo.List(ctx, page, pageSize, search)
}

// Board returns every request grouped by status for the Kanban view,
// highest GUT score first inside each column.
func (s *RequestService) Board(ctx context.Context) (map[string][]entity.MaintenanceRequest, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	board := make(map[string][]entity.MaintenanceRequest, len(entity.AllStatuses()))
	for _, status := range entity.AllStatuses() {
		board[status] = []entity.MaintenanceRequest{}
	}
	for _, req := range all {
		board[req.Status] = append(board[req.Status], req)
	}
	return board, nil
}

// CountByStatus returns per-status totals for the dashboard.
func (s *RequestService) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountByStatus(ctx)
}

// ApplyTransition is the single mutation entry point for workflow state.
// The read, validation and write run in one transaction, and the write is
// guarded on the status observed at read time: of two concurrent calls on
// the same record, the loser updates zero rows and gets
// workflow.ErrInvalidTransition.
func (s *RequestService) ApplyTransition(ctx context.Context, id uint, action workflow.Action, p workflow.Payload, actor workflow.Actor) (*entity.MaintenanceRequest, error) {
	var outcome *workflow.Outcome

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req entity.MaintenanceRequest
		if err := tx.Where("id = ?", id).First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return workflow.ErrNotFound
			}
			return fmt.Errorf("load request: %w", err)
		}
		fromStatus := req.Status

		var err error
		outcome, err = workflow.Decide(&req, action, p, actor)
		if err != nil {
			return err
		}

		if outcome.AssignTo != nil {
			if err := s.checkAssignee(tx, action, *outcome.AssignTo); err != nil {
				return err
			}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":     outcome.ToStatus,
			"updated_at": now,
		}
		if outcome.SetType != "" {
			updates["type"] = outcome.SetType
		}
		if outcome.AssignTo != nil {
			updates["assigned_to_id"] = *outcome.AssignTo
		}
		if outcome.Finish {
			updates["execution_description"] = p.ExecutionDescription
			updates["pm04_order"] = p.PM04Order
			updates["observation"] = p.Observation
			updates["technician_name"] = p.TechnicianName
			updates["finished_at"] = now
		}

		result := tx.Model(&entity.MaintenanceRequest{}).
			Where("id = ? AND status = ?", id, fromStatus).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("persist transition: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// A concurrent transition moved the record first.
			return workflow.ErrInvalidTransition
		}

		history := &entity.RequestHistory{
			ID:         uuid.New().String(),
			RequestID:  id,
			Action:     outcome.HistoryAction,
			ActorID:    actor.ID,
			FromStatus: fromStatus,
			ToStatus:   outcome.ToStatus,
			Comment:    p.Comment,
		}
		if err := repository.NewHistoryRepository(tx).Create(ctx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload request: %w", err)
	}

	if s.notifier != nil {
		go s.notifier.NotifyTransition(context.Background(), updated, outcome)
	}

	return updated, nil
}

// checkAssignee verifies the target user exists and holds a role that can
// receive the assignment for this action.
func (s *RequestService) checkAssignee(tx *gorm.DB, action workflow.Action, userID uint) error {
	var assignee entity.User
	if err := tx.Where("id = ?", userID).First(&assignee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if action == workflow.ActionApproveManager {
				return workflow.NewValidationError("engineer_id")
			}
			return workflow.NewValidationError("executor_id")
		}
		return fmt.Errorf("load assignee: %w", err)
	}

	switch action {
	case workflow.ActionApproveMaintenance:
		if assignee.Role != entity.RoleExecutor {
			return workflow.NewValidationError("executor_id")
		}
	case workflow.ActionApproveManager:
		if !entity.EngineerRole(assignee.Role) {
			return workflow.NewValidationError("engineer_id")
		}
	}
	return nil
}
