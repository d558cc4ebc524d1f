package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/repository"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/shared/workflow"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NotificationChannel is the redis pub/sub channel the mailer/SSE workers
// subscribe to.
const NotificationChannel = "demandas:notifications"

// NotificationEvent is the message published after a creation or
// transition. Recipient is resolved from EmailConfig for role-queue
// events, or from the assignee's account for assignment events.
type NotificationEvent struct {
	RequestID   uint      `json:"request_id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	TargetRole  string    `json:"target_role,omitempty"`
	TargetUser  uint      `json:"target_user,omitempty"`
	Recipient   string    `json:"recipient,omitempty"`
	Subject     string    `json:"subject"`
	At          time.Time `json:"at"`
}

// NotificationService publishes workflow events. Failures are logged and
// never block or fail the transition that triggered them.
type NotificationService struct {
	rdb       *redis.Client
	emailRepo *repository.EmailConfigRepository
	userRepo  *repository.UserRepository
	logger    *zap.Logger
}

// NewNotificationService creates a notification service. rdb may be nil;
// every publish then becomes a log-only no-op.
func NewNotificationService(rdb *redis.Client, emailRepo *repository.EmailConfigRepository, userRepo *repository.UserRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{rdb: rdb, emailRepo: emailRepo, userRepo: userRepo, logger: logger}
}

// NotifyRole publishes an event for the mailbox configured for a role
// queue (e.g. production approvers when a request is created).
func (s *NotificationService) NotifyRole(ctx context.Context, role string, req *entity.MaintenanceRequest, subject string) {
	event := NotificationEvent{
		RequestID:   req.ID,
		Title:       req.Title,
		Status:      req.Status,
		StatusLabel: entity.StatusLabel(req.Status),
		TargetRole:  role,
		Subject:     subject,
		At:          time.Now(),
	}

	if cfg, err := s.emailRepo.FindByKey(ctx, role); err == nil {
		event.Recipient = cfg.Email
	} else {
		s.logger.Warn("no email config for role, publishing without recipient",
			zap.String("role", role),
			zap.Uint("request_id", req.ID),
		)
	}

	s.publish(ctx, event)
}

// NotifyUser publishes an event addressed to one user, used when a
// request is assigned to an executor or engineer.
func (s *NotificationService) NotifyUser(ctx context.Context, userID uint, req *entity.MaintenanceRequest, subject string) {
	event := NotificationEvent{
		RequestID:   req.ID,
		Title:       req.Title,
		Status:      req.Status,
		StatusLabel: entity.StatusLabel(req.Status),
		TargetUser:  userID,
		Subject:     subject,
		At:          time.Now(),
	}

	if user, err := s.userRepo.FindByID(ctx, userID); err == nil {
		event.Recipient = user.Email
	}

	s.publish(ctx, event)
}

// NotifyTransition routes the post-transition notification: to the next
// role queue when the outcome names one, to the new assignee when the
// transition assigned somebody, otherwise nothing.
func (s *NotificationService) NotifyTransition(ctx context.Context, req *entity.MaintenanceRequest, outcome *workflow.Outcome) {
	if outcome == nil {
		return
	}
	if outcome.NotifyRole != "" {
		s.NotifyRole(ctx, outcome.NotifyRole, req, "request waiting in your queue")
		return
	}
	if outcome.AssignTo != nil {
		s.NotifyUser(ctx, *outcome.AssignTo, req, "request assigned to you")
	}
}

func (s *NotificationService) publish(ctx context.Context, event NotificationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal notification", zap.Error(err))
		return
	}

	if s.rdb == nil {
		s.logger.Info("notification (no redis)", zap.ByteString("event", payload))
		return
	}

	if err := s.rdb.Publish(ctx, NotificationChannel, payload).Err(); err != nil {
		s.logger.Error("publish notification",
			zap.Error(err),
			zap.Uint("request_id", event.RequestID),
		)
	}
}
