package service

import (
	"context"

	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/config"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles every service for dependency wiring.
type Services struct {
	Auth         *AuthService
	User         *UserService
	Request      *RequestService
	Notification *NotificationService
}

// NewServices creates the service collection.
func NewServices(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	notificationSvc := NewNotificationService(rdb, repos.EmailConfig, repos.User, logger)

	return &Services{
		Auth:         NewAuthService(repos.User, rdb, cfg),
		User:         NewUserService(repos.User),
		Request:      NewRequestService(db, repos.Request, repos.History, notificationSvc),
		Notification: notificationSvc,
	}
}

// UserService exposes user lookups for the presentation layer.
type UserService struct {
	repo *repository.UserRepository
}

// NewUserService creates a user service.
func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// ListByRole returns active users, optionally filtered by role, for the
// executor/engineer selection dropdowns.
func (s *UserService) ListByRole(ctx context.Context, role string) ([]entity.User, error) {
	return s.repo.ListByRole(ctx, role)
}

// Get loads one user.
func (s *UserService) Get(ctx context.Context, id uint) (*entity.User, error) {
	return s.repo.FindByID(ctx, id)
}
