package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/repository"
)

// EmailConfigHandler manages the role-to-mailbox notification mapping.
// Routes are gated to MANAGER_MAINT via middleware.RequireRole.
type EmailConfigHandler struct {
	repo *repository.EmailConfigRepository
}

// NewEmailConfigHandler creates an email config handler.
func NewEmailConfigHandler(repo *repository.EmailConfigRepository) *EmailConfigHandler {
	return &EmailConfigHandler{repo: repo}
}

// List returns every configured mapping.
// GET /api/v1/email-configs
func (h *EmailConfigHandler) List(c *gin.Context) {
	cfgs, err := h.repo.List(c.Request.Context())
	if err != nil {
		InternalError(c, "list email configs: "+err.Error())
		return
	}
	Success(c, gin.H{"items": cfgs})
}

// UpsertRequest is the create-or-replace payload.
type UpsertRequest struct {
	Key         string `json:"key" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Description string `json:"description"`
}

// Upsert creates or replaces the mapping for one role key.
// PUT /api/v1/email-configs
func (h *EmailConfigHandler) Upsert(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "key and a valid email are required")
		return
	}

	cfg := &entity.EmailConfig{
		Key:         req.Key,
		Email:       req.Email,
		Description: req.Description,
	}
	if err := h.repo.Upsert(c.Request.Context(), cfg); err != nil {
		InternalError(c, "save email config: "+err.Error())
		return
	}
	Success(c, cfg)
}
