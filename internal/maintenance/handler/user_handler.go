package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/repository"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/service"
)

// UserHandler exposes user lookups for the executor/engineer pickers.
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler creates a user handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List returns active users, optionally filtered by role.
// GET /api/v1/users?role=EXECUTOR
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.ListByRole(c.Request.Context(), c.Query("role"))
	if err != nil {
		InternalError(c, "list users: "+err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}

// Get returns one user.
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}

	user, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "user not found")
			return
		}
		InternalError(c, "load user: "+err.Error())
		return
	}
	Success(c, user)
}
