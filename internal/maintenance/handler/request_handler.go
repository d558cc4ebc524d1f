package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/service"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/shared/workflow"
)

// RequestHandler exposes the request lifecycle over HTTP. It is a thin
// shell: every workflow decision happens in the service/workflow layers.
type RequestHandler struct {
	svc *service.RequestService
}

// NewRequestHandler creates a request handler.
func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

// Create opens a new request for the authenticated user.
// POST /api/v1/requests
func (h *RequestHandler) Create(c *gin.Context) {
	var in service.CreateRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	req, err := h.svc.Create(c.Request.Context(), in, GetUserID(c))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	Created(c, service.NewRequestView(*req))
}

// Get returns one request with history.
// GET /api/v1/requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}

	req, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	Success(c, service.NewRequestView(*req))
}

// History returns the audit trail of one request.
// GET /api/v1/requests/:id/history
func (h *RequestHandler) History(c *gin.Context) {
	id, ok := ParamID(c)
	if !ok {
		return
	}

	rows, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	Success(c, gin.H{"items": rows})
}

// List returns one page of requests.
// GET /api/v1/requests?search=&page=&page_size=
func (h *RequestHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	search := c.Query("search")

	requests, total, err := h.svc.List(c.Request.Context(), page, pageSize, search)
	if err != nil {
		InternalError(c, "list requests: "+err.Error())
		return
	}

	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: service.NewRequestViews(requests),
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// Board returns every request grouped by status for the Kanban view.
// GET /api/v1/requests/board
func (h *RequestHandler) Board(c *gin.Context) {
	board, err := h.svc.Board(c.Request.Context())
	if err != nil {
		InternalError(c, "load board: "+err.Error())
		return
	}

	columns := make(map[string][]service.RequestView, len(board))
	for status, reqs := range board {
		columns[status] = service.NewRequestViews(reqs)
	}
	Success(c, gin.H{"columns": columns})
}

// Dashboard returns per-status totals.
// GET /api/v1/requests/dashboard
func (h *RequestHandler) Dashboard(c *gin.Context) {
	counts, err := h.svc.CountByStatus(c.Request.Context())
	if err != nil {
		InternalError(c, "load dashboard: "+err.Error())
		return
	}
	Success(c, gin.H{"counts": counts})
}

// Transition dispatches one named workflow action.
// POST /api/v1/requests/:id/<action>
func (h *RequestHandler) Transition(action workflow.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ParamID(c)
		if !ok {
			return
		}

		var payload workflow.Payload
		if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
			BadRequest(c, "invalid request body: "+err.Error())
			return
		}

		actor := workflow.Actor{ID: GetUserID(c), Role: GetRole(c)}
		req, err := h.svc.ApplyTransition(c.Request.Context(), id, action, payload, actor)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}
		Success(c, service.NewRequestView(*req))
	}
}

// respondWorkflowError maps workflow error kinds to HTTP responses. The
// four kinds stay distinguishable: 404, 403, 409 and 400.
func respondWorkflowError(c *gin.Context, err error) {
	var ve *workflow.ValidationError
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		NotFound(c, "request not found")
	case errors.Is(err, workflow.ErrForbidden):
		Forbidden(c, "action not allowed for your role")
	case errors.Is(err, workflow.ErrInvalidTransition):
		Conflict(c, "request status does not allow this action")
	case errors.As(err, &ve):
		BadRequest(c, ve.Error())
	default:
		InternalError(c, err.Error())
	}
}
