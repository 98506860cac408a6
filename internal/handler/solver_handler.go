package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetabler-api/internal/dto"
	"github.com/noah-isme/timetabler-api/internal/service"
	appErrors "github.com/noah-isme/timetabler-api/pkg/errors"
	"github.com/noah-isme/timetabler-api/pkg/response"
)

type solverOrchestrator interface {
	StartSolving(ctx context.Context, termID string, opts dto.SolveOptionsRequest) (*dto.StartSolveResponse, error)
	GetStatus(ctx context.Context, termID string) (*dto.SolveStatusResponse, error)
	StopSolving(ctx context.Context, termID string) error
	GetSolution(ctx context.Context, termID string) (*dto.SolutionResponse, error)
	ApplySolution(ctx context.Context, termID string) (*dto.ApplyResponse, error)
}

// SolverHandler exposes the solver job control surface.
type SolverHandler struct {
	service solverOrchestrator
}

// NewSolverHandler constructs the handler.
func NewSolverHandler(svc *service.SolverService) *SolverHandler {
	return &SolverHandler{service: svc}
}

// Register mounts the job control routes on the term-scoped group.
func (h *SolverHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/terms/:termId/schedule")
	g.POST("/solve", h.Start)
	g.GET("/status", h.Status)
	g.POST("/stop", h.Stop)
	g.GET("/solution", h.Solution)
	g.POST("/apply", h.Apply)
}

// Start godoc
// @Summary Start solving the timetable for a term
// @Tags Solver
// @Produce json
// @Param termId path string true "Term ID"
// @Param options body dto.SolveOptionsRequest false "Optional budget overrides"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /terms/{termId}/schedule/solve [post]
func (h *SolverHandler) Start(c *gin.Context) {
	termID, ok := termParam(c)
	if !ok {
		return
	}
	var opts dto.SolveOptionsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid solve options payload"))
			return
		}
	}
	result, err := h.service.StartSolving(c.Request.Context(), termID, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, result)
}

// Status godoc
// @Summary Get solver job status and best score
// @Tags Solver
// @Produce json
// @Param termId path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{termId}/schedule/status [get]
func (h *SolverHandler) Status(c *gin.Context) {
	termID, ok := termParam(c)
	if !ok {
		return
	}
	result, err := h.service.GetStatus(c.Request.Context(), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Stop godoc
// @Summary Request cooperative termination of a running solve
// @Tags Solver
// @Produce json
// @Param termId path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /terms/{termId}/schedule/stop [post]
func (h *SolverHandler) Stop(c *gin.Context) {
	termID, ok := termParam(c)
	if !ok {
		return
	}
	if err := h.service.StopSolving(c.Request.Context(), termID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"termId": termID, "stopping": true})
}

// Solution godoc
// @Summary Get the cached best solution's assignments
// @Tags Solver
// @Produce json
// @Param termId path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /terms/{termId}/schedule/solution [get]
func (h *SolverHandler) Solution(c *gin.Context) {
	termID, ok := termParam(c)
	if !ok {
		return
	}
	result, err := h.service.GetSolution(c.Request.Context(), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Apply godoc
// @Summary Persist the cached best solution's assignments
// @Tags Solver
// @Produce json
// @Param termId path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /terms/{termId}/schedule/apply [post]
func (h *SolverHandler) Apply(c *gin.Context) {
	termID, ok := termParam(c)
	if !ok {
		return
	}
	result, err := h.service.ApplySolution(c.Request.Context(), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

func termParam(c *gin.Context) (string, bool) {
	termID := c.Param("termId")
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId is required"))
		return "", false
	}
	return termID, true
}
