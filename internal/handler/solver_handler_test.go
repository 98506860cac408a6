package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetabler-api/internal/dto"
	appErrors "github.com/noah-isme/timetabler-api/pkg/errors"
)

type stubOrchestrator struct {
	start    func(termID string, opts dto.SolveOptionsRequest) (*dto.StartSolveResponse, error)
	status   func(termID string) (*dto.SolveStatusResponse, error)
	stop     func(termID string) error
	solution func(termID string) (*dto.SolutionResponse, error)
	apply    func(termID string) (*dto.ApplyResponse, error)
}

func (s *stubOrchestrator) StartSolving(_ context.Context, termID string, opts dto.SolveOptionsRequest) (*dto.StartSolveResponse, error) {
	return s.start(termID, opts)
}

func (s *stubOrchestrator) GetStatus(_ context.Context, termID string) (*dto.SolveStatusResponse, error) {
	return s.status(termID)
}

func (s *stubOrchestrator) StopSolving(_ context.Context, termID string) error {
	return s.stop(termID)
}

func (s *stubOrchestrator) GetSolution(_ context.Context, termID string) (*dto.SolutionResponse, error) {
	return s.solution(termID)
}

func (s *stubOrchestrator) ApplySolution(_ context.Context, termID string) (*dto.ApplyResponse, error) {
	return s.apply(termID)
}

func newTestRouter(stub *stubOrchestrator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &SolverHandler{service: stub}
	h.Register(r.Group("/api/v1"))
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	body := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestStartSolveAccepted(t *testing.T) {
	stub := &stubOrchestrator{
		start: func(termID string, opts dto.SolveOptionsRequest) (*dto.StartSolveResponse, error) {
			assert.Equal(t, "term-1", termID)
			assert.Zero(t, opts)
			return &dto.StartSolveResponse{TermID: termID, State: dto.JobSolving, Lessons: 8}, nil
		},
	}
	w, body := doRequest(t, newTestRouter(stub), http.MethodPost, "/api/v1/terms/term-1/schedule/solve")

	assert.Equal(t, http.StatusAccepted, w.Code)
	var data dto.StartSolveResponse
	require.NoError(t, json.Unmarshal(body["data"], &data))
	assert.Equal(t, dto.JobSolving, data.State)
	assert.Equal(t, 8, data.Lessons)
}

func TestStartSolveConflict(t *testing.T) {
	stub := &stubOrchestrator{
		start: func(string, dto.SolveOptionsRequest) (*dto.StartSolveResponse, error) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a solver job for this term is already running")
		},
	}
	w, body := doRequest(t, newTestRouter(stub), http.MethodPost, "/api/v1/terms/term-1/schedule/solve")

	assert.Equal(t, http.StatusConflict, w.Code)
	var apiErr appErrors.Error
	require.NoError(t, json.Unmarshal(body["error"], &apiErr))
	assert.Equal(t, "CONFLICT", apiErr.Code)
}

func TestStartSolveWithOptionsBody(t *testing.T) {
	stub := &stubOrchestrator{
		start: func(termID string, opts dto.SolveOptionsRequest) (*dto.StartSolveResponse, error) {
			assert.Equal(t, 100, opts.MaxSteps)
			assert.Equal(t, 30, opts.TimeoutSeconds)
			return &dto.StartSolveResponse{TermID: termID, State: dto.JobSolving, Lessons: 8}, nil
		},
	}
	r := newTestRouter(stub)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/terms/term-1/schedule/solve",
		strings.NewReader(`{"maxSteps":100,"timeoutSeconds":30}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestStatusEndpoint(t *testing.T) {
	stub := &stubOrchestrator{
		status: func(termID string) (*dto.SolveStatusResponse, error) {
			return &dto.SolveStatusResponse{
				TermID: termID,
				State:  dto.JobSolved,
				Score:  &dto.ScorePayload{Hard: 0, Soft: -3},
			}, nil
		},
	}
	w, body := doRequest(t, newTestRouter(stub), http.MethodGet, "/api/v1/terms/term-1/schedule/status")

	assert.Equal(t, http.StatusOK, w.Code)
	var data dto.SolveStatusResponse
	require.NoError(t, json.Unmarshal(body["data"], &data))
	assert.Equal(t, dto.JobSolved, data.State)
	require.NotNil(t, data.Score)
	assert.Equal(t, -3, data.Score.Soft)
}

func TestStopEndpoint(t *testing.T) {
	stopped := ""
	stub := &stubOrchestrator{
		stop: func(termID string) error {
			stopped = termID
			return nil
		},
	}
	w, _ := doRequest(t, newTestRouter(stub), http.MethodPost, "/api/v1/terms/term-1/schedule/stop")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "term-1", stopped)
}

func TestStopEndpointUnknownTerm(t *testing.T) {
	stub := &stubOrchestrator{
		stop: func(string) error {
			return appErrors.Clone(appErrors.ErrNotFound, "term not found")
		},
	}
	w, _ := doRequest(t, newTestRouter(stub), http.MethodPost, "/api/v1/terms/missing/schedule/stop")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSolutionEndpoint(t *testing.T) {
	slot, room := "0-1", "r1"
	stub := &stubOrchestrator{
		solution: func(termID string) (*dto.SolutionResponse, error) {
			return &dto.SolutionResponse{
				TermID:   termID,
				Score:    dto.ScorePayload{Hard: 0, Soft: -2},
				Feasible: true,
				Assignments: []dto.AssignmentPayload{
					{LessonID: "l1", TimeSlotID: &slot, RoomID: &room},
				},
			}, nil
		},
	}
	w, body := doRequest(t, newTestRouter(stub), http.MethodGet, "/api/v1/terms/term-1/schedule/solution")

	assert.Equal(t, http.StatusOK, w.Code)
	var data dto.SolutionResponse
	require.NoError(t, json.Unmarshal(body["data"], &data))
	assert.True(t, data.Feasible)
	require.Len(t, data.Assignments, 1)
	assert.Equal(t, "l1", data.Assignments[0].LessonID)
}

func TestSolutionEndpointNotAvailable(t *testing.T) {
	stub := &stubOrchestrator{
		solution: func(string) (*dto.SolutionResponse, error) {
			return nil, appErrors.Clone(appErrors.ErrNotAvailable, "no solution available for this term")
		},
	}
	w, body := doRequest(t, newTestRouter(stub), http.MethodGet, "/api/v1/terms/term-1/schedule/solution")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var apiErr appErrors.Error
	require.NoError(t, json.Unmarshal(body["error"], &apiErr))
	assert.Equal(t, "NOT_AVAILABLE", apiErr.Code)
}

func TestApplyEndpoint(t *testing.T) {
	stub := &stubOrchestrator{
		apply: func(termID string) (*dto.ApplyResponse, error) {
			return &dto.ApplyResponse{TermID: termID, Applied: 8}, nil
		},
	}
	w, body := doRequest(t, newTestRouter(stub), http.MethodPost, "/api/v1/terms/term-1/schedule/apply")

	assert.Equal(t, http.StatusOK, w.Code)
	var data dto.ApplyResponse
	require.NoError(t, json.Unmarshal(body["data"], &data))
	assert.Equal(t, 8, data.Applied)
}
