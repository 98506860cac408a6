package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetabler-api/internal/domain"
	"github.com/noah-isme/timetabler-api/internal/dto"
	"github.com/noah-isme/timetabler-api/internal/mapper"
	"github.com/noah-isme/timetabler-api/internal/models"
	"github.com/noah-isme/timetabler-api/internal/solver"
	"github.com/noah-isme/timetabler-api/internal/store"
	appErrors "github.com/noah-isme/timetabler-api/pkg/errors"
)

type snapshotLoader interface {
	Load(ctx context.Context, termID string) (*models.TermSnapshot, error)
}

type assignmentWriter interface {
	ApplyBatch(ctx context.Context, termID string, assignments []models.LessonAssignment) error
}

type scoreMirror interface {
	Publish(ctx context.Context, termID string, score domain.Score)
	Delete(ctx context.Context, termID string)
}

// SolverConfig bounds solver jobs started by the service.
type SolverConfig struct {
	SolveTimeout  time.Duration
	MaxSteps      int
	MaxUnimproved int
	Weights       solver.Weights
}

type solveJob struct {
	state  dto.JobState
	cancel context.CancelFunc
}

// SolverService owns the per-term job registry and orchestrates background
// optimization runs: start, status, stop, solution retrieval and write-back.
type SolverService struct {
	snapshots   snapshotLoader
	assignments assignmentWriter
	mapper      *mapper.Mapper
	store       *store.SolutionStore
	mirror      scoreMirror
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         SolverConfig
	baseCtx     context.Context

	mu        sync.Mutex
	jobs      map[string]*solveJob
	termLocks map[string]*sync.Mutex
}

// NewSolverService wires the orchestrator dependencies.
func NewSolverService(
	snapshots snapshotLoader,
	assignments assignmentWriter,
	m *mapper.Mapper,
	solutions *store.SolutionStore,
	mirror scoreMirror,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg SolverConfig,
) *SolverService {
	if m == nil {
		m = mapper.New(nil)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SolveTimeout <= 0 {
		cfg.SolveTimeout = 2 * time.Minute
	}
	zero := solver.Weights{}
	if cfg.Weights == zero {
		cfg.Weights = solver.DefaultWeights()
	}
	return &SolverService{
		snapshots:   snapshots,
		assignments: assignments,
		mapper:      m,
		store:       solutions,
		mirror:      mirror,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		baseCtx:     context.Background(),
		jobs:        make(map[string]*solveJob),
		termLocks:   make(map[string]*sync.Mutex),
	}
}

// WithBaseContext derives worker contexts from ctx so in-flight solves are
// cancelled when the process shuts down.
func (s *SolverService) WithBaseContext(ctx context.Context) *SolverService {
	if ctx != nil {
		s.baseCtx = ctx
	}
	return s
}

// termLock returns the per-term mutex serializing state transitions so a
// concurrent apply and start for the same term cannot interleave.
func (s *SolverService) termLock(termID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.termLocks[termID] == nil {
		s.termLocks[termID] = &sync.Mutex{}
	}
	return s.termLocks[termID]
}

func (s *SolverService) jobState(termID string) dto.JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[termID]; ok {
		return job.state
	}
	return dto.JobNotSolving
}

func (s *SolverService) setJobState(termID string, state dto.JobState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[termID]; ok {
		job.state = state
	}
}

// StartSolving loads the term snapshot, validates it, clears any stale cache
// entry and launches a background optimization worker. Returns Conflict when
// a job for the term is already solving.
func (s *SolverService) StartSolving(ctx context.Context, termID string, opts dto.SolveOptionsRequest) (*dto.StartSolveResponse, error) {
	if err := s.validator.Struct(opts); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid solve options payload")
	}

	lock := s.termLock(termID)
	lock.Lock()
	defer lock.Unlock()

	if s.jobState(termID) == dto.JobSolving {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a solver job for this term is already running")
	}

	snap, err := s.snapshots.Load(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term snapshot")
	}

	sol := s.mapper.BuildSolution(*snap)
	if len(sol.Lessons) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term has no lessons to schedule")
	}

	s.store.Delete(termID)
	s.mirror.Delete(ctx, termID)

	timeout := s.cfg.SolveTimeout
	if opts.TimeoutSeconds > 0 {
		timeout = time.Duration(opts.TimeoutSeconds) * time.Second
	}
	budget := solver.Config{MaxSteps: s.cfg.MaxSteps, MaxUnimproved: s.cfg.MaxUnimproved}
	if opts.MaxSteps > 0 {
		budget.MaxSteps = opts.MaxSteps
	}
	if opts.MaxUnimproved > 0 {
		budget.MaxUnimproved = opts.MaxUnimproved
	}

	workerCtx, cancel := context.WithTimeout(s.baseCtx, timeout)
	s.mu.Lock()
	s.jobs[termID] = &solveJob{state: dto.JobSolving, cancel: cancel}
	s.mu.Unlock()

	go s.runWorker(workerCtx, cancel, termID, sol, budget)

	if s.metrics != nil {
		s.metrics.JobStarted()
	}
	s.logger.Info("solver job started",
		zap.String("term_id", termID),
		zap.Int("lessons", len(sol.Lessons)),
	)
	return &dto.StartSolveResponse{TermID: termID, State: dto.JobSolving, Lessons: len(sol.Lessons)}, nil
}

// runWorker executes one optimization run. Panics are caught at this boundary
// and surface as a FAILED terminal state instead of crashing the process.
func (s *SolverService) runWorker(ctx context.Context, cancel context.CancelFunc, termID string, sol *domain.Solution, budget solver.Config) {
	defer cancel()
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.setJobState(termID, dto.JobFailed)
			s.logger.Error("solver worker panicked",
				zap.String("term_id", termID),
				zap.Any("panic", r),
			)
			if s.metrics != nil {
				s.metrics.JobFinished("failed", time.Since(started))
			}
		}
	}()

	opt := solver.New(s.cfg.Weights, budget, s.logger)

	publish := func(snapshot *domain.Solution) {
		if s.store.Publish(termID, snapshot) {
			s.mirror.Publish(context.Background(), termID, snapshot.Score)
			if s.metrics != nil {
				s.metrics.ImprovementPublished(termID, snapshot.Score)
			}
		}
	}

	best, err := opt.Solve(ctx, sol, publish)
	outcome := "solved"
	switch {
	case err != nil:
		s.setJobState(termID, dto.JobFailed)
		outcome = "failed"
		s.logger.Error("solver run failed", zap.String("term_id", termID), zap.Error(err))
	case ctx.Err() != nil:
		s.setJobState(termID, dto.JobTerminatedEarly)
		outcome = "terminated_early"
	default:
		s.setJobState(termID, dto.JobSolved)
	}
	if s.metrics != nil {
		s.metrics.JobFinished(outcome, time.Since(started))
	}
	if best != nil {
		s.logger.Info("solver job finished",
			zap.String("term_id", termID),
			zap.String("outcome", outcome),
			zap.Int("hard", best.Score.Hard),
			zap.Int("soft", best.Score.Soft),
			zap.Duration("took", time.Since(started)),
		)
	}
}

// GetStatus reports the job state plus the best published score, if any.
func (s *SolverService) GetStatus(ctx context.Context, termID string) (*dto.SolveStatusResponse, error) {
	resp := &dto.SolveStatusResponse{TermID: termID, State: s.jobState(termID)}
	if entry, ok := s.store.Get(termID); ok {
		resp.Score = &dto.ScorePayload{Hard: entry.Solution.Score.Hard, Soft: entry.Solution.Score.Soft}
	}
	return resp, nil
}

// StopSolving requests cooperative early termination. The worker observes the
// cancellation at its next step boundary; the last published best solution is
// retained. Stopping a term that is not solving is a no-op.
func (s *SolverService) StopSolving(ctx context.Context, termID string) error {
	s.mu.Lock()
	job, ok := s.jobs[termID]
	s.mu.Unlock()
	if !ok {
		if _, err := s.snapshots.Load(ctx, termID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "term not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term snapshot")
		}
		return nil
	}
	if job.state == dto.JobSolving {
		job.cancel()
		s.logger.Info("solver stop requested", zap.String("term_id", termID))
	}
	return nil
}

// GetSolution returns the cached best solution's assignments.
func (s *SolverService) GetSolution(ctx context.Context, termID string) (*dto.SolutionResponse, error) {
	entry, ok := s.store.Get(termID)
	if !ok {
		if err := s.ensureTermKnown(ctx, termID); err != nil {
			return nil, err
		}
		return nil, appErrors.Clone(appErrors.ErrNotAvailable, "no solution available for this term")
	}
	return s.solutionResponse(termID, entry), nil
}

// ApplySolution extracts the cached assignments, hands them to the
// collaborator for transactional write-back and discards the cache entry.
func (s *SolverService) ApplySolution(ctx context.Context, termID string) (*dto.ApplyResponse, error) {
	lock := s.termLock(termID)
	lock.Lock()
	defer lock.Unlock()

	if s.jobState(termID) == dto.JobSolving {
		return nil, appErrors.Clone(appErrors.ErrConflict, "solver is still running for this term")
	}
	entry, ok := s.store.Get(termID)
	if !ok {
		if err := s.ensureTermKnown(ctx, termID); err != nil {
			return nil, err
		}
		return nil, appErrors.Clone(appErrors.ErrNotAvailable, "no solution available to apply")
	}

	assignments := s.mapper.ExtractAssignments(entry.Solution)
	if err := s.assignments.ApplyBatch(ctx, termID, assignments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist lesson assignments")
	}

	s.store.Delete(termID)
	s.mirror.Delete(ctx, termID)
	s.mu.Lock()
	delete(s.jobs, termID)
	s.mu.Unlock()

	s.logger.Info("solution applied",
		zap.String("term_id", termID),
		zap.Int("assignments", len(assignments)),
		zap.Int("hard", entry.Solution.Score.Hard),
		zap.Int("soft", entry.Solution.Score.Soft),
	)
	return &dto.ApplyResponse{TermID: termID, Applied: len(assignments)}, nil
}

func (s *SolverService) ensureTermKnown(ctx context.Context, termID string) error {
	if _, err := s.snapshots.Load(ctx, termID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term snapshot")
	}
	return nil
}

func (s *SolverService) solutionResponse(termID string, entry store.Entry) *dto.SolutionResponse {
	assignments := s.mapper.ExtractAssignments(entry.Solution)
	payload := make([]dto.AssignmentPayload, 0, len(assignments))
	for _, a := range assignments {
		payload = append(payload, dto.AssignmentPayload{LessonID: a.LessonID, TimeSlotID: a.TimeSlotID, RoomID: a.RoomID})
	}
	return &dto.SolutionResponse{
		TermID:      termID,
		Score:       dto.ScorePayload{Hard: entry.Solution.Score.Hard, Soft: entry.Solution.Score.Soft},
		Feasible:    entry.Solution.Score.Feasible(),
		Assignments: payload,
		UpdatedAt:   entry.UpdatedAt,
	}
}
