package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetabler-api/internal/domain"
	"github.com/noah-isme/timetabler-api/internal/dto"
	"github.com/noah-isme/timetabler-api/internal/models"
	"github.com/noah-isme/timetabler-api/internal/store"
	appErrors "github.com/noah-isme/timetabler-api/pkg/errors"
)

type stubSnapshots struct {
	snapshots map[string]*models.TermSnapshot
	err       error
}

func (s *stubSnapshots) Load(_ context.Context, termID string) (*models.TermSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	snap, ok := s.snapshots[termID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return snap, nil
}

type stubWriter struct {
	mu      sync.Mutex
	applied [][]models.LessonAssignment
	err     error
}

func (w *stubWriter) ApplyBatch(_ context.Context, _ string, assignments []models.LessonAssignment) error {
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	w.applied = append(w.applied, assignments)
	w.mu.Unlock()
	return nil
}

type stubMirror struct {
	mu        sync.Mutex
	published int
	deleted   int
}

func (m *stubMirror) Publish(_ context.Context, _ string, _ domain.Score) {
	m.mu.Lock()
	m.published++
	m.mu.Unlock()
}

func (m *stubMirror) Delete(_ context.Context, _ string) {
	m.mu.Lock()
	m.deleted++
	m.mu.Unlock()
}

func intPtr(v int) *int { return &v }

func solvableSnapshot(termID string) *models.TermSnapshot {
	snap := &models.TermSnapshot{
		TermID: termID,
		Rooms: []models.RoomRecord{
			{ID: "r1", Name: "Room 1", Capacity: intPtr(30), Active: true},
			{ID: "r2", Name: "Room 2", Capacity: intPtr(30), Active: true},
		},
		Teachers: []models.TeacherRecord{
			{ID: "t1", FullName: "Teacher One", Abbreviation: "T1", Active: true},
		},
		Qualifications: []models.TeacherQualificationRecord{
			{TeacherID: "t1", SubjectID: "math", CanTeachGrades: []int64{1}},
		},
		Classes: []models.SchoolClassRecord{
			{ID: "ca", Name: "1a", GradeLevel: 1, StudentCount: intPtr(24), Active: true},
		},
		Subjects: []models.SubjectRecord{{ID: "math", Name: "Math", Abbreviation: "MA"}},
		Lessons: []models.LessonRecord{
			{ID: "l1", ClassID: "ca", TeacherID: "t1", SubjectID: "math", WeekPattern: "EVERY"},
			{ID: "l2", ClassID: "ca", TeacherID: "t1", SubjectID: "math", WeekPattern: "EVERY"},
		},
	}
	for d := 0; d < 2; d++ {
		for p := 1; p <= 3; p++ {
			snap.TimeSlots = append(snap.TimeSlots, models.TimeSlotRecord{
				ID: domain.SlotKey(d, p), DayOfWeek: d, Period: p,
			})
		}
	}
	return snap
}

type serviceFixture struct {
	svc       *SolverService
	snapshots *stubSnapshots
	writer    *stubWriter
	mirror    *stubMirror
	store     *store.SolutionStore
}

func newServiceFixture(snapshots map[string]*models.TermSnapshot) *serviceFixture {
	snaps := &stubSnapshots{snapshots: snapshots}
	writer := &stubWriter{}
	mirror := &stubMirror{}
	solutions := store.NewSolutionStore(time.Minute, nil)
	svc := NewSolverService(snaps, writer, nil, solutions, mirror, nil, nil, nil, SolverConfig{
		SolveTimeout:  5 * time.Second,
		MaxSteps:      500,
		MaxUnimproved: 100,
	})
	return &serviceFixture{svc: svc, snapshots: snaps, writer: writer, mirror: mirror, store: solutions}
}

func (f *serviceFixture) waitForState(t *testing.T, termID string, state dto.JobState) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.svc.jobState(termID) == state
	}, 5*time.Second, 10*time.Millisecond, "job never reached state %s", state)
}

func TestStartSolvingUnknownTerm(t *testing.T) {
	f := newServiceFixture(nil)
	_, err := f.svc.StartSolving(context.Background(), "missing", dto.SolveOptionsRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStartSolvingRejectsTermWithoutLessons(t *testing.T) {
	snap := solvableSnapshot("term-1")
	snap.Lessons = nil
	f := newServiceFixture(map[string]*models.TermSnapshot{"term-1": snap})

	_, err := f.svc.StartSolving(context.Background(), "term-1", dto.SolveOptionsRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStartSolvingRejectsInvalidOptions(t *testing.T) {
	f := newServiceFixture(map[string]*models.TermSnapshot{"term-1": solvableSnapshot("term-1")})

	_, err := f.svc.StartSolving(context.Background(), "term-1", dto.SolveOptionsRequest{MaxSteps: -5})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStartSolvingRejectsConcurrentJob(t *testing.T) {
	f := newServiceFixture(map[string]*models.TermSnapshot{"term-1": solvableSnapshot("term-1")})
	f.svc.mu.Lock()
	f.svc.jobs["term-1"] = &solveJob{state: dto.JobSolving, cancel: func() {}}
	f.svc.mu.Unlock()

	_, err := f.svc.StartSolving(context.Background(), "term-1", dto.SolveOptionsRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestSolveLifecycle(t *testing.T) {
	f := newServiceFixture(map[string]*models.TermSnapshot{"term-1": solvableSnapshot("term-1")})

	resp, err := f.svc.StartSolving(context.Background(), "term-1", dto.SolveOptionsRequest{})
	require.NoError(t, err)
	assert.Equal(t, dto.JobSolving, resp.State)
	assert.Equal(t, 2, resp.Lessons)

	f.waitForState(t, "term-1", dto.JobSolved)

	status, err := f.svc.GetStatus(context.Background(), "term-1")
	require.NoError(t, err)
	assert.Equal(t, dto.JobSolved, status.State)
	require.NotNil(t, status.Score)
	assert.Equal(t, 0, status.Score.Hard, "two lessons over six slots must be conflict free")

	solution, err := f.svc.GetSolution(context.Background(), "term-1")
	require.NoError(t, err)
	assert.True(t, solution.Feasible)
	require.Len(t, solution.Assignments, 2)
	for _, a := range solution.Assignments {
		assert.NotNil(t, a.TimeSlotID)
		assert.NotNil(t, a.RoomID)
	}

	f.mirror.mu.Lock()
	published := f.mirror.published
	f.mirror.mu.Unlock()
	assert.Greater(t, published, 0, "improvements are mirrored")
}

func TestShutdownContextTerminatesRunningWorkers(t *testing.T) {
	f := newServiceFixture(map[string]*models.TermSnapshot{"term-1": solvableSnapshot("term-1")})
	base, cancel := context.WithCancel(context.Background())
	f.svc.WithBaseContext(base)
	cancel()

	_, err := f.svc.StartSolving(context.Background(), "term-1", dto.SolveOptionsRequest{})
	require.NoError(t, err)

	f.waitForState(t, "term-1", dto.JobTerminatedEarly)
}

func TestStatusForUnknownTermReportsNotSolving(t *testing.T) {
	f := newServiceFixture(nil)
	status, err := f.svc.GetStatus(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, dto.JobNotSolving, status.State)
	assert.Nil(t, status.Score)
}

func TestStopSolving(t *testing.T) {
	f := newServiceFixture(map[string]*models.TermSnapshot{"term-1": solvableSnapshot("term-1")})

	err := f.svc.StopSolving(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	assert.NoError(t, f.svc.StopSolving(context.Background(), "term-1"), "stopping an idle known term is a no-op")

	cancelled := false
	f.svc.mu.Lock()
	f.svc.jobs["term-1"] = &solveJob{state: dto.JobSolving, cancel: func() { cancelled = true }}
	f.svc.mu.Unlock()

	require.NoError(t, f.svc.StopSolving(context.Background(), "term-1"))
	assert.True(t, cancelled)
}

func TestGetSolutionWithoutCache(t *testing.T) {
	f := newServiceFixture(map[string]*models.TermSnapshot{"term-1": solvableSnapshot("term-1")})

	_, err := f.svc.GetSolution(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.GetSolution(context.Background(), "term-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotAvailable))
}

func cachedSolution(termID string) *domain.Solution {
	sol := domain.NewSolution(termID)
	class := domain.NewSchoolClass("ca", "1a", 1, 0, "")
	teacher := domain.NewTeacher("t1", "Teacher One", "T1", 0)
	subject := domain.NewSubject("math", "Math", "MA")
	slot := domain.NewTimeSlot("0-1", 0, 1, "", "", false)
	room := domain.NewRoom("r1", "r1", 0, nil)
	lesson := domain.NewLesson("l1", class, teacher, subject, domain.WeekEvery)
	lesson.TimeSlot = slot
	lesson.Room = room
	sol.Lessons = []*domain.Lesson{lesson}
	return sol
}

func TestApplySolution(t *testing.T) {
	f := newServiceFixture(map[string]*models.TermSnapshot{"term-1": solvableSnapshot("term-1")})
	f.store.Publish("term-1", cachedSolution("term-1"))

	resp, err := f.svc.ApplySolution(context.Background(), "term-1")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Applied)

	f.writer.mu.Lock()
	require.Len(t, f.writer.applied, 1)
	require.Len(t, f.writer.applied[0], 1)
	assert.Equal(t, "l1", f.writer.applied[0][0].LessonID)
	f.writer.mu.Unlock()

	_, ok := f.store.Get("term-1")
	assert.False(t, ok, "cache entry is discarded after apply")
	assert.Equal(t, dto.JobNotSolving, f.svc.jobState("term-1"), "job registry resets after apply")
	f.mirror.mu.Lock()
	assert.Greater(t, f.mirror.deleted, 0)
	f.mirror.mu.Unlock()
}

func TestApplySolutionWhileSolving(t *testing.T) {
	f := newServiceFixture(map[string]*models.TermSnapshot{"term-1": solvableSnapshot("term-1")})
	f.store.Publish("term-1", cachedSolution("term-1"))
	f.svc.mu.Lock()
	f.svc.jobs["term-1"] = &solveJob{state: dto.JobSolving, cancel: func() {}}
	f.svc.mu.Unlock()

	_, err := f.svc.ApplySolution(context.Background(), "term-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestApplySolutionWithoutCache(t *testing.T) {
	f := newServiceFixture(map[string]*models.TermSnapshot{"term-1": solvableSnapshot("term-1")})

	_, err := f.svc.ApplySolution(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.ApplySolution(context.Background(), "term-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotAvailable))
}

func TestApplySolutionWriteError(t *testing.T) {
	f := newServiceFixture(map[string]*models.TermSnapshot{"term-1": solvableSnapshot("term-1")})
	f.store.Publish("term-1", cachedSolution("term-1"))
	f.writer.err = assert.AnError

	_, err := f.svc.ApplySolution(context.Background(), "term-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))

	_, ok := f.store.Get("term-1")
	assert.True(t, ok, "failed write-back keeps the cached solution")
}
