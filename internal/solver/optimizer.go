package solver

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetabler-api/internal/domain"
)

// Config bounds one optimization run.
type Config struct {
	MaxSteps      int
	MaxUnimproved int
	Seed          int64
}

// Optimizer assigns time slots and rooms to lessons with a constructive seed
// pass followed by local search over random move and swap steps. It is a
// best-effort optimizer, not an exact solver.
type Optimizer struct {
	weights Weights
	cfg     Config
	logger  *zap.Logger
}

// New builds an optimizer with sane budget defaults.
func New(weights Weights, cfg Config, logger *zap.Logger) *Optimizer {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 20000
	}
	if cfg.MaxUnimproved <= 0 {
		cfg.MaxUnimproved = 2000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{weights: weights, cfg: cfg, logger: logger}
}

// Solve mutates sol in place until the step budget, the unimproved cutoff or
// ctx expires. publish receives an immutable snapshot on every strict
// improvement and once more with the final best; snapshots are monotonically
// non-worsening. Cancellation is observed at step boundaries.
func (o *Optimizer) Solve(ctx context.Context, sol *domain.Solution, publish func(*domain.Solution)) (*domain.Solution, error) {
	if len(sol.Lessons) == 0 {
		return nil, fmt.Errorf("optimizer: solution has no lessons")
	}
	seed := o.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	slots := assignableSlots(sol.TimeSlots)
	eval := NewEvaluator(o.weights, sol)

	o.construct(ctx, eval, sol, slots)

	cur := eval.Score()
	sol.Score = cur
	best := sol.Snapshot()
	if publish != nil {
		publish(best)
	}

	steps, unimproved := 0, 0
	for steps < o.cfg.MaxSteps && unimproved < o.cfg.MaxUnimproved {
		if ctx.Err() != nil {
			break
		}
		steps++

		var next domain.Score
		var revert func()
		if rng.Intn(3) == 0 && len(sol.Lessons) > 1 {
			next, revert = o.swapStep(eval, sol, rng)
		} else {
			next, revert = o.moveStep(eval, sol, slots, rng)
		}
		if revert == nil {
			continue
		}
		if next.Compare(cur) < 0 {
			revert()
			unimproved++
			continue
		}
		improved := next.BetterThan(cur)
		cur = next
		if improved && cur.BetterThan(best.Score) {
			sol.Score = cur
			best = sol.Snapshot()
			if publish != nil {
				publish(best)
			}
			unimproved = 0
		} else {
			unimproved++
		}
	}

	sol.Score = cur
	if publish != nil {
		publish(best)
	}
	o.logger.Debug("optimizer finished",
		zap.String("term_id", sol.TermID),
		zap.Int("steps", steps),
		zap.Int("hard", best.Score.Hard),
		zap.Int("soft", best.Score.Soft),
	)
	return best, nil
}

// construct seeds every unassigned lesson at its locally best slot/room pair,
// most constrained lessons first.
func (o *Optimizer) construct(ctx context.Context, eval *Evaluator, sol *domain.Solution, slots []*domain.TimeSlot) {
	if len(slots) == 0 || len(sol.Rooms) == 0 {
		return
	}
	pending := make([]*domain.Lesson, 0, len(sol.Lessons))
	for _, l := range sol.Lessons {
		if !l.Assigned() {
			pending = append(pending, l)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		ri, rj := allowedRoomCount(sol, pending[i]), allowedRoomCount(sol, pending[j])
		if ri != rj {
			return ri < rj
		}
		return len(pending[i].Teacher.Blocked) > len(pending[j].Teacher.Blocked)
	})

	for _, l := range pending {
		if ctx.Err() != nil {
			return
		}
		var bestSlot *domain.TimeSlot
		var bestRoom *domain.Room
		bestScore := domain.Score{}
		found := false
		for _, slot := range slots {
			for _, room := range sol.Rooms {
				score := eval.Move(l, slot, room)
				if !found || score.BetterThan(bestScore) {
					bestScore, bestSlot, bestRoom, found = score, slot, room, true
				}
			}
		}
		eval.Move(l, bestSlot, bestRoom)
	}
}

// moveStep relocates one random lesson to a random slot/room pair. The
// returned revert restores the previous placement.
func (o *Optimizer) moveStep(eval *Evaluator, sol *domain.Solution, slots []*domain.TimeSlot, rng *rand.Rand) (domain.Score, func()) {
	if len(slots) == 0 || len(sol.Rooms) == 0 {
		return domain.Score{}, nil
	}
	l := sol.Lessons[rng.Intn(len(sol.Lessons))]
	prevSlot, prevRoom := l.TimeSlot, l.Room
	slot := slots[rng.Intn(len(slots))]
	room := sol.Rooms[rng.Intn(len(sol.Rooms))]
	if slot == prevSlot && room == prevRoom {
		return domain.Score{}, nil
	}
	next := eval.Move(l, slot, room)
	return next, func() { eval.Move(l, prevSlot, prevRoom) }
}

// swapStep exchanges the placements of two random lessons.
func (o *Optimizer) swapStep(eval *Evaluator, sol *domain.Solution, rng *rand.Rand) (domain.Score, func()) {
	a := sol.Lessons[rng.Intn(len(sol.Lessons))]
	b := sol.Lessons[rng.Intn(len(sol.Lessons))]
	if a == b || !a.Assigned() || !b.Assigned() {
		return domain.Score{}, nil
	}
	aSlot, aRoom := a.TimeSlot, a.Room
	bSlot, bRoom := b.TimeSlot, b.Room
	eval.Move(a, bSlot, bRoom)
	next := eval.Move(b, aSlot, aRoom)
	return next, func() {
		eval.Move(a, aSlot, aRoom)
		eval.Move(b, bSlot, bRoom)
	}
}

func assignableSlots(all []*domain.TimeSlot) []*domain.TimeSlot {
	slots := make([]*domain.TimeSlot, 0, len(all))
	for _, s := range all {
		if !s.IsBreak {
			slots = append(slots, s)
		}
	}
	return slots
}

func allowedRoomCount(sol *domain.Solution, l *domain.Lesson) int {
	allowed, ok := sol.RequiredRooms[l.Subject.ID]
	if !ok {
		return len(sol.Rooms)
	}
	return len(allowed)
}
