package solver

import "github.com/noah-isme/timetabler-api/internal/domain"

// occRow keys occupancy buckets by resource and time slot.
type occRow struct {
	resourceID string
	slotID     string
}

// Evaluator keeps occupancy indexes over one solution so moves are scored by
// touching only the affected lesson, its clash buckets and its day rows
// instead of re-walking every lesson pair.
type Evaluator struct {
	weights Weights
	sol     *domain.Solution

	teacherSlot map[occRow][]*domain.Lesson
	roomSlot    map[occRow][]*domain.Lesson
	classSlot   map[occRow][]*domain.Lesson

	teacherDays  map[dayRow]map[int]int
	classDays    map[dayRow]map[int]int
	teacherHours map[string]int

	placed map[*domain.Lesson]bool
	score  domain.Score
}

// NewEvaluator indexes the solution's currently assigned lessons. The
// placement-independent lesson rules are folded in once here; Place and
// Unplace only track the placement-dependent remainder.
func NewEvaluator(w Weights, sol *domain.Solution) *Evaluator {
	e := &Evaluator{
		weights:      w,
		sol:          sol,
		teacherSlot:  make(map[occRow][]*domain.Lesson),
		roomSlot:     make(map[occRow][]*domain.Lesson),
		classSlot:    make(map[occRow][]*domain.Lesson),
		teacherDays:  make(map[dayRow]map[int]int),
		classDays:    make(map[dayRow]map[int]int),
		teacherHours: make(map[string]int),
		placed:       make(map[*domain.Lesson]bool),
	}
	for _, l := range sol.Lessons {
		e.score = e.score.Add(lessonScore(w, l))
	}
	for _, l := range sol.Lessons {
		if l.Assigned() {
			e.Place(l)
		}
	}
	return e
}

// Score returns the current score including the unassigned-lesson penalty.
func (e *Evaluator) Score() domain.Score {
	s := e.score
	s.Hard -= e.weights.Unassigned * (len(e.sol.Lessons) - len(e.placed))
	return s
}

// Place registers a fully assigned lesson and folds its contribution into the
// running score.
func (e *Evaluator) Place(l *domain.Lesson) {
	if e.placed[l] || !l.Assigned() {
		return
	}
	e.score = e.score.Add(placementScore(e.weights, e.sol, l))
	e.score.Hard -= e.clashPenalty(l)

	tRow := dayRow{l.Teacher.ID, l.TimeSlot.DayOfWeek}
	cRow := dayRow{l.Class.ID, l.TimeSlot.DayOfWeek}
	e.score.Soft += e.weights.TeacherGap * gapCount(e.teacherDays[tRow])
	e.score.Soft += e.weights.ClassGap * gapCount(e.classDays[cRow])
	e.score.Soft += e.weights.MaxHoursOverload * overload(l.Teacher, e.teacherHours[l.Teacher.ID])

	slot := occRow{l.Teacher.ID, l.TimeSlot.ID}
	e.teacherSlot[slot] = append(e.teacherSlot[slot], l)
	slot = occRow{l.Room.ID, l.TimeSlot.ID}
	e.roomSlot[slot] = append(e.roomSlot[slot], l)
	slot = occRow{l.Class.ID, l.TimeSlot.ID}
	e.classSlot[slot] = append(e.classSlot[slot], l)
	addPeriod(e.teacherDays, tRow, l.TimeSlot.Period)
	addPeriod(e.classDays, cRow, l.TimeSlot.Period)
	e.teacherHours[l.Teacher.ID]++

	e.score.Soft -= e.weights.TeacherGap * gapCount(e.teacherDays[tRow])
	e.score.Soft -= e.weights.ClassGap * gapCount(e.classDays[cRow])
	e.score.Soft -= e.weights.MaxHoursOverload * overload(l.Teacher, e.teacherHours[l.Teacher.ID])

	e.placed[l] = true
}

// Unplace removes a lesson's contribution. The lesson keeps its decision
// variables; callers mutate them afterwards and Place again.
func (e *Evaluator) Unplace(l *domain.Lesson) {
	if !e.placed[l] {
		return
	}
	tRow := dayRow{l.Teacher.ID, l.TimeSlot.DayOfWeek}
	cRow := dayRow{l.Class.ID, l.TimeSlot.DayOfWeek}
	e.score.Soft += e.weights.TeacherGap * gapCount(e.teacherDays[tRow])
	e.score.Soft += e.weights.ClassGap * gapCount(e.classDays[cRow])
	e.score.Soft += e.weights.MaxHoursOverload * overload(l.Teacher, e.teacherHours[l.Teacher.ID])

	removeLesson(e.teacherSlot, occRow{l.Teacher.ID, l.TimeSlot.ID}, l)
	removeLesson(e.roomSlot, occRow{l.Room.ID, l.TimeSlot.ID}, l)
	removeLesson(e.classSlot, occRow{l.Class.ID, l.TimeSlot.ID}, l)
	removePeriod(e.teacherDays, tRow, l.TimeSlot.Period)
	removePeriod(e.classDays, cRow, l.TimeSlot.Period)
	e.teacherHours[l.Teacher.ID]--

	e.score.Soft -= e.weights.TeacherGap * gapCount(e.teacherDays[tRow])
	e.score.Soft -= e.weights.ClassGap * gapCount(e.classDays[cRow])
	e.score.Soft -= e.weights.MaxHoursOverload * overload(l.Teacher, e.teacherHours[l.Teacher.ID])

	e.score.Hard += e.clashPenalty(l)
	e.score = e.score.Sub(placementScore(e.weights, e.sol, l))
	delete(e.placed, l)
}

// Move reassigns a lesson's decision variables and returns the new total.
func (e *Evaluator) Move(l *domain.Lesson, slot *domain.TimeSlot, room *domain.Room) domain.Score {
	e.Unplace(l)
	l.TimeSlot = slot
	l.Room = room
	e.Place(l)
	return e.Score()
}

// clashPenalty sums the hard clash weight of l against every already indexed
// lesson sharing a resource slot in an overlapping week. Each conflicting
// pair is counted exactly once because only the entering lesson scans.
func (e *Evaluator) clashPenalty(l *domain.Lesson) int {
	penalty := 0
	for _, o := range e.teacherSlot[occRow{l.Teacher.ID, l.TimeSlot.ID}] {
		if o != l && l.OverlapsWeek(o) {
			penalty += e.weights.TeacherClash
		}
	}
	for _, o := range e.roomSlot[occRow{l.Room.ID, l.TimeSlot.ID}] {
		if o != l && l.OverlapsWeek(o) {
			penalty += e.weights.RoomClash
		}
	}
	for _, o := range e.classSlot[occRow{l.Class.ID, l.TimeSlot.ID}] {
		if o != l && l.OverlapsWeek(o) {
			penalty += e.weights.ClassClash
		}
	}
	return penalty
}

func removeLesson(index map[occRow][]*domain.Lesson, key occRow, l *domain.Lesson) {
	bucket := index[key]
	for i, o := range bucket {
		if o == l {
			bucket[i] = bucket[len(bucket)-1]
			index[key] = bucket[:len(bucket)-1]
			return
		}
	}
}

func removePeriod(rows map[dayRow]map[int]int, key dayRow, period int) {
	if row := rows[key]; row != nil {
		row[period]--
		if row[period] <= 0 {
			delete(row, period)
		}
	}
}
