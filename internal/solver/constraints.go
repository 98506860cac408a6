package solver

import "github.com/noah-isme/timetabler-api/internal/domain"

// placementScore computes the single-lesson rules that depend on the decision
// variables: teacher blocked, preferred slot, room capacity and room
// suitability. Lessons missing either variable contribute nothing; they are
// covered by the unassigned penalty instead.
func placementScore(w Weights, sol *domain.Solution, l *domain.Lesson) domain.Score {
	var s domain.Score
	if !l.Assigned() {
		return s
	}
	if l.Teacher.IsBlockedAt(l.TimeSlot) {
		s.Hard -= w.TeacherBlocked
	}
	if len(l.Teacher.Preferred) > 0 && !l.Teacher.PrefersSlot(l.TimeSlot) {
		s.Soft -= w.PreferredSlot
	}
	if l.Room.HasCapacity() && l.Class.HasStudentCount() && l.Room.Capacity < l.Class.StudentCount {
		s.Hard -= w.RoomCapacity
	}
	if !sol.RoomAllowed(l.Subject.ID, l.Room.ID) {
		s.Hard -= w.RoomSuitability
	}
	return s
}

// lessonScore computes the single-lesson rules fixed by the lesson itself,
// independent of where it is placed: qualification and class-teacher affinity.
func lessonScore(w Weights, l *domain.Lesson) domain.Score {
	var s domain.Score
	if !l.Teacher.IsQualifiedFor(l.Subject.ID, l.Class.GradeLevel) {
		s.Hard -= w.Qualification
	}
	if l.Class.ClassTeacherID != "" && l.Teacher.ID != l.Class.ClassTeacherID {
		s.Soft -= w.ClassTeacherAffinity
	}
	return s
}

// gapCount returns the idle periods between the first and last occupied
// period of one day row.
func gapCount(periods map[int]int) int {
	minP, maxP, used := -1, -1, 0
	for p, n := range periods {
		if n <= 0 {
			continue
		}
		used++
		if minP == -1 || p < minP {
			minP = p
		}
		if p > maxP {
			maxP = p
		}
	}
	if used <= 1 {
		return 0
	}
	return (maxP - minP + 1) - used
}

// overload returns the hours a teacher is scheduled beyond the weekly cap,
// zero when no cap is declared.
func overload(t *domain.Teacher, hours int) int {
	if t.MaxHoursPerWeek <= 0 || hours <= t.MaxHoursPerWeek {
		return 0
	}
	return hours - t.MaxHoursPerWeek
}

// Evaluate recomputes the score of a solution from scratch and stores it on
// the solution. It is the oracle for the incremental evaluator and is fine
// for small instances; the optimizer itself scores moves incrementally.
func Evaluate(w Weights, sol *domain.Solution) domain.Score {
	var s domain.Score

	for _, l := range sol.Lessons {
		if !l.Assigned() {
			s.Hard -= w.Unassigned
		}
		s = s.Add(placementScore(w, sol, l)).Add(lessonScore(w, l))
	}

	for i, a := range sol.Lessons {
		if !a.Assigned() {
			continue
		}
		for _, b := range sol.Lessons[i+1:] {
			if !b.Assigned() || a.TimeSlot.ID != b.TimeSlot.ID || !a.OverlapsWeek(b) {
				continue
			}
			if a.Teacher.ID == b.Teacher.ID {
				s.Hard -= w.TeacherClash
			}
			if a.Room.ID == b.Room.ID {
				s.Hard -= w.RoomClash
			}
			if a.Class.ID == b.Class.ID {
				s.Hard -= w.ClassClash
			}
		}
	}

	teacherDays := make(map[dayRow]map[int]int)
	classDays := make(map[dayRow]map[int]int)
	teacherHours := make(map[string]int)
	for _, l := range sol.Lessons {
		if !l.Assigned() {
			continue
		}
		addPeriod(teacherDays, dayRow{l.Teacher.ID, l.TimeSlot.DayOfWeek}, l.TimeSlot.Period)
		addPeriod(classDays, dayRow{l.Class.ID, l.TimeSlot.DayOfWeek}, l.TimeSlot.Period)
		teacherHours[l.Teacher.ID]++
	}
	for _, row := range teacherDays {
		s.Soft -= w.TeacherGap * gapCount(row)
	}
	for _, row := range classDays {
		s.Soft -= w.ClassGap * gapCount(row)
	}
	for _, t := range sol.Teachers {
		s.Soft -= w.MaxHoursOverload * overload(t, teacherHours[t.ID])
	}

	sol.Score = s
	return s
}

// dayRow identifies one resource's periods within a single day.
type dayRow struct {
	resourceID string
	day        int
}

func addPeriod(rows map[dayRow]map[int]int, key dayRow, period int) {
	if rows[key] == nil {
		rows[key] = make(map[int]int)
	}
	rows[key][period]++
}
