package domain

// WeekPattern marks which weeks of an A/B rotation a lesson occurs in.
type WeekPattern string

const (
	WeekEvery WeekPattern = "EVERY"
	WeekA     WeekPattern = "A"
	WeekB     WeekPattern = "B"
)

// Overlaps reports whether two week patterns can collide. EVERY overlaps
// everything; A and B never overlap each other. The relation is symmetric.
func (w WeekPattern) Overlaps(other WeekPattern) bool {
	if w == WeekEvery || other == WeekEvery {
		return true
	}
	return w == other
}

// Lesson is the planning entity. Class, Teacher, Subject and the week pattern
// are fixed at construction; TimeSlot and Room are the two decision variables
// mutated by the solver and nil until assigned.
type Lesson struct {
	ID          string
	Class       *SchoolClass
	Teacher     *Teacher
	Subject     *Subject
	WeekPattern WeekPattern

	TimeSlot *TimeSlot
	Room     *Room
}

// NewLesson constructs a lesson with unassigned decision variables.
func NewLesson(id string, class *SchoolClass, teacher *Teacher, subject *Subject, pattern WeekPattern) *Lesson {
	if pattern != WeekA && pattern != WeekB {
		pattern = WeekEvery
	}
	return &Lesson{ID: id, Class: class, Teacher: teacher, Subject: subject, WeekPattern: pattern}
}

// Assigned reports whether both decision variables are set.
func (l *Lesson) Assigned() bool {
	return l.TimeSlot != nil && l.Room != nil
}

// OverlapsWeek reports whether this lesson and other can occupy the same slot
// resources in some week.
func (l *Lesson) OverlapsWeek(other *Lesson) bool {
	return l.WeekPattern.Overlaps(other.WeekPattern)
}
