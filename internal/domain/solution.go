package domain

// Solution aggregates the problem facts, the lesson list and the score for
// one term's solve. Facts are read-only for the lifetime of a solve; only
// lesson decision variables mutate.
type Solution struct {
	TermID    string
	TimeSlots []*TimeSlot
	Rooms     []*Room
	Teachers  []*Teacher
	Classes   []*SchoolClass
	Subjects  []*Subject
	Lessons   []*Lesson

	// RequiredRooms maps a subject id to the set of room ids a required
	// room-subject link restricts it to. Subjects without an entry carry no
	// room restriction.
	RequiredRooms map[string]map[string]struct{}

	Score Score
}

// NewSolution constructs an unsolved solution aggregate.
func NewSolution(termID string) *Solution {
	return &Solution{
		TermID:        termID,
		RequiredRooms: make(map[string]map[string]struct{}),
	}
}

// RequireRoom records a hard room-subject suitability link.
func (s *Solution) RequireRoom(subjectID, roomID string) {
	if s.RequiredRooms[subjectID] == nil {
		s.RequiredRooms[subjectID] = make(map[string]struct{})
	}
	s.RequiredRooms[subjectID][roomID] = struct{}{}
}

// RoomAllowed reports whether the room may host the subject under the
// required-link rule.
func (s *Solution) RoomAllowed(subjectID, roomID string) bool {
	allowed, ok := s.RequiredRooms[subjectID]
	if !ok {
		return true
	}
	_, ok = allowed[roomID]
	return ok
}

// Snapshot returns a copy safe to publish while solving continues. Facts are
// shared (they never mutate mid-solve); lessons are cloned so later moves do
// not bleed into the published assignments.
func (s *Solution) Snapshot() *Solution {
	lessons := make([]*Lesson, len(s.Lessons))
	for i, l := range s.Lessons {
		clone := *l
		lessons[i] = &clone
	}
	return &Solution{
		TermID:        s.TermID,
		TimeSlots:     s.TimeSlots,
		Rooms:         s.Rooms,
		Teachers:      s.Teachers,
		Classes:       s.Classes,
		Subjects:      s.Subjects,
		Lessons:       lessons,
		RequiredRooms: s.RequiredRooms,
		Score:         s.Score,
	}
}
