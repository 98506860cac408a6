package domain

// Teacher is an instructor fact with denormalized availability and
// qualification data. Blocked and Preferred hold "day-period" keys.
type Teacher struct {
	ID              string
	FullName        string
	Abbreviation    string
	MaxHoursPerWeek int
	Blocked         map[string]struct{}
	Preferred       map[string]struct{}
	Qualifications  map[string]map[int]struct{} // subject id -> grade levels
}

// NewTeacher constructs a teacher fact with empty availability sets.
func NewTeacher(id, fullName, abbreviation string, maxHoursPerWeek int) *Teacher {
	return &Teacher{
		ID:              id,
		FullName:        fullName,
		Abbreviation:    abbreviation,
		MaxHoursPerWeek: maxHoursPerWeek,
		Blocked:         make(map[string]struct{}),
		Preferred:       make(map[string]struct{}),
		Qualifications:  make(map[string]map[int]struct{}),
	}
}

// BlockSlot marks a "day-period" key as unavailable.
func (t *Teacher) BlockSlot(key string) {
	t.Blocked[key] = struct{}{}
}

// PreferSlot marks a "day-period" key as preferred.
func (t *Teacher) PreferSlot(key string) {
	t.Preferred[key] = struct{}{}
}

// AddQualification registers the teacher as qualified for a subject at the
// given grade levels.
func (t *Teacher) AddQualification(subjectID string, grades []int) {
	if t.Qualifications[subjectID] == nil {
		t.Qualifications[subjectID] = make(map[int]struct{}, len(grades))
	}
	for _, g := range grades {
		t.Qualifications[subjectID][g] = struct{}{}
	}
}

// IsBlockedAt reports whether the slot is in the blocked set.
func (t *Teacher) IsBlockedAt(slot *TimeSlot) bool {
	if slot == nil {
		return false
	}
	_, ok := t.Blocked[slot.Key()]
	return ok
}

// PrefersSlot reports whether the slot is in the preferred set.
func (t *Teacher) PrefersSlot(slot *TimeSlot) bool {
	if slot == nil {
		return false
	}
	_, ok := t.Preferred[slot.Key()]
	return ok
}

// IsQualifiedFor reports whether the teacher may teach the subject at the
// grade level. A teacher with no qualification rows is qualified for nothing.
func (t *Teacher) IsQualifiedFor(subjectID string, gradeLevel int) bool {
	grades, ok := t.Qualifications[subjectID]
	if !ok {
		return false
	}
	_, ok = grades[gradeLevel]
	return ok
}
