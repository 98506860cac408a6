package solver

// Weights holds the penalty magnitude per rule. Hard weights feed the hard
// score, soft weights the soft score; every violation subtracts its weight.
// A zero weight disables the rule.
type Weights struct {
	// Hard rules.
	TeacherClash    int
	RoomClash       int
	ClassClash      int
	TeacherBlocked  int
	Qualification   int
	RoomCapacity    int
	RoomSuitability int
	Unassigned      int

	// Soft rules. PreferredSlot penalizes a lesson placed outside its
	// teacher's preferred set when the teacher declared one, so a fully
	// preferred placement scores zero. ClassTeacherAffinity penalizes class
	// lessons taught by someone other than the designated class teacher.
	PreferredSlot        int
	TeacherGap           int
	ClassGap             int
	ClassTeacherAffinity int
	MaxHoursOverload     int
}

// DefaultWeights returns the standard rule weighting: every hard rule at 1,
// gaps dominating the soft side.
func DefaultWeights() Weights {
	return Weights{
		TeacherClash:    1,
		RoomClash:       1,
		ClassClash:      1,
		TeacherBlocked:  1,
		Qualification:   1,
		RoomCapacity:    1,
		RoomSuitability: 1,
		Unassigned:      1,

		PreferredSlot:        1,
		TeacherGap:           2,
		ClassGap:             2,
		ClassTeacherAffinity: 1,
		MaxHoursOverload:     1,
	}
}
