package domain

import "fmt"

// TimeSlot is a teaching period in the weekly grid. Break slots exist in the
// grid for display purposes but are never part of the assignable value range.
type TimeSlot struct {
	ID        string
	DayOfWeek int // 0 = Monday .. 4 = Friday
	Period    int
	StartTime string
	EndTime   string
	IsBreak   bool
}

// NewTimeSlot constructs an immutable time slot fact.
func NewTimeSlot(id string, dayOfWeek, period int, startTime, endTime string, isBreak bool) *TimeSlot {
	return &TimeSlot{
		ID:        id,
		DayOfWeek: dayOfWeek,
		Period:    period,
		StartTime: startTime,
		EndTime:   endTime,
		IsBreak:   isBreak,
	}
}

// Key returns the "day-period" key used by availability sets.
func (t *TimeSlot) Key() string {
	return SlotKey(t.DayOfWeek, t.Period)
}

// SlotKey builds the canonical "day-period" key.
func SlotKey(dayOfWeek, period int) string {
	return fmt.Sprintf("%d-%d", dayOfWeek, period)
}
