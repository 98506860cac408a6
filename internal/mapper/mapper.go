package mapper

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetabler-api/internal/domain"
	"github.com/noah-isme/timetabler-api/internal/models"
)

// Mapper translates collaborator snapshot records into the solver's domain
// model and extracts final assignments back into write-back form.
type Mapper struct {
	logger *zap.Logger
}

// New builds a mapper.
func New(logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{logger: logger}
}

// BuildSolution constructs an unsolved solution from a term snapshot. Break
// slots and inactive rooms, teachers and classes are filtered out; lessons
// referencing a filtered fact are dropped since nothing can schedule them.
func (m *Mapper) BuildSolution(snap models.TermSnapshot) *domain.Solution {
	sol := domain.NewSolution(snap.TermID)

	slotsByID := make(map[string]*domain.TimeSlot)
	for _, rec := range snap.TimeSlots {
		if rec.IsBreak {
			continue
		}
		slot := domain.NewTimeSlot(rec.ID, rec.DayOfWeek, rec.Period, rec.StartTime, rec.EndTime, false)
		sol.TimeSlots = append(sol.TimeSlots, slot)
		slotsByID[slot.ID] = slot
	}

	roomsByID := make(map[string]*domain.Room)
	for _, rec := range snap.Rooms {
		if !rec.Active {
			continue
		}
		capacity := 0
		if rec.Capacity != nil {
			capacity = *rec.Capacity
		}
		room := domain.NewRoom(rec.ID, rec.Name, capacity, parseFeatures(json.RawMessage(rec.Features)))
		sol.Rooms = append(sol.Rooms, room)
		roomsByID[room.ID] = room
	}

	teachersByID := make(map[string]*domain.Teacher)
	for _, rec := range snap.Teachers {
		if !rec.Active {
			continue
		}
		teacher := domain.NewTeacher(rec.ID, rec.FullName, rec.Abbreviation, rec.MaxHoursPerWeek)
		sol.Teachers = append(sol.Teachers, teacher)
		teachersByID[teacher.ID] = teacher
	}
	for _, rec := range snap.Availabilities {
		teacher, ok := teachersByID[rec.TeacherID]
		if !ok {
			continue
		}
		if rec.TermID != nil && *rec.TermID != snap.TermID {
			continue
		}
		key := domain.SlotKey(rec.DayOfWeek, rec.Period)
		switch rec.Type {
		case models.AvailabilityBlocked:
			teacher.BlockSlot(key)
		case models.AvailabilityPreferred:
			teacher.PreferSlot(key)
		}
	}
	for _, rec := range snap.Qualifications {
		teacher, ok := teachersByID[rec.TeacherID]
		if !ok {
			continue
		}
		grades := make([]int, 0, len(rec.CanTeachGrades))
		for _, g := range rec.CanTeachGrades {
			grades = append(grades, int(g))
		}
		teacher.AddQualification(rec.SubjectID, grades)
	}

	classesByID := make(map[string]*domain.SchoolClass)
	for _, rec := range snap.Classes {
		if !rec.Active {
			continue
		}
		students := 0
		if rec.StudentCount != nil {
			students = *rec.StudentCount
		}
		classTeacher := ""
		if rec.ClassTeacherID != nil {
			classTeacher = *rec.ClassTeacherID
		}
		class := domain.NewSchoolClass(rec.ID, rec.Name, rec.GradeLevel, students, classTeacher)
		sol.Classes = append(sol.Classes, class)
		classesByID[class.ID] = class
	}

	subjectsByID := make(map[string]*domain.Subject)
	for _, rec := range snap.Subjects {
		subject := domain.NewSubject(rec.ID, rec.Name, rec.Abbreviation)
		sol.Subjects = append(sol.Subjects, subject)
		subjectsByID[subject.ID] = subject
	}

	for _, rec := range snap.RoomSubjects {
		if rec.Required {
			sol.RequireRoom(rec.SubjectID, rec.RoomID)
		}
	}

	for _, rec := range snap.Lessons {
		class := classesByID[rec.ClassID]
		teacher := teachersByID[rec.TeacherID]
		subject := subjectsByID[rec.SubjectID]
		if class == nil || teacher == nil || subject == nil {
			m.logger.Warn("dropping lesson with missing or inactive references",
				zap.String("lesson_id", rec.ID),
				zap.String("class_id", rec.ClassID),
				zap.String("teacher_id", rec.TeacherID),
				zap.String("subject_id", rec.SubjectID),
			)
			continue
		}
		lesson := domain.NewLesson(rec.ID, class, teacher, subject, domain.WeekPattern(strings.ToUpper(rec.WeekPattern)))
		if rec.TimeSlotID != nil {
			lesson.TimeSlot = slotsByID[*rec.TimeSlotID]
		}
		if rec.RoomID != nil {
			lesson.Room = roomsByID[*rec.RoomID]
		}
		sol.Lessons = append(sol.Lessons, lesson)
	}

	return sol
}

// ExtractAssignments returns the nullable (timeSlotId, roomId) pair per
// lesson for collaborator write-back.
func (m *Mapper) ExtractAssignments(sol *domain.Solution) []models.LessonAssignment {
	assignments := make([]models.LessonAssignment, 0, len(sol.Lessons))
	for _, l := range sol.Lessons {
		a := models.LessonAssignment{LessonID: l.ID}
		if l.TimeSlot != nil {
			id := l.TimeSlot.ID
			a.TimeSlotID = &id
		}
		if l.Room != nil {
			id := l.Room.ID
			a.RoomID = &id
		}
		assignments = append(assignments, a)
	}
	return assignments
}

// parseFeatures reads the schema-less room feature attribute: a JSON string
// array when it parses as one, else a comma-separated list.
func parseFeatures(raw json.RawMessage) []string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
		return cleanFeatures(list)
	}
	var single string
	if err := json.Unmarshal([]byte(trimmed), &single); err == nil {
		trimmed = single
	}
	return cleanFeatures(strings.Split(trimmed, ","))
}

func cleanFeatures(raw []string) []string {
	features := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimSpace(f)
		if f != "" {
			features = append(features, f)
		}
	}
	return features
}
