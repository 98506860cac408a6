package domain

// SchoolClass is a class (section) fact. StudentCount of zero or below means
// unknown. ClassTeacherID is a soft-constraint hint only and may be empty.
type SchoolClass struct {
	ID             string
	Name           string
	GradeLevel     int
	StudentCount   int
	ClassTeacherID string
}

// NewSchoolClass constructs a class fact.
func NewSchoolClass(id, name string, gradeLevel, studentCount int, classTeacherID string) *SchoolClass {
	return &SchoolClass{
		ID:             id,
		Name:           name,
		GradeLevel:     gradeLevel,
		StudentCount:   studentCount,
		ClassTeacherID: classTeacherID,
	}
}

// HasStudentCount reports whether the class declares a usable student count.
func (c *SchoolClass) HasStudentCount() bool {
	return c.StudentCount > 0
}

// Subject is a taught subject fact.
type Subject struct {
	ID           string
	Name         string
	Abbreviation string
}

// NewSubject constructs a subject fact.
func NewSubject(id, name, abbreviation string) *Subject {
	return &Subject{ID: id, Name: name, Abbreviation: abbreviation}
}
