package model

// RoomType distinguishes lecture halls from laboratories.
type RoomType string

const (
	RoomClassroom RoomType = "CLASSROOM"
	RoomLab       RoomType = "LAB"
)

type Classroom struct {
	ID         string   `csv:"id"`
	Capacity   int      `csv:"capacity"`
	Type       RoomType `csv:"type"`
	Floor      int      `csv:"-"`
	Facilities string   `csv:"facilities"`
}

// Section is one student group. It owns exactly one Timetable for its
// whole lifetime; the grid is created here and mutated in place.
type Section struct {
	ID         string
	Department string
	Semester   int
	Period     string // "PRE" or "POST"
	Name       string // "A", "B", or "" for single-section departments
	Timetable  *Timetable
}

func NewSection(id, department string, semester int, period, name string) *Section {
	return &Section{
		ID:         id,
		Department: department,
		Semester:   semester,
		Period:     period,
		Name:       name,
		Timetable:  NewTimetable(id, semester),
	}
}
