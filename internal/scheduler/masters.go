package scheduler

import "github.com/acadsched/timetable-engine/pkg/model"

// MasterSchedules holds the faculty and room timetables shared by every
// Scheduler run of one period, so cross-semester conflicts on a shared
// instructor or room stay visible. Timetables are created lazily on
// first reference and mutated in place.
//
// Contract: a single writer at a time. Runs against the same store must
// execute sequentially; nothing here is synchronized.
type MasterSchedules struct {
	Rooms   map[string]*model.Timetable
	Faculty map[string]*model.Timetable
}

func NewMasterSchedules() *MasterSchedules {
	return &MasterSchedules{
		Rooms:   make(map[string]*model.Timetable),
		Faculty: make(map[string]*model.Timetable),
	}
}

// Room returns the master timetable for a room id, creating it on
// first use. Semester -1 keeps the grid free of lunch blocks.
func (m *MasterSchedules) Room(id string) *model.Timetable {
	tt, ok := m.Rooms[id]
	if !ok {
		tt = model.NewTimetable(id, -1)
		m.Rooms[id] = tt
	}
	return tt
}

// FacultyTimetable returns the master timetable for an instructor,
// creating it on first use.
func (m *MasterSchedules) FacultyTimetable(name string) *model.Timetable {
	tt, ok := m.Faculty[name]
	if !ok {
		tt = model.NewTimetable(name, -1)
		m.Faculty[name] = tt
	}
	return tt
}
