package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadsched/timetable-engine/internal/config"
	"github.com/acadsched/timetable-engine/pkg/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Departments:        []string{"CSE", "DSAI"},
		Semesters:          []int{1, 3},
		SplitSections:      []string{"CSE"},
		CombinedRoomID:     "C004",
		LargeRoomThreshold: 100,
		LabCapacityCap:     40,
		AdjacentLabSlack:   1.25,
		ClassBreakMins:     10,
	}
}

func testRooms() []*model.Classroom {
	return []*model.Classroom{
		{ID: "C004", Capacity: 240, Type: model.RoomClassroom, Floor: 0},
		{ID: "C101", Capacity: 120, Type: model.RoomClassroom, Floor: 1},
		{ID: "C102", Capacity: 90, Type: model.RoomClassroom, Floor: 1},
		{ID: "L105", Capacity: 36, Type: model.RoomLab, Floor: 1},
		{ID: "L106", Capacity: 36, Type: model.RoomLab, Floor: 1},
	}
}

func newTestScheduler(period string, rooms []*model.Classroom) (*Scheduler, *MasterSchedules) {
	masters := NewMasterSchedules()
	return New(rooms, period, masters, testConfig(), zap.NewNop()), masters
}

func TestSplitCoursePracticalUsesAdjacentLabs(t *testing.T) {
	s, masters := newTestScheduler("PRE", testRooms())
	course := &model.Course{
		Code: "CS201", Semester: 3, Department: "CSE",
		L: 3, P: 2, Registered: 170,
		Instructors: []string{"Dr. A", "Dr. B", "Dr. C"},
		Preference:  model.PrefSplit,
	}
	secA := model.NewSection("CSE-Sem3-PRE-A", "CSE", 3, "PRE", "A")
	secB := model.NewSection("CSE-Sem3-PRE-B", "CSE", 3, "PRE", "B")

	_, overflow := s.Run([]*model.Course{course}, []*model.Section{secA, secB})

	assert.Empty(t, s.Failures())
	assert.Empty(t, overflow)
	assert.Empty(t, secB.Timetable.Sessions(), "section B waits for the POST run")

	spans := secA.Timetable.Sessions()
	require.Len(t, spans, 3) // 1 practical + 2 lectures

	practical := spans[0]
	assert.Equal(t, model.Practical, practical.Class.Type)
	assert.Equal(t, 12, practical.Duration)
	// 85 students per half exceed any single lab, so an adjacent pair
	// on the same floor covers the session.
	assert.Equal(t, []string{"L105", "L106"}, practical.Class.RoomIDs)
	assert.Equal(t, []string{"Dr. C"}, practical.Class.Instructors)

	for _, lec := range spans[1:] {
		assert.Equal(t, model.Lecture, lec.Class.Type)
		assert.Equal(t, []string{"Dr. A"}, lec.Class.Instructors, "section A takes the first instructor")
		assert.Equal(t, []string{"C102"}, lec.Class.RoomIDs, "85 students fit the smallest adequate classroom")
	}
	assert.NotEqual(t, spans[1].Day, spans[2].Day, "same theory session never twice a day")

	assert.False(t, masters.Rooms["L105"].IsSlotFree(practical.Day, practical.Start, 12))
	assert.False(t, masters.Rooms["L106"].IsSlotFree(practical.Day, practical.Start, 12))
	assert.Len(t, masters.Faculty["Dr. A"].Sessions(), 2)
	assert.Len(t, masters.Faculty["Dr. C"].Sessions(), 1)
	_, hasB := masters.Faculty["Dr. B"]
	assert.False(t, hasB, "second instructor teaches section B in POST")
}

func TestBasketReservationAndResolution(t *testing.T) {
	s, masters := newTestScheduler("PRE", testRooms())
	elCSE := &model.Course{Code: "EL301", Semester: 1, Department: "CSE",
		Registered: 30, Instructors: []string{"Dr. P"}, Elective: true}
	elDSAI := &model.Course{Code: "EL302", Semester: 1, Department: "DSAI",
		Registered: 25, Instructors: []string{"Dr. Q"}, Elective: true}
	pseudo := &model.Course{
		Code: "BASKET-B1-SEM1", Semester: 1, L: 1,
		BasketCode: "B1", Preference: model.PrefBasketFull,
		Bundled: []*model.Course{elCSE, elDSAI},
	}
	secCSE := model.NewSection("CSE-Sem1-PRE-A", "CSE", 1, "PRE", "A")
	secDSAI := model.NewSection("DSAI-Sem1-PRE", "DSAI", 1, "PRE", "")

	_, overflow := s.Run([]*model.Course{pseudo}, []*model.Section{secCSE, secDSAI})

	assert.Empty(t, s.Failures())
	assert.Empty(t, overflow)

	spansCSE := secCSE.Timetable.Sessions()
	spansDSAI := secDSAI.Timetable.Sessions()
	require.Len(t, spansCSE, 1)
	require.Len(t, spansDSAI, 1)
	assert.Equal(t, spansCSE[0].Day, spansDSAI[0].Day, "basket reserves one common slot")
	assert.Equal(t, spansCSE[0].Start, spansDSAI[0].Start)
	assert.Equal(t, 6, spansCSE[0].Duration)

	// Each department's placeholder resolved into its own elective.
	assert.Equal(t, "EL301", spansCSE[0].Class.Course.Code)
	assert.Equal(t, []string{"Dr. P"}, spansCSE[0].Class.Instructors)
	assert.Equal(t, "EL302", spansDSAI[0].Class.Course.Code)
	assert.Equal(t, []string{"Dr. Q"}, spansDSAI[0].Class.Instructors)
	assert.NotEqual(t, spansCSE[0].Class.RoomIDs, spansDSAI[0].Class.RoomIDs,
		"concurrent electives take distinct rooms")

	require.Contains(t, masters.Faculty, "Dr. P")
	require.Contains(t, masters.Faculty, "Dr. Q")
	assert.False(t, masters.Faculty["Dr. P"].IsSlotFree(spansCSE[0].Day, spansCSE[0].Start, 6))
}

func TestCombinedCourseSharesHall(t *testing.T) {
	s, masters := newTestScheduler("PRE", testRooms())
	course := &model.Course{
		Code: "HS101", Semester: 1, Department: "CSE",
		L: 3, Registered: 200, Combined: true,
		Instructors: []string{"Dr. H"},
	}
	secA := model.NewSection("CSE-Sem1-PRE-A", "CSE", 1, "PRE", "A")
	secB := model.NewSection("CSE-Sem1-PRE-B", "CSE", 1, "PRE", "B")

	s.Run([]*model.Course{course}, []*model.Section{secA, secB})

	assert.Empty(t, s.Failures())
	spansA := secA.Timetable.Sessions()
	spansB := secB.Timetable.Sessions()
	require.Len(t, spansA, 2)
	require.Len(t, spansB, 2)
	for i := range spansA {
		assert.Equal(t, spansA[i].Class.ID, spansB[i].Class.ID, "one shared booking across sections")
		assert.Equal(t, []string{"C004"}, spansA[i].Class.RoomIDs)
	}
	assert.False(t, masters.Rooms["C004"].IsSlotFree(spansA[0].Day, spansA[0].Start, 9))
}

func TestCombinedCourseHallTooSmall(t *testing.T) {
	s, _ := newTestScheduler("PRE", testRooms())
	course := &model.Course{
		Code: "HS102", Semester: 1, Department: "CSE",
		L: 2, Registered: 250, Combined: true,
	}
	sec := model.NewSection("CSE-Sem1-PRE-A", "CSE", 1, "PRE", "A")

	s.Run([]*model.Course{course}, []*model.Section{sec})

	require.Len(t, s.Failures(), 1)
	assert.Equal(t, "HS102", s.Failures()[0].CourseCode)
	assert.Contains(t, s.Failures()[0].Reason, "seats 240")
	assert.Empty(t, sec.Timetable.Sessions())
}

func TestOverflowBasketDefersToPost(t *testing.T) {
	// Only the combined hall exists, so elective resolution finds no
	// bookable room and the PRE failure becomes POST overflow.
	hallOnly := []*model.Classroom{{ID: "C004", Capacity: 240, Type: model.RoomClassroom}}
	s, _ := newTestScheduler("PRE", hallOnly)
	el := &model.Course{Code: "EL401", Semester: 1, Department: "CSE",
		Registered: 30, Instructors: []string{"Dr. P"}, Elective: true}
	pseudo := &model.Course{
		Code: "BASKET-OV-SEM1", Semester: 1, L: 1, T: 1, // two reservations
		BasketCode: "OV", Preference: model.PrefOverflow,
		Bundled: []*model.Course{el},
	}
	sec := model.NewSection("CSE-Sem1-PRE-A", "CSE", 1, "PRE", "A")

	_, overflow := s.Run([]*model.Course{pseudo}, []*model.Section{sec})

	require.Len(t, overflow, 1, "same course deferred twice lands in overflow once")
	assert.Equal(t, "EL401", overflow[0].Code)
	assert.Empty(t, s.Failures(), "overflow deferral is not a failure")
}

func TestOverflowNotDeferredInPostRun(t *testing.T) {
	hallOnly := []*model.Classroom{{ID: "C004", Capacity: 240, Type: model.RoomClassroom}}
	s, _ := newTestScheduler("POST", hallOnly)
	el := &model.Course{Code: "EL401", Semester: 1, Department: "CSE",
		Registered: 30, Instructors: []string{"Dr. P"}, Elective: true}
	pseudo := &model.Course{
		Code: "BASKET-OV-SEM1", Semester: 1, L: 1,
		BasketCode: "OV", Preference: model.PrefOverflow,
		Bundled: []*model.Course{el},
	}
	sec := model.NewSection("CSE-Sem1-POST-A", "CSE", 1, "POST", "A")

	_, overflow := s.Run([]*model.Course{pseudo}, []*model.Section{sec})

	assert.Empty(t, overflow)
	require.NotEmpty(t, s.Failures())
	assert.Equal(t, "EL401", s.Failures()[0].CourseCode)
}

func TestFacultyBufferPushesSessionLater(t *testing.T) {
	s, masters := newTestScheduler("PRE", testRooms())
	busy := model.NewScheduledClass(&model.Course{Code: "X"}, model.Lecture, "other", nil, nil)
	for d := 0; d < 5; d++ {
		masters.FacultyTimetable("Dr. Q").BookSlot(model.Day(d), 0, 9, busy, 0)
	}
	course := &model.Course{Code: "DS101", Semester: 1, Department: "DSAI",
		T: 1, Registered: 30, Instructors: []string{"Dr. Q"}}
	sec := model.NewSection("DSAI-Sem1-PRE", "DSAI", 1, "PRE", "")

	s.Run([]*model.Course{course}, []*model.Section{sec})

	spans := sec.Timetable.Sessions()
	require.Len(t, spans, 1)
	// Booked 09:00-10:30 everywhere, so the next start honoring the
	// 30-minute buffer is slot 12 (11:00), not slot 9.
	assert.Equal(t, 12, spans[0].Start)
}

func TestFindAvailableRoomDegrades(t *testing.T) {
	s, masters := newTestScheduler("PRE", testRooms())
	busy := model.NewScheduledClass(&model.Course{Code: "X"}, model.Lecture, "other", nil, nil)

	masters.Room("C102").BookSlot(0, 0, 9, busy, 0)
	room := s.findAvailableRoom(50, model.Lecture, 0, 0, 9)
	require.NotNil(t, room)
	assert.Equal(t, "C101", room.ID, "opposite pool beats an occupied match")

	masters.Room("C101").BookSlot(0, 0, 9, busy, 0)
	room = s.findAvailableRoom(50, model.Lecture, 0, 0, 9)
	require.NotNil(t, room)
	assert.Equal(t, "C102", room.ID, "occupied but adequate beats nothing")

	room = s.findAvailableRoom(300, model.Lecture, 0, 0, 9)
	require.NotNil(t, room)
	assert.Equal(t, "C101", room.ID, "largest room when nothing is adequate")
}

func TestFindAdjacentLabs(t *testing.T) {
	s, masters := newTestScheduler("PRE", testRooms())

	a, b := s.findAdjacentLabs(85, 0, 0, 12)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, "L105", a.ID)
	assert.Equal(t, "L106", b.ID)

	a, _ = s.findAdjacentLabs(100, 0, 0, 12)
	assert.Nil(t, a, "72 seats with 1.25 slack cover 90, not 100")

	busy := model.NewScheduledClass(&model.Course{Code: "X"}, model.Practical, "other", nil, nil)
	masters.Room("L106").BookSlot(0, 0, 12, busy, 0)
	a, _ = s.findAdjacentLabs(85, 0, 0, 12)
	assert.Nil(t, a, "both labs must be free")
}

func TestReplicatePreToPost(t *testing.T) {
	course := &model.Course{Code: "CS401", Semester: 7, L: 2}
	sc := model.NewScheduledClass(course, model.Lecture, "CSE", []string{"Dr. R"}, []string{"C101"})
	secA := model.NewSection("CSE-Sem7-PRE-A", "CSE", 7, "PRE", "A")
	secB := model.NewSection("CSE-Sem7-PRE-B", "CSE", 7, "PRE", "B")
	secA.Timetable.BookSlot(0, 0, 9, sc, 1)
	secB.Timetable.BookSlot(0, 0, 9, sc, 1)

	postMasters := NewMasterSchedules()
	post := ReplicatePreToPost([]*model.Section{secA, secB}, postMasters)

	require.Len(t, post, 2)
	assert.Equal(t, "CSE-Sem7-POST-A", post[0].ID)
	assert.Equal(t, "POST", post[0].Period)
	assert.Equal(t, secA.Timetable.Grid, post[0].Timetable.Grid)

	require.Contains(t, postMasters.Faculty, "Dr. R")
	require.Contains(t, postMasters.Rooms, "C101")
	assert.False(t, postMasters.Rooms["C101"].IsSlotFree(0, 0, 9))
	key := model.SessionCountKey{Code: "CS401", Type: model.Lecture}
	assert.Equal(t, 1, postMasters.Faculty["Dr. R"].SessionCounts[key],
		"a booking shared by two sections is indexed once")
}
