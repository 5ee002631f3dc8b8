package scheduler

import (
	"fmt"
	"sort"

	"github.com/acadsched/timetable-engine/pkg/model"
	"github.com/acadsched/timetable-engine/pkg/timeutil"
)

// slotQuery describes one common-slot search: the sections that must
// all be free, the course and session being placed, the instructors
// whose availability gates the slot, and any room timetables that must
// also be clear (the combined hall in phase A).
type slotQuery struct {
	sections    []*model.Section
	course      *model.Course
	sessionType model.SessionType
	instructors []string
	extraRooms  []string
}

// findCommonSlot scans days by ascending combined load, then start
// slots, and returns the first position where every section is free
// for the effective duration (session plus trailing break unless it
// ends at day-end or right before the semester's lunch), every extra
// room is free for the session, and every named instructor passes the
// availability buffer. ok=false when the whole week is exhausted.
func (s *Scheduler) findCommonSlot(q slotQuery) (model.Day, int, bool) {
	duration := q.sessionType.Duration()
	lunchStart := timeutil.LunchStart(q.course.Semester)

	for _, day := range s.daysByLoad(q.sections) {
		if s.dailyLimitHit(q.sections, day, q.course.Code, q.sessionType) {
			continue
		}
		for start := 0; start+duration <= timeutil.SlotsPerDay; start++ {
			eff := duration
			if end := start + duration; end != timeutil.SlotsPerDay && end != lunchStart {
				eff += s.cfg.ClassBreakSlots()
				if start+eff > timeutil.SlotsPerDay {
					eff = timeutil.SlotsPerDay - start
				}
			}
			if !s.sectionsFree(q.sections, day, start, eff) {
				continue
			}
			if !s.extraRoomsFree(q.extraRooms, day, start, duration) {
				continue
			}
			if !s.instructorsAvailable(q.instructors, day, start, duration) {
				continue
			}
			return day, start, true
		}
	}
	return 0, 0, false
}

// daysByLoad orders the week by the combined booked-session count of
// the target sections, lightest day first, ties in weekday order.
func (s *Scheduler) daysByLoad(sections []*model.Section) []model.Day {
	days := make([]model.Day, timeutil.DaysPerWeek)
	for i := range days {
		days[i] = model.Day(i)
	}
	load := func(d model.Day) int {
		total := 0
		for _, sec := range sections {
			total += sec.Timetable.DayLoad[d]
		}
		return total
	}
	sort.SliceStable(days, func(i, j int) bool {
		return load(days[i]) < load(days[j])
	})
	return days
}

func (s *Scheduler) dailyLimitHit(sections []*model.Section, day model.Day, code string, t model.SessionType) bool {
	for _, sec := range sections {
		if sec.Timetable.DailyLimitViolated(day, code, t) {
			return true
		}
	}
	return false
}

func (s *Scheduler) sectionsFree(sections []*model.Section, day model.Day, start, duration int) bool {
	for _, sec := range sections {
		if !sec.Timetable.IsSlotFree(day, start, duration) {
			return false
		}
	}
	return true
}

func (s *Scheduler) extraRoomsFree(roomIDs []string, day model.Day, start, duration int) bool {
	for _, id := range roomIDs {
		if !s.roomFree(id, day, start, duration) {
			return false
		}
	}
	return true
}

// instructorsAvailable checks every named instructor's master
// timetable for the session plus the faculty buffer on both sides, so
// any two of an instructor's sessions keep at least that gap no matter
// which section booked them. "TBD" placeholders always pass.
func (s *Scheduler) instructorsAvailable(instructors []string, day model.Day, start, duration int) bool {
	for _, name := range instructors {
		if name == "" || name == model.TBD {
			continue
		}
		tt, ok := s.masters.Faculty[name]
		if !ok {
			continue // no bookings yet
		}
		lo := start - timeutil.FacultyBreakSlots
		if lo < 0 {
			lo = 0
		}
		hi := start + duration + timeutil.FacultyBreakSlots
		if hi > timeutil.SlotsPerDay {
			hi = timeutil.SlotsPerDay
		}
		if !tt.IsSlotFree(day, lo, hi-lo) {
			return false
		}
	}
	return true
}

// book writes one session into every target section plus the room and
// faculty master schedules. Breaks are appended on section grids only;
// master grids track plain occupancy.
func (s *Scheduler) book(sections []*model.Section, day model.Day, start int, sc *model.ScheduledClass) {
	duration := sc.Type.Duration()
	for _, sec := range sections {
		sec.Timetable.BookSlot(day, start, duration, sc, s.cfg.ClassBreakSlots())
	}
	for _, roomID := range sc.RoomIDs {
		if roomID == model.TBD {
			continue
		}
		s.roomMaster(roomID).BookSlot(day, start, duration, sc, 0)
	}
	for _, name := range sc.Instructors {
		if name == "" || name == model.TBD {
			continue
		}
		s.masters.FacultyTimetable(name).BookSlot(day, start, duration, sc, 0)
	}
}

// roomMaster resolves a room's master timetable. Booking a room id
// outside the universe is a programming error, not a scheduling
// failure.
func (s *Scheduler) roomMaster(id string) *model.Timetable {
	if _, ok := s.universe[id]; !ok {
		panic(fmt.Sprintf("scheduler: room %q not in room universe", id))
	}
	return s.masters.Room(id)
}
