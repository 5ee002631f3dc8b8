// Package validator re-walks completed timetables and reports
// violations. It is a pure auditor: checks return violation strings
// and never block or repair anything, so a "successful" run can still
// carry findings (deliberately, in the room double-booking case).
package validator

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/acadsched/timetable-engine/pkg/model"
	"github.com/acadsched/timetable-engine/pkg/timeutil"
)

// Report groups the findings of one full validation pass.
type Report struct {
	StudentConflicts  []string
	FacultyConflicts  []string
	DailyLimits       []string
	StudentBreaks     []string
	LTPSCMismatches   []string
	RoomDoubleBooking []string
}

// Violations flattens the report in check order.
func (r *Report) Violations() []string {
	var all []string
	all = append(all, r.StudentConflicts...)
	all = append(all, r.FacultyConflicts...)
	all = append(all, r.DailyLimits...)
	all = append(all, r.StudentBreaks...)
	all = append(all, r.LTPSCMismatches...)
	all = append(all, r.RoomDoubleBooking...)
	return all
}

// ValidateAll runs every check over the section set and the faculty
// master schedules, logs the findings and returns the report. It never
// halts processing.
func ValidateAll(sections []*model.Section, faculty map[string]*model.Timetable, breakSlots int, log *zap.Logger) *Report {
	report := &Report{
		StudentConflicts:  CheckStudentConflicts(sections),
		FacultyConflicts:  CheckFacultyConflicts(faculty),
		DailyLimits:       CheckDailyLimits(sections),
		StudentBreaks:     CheckStudentBreaks(sections, breakSlots),
		LTPSCMismatches:   CheckLTPSCFulfillment(sections),
		RoomDoubleBooking: CheckRoomDoubleBooking(sections),
	}

	total := len(report.Violations())
	if total == 0 {
		log.Info("validation passed: timetables conflict-free, LTPSC fulfilled")
		return report
	}
	log.Warn("validation found violations", zap.Int("total", total))
	logGroup(log, "student conflicts", report.StudentConflicts)
	logGroup(log, "faculty conflicts", report.FacultyConflicts)
	logGroup(log, "daily limit violations", report.DailyLimits)
	logGroup(log, "missing student breaks", report.StudentBreaks)
	logGroup(log, "ltpsc mismatches", report.LTPSCMismatches)
	logGroup(log, "room double-bookings", report.RoomDoubleBooking)
	return report
}

func logGroup(log *zap.Logger, name string, findings []string) {
	for _, f := range findings {
		log.Warn(name, zap.String("violation", f))
	}
}

// CheckStudentConflicts flags sessions whose cells do not carry one
// booking identity across the full declared duration.
func CheckStudentConflicts(sections []*model.Section) []string {
	var conflicts []string
	for _, sec := range sections {
		tt := sec.Timetable
		for d := 0; d < timeutil.DaysPerWeek; d++ {
			day := model.Day(d)
			for slot := 0; slot < timeutil.SlotsPerDay; slot++ {
				if !tt.IsSessionStart(day, slot) {
					continue
				}
				sc, _ := tt.BookingAt(day, slot)
				duration := sc.Type.Duration()
				for i := 1; i < duration && slot+i < timeutil.SlotsPerDay; i++ {
					other, ok := tt.BookingAt(day, slot+i)
					if !ok || other.ID != sc.ID {
						conflicts = append(conflicts, fmt.Sprintf(
							"student slot conflict: %s at %s %s", sec.ID, day, timeutil.SlotToTime(slot)))
						break
					}
				}
			}
		}
	}
	return conflicts
}

// CheckFacultyConflicts flags consecutive sessions on one faculty
// timetable starting closer together than the required break.
func CheckFacultyConflicts(faculty map[string]*model.Timetable) []string {
	var conflicts []string
	names := make([]string, 0, len(faculty))
	for name := range faculty {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tt := faculty[name]
		for d := 0; d < timeutil.DaysPerWeek; d++ {
			day := model.Day(d)
			lastEnd := -timeutil.SlotsPerDay
			for slot := 0; slot < timeutil.SlotsPerDay; slot++ {
				if !tt.IsSessionStart(day, slot) {
					continue
				}
				sc, _ := tt.BookingAt(day, slot)
				if slot-lastEnd < timeutil.FacultyBreakSlots {
					conflicts = append(conflicts, fmt.Sprintf(
						"faculty break violation: %s at %s %s", name, day, timeutil.SlotToTime(slot)))
				}
				lastEnd = slot + sc.Type.Duration()
			}
		}
	}
	return conflicts
}

// CheckDailyLimits flags any (section, day) carrying more than one
// session of the same (course, session-key).
func CheckDailyLimits(sections []*model.Section) []string {
	var conflicts []string
	for _, sec := range sections {
		tt := sec.Timetable
		for d := 0; d < timeutil.DaysPerWeek; d++ {
			day := model.Day(d)
			counts := make(map[string]int)
			for slot := 0; slot < timeutil.SlotsPerDay; slot++ {
				if !tt.IsSessionStart(day, slot) {
					continue
				}
				sc, _ := tt.BookingAt(day, slot)
				counts[sc.Course.Code+"/"+sc.Type.Key()]++
			}
			keys := make([]string, 0, len(counts))
			for key := range counts {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				if counts[key] > 1 {
					conflicts = append(conflicts, fmt.Sprintf(
						"daily limit violation: %s has %d %q sessions on %s", sec.ID, counts[key], key, day))
				}
			}
		}
	}
	return conflicts
}

// CheckStudentBreaks flags sessions not followed by the required BREAK
// run, unless they end at day-end or right before the section's lunch.
func CheckStudentBreaks(sections []*model.Section, breakSlots int) []string {
	var conflicts []string
	for _, sec := range sections {
		tt := sec.Timetable
		lunchStart := tt.LunchStart()
		for d := 0; d < timeutil.DaysPerWeek; d++ {
			day := model.Day(d)
			for slot := 0; slot < timeutil.SlotsPerDay; slot++ {
				if !tt.IsSessionStart(day, slot) {
					continue
				}
				sc, _ := tt.BookingAt(day, slot)
				end := slot + sc.Type.Duration()
				if end >= timeutil.SlotsPerDay || end == lunchStart {
					continue
				}
				missing := false
				for i := 0; i < breakSlots; i++ {
					if end+i >= timeutil.SlotsPerDay || tt.Grid[d][end+i].Kind != model.CellBreak {
						missing = true
						break
					}
				}
				if missing {
					conflicts = append(conflicts, fmt.Sprintf(
						"missing student break: %s after %s at %s %s",
						sec.ID, sc.Course.Code, day, timeutil.SlotToTime(slot)))
				}
			}
		}
	}
	return conflicts
}

// CheckLTPSCFulfillment compares the booked lecture/tutorial/practical
// totals per section and real course against the course's required
// weekly sessions. Unresolved basket placeholders are excluded.
func CheckLTPSCFulfillment(sections []*model.Section) []string {
	var conflicts []string
	for _, sec := range sections {
		tt := sec.Timetable

		scheduled := make(map[string]*model.Course)
		for _, sc := range tt.Bookings {
			if !sc.Course.IsPseudo() {
				scheduled[sc.Course.Code] = sc.Course
			}
		}
		codes := make([]string, 0, len(scheduled))
		for code := range scheduled {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		for _, code := range codes {
			course := scheduled[code]
			required := course.RequiredSessions()
			for _, st := range [3]model.SessionType{model.Lecture, model.Tutorial, model.Practical} {
				got := tt.SessionCounts[model.SessionCountKey{Code: code, Type: st}]
				if got != required[st] {
					conflicts = append(conflicts, fmt.Sprintf(
						"ltpsc mismatch: %s for %s: expected %d %s sessions, got %d",
						sec.ID, code, required[st], st, got))
				}
			}
		}
	}
	return conflicts
}

// CheckRoomDoubleBooking flags any concrete room referenced by two
// different sections at the same time, across the whole section set.
// This is the one place the scheduler's accept-a-busy-room degradation
// becomes visible. One entry is emitted per contiguous overlap run.
func CheckRoomDoubleBooking(sections []*model.Section) []string {
	// room -> day -> slot -> occupants ("section (course)")
	usage := make(map[string]map[int]map[int][]string)

	for _, sec := range sections {
		tt := sec.Timetable
		for d := 0; d < timeutil.DaysPerWeek; d++ {
			day := model.Day(d)
			for slot := 0; slot < timeutil.SlotsPerDay; slot++ {
				if !tt.IsSessionStart(day, slot) {
					continue
				}
				sc, _ := tt.BookingAt(day, slot)
				duration := sc.Type.Duration()
				for _, roomID := range sc.RoomIDs {
					if roomID == model.TBD {
						continue
					}
					if usage[roomID] == nil {
						usage[roomID] = make(map[int]map[int][]string)
					}
					if usage[roomID][d] == nil {
						usage[roomID][d] = make(map[int][]string)
					}
					for i := 0; i < duration && slot+i < timeutil.SlotsPerDay; i++ {
						usage[roomID][d][slot+i] = append(usage[roomID][d][slot+i],
							fmt.Sprintf("%s (%s)", sec.ID, sc.Course.Code))
					}
				}
			}
		}
	}

	var conflicts []string
	roomIDs := make([]string, 0, len(usage))
	for id := range usage {
		roomIDs = append(roomIDs, id)
	}
	sort.Strings(roomIDs)

	for _, roomID := range roomIDs {
		for d := 0; d < timeutil.DaysPerWeek; d++ {
			slots := usage[roomID][d]
			for slot := 0; slot < timeutil.SlotsPerDay; slot++ {
				occupants := slots[slot]
				if len(occupants) < 2 {
					continue
				}
				if slot > 0 && len(slots[slot-1]) > 1 {
					continue // same overlap run
				}
				sorted := append([]string(nil), occupants...)
				sort.Strings(sorted)
				conflicts = append(conflicts, fmt.Sprintf(
					"room %s double-booked at %s %s: %s",
					roomID, model.Day(d), timeutil.SlotToTime(slot), strings.Join(sorted, ", ")))
			}
		}
	}
	return conflicts
}
