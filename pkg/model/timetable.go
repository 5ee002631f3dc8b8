package model

import (
	"fmt"
	"sync/atomic"

	"github.com/acadsched/timetable-engine/pkg/timeutil"
)

// Day indexes the five weekdays, Monday first.
type Day int

func (d Day) String() string {
	if d < 0 || int(d) >= timeutil.DaysPerWeek {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return timeutil.DayNames[d]
}

// BookingID identifies one scheduled session. A multi-slot session
// repeats the same id across its contiguous slots, in every timetable
// it was booked into (section, faculty and room).
type BookingID uint64

var nextBookingID atomic.Uint64

// ScheduledClass is one booking record shared by all timetables that
// carry the session.
type ScheduledClass struct {
	ID          BookingID
	Course      *Course
	Type        SessionType
	OwnerID     string
	Instructors []string
	RoomIDs     []string
}

func NewScheduledClass(course *Course, sessionType SessionType, ownerID string, instructors, roomIDs []string) *ScheduledClass {
	return &ScheduledClass{
		ID:          BookingID(nextBookingID.Add(1)),
		Course:      course,
		Type:        sessionType,
		OwnerID:     ownerID,
		Instructors: instructors,
		RoomIDs:     roomIDs,
	}
}

// CellKind tags one grid cell. Lunch and break cells are plain tags,
// not bookings, so they never alias across timetables.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellLunch
	CellBreak
	CellBooked
)

type Cell struct {
	Kind    CellKind
	Booking BookingID // set only for CellBooked
}

// SessionCountKey keys the weekly per-course session totals used for
// LTPSC auditing.
type SessionCountKey struct {
	Code string
	Type SessionType
}

// Timetable is a Day×Slot grid owned by one section, faculty member or
// room. Faculty and room timetables are built with semester -1 and get
// no lunch block.
type Timetable struct {
	OwnerID  string
	Semester int
	Grid     [timeutil.DaysPerWeek][timeutil.SlotsPerDay]Cell

	// Bookings resolves cell ids; shared *ScheduledClass values across
	// the timetables a session was booked into.
	Bookings map[BookingID]*ScheduledClass

	usedKeys      [timeutil.DaysPerWeek]map[string]bool
	DayLoad       [timeutil.DaysPerWeek]int
	SessionCounts map[SessionCountKey]int
}

func NewTimetable(ownerID string, semester int) *Timetable {
	tt := &Timetable{
		OwnerID:       ownerID,
		Semester:      semester,
		Bookings:      make(map[BookingID]*ScheduledClass),
		SessionCounts: make(map[SessionCountKey]int),
	}
	for d := range tt.usedKeys {
		tt.usedKeys[d] = make(map[string]bool)
	}
	tt.setLunchBreak()
	return tt
}

// setLunchBreak pre-fills the staggered lunch window before any
// booking happens.
func (tt *Timetable) setLunchBreak() {
	start := timeutil.LunchStart(tt.Semester)
	if start < 0 {
		return
	}
	for d := 0; d < timeutil.DaysPerWeek; d++ {
		for i := 0; i < timeutil.LunchSlots && start+i < timeutil.SlotsPerDay; i++ {
			tt.Grid[d][start+i] = Cell{Kind: CellLunch}
		}
	}
}

// LunchStart returns this timetable's first lunch slot, -1 if none.
func (tt *Timetable) LunchStart() int {
	return timeutil.LunchStart(tt.Semester)
}

// IsSlotFree reports whether every cell of [start, start+duration) is empty.
func (tt *Timetable) IsSlotFree(day Day, start, duration int) bool {
	if start < 0 || start+duration > timeutil.SlotsPerDay {
		return false
	}
	for i := start; i < start+duration; i++ {
		if tt.Grid[day][i].Kind != CellEmpty {
			return false
		}
	}
	return true
}

// DailyLimitViolated reports whether this (course, session-key) was
// already booked on the given day.
func (tt *Timetable) DailyLimitViolated(day Day, code string, t SessionType) bool {
	return tt.usedKeys[day][code+"/"+t.Key()]
}

// BookSlot writes the booking across its slot range, updates the
// daily-key set, the day load and the weekly session counter, then
// appends breakSlots BREAK cells unless the session ends exactly at
// day-end or at this timetable's lunch start.
func (tt *Timetable) BookSlot(day Day, start, duration int, sc *ScheduledClass, breakSlots int) {
	for i := start; i < start+duration && i < timeutil.SlotsPerDay; i++ {
		tt.Grid[day][i] = Cell{Kind: CellBooked, Booking: sc.ID}
	}
	tt.Bookings[sc.ID] = sc
	tt.usedKeys[day][sc.Course.Code+"/"+sc.Type.Key()] = true
	tt.DayLoad[day]++
	tt.SessionCounts[SessionCountKey{Code: sc.Course.Code, Type: sc.Type}]++

	end := start + duration
	if end == timeutil.SlotsPerDay || end == tt.LunchStart() {
		return
	}
	for i := 0; i < breakSlots && end+i < timeutil.SlotsPerDay; i++ {
		if tt.Grid[day][end+i].Kind == CellEmpty {
			tt.Grid[day][end+i] = Cell{Kind: CellBreak}
		}
	}
}

// BookingAt resolves the booking occupying a cell, if any.
func (tt *Timetable) BookingAt(day Day, slot int) (*ScheduledClass, bool) {
	cell := tt.Grid[day][slot]
	if cell.Kind != CellBooked {
		return nil, false
	}
	sc, ok := tt.Bookings[cell.Booking]
	return sc, ok
}

// IsSessionStart reports whether (day, slot) is the first cell of a
// booked session rather than a continuation.
func (tt *Timetable) IsSessionStart(day Day, slot int) bool {
	cell := tt.Grid[day][slot]
	if cell.Kind != CellBooked {
		return false
	}
	if slot == 0 {
		return true
	}
	prev := tt.Grid[day][slot-1]
	return prev.Kind != CellBooked || prev.Booking != cell.Booking
}

// SessionSpan is one booked session located on the grid.
type SessionSpan struct {
	Day      Day
	Start    int
	Duration int
	Class    *ScheduledClass
}

// Sessions walks the grid and returns every booked session with its
// actual contiguous span, in day/slot order.
func (tt *Timetable) Sessions() []SessionSpan {
	var spans []SessionSpan
	for d := 0; d < timeutil.DaysPerWeek; d++ {
		day := Day(d)
		for s := 0; s < timeutil.SlotsPerDay; s++ {
			if !tt.IsSessionStart(day, s) {
				continue
			}
			id := tt.Grid[d][s].Booking
			length := 1
			for s+length < timeutil.SlotsPerDay {
				next := tt.Grid[d][s+length]
				if next.Kind != CellBooked || next.Booking != id {
					break
				}
				length++
			}
			spans = append(spans, SessionSpan{Day: day, Start: s, Duration: length, Class: tt.Bookings[id]})
		}
	}
	return spans
}

// ReplaceBooking rewrites every cell of oldID with the replacement
// booking, keeping session counters in sync. Used when a basket
// placeholder resolves into a concrete course.
func (tt *Timetable) ReplaceBooking(oldID BookingID, sc *ScheduledClass) {
	old, ok := tt.Bookings[oldID]
	if !ok {
		return
	}
	for d := 0; d < timeutil.DaysPerWeek; d++ {
		for s := 0; s < timeutil.SlotsPerDay; s++ {
			if tt.Grid[d][s].Kind == CellBooked && tt.Grid[d][s].Booking == oldID {
				tt.Grid[d][s] = Cell{Kind: CellBooked, Booking: sc.ID}
				tt.usedKeys[d][sc.Course.Code+"/"+sc.Type.Key()] = true
			}
		}
	}
	delete(tt.Bookings, oldID)
	tt.Bookings[sc.ID] = sc
	oldKey := SessionCountKey{Code: old.Course.Code, Type: old.Type}
	if n := tt.SessionCounts[oldKey]; n > 1 {
		tt.SessionCounts[oldKey] = n - 1
	} else {
		delete(tt.SessionCounts, oldKey)
	}
	tt.SessionCounts[SessionCountKey{Code: sc.Course.Code, Type: sc.Type}]++
}

// Clone derives a copy for another owner, used for the Sem-7 PRE→POST
// replication. Cell tags and counters are copied; ScheduledClass
// records stay shared, and the caller re-indexes faculty/room masters.
func (tt *Timetable) Clone(newOwnerID string) *Timetable {
	cp := &Timetable{
		OwnerID:       newOwnerID,
		Semester:      tt.Semester,
		Grid:          tt.Grid,
		DayLoad:       tt.DayLoad,
		Bookings:      make(map[BookingID]*ScheduledClass, len(tt.Bookings)),
		SessionCounts: make(map[SessionCountKey]int, len(tt.SessionCounts)),
	}
	for id, sc := range tt.Bookings {
		cp.Bookings[id] = sc
	}
	for k, v := range tt.SessionCounts {
		cp.SessionCounts[k] = v
	}
	for d := range tt.usedKeys {
		cp.usedKeys[d] = make(map[string]bool, len(tt.usedKeys[d]))
		for k, v := range tt.usedKeys[d] {
			cp.usedKeys[d][k] = v
		}
	}
	return cp
}
