// Package timeutil holds the slot arithmetic shared by the scheduler,
// the validator and the exporters. The day runs 09:00-18:00 in
// 10-minute slots, so slot 0 is 09:00 and slot 53 ends at 18:00.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	SlotDurationMins = 10
	DayStartHour     = 9
	DayEndHour       = 18
	SlotsPerDay      = (DayEndHour - DayStartHour) * 60 / SlotDurationMins // 54
	DaysPerWeek      = 5

	LectureSlots   = 90 / SlotDurationMins  // 9
	TutorialSlots  = 60 / SlotDurationMins  // 6
	PracticalSlots = 120 / SlotDurationMins // 12

	FacultyBreakSlots = 30 / SlotDurationMins // buffer around faculty sessions
	LunchSlots        = 30 / SlotDurationMins
)

var DayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// TimeToSlot converts a "HH:MM" string to its slot index.
// Returns -1 for anything outside the 09:00-18:00 window or unparsable input.
func TimeToSlot(hhmm string) int {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return -1
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || m < 0 || m > 59 {
		return -1
	}
	mins := (h-DayStartHour)*60 + m
	if mins < 0 || mins >= (DayEndHour-DayStartHour)*60 {
		return -1
	}
	return mins / SlotDurationMins
}

// SlotToTime converts a slot index back to its "HH:MM" start time.
func SlotToTime(slot int) string {
	if slot < 0 || slot > SlotsPerDay {
		return "??:??"
	}
	mins := slot * SlotDurationMins
	return fmt.Sprintf("%02d:%02d", DayStartHour+mins/60, mins%60)
}

// LunchStart returns the first lunch slot for a semester's staggered
// lunch window, or -1 for owners without one (faculty and room
// timetables carry semester -1).
func LunchStart(semester int) int {
	switch semester {
	case 1, 7:
		return TimeToSlot("12:30")
	case 3:
		return TimeToSlot("13:00")
	case 5:
		return TimeToSlot("13:30")
	}
	return -1
}

// FloorFromRoomID extracts the floor from a room id: "C101" -> 1, "L004" -> 0.
// Returns -1 when the id carries no digits.
func FloorFromRoomID(roomID string) int {
	for i, r := range roomID {
		if unicode.IsDigit(r) {
			return int(roomID[i] - '0')
		}
	}
	return -1
}

// NumberFromRoomID extracts the numeric part of a room id: "L101" -> 101.
func NumberFromRoomID(roomID string) int {
	start := -1
	for i, r := range roomID {
		if unicode.IsDigit(r) {
			start = i
			break
		}
	}
	if start == -1 {
		return -1
	}
	end := start
	for end < len(roomID) && roomID[end] >= '0' && roomID[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(roomID[start:end])
	if err != nil {
		return -1
	}
	return n
}
