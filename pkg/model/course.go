package model

import (
	"strconv"
	"strings"

	"github.com/acadsched/timetable-engine/pkg/timeutil"
)

// TBD marks a placeholder instructor or room on a basket reservation
// that a later scheduling phase resolves.
const TBD = "TBD"

// SessionType is one of the three contact-hour kinds a course can require.
type SessionType string

const (
	Lecture   SessionType = "lecture"
	Tutorial  SessionType = "tutorial"
	Practical SessionType = "practical"
)

// Key returns the daily-limit bucket for a session type. Lectures and
// tutorials share one bucket so a section never gets two theory
// sessions of the same course on one day; practicals count separately.
func (t SessionType) Key() string {
	if t == Practical {
		return "LAB"
	}
	return "CLASS"
}

// Duration returns the session length in slots.
func (t SessionType) Duration() int {
	switch t {
	case Lecture:
		return timeutil.LectureSlots
	case Tutorial:
		return timeutil.TutorialSlots
	case Practical:
		return timeutil.PracticalSlots
	}
	return 0
}

// Preference controls which half of the semester a course lands in and
// how its sections are targeted.
type Preference string

const (
	PrefFull       Preference = "FULL"
	PrefPre        Preference = "PRE"
	PrefPost       Preference = "POST"
	PrefSplit      Preference = "SPLIT"
	PrefOverflow   Preference = "OVERFLOW"
	PrefBasketFull Preference = "BASKET_FULL"
)

// Course is a real course to schedule, or a pseudo-course standing in
// for a basket of electives (Bundled non-empty) that share one
// reserved slot until the assignment phase resolves them.
type Course struct {
	Code         string
	Name         string
	Semester     int
	Department   string
	L            int
	T            int
	P            int
	S            int
	Credits      int
	Instructors  []string
	Registered   int
	Elective     bool
	HalfSemester bool
	Combined     bool
	Preference   Preference
	BasketCode   string
	Bundled      []*Course
}

// IsPseudo reports whether this course is a synthetic basket bundle.
func (c *Course) IsPseudo() bool {
	return len(c.Bundled) > 0
}

// ParseLTPSC splits an "L-T-P-S-C" contact-hour code. Malformed input
// yields all zeros and ok=false; callers log the fallback, nothing
// fails on bad data.
func ParseLTPSC(raw string) (l, t, p, s, credits int, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 5 {
		return 0, 0, 0, 0, 0, false
	}
	vals := make([]int, 5)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 {
			return 0, 0, 0, 0, 0, false
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], vals[3], vals[4], true
}

// RequiredSessions maps the LTPSC code to weekly session counts.
// Two or three lecture hours normalize to two lecture sessions; a lone
// lecture hour folds into an extra tutorial; practical hours pair up
// into two-hour lab sessions, rounding odd counts up.
func (c *Course) RequiredSessions() map[SessionType]int {
	req := map[SessionType]int{Lecture: 0, Tutorial: c.T, Practical: (c.P + 1) / 2}
	switch {
	case c.L >= 2:
		req[Lecture] = 2
	case c.L == 1:
		req[Tutorial]++
	}
	return req
}

// HasOddPractical reports whether the practical hours don't pair
// evenly into two-hour sessions. The loader logs a warning for these.
func (c *Course) HasOddPractical() bool {
	return c.P%2 == 1
}
