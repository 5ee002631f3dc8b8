// Package scheduler books course sessions into section, faculty and
// room timetables for one PRE or POST run. Scheduling never throws:
// sessions that cannot be placed accumulate as failures, and PRE-run
// elective fallout is handed back as overflow for the POST run.
package scheduler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/acadsched/timetable-engine/internal/config"
	"github.com/acadsched/timetable-engine/pkg/model"
)

// typePriority schedules harder-to-fit sessions first.
var typePriority = [3]model.SessionType{model.Practical, model.Lecture, model.Tutorial}

// Failure records one session that could not be placed.
type Failure struct {
	CourseCode  string
	SessionType model.SessionType
	Target      string
	Reason      string
}

// Scheduler runs the four booking phases over one course/section set.
// Construct a fresh one per run; the MasterSchedules store is shared
// across runs of the same period.
type Scheduler struct {
	cfg     *config.Config
	log     *zap.Logger
	period  string
	masters *MasterSchedules

	universe     map[string]*model.Classroom
	combinedHall *model.Classroom
	largeRooms   []*model.Classroom
	smallRooms   []*model.Classroom
	labRooms     []*model.Classroom

	failures []Failure
}

// placeholder is one reserved basket slot booked in phase B, waiting
// for phase D to resolve its bundled real courses.
type placeholder struct {
	pseudo  *model.Course
	class   *model.ScheduledClass
	day     model.Day
	start   int
	targets []*model.Section
}

func New(classrooms []*model.Classroom, period string, masters *MasterSchedules, cfg *config.Config, log *zap.Logger) *Scheduler {
	s := &Scheduler{
		cfg:      cfg,
		log:      log,
		period:   period,
		masters:  masters,
		universe: make(map[string]*model.Classroom, len(classrooms)),
	}
	s.partitionRooms(classrooms)
	return s
}

// Failures returns every session the run could not place.
func (s *Scheduler) Failures() []Failure {
	return s.failures
}

// Run books all courses into the given sections in four phases:
// combined classes, basket placeholders, core courses, and basket
// resolution. It returns the mutated sections and the deduplicated
// overflow courses a PRE run hands to the POST run.
func (s *Scheduler) Run(courses []*model.Course, sections []*model.Section) ([]*model.Section, []*model.Course) {
	var combined, pseudo, core []*model.Course
	for _, c := range courses {
		switch {
		case c.IsPseudo():
			pseudo = append(pseudo, c)
		case c.Combined:
			combined = append(combined, c)
		default:
			core = append(core, c)
		}
	}

	overflow := newOverflowList()
	s.scheduleCombined(combined, sections)
	placeholders := s.schedulePseudo(pseudo, sections, overflow)
	s.scheduleCore(core, sections)
	s.assignElectives(placeholders, overflow)

	s.log.Info("scheduler run complete",
		zap.String("period", s.period),
		zap.Int("combined", len(combined)),
		zap.Int("baskets", len(pseudo)),
		zap.Int("core", len(core)),
		zap.Int("failures", len(s.failures)),
		zap.Int("overflow", len(overflow.courses)))
	return sections, overflow.courses
}

// Phase A: combined classes. All sections of the course's department
// and semester share the designated hall; the booking lands in every
// section plus the hall and faculty master schedules.
func (s *Scheduler) scheduleCombined(courses []*model.Course, sections []*model.Section) {
	for _, course := range courses {
		targets := sectionsFor(sections, course.Department, course.Semester)
		if len(targets) == 0 {
			s.fail(course.Code, "", course.Department, "no sections for combined course")
			continue
		}
		if s.combinedHall == nil {
			s.fail(course.Code, "", course.Department,
				fmt.Sprintf("combined hall %q missing from room universe", s.cfg.CombinedRoomID))
			continue
		}
		if s.combinedHall.Capacity < course.Registered {
			s.fail(course.Code, "", course.Department,
				fmt.Sprintf("combined hall %s seats %d, course has %d registered",
					s.combinedHall.ID, s.combinedHall.Capacity, course.Registered))
			continue
		}

		required := course.RequiredSessions()
		for _, st := range typePriority {
			for i := 0; i < required[st]; i++ {
				day, start, ok := s.findCommonSlot(slotQuery{
					sections:    targets,
					course:      course,
					sessionType: st,
					instructors: course.Instructors,
					extraRooms:  []string{s.combinedHall.ID},
				})
				if !ok {
					s.fail(course.Code, st, course.Department, "no common slot for combined session")
					continue
				}
				sc := model.NewScheduledClass(course, st, course.Department, course.Instructors, []string{s.combinedHall.ID})
				s.book(targets, day, start, sc)
			}
		}
	}
}

// Phase B: reserve one common slot per basket pseudo-course across its
// target sections. No faculty check; instructor and room stay "TBD"
// until phase D.
func (s *Scheduler) schedulePseudo(courses []*model.Course, sections []*model.Section, overflow *overflowList) []placeholder {
	var placeholders []placeholder
	for _, pseudo := range courses {
		targets := s.pseudoTargets(pseudo, sections)
		if len(targets) == 0 {
			s.fail(pseudo.Code, "", pseudo.BasketCode, "no sections for basket reservation")
			continue
		}

		required := pseudo.RequiredSessions()
		for _, st := range typePriority {
			for i := 0; i < required[st]; i++ {
				day, start, ok := s.findCommonSlot(slotQuery{
					sections:    targets,
					course:      pseudo,
					sessionType: st,
				})
				if !ok {
					s.fail(pseudo.Code, st, pseudo.BasketCode, "no common slot for basket reservation")
					if pseudo.Preference == model.PrefOverflow && s.period == "PRE" {
						overflow.addAll(pseudo.Bundled)
					}
					continue
				}
				sc := model.NewScheduledClass(pseudo, st, pseudo.BasketCode,
					[]string{model.TBD}, []string{model.TBD})
				for _, sec := range targets {
					sec.Timetable.BookSlot(day, start, st.Duration(), sc, s.cfg.ClassBreakSlots())
				}
				placeholders = append(placeholders, placeholder{
					pseudo: pseudo, class: sc, day: day, start: start, targets: targets,
				})
			}
		}
	}
	return placeholders
}

// pseudoTargets picks the sections a basket reserves: all sections of
// the semester for cross-department baskets (empty department), else
// the bundling department's own sections.
func (s *Scheduler) pseudoTargets(pseudo *model.Course, sections []*model.Section) []*model.Section {
	var targets []*model.Section
	for _, sec := range sections {
		if sec.Semester != pseudo.Semester {
			continue
		}
		if pseudo.Department != "" && sec.Department != pseudo.Department {
			continue
		}
		targets = append(targets, sec)
	}
	return targets
}

// Phase C: core courses, each matched section scheduled independently,
// practicals first.
func (s *Scheduler) scheduleCore(courses []*model.Course, sections []*model.Section) {
	for _, course := range courses {
		targets := s.coreTargets(course, sections)
		if len(targets) == 0 {
			s.fail(course.Code, "", course.Department, "no matching sections")
			continue
		}
		required := course.RequiredSessions()
		for _, sec := range targets {
			for _, st := range typePriority {
				for i := 0; i < required[st]; i++ {
					s.scheduleCoreSession(course, st, sec)
				}
			}
		}
	}
}

// coreTargets resolves a course's sections: SPLIT courses run section A
// in PRE and section B in POST; everything else takes the whole
// department set.
func (s *Scheduler) coreTargets(course *model.Course, sections []*model.Section) []*model.Section {
	all := sectionsFor(sections, course.Department, course.Semester)
	if course.Preference != model.PrefSplit {
		return all
	}
	want := "A"
	if s.period == "POST" {
		want = "B"
	}
	var matched []*model.Section
	for _, sec := range all {
		if sec.Name == want {
			matched = append(matched, sec)
		}
	}
	return matched
}

func (s *Scheduler) scheduleCoreSession(course *model.Course, st model.SessionType, sec *model.Section) {
	students := course.Registered
	split := s.isSplitDepartment(course.Department)
	if split {
		students = (students + 1) / 2 // two physical sections
	}

	instructors := s.sessionInstructors(course, st, sec, split)

	day, start, ok := s.findCommonSlot(slotQuery{
		sections:    []*model.Section{sec},
		course:      course,
		sessionType: st,
		instructors: instructors,
	})
	if !ok {
		s.fail(course.Code, st, sec.ID, "no free slot in week")
		return
	}

	roomIDs := s.pickRooms(students, st, split, day, start)
	if len(roomIDs) == 0 {
		s.fail(course.Code, st, sec.ID, "no rooms of required type")
		return
	}

	sc := model.NewScheduledClass(course, st, sec.ID, instructors, roomIDs)
	s.book([]*model.Section{sec}, day, start, sc)
}

// sessionInstructors picks who teaches this session. Split departments
// with two listed instructors send one to each physical section, and
// their practicals prefer a third instructor when one is listed.
func (s *Scheduler) sessionInstructors(course *model.Course, st model.SessionType, sec *model.Section, split bool) []string {
	if !split {
		return course.Instructors
	}
	if st == model.Practical && len(course.Instructors) >= 3 {
		return []string{course.Instructors[2]}
	}
	if len(course.Instructors) >= 2 {
		switch sec.Name {
		case "A":
			return []string{course.Instructors[0]}
		case "B":
			return []string{course.Instructors[1]}
		}
	}
	return course.Instructors
}

// pickRooms chooses the room set for one session. Practicals too big
// for one lab try an adjacent lab pair before degrading to a single
// lab; split departments assume a lab holds at most the configured cap
// however large its listed capacity.
func (s *Scheduler) pickRooms(students int, st model.SessionType, split bool, day model.Day, start int) []string {
	duration := st.Duration()
	if st == model.Practical {
		oversized := students > s.largestLabCapacity() || (split && students > s.cfg.LabCapacityCap)
		if oversized {
			if a, b := s.findAdjacentLabs(students, day, start, duration); a != nil {
				return []string{a.ID, b.ID}
			}
		}
	}
	room := s.findAvailableRoom(students, st, day, start, duration)
	if room == nil {
		return nil
	}
	return []string{room.ID}
}

// Phase D: resolve every placeholder booked in phase B into concrete
// rooms and instructors, rewriting only the sections that belong to
// each bundled course's department. Failed cross-department electives
// in a PRE run become POST overflow; everything else is permanent.
func (s *Scheduler) assignElectives(placeholders []placeholder, overflow *overflowList) {
	for _, ph := range placeholders {
		duration := ph.class.Type.Duration()
		for _, real := range ph.pseudo.Bundled {
			if !s.instructorsAvailable(real.Instructors, ph.day, ph.start, duration) {
				s.failResolve(real, ph, overflow, "faculty unavailable at reserved slot")
				continue
			}
			room := s.findAvailableRoom(real.Registered, ph.class.Type, ph.day, ph.start, duration)
			if room == nil {
				s.failResolve(real, ph, overflow, "no rooms of required type")
				continue
			}

			sc := model.NewScheduledClass(real, ph.class.Type, real.Department, real.Instructors, []string{room.ID})
			s.roomMaster(room.ID).BookSlot(ph.day, ph.start, duration, sc, 0)
			for _, name := range real.Instructors {
				if name == "" || name == model.TBD {
					continue
				}
				s.masters.FacultyTimetable(name).BookSlot(ph.day, ph.start, duration, sc, 0)
			}
			for _, sec := range ph.targets {
				if sec.Department == real.Department {
					sec.Timetable.ReplaceBooking(ph.class.ID, sc)
				}
			}
		}
	}
}

func (s *Scheduler) failResolve(real *model.Course, ph placeholder, overflow *overflowList, reason string) {
	if ph.pseudo.Preference == model.PrefOverflow && s.period == "PRE" {
		overflow.add(real)
		s.log.Info("elective deferred to POST overflow",
			zap.String("course", real.Code), zap.String("reason", reason))
		return
	}
	s.fail(real.Code, ph.class.Type, ph.pseudo.BasketCode, reason)
}

func (s *Scheduler) fail(code string, st model.SessionType, target, reason string) {
	s.failures = append(s.failures, Failure{
		CourseCode:  code,
		SessionType: st,
		Target:      target,
		Reason:      reason,
	})
	s.log.Warn("session not scheduled",
		zap.String("course", code),
		zap.String("type", string(st)),
		zap.String("target", target),
		zap.String("reason", reason))
}

func (s *Scheduler) isSplitDepartment(dept string) bool {
	for _, d := range s.cfg.SplitSections {
		if d == dept {
			return true
		}
	}
	return false
}

func sectionsFor(sections []*model.Section, department string, semester int) []*model.Section {
	var out []*model.Section
	for _, sec := range sections {
		if sec.Department == department && sec.Semester == semester {
			out = append(out, sec)
		}
	}
	return out
}

// overflowList accumulates PRE-run elective fallout, deduplicated by
// course code, for the caller to merge into the POST course list.
type overflowList struct {
	seen    map[string]bool
	courses []*model.Course
}

func newOverflowList() *overflowList {
	return &overflowList{seen: make(map[string]bool)}
}

func (o *overflowList) add(c *model.Course) {
	if o.seen[c.Code] {
		return
	}
	o.seen[c.Code] = true
	o.courses = append(o.courses, c)
}

func (o *overflowList) addAll(cs []*model.Course) {
	for _, c := range cs {
		o.add(c)
	}
}
