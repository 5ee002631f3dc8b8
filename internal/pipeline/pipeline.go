// Package pipeline orchestrates full generation runs: PRE and POST
// schedulers per semester, the PRE→POST overflow hand-off, the Sem-7
// replication rule, and the final validation pass. Runs are strictly
// sequential; the master stores are never written concurrently.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/acadsched/timetable-engine/internal/config"
	"github.com/acadsched/timetable-engine/internal/csvio"
	"github.com/acadsched/timetable-engine/internal/scheduler"
	"github.com/acadsched/timetable-engine/internal/validator"
	"github.com/acadsched/timetable-engine/pkg/model"
)

// replicatedSemester runs identically in both halves instead of
// getting its own POST run.
const replicatedSemester = 7

// Result is everything one generation run produces.
type Result struct {
	Sections    []*model.Section
	PreFaculty  map[string]*model.Timetable
	PostFaculty map[string]*model.Timetable
	Failures    []scheduler.Failure
	PreReport   *validator.Report
	PostReport  *validator.Report
}

// SectionsFor returns the result's sections for one period.
func (r *Result) SectionsFor(period string) []*model.Section {
	var out []*model.Section
	for _, sec := range r.Sections {
		if sec.Period == period {
			out = append(out, sec)
		}
	}
	return out
}

// Generate loads the input files and produces timetables for every
// configured semester.
func Generate(cfg *config.Config, log *zap.Logger) (*Result, error) {
	classrooms, err := csvio.LoadClassrooms(cfg.ClassroomsFile)
	if err != nil {
		return nil, err
	}
	if len(classrooms) == 0 {
		return nil, fmt.Errorf("no classrooms in %s", cfg.ClassroomsFile)
	}
	preCourses, postCourses, err := csvio.LoadCourses(cfg.CoursesFile, log)
	if err != nil {
		return nil, err
	}

	return Run(cfg, log, classrooms, preCourses, postCourses), nil
}

// Run schedules pre-loaded data. Split out from Generate so tests and
// the HTTP layer can drive the pipeline without touching the disk.
func Run(cfg *config.Config, log *zap.Logger, classrooms []*model.Classroom, preCourses, postCourses []*model.Course) *Result {
	preMasters := scheduler.NewMasterSchedules()
	postMasters := scheduler.NewMasterSchedules()

	result := &Result{}
	var overflow []*model.Course

	for _, sem := range cfg.Semesters {
		if sem == replicatedSemester {
			continue
		}

		preSections := CreateSections(cfg, sem, "PRE")
		if courses := filterSemester(preCourses, sem); len(courses) > 0 {
			s := scheduler.New(classrooms, "PRE", preMasters, cfg, log)
			_, fromPre := s.Run(courses, preSections)
			result.Sections = append(result.Sections, preSections...)
			result.Failures = append(result.Failures, s.Failures()...)
			overflow = append(overflow, fromPre...)
		}

		postSections := CreateSections(cfg, sem, "POST")
		courses := filterSemester(postCourses, sem)
		courses = append(courses, filterSemester(overflow, sem)...)
		if len(courses) > 0 {
			s := scheduler.New(classrooms, "POST", postMasters, cfg, log)
			s.Run(courses, postSections)
			result.Sections = append(result.Sections, postSections...)
			result.Failures = append(result.Failures, s.Failures()...)
		}
	}

	if hasSemester(cfg.Semesters, replicatedSemester) {
		preSections := CreateSections(cfg, replicatedSemester, "PRE")
		if courses := filterSemester(preCourses, replicatedSemester); len(courses) > 0 {
			s := scheduler.New(classrooms, "PRE", preMasters, cfg, log)
			s.Run(courses, preSections)
			result.Sections = append(result.Sections, preSections...)
			result.Failures = append(result.Failures, s.Failures()...)

			log.Info("replicating PRE to POST", zap.Int("semester", replicatedSemester))
			postSections := scheduler.ReplicatePreToPost(preSections, postMasters)
			result.Sections = append(result.Sections, postSections...)
		}
	}

	result.PreFaculty = preMasters.Faculty
	result.PostFaculty = postMasters.Faculty
	result.PreReport = validator.ValidateAll(result.SectionsFor("PRE"), preMasters.Faculty, cfg.ClassBreakSlots(), log)
	result.PostReport = validator.ValidateAll(result.SectionsFor("POST"), postMasters.Faculty, cfg.ClassBreakSlots(), log)
	return result
}

// CreateSections builds the section set for one semester and period:
// two physical sections for split departments, one for the rest.
func CreateSections(cfg *config.Config, semester int, period string) []*model.Section {
	var sections []*model.Section
	for _, dept := range cfg.Departments {
		if isSplit(cfg, dept) {
			for _, name := range []string{"A", "B"} {
				id := fmt.Sprintf("%s-Sem%d-%s-%s", dept, semester, period, name)
				sections = append(sections, model.NewSection(id, dept, semester, period, name))
			}
			continue
		}
		id := fmt.Sprintf("%s-Sem%d-%s", dept, semester, period)
		sections = append(sections, model.NewSection(id, dept, semester, period, ""))
	}
	return sections
}

func filterSemester(courses []*model.Course, semester int) []*model.Course {
	var out []*model.Course
	for _, c := range courses {
		if c.Semester == semester {
			out = append(out, c)
		}
	}
	return out
}

func isSplit(cfg *config.Config, dept string) bool {
	for _, d := range cfg.SplitSections {
		if d == dept {
			return true
		}
	}
	return false
}

func hasSemester(semesters []int, want int) bool {
	for _, s := range semesters {
		if s == want {
			return true
		}
	}
	return false
}
