// Package csvio reads course and classroom data and writes the
// flattened schedule back out as CSV.
package csvio

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/acadsched/timetable-engine/pkg/model"
	"github.com/acadsched/timetable-engine/pkg/timeutil"
)

// pseudoLTPSC is the contact-hour override for basket reservations:
// one weekly tutorial-length slot shared by the whole basket.
const pseudoLTPSC = "1-0-0-0-1"

// CourseCSVRow mirrors one line of course.csv.
type CourseCSVRow struct {
	Code        string `csv:"Course_Code"`
	Name        string `csv:"Course_Name"`
	Semester    int    `csv:"Semester"`
	Department  string `csv:"Department"`
	LTPSC       string `csv:"L-T-P-S-C"`
	Faculty     string `csv:"Faculty"` // ";"-separated instructor list
	Registered  int    `csv:"Registered"`
	Elective    string `csv:"Elective"`
	Combined    string `csv:"Combined"`
	Schedule    string `csv:"Schedule"` // FULL / PRE / POST / SPLIT / OVERFLOW / BASKET_FULL
	Basket      string `csv:"Basket"`
}

// LoadClassrooms reads the classroom universe. The floor is derived
// from the room id ("C101" is floor 1).
func LoadClassrooms(path string) ([]*model.Classroom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rooms []*model.Classroom
	if err := gocsv.UnmarshalFile(f, &rooms); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, room := range rooms {
		room.ID = strings.TrimSpace(room.ID)
		room.Type = model.RoomType(strings.ToUpper(strings.TrimSpace(string(room.Type))))
		room.Floor = timeutil.FloorFromRoomID(room.ID)
	}
	return rooms, nil
}

// LoadCourses reads course.csv and splits it into the PRE and POST
// course lists. Elective and basket rows are folded into pseudo-course
// bundles; full-semester courses appear in both halves.
func LoadCourses(path string, log *zap.Logger) (pre, post []*model.Course, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rows []*CourseCSVRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var plain []*model.Course
	basketed := make(map[string][]*model.Course)
	basketPref := make(map[string]model.Preference)

	for _, row := range rows {
		course := courseFromRow(row, log)
		if course.BasketCode != "" {
			key := basketKey(course)
			basketed[key] = append(basketed[key], course)
			basketPref[key] = course.Preference
			continue
		}
		plain = append(plain, course)
	}

	for _, course := range plain {
		switch course.Preference {
		case model.PrefPre:
			pre = append(pre, course)
		case model.PrefPost:
			post = append(post, course)
		default: // FULL, SPLIT and anything unspecified run in both halves
			pre = append(pre, course)
			post = append(post, course)
		}
	}

	keys := make([]string, 0, len(basketed))
	for key := range basketed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		pseudo := buildPseudoCourse(key, basketed[key], basketPref[key], log)
		switch pseudo.Preference {
		case model.PrefBasketFull:
			pre = append(pre, pseudo)
			post = append(post, pseudo)
		default:
			// Cross-department electives start in PRE; failures come
			// back as overflow and rejoin the POST list at the caller.
			pre = append(pre, pseudo)
		}
	}

	log.Info("courses loaded",
		zap.String("file", path),
		zap.Int("rows", len(rows)),
		zap.Int("pre", len(pre)),
		zap.Int("post", len(post)),
		zap.Int("baskets", len(basketed)))
	return pre, post, nil
}

func courseFromRow(row *CourseCSVRow, log *zap.Logger) *model.Course {
	l, t, p, s, credits, ok := model.ParseLTPSC(row.LTPSC)
	if !ok {
		log.Warn("malformed LTPSC, defaulting to 0-0-0",
			zap.String("course", row.Code), zap.String("ltpsc", row.LTPSC))
	}

	course := &model.Course{
		Code:       strings.TrimSpace(row.Code),
		Name:       strings.TrimSpace(row.Name),
		Semester:   row.Semester,
		Department: strings.TrimSpace(row.Department),
		L:          l, T: t, P: p, S: s,
		Credits:    credits,
		Registered: row.Registered,
		Elective:   isYes(row.Elective),
		Combined:   isYes(row.Combined),
		Preference: preferenceFrom(row.Schedule),
		BasketCode: strings.TrimSpace(row.Basket),
	}
	course.HalfSemester = course.Preference == model.PrefPre || course.Preference == model.PrefPost
	for _, name := range strings.Split(row.Faculty, ";") {
		if name = strings.TrimSpace(name); name != "" {
			course.Instructors = append(course.Instructors, name)
		}
	}
	if course.HasOddPractical() {
		log.Warn("odd practical hours round up to an extra lab session",
			zap.String("course", course.Code), zap.Int("P", course.P))
	}
	return course
}

// basketKey groups basket rows into pseudo-courses: cross-department
// electives bundle per (semester, basket); department baskets bundle
// per (semester, department, basket), except semesters 5 and 7 where
// baskets deliberately open up to every department.
func basketKey(c *model.Course) string {
	if c.Preference == model.PrefOverflow || c.Semester == 5 || c.Semester == 7 {
		return fmt.Sprintf("%d||%s", c.Semester, c.BasketCode)
	}
	return fmt.Sprintf("%d|%s|%s", c.Semester, c.Department, c.BasketCode)
}

func buildPseudoCourse(key string, bundled []*model.Course, pref model.Preference, log *zap.Logger) *model.Course {
	first := bundled[0]
	dept := ""
	if parts := strings.Split(key, "|"); parts[1] != "" {
		dept = parts[1]
	}

	l, t, p, s, credits, _ := model.ParseLTPSC(pseudoLTPSC)
	pseudo := &model.Course{
		Code:       fmt.Sprintf("BASKET-%s-SEM%d", first.BasketCode, first.Semester),
		Name:       fmt.Sprintf("Basket %s", first.BasketCode),
		Semester:   first.Semester,
		Department: dept,
		L:          l, T: t, P: p, S: s,
		Credits:    credits,
		Elective:   true,
		Preference: pref,
		BasketCode: first.BasketCode,
		Bundled:    bundled,
	}
	log.Debug("basket bundled",
		zap.String("pseudo", pseudo.Code),
		zap.String("department", dept),
		zap.Int("courses", len(bundled)))
	return pseudo
}

func preferenceFrom(raw string) model.Preference {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PRE":
		return model.PrefPre
	case "POST":
		return model.PrefPost
	case "SPLIT":
		return model.PrefSplit
	case "OVERFLOW":
		return model.PrefOverflow
	case "BASKET_FULL":
		return model.PrefBasketFull
	default:
		return model.PrefFull
	}
}

func isYes(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}
