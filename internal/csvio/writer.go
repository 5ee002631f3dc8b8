package csvio

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/acadsched/timetable-engine/pkg/model"
	"github.com/acadsched/timetable-engine/pkg/timeutil"
)

// ScheduleCSVRow is one exported booking.
type ScheduleCSVRow struct {
	Section      string `csv:"section"`
	Period       string `csv:"period"`
	CourseCode   string `csv:"course_code"`
	CourseName   string `csv:"course_name"`
	SessionType  string `csv:"session_type"`
	Day          string `csv:"day"`
	StartTime    string `csv:"start_time"`
	DurationMins int    `csv:"duration_mins"`
	Rooms        string `csv:"rooms"`
	Instructors  string `csv:"instructors"`
}

// ExportSections flattens every section timetable into booking rows
// and writes them to the given path.
func ExportSections(sections []*model.Section, path string) error {
	rows := formatSections(sections)

	if _, err := os.Stat(path); err == nil {
		os.Remove(path)
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, os.ModePerm)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	if err := gocsv.MarshalFile(&rows, out); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ExportSectionsString renders the same rows as a CSV string, for the
// HTTP download endpoint.
func ExportSectionsString(sections []*model.Section) (string, error) {
	rows := formatSections(sections)
	return gocsv.MarshalString(&rows)
}

func formatSections(sections []*model.Section) []*ScheduleCSVRow {
	var rows []*ScheduleCSVRow
	for _, sec := range sections {
		for _, span := range sec.Timetable.Sessions() {
			rows = append(rows, &ScheduleCSVRow{
				Section:      sec.ID,
				Period:       sec.Period,
				CourseCode:   span.Class.Course.Code,
				CourseName:   span.Class.Course.Name,
				SessionType:  string(span.Class.Type),
				Day:          span.Day.String(),
				StartTime:    timeutil.SlotToTime(span.Start),
				DurationMins: span.Class.Type.Duration() * timeutil.SlotDurationMins,
				Rooms:        strings.Join(span.Class.RoomIDs, "+"),
				Instructors:  strings.Join(span.Class.Instructors, ";"),
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Section != rows[j].Section {
			return rows[i].Section < rows[j].Section
		}
		if rows[i].Day != rows[j].Day {
			return dayIndex(rows[i].Day) < dayIndex(rows[j].Day)
		}
		return rows[i].StartTime < rows[j].StartTime
	})
	return rows
}

func dayIndex(name string) int {
	for i, d := range timeutil.DayNames {
		if d == name {
			return i
		}
	}
	return len(timeutil.DayNames)
}
