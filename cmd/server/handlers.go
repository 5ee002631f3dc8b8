package main

import (
	"net/http"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/acadsched/timetable-engine/internal/config"
	"github.com/acadsched/timetable-engine/internal/csvio"
	"github.com/acadsched/timetable-engine/internal/pipeline"
	"github.com/acadsched/timetable-engine/pkg/model"
	"github.com/acadsched/timetable-engine/pkg/timeutil"
)

// server holds the last generated result. The mutex enforces the
// single-writer contract of the master schedules: one generation at a
// time, reads see either the previous complete result or the new one.
type server struct {
	cfg *config.Config
	log *zap.Logger

	mu     sync.Mutex
	result *pipeline.Result
}

type sessionJSON struct {
	CourseCode   string   `json:"course_code"`
	CourseName   string   `json:"course_name"`
	SessionType  string   `json:"session_type"`
	Day          string   `json:"day"`
	StartTime    string   `json:"start_time"`
	DurationMins int      `json:"duration_mins"`
	Rooms        []string `json:"rooms"`
	Instructors  []string `json:"instructors"`
}

func sessionsJSON(tt *model.Timetable) []sessionJSON {
	spans := tt.Sessions()
	out := make([]sessionJSON, 0, len(spans))
	for _, span := range spans {
		out = append(out, sessionJSON{
			CourseCode:   span.Class.Course.Code,
			CourseName:   span.Class.Course.Name,
			SessionType:  string(span.Class.Type),
			Day:          span.Day.String(),
			StartTime:    timeutil.SlotToTime(span.Start),
			DurationMins: span.Class.Type.Duration() * timeutil.SlotDurationMins,
			Rooms:        span.Class.RoomIDs,
			Instructors:  span.Class.Instructors,
		})
	}
	return out
}

func (s *server) handleGenerate(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := pipeline.Generate(s.cfg, s.log)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.result = result
	observeRun(result)

	c.JSON(http.StatusOK, gin.H{
		"sections":        len(result.Sections),
		"failures":        len(result.Failures),
		"pre_violations":  len(result.PreReport.Violations()),
		"post_violations": len(result.PostReport.Violations()),
	})
}

func (s *server) snapshot() *pipeline.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *server) handleListSections(c *gin.Context) {
	result := s.snapshot()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no schedule generated yet"})
		return
	}
	type sectionJSON struct {
		ID         string `json:"id"`
		Department string `json:"department"`
		Semester   int    `json:"semester"`
		Period     string `json:"period"`
		Sessions   int    `json:"sessions"`
	}
	out := make([]sectionJSON, 0, len(result.Sections))
	for _, sec := range result.Sections {
		out = append(out, sectionJSON{
			ID:         sec.ID,
			Department: sec.Department,
			Semester:   sec.Semester,
			Period:     sec.Period,
			Sessions:   len(sec.Timetable.Sessions()),
		})
	}
	c.JSON(http.StatusOK, gin.H{"sections": out})
}

func (s *server) handleGetSection(c *gin.Context) {
	result := s.snapshot()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no schedule generated yet"})
		return
	}
	id := c.Param("id")
	for _, sec := range result.Sections {
		if sec.ID == id {
			c.JSON(http.StatusOK, gin.H{"id": sec.ID, "sessions": sessionsJSON(sec.Timetable)})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown section"})
}

func (s *server) handleListFaculty(c *gin.Context) {
	result := s.snapshot()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no schedule generated yet"})
		return
	}
	seen := make(map[string]bool)
	for name := range result.PreFaculty {
		seen[name] = true
	}
	for name := range result.PostFaculty {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	c.JSON(http.StatusOK, gin.H{"faculty": names})
}

func (s *server) handleGetFaculty(c *gin.Context) {
	result := s.snapshot()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no schedule generated yet"})
		return
	}
	name := c.Param("name")
	masters := result.PreFaculty
	if c.DefaultQuery("period", "PRE") == "POST" {
		masters = result.PostFaculty
	}
	tt, ok := masters[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown faculty"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "sessions": sessionsJSON(tt)})
}

func (s *server) handleValidation(c *gin.Context) {
	result := s.snapshot()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no schedule generated yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pre":  result.PreReport,
		"post": result.PostReport,
	})
}

func (s *server) handleExportCSV(c *gin.Context) {
	result := s.snapshot()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no schedule generated yet"})
		return
	}
	data, err := csvio.ExportSectionsString(result.Sections)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedule.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(data))
}
