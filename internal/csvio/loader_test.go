package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadsched/timetable-engine/pkg/model"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func byCode(courses []*model.Course, code string) *model.Course {
	for _, c := range courses {
		if c.Code == code {
			return c
		}
	}
	return nil
}

const coursesCSV = `Course_Code,Course_Name,Semester,Department,L-T-P-S-C,Faculty,Registered,Elective,Combined,Schedule,Basket
CS101,Intro to Programming,1,CSE,3-0-2-0-4,Dr. A;Dr. B,120,No,No,FULL,
CS102,Discrete Maths,1,CSE,2-1-0-0-3,Dr. C,60,No,No,PRE,
CS103,Operating Systems,1,CSE,3-0-0-0-3,Dr. D,60,No,No,POST,
EL301,Elective Alpha,1,CSE,3-0-0-0-3,Dr. E,30,Yes,No,BASKET_FULL,B1
EL302,Elective Beta,1,CSE,3-0-0-0-3,Dr. F,25,Yes,No,BASKET_FULL,B1
EL501,Elective Gamma,5,CSE,3-0-0-0-3,Dr. G,20,Yes,No,OVERFLOW,OV
`

func TestLoadCoursesSplitsHalves(t *testing.T) {
	path := writeTempCSV(t, "course.csv", coursesCSV)

	pre, post, err := LoadCourses(path, zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, byCode(pre, "CS101"), "FULL courses run in both halves")
	assert.NotNil(t, byCode(post, "CS101"))
	assert.NotNil(t, byCode(pre, "CS102"))
	assert.Nil(t, byCode(post, "CS102"), "PRE courses stay out of POST")
	assert.Nil(t, byCode(pre, "CS103"))
	assert.NotNil(t, byCode(post, "CS103"))

	full := byCode(pre, "CS101")
	assert.Equal(t, 3, full.L)
	assert.Equal(t, 2, full.P)
	assert.Equal(t, 4, full.Credits)
	assert.Equal(t, []string{"Dr. A", "Dr. B"}, full.Instructors)
	assert.Equal(t, model.PrefFull, full.Preference)
	assert.False(t, full.HalfSemester)
	assert.True(t, byCode(pre, "CS102").HalfSemester)
}

func TestLoadCoursesBundlesBaskets(t *testing.T) {
	path := writeTempCSV(t, "course.csv", coursesCSV)

	pre, post, err := LoadCourses(path, zap.NewNop())
	require.NoError(t, err)

	b1 := byCode(pre, "BASKET-B1-SEM1")
	require.NotNil(t, b1)
	assert.True(t, b1.IsPseudo())
	assert.Len(t, b1.Bundled, 2)
	assert.Equal(t, "CSE", b1.Department, "sem-1 baskets bundle per department")
	assert.Equal(t, 1, b1.L, "basket reserves one tutorial-length slot")
	assert.NotNil(t, byCode(post, "BASKET-B1-SEM1"), "BASKET_FULL reserves in both halves")

	ov := byCode(pre, "BASKET-OV-SEM5")
	require.NotNil(t, ov)
	assert.Equal(t, "", ov.Department, "overflow and senior baskets open to every department")
	assert.Equal(t, model.PrefOverflow, ov.Preference)
	assert.Nil(t, byCode(post, "BASKET-OV-SEM5"), "overflow baskets start in PRE only")
}

func TestLoadCoursesMalformedLTPSC(t *testing.T) {
	path := writeTempCSV(t, "course.csv",
		`Course_Code,Course_Name,Semester,Department,L-T-P-S-C,Faculty,Registered,Elective,Combined,Schedule,Basket
CS999,Broken,1,CSE,3-x-1,Dr. Z,40,No,No,FULL,
`)

	pre, _, err := LoadCourses(path, zap.NewNop())
	require.NoError(t, err, "bad contact-hour data never fails the load")
	c := byCode(pre, "CS999")
	require.NotNil(t, c)
	assert.Zero(t, c.L)
	assert.Zero(t, c.T)
	assert.Zero(t, c.P)
}

func TestLoadClassrooms(t *testing.T) {
	path := writeTempCSV(t, "classroom_data.csv",
		`id,capacity,type,facilities
C101,120,classroom,projector
L205,36,Lab,PCs
`)

	rooms, err := LoadClassrooms(path)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	assert.Equal(t, model.RoomClassroom, rooms[0].Type, "type is normalized to upper case")
	assert.Equal(t, 1, rooms[0].Floor)
	assert.Equal(t, model.RoomLab, rooms[1].Type)
	assert.Equal(t, 2, rooms[1].Floor)
	assert.Equal(t, 36, rooms[1].Capacity)
}

func TestBasketKeyGrouping(t *testing.T) {
	cases := []struct {
		name string
		in   *model.Course
		key  string
	}{
		{"per-department", &model.Course{Semester: 1, Department: "CSE", BasketCode: "B1"}, "1|CSE|B1"},
		{"overflow", &model.Course{Semester: 3, Department: "CSE", BasketCode: "OV", Preference: model.PrefOverflow}, "3||OV"},
		{"sem5", &model.Course{Semester: 5, Department: "CSE", BasketCode: "B2"}, "5||B2"},
		{"sem7", &model.Course{Semester: 7, Department: "ECE", BasketCode: "B3"}, "7||B3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.key, basketKey(tc.in))
		})
	}
}
