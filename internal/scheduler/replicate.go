package scheduler

import (
	"strings"

	"github.com/acadsched/timetable-engine/pkg/model"
)

// ReplicatePreToPost implements the "Sem 7 runs identically in both
// halves" rule: every PRE section gets a POST twin with a cloned grid,
// and all faculty/room bookings are re-indexed into the POST master
// store. Bookings shared by several sections (combined classes,
// baskets) are indexed once.
func ReplicatePreToPost(preSections []*model.Section, postMasters *MasterSchedules) []*model.Section {
	postSections := make([]*model.Section, 0, len(preSections))
	indexed := make(map[model.BookingID]bool)

	for _, pre := range preSections {
		post := &model.Section{
			ID:         strings.Replace(pre.ID, "PRE", "POST", 1),
			Department: pre.Department,
			Semester:   pre.Semester,
			Period:     "POST",
			Name:       pre.Name,
		}
		post.Timetable = pre.Timetable.Clone(post.ID)
		postSections = append(postSections, post)

		for _, span := range pre.Timetable.Sessions() {
			if indexed[span.Class.ID] {
				continue
			}
			indexed[span.Class.ID] = true
			for _, name := range span.Class.Instructors {
				if name == "" || name == model.TBD {
					continue
				}
				postMasters.FacultyTimetable(name).BookSlot(span.Day, span.Start, span.Duration, span.Class, 0)
			}
			for _, roomID := range span.Class.RoomIDs {
				if roomID == model.TBD {
					continue
				}
				postMasters.Room(roomID).BookSlot(span.Day, span.Start, span.Duration, span.Class, 0)
			}
		}
	}
	return postSections
}
