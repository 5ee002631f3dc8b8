package scheduler

import (
	"sort"

	"github.com/acadsched/timetable-engine/pkg/model"
	"github.com/acadsched/timetable-engine/pkg/timeutil"
)

// partitionRooms splits the classroom universe into the designated
// combined-class hall, the large/small classroom pools and the lab
// pool. Pools are sorted by ascending capacity so searches pick the
// smallest adequate room first.
func (s *Scheduler) partitionRooms(classrooms []*model.Classroom) {
	for _, room := range classrooms {
		s.universe[room.ID] = room
		if room.ID == s.cfg.CombinedRoomID {
			s.combinedHall = room
			continue
		}
		switch room.Type {
		case model.RoomLab:
			s.labRooms = append(s.labRooms, room)
		default:
			if room.Capacity >= s.cfg.LargeRoomThreshold {
				s.largeRooms = append(s.largeRooms, room)
			} else {
				s.smallRooms = append(s.smallRooms, room)
			}
		}
	}
	byCapacity := func(pool []*model.Classroom) {
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].Capacity < pool[j].Capacity
		})
	}
	byCapacity(s.largeRooms)
	byCapacity(s.smallRooms)
	byCapacity(s.labRooms)
}

// roomFree reports whether the room's master timetable is clear for the
// whole session.
func (s *Scheduler) roomFree(roomID string, day model.Day, start, duration int) bool {
	tt, ok := s.masters.Rooms[roomID]
	if !ok {
		return true // untouched room, no bookings yet
	}
	return tt.IsSlotFree(day, start, duration)
}

// findAvailableRoom picks a room for a session, preferring a free room
// of sufficient capacity from the matching pool. It degrades rather
// than fails: an occupied or undersized room beats no room at all, and
// the resulting double-booking is left for the validator to surface.
func (s *Scheduler) findAvailableRoom(students int, sessionType model.SessionType, day model.Day, start, duration int) *model.Classroom {
	var primary, fallback []*model.Classroom
	if sessionType == model.Practical {
		primary = s.labRooms
	} else if students >= s.cfg.LargeRoomThreshold {
		primary = s.largeRooms
		fallback = s.smallRooms
	} else {
		primary = s.smallRooms
		fallback = s.largeRooms
	}

	for _, pool := range [][]*model.Classroom{primary, fallback} {
		for _, room := range pool {
			if room.Capacity < students {
				continue
			}
			if s.roomFree(room.ID, day, start, duration) {
				return room
			}
		}
	}
	// No free room: accept a suitable occupied one.
	for _, pool := range [][]*model.Classroom{primary, fallback} {
		for _, room := range pool {
			if room.Capacity >= students {
				return room
			}
		}
	}
	// Nothing big enough anywhere: hand back the largest room we have.
	if len(primary) > 0 {
		return primary[len(primary)-1]
	}
	if len(fallback) > 0 {
		return fallback[len(fallback)-1]
	}
	return nil
}

// findAdjacentLabs searches for a floor-matched, room-number-consecutive
// lab pair that jointly covers an oversized practical. The combined
// capacity gets the configured slack multiplier; both labs must be free
// for the full duration.
func (s *Scheduler) findAdjacentLabs(students int, day model.Day, start, duration int) (*model.Classroom, *model.Classroom) {
	for i, a := range s.labRooms {
		for _, b := range s.labRooms[i+1:] {
			if a.Floor != b.Floor {
				continue
			}
			numA := timeutil.NumberFromRoomID(a.ID)
			numB := timeutil.NumberFromRoomID(b.ID)
			if numA < 0 || numB < 0 || absInt(numA-numB) != 1 {
				continue
			}
			if float64(a.Capacity+b.Capacity)*s.cfg.AdjacentLabSlack < float64(students) {
				continue
			}
			if s.roomFree(a.ID, day, start, duration) && s.roomFree(b.ID, day, start, duration) {
				return a, b
			}
		}
	}
	return nil, nil
}

// largestLabCapacity returns the biggest single-lab capacity, 0 when
// the lab pool is empty.
func (s *Scheduler) largestLabCapacity() int {
	if len(s.labRooms) == 0 {
		return 0
	}
	return s.labRooms[len(s.labRooms)-1].Capacity
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
