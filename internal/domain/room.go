package domain

// Room is a teaching room fact. Capacity is optional; zero or negative means
// unknown and disables capacity checking for the room.
type Room struct {
	ID       string
	Name     string
	Capacity int
	Features map[string]struct{}
}

// NewRoom constructs a room fact. Inactive rooms are filtered out before
// construction and never reach the value range.
func NewRoom(id, name string, capacity int, features []string) *Room {
	set := make(map[string]struct{}, len(features))
	for _, f := range features {
		if f != "" {
			set[f] = struct{}{}
		}
	}
	return &Room{ID: id, Name: name, Capacity: capacity, Features: set}
}

// HasCapacity reports whether the room declares a usable capacity value.
func (r *Room) HasCapacity() bool {
	return r.Capacity > 0
}

// HasFeatures reports whether the room satisfies every required feature.
// A room with no declared features satisfies only the empty requirement set.
func (r *Room) HasFeatures(required map[string]struct{}) bool {
	for f := range required {
		if _, ok := r.Features[f]; !ok {
			return false
		}
	}
	return true
}
