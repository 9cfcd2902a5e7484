package document

// EventType identifies what changed in a Scene.
type EventType uint8

// Event types.
const (
	EventAdded EventType = iota + 1
	EventRemoved
	EventMutated
	EventReordered
	EventGrouped
	EventUngrouped
	EventRestored
	EventResized
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventMutated:
		return "mutated"
	case EventReordered:
		return "reordered"
	case EventGrouped:
		return "grouped"
	case EventUngrouped:
		return "ungrouped"
	case EventRestored:
		return "restored"
	case EventResized:
		return "resized"
	default:
		return "unknown"
	}
}

// Structural reports whether the event changed the element tree rather
// than the state of existing elements.
func (t EventType) Structural() bool {
	switch t {
	case EventAdded, EventRemoved, EventGrouped, EventUngrouped:
		return true
	}
	return false
}

// Event describes one committed change. IDs lists the affected elements;
// for EventGrouped the first id is the new group.
type Event struct {
	Type EventType
	IDs  []string
}

// Subscribe registers fn to be called after every change. The returned
// function removes the registration.
func (s *Scene) Subscribe(fn func(Event)) (cancel func()) {
	if s.observers == nil {
		s.observers = make(map[int]func(Event))
	}
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	return func() { delete(s.observers, id) }
}

func (s *Scene) emit(t EventType, ids ...string) {
	s.version++
	if len(s.observers) == 0 {
		return
	}
	ev := Event{Type: t, IDs: ids}
	for i := 0; i < s.nextObserver; i++ {
		if fn, ok := s.observers[i]; ok {
			fn(ev)
		}
	}
}
