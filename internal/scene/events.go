package scene

// EventType names an input event delivered by the scene.
type EventType string

const (
	EventMove      EventType = "move"       // editor moved the selection
	EventDrag      EventType = "drag"       // a single node was dragged
	EventDoubleTap EventType = "double_tap" // double click / tap on a node
	EventSelect    EventType = "select"     // editor selection replaced
)

// Event is passed to handlers synchronously on the emitting goroutine.
type Event struct {
	Type   EventType
	Target *Node
	DX, DY float64
}

// Handler reacts to one event. Handlers run in subscription order and
// must not block.
type Handler func(Event)

type subscription struct {
	id uint64
	fn Handler
}

// emitter is a small synchronous subscriber list keyed by event type.
type emitter struct {
	next uint64
	subs map[EventType][]subscription
}

func (e *emitter) on(t EventType, fn Handler) func() {
	if e.subs == nil {
		e.subs = make(map[EventType][]subscription)
	}
	e.next++
	id := e.next
	e.subs[t] = append(e.subs[t], subscription{id: id, fn: fn})
	return func() {
		list := e.subs[t]
		for i, s := range list {
			if s.id == id {
				e.subs[t] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

func (e *emitter) emit(ev Event) {
	// copy so handlers may unsubscribe while running
	list := append([]subscription(nil), e.subs[ev.Type]...)
	for _, s := range list {
		s.fn(ev)
	}
}
