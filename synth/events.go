package synth

import "sync/atomic"

// EventKind tags the variant of an Event.
type EventKind uint8

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventController
	eventParam // internal: normalized parameter change from a setter
)

// Event is one control message crossing into the render context. Events are
// immutable once created and consumed exactly once, in arrival order.
type Event struct {
	Kind   EventKind
	Key    uint8   // MIDI key for note events, controller ID for EventController
	Value  uint8   // velocity or controller value, 0..127
	Param  ParamID // eventParam only
	Target float64 // eventParam only, normalized 0..1
}

// NoteOnEvent builds a note-on event, clamping key and velocity to 0..127.
func NoteOnEvent(key, velocity int) Event {
	return Event{
		Kind:  EventNoteOn,
		Key:   uint8(clampi(key, 0, 127)),
		Value: uint8(clampi(velocity, 0, 127)),
	}
}

// NoteOffEvent builds a note-off event, clamping the key to 0..127.
func NoteOffEvent(key int) Event {
	return Event{Kind: EventNoteOff, Key: uint8(clampi(key, 0, 127))}
}

// ControllerEvent builds a controller-change event, clamping both fields to
// 0..127.
func ControllerEvent(id, value int) Event {
	return Event{
		Kind:  EventController,
		Key:   uint8(clampi(id, 0, 127)),
		Value: uint8(clampi(value, 0, 127)),
	}
}

// eventQueueCapacity bounds the control→render queue. Power of two.
const eventQueueCapacity = 512

// eventQueue is a bounded single-producer/single-consumer ring. The control
// context pushes, the render context pops; neither side ever blocks. When
// the ring is full the incoming event is dropped and push reports false.
type eventQueue struct {
	buf  [eventQueueCapacity]Event
	head atomic.Uint64 // consumer index
	tail atomic.Uint64 // producer index
}

func (q *eventQueue) push(ev Event) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() >= eventQueueCapacity {
		return false
	}
	q.buf[tail&(eventQueueCapacity-1)] = ev
	q.tail.Store(tail + 1)
	return true
}

func (q *eventQueue) pop(ev *Event) bool {
	head := q.head.Load()
	if head == q.tail.Load() {
		return false
	}
	*ev = q.buf[head&(eventQueueCapacity-1)]
	q.head.Store(head + 1)
	return true
}

func (q *eventQueue) len() int {
	return int(q.tail.Load() - q.head.Load())
}
