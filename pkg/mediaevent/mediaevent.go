// Package mediaevent implements timestamped, asynchronously dispatched
// playback events (on_eos, on_animation_end, custom marker events) and
// the ordered queue backends use to hold them until the play cursor
// reaches the byte offset they were attached at.
//
// Grounded on original_source/pyglet/media/drivers/base.py's MediaEvent
// class and AbstractAudioPlayer.append_events/dispatch_media_events.
package mediaevent

// MediaEvent names an event and carries whatever arguments its handler
// expects. Name is typically "on_eos", "on_animation_end" or a
// source-defined marker name.
type MediaEvent struct {
	Name string
	Args []any
}

// Handler receives a dispatched event by name and argument list. The
// zero value of Handler (nil) is valid and causes dispatch to discard
// the event silently, matching a player with no listener attached.
type Handler func(name string, args []any)

// entry pairs a MediaEvent with the absolute byte cursor position (in
// the backend's write-side coordinate space) at which it becomes due.
type entry struct {
	cursor int64
	event  MediaEvent
}

// Queue holds events in the order they were appended (it does not sort
// them by cursor) and releases them to a Handler as the play cursor
// advances past their cursor position. It is not safe
// for concurrent use; callers serialize access under the same lock that
// protects the owning backend's cursor state.
type Queue struct {
	entries []entry
}

// NewQueue returns an empty event queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Append adds events that become due starting at startCursor, each
// offset within the packet they came from by its own byte offset
// relative to the packet start (mirrors append_events: event_cursor =
// start_index + timestamp*bytes_per_second in the original; audiostream
// instead carries byte offsets directly since packets already know
// their own byte length).
func (q *Queue) Append(startCursor int64, events []MediaEvent, offsets []int64) {
	for i, e := range events {
		off := int64(0)
		if i < len(offsets) {
			off = offsets[i]
		}
		q.entries = append(q.entries, entry{cursor: startCursor + off, event: e})
	}
}

// AppendAt adds a single event due exactly at cursor.
func (q *Queue) AppendAt(cursor int64, event MediaEvent) {
	q.entries = append(q.entries, entry{cursor: cursor, event: event})
}

// DispatchUntil hands to handler, in append order, the events at the
// front of the queue whose cursor is <= untilCursor, stopping at the
// first event that is not yet due, and removes them from the queue.
// A nil handler drops the events without calling anything.
func (q *Queue) DispatchUntil(untilCursor int64, handler Handler) {
	i := 0
	for i < len(q.entries) && q.entries[i].cursor <= untilCursor {
		if handler != nil {
			handler(q.entries[i].event.Name, q.entries[i].event.Args)
		}
		i++
	}
	if i > 0 {
		q.entries = q.entries[i:]
	}
}

// Len reports the number of pending events.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Clear discards all pending events without dispatching them, used when
// a player is cleared/flushed and stale events must not fire late.
func (q *Queue) Clear() {
	q.entries = nil
}
