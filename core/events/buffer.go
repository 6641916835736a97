package events

// Buffer collects events during a speculative state transition so they can be
// forwarded only once the transition commits. A discarded transition leaves no
// trace on the downstream sink.
type Buffer struct {
	sink    Emitter
	pending []Event
}

// NewBuffer creates a buffer forwarding to the provided sink on Flush. A nil
// sink is replaced with a no-op emitter.
func NewBuffer(sink Emitter) *Buffer {
	if sink == nil {
		sink = NoopEmitter{}
	}
	return &Buffer{sink: sink}
}

// Emit implements the Emitter interface by queueing the event.
func (b *Buffer) Emit(e Event) {
	if b == nil || e == nil {
		return
	}
	b.pending = append(b.pending, e)
}

// Flush forwards all queued events to the sink and clears the queue.
func (b *Buffer) Flush() {
	if b == nil {
		return
	}
	for _, e := range b.pending {
		b.sink.Emit(e)
	}
	b.pending = nil
}

// Reset drops all queued events without forwarding them.
func (b *Buffer) Reset() {
	if b == nil {
		return
	}
	b.pending = nil
}

// Pending returns the number of queued events.
func (b *Buffer) Pending() int {
	if b == nil {
		return 0
	}
	return len(b.pending)
}
