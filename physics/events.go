package physics

// ContactEvent is delivered once per detected contact per step, after resolution.
type ContactEvent struct {
	A, B   Handle
	OwnerA any
	OwnerB any
	Point  Vector
	Normal Vector
	// Sensor is set when either body is a sensor and the contact was not resolved.
	Sensor bool
}

// Involves reports whether h is one of the two bodies.
func (e ContactEvent) Involves(h Handle) bool {
	return e.A == h || e.B == h
}

// Other returns the partner of h and its owner.
func (e ContactEvent) Other(h Handle) (Handle, any, bool) {
	switch h {
	case e.A:
		return e.B, e.OwnerB, true
	case e.B:
		return e.A, e.OwnerA, true
	default:
		return 0, nil, false
	}
}

// ContactHandler observes contacts. Handlers must not block.
type ContactHandler func(ContactEvent)

// eventQueue collects the events of a single step.
type eventQueue struct {
	items []ContactEvent
}

func (q *eventQueue) push(evt ContactEvent) {
	q.items = append(q.items, evt)
}

func (q *eventQueue) reset() {
	q.items = q.items[:0]
}

func (q *eventQueue) snapshot() []ContactEvent {
	if len(q.items) == 0 {
		return nil
	}
	out := make([]ContactEvent, len(q.items))
	copy(out, q.items)
	return out
}
