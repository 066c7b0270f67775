package conversation

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	// EventSubmitted follows a user message being appended and the reply wait starting.
	EventSubmitted EventKind = "submitted"
	// EventReplied follows the assistant reply being appended.
	EventReplied EventKind = "replied"
	// EventFailed follows a delivery failure being recorded.
	EventFailed EventKind = "failed"
	// EventErrorDismissed follows LastError being cleared by the user.
	EventErrorDismissed EventKind = "error_dismissed"
	// EventInputChanged follows PendingInput being replaced.
	EventInputChanged EventKind = "input_changed"
)

// Event is delivered to subscribers after each mutation, carrying the state
// as it was right after that mutation.
type Event struct {
	Kind  EventKind `json:"kind"`
	State State     `json:"state"`
}

// Settled reports whether the event ends a turn.
func (e Event) Settled() bool {
	return e.Kind == EventReplied || e.Kind == EventFailed
}

type subscriber struct {
	id uint64
	fn func(Event)
}

// Subscribe registers fn to receive every future Event, in mutation order.
// fn runs on the goroutine that performed the mutation and must not call
// back into the Controller. The returned function cancels the subscription.
func (c *Controller) Subscribe(fn func(Event)) (cancel func()) {
	c.subsMu.Lock()
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Watch is Subscribe that also returns the state at registration time. fn
// receives exactly the events that follow that state.
func (c *Controller) Watch(fn func(Event)) (State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cancel := c.Subscribe(fn)
	return c.state.clone(), cancel
}

// publishLocked hands ev to subscribers. It must be called with c.mu held;
// it releases c.mu before any subscriber runs. The subscriber list is read
// and notifyMu taken before c.mu is released, so delivery follows mutation
// order and Watch never sees an event older than its snapshot.
func (c *Controller) publishLocked(kind EventKind) {
	ev := Event{Kind: kind, State: c.state.clone()}

	c.subsMu.RLock()
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	c.subsMu.RUnlock()

	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}
