package reactor

// Topic identifies one of the three event channels a reactor publishes on.
// The set is closed; On rejects anything else.
type Topic int

const (
	TopicUpdate Topic = iota
	TopicAlarm
	TopicTrip

	topicCount
)

func (t Topic) String() string {
	switch t {
	case TopicUpdate:
		return "update"
	case TopicAlarm:
		return "alarm"
	case TopicTrip:
		return "trip"
	}
	return "unknown"
}

// Event is delivered to every subscriber of its topic, synchronously, inside
// the tick (or control call) that produced it. State is a value copy taken at
// publish time.
type Event struct {
	Topic   Topic
	Message string
	State   State
}

type Handler func(Event)

// notifier is a fixed-topic subscriber registry. Handlers run in registration
// order; there is no unsubscribe.
type notifier struct {
	handlers [topicCount][]Handler
}

func (n *notifier) on(t Topic, h Handler) error {
	if t < 0 || t >= topicCount {
		return ErrUnknownTopic
	}
	n.handlers[t] = append(n.handlers[t], h)
	return nil
}

func (n *notifier) publish(ev Event) {
	for _, h := range n.handlers[ev.Topic] {
		invoke(h, ev)
	}
}

// invoke runs one handler behind a recover boundary. A panicking subscriber
// must not abort the tick or starve later subscribers.
func invoke(h Handler, ev Event) {
	defer func() {
		_ = recover()
	}()
	h(ev)
}
