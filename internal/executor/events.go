package executor

// EventType enumerates the streamed event kinds.
type EventType string

const (
	// EventProgress reports cumulative completed-of-total for one locale.
	EventProgress EventType = "progress"
	// EventApplied signals that a locale document was persisted.
	EventApplied EventType = "applied"
	// EventError is terminal for the unit of work it describes.
	EventError EventType = "error"
	// EventDone terminates the stream after all locales finished.
	EventDone EventType = "done"
)

// Event is one line of the streamed event log. The stream is the sole
// success/failure signal once a run has begun.
type Event struct {
	Type      EventType `json:"type"`
	Locale    string    `json:"locale,omitempty"`
	Completed int       `json:"completed,omitempty"`
	Total     int       `json:"total,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Sink receives events in order. Returning an error means the transport was
// severed; the run stops emitting and releases its resources.
type Sink func(Event) error
