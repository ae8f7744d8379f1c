package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened  EventType = "ticket_opened"
	EventTermsAccepted EventType = "terms_accepted"
	EventTermsDenied   EventType = "terms_denied"
	EventCloseQueued   EventType = "close_queued"
	EventCloseStarted  EventType = "close_started"
	EventTicketClosed  EventType = "ticket_closed"
)

// Event represents a ticket lifecycle event emitted by the workflow
// and the close worker.
type Event struct {
	Type      EventType
	ChannelID string
	// ActorID is the user whose action produced the event.
	ActorID   string
	Timestamp time.Time
	Payload   interface{}
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	OpenerID string
	Category string
	Subject  string
}

// TermsPayload payload for accept/deny.
type TermsPayload struct {
	OpenerID string
}

// CloseQueuedPayload payload.
type CloseQueuedPayload struct {
	Position int
	Reason   string
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	ChannelName   string
	Reason        string
	TranscriptURL string
}
