package domain

import "time"

// TicketState enumerates the lifecycle states of a ticket channel.
type TicketState string

const (
	// TicketStateRestricted is the initial state: the opener can read
	// the channel but cannot post until the terms are resolved.
	TicketStateRestricted TicketState = "RESTRICTED"
	// TicketStateActive means the terms were accepted and the opener
	// may participate.
	TicketStateActive TicketState = "ACTIVE"
	// TicketStateClosing means a close job has been queued for the
	// channel.
	TicketStateClosing TicketState = "CLOSING"
	// TicketStateDestroyed is terminal: the channel is gone.
	TicketStateDestroyed TicketState = "DESTROYED"
)

// Ticket is the aggregate for one support request channel. OpenerID,
// Category and Subject are immutable after creation.
type Ticket struct {
	ChannelID     string
	OpenerID      string
	Category      string
	Subject       string
	CreatedAt     time.Time
	TermsAccepted bool
	State         TicketState

	// TermsMessageID is the message carrying the accept/deny
	// controls, kept so they can be disabled once resolved.
	TermsMessageID string
}

// Topic renders the human-readable mirror stored in the channel topic.
// It is display-only; the registry is the source of truth.
func (t Ticket) Topic() string {
	return "opener:" + t.OpenerID + " | category:" + t.Category + " | subject:" + t.Subject
}
