package ticket

import (
	"sync"

	"github.com/vhecode013/Bot-Atendimento/internal/domain"
)

// Registry is the explicit in-memory association between ticket
// channels and their metadata. The channel topic is kept only as a
// human-readable mirror; this map is the source of truth. State is
// lost on restart by design.
type Registry struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tickets: make(map[string]domain.Ticket)}
}

// Put stores or replaces a ticket.
func (r *Registry) Put(t domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[t.ChannelID] = t
}

// Lookup returns the ticket for a channel.
func (r *Registry) Lookup(channelID string) (domain.Ticket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tickets[channelID]
	return t, ok
}

// SetState moves a ticket to a new lifecycle state. Returns false
// when the channel is not a registered ticket.
func (r *Registry) SetState(channelID string, state domain.TicketState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[channelID]
	if !ok {
		return false
	}
	t.State = state
	r.tickets[channelID] = t
	return true
}

// MarkTermsAccepted flips the terms flag and activates the ticket.
func (r *Registry) MarkTermsAccepted(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[channelID]
	if !ok {
		return false
	}
	t.TermsAccepted = true
	t.State = domain.TicketStateActive
	r.tickets[channelID] = t
	return true
}

// SetTermsMessage records the message carrying the accept/deny
// controls so they can be disabled after resolution.
func (r *Registry) SetTermsMessage(channelID, messageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[channelID]
	if !ok {
		return
	}
	t.TermsMessageID = messageID
	r.tickets[channelID] = t
}

// MarkDestroyed drops the ticket; the channel no longer exists.
func (r *Registry) MarkDestroyed(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tickets, channelID)
}
