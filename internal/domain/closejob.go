package domain

import "time"

// CloseJob is one unit of archive-and-destroy work for a ticket
// channel. Immutable once created; consumed exactly once by the close
// worker and never retried.
type CloseJob struct {
	ID          string
	ChannelID   string
	ChannelName string
	RequestedBy string
	Reason      string
	EnqueuedAt  time.Time
}
