package alarm

import "time"

// Alarm is one activation episode of an alarm condition.
type Alarm struct {
	// ID is the alarm condition.
	ID Identifier
	// RaisedAt is when the condition was first seen active and unacknowledged.
	RaisedAt time.Time
}

// New returns an alarm for id raised at the given moment.
func New(id Identifier, raisedAt time.Time) Alarm {
	return Alarm{
		ID:       id,
		RaisedAt: raisedAt,
	}
}

// Equal reports whether both alarms describe the same episode.
// Monotonic clock readings are ignored, so a value that went through the
// wire compares equal to the one that stayed in memory.
func (a Alarm) Equal(other Alarm) bool {
	return a.ID == other.ID && a.RaisedAt.Equal(other.RaisedAt)
}

// Less orders alarms by priority rank, then by RaisedAt ascending.
// The identifier breaks any remaining tie so the order is total.
func (a Alarm) Less(other Alarm) bool {
	if ra, rb := rank(a.ID), rank(other.ID); ra != rb {
		return ra < rb
	}

	if !a.RaisedAt.Equal(other.RaisedAt) {
		return a.RaisedAt.Before(other.RaisedAt)
	}

	return a.ID < other.ID
}

// Priority returns the catalog rank of the alarm.
func (a Alarm) Priority() int {
	return rank(a.ID)
}

// Message returns the catalog display text of the alarm.
func (a Alarm) Message() string {
	return Message(a.ID)
}

// Actor identifies who acknowledged an alarm.
type Actor struct {
	// Hostname is the machine the acknowledgment came from.
	Hostname string
	// Username is the system user at the bedside console.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}
