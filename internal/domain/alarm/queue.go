package alarm

import "sort"

// Queue holds pending alarms in priority order.
// It is not safe for concurrent use; the coordinator serializes access.
type Queue struct {
	items []Alarm
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return new(Queue)
}

// Contains reports whether an alarm for id is pending.
func (q *Queue) Contains(id Identifier) bool {
	for _, item := range q.items {
		if item.ID == id {
			return true
		}
	}

	return false
}

// Insert adds a and restores priority order.
// The caller guarantees no alarm with the same identifier is pending.
func (q *Queue) Insert(a Alarm) {
	q.items = append(q.items, a)

	sort.SliceStable(q.items, func(i, j int) bool {
		return q.items[i].Less(q.items[j])
	})
}

// Peek returns the most urgent pending alarm without removing it.
func (q *Queue) Peek() (Alarm, bool) {
	if len(q.items) == 0 {
		return Alarm{}, false
	}

	return q.items[0], true
}

// Remove deletes the entry equal to a. It reports false when a is not pending.
func (q *Queue) Remove(a Alarm) bool {
	for i, item := range q.items {
		if item.Equal(a) {
			q.items = append(q.items[:i], q.items[i+1:]...)

			return true
		}
	}

	return false
}

// RemoveID deletes the pending alarm for id, if any.
func (q *Queue) RemoveID(id Identifier) (Alarm, bool) {
	for i, item := range q.items {
		if item.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)

			return item, true
		}
	}

	return Alarm{}, false
}

// Len returns the number of pending alarms.
func (q *Queue) Len() int {
	return len(q.items)
}

// Alarms returns a copy of the pending alarms in priority order.
func (q *Queue) Alarms() []Alarm {
	result := make([]Alarm, len(q.items))
	copy(result, q.items)

	return result
}
