package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestAlarm_EqualAndLess covers value equality and the priority/recency order.
func TestAlarm_EqualAndLess(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1_600_000_000, 0)

	a := New(LowBattery, ts)
	require.True(t, a.Equal(New(LowBattery, ts)))
	require.False(t, a.Equal(New(LowBattery, ts.Add(time.Nanosecond))))
	require.False(t, a.Equal(New(ACPowerLoss, ts)))

	// Priority wins over recency.
	require.True(t, New(ACPowerLoss, ts.Add(time.Hour)).Less(a))
	require.False(t, a.Less(New(ACPowerLoss, ts.Add(time.Hour))))

	// Same priority falls back to the earlier alarm.
	require.True(t, New(LowBattery, ts).Less(New(LowBattery, ts.Add(time.Second))))

	require.Equal(t, 1, a.Priority())
	require.Equal(t, "Battery reaches 20% or less", a.Message())
}

// TestQueue_OrdersByPriorityRegardlessOfArrival inserts in reverse rank order.
func TestQueue_OrdersByPriorityRegardlessOfArrival(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1_600_000_000, 0)
	q := NewQueue()

	_, ok := q.Peek()
	require.False(t, ok)

	// ContinuousPressure (bit 14) outranks HighVolume (bit 10).
	q.Insert(New(SetpointMismatch, ts))
	q.Insert(New(HighVolume, ts.Add(time.Second)))
	q.Insert(New(ContinuousPressure, ts.Add(2*time.Second)))
	q.Insert(New(LowBattery, ts.Add(3*time.Second)))

	require.Equal(t, 4, q.Len())

	top, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, LowBattery, top.ID)

	var ids []Identifier
	for _, a := range q.Alarms() {
		ids = append(ids, a.ID)
	}

	require.Equal(t, []Identifier{LowBattery, ContinuousPressure, HighVolume, SetpointMismatch}, ids)
	require.True(t, q.Contains(HighVolume))
	require.False(t, q.Contains(ACPowerLoss))
}

// TestQueue_Remove checks exact-match removal and the not-found signal.
func TestQueue_Remove(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1_600_000_000, 0)
	q := NewQueue()
	q.Insert(New(HighPressure, ts))
	q.Insert(New(LowPressure, ts))

	// Same identifier, different episode.
	require.False(t, q.Remove(New(HighPressure, ts.Add(time.Second))))
	require.Equal(t, 2, q.Len())

	require.True(t, q.Remove(New(HighPressure, ts)))
	require.False(t, q.Contains(HighPressure))
	require.False(t, q.Remove(New(HighPressure, ts)))

	removed, ok := q.RemoveID(LowPressure)
	require.True(t, ok)
	require.Equal(t, LowPressure, removed.ID)
	require.Zero(t, q.Len())

	_, ok = q.RemoveID(LowPressure)
	require.False(t, ok)
}

// TestQueue_AlarmsIsACopy ensures callers cannot reorder the queue.
func TestQueue_AlarmsIsACopy(t *testing.T) {
	t.Parallel()

	q := NewQueue()
	q.Insert(New(ACPowerLoss, time.Unix(1, 0)))

	snapshot := q.Alarms()
	snapshot[0].ID = SetpointMismatch

	top, _ := q.Peek()
	require.Equal(t, ACPowerLoss, top.ID)
}

// TestActorClone verifies that Clone returns a deep copy and handles nil safely.
func TestActorClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Actor)(nil).Clone())

	a := &Actor{
		Hostname: "icu-bed-4",
		Username: "rt.nurse",
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
}
