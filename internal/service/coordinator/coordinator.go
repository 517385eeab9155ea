package coordinator

import (
	"context"
	"sync"
	"time"

	domain "github.com/oshokin/vent-monitor/internal/domain/alarm"
	"github.com/oshokin/vent-monitor/internal/logger"
)

// Notifier receives the acknowledged mask every time it changes.
// Implementations must not block.
type Notifier interface {
	AcknowledgedMaskChanged(mask uint32)
}

// Coordinator reconciles ECU alarm status words with the pending alarm queue.
type Coordinator struct {
	// notifyMu keeps notifications in the order the masks were committed.
	// Lock order is notifyMu, then mu; mu is never held while notifying.
	notifyMu sync.Mutex

	// mu guards the state fields below it.
	mu sync.Mutex
	// activeBits is the last alarm status word received from the ECU.
	activeBits uint32
	// acknowledgedBits is always a subset of activeBits.
	acknowledgedBits uint32
	// queue holds alarms that are active and not acknowledged.
	queue *domain.Queue

	// now stamps newly raised alarms.
	now func() time.Time
	// notifier is informed about acknowledged mask changes.
	notifier Notifier
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces the clock used to stamp raised alarms.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithNotifier sets the receiver of acknowledged mask changes.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = n
	}
}

// New returns a coordinator with no active alarms.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		queue: domain.NewQueue(),
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// UpdateActiveMask applies a fresh alarm status word from the ECU.
//
// Stale acknowledgments are dropped first, using the new word. Every bit that
// is then active and unacknowledged raises an alarm unless one is already
// pending for it, so a condition is raised once per activation episode.
// Alarms whose bit went inactive leave the queue.
func (c *Coordinator) UpdateActiveMask(ctx context.Context, bits uint32) {
	var (
		raised  []domain.Alarm
		cleared []domain.Alarm
		unknown []uint
	)

	c.mu.Lock()

	c.activeBits = bits
	c.acknowledgedBits &= c.activeBits

	now := c.now()

	for pos := range uint(domain.StatusWordBits) {
		mask := uint32(1) << pos
		if c.activeBits&mask == 0 || c.acknowledgedBits&mask != 0 {
			continue
		}

		id, ok := domain.FromBit(pos)
		if !ok {
			unknown = append(unknown, pos)
			continue
		}

		if a, ok := c.raiseLocked(id, now); ok {
			raised = append(raised, a)
		}
	}

	cleared = c.clearInactiveLocked()

	c.mu.Unlock()

	for _, pos := range unknown {
		logger.DebugKV(ctx, "Ignoring unknown alarm bit", "bit", pos, "active_mask", bits)
	}

	for _, a := range raised {
		logger.InfoKV(ctx, "Alarm raised", "alarm", a.ID, "priority", a.Priority())
	}

	for _, a := range cleared {
		logger.InfoKV(ctx, "Alarm cleared by ECU", "alarm", a.ID)
	}
}

// raiseLocked queues a new alarm for id unless one is already pending.
// The caller holds c.mu.
func (c *Coordinator) raiseLocked(id domain.Identifier, now time.Time) (domain.Alarm, bool) {
	if c.queue.Contains(id) {
		return domain.Alarm{}, false
	}

	a := domain.New(id, now)
	c.queue.Insert(a)

	return a, true
}

// clearInactiveLocked drops pending alarms whose condition is no longer active.
// The caller holds c.mu.
func (c *Coordinator) clearInactiveLocked() []domain.Alarm {
	var cleared []domain.Alarm

	for _, a := range c.queue.Alarms() {
		if c.activeBits&a.ID.Mask() != 0 {
			continue
		}

		if removed, ok := c.queue.RemoveID(a.ID); ok {
			cleared = append(cleared, removed)
		}
	}

	return cleared
}

// HighestPriorityAlarm returns the most urgent pending alarm.
func (c *Coordinator) HighestPriorityAlarm() (domain.Alarm, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.queue.Peek()
}

// Acknowledge removes a from the pending queue and suppresses its condition
// until the ECU clears and raises it again. Acknowledging an alarm that is no
// longer pending is a no-op and reports false. The notifier may read
// coordinator state but must not acknowledge from within the callback.
func (c *Coordinator) Acknowledge(ctx context.Context, a domain.Alarm) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()

	if !c.queue.Remove(a) {
		c.mu.Unlock()

		logger.DebugKV(ctx, "Alarm is not pending, nothing to acknowledge",
			"alarm", a.ID, "raised_at", a.RaisedAt)

		return false
	}

	c.acknowledgedBits |= a.ID.Mask()
	mask := c.acknowledgedBits

	c.mu.Unlock()

	logger.InfoKV(ctx, "Alarm acknowledged", "alarm", a.ID, "acknowledged_mask", mask)

	if c.notifier != nil {
		c.notifier.AcknowledgedMaskChanged(mask)
	}

	return true
}

// PendingCount returns the number of pending alarms.
func (c *Coordinator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.queue.Len()
}

// PendingAlarms returns the pending alarms in priority order.
func (c *Coordinator) PendingAlarms() []domain.Alarm {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.queue.Alarms()
}

// ActiveMask returns the last alarm status word.
func (c *Coordinator) ActiveMask() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.activeBits
}

// AcknowledgedMask returns the acknowledged subset of the active mask.
func (c *Coordinator) AcknowledgedMask() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.acknowledgedBits
}
