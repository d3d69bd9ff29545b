// Package bridge hands commands from the blocking producer to the real-time consumer.
package bridge

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/padbridge/sdk/contracts"
)

// ErrLockPoisoned is returned once a critical section has panicked while holding
// the lock. The pending sequence may be inconsistent until Recover is called.
// The only guarded critical section is the append in Enqueue, so this is a
// guard against runtime panics there rather than an expected condition.
var ErrLockPoisoned = errors.New("command channel lock poisoned")

// Channel is a pending-entry sequence guarded by a single mutex.
//
// The producer may block in Enqueue. The consumer only ever calls TryDequeue,
// which gives up immediately when the lock is contended.
type Channel[T any] struct {
	mu       sync.Mutex
	items    []T
	order    contracts.QueueOrder
	poisoned atomic.Bool
}

// New creates an empty channel. capacity preallocates room for pending entries.
func New[T any](order contracts.QueueOrder, capacity int) *Channel[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Channel[T]{items: make([]T, 0, capacity), order: order}
}

// Order reports the dequeue discipline.
func (c *Channel[T]) Order() contracts.QueueOrder {
	return c.order
}

// Enqueue appends v. It blocks while the lock is held elsewhere.
func (c *Channel[T]) Enqueue(v T) error {
	return c.withLock(func() {
		c.items = append(c.items, v)
	})
}

// TryDequeue removes one pending entry without blocking.
//
// It returns false when the lock is contended, the channel is poisoned or
// nothing is pending; the sequence is left untouched in all three cases.
// In LIFO order the most recently enqueued entry is returned, in FIFO order the
// oldest. It never allocates.
func (c *Channel[T]) TryDequeue() (T, bool) {
	var zero T
	if !c.mu.TryLock() {
		return zero, false
	}
	defer c.mu.Unlock()

	n := len(c.items)
	if n == 0 || c.poisoned.Load() {
		return zero, false
	}

	var v T
	if c.order == contracts.FIFO {
		v = c.items[0]
		c.items[0] = zero
		c.items = c.items[1:]
		if len(c.items) == 0 {
			c.items = c.items[:0:0]
		}
		return v, true
	}
	v = c.items[n-1]
	c.items[n-1] = zero
	c.items = c.items[:n-1]
	return v, true
}

// Len returns the number of pending entries. It blocks like Enqueue.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Poisoned reports whether a critical section has panicked.
func (c *Channel[T]) Poisoned() bool {
	return c.poisoned.Load()
}

// Recover clears the poisoned state, keeping whatever entries are pending.
func (c *Channel[T]) Recover() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.poisoned.Store(false)
}

func (c *Channel[T]) withLock(fn func()) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned.Load() {
		return ErrLockPoisoned
	}
	defer func() {
		if r := recover(); r != nil {
			c.poisoned.Store(true)
			err = fmt.Errorf("%w: %v", ErrLockPoisoned, r)
		}
	}()
	fn()
	return nil
}
