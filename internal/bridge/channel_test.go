package bridge

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/padbridge/sdk/contracts"
)

func drain(t *testing.T, c *Channel[string], n int) []string {
	t.Helper()
	var out []string
	for i := 0; i < n; i++ {
		v, ok := c.TryDequeue()
		if !ok {
			t.Fatalf("TryDequeue() #%d returned no entry", i)
		}
		out = append(out, v)
	}
	return out
}

func TestLIFOOrder(t *testing.T) {
	c := New[string](contracts.LIFO, 0)
	for _, s := range []string{"a", "b", "c"} {
		if err := c.Enqueue(s); err != nil {
			t.Fatalf("Enqueue(%q) failed: %v", s, err)
		}
	}

	got := drain(t, c, 3)
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dequeue order = %v, want %v", got, want)
		}
	}
	if _, ok := c.TryDequeue(); ok {
		t.Error("expected empty channel")
	}
}

func TestFIFOOrder(t *testing.T) {
	c := New[string](contracts.FIFO, 2)
	for _, s := range []string{"a", "b", "c"} {
		if err := c.Enqueue(s); err != nil {
			t.Fatalf("Enqueue(%q) failed: %v", s, err)
		}
	}
	got := drain(t, c, 2)
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("dequeue order = %v", got)
	}

	// Refill after partial drain keeps arrival order.
	if err := c.Enqueue("d"); err != nil {
		t.Fatal(err)
	}
	got = drain(t, c, 2)
	if got[0] != "c" || got[1] != "d" {
		t.Fatalf("dequeue order after refill = %v", got)
	}
}

func TestTryDequeueContendedLeavesSequence(t *testing.T) {
	c := New[string](contracts.LIFO, 4)
	_ = c.Enqueue("a")
	_ = c.Enqueue("b")

	c.mu.Lock()
	start := time.Now()
	v, ok := c.TryDequeue()
	elapsed := time.Since(start)
	c.mu.Unlock()

	if ok || v != "" {
		t.Fatalf("TryDequeue() under contention = (%q, %v), want no entry", v, ok)
	}
	if elapsed > 10*time.Millisecond {
		t.Errorf("TryDequeue() blocked for %v", elapsed)
	}
	if n := c.Len(); n != 2 {
		t.Fatalf("Len() = %d after contended dequeue, want 2", n)
	}
	if got := drain(t, c, 2); got[0] != "b" || got[1] != "a" {
		t.Errorf("entries after skip = %v", got)
	}
}

func TestTryDequeueNeverWaitsForProducer(t *testing.T) {
	c := New[int](contracts.LIFO, 0)
	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = c.withLock(func() {
			close(held)
			<-release
		})
	}()
	<-held

	for i := 0; i < 1000; i++ {
		if _, ok := c.TryDequeue(); ok {
			t.Fatal("dequeued while the producer holds the lock")
		}
	}
	close(release)
}

func TestPoisonedLock(t *testing.T) {
	c := New[string](contracts.LIFO, 0)
	_ = c.Enqueue("a")

	err := c.withLock(func() { panic("corrupted") })
	if !errors.Is(err, ErrLockPoisoned) {
		t.Fatalf("withLock() err = %v, want ErrLockPoisoned", err)
	}
	if !c.Poisoned() {
		t.Fatal("channel not marked poisoned")
	}
	if err := c.Enqueue("b"); !errors.Is(err, ErrLockPoisoned) {
		t.Errorf("Enqueue() on poisoned channel err = %v", err)
	}
	if _, ok := c.TryDequeue(); ok {
		t.Error("TryDequeue() on poisoned channel returned an entry")
	}

	c.Recover()
	if err := c.Enqueue("b"); err != nil {
		t.Fatalf("Enqueue() after Recover failed: %v", err)
	}
	if got := drain(t, c, 2); got[0] != "b" || got[1] != "a" {
		t.Errorf("entries after recover = %v", got)
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	const n = 500
	c := New[int](contracts.FIFO, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			if err := c.Enqueue(i); err != nil {
				t.Errorf("Enqueue(%d) failed: %v", i, err)
				return
			}
		}
	}()

	seen := make(map[int]bool)
	deadline := time.Now().Add(5 * time.Second)
	for len(seen) < n && time.Now().Before(deadline) {
		if v, ok := c.TryDequeue(); ok {
			if seen[v] {
				t.Fatalf("entry %d dequeued twice", v)
			}
			seen[v] = true
		}
	}
	wg.Wait()
	if len(seen) != n {
		t.Fatalf("dequeued %d entries, want %d", len(seen), n)
	}
}

func TestTryDequeueDoesNotAllocate(t *testing.T) {
	c := New[int](contracts.LIFO, 128)
	for i := 0; i < 100; i++ {
		_ = c.Enqueue(i)
	}
	allocs := testing.AllocsPerRun(50, func() {
		c.TryDequeue()
	})
	if allocs != 0 {
		t.Errorf("TryDequeue() allocates %.1f times per call", allocs)
	}
}
