package amqpwire

import (
	"sync"
	"testing"
	"time"
)

func TestSendQueueOrdersByPriorityThenFIFO(t *testing.T) {
	q := NewSendQueue()
	q.Put(PriorityBulk, "bulk-1")
	q.Put(PriorityControl, "control-1")
	q.Put(PriorityDefault, "default-1")
	q.Put(PriorityControl, "control-2")

	want := []string{"control-1", "control-2", "default-1", "bulk-1"}
	for _, w := range want {
		v, ok := q.TryGet()
		if !ok {
			t.Fatalf("expected a value, queue empty early")
		}
		if v.(string) != w {
			t.Fatalf("got %q, want %q", v, w)
		}
	}
	if _, ok := q.TryGet(); ok {
		t.Fatal("expected queue to be empty")
	}
}

func TestSendQueueLimitBlocksHigherPriorities(t *testing.T) {
	q := NewSendQueue()
	q.SetLimit(PriorityControl + 1) // only PriorityControl is below this
	q.Put(PriorityDefault, "default-1")
	q.Put(PriorityControl, "control-1")

	v, ok := q.TryGet()
	if !ok || v.(string) != "control-1" {
		t.Fatalf("got %v, %v; want control-1", v, ok)
	}
	if _, ok := q.TryGet(); ok {
		t.Fatal("default-priority item should remain blocked by the limit")
	}

	q.SetLimit(PriorityDefault + 1)
	v, ok = q.TryGet()
	if !ok || v.(string) != "default-1" {
		t.Fatalf("after raising the limit, got %v, %v; want default-1", v, ok)
	}
}

func TestSendQueueShutdownLimitBlocksEverything(t *testing.T) {
	q := NewSendQueue()
	q.SetLimit(PriorityShutdown)
	q.Put(PriorityControl, "control-1")

	if _, ok := q.TryGet(); ok {
		t.Fatal("PriorityShutdown limit must block even PriorityControl items")
	}
}

func TestSendQueueGetBlocksUntilPut(t *testing.T) {
	q := NewSendQueue()
	done := make(chan interface{}, 1)
	go func() {
		v, ok := q.Get()
		if !ok {
			done <- nil
			return
		}
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("Get returned before any value was queued")
	case <-time.After(20 * time.Millisecond):
	}

	q.Put(PriorityDefault, "late-arrival")
	select {
	case v := <-done:
		if v != "late-arrival" {
			t.Fatalf("got %v, want late-arrival", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Get never unblocked after Put")
	}
}

func TestSendQueueCloseUnblocksGet(t *testing.T) {
	q := NewSendQueue()
	var wg sync.WaitGroup
	wg.Add(1)
	var gotOK bool
	go func() {
		defer wg.Done()
		_, gotOK = q.Get()
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()
	wg.Wait()
	if gotOK {
		t.Fatal("want ok=false once the queue is closed")
	}
}

func TestSendQueueLimitToRestoresPreviousLimit(t *testing.T) {
	q := NewSendQueue()
	q.SetLimit(PriorityBulk + 1)
	q.LimitTo(PriorityControl+1, func() {
		if q.Limit() != PriorityControl+1 {
			t.Fatalf("inside LimitTo, got limit %d", q.Limit())
		}
	})
	if q.Limit() != PriorityBulk+1 {
		t.Fatalf("after LimitTo, got limit %d, want restored value", q.Limit())
	}
}

func TestSendQueueLimitToRestoresOnPanic(t *testing.T) {
	q := NewSendQueue()
	q.SetLimit(PriorityBulk + 1)

	func() {
		defer func() { recover() }()
		q.LimitTo(PriorityControl+1, func() {
			panic("boom")
		})
	}()

	if q.Limit() != PriorityBulk+1 {
		t.Fatalf("limit not restored after panic: got %d", q.Limit())
	}
}
