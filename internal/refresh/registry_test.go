package refresh

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRegisterTrigger(t *testing.T) {
	r := NewRegistry()

	var got string
	r.Register("alice:1", func(tab string) { got = tab })

	if !r.Trigger("alice:1", TabCalendar) {
		t.Fatal("Trigger returned false for registered name")
	}
	if got != TabCalendar {
		t.Errorf("tab = %q, want %q", got, TabCalendar)
	}
	if r.Trigger("bob:1", TabCalendar) {
		t.Error("Trigger returned true for unknown name")
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()

	var first, second int
	r.Register("a", func(string) { first++ })
	r.Register("a", func(string) { second++ })
	r.Trigger("a", TabShared)

	if first != 0 || second != 1 {
		t.Errorf("first = %d, second = %d, want 0 and 1", first, second)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func(string) { t.Error("called after Unregister") })
	r.Unregister("a")
	r.Unregister("missing")

	if r.Trigger("a", TabCalendar) {
		t.Error("Trigger returned true after Unregister")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestTriggerPrefix(t *testing.T) {
	r := NewRegistry()

	calls := map[string]int{}
	for _, name := range []string{StreamName("alice", "1"), StreamName("alice", "2"), StreamName("alicia", "1"), StreamName("bob", "1")} {
		name := name
		r.Register(name, func(string) { calls[name]++ })
	}

	if n := r.TriggerPrefix(UserPrefix("alice"), TabShared); n != 2 {
		t.Errorf("TriggerPrefix = %d, want 2", n)
	}
	if calls["alicia:1"] != 0 || calls["bob:1"] != 0 {
		t.Errorf("unexpected calls: %v", calls)
	}
}

func TestCallbackMayUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("a:1", func(string) { r.Unregister("a:1") })

	if n := r.TriggerPrefix("a:", TabCalendar); n != 1 {
		t.Fatalf("TriggerPrefix = %d, want 1", n)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var hits int64

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := StreamName("user", fmt.Sprint(i))
			r.Register(name, func(string) { atomic.AddInt64(&hits, 1) })
			r.Trigger(name, TabCalendar)
			r.TriggerPrefix(UserPrefix("user"), TabShared)
			r.Unregister(name)
		}(i)
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
	if atomic.LoadInt64(&hits) < 50 {
		t.Errorf("hits = %d, want at least 50", hits)
	}
}
