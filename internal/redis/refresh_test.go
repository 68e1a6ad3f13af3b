package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SergeyKozhin/calnotes-backend/internal/refresh"
	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

func TestDecodeRefresh(t *testing.T) {
	tests := []struct {
		data   string
		user   string
		tab    string
		wantOk bool
	}{
		{encodeRefresh("9f1c", refresh.TabCalendar), "9f1c", refresh.TabCalendar, true},
		{"9f1c shared", "9f1c", "shared", true},
		{"9f1c", "", "", false},
		{" calendar", "", "", false},
		{"9f1c ", "", "", false},
	}

	for _, tt := range tests {
		user, tab, ok := decodeRefresh([]byte(tt.data))
		if ok != tt.wantOk || user != tt.user || tab != tt.tab {
			t.Errorf("decodeRefresh(%q) = %q, %q, %v", tt.data, user, tab, ok)
		}
	}
}

func TestSubscriberHandle(t *testing.T) {
	registry := refresh.NewRegistry()

	var got []string
	registry.Register(refresh.StreamName("alice", "1"), func(tab string) { got = append(got, tab) })
	registry.Register(refresh.StreamName("bob", "1"), func(tab string) { t.Error("bob triggered") })

	s := NewSubscriber(nil, registry, zap.NewNop().Sugar())
	s.handle([]byte("alice shared"))
	s.handle([]byte("garbage"))

	if len(got) != 1 || got[0] != refresh.TabShared {
		t.Errorf("got = %v, want [shared]", got)
	}
}

// fakeConn answers SUBSCRIBE and UNSUBSCRIBE the way a redis server does.
// With dropWhenIdle set Receive fails once the queued replies are drained.
type fakeConn struct {
	replies      chan interface{}
	closed       chan struct{}
	closeOnce    sync.Once
	dropWhenIdle bool
}

func newFakeConn(dropWhenIdle bool, messages ...string) *fakeConn {
	c := &fakeConn{
		replies:      make(chan interface{}, 16),
		closed:       make(chan struct{}),
		dropWhenIdle: dropWhenIdle,
	}
	for _, m := range messages {
		c.replies <- []interface{}{[]byte("message"), []byte(RefreshChannel), []byte(m)}
	}
	return c
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) Err() error { return nil }

func (c *fakeConn) Do(string, ...interface{}) (interface{}, error) { return nil, nil }

func (c *fakeConn) Flush() error { return nil }

func (c *fakeConn) Send(cmd string, args ...interface{}) error {
	switch cmd {
	case "SUBSCRIBE":
		c.replies <- []interface{}{[]byte("subscribe"), []byte(RefreshChannel), int64(1)}
	case "UNSUBSCRIBE":
		c.replies <- []interface{}{[]byte("unsubscribe"), []byte(RefreshChannel), int64(0)}
	}
	return nil
}

func (c *fakeConn) Receive() (interface{}, error) {
	select {
	case r := <-c.replies:
		return r, nil
	default:
	}
	if c.dropWhenIdle {
		return nil, errors.New("connection reset by peer")
	}

	select {
	case r := <-c.replies:
		return r, nil
	case <-c.closed:
		return nil, errors.New("use of closed connection")
	}
}

type fakeSource struct {
	mu    sync.Mutex
	dials int
	conns []redis.Conn
}

func (f *fakeSource) GetContext(context.Context) (redis.Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.dials++
	if f.dials == 1 {
		return nil, errors.New("dial tcp: connection refused")
	}
	if len(f.conns) == 0 {
		return nil, errors.New("no more connections")
	}
	c := f.conns[0]
	f.conns = f.conns[1:]
	return c, nil
}

func TestSubscriberReconnects(t *testing.T) {
	registry := refresh.NewRegistry()
	tabs := make(chan string, 4)
	registry.Register(refresh.StreamName("alice", "1"), func(tab string) { tabs <- tab })

	source := &fakeSource{conns: []redis.Conn{
		newFakeConn(true, "alice calendar"),
		newFakeConn(false, "alice shared"),
	}}
	s := NewSubscriber(nil, registry, zap.NewNop().Sugar())
	s.pool = source
	s.retryMin = time.Millisecond
	s.retryMax = 4 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	for _, want := range []string{refresh.TabCalendar, refresh.TabShared} {
		select {
		case got := <-tabs:
			if got != want {
				t.Errorf("tab = %q, want %q", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("no %q refresh delivered", want)
		}
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	source.mu.Lock()
	defer source.mu.Unlock()
	if source.dials != 3 {
		t.Errorf("dials = %d, want 3", source.dials)
	}
}
