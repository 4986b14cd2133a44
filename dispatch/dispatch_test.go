package dispatch

import (
	"errors"
	"sync"
	"testing"

	"github.com/mattkeenan/bilist"
)

type fakeClock struct {
	mu  sync.Mutex
	now int64
}

func (c *fakeClock) NowMS() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += ms
}

type noopScheduler struct{}

func (noopScheduler) Schedule(int64, func()) func() { return func() {} }

func newTestDispatcher() (*Dispatcher, *fakeClock) {
	clock := &fakeClock{now: 1_700_000_000_000}
	return New(clock, noopScheduler{}), clock
}

func TestEndToEndScenarioOne(t *testing.T) {
	d, _ := newTestDispatcher()

	mustExec(t, d, "set", []string{"C", "a", "b", "v1", "0"})
	v := mustExec(t, d, "get", []string{"C", "a", "b"})
	if v != "v1" {
		t.Fatalf("expected v1, got %v", v)
	}
	if n := mustExec(t, d, "count", []string{"C"}); n != int64(1) {
		t.Fatalf("expected count 1, got %v", n)
	}
	if r := mustExec(t, d, "del", []string{"C", "a", "b"}); r != int64(1) {
		t.Fatalf("expected del to return 1, got %v", r)
	}
	if v := mustExec(t, d, "get", []string{"C", "a", "b"}); v != nil {
		t.Fatalf("expected nil after del, got %v", v)
	}
	if n := mustExec(t, d, "count", []string{"C"}); n != int64(0) {
		t.Fatalf("expected count 0, got %v", n)
	}
}

func TestEndToEndScenarioTwo(t *testing.T) {
	d, _ := newTestDispatcher()

	mustExec(t, d, "set", []string{"C", "a", "b", "v1", "0"})
	mustExec(t, d, "set", []string{"C", "a", "b", "v2", "0"})
	if n := mustExec(t, d, "count", []string{"C"}); n != int64(1) {
		t.Fatalf("expected count 1, got %v", n)
	}
	if v := mustExec(t, d, "get", []string{"C", "a", "b"}); v != "v2" {
		t.Fatalf("expected v2, got %v", v)
	}
}

func TestEndToEndScenarioThree(t *testing.T) {
	d, _ := newTestDispatcher()

	mustExec(t, d, "set", []string{"C", "a", "x", "v1", "0"})
	mustExec(t, d, "set", []string{"C", "a", "y", "v2", "0"})
	mustExec(t, d, "set", []string{"C", "b", "x", "v3", "0"})

	got1 := mustExec(t, d, "get1", []string{"C", "a"}).([]bilist.Pair)
	want1 := []bilist.Pair{{Key: "x", Value: "v1"}, {Key: "y", Value: "v2"}}
	if len(got1) != len(want1) {
		t.Fatalf("expected %v, got %v", want1, got1)
	}
	for i := range want1 {
		if got1[i] != want1[i] {
			t.Fatalf("position %d: expected %v, got %v", i, want1[i], got1[i])
		}
	}

	got2 := mustExec(t, d, "get2", []string{"C", "x"}).([]bilist.Pair)
	want2 := []bilist.Pair{{Key: "a", Value: "v1"}, {Key: "b", Value: "v3"}}
	for i := range want2 {
		if got2[i] != want2[i] {
			t.Fatalf("position %d: expected %v, got %v", i, want2[i], got2[i])
		}
	}
}

func TestEndToEndScenarioFourExpiry(t *testing.T) {
	d, clock := newTestDispatcher()

	mustExec(t, d, "set", []string{"C", "a", "b", "v", "1"})
	clock.Advance(1100)

	if v := mustExec(t, d, "get", []string{"C", "a", "b"}); v != nil {
		t.Fatalf("expected nil after expiry, got %v", v)
	}
	if n := mustExec(t, d, "count", []string{"C"}); n != int64(0) {
		t.Fatalf("expected count 0 after expiry, got %v", n)
	}
}

func TestWrongArity(t *testing.T) {
	d, _ := newTestDispatcher()

	_, err := d.Execute("set", []string{"C", "a", "b"})
	if !errors.Is(err, ErrWrongArity) {
		t.Fatalf("expected ErrWrongArity, got %v", err)
	}
}

func TestInvalidExpireTime(t *testing.T) {
	d, _ := newTestDispatcher()

	_, err := d.Execute("set", []string{"C", "a", "b", "v", "not-a-number"})
	if !errors.Is(err, ErrInvalidExpireTime) {
		t.Fatalf("expected ErrInvalidExpireTime, got %v", err)
	}
}

func TestInvalidCountParameter(t *testing.T) {
	d, _ := newTestDispatcher()

	for _, bad := range []string{"-1", "abc", "3.5"} {
		if _, err := d.Execute("ckey", []string{"C", bad}); !errors.Is(err, ErrInvalidCountParameter) {
			t.Fatalf("count=%q: expected ErrInvalidCountParameter, got %v", bad, err)
		}
	}
}

func TestWrongType(t *testing.T) {
	d, _ := newTestDispatcher()
	d.registry["C"] = "not a container"

	_, err := d.Execute("get", []string{"C", "a", "b"})
	if !errors.Is(err, ErrWrongType) {
		t.Fatalf("expected ErrWrongType, got %v", err)
	}
}

func TestCKeyShape(t *testing.T) {
	d, _ := newTestDispatcher()

	v, err := d.Execute("ckey", []string{"C", "6"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := v.(string)
	if len(s) != 14 {
		t.Fatalf("expected length 14, got %d (%q)", len(s), s)
	}
}

func TestUnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher()
	_, err := d.Execute("frobnicate", []string{"C"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func mustExec(t *testing.T, d *Dispatcher, name string, args []string) any {
	t.Helper()
	v, err := d.Execute(name, args)
	if err != nil {
		t.Fatalf("%s %v: unexpected error: %v", name, args, err)
	}
	return v
}
