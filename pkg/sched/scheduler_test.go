package sched

import (
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/voidhawk/xstatic/pkg/types"
)

// stubProvider records dispatches and optionally refuses them.
type stubProvider struct {
	mu         sync.Mutex
	refuse     bool
	dispatched []Build
	running    []Build
}

func (p *stubProvider) DispatchBuild(b Build) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refuse {
		return new(ErrNoCapacity)
	}
	p.dispatched = append(p.dispatched, b)
	return nil
}

func (p *stubProvider) ListBuilds() ([]Build, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running, nil
}

func (p *stubProvider) SetSlots(map[string]int) {}

func testBuildFor(arch string) Build {
	return Build{
		Triple: types.TargetTriple{Arch: arch, Vendor: "unknown", OS: "linux", ABI: "musl"},
		Pkg:    "proxy-bin",
		Rev:    "abc123",
	}
}

func TestEnqueueDeduplicates(t *testing.T) {
	p := &stubProvider{}
	s := NewScheduler(hclog.NewNullLogger(), p)

	b := testBuildFor("aarch64")
	s.Enqueue(b)
	s.Enqueue(b)
	s.Enqueue(testBuildFor("x86_64"))

	if depth := s.QueueDepth(); depth != 2 {
		t.Fatalf("got queue depth %d, want 2", depth)
	}
}

func TestEnqueueSkipsRunning(t *testing.T) {
	b := testBuildFor("aarch64")
	p := &stubProvider{running: []Build{b}}
	s := NewScheduler(hclog.NewNullLogger(), p)

	s.Enqueue(b)
	if depth := s.QueueDepth(); depth != 0 {
		t.Fatalf("a running build was queued again: depth %d", depth)
	}
}

func TestSendDrainsQueue(t *testing.T) {
	p := &stubProvider{}
	s := NewScheduler(hclog.NewNullLogger(), p)

	s.Enqueue(testBuildFor("aarch64"), testBuildFor("riscv64"))
	if err := s.send(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.send(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.send(); err == nil {
		t.Fatal("an empty queue must refuse to send")
	}

	if len(p.dispatched) != 2 {
		t.Fatalf("got %d dispatches, want 2", len(p.dispatched))
	}
	if s.QueueDepth() != 0 {
		t.Fatalf("queue not drained: depth %d", s.QueueDepth())
	}
}

func TestSendKeepsRefusedBuilds(t *testing.T) {
	p := &stubProvider{refuse: true}
	s := NewScheduler(hclog.NewNullLogger(), p)

	s.Enqueue(testBuildFor("aarch64"))
	if err := s.send(); err == nil {
		t.Fatal("a refused dispatch must surface as an error")
	}
	if s.QueueDepth() != 1 {
		t.Fatal("a refused build must stay queued for a later attempt")
	}
}

func TestBuildToMap(t *testing.T) {
	m := testBuildFor("aarch64").ToMap()
	if m["triple"] != "aarch64-unknown-linux-musl" || m["package"] != "proxy-bin" || m["revision"] != "abc123" {
		t.Fatalf("unexpected map form: %v", m)
	}
}
