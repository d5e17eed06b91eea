package worker

import (
	"testing"
	"time"
)

func TestGate_AcquireRelease(t *testing.T) {
	g := NewGate()

	if g.Busy() {
		t.Fatal("new gate should be free")
	}

	g.Acquire()
	if !g.Busy() {
		t.Error("gate should be busy after Acquire")
	}
	if g.TryAcquire() {
		t.Error("TryAcquire should fail on busy gate")
	}

	g.Release()
	if g.Busy() {
		t.Error("gate should be free after Release")
	}
	if !g.TryAcquire() {
		t.Error("TryAcquire should succeed on free gate")
	}
	g.Release()
}

func TestGate_AcquireBlocks(t *testing.T) {
	g := NewGate()
	g.Acquire()

	acquired := make(chan struct{})
	go func() {
		g.Acquire()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire should block")
	case <-time.After(30 * time.Millisecond):
	}

	g.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire should proceed after Release")
	}
	g.Release()
}

func TestGate_DrainFree(t *testing.T) {
	g := NewGate()

	done := make(chan struct{})
	go func() {
		g.Drain()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Drain on free gate should return immediately")
	}

	if g.Busy() {
		t.Error("Drain should leave gate free")
	}
}

func TestGate_ReleaseUnlockedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Release of free gate should panic")
		}
	}()

	NewGate().Release()
}
