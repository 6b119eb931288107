package common

import (
	"testing"
	"time"

	"github.com/ternarybob/arbor"
)

func TestSafeGoRuns(t *testing.T) {
	done := make(chan struct{})
	SafeGo(arbor.NewLogger(), "test", func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}

func TestSafeGoRecoversPanic(t *testing.T) {
	reached := make(chan struct{})
	SafeGo(nil, "panicky", func() {
		close(reached)
		panic("boom")
	})

	select {
	case <-reached:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
	// A panic that escaped would have killed the test binary
	time.Sleep(10 * time.Millisecond)
}
