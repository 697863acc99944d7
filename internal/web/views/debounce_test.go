package views

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncerRunsLastPush(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var got atomic.Value

	for _, s := range []string{"r", "re", "rea", "react"} {
		d.Push(func() { got.Store(s) })
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return got.Load() == "react" }, time.Second, 10*time.Millisecond)
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32

	d.Push(func() { calls.Add(1) })
	d.Stop()
	d.Push(func() { calls.Add(1) })

	time.Sleep(80 * time.Millisecond)
	require.Zero(t, calls.Load())
}
