package workspace

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls, last atomic.Int32
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Trigger("a.gfc", func() {
			calls.Add(1)
			last.Store(n)
		})
	}
	assert.Equal(t, 1, d.Pending())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
	assert.EqualValues(t, 5, last.Load())
	assert.Zero(t, d.Pending())
}

func TestDebouncerKeysAreIndependent(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	d.Trigger("a", func() { calls.Add(1) })
	d.Trigger("b", func() { calls.Add(1) })
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerFlush(t *testing.T) {
	d := NewDebouncer(time.Hour)
	defer d.Stop()

	ran := false
	d.Trigger("a", func() { ran = true })
	d.Flush("a")
	assert.True(t, ran)
	assert.Zero(t, d.Pending())

	d.Flush("nothing pending")
}

func TestDebouncerCancelAndStop(t *testing.T) {
	d := NewDebouncer(time.Hour)

	var calls atomic.Int32
	d.Trigger("a", func() { calls.Add(1) })
	d.Cancel("a")
	assert.Zero(t, d.Pending())

	d.Trigger("b", func() { calls.Add(1) })
	d.Stop()
	d.Trigger("c", func() { calls.Add(1) })
	assert.Zero(t, d.Pending())
	assert.Zero(t, calls.Load())
}

func TestDebouncerZeroDelayRunsInline(t *testing.T) {
	d := NewDebouncer(0)
	defer d.Stop()

	ran := false
	d.Trigger("a", func() { ran = true })
	assert.True(t, ran)
}
