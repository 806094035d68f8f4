package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImmediate(t *testing.T) {
	ran := false
	assert.True(t, Immediate{}.Post(func() { ran = true }))
	assert.True(t, ran)
}

func TestLoopRunsInOrder(t *testing.T) {
	l := NewLoop()
	var got []int
	for i := 0; i < 5; i++ {
		l.Post(func() { got = append(got, i) })
	}
	l.Post(l.Close)

	err := l.Run(t.Context())
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoopPostFromGoroutines(t *testing.T) {
	l := NewLoop()
	runner := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Post(func() { runner <- i })
		}()
	}

	done := make(chan error, 1)
	go func() { done <- l.Run(t.Context()) }()

	seen := map[int]bool{}
	for range 8 {
		select {
		case v := <-runner:
			seen[v] = true
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for posted work")
		}
	}
	wg.Wait()
	l.Close()

	require.ErrorIs(t, <-done, ErrClosed)
	assert.Len(t, seen, 8)
}

func TestLoopStopsOnContext(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
}

func TestLoopDropsAfterClose(t *testing.T) {
	l := NewLoop()
	l.Close()
	assert.False(t, l.Post(func() { t.Error("posted after close") }))

	assert.ErrorIs(t, l.Run(t.Context()), ErrClosed)
}

func TestLoopCloseDiscardsPending(t *testing.T) {
	l := NewLoop()
	require.True(t, l.Post(func() { t.Error("ran after close") }))
	assert.Equal(t, 1, l.Pending())

	select {
	case <-Done(l):
		t.Fatal("done before close")
	default:
	}

	l.Close()
	l.Close()
	assert.Zero(t, l.Pending())
	<-Done(l)
	assert.ErrorIs(t, l.Run(t.Context()), ErrClosed)
}

func TestLoopCloseFromPostedFunction(t *testing.T) {
	l := NewLoop()
	var got []int
	l.Post(func() { got = append(got, 1) })
	l.Post(l.Close)
	l.Post(func() { got = append(got, 3) })

	assert.ErrorIs(t, l.Run(t.Context()), ErrClosed)
	assert.Equal(t, []int{1}, got)
}

func TestLoopKeepsWorkAcrossRuns(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(t.Context())
	l.Post(cancel)
	l.Post(l.Close)

	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
	assert.Equal(t, 1, l.Pending())
	assert.ErrorIs(t, l.Run(t.Context()), ErrClosed)
}

func TestDoneOfImmediate(t *testing.T) {
	assert.Nil(t, Done(Immediate{}))
}
