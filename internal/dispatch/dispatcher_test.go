package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatch_FanOut(t *testing.T) {
	d := NewDispatcher(nil)

	var calls []string
	d.Subscribe("alert_triggered", func(msgType string, payload []byte) {
		calls = append(calls, "a:"+string(payload))
	})
	d.Subscribe("alert_triggered", func(msgType string, payload []byte) {
		calls = append(calls, "b:"+string(payload))
	})
	d.Subscribe("camera_online", func(msgType string, payload []byte) {
		calls = append(calls, "other")
	})

	d.Dispatch("alert_triggered", []byte("x"))

	assert.ElementsMatch(t, []string{"a:x", "b:x"}, calls)
}

func TestDispatch_PanickingSubscriberIsIsolated(t *testing.T) {
	d := NewDispatcher(nil)

	invoked := make(map[string]int)
	d.Subscribe("e", func(string, []byte) { invoked["first"]++ })
	d.Subscribe("e", func(string, []byte) { panic("subscriber bug") })
	d.Subscribe("e", func(string, []byte) { invoked["third"]++ })

	assert.NotPanics(t, func() { d.Dispatch("e", nil) })

	assert.Equal(t, 1, invoked["first"])
	assert.Equal(t, 1, invoked["third"])
}

func TestCancel(t *testing.T) {
	d := NewDispatcher(nil)

	count := 0
	sub := d.Subscribe("e", func(string, []byte) { count++ })
	keep := d.Subscribe("e", func(string, []byte) { count += 10 })

	sub.Cancel()
	sub.Cancel() // repeated cancel is safe
	d.Dispatch("e", nil)

	assert.Equal(t, 10, count)
	assert.Equal(t, 1, d.SubscriberCount("e"))
	keep.Cancel()
	assert.Equal(t, 0, d.SubscriberCount("e"))
}

func TestClear(t *testing.T) {
	d := NewDispatcher(nil)

	count := 0
	d.Subscribe("e", func(string, []byte) { count++ })
	d.Subscribe("e", func(string, []byte) { count++ })
	d.Clear("e")
	d.Dispatch("e", nil)

	assert.Equal(t, 0, count)
}

func TestDispatch_MutationDuringDispatch(t *testing.T) {
	d := NewDispatcher(nil)

	// A handler that cancels a sibling and subscribes a new handler while a
	// dispatch is in flight must not crash the iteration.
	var sibling Subscription
	ran := 0
	sibling = d.Subscribe("e", func(string, []byte) { ran++ })
	d.Subscribe("e", func(string, []byte) {
		sibling.Cancel()
		d.Subscribe("e", func(string, []byte) { ran += 100 })
	})

	assert.NotPanics(t, func() { d.Dispatch("e", nil) })

	// The late subscriber sees the next dispatch, not this one.
	assert.Less(t, ran, 100)
}

func TestDispatch_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	d := NewDispatcher(nil)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				s := d.Subscribe("e", func(string, []byte) {})
				s.Cancel()
			}
		}
	}()

	for i := 0; i < 1000; i++ {
		d.Dispatch("e", nil)
	}
	close(stop)
	wg.Wait()
}
