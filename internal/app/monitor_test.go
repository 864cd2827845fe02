package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiMonitor(t *testing.T) {
	a, b := &spyMonitor{}, &spyMonitor{}
	m := MultiMonitor{a, b}

	m.OnProgress(40, "10 items read / 4 persisted")
	m.OnError(errors.New("DB error"))
	m.OnComplete("done")

	for _, spy := range []*spyMonitor{a, b} {
		assert.Equal(t, []progressCall{{40, "10 items read / 4 persisted"}}, spy.progress)
		assert.Len(t, spy.errs, 1)
		assert.Equal(t, []string{"done"}, spy.completes)
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}

	_, done := r.Completion()
	assert.False(t, done)

	r.OnProgress(0, "3 items read")
	r.OnProgress(100, "4 items read / 4 persisted")
	first := errors.New("first")
	r.OnError(first)
	r.OnError(errors.New("second"))
	r.OnComplete("aborted")

	percent, msg := r.Progress()
	assert.Equal(t, 100, percent)
	assert.Equal(t, "4 items read / 4 persisted", msg)
	assert.Same(t, first, r.Err())
	msg, done = r.Completion()
	assert.True(t, done)
	assert.Equal(t, "aborted", msg)
}

func TestNoopMonitor(t *testing.T) {
	var m NoopMonitor
	m.OnProgress(1, "x")
	m.OnError(errors.New("x"))
	m.OnComplete("x")
}
