package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kochabx/portfoliohub/errors"
)

func TestEvents(t *testing.T) {
	e := NewEvents()
	var order []string

	unsubA := e.Subscribe(func(f AuthFailure) { order = append(order, "a") })
	e.Subscribe(func(f AuthFailure) {
		assert.True(t, f.ShouldRedirect)
		order = append(order, "b")
	})

	e.Publish(AuthFailure{Reason: errors.Unauthorized("expired"), ShouldRedirect: true})
	assert.Equal(t, []string{"a", "b"}, order)

	unsubA()
	unsubA()
	e.Publish(AuthFailure{ShouldRedirect: true})
	assert.Equal(t, []string{"a", "b", "b"}, order)
}
