package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTodoList_Counts(t *testing.T) {
	l := NewTodoList([]Todo{{Completed: true}, {}, {Completed: true}})
	assert.Equal(t, 3, l.Count)
	assert.Equal(t, 2, l.Completed)
	assert.Equal(t, 1, l.Pending)

	empty := NewTodoList(nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Pending)
}
