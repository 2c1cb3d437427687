package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItems(t *testing.T) {
	got := Items()
	assert.Len(t, got, 3)
	assert.Equal(t, "Chat with AI – Feb 24, 2026", got[0].Title)

	got[0].Title = "changed"
	assert.NotEqual(t, "changed", Items()[0].Title)
}

func TestFind(t *testing.T) {
	it, ok := Find(2)
	assert.True(t, ok)
	assert.Equal(t, "Thank you for confirming!", it.LastMessage)

	_, ok = Find(42)
	assert.False(t, ok)
}
