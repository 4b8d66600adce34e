package handoff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutTake(t *testing.T) {
	ch := NewMemory()

	d := Descriptor{TaskID: "t-xss", Category: "security-input", Verdict: "breach"}
	assert.True(t, ch.Put(d))

	got, ok := ch.Take()
	require.True(t, ok)
	assert.Equal(t, d, got)
}

func TestMemory_FirstWriteWins(t *testing.T) {
	ch := NewMemory()

	require.True(t, ch.Put(Descriptor{TaskID: "first"}))
	assert.False(t, ch.Put(Descriptor{TaskID: "second"}))

	got, ok := ch.Take()
	require.True(t, ok)
	assert.Equal(t, "first", got.TaskID)
}

func TestMemory_ReadOnce(t *testing.T) {
	ch := NewMemory()
	require.True(t, ch.Put(Descriptor{TaskID: "t"}))

	_, ok := ch.Take()
	require.True(t, ok)

	_, ok = ch.Take()
	assert.False(t, ok)
}

func TestMemory_TakeEmpty(t *testing.T) {
	ch := NewMemory()
	_, ok := ch.Take()
	assert.False(t, ok)
}
