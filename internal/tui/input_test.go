package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) []KeyEvent {
	t.Helper()
	r := NewKeyReader(strings.NewReader(input))
	var events []KeyEvent
	for {
		ev, err := r.ReadKey()
		if err != nil {
			return events
		}
		events = append(events, ev)
	}
}

func TestKeyReader_Basics(t *testing.T) {
	events := readAll(t, "f\tS\r")
	require.Len(t, events, 4)
	assert.Equal(t, KeyEvent{Key: KeyRune, Rune: 'f'}, events[0])
	assert.Equal(t, KeyEvent{Key: KeyTab}, events[1])
	assert.Equal(t, KeyEvent{Key: KeyRune, Rune: 'S'}, events[2])
	assert.Equal(t, KeyEvent{Key: KeyEnter}, events[3])
}

func TestKeyReader_Control(t *testing.T) {
	events := readAll(t, "\x03\x04\x7f")
	require.Len(t, events, 3)
	assert.Equal(t, KeyCtrlC, events[0].Key)
	assert.Equal(t, KeyCtrlD, events[1].Key)
	assert.Equal(t, KeyBackspace, events[2].Key)
}

func TestKeyReader_Arrows(t *testing.T) {
	events := readAll(t, "\x1b[A\x1b[B\x1b[C\x1b[D")
	require.Len(t, events, 4)
	assert.Equal(t, KeyUp, events[0].Key)
	assert.Equal(t, KeyDown, events[1].Key)
	assert.Equal(t, KeyRight, events[2].Key)
	assert.Equal(t, KeyLeft, events[3].Key)
}

func TestKeyReader_UTF8(t *testing.T) {
	events := readAll(t, "é")
	require.Len(t, events, 1)
	assert.Equal(t, KeyEvent{Key: KeyRune, Rune: 'é'}, events[0])
}

func TestParseShortcut(t *testing.T) {
	tests := []struct {
		ev   KeyEvent
		want Shortcut
	}{
		{KeyEvent{Key: KeyRune, Rune: 'f'}, ShortcutFix},
		{KeyEvent{Key: KeyRune, Rune: 'F'}, ShortcutFix},
		{KeyEvent{Key: KeyRune, Rune: 's'}, ShortcutSnooze},
		{KeyEvent{Key: KeyRune, Rune: 'i'}, ShortcutIgnore},
		{KeyEvent{Key: KeyRune, Rune: 'r'}, ShortcutRestart},
		{KeyEvent{Key: KeyRune, Rune: 'q'}, ShortcutQuit},
		{KeyEvent{Key: KeyCtrlC}, ShortcutQuit},
		{KeyEvent{Key: KeyEscape}, ShortcutEscape},
		{KeyEvent{Key: KeyRune, Rune: 'x'}, ShortcutNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseShortcut(tt.ev))
	}
}

func TestLineEditor(t *testing.T) {
	e := NewLineEditor()

	for _, r := range "0,1,2" {
		e.HandleKey(KeyEvent{Key: KeyRune, Rune: r})
	}
	assert.Equal(t, "0,1,2", e.Text())
	assert.Equal(t, 5, e.Cursor())

	// Backspace removes before the cursor.
	e.HandleKey(KeyEvent{Key: KeyBackspace})
	assert.Equal(t, "0,1,", e.Text())

	// Cursor movement and mid-line insert.
	e.HandleKey(KeyEvent{Key: KeyLeft})
	e.HandleKey(KeyEvent{Key: KeyLeft})
	e.HandleKey(KeyEvent{Key: KeyRune, Rune: 'x'})
	assert.Equal(t, "0,x1,", e.Text())

	// Enter reports completion without modifying the buffer.
	assert.True(t, e.HandleKey(KeyEvent{Key: KeyEnter}))
	assert.Equal(t, "0,x1,", e.Text())

	e.Clear()
	assert.Empty(t, e.Text())
	assert.Zero(t, e.Cursor())

	e.SetText("preset")
	assert.Equal(t, "preset", e.Text())
	assert.Equal(t, 6, e.Cursor())
	assert.Equal(t, 6, e.Len())
}

func TestNotifier_Play(t *testing.T) {
	var buf strings.Builder
	n := NewNotifier(&buf)
	require.NoError(t, n.Play())
	assert.Equal(t, Bell, buf.String())
}
