package tui

import (
	"bufio"
	"io"
	"unicode/utf8"
)

// Key represents a keyboard input.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
	KeyCtrlD
	KeyRune // Regular character
)

// KeyEvent represents a key press event.
type KeyEvent struct {
	Key  Key
	Rune rune // Only valid when Key == KeyRune
}

// KeyReader reads keyboard input from a raw terminal.
type KeyReader struct {
	reader *bufio.Reader
}

// NewKeyReader creates a KeyReader from the given io.Reader.
// The reader should be a raw terminal input (e.g., os.Stdin after term.MakeRaw).
func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{
		reader: bufio.NewReaderSize(r, 64),
	}
}

// ReadKey reads a single key event from the input.
// This method blocks until a key is pressed.
func (k *KeyReader) ReadKey() (KeyEvent, error) {
	b, err := k.reader.ReadByte()
	if err != nil {
		return KeyEvent{}, err
	}

	switch b {
	case 0x03: // Ctrl+C
		return KeyEvent{Key: KeyCtrlC}, nil
	case 0x04: // Ctrl+D
		return KeyEvent{Key: KeyCtrlD}, nil
	case 0x09: // Tab
		return KeyEvent{Key: KeyTab}, nil
	case 0x0D: // Enter (carriage return)
		return KeyEvent{Key: KeyEnter}, nil
	case 0x7F, 0x08: // Backspace (DEL or BS)
		return KeyEvent{Key: KeyBackspace}, nil
	case 0x1B: // Escape or escape sequence start
		return k.readEscapeSequence()
	default:
		if b >= 0x20 && b < 0x7F {
			return KeyEvent{Key: KeyRune, Rune: rune(b)}, nil
		}
		// Handle UTF-8 multi-byte characters
		if b >= 0xC0 {
			return k.readUTF8(b)
		}
		return KeyEvent{Key: KeyUnknown}, nil
	}
}

// readEscapeSequence handles escape sequences (arrow keys, etc).
func (k *KeyReader) readEscapeSequence() (KeyEvent, error) {
	b, err := k.reader.ReadByte()
	if err != nil {
		return KeyEvent{Key: KeyEscape}, nil
	}

	if b != '[' && b != 'O' {
		k.reader.UnreadByte()
		return KeyEvent{Key: KeyEscape}, nil
	}

	return k.parseCSI(b)
}

// parseCSI parses a CSI (Control Sequence Introducer) or SS3 sequence.
func (k *KeyReader) parseCSI(prefix byte) (KeyEvent, error) {
	b, err := k.reader.ReadByte()
	if err != nil {
		return KeyEvent{Key: KeyEscape}, nil
	}

	switch b {
	case 'A':
		return KeyEvent{Key: KeyUp}, nil
	case 'B':
		return KeyEvent{Key: KeyDown}, nil
	case 'C':
		return KeyEvent{Key: KeyRight}, nil
	case 'D':
		return KeyEvent{Key: KeyLeft}, nil
	default:
		// Unknown sequence, consume remaining bytes if any
		for k.reader.Buffered() > 0 {
			next, _ := k.reader.ReadByte()
			if (next >= 'A' && next <= 'Z') || next == '~' {
				break
			}
		}
		return KeyEvent{Key: KeyUnknown}, nil
	}
}

// readUTF8 reads a multi-byte UTF-8 character.
func (k *KeyReader) readUTF8(first byte) (KeyEvent, error) {
	var buf [4]byte
	buf[0] = first

	var n int
	switch {
	case first&0xE0 == 0xC0:
		n = 2
	case first&0xF0 == 0xE0:
		n = 3
	case first&0xF8 == 0xF0:
		n = 4
	default:
		return KeyEvent{Key: KeyUnknown}, nil
	}

	for i := 1; i < n; i++ {
		b, err := k.reader.ReadByte()
		if err != nil {
			return KeyEvent{Key: KeyUnknown}, err
		}
		buf[i] = b
	}

	r, _ := utf8.DecodeRune(buf[:n])
	if r == utf8.RuneError {
		return KeyEvent{Key: KeyUnknown}, nil
	}

	return KeyEvent{Key: KeyRune, Rune: r}, nil
}

// Shortcut represents a TUI keyboard shortcut.
type Shortcut int

const (
	ShortcutNone    Shortcut = iota
	ShortcutFix              // 'f' - fix the surfaced alert
	ShortcutSnooze           // 's' - snooze the surfaced alert
	ShortcutIgnore           // 'i' - ignore the surfaced alert
	ShortcutRestart          // 'r' - play again from the end screens
	ShortcutEscape           // esc
	ShortcutQuit             // 'q' or ctrl+c
)

// ParseShortcut converts a KeyEvent to a Shortcut.
func ParseShortcut(ev KeyEvent) Shortcut {
	switch ev.Key {
	case KeyEscape:
		return ShortcutEscape
	case KeyCtrlC:
		return ShortcutQuit
	case KeyRune:
		switch ev.Rune {
		case 'f', 'F':
			return ShortcutFix
		case 's', 'S':
			return ShortcutSnooze
		case 'i', 'I':
			return ShortcutIgnore
		case 'r', 'R':
			return ShortcutRestart
		case 'q', 'Q':
			return ShortcutQuit
		}
	}
	return ShortcutNone
}

// LineEditor handles line-based text input for the coding panel fields.
type LineEditor struct {
	buffer []rune
	cursor int
}

// NewLineEditor creates an empty LineEditor.
func NewLineEditor() *LineEditor {
	return &LineEditor{
		buffer: make([]rune, 0, 256),
	}
}

// HandleKey processes a key event and updates the line buffer.
// Returns true if Enter was pressed (line complete), false otherwise.
func (e *LineEditor) HandleKey(ev KeyEvent) bool {
	switch ev.Key {
	case KeyEnter:
		return true
	case KeyBackspace:
		if e.cursor > 0 {
			copy(e.buffer[e.cursor-1:], e.buffer[e.cursor:])
			e.buffer = e.buffer[:len(e.buffer)-1]
			e.cursor--
		}
	case KeyLeft:
		if e.cursor > 0 {
			e.cursor--
		}
	case KeyRight:
		if e.cursor < len(e.buffer) {
			e.cursor++
		}
	case KeyRune:
		e.buffer = append(e.buffer, 0)
		copy(e.buffer[e.cursor+1:], e.buffer[e.cursor:])
		e.buffer[e.cursor] = ev.Rune
		e.cursor++
	}
	return false
}

// Text returns the current line content.
func (e *LineEditor) Text() string {
	return string(e.buffer)
}

// SetText replaces the line content and moves the cursor to the end.
func (e *LineEditor) SetText(s string) {
	e.buffer = append(e.buffer[:0], []rune(s)...)
	e.cursor = len(e.buffer)
}

// Clear resets the line editor.
func (e *LineEditor) Clear() {
	e.buffer = e.buffer[:0]
	e.cursor = 0
}

// Cursor returns the current cursor position.
func (e *LineEditor) Cursor() int {
	return e.cursor
}

// Len returns the length of the current buffer.
func (e *LineEditor) Len() int {
	return len(e.buffer)
}
