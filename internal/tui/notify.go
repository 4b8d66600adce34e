package tui

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// Notifier handles the audio and OS cues around run outcomes. In the
// foreground it rings the terminal bell; backgrounded on macOS it can post a
// native notification.
type Notifier struct {
	out io.Writer
}

// NewNotifier creates a Notifier that writes bell to the given output.
func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

// Bell writes the terminal bell character to output.
func (n *Notifier) Bell() {
	fmt.Fprint(n.out, Bell)
}

// Play rings the bell as the verdict cue. It satisfies the engine's Cue
// interface; cue failure never blocks the verdict transition.
func (n *Notifier) Play() error {
	n.Bell()
	return nil
}

// NotifyOS sends an OS-native notification. On macOS this uses osascript;
// on other platforms it is a no-op.
func (n *Notifier) NotifyOS(title, message string) error {
	if runtime.GOOS != "darwin" {
		return nil
	}
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}
