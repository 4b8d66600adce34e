package coding

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"courtsim/internal/catalog"
)

// NumStages is the number of coding stages. Step index NumStages means done.
const NumStages = 3

// DefaultStageDuration is the per-stage deadline window.
const DefaultStageDuration = 60 * time.Second

// DefaultHTMLBuffer is the stage-1 editor's starting content.
const DefaultHTMLBuffer = `<img id="img1" src="/images/example.png">`

// StageMeta is the fixed verdict descriptor fired when a stage times out.
type StageMeta struct {
	Title    string
	Category catalog.Category
	Verdict  string
}

var stageMeta = [NumStages]StageMeta{
	{
		Title:    "Accessibility",
		Category: catalog.CategoryAccessibility,
		Verdict:  "Charged under Disability Act for missing alt text.",
	},
	{
		Title:    "Input Validation",
		Category: catalog.CategorySecurityInput,
		Verdict:  "Negligence: data breach via input validation flaw.",
	},
	{
		Title:    "Transform",
		Category: catalog.CategoryAuth,
		Verdict:  "Business failure: essential feature missed under deadline.",
	},
}

// MetaFor returns the verdict metadata for a stage index. Out-of-range
// indexes clamp to the last stage.
func MetaFor(step int) StageMeta {
	if step < 0 {
		step = 0
	}
	if step >= NumStages {
		step = NumStages - 1
	}
	return stageMeta[step]
}

// Options configures a Panel. VerdictFunc and WinFunc must not call back
// into the panel synchronously.
type Options struct {
	// StageDuration overrides the per-stage window. Zero means default.
	StageDuration time.Duration

	// VerdictFunc is invoked once when a stage deadline expires.
	VerdictFunc func(category catalog.Category, verdict string)

	// WinFunc is invoked once when all stages complete.
	WinFunc func()

	// Now overrides the wall clock for tests. Nil means time.Now.
	Now func() time.Time

	Logger *zap.Logger
}

// Panel is the coding-task state machine. All countdown values are derived
// from the stage start timestamp, never stored as decrementing counters, so
// they self-correct across skipped ticks.
type Panel struct {
	mu sync.Mutex

	log           *zap.Logger
	now           func() time.Time
	stageDuration time.Duration
	verdictFunc   func(category catalog.Category, verdict string)
	winFunc       func()

	started       bool
	step          int
	stepStartedAt time.Time
	deadlineTimer *time.Timer
	fired         bool
	winNotified   bool

	// Editable stage buffers.
	htmlBuf  string
	username string
	password string
	sequence string
}

// NewPanel creates a Panel in the not-started state.
func NewPanel(opts Options) *Panel {
	dur := opts.StageDuration
	if dur <= 0 {
		dur = DefaultStageDuration
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Panel{
		log:           log,
		now:           now,
		stageDuration: dur,
		verdictFunc:   opts.VerdictFunc,
		winFunc:       opts.WinFunc,
		htmlBuf:       DefaultHTMLBuffer,
	}
}

// Start arms the current stage's deadline window. Starting an already
// started panel is a no-op.
func (p *Panel) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.armStageLocked()
}

// Stop cancels the stage deadline. Safe to call repeatedly.
func (p *Panel) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = false
	p.cancelTimerLocked()
	p.stepStartedAt = time.Time{}
}

// Reset restores the panel to its initial state: stage 0, default buffers,
// win signal re-armed. The panel is left stopped.
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = false
	p.cancelTimerLocked()
	p.step = 0
	p.stepStartedAt = time.Time{}
	p.fired = false
	p.winNotified = false
	p.htmlBuf = DefaultHTMLBuffer
	p.username = ""
	p.password = ""
	p.sequence = ""
}

// SetHTML replaces the stage-1 buffer.
func (p *Panel) SetHTML(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.htmlBuf = s
}

// SetCredentials replaces the stage-2 buffers.
func (p *Panel) SetCredentials(username, password string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.username = username
	p.password = password
}

// SetSequence replaces the stage-3 buffer.
func (p *Panel) SetSequence(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sequence = s
}

// HTML returns the stage-1 buffer.
func (p *Panel) HTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.htmlBuf
}

// Credentials returns the stage-2 buffers.
func (p *Panel) Credentials() (username, password string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.username, p.password
}

// Sequence returns the stage-3 buffer.
func (p *Panel) Sequence() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sequence
}

// Step returns the current stage index (NumStages when done).
func (p *Panel) Step() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.step
}

// Done reports whether all stages are complete.
func (p *Panel) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.step >= NumStages
}

// StagePassed evaluates the current stage's predicate against the buffers.
// Pass/fail is never stored; it is recomputed on every call.
func (p *Panel) StagePassed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stagePassedLocked()
}

func (p *Panel) stagePassedLocked() bool {
	switch p.step {
	case 0:
		return CheckAltText(p.htmlBuf)
	case 1:
		return CheckCredentials(p.username, p.password)
	case 2:
		return CheckSequence(p.sequence)
	default:
		return false
	}
}

// Advance moves to the next stage if the current predicate passes. Returns
// true when the step changed. Reaching the final step fires the win signal
// exactly once and stops the deadline; the win callback runs outside the
// panel lock.
func (p *Panel) Advance() bool {
	p.mu.Lock()
	if !p.started || p.step >= NumStages || !p.stagePassedLocked() {
		p.mu.Unlock()
		return false
	}

	p.step++
	p.fired = false
	p.log.Debug("coding stage advanced", zap.Int("step", p.step))

	var notifyWin bool
	if p.step >= NumStages {
		p.cancelTimerLocked()
		p.stepStartedAt = time.Time{}
		if !p.winNotified {
			p.winNotified = true
			notifyWin = true
		}
	} else {
		p.armStageLocked()
	}
	winFunc := p.winFunc
	p.mu.Unlock()

	if notifyWin && winFunc != nil {
		winFunc()
	}
	return true
}

// Remaining returns the seconds left in the current stage window, clamped to
// [0, stage duration] and derived from the stage start timestamp.
func (p *Panel) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := int(p.stageDuration / time.Second)
	if !p.started || p.step >= NumStages || p.stepStartedAt.IsZero() {
		return total
	}
	elapsed := int(p.now().Sub(p.stepStartedAt) / time.Second)
	left := total - elapsed
	if left < 0 {
		return 0
	}
	if left > total {
		return total
	}
	return left
}

// armStageLocked (re)starts the deadline window for the current stage.
func (p *Panel) armStageLocked() {
	p.cancelTimerLocked()
	p.stepStartedAt = p.now()
	p.fired = false
	p.deadlineTimer = time.AfterFunc(p.stageDuration, p.expireStage)
}

func (p *Panel) cancelTimerLocked() {
	if p.deadlineTimer != nil {
		p.deadlineTimer.Stop()
		p.deadlineTimer = nil
	}
}

// expireStage is the deadline callback. It re-checks the wall clock so a
// stale timer (stage already advanced or panel stopped) cannot fire a
// verdict, and guarantees at most one verdict per stage window.
func (p *Panel) expireStage() {
	p.mu.Lock()
	if !p.started || p.step >= NumStages || p.fired {
		p.mu.Unlock()
		return
	}
	if p.stepStartedAt.IsZero() || p.now().Sub(p.stepStartedAt) < p.stageDuration {
		p.mu.Unlock()
		return
	}
	p.fired = true
	meta := MetaFor(p.step)
	verdictFunc := p.verdictFunc
	p.log.Info("coding stage expired",
		zap.Int("step", p.step),
		zap.String("category", string(meta.Category)))
	p.mu.Unlock()

	if verdictFunc != nil {
		verdictFunc(meta.Category, meta.Verdict)
	}
}
