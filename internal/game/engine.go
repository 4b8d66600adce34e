// Package game implements the courtroom run: the global run clock, the alert
// queue (FIFO backlog feeding a LIFO surfaced stack), the critical penalty
// window, and the one-shot verdict trigger. All mutable state lives behind a
// single mutex; timer callbacks re-check the injected clock before acting so
// a stale firing can never produce an outcome.
package game

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"courtsim/internal/catalog"
	"courtsim/internal/handoff"
	"courtsim/internal/progress"
)

// DefaultRunDuration is the full length of a run.
const DefaultRunDuration = 40 * time.Minute

// DefaultNavigateDelay is how long the verdict cue lingers before the
// transition to the verdict screen.
const DefaultNavigateDelay = time.Second

// progressTimeout bounds the fire-and-forget progress write after a run ends.
const progressTimeout = 5 * time.Second

// Action is a player response to the top surfaced alert.
type Action int

const (
	ActionFix Action = iota
	ActionSnooze
	ActionIgnore
)

func (a Action) String() string {
	switch a {
	case ActionFix:
		return "fix"
	case ActionSnooze:
		return "snooze"
	case ActionIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// Options configures an Engine.
type Options struct {
	// Tasks is the base alert catalog. Nil means catalog.Tasks().
	Tasks []catalog.Task

	// Bias reorders the catalog and may override cadence and grace.
	Bias *catalog.Bias

	// RunDuration overrides the run length. Zero means DefaultRunDuration.
	RunDuration time.Duration

	// AlertCadence is the base surfacing interval before any bias override.
	// Zero means catalog.DefaultAlertCadence.
	AlertCadence time.Duration

	// CriticalGrace is the base penalty window before any bias override.
	// Zero means catalog.DefaultCriticalGrace.
	CriticalGrace time.Duration

	// NavigateDelay is the pause between the verdict firing and navigation.
	// Zero means DefaultNavigateDelay; negative means navigate immediately.
	NavigateDelay time.Duration

	Navigator Navigator
	Handoff   handoff.Channel
	Progress  progress.Creator
	Cue       Cue

	// Output, when set, receives a published snapshot of each finished run.
	Output progress.OutputCreator

	// OutputHTML supplies the HTML buffer included in the published output.
	OutputHTML func() string

	// OnUpdate, if set, is called after every state change so the UI can
	// redraw. It runs outside the engine lock and must not block.
	OnUpdate func()

	// Now overrides the wall clock for tests. Nil means time.Now.
	Now func() time.Time

	Logger *zap.Logger
}

// Engine drives one run of the simulation.
type Engine struct {
	mu sync.Mutex
	wg sync.WaitGroup

	log      *zap.Logger
	now      func() time.Time
	onUpdate func()

	tasks         []catalog.Task
	bias          *catalog.Bias
	runDuration   time.Duration
	baseCadence   time.Duration
	baseGrace     time.Duration
	cadence       time.Duration
	grace         time.Duration
	navigateDelay time.Duration

	navigator  Navigator
	handoff    handoff.Channel
	progress   progress.Creator
	cue        Cue
	output     progress.OutputCreator
	outputHTML func() string

	started   bool
	navigated bool
	won       bool
	closed    bool
	startedAt time.Time

	secondsLeft int
	tickCount   uint64

	backlog  []catalog.Task
	surfaced []catalog.Task

	penalty      *penaltyWindow
	penaltyTimer *time.Timer

	runTicker     *time.Ticker
	cadenceTicker *time.Ticker
	stopCh        chan struct{}
	navTimer      *time.Timer
}

// NewEngine creates an engine in the not-started state. The alert backlog is
// built by reordering the catalog under the scenario bias.
func NewEngine(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tasks := opts.Tasks
	if tasks == nil {
		tasks = catalog.Tasks()
	}
	runDur := opts.RunDuration
	if runDur <= 0 {
		runDur = DefaultRunDuration
	}
	navDelay := opts.NavigateDelay
	if navDelay == 0 {
		navDelay = DefaultNavigateDelay
	}

	e := &Engine{
		log:           log,
		now:           now,
		onUpdate:      opts.OnUpdate,
		tasks:         tasks,
		runDuration:   runDur,
		baseCadence:   opts.AlertCadence,
		baseGrace:     opts.CriticalGrace,
		navigateDelay: navDelay,
		navigator:     opts.Navigator,
		handoff:       opts.Handoff,
		progress:      opts.Progress,
		cue:           opts.Cue,
		output:        opts.Output,
		outputHTML:    opts.OutputHTML,
		secondsLeft:   int(runDur / time.Second),
	}
	e.applyBiasLocked(opts.Bias)
	e.backlog = catalog.Reorder(e.tasks, e.bias)
	return e
}

// applyBiasLocked resolves the effective cadence and grace: the bias override
// wins, then the configured base, then the catalog default. The base values
// persist across bias switches so a scenario without overrides never clobbers
// configured timing.
func (e *Engine) applyBiasLocked(bias *catalog.Bias) {
	e.bias = bias

	cadence := bias.AlertCadence()
	if bias == nil || bias.AlertCadenceMs <= 0 {
		if e.baseCadence > 0 {
			cadence = e.baseCadence
		}
	}
	grace := bias.CriticalGrace()
	if bias == nil || bias.CriticalGraceMs <= 0 {
		if e.baseGrace > 0 {
			grace = e.baseGrace
		}
	}
	e.cadence = cadence
	e.grace = grace
}

// ApplyBias switches the scenario bias. The backlog is rebuilt only when the
// run has not started; on a live run the new cadence takes effect by
// resetting the surfacing interval.
func (e *Engine) ApplyBias(bias *catalog.Bias) {
	e.mu.Lock()
	defer e.mu.Unlock()

	oldCadence := e.cadence
	e.applyBiasLocked(bias)
	if !e.started {
		e.backlog = catalog.Reorder(e.tasks, e.bias)
		return
	}
	if e.cadenceTicker != nil && e.cadence != oldCadence {
		e.cadenceTicker.Reset(e.cadence)
		e.log.Debug("alert cadence changed",
			zap.Duration("cadence", e.cadence))
	}
}

// Start begins the run clock and the alert cadence. Starting a running or
// finished engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.navigated || e.won || e.closed {
		return
	}
	e.started = true
	e.startedAt = e.now()

	e.stopCh = make(chan struct{})
	e.runTicker = time.NewTicker(time.Second)
	e.cadenceTicker = time.NewTicker(e.cadence)
	go e.runLoop(e.stopCh, e.runTicker)
	go e.cadenceLoop(e.stopCh, e.cadenceTicker)

	e.log.Info("run started",
		zap.Duration("runDuration", e.runDuration),
		zap.Duration("cadence", e.cadence),
		zap.Duration("grace", e.grace))
}

// Close tears the engine down: every outstanding timer is cancelled,
// including a pending navigation. Safe to call repeatedly.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.stopTimersLocked()
	if e.navTimer != nil {
		e.navTimer.Stop()
		e.navTimer = nil
	}
	e.mu.Unlock()
	e.wg.Wait()
}

// Restart resets the engine to a fresh run: full clock, rebuilt backlog,
// cleared stack and penalty, verdict latch re-armed. The engine is left
// stopped.
func (e *Engine) Restart() {
	e.mu.Lock()
	e.stopTimersLocked()
	if e.navTimer != nil {
		e.navTimer.Stop()
		e.navTimer = nil
	}
	e.navigated = false
	e.won = false
	e.startedAt = time.Time{}
	e.secondsLeft = int(e.runDuration / time.Second)
	e.tickCount = 0
	e.backlog = catalog.Reorder(e.tasks, e.bias)
	e.surfaced = nil
	e.mu.Unlock()
	e.notifyUpdate()
}

// stopTimersLocked freezes the run: clock, cadence and penalty timers are all
// cancelled. Idempotent. The navigation timer is left alone so a fired
// verdict still completes its transition.
func (e *Engine) stopTimersLocked() {
	e.started = false
	if e.stopCh != nil {
		close(e.stopCh)
		e.stopCh = nil
	}
	if e.runTicker != nil {
		e.runTicker.Stop()
		e.runTicker = nil
	}
	if e.cadenceTicker != nil {
		e.cadenceTicker.Stop()
		e.cadenceTicker = nil
	}
	e.cancelPenaltyLocked()
}

func (e *Engine) cancelPenaltyLocked() {
	if e.penaltyTimer != nil {
		e.penaltyTimer.Stop()
		e.penaltyTimer = nil
	}
	e.penalty = nil
}

func (e *Engine) runLoop(stop <-chan struct{}, ticker *time.Ticker) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

func (e *Engine) cadenceLoop(stop <-chan struct{}, ticker *time.Ticker) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.SurfaceNext()
		}
	}
}

// tick advances the run clock one second. The clock clamps at zero and keeps
// ticking; running out of time is not itself a loss.
func (e *Engine) tick() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.tickCount++
	if e.secondsLeft > 0 {
		e.secondsLeft--
	}
	e.mu.Unlock()
	e.notifyUpdate()
}

// SurfaceNext moves the oldest backlog task onto the surfaced stack. The
// first critical to surface while no penalty is armed arms the penalty
// window; later criticals surface without starting a second timer.
func (e *Engine) SurfaceNext() {
	e.mu.Lock()
	if !e.started || len(e.backlog) == 0 {
		e.mu.Unlock()
		return
	}
	task := e.backlog[0]
	e.backlog = e.backlog[1:]
	e.surfaced = append(e.surfaced, task)

	if task.Critical && e.penalty == nil {
		e.penalty = &penaltyWindow{
			taskID:   task.ID,
			category: task.Category,
			verdict:  task.Verdict,
			armedAt:  e.now(),
			grace:    e.grace,
		}
		e.penaltyTimer = time.AfterFunc(e.grace, e.penaltyExpired)
		e.log.Info("penalty armed",
			zap.String("task", task.ID),
			zap.Duration("grace", e.grace))
	}
	e.log.Debug("alert surfaced",
		zap.String("task", task.ID),
		zap.Bool("critical", task.Critical))
	e.mu.Unlock()
	e.notifyUpdate()
}

// penaltyExpired is the grace-window callback. It re-checks the injected
// clock so a cancelled-but-fired timer cannot trigger a verdict for a task
// that was already fixed.
func (e *Engine) penaltyExpired() {
	e.mu.Lock()
	if e.navigated || !e.started || e.penalty == nil {
		e.mu.Unlock()
		return
	}
	if !e.penalty.expired(e.now()) {
		e.mu.Unlock()
		return
	}
	v := e.penalty.descriptor()
	e.mu.Unlock()

	e.log.Info("penalty expired", zap.String("task", v.TaskID))
	e.TriggerVerdict(v)
}

// Resolve applies a player action to the top of the surfaced stack. With an
// empty stack or a finished run it is a no-op.
func (e *Engine) Resolve(action Action) {
	e.mu.Lock()
	if !e.started || e.navigated || len(e.surfaced) == 0 {
		e.mu.Unlock()
		return
	}
	top := e.surfaced[len(e.surfaced)-1]
	var verdict *Verdict

	switch action {
	case ActionFix:
		e.surfaced = e.surfaced[:len(e.surfaced)-1]
		if e.penalty != nil && e.penalty.taskID == top.ID {
			e.cancelPenaltyLocked()
			e.log.Info("penalty cleared", zap.String("task", top.ID))
		}
	case ActionSnooze:
		if top.Critical {
			// Criticals cannot be deferred.
			e.log.Debug("snooze ignored on critical", zap.String("task", top.ID))
		} else {
			e.surfaced = e.surfaced[:len(e.surfaced)-1]
			e.backlog = append(e.backlog, top)
		}
	case ActionIgnore:
		if top.Critical {
			// The alert stays on the stack; the verdict carries the armed
			// penalty's descriptor when one is active.
			if e.penalty != nil {
				v := e.penalty.descriptor()
				verdict = &v
			} else {
				verdict = &Verdict{TaskID: top.ID, Category: top.Category, Text: top.Verdict}
			}
		} else {
			e.surfaced = e.surfaced[:len(e.surfaced)-1]
		}
	}
	e.log.Debug("alert resolved",
		zap.String("task", top.ID),
		zap.Stringer("action", action))
	e.mu.Unlock()

	if verdict != nil {
		e.TriggerVerdict(*verdict)
	}
	e.notifyUpdate()
}

// Win ends the run in the player's favor: every game timer stops and no
// verdict can fire afterwards. Wired as the coding panel's win callback.
func (e *Engine) Win() {
	e.mu.Lock()
	if e.navigated || e.won {
		e.mu.Unlock()
		return
	}
	e.won = true
	elapsed := e.now().Sub(e.startedAt)
	e.stopTimersLocked()
	e.mu.Unlock()

	e.log.Info("run won", zap.Duration("elapsed", elapsed))
	e.recordOutcome("win", "")
	e.notifyUpdate()
}

// TriggerVerdict ends the run in a loss. The navigated latch is checked and
// set under the lock, so exactly one caller proceeds no matter how many
// expirations race; everything after the latch runs at most once.
func (e *Engine) TriggerVerdict(v Verdict) {
	e.mu.Lock()
	if e.navigated {
		e.mu.Unlock()
		return
	}
	e.navigated = true
	e.stopTimersLocked()
	delay := e.navigateDelay
	e.mu.Unlock()

	e.log.Info("verdict triggered",
		zap.String("task", v.TaskID),
		zap.String("category", string(v.Category)))

	if e.handoff != nil {
		e.handoff.Put(handoff.Descriptor{
			TaskID:   v.TaskID,
			Category: string(v.Category),
			Verdict:  v.Text,
		})
	}
	e.recordOutcome(string(v.Category), v.Text)

	if e.cue != nil {
		if err := e.cue.Play(); err != nil {
			e.log.Warn("verdict cue failed", zap.Error(err))
		}
	}

	nav := func() {
		if e.navigator != nil {
			e.navigator.Navigate(v)
		}
		e.notifyUpdate()
	}
	if delay < 0 {
		nav()
		return
	}
	e.mu.Lock()
	// A Close that interleaved since the latch was taken wins: teardown must
	// leave no timer behind.
	if !e.closed {
		e.navTimer = time.AfterFunc(delay, nav)
	}
	e.mu.Unlock()
	e.notifyUpdate()
}

// recordOutcome writes the run result to the progress service and publishes
// an output snapshot, both without blocking the transition. Failures are
// logged and swallowed.
func (e *Engine) recordOutcome(category, notes string) {
	if e.progress == nil && e.output == nil {
		return
	}
	e.mu.Lock()
	startedAt := e.startedAt
	secondsLeft := e.secondsLeft
	won := e.won
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), progressTimeout)
		defer cancel()

		if e.progress != nil {
			_, err := e.progress.CreateProgress(ctx, progress.Record{
				StartedAt:       startedAt,
				FinishedAt:      e.now(),
				VerdictCategory: category,
				Notes:           notes,
			})
			if err != nil {
				e.log.Warn("progress write failed", zap.Error(err))
			}
		}
		if e.output != nil {
			e.publishOutput(ctx, category, notes, won, secondsLeft)
		}
	}()
}

// publishOutput posts the run's final HTML buffer and a JSON summary to the
// output endpoint.
func (e *Engine) publishOutput(ctx context.Context, category, notes string, won bool, secondsLeft int) {
	summary, err := json.Marshal(struct {
		Won             bool   `json:"won"`
		VerdictCategory string `json:"verdictCategory,omitempty"`
		Notes           string `json:"notes,omitempty"`
		SecondsLeft     int    `json:"secondsLeft"`
	}{
		Won:             won,
		VerdictCategory: category,
		Notes:           notes,
		SecondsLeft:     secondsLeft,
	})
	if err != nil {
		e.log.Warn("output summary encoding failed", zap.Error(err))
		return
	}

	var html string
	if e.outputHTML != nil {
		html = e.outputHTML()
	}
	if _, err := e.output.CreateOutput(ctx, progress.OutputRecord{
		HTML:        html,
		SummaryJSON: string(summary),
	}); err != nil {
		e.log.Warn("output publish failed", zap.Error(err))
	}
}

func (e *Engine) notifyUpdate() {
	if e.onUpdate != nil {
		e.onUpdate()
	}
}
