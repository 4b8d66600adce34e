// Package tui renders the courtroom run in the terminal: scenario selection,
// the run screen (clock, alert dialog, coding panel), and the verdict and win
// screens. Input is raw-mode keyboard; the engine nudges redraws through
// Nudge.
package tui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"courtsim/internal/catalog"
	"courtsim/internal/coding"
	"courtsim/internal/game"
	"courtsim/internal/handoff"
)

// View represents the current screen.
type View int

const (
	ViewScenarios View = iota
	ViewGame
	ViewVerdict
	ViewWin
)

// String returns the string representation of the view.
func (v View) String() string {
	switch v {
	case ViewScenarios:
		return "scenarios"
	case ViewGame:
		return "game"
	case ViewVerdict:
		return "verdict"
	case ViewWin:
		return "win"
	default:
		return "unknown"
	}
}

// redrawInterval drives countdown repaints between engine nudges.
const redrawInterval = 500 * time.Millisecond

// AppConfig wires the App to the game.
type AppConfig struct {
	Out       io.Writer
	Engine    *game.Engine
	Panel     *coding.Panel
	Handoff   handoff.Channel
	Scenarios []catalog.ScenarioOption

	// InitialScenario preselects a scenario by id on the selection screen.
	InitialScenario string

	Logger *zap.Logger
}

// App is the interactive terminal front end for a run.
type App struct {
	terminal *Terminal
	out      io.Writer
	log      *zap.Logger

	engine    *game.Engine
	panel     *coding.Panel
	handoff   handoff.Channel
	scenarios []catalog.ScenarioOption

	mu       sync.Mutex
	view     View
	selected int
	editors  []*LineEditor
	focus    int
	verdict  handoff.Descriptor
	width    int
	height   int
	running  bool

	updateCh chan struct{}
}

// NewApp creates an App on the scenario selection screen.
func NewApp(cfg AppConfig) *App {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		terminal:  NewTerminal(cfg.Out),
		out:       cfg.Out,
		log:       log,
		engine:    cfg.Engine,
		panel:     cfg.Panel,
		handoff:   cfg.Handoff,
		scenarios: cfg.Scenarios,
		view:      ViewScenarios,
		width:     80,
		height:    24,
		updateCh:  make(chan struct{}, 1),
	}
	for i, opt := range a.scenarios {
		if opt.ID == cfg.InitialScenario {
			a.selected = i
			break
		}
	}
	a.rebuildEditorsLocked()
	return a
}

// Nudge requests a redraw. Safe from any goroutine; coalesces bursts.
func (a *App) Nudge() {
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

// Navigate implements game.Navigator: the engine calls it once when the
// verdict transition fires.
func (a *App) Navigate(v game.Verdict) {
	d, ok := a.handoff.Take()
	if !ok {
		d = handoff.Descriptor{TaskID: v.TaskID, Category: string(v.Category), Verdict: v.Text}
	}
	a.panel.Stop()

	a.mu.Lock()
	a.verdict = d
	a.view = ViewVerdict
	a.mu.Unlock()

	a.log.Info("showing verdict screen", zap.String("task", d.TaskID))
	a.Nudge()
}

// ShowWin switches to the victory screen. Wired as the panel's win callback
// alongside the engine's Win.
func (a *App) ShowWin() {
	a.mu.Lock()
	a.view = ViewWin
	a.mu.Unlock()
	a.Nudge()
}

// Run starts the event loop. It returns when the context is cancelled or the
// player quits.
func (a *App) Run(ctx context.Context) error {
	if err := a.terminal.EnterRaw(); err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer a.terminal.ExitRaw()
	defer a.terminal.ShowCursor()

	a.mu.Lock()
	a.running = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	keyCh := make(chan KeyEvent, 10)
	keyErr := make(chan error, 1)
	reader := NewKeyReader(a.terminal)
	go func() {
		for {
			ev, err := reader.ReadKey()
			if err != nil {
				keyErr <- err
				return
			}
			select {
			case keyCh <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	a.Update()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-keyErr:
			if err == io.EOF {
				return nil
			}
			return err
		case <-a.updateCh:
			a.Update()
		case <-ticker.C:
			a.Update()
		case ev := <-keyCh:
			if quit := a.handleKey(ev); quit {
				return nil
			}
			a.Update()
		}
	}
}

// Update redraws the current view.
func (a *App) Update() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}
	if w, h, err := a.terminal.Size(); err == nil {
		a.width, a.height = w, h
	}

	a.terminal.Clear()
	a.terminal.HideCursor()

	var lines []string
	switch a.view {
	case ViewScenarios:
		lines = RenderScenarios(a.scenarios, a.selected, a.width)
	case ViewGame:
		lines = RenderGame(a.gameViewLocked(), a.width)
	case ViewVerdict:
		lines = RenderVerdict(a.verdict, a.width)
	case ViewWin:
		lines = RenderWin(a.width)
	}
	for _, line := range lines {
		a.terminal.WriteLine(line)
	}
}

// gameViewLocked assembles the render model from the engine and panel.
func (a *App) gameViewLocked() GameView {
	step := a.panel.Step()
	meta := coding.MetaFor(step)

	labels := fieldLabels(step)
	values := make([]string, len(a.editors))
	for i, e := range a.editors {
		values[i] = e.Text()
	}

	return GameView{
		Snapshot:       a.engine.Snapshot(),
		Step:           step,
		StageCount:     coding.NumStages,
		StageTitle:     meta.Title,
		StageRemaining: a.panel.Remaining(),
		StageDone:      a.panel.Done(),
		FieldLabels:    labels,
		FieldValues:    values,
		FieldFocus:     a.focus,
	}
}

// handleKey routes a key press to the active view. Returns true to quit.
func (a *App) handleKey(ev KeyEvent) bool {
	a.mu.Lock()
	view := a.view
	a.mu.Unlock()

	switch view {
	case ViewScenarios:
		return a.handleScenarioKey(ev)
	case ViewGame:
		return a.handleGameKey(ev)
	case ViewVerdict, ViewWin:
		return a.handleEndKey(ev)
	}
	return false
}

func (a *App) handleScenarioKey(ev KeyEvent) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch ev.Key {
	case KeyUp:
		if a.selected > 0 {
			a.selected--
		}
	case KeyDown:
		if a.selected < len(a.scenarios)-1 {
			a.selected++
		}
	case KeyEnter:
		a.startRunLocked()
	case KeyCtrlC, KeyCtrlD:
		return true
	case KeyRune:
		switch {
		case ev.Rune == 'q' || ev.Rune == 'Q':
			return true
		case ev.Rune >= '1' && ev.Rune <= '9':
			idx := int(ev.Rune - '1')
			if idx < len(a.scenarios) {
				a.selected = idx
				a.startRunLocked()
			}
		}
	}
	return false
}

func (a *App) startRunLocked() {
	if len(a.scenarios) > 0 {
		opt := a.scenarios[a.selected]
		a.engine.ApplyBias(opt.Bias)
		a.log.Info("scenario selected", zap.String("scenario", opt.ID))
	}
	a.view = ViewGame
	a.focus = 0
	a.rebuildEditorsLocked()
	a.engine.Start()
	a.panel.Start()
}

func (a *App) handleGameKey(ev KeyEvent) bool {
	if ev.Key == KeyCtrlC || ev.Key == KeyCtrlD {
		return true
	}

	// A surfaced alert is modal: keys act on it, not the editor.
	snap := a.engine.Snapshot()
	if snap.Top != nil {
		switch ParseShortcut(ev) {
		case ShortcutFix:
			a.engine.Resolve(game.ActionFix)
		case ShortcutSnooze:
			a.engine.Resolve(game.ActionSnooze)
		case ShortcutIgnore:
			a.engine.Resolve(game.ActionIgnore)
		}
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if ev.Key == KeyTab && len(a.editors) > 1 {
		a.focus = (a.focus + 1) % len(a.editors)
		return false
	}
	if a.focus >= len(a.editors) {
		return false
	}
	if a.editors[a.focus].HandleKey(ev) {
		a.submitStageLocked()
	}
	return false
}

// submitStageLocked pushes the editor buffers into the panel and tries to
// advance. A successful advance rebuilds the editors for the next stage.
func (a *App) submitStageLocked() {
	switch a.panel.Step() {
	case 0:
		a.panel.SetHTML(a.editors[0].Text())
	case 1:
		a.panel.SetCredentials(a.editors[0].Text(), a.editors[1].Text())
	case 2:
		a.panel.SetSequence(a.editors[0].Text())
	}
	if a.panel.Advance() {
		a.focus = 0
		a.rebuildEditorsLocked()
	}
}

func (a *App) handleEndKey(ev KeyEvent) bool {
	switch ParseShortcut(ev) {
	case ShortcutQuit, ShortcutEscape:
		return true
	case ShortcutRestart:
		a.engine.Restart()
		a.panel.Reset()
		a.mu.Lock()
		a.view = ViewScenarios
		a.focus = 0
		a.verdict = handoff.Descriptor{}
		a.rebuildEditorsLocked()
		a.mu.Unlock()
	}
	return false
}

// fieldLabels returns the editable field names for a stage.
func fieldLabels(step int) []string {
	switch step {
	case 0:
		return []string{"html"}
	case 1:
		return []string{"user", "pass"}
	case 2:
		return []string{"csv"}
	default:
		return nil
	}
}

// rebuildEditorsLocked creates fresh editors for the current stage, seeding
// the HTML editor with the panel's buffer.
func (a *App) rebuildEditorsLocked() {
	labels := fieldLabels(a.panel.Step())
	a.editors = make([]*LineEditor, len(labels))
	for i := range a.editors {
		a.editors[i] = NewLineEditor()
	}
	if a.panel.Step() == 0 && len(a.editors) > 0 {
		a.editors[0].SetText(a.panel.HTML())
	}
}
