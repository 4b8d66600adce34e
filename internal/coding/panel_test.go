package coding

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtsim/internal/catalog"
)

// fakeClock provides a controllable now func for deadline tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type verdictRecorder struct {
	mu       sync.Mutex
	count    int
	category catalog.Category
	verdict  string
}

func (r *verdictRecorder) record(category catalog.Category, verdict string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	r.category = category
	r.verdict = verdict
}

func (r *verdictRecorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func TestPanel_CompleteAllStages(t *testing.T) {
	clock := newFakeClock()
	wins := 0
	rec := &verdictRecorder{}
	p := NewPanel(Options{
		Now:         clock.Now,
		VerdictFunc: rec.record,
		WinFunc:     func() { wins++ },
	})
	defer p.Stop()

	p.Start()
	require.Equal(t, 0, p.Step())

	// Stage 1: default buffer fails, fixed buffer passes.
	assert.False(t, p.StagePassed())
	assert.False(t, p.Advance())
	p.SetHTML(`<img id="img1" src="/images/example.png" alt="example">`)
	require.True(t, p.StagePassed())
	require.True(t, p.Advance())
	require.Equal(t, 1, p.Step())

	// Stage 2.
	p.SetCredentials("student", "hunter2")
	require.True(t, p.Advance())
	require.Equal(t, 2, p.Step())

	// Stage 3.
	p.SetSequence(fullSequence())
	require.True(t, p.Advance())

	assert.True(t, p.Done())
	assert.Equal(t, 1, wins)
	assert.Zero(t, rec.calls())
}

func TestPanel_WinFiresOnce(t *testing.T) {
	clock := newFakeClock()
	wins := 0
	p := NewPanel(Options{Now: clock.Now, WinFunc: func() { wins++ }})
	defer p.Stop()

	p.Start()
	p.SetHTML(`<img id="img1" alt="a">`)
	require.True(t, p.Advance())
	p.SetCredentials("u", "p")
	require.True(t, p.Advance())
	p.SetSequence(fullSequence())
	require.True(t, p.Advance())

	// Re-evaluation after completion never re-fires the signal.
	assert.False(t, p.Advance())
	assert.False(t, p.Advance())
	assert.Equal(t, 1, wins)
}

func TestPanel_StageTimeoutFiresVerdict(t *testing.T) {
	clock := newFakeClock()
	rec := &verdictRecorder{}
	p := NewPanel(Options{Now: clock.Now, VerdictFunc: rec.record})
	defer p.Stop()

	p.Start()
	clock.Advance(DefaultStageDuration)
	p.expireStage()

	require.Equal(t, 1, rec.calls())
	assert.Equal(t, catalog.CategoryAccessibility, rec.category)
	assert.Equal(t, MetaFor(0).Verdict, rec.verdict)

	// A second expiry of the same window is a no-op.
	p.expireStage()
	assert.Equal(t, 1, rec.calls())
}

func TestPanel_StaleTimerDoesNotFire(t *testing.T) {
	clock := newFakeClock()
	rec := &verdictRecorder{}
	p := NewPanel(Options{Now: clock.Now, VerdictFunc: rec.record})
	defer p.Stop()

	p.Start()
	// The deadline has not actually elapsed on the injected clock.
	p.expireStage()
	assert.Zero(t, rec.calls())

	// Advancing re-arms the window; the old window's expiry is void.
	p.SetHTML(`<img id="img1" alt="a">`)
	require.True(t, p.Advance())
	clock.Advance(30 * time.Second)
	p.expireStage()
	assert.Zero(t, rec.calls())
}

func TestPanel_TimeoutOnLaterStage(t *testing.T) {
	clock := newFakeClock()
	rec := &verdictRecorder{}
	p := NewPanel(Options{Now: clock.Now, VerdictFunc: rec.record})
	defer p.Stop()

	p.Start()
	p.SetHTML(`<img id="img1" alt="a">`)
	require.True(t, p.Advance())
	p.SetCredentials("u", "p")
	require.True(t, p.Advance())
	require.Equal(t, 2, p.Step())

	clock.Advance(DefaultStageDuration + time.Second)
	p.expireStage()

	require.Equal(t, 1, rec.calls())
	assert.Equal(t, catalog.CategoryAuth, rec.category)
}

func TestPanel_RemainingClampedAndDerived(t *testing.T) {
	clock := newFakeClock()
	p := NewPanel(Options{Now: clock.Now})
	defer p.Stop()

	// Not started: full window.
	assert.Equal(t, 60, p.Remaining())

	p.Start()
	assert.Equal(t, 60, p.Remaining())

	clock.Advance(13 * time.Second)
	assert.Equal(t, 47, p.Remaining())

	// Simulated long suspension: remaining self-corrects, clamped at zero.
	clock.Advance(10 * time.Minute)
	assert.Equal(t, 0, p.Remaining())
}

func TestPanel_RemainingNonIncreasing(t *testing.T) {
	clock := newFakeClock()
	p := NewPanel(Options{Now: clock.Now})
	defer p.Stop()
	p.Start()

	prev := p.Remaining()
	for i := 0; i < 70; i++ {
		clock.Advance(time.Second)
		cur := p.Remaining()
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0)
		prev = cur
	}
	assert.Equal(t, 0, prev)
}

func TestPanel_StopIdempotent(t *testing.T) {
	p := NewPanel(Options{})
	p.Start()
	p.Stop()
	p.Stop()
	p.Stop()
}

func TestPanel_ResetRestoresInitialState(t *testing.T) {
	clock := newFakeClock()
	wins := 0
	p := NewPanel(Options{Now: clock.Now, WinFunc: func() { wins++ }})
	defer p.Stop()

	p.Start()
	p.SetHTML(`<img id="img1" alt="a">`)
	require.True(t, p.Advance())
	p.SetCredentials("u", "p")
	require.True(t, p.Advance())
	p.SetSequence(fullSequence())
	require.True(t, p.Advance())
	require.Equal(t, 1, wins)

	p.Reset()
	assert.Equal(t, 0, p.Step())
	assert.False(t, p.Done())
	assert.Equal(t, DefaultHTMLBuffer, p.HTML())
	u, pw := p.Credentials()
	assert.Empty(t, u)
	assert.Empty(t, pw)
	assert.Empty(t, p.Sequence())

	// A fresh run can win again.
	p.Start()
	p.SetHTML(`<img id="img1" alt="a">`)
	require.True(t, p.Advance())
	p.SetCredentials("u", "p")
	require.True(t, p.Advance())
	p.SetSequence(fullSequence())
	require.True(t, p.Advance())
	assert.Equal(t, 2, wins)
}

func TestPanel_AdvanceRequiresStart(t *testing.T) {
	p := NewPanel(Options{})
	p.SetHTML(`<img id="img1" alt="a">`)
	assert.False(t, p.Advance())
}
