package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/angas/agilewatch/slots"
	"github.com/angas/agilewatch/types"
)

// DisplaySink receives the title and scroll side effects of the loop.
type DisplaySink interface {
	SetTitle(label string)
	ScrollToSlot(key string)
}

type SeriesSource interface {
	Series() (types.PriceSeries, bool)
}

type State int

const (
	StateIdle State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

type Option func(*Loop)

func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(l *Loop) { l.loc = loc }
}

// Loop re-resolves the current slot on a fixed interval and applies the
// title and scroll side effects when the label changes.
type Loop struct {
	source   SeriesSource
	sink     DisplaySink
	interval time.Duration
	now      func() time.Time
	loc      *time.Location
	logger   *slog.Logger

	lifecycle sync.Mutex
	state     State
	cancel    context.CancelFunc
	done      chan struct{}

	mu          sync.Mutex
	lastLabel   string
	lastState   slots.ResolvedState
	forceNotify bool
	subscribers []func(slots.ResolvedState)
}

func NewLoop(source SeriesSource, sink DisplaySink, interval time.Duration, opts ...Option) *Loop {
	l := &Loop{
		source:   source,
		sink:     sink,
		interval: interval,
		now:      time.Now,
		loc:      time.Local,
		logger:   slog.Default().With("module", "refresh"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OnResolved registers fn to be called with every resolved state that differs
// from the previous one, and with the first state after each Start. fn runs on
// the loop goroutine and must not call Stop or Restart.
func (l *Loop) OnResolved(fn func(slots.ResolvedState)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

func (l *Loop) State() State {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()
	return l.state
}

// Start resolves once immediately and then on every interval until Stop or
// until ctx is done. Starting an active loop does nothing.
func (l *Loop) Start(ctx context.Context) {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()
	l.start(ctx)
}

func (l *Loop) start(ctx context.Context) {
	if l.state == StateActive {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done
	l.state = StateActive

	l.mu.Lock()
	l.forceNotify = true
	l.mu.Unlock()

	go l.run(ctx, done)
	l.logger.Debug("refresh loop started", slog.Duration("interval", l.interval))
}

// Stop cancels the ticker and returns once the loop goroutine has exited, so
// no tick runs after Stop returns.
func (l *Loop) Stop() {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()
	l.stop()
}

func (l *Loop) stop() {
	if l.state == StateIdle {
		return
	}
	l.cancel()
	<-l.done
	l.cancel = nil
	l.done = nil
	l.state = StateIdle
	l.logger.Debug("refresh loop stopped")
}

// Restart is used when the data source changed. The last applied label is kept.
func (l *Loop) Restart(ctx context.Context) {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()
	l.stop()
	l.start(ctx)
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// a stop may race with the ticker, check again before side effects
			if ctx.Err() != nil {
				return
			}
			l.tick()
		}
	}
}

func (l *Loop) tick() {
	series, ok := l.source.Series()
	if !ok {
		ticksTotal.WithLabelValues("no_series").Inc()
		return
	}

	state := slots.Resolve(series, l.now())

	l.mu.Lock()
	notify := l.forceNotify || !l.lastState.Equal(state)
	l.forceNotify = false
	l.lastState = state
	subscribers := append([]func(slots.ResolvedState){}, l.subscribers...)

	label, key, changed := "", "", false
	if current, ok := state.CurrentSlot.Get(); ok {
		label = slots.Label(current, l.loc)
		key = current.Key()
		if label != l.lastLabel {
			l.lastLabel = label
			changed = true
		}
	}
	l.mu.Unlock()

	if changed {
		titleChangesTotal.Inc()
		l.logger.Debug("current price changed", slog.String("label", label))
		l.sink.SetTitle(label)
		l.sink.ScrollToSlot(key)
	}

	if notify {
		for _, fn := range subscribers {
			fn(state)
		}
	}

	if state.CurrentSlot.IsValid() {
		ticksTotal.WithLabelValues("resolved").Inc()
	} else {
		ticksTotal.WithLabelValues("no_current").Inc()
	}
}

// LastLabel returns the most recently applied title, empty before the first one.
func (l *Loop) LastLabel() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastLabel
}
