// Package connectivity tracks whether the sync server is reachable.
//
// A Monitor probes the server on its own goroutine at a fixed interval and
// caches the result. Callers read the cached state with IsOnline, force a
// probe with CheckNow, and register for online/offline transitions with
// Subscribe. The monitor starts in the offline state.
package connectivity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/secrimpo/internal/logging"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultTimeout  = 5 * time.Second
)

// Prober checks server reachability. Any error means unreachable.
type Prober interface {
	Ping(ctx context.Context) error
}

type Monitor struct {
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger

	// notifyMu orders state changes with their notifications.
	notifyMu sync.Mutex
	online   atomic.Bool

	subMu  sync.Mutex
	subs   map[int]func(online bool)
	nextID int

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a stopped monitor. Non-positive interval or timeout
// fall back to the defaults; a nil logger discards.
func NewMonitor(prober Prober, interval, timeout time.Duration, logger logging.Logger) *Monitor {
	if logger == nil {
		logger = logging.Discard()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Monitor{
		prober:   prober,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		subs:     make(map[int]func(bool)),
	}
}

// Start probes immediately and then every interval until Stop is called or
// ctx is done. Calling Start on a running monitor does nothing.
func (m *Monitor) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	go func() {
		defer close(done)
		m.run(ctx)
	}()
}

func (m *Monitor) run(ctx context.Context) {
	m.CheckNow(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CheckNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts periodic probing and waits for the probe goroutine to exit.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// IsOnline returns the cached state without probing.
func (m *Monitor) IsOnline() bool {
	return m.online.Load()
}

// CheckNow runs one probe bounded by the monitor timeout, updates the cached
// state and returns it. Probe errors are logged, never returned.
func (m *Monitor) CheckNow(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.prober.Ping(pctx)
	if err != nil {
		m.logger.Debug(ctx, "connectivity probe failed", "error", err)
	}

	online := err == nil
	m.update(ctx, online)
	return online
}

// NetworkUp is called when the host reports a network interface coming
// back up. It triggers an immediate probe.
func (m *Monitor) NetworkUp(ctx context.Context) {
	m.logger.Debug(ctx, "network interface up, probing server")
	m.CheckNow(ctx)
}

// Subscribe registers fn for online/offline transitions. fn runs on the
// probing goroutine and must not block or call CheckNow. The returned func
// unregisters it.
func (m *Monitor) Subscribe(fn func(online bool)) (cancel func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

// update is the single place the cached state changes. Subscribers are
// only told about transitions, in the order the state changed.
func (m *Monitor) update(ctx context.Context, online bool) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	if m.online.Swap(online) == online {
		return
	}

	if online {
		m.logger.Info(ctx, "sync server reachable")
	} else {
		m.logger.Info(ctx, "sync server unreachable")
	}

	m.subMu.Lock()
	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subMu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
}
