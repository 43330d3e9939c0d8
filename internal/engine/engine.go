// Package engine drives the reconciliation loop keeping the slskd
// listen port aligned with the port gluetun has forwarded.
//
// The engine is a single-goroutine state machine; the intended
// transitions per tick:
//
//	starting -> checking            (after seeding the baseline port)
//	checking -> syncing             (forwarded port present, tunnel up, port differs)
//	checking -> idle                (port unchanged, absent, or tunnel down)
//	syncing  -> idle                (set + reconnect both succeeded)
//	syncing  -> degraded            (either step failed; baseline unchanged)
//	checking -> degraded            (provider query failed)
//	degraded -> checking            (next tick retries at the fixed interval)
//
// Every tick ends with a health publication regardless of the state
// reached. Errors never escape a tick; only context cancellation stops
// the loop.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/slsksticky/slsksticky/internal/gluetun"
	"github.com/slsksticky/slsksticky/internal/health"
	"github.com/slsksticky/slsksticky/internal/pkg/logger"
	"github.com/slsksticky/slsksticky/internal/slskd"
)

// State is the engine lifecycle state
type State string

const (
	StateStarting State = "starting"
	StateChecking State = "checking"
	StateSyncing  State = "syncing"
	StateIdle     State = "idle"
	StateDegraded State = "degraded"
)

// PortProvider answers forwarded-port and tunnel queries
type PortProvider interface {
	ForwardedPort(ctx context.Context) (int, error)
	TunnelStatus(ctx context.Context) (gluetun.TunnelStatus, error)
}

// Target is the daemon whose listen port tracks the forwarded port
type Target interface {
	ListenPort(ctx context.Context) (int, error)
	SetListenPort(ctx context.Context, port int) error
	Reconnect(ctx context.Context) error
}

// Sink receives the health snapshot published after every tick
type Sink interface {
	Write(health.Snapshot) error
}

// Engine owns the polling loop and all synchronization state. Only the
// engine goroutine mutates its fields; concurrent consumers read the
// immutable snapshots it publishes.
type Engine struct {
	provider PortProvider
	target   Target
	state    *health.State
	sinks    []Sink
	log      *logger.Logger
	interval time.Duration
	now      func() time.Time

	machine       State
	seeded        bool
	lastKnownPort int // port last successfully synchronized; 0 = none
	forwardedPort int
	gluetunUp     bool
	slskdUp       bool
	tickErr       string // first error of the current tick; empty on a clean tick
	startedAt     time.Time
	lastChange    *time.Time
}

// New creates an engine. state receives the in-memory snapshot; sinks
// receive a copy of every published snapshot.
func New(provider PortProvider, target Target, state *health.State, interval time.Duration, log *logger.Logger, sinks ...Sink) *Engine {
	return &Engine{
		provider: provider,
		target:   target,
		state:    state,
		sinks:    sinks,
		log:      log.Component("engine"),
		interval: interval,
		now:      time.Now,
		machine:  StateStarting,
	}
}

// LastKnownPort returns the port last successfully synchronized, 0 if none
func (e *Engine) LastKnownPort() int {
	return e.lastKnownPort
}

// Machine returns the current lifecycle state
func (e *Engine) Machine() State {
	return e.machine
}

// Run executes the polling loop until ctx is cancelled. The first tick
// runs immediately; subsequent ticks fire at the fixed interval. A
// failed tick is retried on the next one; there is no backoff.
func (e *Engine) Run(ctx context.Context) {
	e.log.Info("starting reconciliation loop", "interval", e.interval)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		e.Tick(ctx)

		select {
		case <-ctx.Done():
			e.log.Info("reconciliation loop stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick runs one reconciliation cycle. Exposed for the one-shot check
// command and for tests; the loop in Run is its only concurrent caller.
func (e *Engine) Tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	e.tickErr = ""

	if !e.seeded {
		e.seed(ctx)
	}

	e.check(ctx)
	e.publish()
}

// seed establishes the synchronization baseline from the target's live
// configuration so a restart with nothing changed does not trigger a
// spurious reconnect. On failure the engine proceeds with no baseline.
func (e *Engine) seed(ctx context.Context) {
	e.seeded = true

	port, err := e.target.ListenPort(ctx)
	if err != nil {
		e.slskdUp = false
		e.fail("seeding baseline port", err)
		return
	}

	e.slskdUp = true
	e.lastKnownPort = port
	e.log.Info("seeded baseline from slskd configuration", "listen_port", port)
}

func (e *Engine) check(ctx context.Context) {
	e.transition(StateChecking)

	port, err := e.provider.ForwardedPort(ctx)
	if err != nil {
		e.gluetunUp = false
		e.fail("querying forwarded port", err)
		return
	}
	e.gluetunUp = true
	e.forwardedPort = port

	if port == 0 {
		// Forwarding not active; a valid state, not a fault
		e.log.Debug("no forwarded port advertised")
		e.settle()
		return
	}

	tunnel, err := e.provider.TunnelStatus(ctx)
	if err != nil {
		e.gluetunUp = false
		e.fail("querying tunnel status", err)
		return
	}
	if tunnel != gluetun.TunnelUp {
		e.log.Debug("tunnel not up, skipping sync", "tunnel", string(tunnel))
		e.settle()
		return
	}

	if port == e.lastKnownPort {
		e.settle()
		return
	}

	e.sync(ctx, port)
}

// sync drives the target through update-then-reconnect. The baseline
// advances only when both steps succeed, so a partial failure is
// retried with the same port on the next tick.
func (e *Engine) sync(ctx context.Context, port int) {
	e.transition(StateSyncing)
	e.log.Info("port change detected", "old", e.lastKnownPort, "new", port)

	if err := e.target.SetListenPort(ctx, port); err != nil {
		e.slskdUp = false
		e.fail("updating listen port", err)
		return
	}

	if err := e.target.Reconnect(ctx); err != nil {
		e.slskdUp = false
		e.fail("reconnecting after port update", err)
		return
	}

	e.slskdUp = true
	e.lastKnownPort = port
	now := e.now()
	e.lastChange = &now
	e.log.Info("listen port synchronized", "port", port)
	e.settle()
}

// settle picks the tick's terminal state: idle on a clean tick,
// degraded when any step failed (a failed seed counts even if the rest
// of the tick went through).
func (e *Engine) settle() {
	if e.tickErr == "" {
		e.transition(StateIdle)
		return
	}
	e.transition(StateDegraded)
}

func (e *Engine) fail(prefix string, err error) {
	if e.tickErr == "" {
		e.tickErr = prefix + ": " + err.Error()
	}
	e.log.Error("tick failed", "error", prefix+": "+err.Error())
	if errors.Is(err, slskd.ErrAuth) {
		e.log.Error("slskd rejected the API key; check that it has the Administrator role and SLSKD_REMOTE_CONFIGURATION=true is set")
	}
	e.transition(StateDegraded)
}

func (e *Engine) transition(next State) {
	if e.machine != next {
		e.log.Debug("state transition", "from", string(e.machine), "to", string(next))
	}
	e.machine = next
}

// publish regenerates the health snapshot and pushes it to the shared
// state and every sink. Runs at the end of every tick.
func (e *Engine) publish() {
	now := e.now()
	if e.startedAt.IsZero() {
		e.startedAt = now
	}

	portSynced := e.forwardedPort == 0 || e.forwardedPort == e.lastKnownPort

	snap := health.Snapshot{
		Healthy: e.gluetunUp && e.slskdUp && portSynced && e.tickErr == "",
		Services: health.Services{
			Gluetun: health.GluetunStatus{
				Connected: e.gluetunUp,
				Port:      e.forwardedPort,
			},
			Slskd: health.SlskdStatus{
				Connected:  e.slskdUp,
				PortSynced: portSynced,
			},
		},
		Uptime:         now.Sub(e.startedAt).String(),
		LastCheck:      now,
		LastPortChange: e.lastChange,
		LastError:      e.tickErr,
		Timestamp:      now,
	}

	e.state.Update(snap)
	for _, sink := range e.sinks {
		if err := sink.Write(snap); err != nil {
			e.log.Error("writing health snapshot", "error", err)
		}
	}
}
