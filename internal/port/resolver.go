package port

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmr-tortoise/portkeep/internal/model"
)

// Default resolution parameters. BasePort and MaxAttempts can be overridden
// per project via flags, environment, or .portkeep.yml.
const (
	// DefaultBasePort is the port the scan tier starts from when the
	// project gives no better signal.
	DefaultBasePort = 3000

	// DefaultMaxAttempts bounds the scan tier: ports
	// [basePort, basePort+maxAttempts) are probed before giving up.
	DefaultMaxAttempts = 20

	// DefaultShutdownTimeout bounds the reclaim tier's wait for session
	// teardown. Exceeding it degrades to the sticky/scan tiers instead
	// of blocking indefinitely.
	DefaultShutdownTimeout = 10 * time.Second

	// defaultPollInterval is the cadence at which the reclaim tier
	// re-queries session status while waiting for teardown.
	defaultPollInterval = 100 * time.Millisecond
)

// Prober reports whether a TCP port is currently held by any process on
// the host. Implemented by Scanner in production.
type Prober interface {
	IsPortAvailable(port int) bool
}

// SessionController queries and stops the project's dev session. The
// session is external state owned by an orchestrator (Docker in
// production); the resolver only observes and requests teardown.
type SessionController interface {
	// Status reports whether a session is active and which host port it holds.
	Status(ctx context.Context) (model.SessionInfo, error)

	// Stop requests teardown of the active session. Idempotent when the
	// session is already stopped.
	Stop(ctx context.Context) error
}

// RecordStore persists the single sticky port value for a project.
type RecordStore interface {
	// Load returns the recorded port. Returns model.ErrRecordNotFound when
	// no record exists and model.ErrRecordCorrupt when the record does not
	// hold a valid port.
	Load() (int, error)

	// Save overwrites the record with the given port.
	Save(port int) error
}

// Options configures a Resolver. Zero values fall back to the package
// defaults; Session may be nil to disable the reclaim tier entirely
// (e.g. `resolve --no-reclaim`, or no orchestrator in play).
type Options struct {
	// BasePort is the start of the scan range. Defaults to DefaultBasePort.
	BasePort int

	// MaxAttempts is the number of sequential ports probed by the scan
	// tier. Defaults to DefaultMaxAttempts.
	MaxAttempts int

	// ShutdownTimeout bounds the reclaim tier's teardown wait.
	// Defaults to DefaultShutdownTimeout.
	ShutdownTimeout time.Duration

	// PollInterval is the teardown polling cadence. Defaults to 100ms;
	// tests shorten it.
	PollInterval time.Duration

	// Logf receives verbose progress messages. Nil means silent.
	Logf func(format string, args ...interface{})
}

// Resolver assigns a sticky TCP port to a project directory using the
// three-tier strategy (reclaim, sticky, scan). It is synchronous and
// single-shot: one invocation per dev-session start.
//
// Concurrent invocations against the same project directory are not
// coordinated — the record store has no lock. Single-invoker usage is an
// assumption, not an enforced property.
type Resolver struct {
	prober  Prober
	session SessionController
	store   RecordStore
	opts    Options
}

// NewResolver creates a Resolver. The prober and store must not be nil;
// session may be nil to skip the reclaim tier.
func NewResolver(prober Prober, session SessionController, store RecordStore, opts Options) *Resolver {
	if opts.BasePort == 0 {
		opts.BasePort = DefaultBasePort
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &Resolver{
		prober:  prober,
		session: session,
		store:   store,
		opts:    opts,
	}
}

// Resolve returns the port the project's dev server should bind to.
//
// Tiers are attempted in priority order:
//
//  1. Reclaim — an active session's port is taken over after a controlled,
//     bounded-wait shutdown. Guarantees no port churn on a plain restart.
//  2. Sticky — the persisted record's port is reused when still free.
//  3. Scan — the first free port in [basePort, basePort+maxAttempts).
//
// The winning port is persisted before returning, so the next invocation
// finds it in tier 2. Failures of the record read and of tier 1
// (status errors, stop errors, teardown timeout) are absorbed by falling
// through to later tiers; only scan exhaustion — and a failed persist of
// an otherwise successful resolution — are surfaced.
//
// The returned port is believed free at the moment of return. There is no
// guarantee against an unrelated process grabbing it before the caller
// binds; this is a best-effort allocator, not a lock.
func (r *Resolver) Resolve(ctx context.Context, projectDir string) (*model.PortAssignment, error) {
	// Tier 1: reclaim the port from an active session.
	if r.session != nil {
		port, ok, err := r.reclaim(ctx)
		if err != nil {
			// Context cancellation during the teardown wait propagates;
			// nothing has been written, so the record stays intact.
			return nil, err
		}
		if ok {
			return r.finish(projectDir, port, model.TierReclaimed)
		}
	}

	// Tier 2: reuse the sticky record when its port is still free.
	if port, ok := r.stickyPort(); ok {
		return r.finish(projectDir, port, model.TierSticky)
	}

	// Tier 3: scan for a free port from the base port upward.
	port, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	return r.finish(projectDir, port, model.TierScanned)
}

// reclaim implements tier 1. It returns (port, true, nil) when an active
// session was stopped and its port can be reused. All session-layer
// failures except context cancellation are absorbed: the tier reports
// (0, false, nil) and resolution falls through.
func (r *Resolver) reclaim(ctx context.Context) (int, bool, error) {
	info, err := r.session.Status(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		r.logf("session status query failed, skipping reclaim: %v", err)
		return 0, false, nil
	}
	if !info.Active {
		return 0, false, nil
	}

	if !model.ValidPort(info.Port) {
		// A session we cannot read a usable port from is left running;
		// stopping it would gain nothing for resolution.
		r.logf("active session reports unusable port %d, skipping reclaim", info.Port)
		return 0, false, nil
	}

	r.logf("reclaiming port %d from active session %s", info.Port, info.ContainerName)

	if err := r.session.Stop(ctx); err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		r.logf("session stop failed, falling back: %v", err)
		return 0, false, nil
	}

	if err := r.waitStopped(ctx); err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		// Teardown timed out: the old session may still hold the port,
		// so reusing it would hand out a dead port. Degrade to tier 2/3.
		r.logf("falling back after teardown wait: %v", err)
		return 0, false, nil
	}

	return info.Port, true, nil
}

// waitStopped polls session status until no session is active, the
// shutdown timeout elapses, or ctx is cancelled. A partial shutdown must
// not be treated as done: only a status report of "not active" confirms
// the port has been vacated.
func (r *Resolver) waitStopped(ctx context.Context) error {
	deadline := time.Now().Add(r.opts.ShutdownTimeout)
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		info, err := r.session.Status(ctx)
		if err == nil && !info.Active {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Now().After(deadline) {
			return &model.ShutdownTimeoutError{Timeout: r.opts.ShutdownTimeout}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// stickyPort implements tier 2. It returns (port, true) when a valid record
// exists and its port is currently free on the host. Read failures of any
// kind are absorbed — a missing or corrupt record simply means scanning.
func (r *Resolver) stickyPort() (int, bool) {
	recorded, err := r.store.Load()
	if err != nil {
		if errors.Is(err, model.ErrRecordCorrupt) {
			r.logf("sticky record unreadable, treating as absent: %v", err)
		} else if !errors.Is(err, model.ErrRecordNotFound) {
			r.logf("sticky record load failed, treating as absent: %v", err)
		}
		return 0, false
	}

	if !model.ValidPort(recorded) {
		r.logf("sticky record holds invalid port %d, treating as absent", recorded)
		return 0, false
	}

	if !r.prober.IsPortAvailable(recorded) {
		r.logf("sticky port %d is held by another process, scanning instead", recorded)
		return 0, false
	}

	return recorded, true
}

// scan implements tier 3: probe [basePort, basePort+maxAttempts) in
// ascending order and return the first free port. Exhausting the range
// fails with PortExhaustedError and leaves the sticky record untouched.
func (r *Resolver) scan(ctx context.Context) (int, error) {
	for i := 0; i < r.opts.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		candidate := r.opts.BasePort + i
		if candidate > model.MaxPort {
			break
		}
		if r.prober.IsPortAvailable(candidate) {
			return candidate, nil
		}
	}
	return 0, &model.PortExhaustedError{
		BasePort:    r.opts.BasePort,
		MaxAttempts: r.opts.MaxAttempts,
	}
}

// finish persists the resolved port and builds the assignment. A persist
// failure is surfaced even though a port was found: without the record the
// stickiness contract would silently break on the next invocation.
func (r *Resolver) finish(projectDir string, port int, tier model.ResolutionTier) (*model.PortAssignment, error) {
	if err := r.store.Save(port); err != nil {
		return nil, fmt.Errorf("failed to persist sticky port %d: %w", port, err)
	}
	r.logf("resolved port %d via %s tier", port, tier)
	return &model.PortAssignment{
		Port:       port,
		Tier:       tier,
		ProjectDir: projectDir,
	}, nil
}

// logf forwards to the configured Logf hook, if any.
func (r *Resolver) logf(format string, args ...interface{}) {
	if r.opts.Logf != nil {
		r.opts.Logf(format, args...)
	}
}
