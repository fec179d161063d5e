// Package pending holds sign-ups that have been submitted but not yet
// verified. Records live only in process memory and are addressed by an
// opaque token.
package pending

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
)

const (
	DefaultTTL           = 60 * time.Second
	DefaultSweepInterval = 30 * time.Second
)

// Options configures a Registry. Zero values select the defaults.
type Options struct {
	// TTL is how long a verification code stays acceptable.
	TTL time.Duration

	// Grace is how long past TTL a record is kept so a late verify can still
	// be told it expired. Defaults to TTL.
	Grace time.Duration

	SweepInterval time.Duration

	// MaxEntries bounds the registry. When full, the oldest record is
	// evicted to make room. Zero means unbounded.
	MaxEntries int

	Logger *slog.Logger

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// Registry is a mutex-guarded map of token to PendingRegistration with an
// optional background sweeper.
type Registry struct {
	TTL           time.Duration
	Grace         time.Duration
	SweepInterval time.Duration
	MaxEntries    int
	Logger        *slog.Logger
	Now           func() time.Time

	mu      sync.Mutex
	entries map[string]domain.PendingRegistration

	// Sweeper lifecycle
	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func New(opts Options) *Registry {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Grace <= 0 {
		opts.Grace = opts.TTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Registry{
		TTL:           opts.TTL,
		Grace:         opts.Grace,
		SweepInterval: opts.SweepInterval,
		MaxEntries:    opts.MaxEntries,
		Logger:        opts.Logger,
		Now:           opts.Now,
		entries:       make(map[string]domain.PendingRegistration),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Store inserts reg under token, replacing any record already there.
func (r *Registry) Store(token string, reg domain.PendingRegistration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[token]; !exists && r.MaxEntries > 0 && len(r.entries) >= r.MaxEntries {
		r.evictOldestLocked()
	}
	reg.Token = token
	r.entries[token] = reg
}

func (r *Registry) Get(token string) (domain.PendingRegistration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.entries[token]
	return reg, ok
}

// Remove deletes the record for token and reports whether this call removed
// it. Concurrent callers racing on one token see exactly one true.
func (r *Registry) Remove(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[token]; !ok {
		return false
	}
	delete(r.entries, token)
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep removes records older than TTL+Grace as of now and returns how many
// were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.TTL + r.Grace
	removed := 0
	for token, reg := range r.entries {
		if reg.Age(now) > cutoff {
			delete(r.entries, token)
			removed++
		}
	}
	return removed
}

// evictOldestLocked drops the record with the earliest CreatedAt. r.mu must
// be held.
func (r *Registry) evictOldestLocked() {
	var (
		oldestToken string
		oldestAt    time.Time
		found       bool
	)
	for token, reg := range r.entries {
		if !found || reg.CreatedAt.Before(oldestAt) {
			oldestToken, oldestAt, found = token, reg.CreatedAt, true
		}
	}
	if found {
		delete(r.entries, oldestToken)
		r.Logger.Warn("pending registry full, evicted oldest registration",
			"max_entries", r.MaxEntries, "created_at", oldestAt)
	}
}

// Start launches the background sweeper. It is non-blocking; call Stop to
// shut it down.
func (r *Registry) Start() {
	r.startOnce.Do(func() {
		r.mu.Lock()
		r.started = true
		r.mu.Unlock()

		go r.run()
		r.Logger.Info("pending registration sweeper started", "interval", r.SweepInterval)
	})
}

// Stop halts the sweeper and blocks until it has exited. Stop on a registry
// that was never started is a no-op.
func (r *Registry) Stop() {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return
	}

	r.stopOnce.Do(func() {
		close(r.stopCh)
		<-r.doneCh
		r.Logger.Info("pending registration sweeper stopped")
	})
}

func (r *Registry) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Sweep(r.Now()); n > 0 {
				r.Logger.Debug("swept expired pending registrations", "removed", n)
			}
		case <-r.stopCh:
			return
		}
	}
}
