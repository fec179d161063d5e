package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/mailer"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/pending"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store/drivers/sqlite"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/tmdb"
	"github.com/aussiebroadwan/kurdforest/pkg/cryptox"
	"github.com/aussiebroadwan/kurdforest/pkg/jwtx"
	"github.com/aussiebroadwan/kurdforest/pkg/retryx"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeProvider struct {
	calls   atomic.Int32
	delay   time.Duration
	failN   int32 // first failN calls fail with failErr
	failErr error
	details map[string]*tmdb.Details
	season  *tmdb.Season
}

func (p *fakeProvider) FetchDetails(_ context.Context, externalID, _ string) (*tmdb.Details, error) {
	n := p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if n <= p.failN {
		return nil, p.failErr
	}
	d, ok := p.details[externalID]
	if !ok {
		return nil, &tmdb.StatusError{StatusCode: 404, Endpoint: "/movie/" + externalID}
	}
	return d, nil
}

func (p *fakeProvider) FetchSeason(_ context.Context, _ string, _ int) (*tmdb.Season, error) {
	n := p.calls.Add(1)
	if n <= p.failN {
		return nil, p.failErr
	}
	if p.season == nil {
		return nil, errors.New("no season")
	}
	return p.season, nil
}

type fixture struct {
	store     *sqlite.Store
	pending   *pending.Registry
	mailer    *fakeMailer
	provider  *fakeProvider
	clock     *clock
	reg       *RegistrationService
	sessions  *SessionService
	watchlist *WatchlistService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.ApplyMigrations())
	t.Cleanup(func() { _ = db.Close() })

	key, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSessionSigner(key, "kurdforest")
	require.NoError(t, err)

	c := &clock{now: time.Now().UTC()}
	hasher := &cryptox.Argon2id{Pepper: "test-pepper"}
	reg := pending.New(pending.Options{Now: c.Now})
	m := &fakeMailer{}
	p := &fakeProvider{details: map[string]*tmdb.Details{
		"603": {
			ID:          603,
			Title:       "The Matrix",
			ReleaseDate: "1999-03-31",
			VoteAverage: 8.2,
			Genres:      []tmdb.Genre{{ID: 28, Name: "Action"}},
			Credits:     tmdb.Credits{Cast: manyCast(25)},
		},
		"1399": {ID: 1399, Name: "Game of Thrones", FirstAirDate: "2011-04-17"},
	}}

	sessions := &SessionService{Store: db, Signer: signer, Hasher: hasher, Now: c.Now}
	return &fixture{
		store:    db,
		pending:  reg,
		mailer:   m,
		provider: p,
		clock:    c,
		sessions: sessions,
		reg: &RegistrationService{
			Store:    db,
			Pending:  reg,
			Hasher:   hasher,
			Mailer:   m,
			Sessions: sessions,
			SiteName: "KurdForest",
			Now:      c.Now,
		},
		watchlist: &WatchlistService{
			Store:    db,
			Provider: p,
			Retry:    retryx.Policy{Attempts: 3, Base: time.Millisecond, Max: 5 * time.Millisecond},
			Now:      c.Now,
		},
	}
}

func manyCast(n int) []tmdb.CastMember {
	cast := make([]tmdb.CastMember, n)
	for i := range cast {
		cast[i] = tmdb.CastMember{Name: "Actor", Character: "Role"}
	}
	return cast
}

// signUp registers and verifies a user, returning their session and token.
func (f *fixture) signUp(t *testing.T, username, email, password string) (domain.Session, string) {
	t.Helper()
	ctx := context.Background()

	token, err := f.reg.Register(ctx, username, email, password)
	require.NoError(t, err)
	staged, ok := f.pending.Get(token)
	require.True(t, ok)

	sess, signed, err := f.reg.Verify(ctx, token, staged.VerificationCode)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	return sess, signed
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
