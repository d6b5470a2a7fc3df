package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/saazhq/saaz/internal/saaz/federation"
	"github.com/saazhq/saaz/internal/saaz/notify"
	"github.com/saazhq/saaz/internal/saaz/service"
	"github.com/saazhq/saaz/internal/saaz/store"
	"github.com/saazhq/saaz/internal/saaz/store/drivers/sqlite"
	"github.com/saazhq/saaz/pkg/cryptox"
	"github.com/saazhq/saaz/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret-0123456789abcdef")

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fakeVerifier struct {
	mu         sync.Mutex
	identities map[string]federation.Identity
	calls      int
}

func (v *fakeVerifier) Verify(_ context.Context, assertion string) (federation.Identity, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	ident, ok := v.identities[assertion]
	if !ok {
		return federation.Identity{}, federation.ErrInvalidAssertion
	}
	return ident, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) last(t *testing.T) notify.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type fixture struct {
	store      *sqlite.Store
	clock      *testClock
	verifier   *fakeVerifier
	mailer     *fakeMailer
	tokens     jwtx.Verifier
	identity   *service.IdentityService
	federation *service.FederationService
	reset      *service.ResetService
	profiles   *service.ProfileService
	events     *service.EventService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "saaz.db"), sqlite.PoolConfig{MaxOpenConns: 4})
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	issuer := jwtx.NewIssuer(signer)
	hasher := cryptox.NewHasher(bcrypt.MinCost)

	clock := &testClock{t: time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)}
	verifier := &fakeVerifier{identities: map[string]federation.Identity{}}
	mailer := &fakeMailer{}

	return &fixture{
		store:    st,
		clock:    clock,
		verifier: verifier,
		mailer:   mailer,
		tokens:   jwtx.NewVerifierHS256(testSecret),
		identity: &service.IdentityService{Store: st, Hasher: hasher, Issuer: issuer},
		federation: &service.FederationService{
			Store:    st,
			Verifier: verifier,
			Issuer:   issuer,
			Now:      clock.Now,
		},
		reset: &service.ResetService{
			Store:        st,
			Hasher:       hasher,
			Mailer:       mailer,
			ResetURLBase: "https://saaz.test/reset-password",
			Now:          clock.Now,
		},
		profiles: &service.ProfileService{Store: st},
		events:   &service.EventService{Store: st, Now: clock.Now},
	}
}

func (f *fixture) register(t *testing.T, in service.RegisterInput) service.Session {
	t.Helper()
	sess, err := f.identity.Register(context.Background(), in)
	require.NoError(t, err)
	return sess
}

func (f *fixture) userCount(t *testing.T) int {
	t.Helper()
	users, err := f.store.Users().ListUsers(context.Background(), store.UserFilter{})
	require.NoError(t, err)
	return len(users)
}
