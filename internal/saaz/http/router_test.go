package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	saazhttp "github.com/saazhq/saaz/internal/saaz/http"
	"github.com/saazhq/saaz/internal/saaz/federation"
	"github.com/saazhq/saaz/internal/saaz/notify"
	"github.com/saazhq/saaz/internal/saaz/service"
	"github.com/saazhq/saaz/internal/saaz/store/drivers/sqlite"
	"github.com/saazhq/saaz/pkg/cryptox"
	"github.com/saazhq/saaz/pkg/httpx"
	"github.com/saazhq/saaz/pkg/jwtx"
	"github.com/saazhq/saaz/pkg/saazsdk"
	"github.com/saazhq/saaz/pkg/slogx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var secret = []byte("router-test-secret-0123456789")

var generous = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}

type stubVerifier map[string]federation.Identity

func (v stubVerifier) Verify(_ context.Context, assertion string) (federation.Identity, error) {
	ident, ok := v[assertion]
	if !ok {
		return federation.Identity{}, federation.ErrInvalidAssertion
	}
	return ident, nil
}

type captureMailer struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (m *captureMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type env struct {
	srv    *httptest.Server
	mailer *captureMailer
}

func newEnv(t *testing.T, limits saazhttp.Limits) *env {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "saaz.db"), sqlite.PoolConfig{MaxOpenConns: 4})
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	issuer := jwtx.NewIssuer(signer)
	hasher := cryptox.NewHasher(bcrypt.MinCost)
	mailer := &captureMailer{}

	r := saazhttp.NewRouter(jwtx.NewVerifierHS256(secret), "test", st, slogx.Discard())
	r.Limits = limits
	r.IdentityService = &service.IdentityService{Store: st, Hasher: hasher, Issuer: issuer}
	r.FederationService = &service.FederationService{
		Store:  st,
		Issuer: issuer,
		Verifier: stubVerifier{
			"google-cred": {Subject: "g-1", Email: "g@x.com", Name: "Gina Google", Picture: "g.png"},
		},
	}
	r.ResetService = &service.ResetService{Store: st, Hasher: hasher, Mailer: mailer}
	r.ProfileService = &service.ProfileService{Store: st}
	r.EventService = &service.EventService{Store: st}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &env{srv: srv, mailer: mailer}
}

func allGenerous() saazhttp.Limits {
	return saazhttp.Limits{Strict: generous, Moderate: generous, Lenient: generous, Public: generous}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func requireError(t *testing.T, resp *http.Response, status int, code string) httpx.ErrorResponse {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	er := decode[httpx.ErrorResponse](t, resp)
	require.Equal(t, code, er.Code)
	require.NotEmpty(t, er.Error)
	return er
}

func (e *env) register(t *testing.T, req saazsdk.RegisterRequest) saazsdk.AuthResponse {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/register", "", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[saazsdk.AuthResponse](t, resp)
}

func TestAuthEndpoints(t *testing.T) {
	e := newEnv(t, allGenerous())

	reg := e.register(t, saazsdk.RegisterRequest{
		Email: "a@x.com", Password: "secret1", Role: "ARTIST", Name: "jane doe",
		Category: "Singers", Location: "mumbai", Image: "jane.png",
	})
	require.Equal(t, "User registered successfully", reg.Message)
	require.NotEmpty(t, reg.Token)
	require.True(t, strings.HasPrefix(reg.User.Username, "JANEDOE"))
	require.Equal(t, "jane.png", reg.User.Image)

	t.Run("duplicate email", func(t *testing.T) {
		resp := e.do(t, http.MethodPost, "/api/auth/register", "", saazsdk.RegisterRequest{
			Email: "A@x.com", Password: "p", Role: "USER", Name: "other",
		})
		er := requireError(t, resp, http.StatusBadRequest, saazsdk.CodeDuplicateEmail)
		require.Equal(t, "User already exists", er.Error)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "b@x.com"})
		requireError(t, resp, http.StatusBadRequest, saazsdk.CodeInvalidRequest)
	})

	t.Run("check username", func(t *testing.T) {
		resp := e.do(t, http.MethodPost, "/api/auth/check-username", "", saazsdk.CheckUsernameRequest{
			Username: strings.ToLower(reg.User.Username),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		res := decode[saazsdk.CheckUsernameResponse](t, resp)
		require.False(t, res.Available)
		require.Len(t, res.Suggestions, 3)
	})

	t.Run("check username tolerates a malformed body", func(t *testing.T) {
		for _, body := range []string{"{not json", `{"username": 42}`, ""} {
			req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/auth/check-username", strings.NewReader(body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")
			resp, err := e.srv.Client().Do(req)
			require.NoError(t, err)
			t.Cleanup(func() { _ = resp.Body.Close() })

			require.Equal(t, http.StatusOK, resp.StatusCode, "body %q", body)
			res := decode[saazsdk.CheckUsernameResponse](t, resp)
			require.False(t, res.Available)
			require.Len(t, res.Suggestions, 3)
		}
	})

	t.Run("login", func(t *testing.T) {
		resp := e.do(t, http.MethodPost, "/api/auth/login", "", saazsdk.LoginRequest{
			Identifier: reg.User.Username, Password: "secret1",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		out := decode[saazsdk.AuthResponse](t, resp)
		require.Equal(t, reg.User.ID, out.User.ID)
		require.Equal(t, "Login successful", out.Message)
	})

	t.Run("login failure", func(t *testing.T) {
		resp := e.do(t, http.MethodPost, "/api/auth/login", "", saazsdk.LoginRequest{
			Identifier: "a@x.com", Password: "nope",
		})
		er := requireError(t, resp, http.StatusBadRequest, saazsdk.CodeInvalidCredentials)
		require.Equal(t, "Invalid credentials", er.Error)
	})

	t.Run("forgot and reset", func(t *testing.T) {
		resp := e.do(t, http.MethodPost, "/api/auth/forgot-password", "", saazsdk.ForgotPasswordRequest{Email: "ghost@x.com"})
		requireError(t, resp, http.StatusNotFound, saazsdk.CodeUserNotFound)

		resp = e.do(t, http.MethodPost, "/api/auth/forgot-password", "", saazsdk.ForgotPasswordRequest{Email: "a@x.com"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "Email sent", decode[httpx.MessageResponse](t, resp).Message)

		require.Len(t, e.mailer.sent, 1)
		_, token, ok := strings.Cut(e.mailer.sent[0].Body, "?token=")
		require.True(t, ok)
		token = strings.Fields(token)[0]

		resp = e.do(t, http.MethodPost, "/api/auth/reset-password", "", saazsdk.ResetPasswordRequest{Token: token, Password: "fresh"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = e.do(t, http.MethodPost, "/api/auth/reset-password", "", saazsdk.ResetPasswordRequest{Token: token, Password: "again"})
		er := requireError(t, resp, http.StatusBadRequest, saazsdk.CodeInvalidOrExpiredToken)
		require.Equal(t, "Invalid or expired token", er.Error)
	})
}

func TestGoogleEndpoint_RoleRequired(t *testing.T) {
	e := newEnv(t, allGenerous())

	resp := e.do(t, http.MethodPost, "/api/auth/google", "", saazsdk.GoogleLoginRequest{Credential: "google-cred"})
	er := requireError(t, resp, http.StatusBadRequest, saazsdk.CodeRoleRequired)
	require.Equal(t, "Role is required for new registration", er.Error)
	require.NotEmpty(t, er.PendingID)

	resp = e.do(t, http.MethodPost, "/api/auth/google", "", saazsdk.GoogleLoginRequest{PendingID: er.PendingID, Role: "VENUE"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[saazsdk.AuthResponse](t, resp)
	require.Equal(t, "VENUE", out.User.Role)
	require.Equal(t, "g.png", out.User.Image)

	resp = e.do(t, http.MethodPost, "/api/auth/google", "", saazsdk.GoogleLoginRequest{Credential: "forged"})
	er = requireError(t, resp, http.StatusBadRequest, saazsdk.CodeInvalidAssertion)
	require.Equal(t, "Invalid Google token", er.Error)
}

func TestProfileEndpoints(t *testing.T) {
	e := newEnv(t, allGenerous())

	reg := e.register(t, saazsdk.RegisterRequest{
		Email: "p@x.com", Password: "pw", Role: "VENUE", Name: "the hall", Location: "delhi",
	})

	t.Run("requires a token", func(t *testing.T) {
		resp := e.do(t, http.MethodGet, "/api/users/profile", "", nil)
		requireError(t, resp, http.StatusUnauthorized, saazsdk.CodeUnauthorized)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")

		resp = e.do(t, http.MethodGet, "/api/users/profile", "garbage", nil)
		requireError(t, resp, http.StatusUnauthorized, saazsdk.CodeUnauthorized)
	})

	t.Run("get and update", func(t *testing.T) {
		resp := e.do(t, http.MethodGet, "/api/users/profile", reg.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		p := decode[saazsdk.Profile](t, resp)
		require.Equal(t, "p@x.com", p.Email)
		require.NotNil(t, p.VenueProfile)
		require.Equal(t, "DELHI", p.VenueProfile.Location)

		capacity := 500
		resp = e.do(t, http.MethodPut, "/api/users/profile", reg.Token, saazsdk.UpdateProfileRequest{Capacity: &capacity})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = e.do(t, http.MethodGet, "/api/users/profile", reg.Token, nil)
		p = decode[saazsdk.Profile](t, resp)
		require.Equal(t, 500, *p.VenueProfile.Capacity)
	})

	t.Run("public list", func(t *testing.T) {
		resp := e.do(t, http.MethodGet, "/api/users?role=VENUE", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		users := decode[[]saazsdk.PublicUser](t, resp)
		require.Len(t, users, 1)
		require.Equal(t, reg.User.ID, users[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		resp := e.do(t, http.MethodDelete, "/api/users/profile", reg.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = e.do(t, http.MethodGet, "/api/users/profile", reg.Token, nil)
		requireError(t, resp, http.StatusNotFound, saazsdk.CodeUserNotFound)
	})
}

func TestEventEndpoints(t *testing.T) {
	e := newEnv(t, allGenerous())

	artist := e.register(t, saazsdk.RegisterRequest{Email: "a@x.com", Password: "pw", Role: "ARTIST", Name: "artist"})
	venue := e.register(t, saazsdk.RegisterRequest{Email: "v@x.com", Password: "pw", Role: "VENUE", Name: "venue"})
	fan := e.register(t, saazsdk.RegisterRequest{Email: "f@x.com", Password: "pw", Role: "USER", Name: "fan"})

	future := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)

	t.Run("role gate", func(t *testing.T) {
		resp := e.do(t, http.MethodPost, "/api/events", fan.Token, saazsdk.EventRequest{
			Title: "x", Date: future, Location: "here",
		})
		requireError(t, resp, http.StatusForbidden, saazsdk.CodeForbidden)
	})

	t.Run("location required", func(t *testing.T) {
		resp := e.do(t, http.MethodPost, "/api/events", artist.Token, saazsdk.EventRequest{Title: "x", Date: future})
		er := requireError(t, resp, http.StatusBadRequest, saazsdk.CodeLocationRequired)
		require.Equal(t, "Location is required", er.Error)
	})

	resp := e.do(t, http.MethodPost, "/api/events", artist.Token, saazsdk.EventRequest{
		Title: "gig", Date: future, Location: "goa",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[saazsdk.Event](t, resp)
	require.Equal(t, "UPCOMING", created.Status)
	require.Equal(t, artist.User.ID, created.CreatorID)

	t.Run("list and get", func(t *testing.T) {
		resp := e.do(t, http.MethodGet, "/api/events", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		list := decode[[]saazsdk.Event](t, resp)
		require.Len(t, list, 1)
		require.NotNil(t, list[0].Creator)
		require.Equal(t, "ARTIST", list[0].Creator.Role)

		resp = e.do(t, http.MethodGet, "/api/events/999", "", nil)
		requireError(t, resp, http.StatusNotFound, saazsdk.CodeEventNotFound)
	})

	path := "/api/events/" + jsonNumber(created.ID)

	t.Run("creator only", func(t *testing.T) {
		title := "hijack"
		resp := e.do(t, http.MethodPut, path, venue.Token, saazsdk.UpdateEventRequest{Title: &title})
		requireError(t, resp, http.StatusForbidden, saazsdk.CodeForbidden)

		title = "renamed"
		resp = e.do(t, http.MethodPut, path, artist.Token, saazsdk.UpdateEventRequest{Title: &title})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "renamed", decode[saazsdk.Event](t, resp).Title)

		resp = e.do(t, http.MethodDelete, path, venue.Token, nil)
		requireError(t, resp, http.StatusForbidden, saazsdk.CodeForbidden)

		resp = e.do(t, http.MethodDelete, path, artist.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestSystemEndpoints(t *testing.T) {
	e := newEnv(t, allGenerous())

	resp := e.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(slogx.RequestIDHeader))
	require.Equal(t, "ok", decode[saazsdk.HealthResponse](t, resp).Status)

	resp = e.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	h := decode[saazsdk.HealthResponse](t, resp)
	require.NotNil(t, h.Checks)
	require.Equal(t, "ok", h.Checks.Database)

	resp = e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStrictRateLimit(t *testing.T) {
	limits := allGenerous()
	limits.Strict = httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	e := newEnv(t, limits)

	for range 2 {
		resp := e.do(t, http.MethodPost, "/api/auth/login", "", saazsdk.LoginRequest{Identifier: "x", Password: "y"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	resp := e.do(t, http.MethodPost, "/api/auth/login", "", saazsdk.LoginRequest{Identifier: "x", Password: "y"})
	requireError(t, resp, http.StatusTooManyRequests, saazsdk.CodeRateLimitExceeded)

	// Strict endpoints share one bucket.
	resp = e.do(t, http.MethodPost, "/api/auth/forgot-password", "", saazsdk.ForgotPasswordRequest{Email: "a@x.com"})
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	e := newEnv(t, allGenerous())

	req, err := http.NewRequest(http.MethodOptions, e.srv.URL+"/api/auth/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.saaz.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
