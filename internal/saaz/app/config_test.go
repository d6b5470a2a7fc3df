package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/saazhq/saaz/internal/saaz/federation"
	"github.com/saazhq/saaz/internal/saaz/notify"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Keep any .env in the package directory out of the picture.
	t.Chdir(t.TempDir())

	t.Run("defaults", func(t *testing.T) {
		for _, k := range []string{"ENV", "PORT", "JWT_SECRET", "GOOGLE_ISSUERS", "CORS_ALLOWED_ORIGINS", "NATS_URL"} {
			t.Setenv(k, "")
		}

		cfg := LoadConfig()
		require.Equal(t, "dev", cfg.Env)
		require.Equal(t, 4000, cfg.Port)
		require.Equal(t, "saaz.db", cfg.DatabaseFile)
		require.Equal(t, 10, cfg.BcryptCost)
		require.Equal(t, 10*time.Minute, cfg.PendingFederationTTL)
		require.Equal(t, federation.GoogleIssuers, cfg.GoogleIssuers)
		require.Equal(t, notify.DefaultSubject, cfg.MailSubject)
		require.Equal(t, []string{"*"}, cfg.CORSOrigins)
		require.True(t, cfg.DevSecret)
		require.NoError(t, cfg.Validate())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("ENV", "prod")
		t.Setenv("PORT", "9000")
		t.Setenv("JWT_SECRET", "prod-secret-0123456789")
		t.Setenv("HOUSEKEEPING_INTERVAL", "15")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, ,https://b.test")
		t.Setenv("BCRYPT_COST", "not-a-number")

		cfg := LoadConfig()
		require.Equal(t, 9000, cfg.Port)
		require.False(t, cfg.DevSecret)
		require.Equal(t, 15*time.Minute, cfg.HousekeepingInterval)
		require.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSOrigins)
		require.Equal(t, 10, cfg.BcryptCost)
	})

	t.Run("secret required outside dev", func(t *testing.T) {
		t.Setenv("ENV", "prod")
		t.Setenv("JWT_SECRET", "")

		cfg := LoadConfig()
		require.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
	})

	t.Run("dotenv", func(t *testing.T) {
		t.Setenv("SAAZ_DATABASE_FILE", "")
		os.Unsetenv("SAAZ_DATABASE_FILE")
		require.NoError(t, os.WriteFile(".env", []byte("SAAZ_DATABASE_FILE=from-dotenv.db\n"), 0o600))
		t.Cleanup(func() { _ = os.Remove(".env") })

		cfg := LoadConfig()
		require.Equal(t, "from-dotenv.db", cfg.DatabaseFile)
	})
}

func TestApplication_Wiring(t *testing.T) {
	cfg := Config{
		Env:                  "test",
		LogLevel:             "error",
		Port:                 4000,
		DatabaseFile:         filepath.Join(t.TempDir(), "saaz.db"),
		MaxOpenConns:         4,
		JWTSecret:            "wiring-test-secret-0123",
		BcryptCost:           4,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}

	app, err := New(cfg)
	require.NoError(t, err)

	_, ok := app.federationService.Verifier.(federation.Disabled)
	require.True(t, ok)

	app.housekeepingService.Start()

	srv := httptest.NewServer(app.router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/auth/register", "application/json", strings.NewReader(
		`{"email":"w@x.com","password":"pw","role":"USER","name":"wired"}`,
	))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, app.Shutdown())
}

func TestNew_RejectsMissingSecret(t *testing.T) {
	_, err := New(Config{Env: "prod", Port: 4000, DatabaseFile: filepath.Join(t.TempDir(), "x.db")})
	require.ErrorContains(t, err, "JWT_SECRET")
}
