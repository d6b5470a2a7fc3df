// Package federation verifies identity assertions (OIDC ID tokens) issued by
// an external provider such as Google Sign-In.
package federation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

// Google Sign-In defaults.
const (
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// GoogleIssuers are the issuer values Google places in ID tokens.
var GoogleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// ErrInvalidAssertion is returned for any assertion that fails verification
// or lacks an email claim.
var ErrInvalidAssertion = errors.New("federation: invalid assertion")

// Identity is the set of claims taken from a verified assertion.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// Verifier checks an assertion's signature, issuer, audience and expiry.
type Verifier interface {
	Verify(ctx context.Context, assertion string) (Identity, error)
}

// Disabled rejects every assertion. Used when no client id is configured.
type Disabled struct{}

func (Disabled) Verify(context.Context, string) (Identity, error) {
	return Identity{}, ErrInvalidAssertion
}

// Config configures an OIDCVerifier.
type Config struct {
	// ClientID is the expected audience.
	ClientID string
	// Issuers lists accepted issuer values; each gets its own verifier
	// sharing one key set.
	Issuers []string
	// JWKSURL is where signing keys are fetched from.
	JWKSURL string
	// HTTPClient fetches the key set; defaults to a client with a 10s timeout.
	HTTPClient *http.Client
}

// OIDCVerifier verifies ID tokens against a remote JWKS.
type OIDCVerifier struct {
	verifiers []*rp.IDTokenVerifier
}

// NewOIDCVerifier builds a verifier. ClientID and at least one issuer are
// required.
func NewOIDCVerifier(cfg Config) (*OIDCVerifier, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("federation: client id is required")
	}
	if len(cfg.Issuers) == 0 {
		return nil, errors.New("federation: at least one issuer is required")
	}
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = GoogleJWKSURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	keys := rp.NewRemoteKeySet(cfg.HTTPClient, cfg.JWKSURL)

	v := &OIDCVerifier{}
	for _, iss := range cfg.Issuers {
		iss = strings.TrimSpace(iss)
		if iss == "" {
			continue
		}
		v.verifiers = append(v.verifiers, rp.NewIDTokenVerifier(iss, cfg.ClientID, keys))
	}
	if len(v.verifiers) == 0 {
		return nil, errors.New("federation: at least one issuer is required")
	}
	return v, nil
}

// Verify returns the identity carried by assertion. Only claims from a
// token that passed verification are returned.
func (v *OIDCVerifier) Verify(ctx context.Context, assertion string) (Identity, error) {
	if strings.TrimSpace(assertion) == "" {
		return Identity{}, ErrInvalidAssertion
	}

	var lastErr error
	for _, verifier := range v.verifiers {
		claims, err := rp.VerifyIDToken[*oidc.IDTokenClaims](ctx, assertion, verifier)
		if err != nil {
			lastErr = err
			// Only an issuer mismatch is worth retrying with the next issuer.
			if errors.Is(err, oidc.ErrIssuerInvalid) {
				continue
			}
			break
		}
		return identityFromClaims(claims)
	}

	return Identity{}, fmt.Errorf("%w: %v", ErrInvalidAssertion, lastErr)
}

func identityFromClaims(c *oidc.IDTokenClaims) (Identity, error) {
	if c == nil || c.Email == "" {
		return Identity{}, fmt.Errorf("%w: missing email claim", ErrInvalidAssertion)
	}
	return Identity{
		Subject: c.Subject,
		Email:   c.Email,
		Name:    c.Name,
		Picture: c.Picture,
	}, nil
}
