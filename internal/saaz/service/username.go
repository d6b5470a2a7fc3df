package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/saazhq/saaz/internal/saaz/store"
	"github.com/saazhq/saaz/pkg/cryptox"
)

const (
	minUsernameLength = 3

	// maxUsernameProbes bounds the numeric-suffix search in synthesizeUsername.
	maxUsernameProbes = 10000

	// suggestionCount is how many alternatives CheckUsername returns.
	suggestionCount = 3

	// maxSuggestionAttempts bounds suggestion generation when most random
	// candidates collide.
	maxSuggestionAttempts = 50
)

var errUsernameSpaceExhausted = errors.New("no free username for base")

// stripNonAlnum keeps ASCII letters and digits only.
func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// synthesizeUsername derives an unused uppercase username from a display
// name: BASE, then BASE1, BASE2, ... Probes are sequential and unlocked;
// the unique constraint settles races at insert time.
func synthesizeUsername(ctx context.Context, users store.Users, name string) (string, error) {
	base := strings.ToUpper(stripNonAlnum(name))
	if len(base) < minUsernameLength {
		suffix, err := cryptox.GenerateHexToken(2)
		if err != nil {
			return "", err
		}
		base = "USER" + strings.ToUpper(suffix)
	}

	candidate := base
	for n := 1; n <= maxUsernameProbes; n++ {
		taken, err := users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(n)
	}
	return "", fmt.Errorf("%w %q", errUsernameSpaceExhausted, base)
}

// UsernameCheck reports availability of a candidate plus alternatives.
type UsernameCheck struct {
	Available   bool
	Suggestions []string
}

// CheckUsername is read-only. Available is false when no candidate is
// given. Suggestions holds up to three distinct unused names; fewer only
// when every attempt collided.
func (s *IdentityService) CheckUsername(ctx context.Context, candidate string) (UsernameCheck, error) {
	users := s.Store.Users()

	var out UsernameCheck
	if c := strings.TrimSpace(candidate); c != "" {
		taken, err := users.UsernameExists(ctx, strings.ToUpper(c))
		if err != nil {
			return UsernameCheck{}, fmt.Errorf("check username: %w", err)
		}
		out.Available = !taken
	}

	base := strings.ToUpper(stripNonAlnum(candidate))
	if base == "" {
		base = "USER"
	}

	seen := make(map[string]struct{}, suggestionCount)
	out.Suggestions = make([]string, 0, suggestionCount)
	for attempt := 0; attempt < maxSuggestionAttempts && len(out.Suggestions) < suggestionCount; attempt++ {
		n, err := cryptox.RandomIntn(9000)
		if err != nil {
			return UsernameCheck{}, err
		}
		suggestion := base + strconv.Itoa(1000+n)
		if _, dup := seen[suggestion]; dup {
			continue
		}
		seen[suggestion] = struct{}{}

		taken, err := users.UsernameExists(ctx, suggestion)
		if err != nil {
			return UsernameCheck{}, fmt.Errorf("check suggestion: %w", err)
		}
		if !taken {
			out.Suggestions = append(out.Suggestions, suggestion)
		}
	}
	return out, nil
}
