package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mayur-driod/FloodWatch/internal/auth/domain"
)

var (
	ErrUnknownProvider           = errors.New("unknown_provider")
	ErrMalformedProviderResponse = errors.New("malformed_provider_response")
)

// IdentityService translates provider-shaped profile payloads into the one
// canonical identity shape the reconciler consumes. Each provider names its
// claims differently; nothing outside this service knows those shapes.
type IdentityService struct{}

// Normalize maps a raw provider profile into a CanonicalIdentity. A payload
// missing its subject identifier or email is rejected as malformed; name and
// avatar are best-effort and may come back empty.
func (s *IdentityService) Normalize(provider string, raw map[string]any) (domain.CanonicalIdentity, error) {
	switch provider {
	case "google":
		return normalizeGoogle(raw)
	case "github":
		return normalizeGitHub(raw)
	default:
		return domain.CanonicalIdentity{}, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

func normalizeGoogle(raw map[string]any) (domain.CanonicalIdentity, error) {
	sub := stringClaim(raw, "sub")
	email := stringClaim(raw, "email")
	if sub == "" || email == "" {
		return domain.CanonicalIdentity{}, fmt.Errorf("%w: google payload missing sub or email", ErrMalformedProviderResponse)
	}
	return domain.CanonicalIdentity{
		Provider:       "google",
		SubjectID:      sub,
		Email:          domain.NormalizeEmail(email),
		ProposedName:   stringClaim(raw, "name"),
		ProposedAvatar: stringClaim(raw, "picture"),
	}, nil
}

func normalizeGitHub(raw map[string]any) (domain.CanonicalIdentity, error) {
	// GitHub returns the account id as a JSON number.
	sub := numericClaim(raw, "id")
	email := stringClaim(raw, "email")
	if sub == "" || email == "" {
		return domain.CanonicalIdentity{}, fmt.Errorf("%w: github payload missing id or email", ErrMalformedProviderResponse)
	}

	name := stringClaim(raw, "name")
	if name == "" {
		name = stringClaim(raw, "login")
	}

	return domain.CanonicalIdentity{
		Provider:       "github",
		SubjectID:      sub,
		Email:          domain.NormalizeEmail(email),
		ProposedName:   name,
		ProposedAvatar: stringClaim(raw, "avatar_url"),
	}, nil
}

func stringClaim(raw map[string]any, key string) string {
	v, ok := raw[key].(string)
	if !ok {
		return ""
	}
	return v
}

func numericClaim(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
