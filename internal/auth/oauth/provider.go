package oauth

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// Exchange is everything a provider hands back for a completed authorization
// code: the raw profile payload in the provider's own claim shape, plus the
// provider tokens. Normalizing the profile into a canonical identity is the
// identity service's job, not ours.
type Exchange struct {
	RawProfile   map[string]any
	AccessToken  string
	RefreshToken string
	SessionState string
}

// Provider is one configured third-party identity provider.
type Provider interface {
	// Name is the stable provider identifier used in routes and stored
	// identities ("google", "github").
	Name() string

	// LoginURL builds the provider's authorization URL carrying the opaque
	// CSRF state value.
	LoginURL(state string) string

	// ExchangeCode swaps an authorization code for tokens and fetches the
	// user's profile.
	ExchangeCode(ctx context.Context, code string) (Exchange, error)
}

// Registry holds the configured providers keyed by name.
type Registry map[string]Provider

func NewRegistry(providers ...Provider) Registry {
	r := make(Registry, len(providers))
	for _, p := range providers {
		r[p.Name()] = p
	}
	return r
}

func (r Registry) Get(name string) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}

// Names returns the registered provider names in stable order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultHTTPClient bounds every provider round-trip; provider outages must
// not hold auth requests open indefinitely.
var defaultHTTPClient = &http.Client{Timeout: 10 * time.Second}
