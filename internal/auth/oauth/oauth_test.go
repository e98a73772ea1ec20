package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGoogleExchangeCode(t *testing.T) {
	var gotTokenForm url.Values
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotTokenForm = r.PostForm
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "google-at",
			"token_type":    "Bearer",
			"refresh_token": "google-rt",
		})
	}))
	defer tokens.Close()

	userinfo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer google-at", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub":     "108273645",
			"email":   "alice@example.com",
			"name":    "Alice",
			"picture": "https://img.example.com/a.png",
		})
	}))
	defer userinfo.Close()

	p := NewGoogle(GoogleConfig{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURL:  "https://app.example.com/callback",
		TokenURL:     tokens.URL,
		UserInfoURL:  userinfo.URL,
	})

	ex, err := p.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, "google-at", ex.AccessToken)
	require.Equal(t, "google-rt", ex.RefreshToken)
	require.Equal(t, "108273645", ex.RawProfile["sub"])
	require.Equal(t, "alice@example.com", ex.RawProfile["email"])

	require.Equal(t, "the-code", gotTokenForm.Get("code"))
	require.Equal(t, "authorization_code", gotTokenForm.Get("grant_type"))
}

func TestGoogleLoginURL(t *testing.T) {
	p := NewGoogle(GoogleConfig{
		ClientID:    "cid",
		RedirectURL: "https://app.example.com/callback",
	})

	u, err := url.Parse(p.LoginURL("state-xyz"))
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "cid", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "state-xyz", q.Get("state"))
	require.Contains(t, q.Get("scope"), "email")
}

func TestGoogleExchangeCodeTokenFailure(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokens.Close()

	p := NewGoogle(GoogleConfig{TokenURL: tokens.URL})
	_, err := p.ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)
}

func TestGitHubExchangeCode(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "gh-at", "token_type": "bearer"})
	}))
	defer tokens.Close()

	user := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    583231,
			"login": "octocat",
			"email": "octocat@github.com",
		})
	}))
	defer user.Close()

	p := NewGitHub(GitHubConfig{
		TokenURL: tokens.URL,
		UserURL:  user.URL,
	})

	ex, err := p.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, "gh-at", ex.AccessToken)
	require.Equal(t, "octocat@github.com", ex.RawProfile["email"])
	require.Equal(t, float64(583231), ex.RawProfile["id"])
}

func TestGitHubExchangeCodePrivateEmail(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "gh-at"})
	}))
	defer tokens.Close()

	user := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "login": "shy", "email": nil})
	}))
	defer user.Close()

	emails := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "shy@example.com", "primary": true, "verified": true},
		})
	}))
	defer emails.Close()

	p := NewGitHub(GitHubConfig{
		TokenURL:  tokens.URL,
		UserURL:   user.URL,
		EmailsURL: emails.URL,
	})

	ex, err := p.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, "shy@example.com", ex.RawProfile["email"])
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewGoogle(GoogleConfig{}), NewGitHub(GitHubConfig{}))

	p, ok := r.Get("google")
	require.True(t, ok)
	require.Equal(t, "google", p.Name())

	_, ok = r.Get("myspace")
	require.False(t, ok)
}
