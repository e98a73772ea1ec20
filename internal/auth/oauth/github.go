package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultGitHubAuthURL   = "https://github.com/login/oauth/authorize"
	defaultGitHubTokenURL  = "https://github.com/login/oauth/access_token"
	defaultGitHubUserURL   = "https://api.github.com/user"
	defaultGitHubEmailsURL = "https://api.github.com/user/emails"
)

// GitHubConfig configures the GitHub provider. URL fields are overridable
// for tests only.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL   string
	TokenURL  string
	UserURL   string
	EmailsURL string

	Client *http.Client
}

// GitHub implements the OAuth2 code flow against GitHub.
type GitHub struct {
	config GitHubConfig
	client *http.Client
}

func NewGitHub(config GitHubConfig) *GitHub {
	if config.AuthURL == "" {
		config.AuthURL = defaultGitHubAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultGitHubTokenURL
	}
	if config.UserURL == "" {
		config.UserURL = defaultGitHubUserURL
	}
	if config.EmailsURL == "" {
		config.EmailsURL = defaultGitHubEmailsURL
	}
	client := config.Client
	if client == nil {
		client = defaultHTTPClient
	}
	return &GitHub{config: config, client: client}
}

func (p *GitHub) Name() string { return "github" }

func (p *GitHub) LoginURL(state string) string {
	params := url.Values{
		"client_id":    {p.config.ClientID},
		"redirect_uri": {p.config.RedirectURL},
		"scope":        {"read:user user:email"},
		"state":        {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

type githubTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// ExchangeCode swaps the authorization code for an access token and fetches
// the user profile. GitHub hides the email on /user for users with a private
// email, so in that case the verified primary address is pulled from
// /user/emails and patched into the profile map.
func (p *GitHub) ExchangeCode(ctx context.Context, code string) (Exchange, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"redirect_uri":  {p.config.RedirectURL},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return Exchange{}, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var tokenResp githubTokenResponse
	if err := doJSON(p.client, req, &tokenResp); err != nil {
		return Exchange{}, fmt.Errorf("token exchange: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return Exchange{}, fmt.Errorf("empty access token in response")
	}

	profile, err := p.fetchJSON(ctx, p.config.UserURL, tokenResp.AccessToken)
	if err != nil {
		return Exchange{}, fmt.Errorf("user fetch: %w", err)
	}

	if email, _ := profile["email"].(string); email == "" {
		primary, err := p.fetchPrimaryEmail(ctx, tokenResp.AccessToken)
		if err != nil {
			return Exchange{}, fmt.Errorf("email fetch: %w", err)
		}
		profile["email"] = primary
	}

	return Exchange{
		RawProfile:  profile,
		AccessToken: tokenResp.AccessToken,
	}, nil
}

func (p *GitHub) fetchJSON(ctx context.Context, rawURL, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	var out map[string]any
	if err := doJSON(p.client, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *GitHub) fetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.EmailsURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	var emails []githubEmail
	if err := doJSON(p.client, req, &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", fmt.Errorf("no verified primary email on account")
}

var _ Provider = (*GitHub)(nil)
