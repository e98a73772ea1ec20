package http

import "time"

// genericAuthFailure is the single user-facing message for every credential
// failure kind; the concrete reason is only ever logged. Keeping it generic
// prevents account enumeration through error text.
const genericAuthFailure = "invalid email or password"

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	IsNewUser bool   `json:"is_new_user,omitempty"`
}

type sessionResponse struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expires_at"`
}

type roleGrantRequest struct {
	Role string `json:"role"`
}

type profileUpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

type userInfoResponse struct {
	UserID   string     `json:"user_id"`
	Email    string     `json:"email"`
	Name     string     `json:"name,omitempty"`
	Avatar   string     `json:"avatar,omitempty"`
	Roles    []string   `json:"roles"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

type healthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *healthChecks `json:"checks,omitempty"`
}

type healthChecks struct {
	Database string `json:"database"`
}
