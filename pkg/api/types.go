package api

import "time"

// SignupRequest registers a new account. Email is optional; without one the
// OTP only shows up in the server log.
type SignupRequest struct {
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// LoginRequest starts a login challenge for an existing account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOTPRequest submits a one-time code for the given mobile.
type VerifyOTPRequest struct {
	Mobile string `json:"mobile"`
	Code   string `json:"code"`
}

// BootstrapRequest seeds the first elevated-admin account. Only works while
// no accounts exist.
type BootstrapRequest struct {
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// CreateUserRequest is the admin account-creation payload. Password may be
// omitted; the server generates one.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	Verified bool   `json:"verified,omitempty"`
}

// UpdateUserRequest changes an account's editable details.
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// UpdateRoleRequest changes an account's role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// ChallengeResponse acknowledges a signup or login. The code itself is never
// returned; EmailSent says whether it went out by mail. UserID is only set
// on signup.
type ChallengeResponse struct {
	Status    string `json:"status"`
	UserID    string `json:"user_id,omitempty"`
	EmailSent bool   `json:"email_sent"`
}

// TokenResponse carries a minted session token after OTP verification.
type TokenResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public projection of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsersResponse wraps an account listing.
type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

// HealthChecks reports per-dependency status in readiness probes.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is the payload of /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
