package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Session is an authenticated view of the service, created by VerifyOTP or
// NewSessionFromToken. Tokens are long-lived bearer tokens; there is no
// refresh flow, a session simply stops working when the token expires.
type Session struct {
	client *Client
	token  string

	// User is the account the token was minted for, as returned at
	// verification time. Empty when the session was built from a bare token.
	User UserResponse
}

func newSession(client *Client, tok TokenResponse) *Session {
	return &Session{client: client, token: tok.Token, User: tok.User}
}

// NewSessionFromToken wraps an existing bearer token, for callers that
// persisted one from an earlier verification.
func NewSessionFromToken(client *Client, token string) *Session {
	return &Session{client: client, token: token}
}

// Token returns the raw bearer token.
func (s *Session) Token() string { return s.token }

// Me returns the account behind this session.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodGet, "/v1/me", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns every account. Requires an admin role.
func (s *Session) ListUsers(ctx context.Context) ([]UserResponse, error) {
	var out UsersResponse
	if err := s.do(ctx, http.MethodGet, "/v1/users", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// GetUser returns a single account by id. Requires an admin role.
func (s *Session) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodGet, "/v1/users/"+id, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser registers an account on behalf of an admin.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodPost, "/v1/users", req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser changes an account's name and email.
func (s *Session) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodPatch, "/v1/users/"+id, req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUserRole changes an account's role.
func (s *Session) UpdateUserRole(ctx context.Context, id string, req UpdateRoleRequest) (*UserResponse, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodPatch, "/v1/users/"+id+"/role", req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes an account.
func (s *Session) DeleteUser(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/v1/users/"+id, nil, http.StatusNoContent, nil)
}

func (s *Session) do(ctx context.Context, method, path string, in any, wantStatus int, out any) error {
	var body *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.client.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
