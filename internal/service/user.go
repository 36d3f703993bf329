package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sangrahhq/sangrah/internal/domain"
	"github.com/sangrahhq/sangrah/internal/store"
	"github.com/sangrahhq/sangrah/pkg/cryptox"
	"github.com/sangrahhq/sangrah/pkg/idx"
	"github.com/sangrahhq/sangrah/pkg/slogx"
)

var (
	// ErrInvalidRole indicates a role outside the known set.
	ErrInvalidRole = errors.New("invalid role")

	// ErrProtectedAccount indicates an elevated-admin account that cannot be
	// deleted or demoted.
	ErrProtectedAccount = errors.New("account is protected")

	// ErrForbiddenRole indicates the acting admin lacks the standing for the
	// requested change, such as touching elevated-admin accounts.
	ErrForbiddenRole = errors.New("insufficient role for this change")
)

// UserService covers the administrative account operations. Authentication
// is the router's job; this layer enforces the role rules that depend on who
// the actor is and what the target account holds.
type UserService struct {
	Store store.Store
}

// List returns every account, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns a single account by id.
func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrAccountNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CreateParams carries an admin-created account. Password may be empty, in
// which case a random one is generated; the caller is expected to trigger a
// reset flow for the new holder.
type CreateParams struct {
	Name     string
	Mobile   string
	Email    string
	Password string
	Role     domain.Role
	Verified bool
}

// Create registers an account on behalf of an admin. Only an elevated-admin
// may mint another elevated-admin.
func (s *UserService) Create(ctx context.Context, actor domain.Role, p CreateParams) (domain.User, error) {
	if !p.Role.Valid() {
		return domain.User{}, ErrInvalidRole
	}
	if p.Role == domain.RoleElevatedAdmin && actor != domain.RoleElevatedAdmin {
		return domain.User{}, ErrForbiddenRole
	}

	password := p.Password
	if password == "" {
		var err error
		password, err = cryptox.GeneratePassword()
		if err != nil {
			return domain.User{}, fmt.Errorf("generate password: %w", err)
		}
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         p.Name,
		Mobile:       p.Mobile,
		Email:        p.Email,
		PasswordHash: hash,
		Role:         p.Role,
		Verified:     p.Verified,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateAccount
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	created, err := s.Store.Users().GetUserByID(ctx, user.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("reload user: %w", err)
	}

	slogx.FromContext(ctx).Info("account created by admin",
		slog.String("user_id", created.ID),
		slog.String("role", string(created.Role)),
	)
	return created, nil
}

// UpdateDetails changes the name and email of an account. Elevated-admin
// accounts may only be edited by an elevated-admin.
func (s *UserService) UpdateDetails(ctx context.Context, actor domain.Role, id, name, email string) (domain.User, error) {
	target, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if target.Role == domain.RoleElevatedAdmin && actor != domain.RoleElevatedAdmin {
		return domain.User{}, ErrForbiddenRole
	}

	if err := s.Store.Users().UpdateUserDetails(ctx, id, name, email); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.User{}, ErrAccountNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.User{}, ErrDuplicateAccount
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	return s.Get(ctx, id)
}

// UpdateRole changes an account's role. An elevated-admin account can never
// be demoted, and only an elevated-admin may promote someone into that role.
func (s *UserService) UpdateRole(ctx context.Context, actor domain.Role, id string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	target, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if target.Role == domain.RoleElevatedAdmin && role != domain.RoleElevatedAdmin {
		return domain.User{}, ErrProtectedAccount
	}
	if role == domain.RoleElevatedAdmin && actor != domain.RoleElevatedAdmin {
		return domain.User{}, ErrForbiddenRole
	}

	if err := s.Store.Users().UpdateUserRole(ctx, id, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrAccountNotFound
		}
		return domain.User{}, fmt.Errorf("update role: %w", err)
	}

	slogx.FromContext(ctx).Info("account role changed",
		slog.String("user_id", id),
		slog.String("role", string(role)),
	)
	return s.Get(ctx, id)
}

// Delete removes an account. Elevated-admin accounts are never deletable.
func (s *UserService) Delete(ctx context.Context, actor domain.Role, id string) error {
	target, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleElevatedAdmin {
		return ErrProtectedAccount
	}

	if err := s.Store.Users().DeleteUser(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	slogx.FromContext(ctx).Info("account deleted", slog.String("user_id", id))
	return nil
}
