package service

import (
	"context"
	"crypto/subtle"
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
	// ErrAlreadyBootstrapped indicates the store already holds accounts.
	ErrAlreadyBootstrapped = errors.New("already bootstrapped")

	// ErrInvalidBootstrapToken indicates a missing or wrong bootstrap token.
	ErrInvalidBootstrapToken = errors.New("invalid bootstrap token")
)

// BootstrapService creates the first elevated-admin account. It only works
// while the user table is empty; after that the normal admin endpoints take
// over and bootstrap refuses forever.
type BootstrapService struct {
	Store store.Store

	// Token, when set, must be presented by the caller. Deployments that
	// bootstrap over a trusted channel may leave it empty.
	Token string
}

// Bootstrap registers the initial elevated-admin. The account is created
// verified so the operator can log in immediately through the OTP flow.
func (s *BootstrapService) Bootstrap(ctx context.Context, token, name, mobile, email, password string) (domain.User, error) {
	if s.Token != "" {
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
			return domain.User{}, ErrInvalidBootstrapToken
		}
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Mobile:       mobile,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleElevatedAdmin,
		Verified:     true,
	}

	// The emptiness check and the insert share a transaction so two racing
	// bootstrap calls cannot both seed an elevated-admin.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrAlreadyBootstrapped
		}
		return tx.Users().CreateUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyBootstrapped) {
			return domain.User{}, ErrAlreadyBootstrapped
		}
		return domain.User{}, fmt.Errorf("bootstrap: %w", err)
	}

	created, err := s.Store.Users().GetUserByID(ctx, user.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("reload user: %w", err)
	}

	slogx.FromContext(ctx).Info("elevated-admin bootstrapped",
		slog.String("user_id", created.ID),
	)
	return created, nil
}
