package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sangrahhq/sangrah/internal/domain"
	"github.com/sangrahhq/sangrah/internal/metrics"
	"github.com/sangrahhq/sangrah/internal/notify"
	"github.com/sangrahhq/sangrah/internal/store"
	"github.com/sangrahhq/sangrah/pkg/cryptox"
	"github.com/sangrahhq/sangrah/pkg/idx"
	"github.com/sangrahhq/sangrah/pkg/jwtx"
	"github.com/sangrahhq/sangrah/pkg/slogx"
)

var (
	// ErrDuplicateAccount indicates the mobile or email is already registered.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrAccountNotFound indicates no account matches the given identifier.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidCredentials indicates a password check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidOTP indicates the submitted code did not match, was expired,
	// or was already spent.
	ErrInvalidOTP = errors.New("invalid or expired otp")
)

// AuthService drives the signup, login, and OTP verification flow. Signup and
// login never issue a token directly; both end with a code on file and the
// token is only minted by VerifyOTP.
type AuthService struct {
	Store      store.Store
	OTP        *OTPService
	Mailer     notify.Mailer
	Signer     jwtx.Signer
	Metrics    *metrics.Metrics
	Issuer     string
	SessionTTL time.Duration // zero means jwtx.DefaultSessionTTL
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return jwtx.DefaultSessionTTL
}

// Signup registers a new guest account keyed by mobile and issues its first
// OTP. The email address is optional; when absent the code is only written to
// the server log. Returns the new account and whether a code email went out.
func (s *AuthService) Signup(ctx context.Context, name, mobile, email, password string) (domain.User, bool, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Mobile:       mobile,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleGuest,
		Verified:     false,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, false, ErrDuplicateAccount
		}
		return domain.User{}, false, fmt.Errorf("create user: %w", err)
	}

	if s.Metrics != nil {
		s.Metrics.Signups.Inc()
	}

	_, delivered, err := s.OTP.Issue(ctx, mobile, name, email)
	if err != nil {
		return domain.User{}, false, err
	}

	created, err := s.Store.Users().GetUserByMobile(ctx, mobile)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("reload user: %w", err)
	}

	slogx.FromContext(ctx).Info("account registered",
		slog.String("user_id", created.ID),
		slog.String("mobile", mobile),
	)
	return created, delivered, nil
}

// Login checks an email/password pair and, when correct, issues a fresh OTP
// to the account's mobile. The caller still has to verify the code before a
// session token exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (bool, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrAccountNotFound
		}
		return false, fmt.Errorf("load user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return false, ErrInvalidCredentials
	}

	if s.Metrics != nil {
		s.Metrics.Logins.Inc()
	}

	_, delivered, err := s.OTP.Issue(ctx, user.Mobile, user.Name, user.Email)
	if err != nil {
		return false, err
	}

	slogx.FromContext(ctx).Info("login challenge issued",
		slog.String("user_id", user.ID),
	)
	return delivered, nil
}

// VerifyOTP consumes a valid code and mints a bearer token for the account.
// The first successful verification marks the account verified and sends a
// welcome email when an address is on file.
func (s *AuthService) VerifyOTP(ctx context.Context, mobile, code string) (string, domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.User{}, ErrAccountNotFound
		}
		return "", domain.User{}, fmt.Errorf("load user: %w", err)
	}

	ok, err := s.OTP.Validate(ctx, mobile, code)
	if err != nil {
		return "", domain.User{}, err
	}
	if !ok {
		return "", domain.User{}, ErrInvalidOTP
	}

	firstVerification := !user.Verified
	if firstVerification {
		if err := s.Store.Users().MarkVerified(ctx, user.ID); err != nil {
			return "", domain.User{}, fmt.Errorf("mark verified: %w", err)
		}
		user.Verified = true
	}

	claims := jwtx.NewSessionClaims(
		user.ID, user.Mobile, user.Email, string(user.Role),
		s.sessionTTL(), s.Issuer, time.Now(),
	)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("sign token: %w", err)
	}

	if s.Metrics != nil {
		s.Metrics.TokensIssued.Inc()
	}

	if firstVerification && user.Email != "" {
		if err := s.Mailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
			log.Warn("welcome mail delivery failed",
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
			if s.Metrics != nil {
				s.Metrics.MailSendFailures.Inc()
			}
		}
	}

	log.Info("session issued",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return token, user, nil
}
