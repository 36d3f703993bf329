package service

import (
	"context"
	"testing"

	"github.com/sangrahhq/sangrah/internal/domain"
	"github.com/sangrahhq/sangrah/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "sangrah-auth"

func newAuthService(t *testing.T) (*AuthService, *recordingMailer) {
	t.Helper()

	st := newTestStore(t)
	mailer := &recordingMailer{}
	signer, err := jwtx.NewSignerHS256([]byte("test-secret-test-secret-test-secret"))
	require.NoError(t, err)

	svc := &AuthService{
		Store:  st,
		OTP:    &OTPService{Store: st, Mailer: mailer},
		Mailer: mailer,
		Signer: signer,
		Issuer: testIssuer,
	}
	return svc, mailer
}

func TestSignup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("registers an unverified guest and mails a code", func(t *testing.T) {
		svc, mailer := newAuthService(t)

		user, emailSent, err := svc.Signup(ctx, "Asha", "9876543210", "asha@example.com", "hunter2!")
		require.NoError(t, err)
		require.True(t, emailSent)
		require.Equal(t, domain.RoleGuest, user.Role)
		require.False(t, user.Verified)
		require.NotEmpty(t, user.ID)
		require.Equal(t, "asha@example.com", mailer.lastOTP(t).To)
	})

	t.Run("duplicate mobile is rejected", func(t *testing.T) {
		svc, _ := newAuthService(t)

		_, _, err := svc.Signup(ctx, "Asha", "9876543210", "asha@example.com", "hunter2!")
		require.NoError(t, err)

		_, _, err = svc.Signup(ctx, "Clone", "9876543210", "other@example.com", "hunter2!")
		require.ErrorIs(t, err, ErrDuplicateAccount)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		svc, _ := newAuthService(t)

		_, _, err := svc.Signup(ctx, "Asha", "9876543210", "asha@example.com", "hunter2!")
		require.NoError(t, err)

		_, _, err = svc.Signup(ctx, "Clone", "9123456780", "asha@example.com", "hunter2!")
		require.ErrorIs(t, err, ErrDuplicateAccount)
	})

	t.Run("signup without email still succeeds", func(t *testing.T) {
		svc, mailer := newAuthService(t)

		user, emailSent, err := svc.Signup(ctx, "Asha", "9876543210", "", "hunter2!")
		require.NoError(t, err)
		require.False(t, emailSent)
		require.Empty(t, mailer.otps)
		require.Empty(t, user.Email)
	})

	t.Run("two accounts may both omit email", func(t *testing.T) {
		svc, _ := newAuthService(t)

		_, _, err := svc.Signup(ctx, "Asha", "1111111111", "", "hunter2!")
		require.NoError(t, err)
		_, _, err = svc.Signup(ctx, "Ravi", "2222222222", "", "hunter2!")
		require.NoError(t, err)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("correct password issues a fresh code", func(t *testing.T) {
		svc, mailer := newAuthService(t)

		_, _, err := svc.Signup(ctx, "Asha", "9876543210", "asha@example.com", "hunter2!")
		require.NoError(t, err)
		signupCode := mailer.lastOTP(t).Code

		emailSent, err := svc.Login(ctx, "asha@example.com", "hunter2!")
		require.NoError(t, err)
		require.True(t, emailSent)

		loginCode := mailer.lastOTP(t).Code
		if signupCode != loginCode {
			ok, err := svc.OTP.Validate(ctx, "9876543210", signupCode)
			require.NoError(t, err)
			require.False(t, ok, "login must supersede the signup code")
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _ := newAuthService(t)

		_, err := svc.Login(ctx, "nobody@example.com", "hunter2!")
		require.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := newAuthService(t)

		_, _, err := svc.Signup(ctx, "Asha", "9876543210", "asha@example.com", "hunter2!")
		require.NoError(t, err)

		_, err = svc.Login(ctx, "asha@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestVerifyOTP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid code mints a session token and verifies the account", func(t *testing.T) {
		svc, mailer := newAuthService(t)

		_, _, err := svc.Signup(ctx, "Asha", "9876543210", "asha@example.com", "hunter2!")
		require.NoError(t, err)

		token, user, err := svc.VerifyOTP(ctx, "9876543210", mailer.lastOTP(t).Code)
		require.NoError(t, err)
		require.True(t, user.Verified)

		claims, err := jwtx.NewCommonHS256([]byte("test-secret-test-secret-test-secret"), testIssuer).Verify(token)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
		require.Equal(t, "9876543210", claims.Mobile)
		require.Equal(t, string(domain.RoleGuest), claims.Role)

		require.Equal(t, []string{"asha@example.com"}, mailer.welcomes)
	})

	t.Run("welcome mail only on first verification", func(t *testing.T) {
		svc, mailer := newAuthService(t)

		_, _, err := svc.Signup(ctx, "Asha", "9876543210", "asha@example.com", "hunter2!")
		require.NoError(t, err)
		_, _, err = svc.VerifyOTP(ctx, "9876543210", mailer.lastOTP(t).Code)
		require.NoError(t, err)

		_, err = svc.Login(ctx, "asha@example.com", "hunter2!")
		require.NoError(t, err)
		_, _, err = svc.VerifyOTP(ctx, "9876543210", mailer.lastOTP(t).Code)
		require.NoError(t, err)

		require.Len(t, mailer.welcomes, 1)
	})

	t.Run("wrong code", func(t *testing.T) {
		svc, _ := newAuthService(t)

		_, _, err := svc.Signup(ctx, "Asha", "9876543210", "asha@example.com", "hunter2!")
		require.NoError(t, err)

		_, _, err = svc.VerifyOTP(ctx, "9876543210", "000000")
		require.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("code cannot be replayed", func(t *testing.T) {
		svc, mailer := newAuthService(t)

		_, _, err := svc.Signup(ctx, "Asha", "9876543210", "asha@example.com", "hunter2!")
		require.NoError(t, err)
		code := mailer.lastOTP(t).Code

		_, _, err = svc.VerifyOTP(ctx, "9876543210", code)
		require.NoError(t, err)

		_, _, err = svc.VerifyOTP(ctx, "9876543210", code)
		require.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("unknown mobile", func(t *testing.T) {
		svc, _ := newAuthService(t)

		_, _, err := svc.VerifyOTP(ctx, "0000000000", "123456")
		require.ErrorIs(t, err, ErrAccountNotFound)
	})
}
