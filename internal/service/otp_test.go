package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/sangrahhq/sangrah/internal/domain"
	"github.com/sangrahhq/sangrah/internal/store"
	"github.com/sangrahhq/sangrah/pkg/cryptox"
	"github.com/sangrahhq/sangrah/pkg/idx"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^[1-9][0-9]{5}$`)

func seedUser(t *testing.T, st store.Store, mobile, email string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword("hunter2!")
	require.NoError(t, err)

	user := domain.User{
		ID:           idx.New().String(),
		Name:         "Asha",
		Mobile:       mobile,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleGuest,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}

func TestOTPIssue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("generates six digit codes with no leading zero", func(t *testing.T) {
		st := newTestStore(t)
		seedUser(t, st, "9876543210", "asha@example.com")

		mailer := &recordingMailer{}
		svc := &OTPService{Store: st, Mailer: mailer}

		for range 20 {
			code, delivered, err := svc.Issue(ctx, "9876543210", "Asha", "asha@example.com")
			require.NoError(t, err)
			require.True(t, delivered)
			require.Regexp(t, sixDigits, code)
		}
	})

	t.Run("reissue replaces the previous code", func(t *testing.T) {
		st := newTestStore(t)
		seedUser(t, st, "9876543210", "asha@example.com")

		mailer := &recordingMailer{}
		svc := &OTPService{Store: st, Mailer: mailer}

		first, _, err := svc.Issue(ctx, "9876543210", "Asha", "asha@example.com")
		require.NoError(t, err)
		second, _, err := svc.Issue(ctx, "9876543210", "Asha", "asha@example.com")
		require.NoError(t, err)

		if first != second {
			ok, err := svc.Validate(ctx, "9876543210", first)
			require.NoError(t, err)
			require.False(t, ok, "superseded code must not validate")
		}

		ok, err := svc.Validate(ctx, "9876543210", second)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("mail failure does not fail issuance", func(t *testing.T) {
		st := newTestStore(t)
		seedUser(t, st, "9876543210", "asha@example.com")

		svc := &OTPService{Store: st, Mailer: &recordingMailer{fail: true}}

		code, delivered, err := svc.Issue(ctx, "9876543210", "Asha", "asha@example.com")
		require.NoError(t, err)
		require.False(t, delivered)

		ok, err := svc.Validate(ctx, "9876543210", code)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("missing email skips delivery but still issues", func(t *testing.T) {
		st := newTestStore(t)
		seedUser(t, st, "9876543210", "")

		mailer := &recordingMailer{}
		svc := &OTPService{Store: st, Mailer: mailer}

		code, delivered, err := svc.Issue(ctx, "9876543210", "Asha", "")
		require.NoError(t, err)
		require.False(t, delivered)
		require.Empty(t, mailer.otps)

		ok, err := svc.Validate(ctx, "9876543210", code)
		require.NoError(t, err)
		require.True(t, ok)
	})
}

func TestOTPValidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("single use", func(t *testing.T) {
		st := newTestStore(t)
		seedUser(t, st, "9876543210", "asha@example.com")

		svc := &OTPService{Store: st, Mailer: &recordingMailer{}}
		code, _, err := svc.Issue(ctx, "9876543210", "Asha", "asha@example.com")
		require.NoError(t, err)

		ok, err := svc.Validate(ctx, "9876543210", code)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = svc.Validate(ctx, "9876543210", code)
		require.NoError(t, err)
		require.False(t, ok, "a consumed code must not validate again")
	})

	t.Run("wrong code leaves the row intact", func(t *testing.T) {
		st := newTestStore(t)
		seedUser(t, st, "9876543210", "asha@example.com")

		svc := &OTPService{Store: st, Mailer: &recordingMailer{}}
		code, _, err := svc.Issue(ctx, "9876543210", "Asha", "asha@example.com")
		require.NoError(t, err)

		ok, err := svc.Validate(ctx, "9876543210", "000000")
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = svc.Validate(ctx, "9876543210", code)
		require.NoError(t, err)
		require.True(t, ok, "failed attempt must not consume the real code")
	})

	t.Run("expired code never validates", func(t *testing.T) {
		st := newTestStore(t)
		seedUser(t, st, "9876543210", "asha@example.com")

		svc := &OTPService{Store: st, Mailer: &recordingMailer{}}
		code, _, err := svc.Issue(ctx, "9876543210", "Asha", "asha@example.com")
		require.NoError(t, err)

		// Push the stored expiry into the past directly.
		require.NoError(t, st.OTPs().UpsertOTP(ctx, domain.OTP{
			Mobile:    "9876543210",
			Code:      code,
			ExpiresAt: time.Now().UTC().Add(-time.Second),
		}))

		ok, err := svc.Validate(ctx, "9876543210", code)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("unknown mobile validates false", func(t *testing.T) {
		st := newTestStore(t)
		svc := &OTPService{Store: st, Mailer: &recordingMailer{}}

		ok, err := svc.Validate(ctx, "0000000000", "123456")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestHousekeepingSweepsExpiredOTPs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	seedUser(t, st, "1111111111", "")
	seedUser(t, st, "2222222222", "")

	require.NoError(t, st.OTPs().UpsertOTP(ctx, domain.OTP{
		Mobile:    "1111111111",
		Code:      "111111",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}))
	require.NoError(t, st.OTPs().UpsertOTP(ctx, domain.OTP{
		Mobile:    "2222222222",
		Code:      "222222",
		ExpiresAt: time.Now().UTC().Add(time.Minute),
	}))

	require.NoError(t, st.OTPs().DeleteExpiredOTPs(ctx))

	_, err := st.OTPs().GetOTPByMobile(ctx, "1111111111")
	require.ErrorIs(t, err, store.ErrNotFound)

	live, err := st.OTPs().GetOTPByMobile(ctx, "2222222222")
	require.NoError(t, err)
	require.Equal(t, "222222", live.Code)
}
