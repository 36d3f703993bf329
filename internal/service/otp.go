package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/sangrahhq/sangrah/internal/domain"
	"github.com/sangrahhq/sangrah/internal/metrics"
	"github.com/sangrahhq/sangrah/internal/notify"
	"github.com/sangrahhq/sangrah/internal/store"
	"github.com/sangrahhq/sangrah/pkg/slogx"
)

const (
	// otpMin/otpMax bound the uniform draw. Codes are always six digits,
	// never zero-padded shorter values.
	otpMin = 100000
	otpMax = 999999

	// DefaultOTPTTL is the validity window for an issued code.
	DefaultOTPTTL = 10 * time.Minute
)

// OTPService issues and validates one-time codes. A code lives in the store
// keyed by mobile; issuing replaces any previous code and validating consumes
// the row, so a code can never be used twice.
type OTPService struct {
	Store   store.Store
	Mailer  notify.Mailer
	Metrics *metrics.Metrics
	TTL     time.Duration // zero means DefaultOTPTTL
}

func (s *OTPService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultOTPTTL
}

// Issue generates a fresh 6-digit code for the mobile, superseding any code
// already on file, and asks the mailer to deliver it when an email address is
// known. Delivery is best-effort: a failed send is logged and the issuance
// still succeeds once the row is written. The returned code is for logging
// and tests only and must never appear in an HTTP response.
func (s *OTPService) Issue(ctx context.Context, mobile, name, email string) (code string, delivered bool, err error) {
	log := slogx.FromContext(ctx)

	code, err = generateCode()
	if err != nil {
		return "", false, fmt.Errorf("generate otp: %w", err)
	}

	otp := domain.OTP{
		Mobile:    mobile,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(s.ttl()),
	}

	// A single upsert keeps "at most one live OTP per mobile" atomic even
	// under concurrent issuance for the same identifier.
	if err := s.Store.OTPs().UpsertOTP(ctx, otp); err != nil {
		return "", false, fmt.Errorf("store otp: %w", err)
	}

	if s.Metrics != nil {
		s.Metrics.OTPsIssued.Inc()
	}

	if email == "" {
		// No delivery channel on file; the server-side log is the fallback.
		log.Info("otp issued without email on file",
			slog.String("mobile", mobile),
			slog.String("code", code),
		)
		return code, false, nil
	}

	if err := s.Mailer.SendOTP(ctx, email, name, code); err != nil {
		log.Warn("otp mail delivery failed",
			slog.String("mobile", mobile),
			slog.Any("error", err),
		)
		if s.Metrics != nil {
			s.Metrics.MailSendFailures.Inc()
		}
		return code, false, nil
	}

	log.Debug("otp issued", slog.String("mobile", mobile))
	return code, true, nil
}

// Validate checks a submitted code against the stored row. A match requires
// the same mobile, the same code, and an expiry strictly in the future; on
// success the row is deleted in the same transaction so the code is spent.
// Any other outcome returns false with no side effects.
func (s *OTPService) Validate(ctx context.Context, mobile, submitted string) (bool, error) {
	var valid bool

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		otp, err := tx.OTPs().GetOTPByMobile(ctx, mobile)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}

		// Lazy expiry: the row may still exist physically, it just never
		// validates once the window has passed.
		if otp.Code != submitted || otp.Expired(time.Now().UTC()) {
			return nil
		}

		if err := tx.OTPs().DeleteOTP(ctx, mobile); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil // consumed by a concurrent validation
			}
			return err
		}

		valid = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("validate otp: %w", err)
	}

	if s.Metrics != nil {
		s.Metrics.ObserveOTPValidation(valid)
	}
	return valid, nil
}

// generateCode draws uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}
