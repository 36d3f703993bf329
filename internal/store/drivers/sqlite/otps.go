package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sangrahhq/sangrah/internal/domain"
	"github.com/sangrahhq/sangrah/internal/store"
)

type otpsRepo struct {
	db querier
}

func (r *otpsRepo) GetOTPByMobile(ctx context.Context, mobile string) (domain.OTP, error) {
	var otp domain.OTP
	err := r.db.QueryRowContext(ctx,
		`SELECT mobile, code, expires_at, created_at FROM otps WHERE mobile = ?`,
		mobile,
	).Scan(&otp.Mobile, &otp.Code, &otp.ExpiresAt, &otp.CreatedAt)
	if err != nil {
		return domain.OTP{}, mapNotFound(err)
	}
	return otp, nil
}

// UpsertOTP enforces "at most one live OTP per mobile" in a single statement,
// so concurrent issuance for the same identifier is last-writer-wins without
// ever leaving two rows behind.
func (r *otpsRepo) UpsertOTP(ctx context.Context, otp domain.OTP) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO otps (mobile, code, expires_at, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(mobile) DO UPDATE SET
		   code = excluded.code,
		   expires_at = excluded.expires_at,
		   created_at = excluded.created_at`,
		otp.Mobile, otp.Code, otp.ExpiresAt.UTC(), time.Now().UTC(),
	)
	return err
}

func (r *otpsRepo) DeleteOTP(ctx context.Context, mobile string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE mobile = ?`, mobile)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *otpsRepo) DeleteExpiredOTPs(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM otps WHERE expires_at <= ?`, time.Now().UTC())
	return err
}

// requireRow maps a zero-row mutation to store.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
