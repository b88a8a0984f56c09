package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
)

const rotateRevokeOldToken = `
UPDATE refresh_tokens
SET revoked = TRUE, replaced_by_token_id = $3
WHERE id = $1 AND user_id = $2 AND revoked = FALSE
`

// RotateRefreshToken revokes the presented token and inserts its
// replacement atomically. A zero-row revoke means another request won
// the rotation race; the caller treats that as an invalid token.
func (s *DB) RotateRefreshToken(ctx context.Context, ro entity.RotateRefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "RotateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	tag, err := tx.Exec(ctx, rotateRevokeOldToken, ro.OldID, ro.UserID, ro.NewID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	if _, err = tx.Exec(ctx, createRefreshToken, ro.NewID, ro.UserID, ro.NewToken, ro.NewExpiresAt); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

const resetUserPassword = `
UPDATE users
SET password = $2, updated_at = NOW()
WHERE id = $1
`

// ResetUserPassword swaps the password hash and revokes every live
// session in the same transaction, so a stolen refresh token does not
// outlive the reset.
func (s *DB) ResetUserPassword(ctx context.Context, userID int64, passwordHash string) (err error) {
	ctx, span := s.startSpan(ctx, "ResetUserPassword")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	tag, err := tx.Exec(ctx, resetUserPassword, userID, passwordHash)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	if _, err = tx.Exec(ctx, revokeAllRefreshTokens, userID); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

const activateMFA = `
UPDATE users
SET mfa_status = $2, updated_at = NOW()
WHERE id = $1 AND mfa_status = $3
`

const deleteRecoveryCodes = `
DELETE FROM recovery_codes
WHERE user_id = $1
`

const createRecoveryCode = `
INSERT INTO recovery_codes (id, user_id, code_hash)
VALUES ($1, $2, $3)
`

// ActivateMFA promotes a pending second factor and replaces the user's
// recovery code set in one transaction.
func (s *DB) ActivateMFA(ctx context.Context, userID int64, codes []entity.RecoveryCode) (err error) {
	ctx, span := s.startSpan(ctx, "ActivateMFA")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	tag, err := tx.Exec(ctx, activateMFA, userID, int16(entity.MFAStatusActive), int16(entity.MFAStatusPending))
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	if _, err = tx.Exec(ctx, deleteRecoveryCodes, userID); err != nil {
		return s.mapError(err)
	}

	for _, rc := range codes {
		if _, err = tx.Exec(ctx, createRecoveryCode, rc.ID, rc.UserID, rc.Code); err != nil {
			return s.mapError(err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}
