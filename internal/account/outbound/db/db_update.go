package db

import (
	"context"

	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
)

const activateUser = `
UPDATE users
SET status = $3, updated_at = NOW()
WHERE id = $1 AND status = $2
`

// ActivateUser flips the account status only when the current status
// still matches, so concurrent verifications cannot resurrect a banned
// or deactivated account.
func (s *DB) ActivateUser(ctx context.Context, id int64, oldStatus, newStatus entity.UserStatus) (err error) {
	ctx, span := s.startSpan(ctx, "ActivateUser")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, activateUser, id, int16(oldStatus), int16(newStatus))
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

const revokeRefreshToken = `
UPDATE refresh_tokens
SET revoked = TRUE
WHERE token_hash = $1 AND revoked = FALSE
`

func (s *DB) RevokeRefreshToken(ctx context.Context, tokenHash string) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, revokeRefreshToken, tokenHash)
	return s.mapError(err)
}

const revokeAllRefreshTokens = `
UPDATE refresh_tokens
SET revoked = TRUE
WHERE user_id = $1 AND revoked = FALSE
`

func (s *DB) RevokeAllRefreshTokens(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeAllRefreshTokens")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, revokeAllRefreshTokens, userID)
	return s.mapError(err)
}

const setPendingTOTPSecret = `
UPDATE users
SET mfa_status = $2, mfa_secret = $3, updated_at = NOW()
WHERE id = $1
`

func (s *DB) SetPendingTOTPSecret(ctx context.Context, userID int64, secret []byte) (err error) {
	ctx, span := s.startSpan(ctx, "SetPendingTOTPSecret")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, setPendingTOTPSecret, userID, int16(entity.MFAStatusPending), secret)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

const markRecoveryCodeUsed = `
UPDATE recovery_codes
SET used_at = NOW()
WHERE id = $1 AND user_id = $2 AND used_at IS NULL
`

func (s *DB) MarkRecoveryCodeUsed(ctx context.Context, codeID, userID int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkRecoveryCodeUsed")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, markRecoveryCodeUsed, codeID, userID)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

const deleteLoginChallenge = `
DELETE FROM login_challenges
WHERE id = $1
`

func (s *DB) DeleteLoginChallenge(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteLoginChallenge")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, deleteLoginChallenge, id)
	return s.mapError(err)
}
