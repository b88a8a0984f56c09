package db

import (
	"context"

	"github.com/shandysiswandi/gokode/internal/account/entity"
)

const getUserByEmail = `
SELECT id, email, full_name, status, mfa_status, updated_at
FROM users
WHERE email = $1
`

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	var (
		u         entity.User
		status    int16
		mfaStatus int16
	)
	err = s.conn.QueryRow(ctx, getUserByEmail, email).
		Scan(&u.ID, &u.Email, &u.FullName, &status, &mfaStatus, &u.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	u.Status = entity.UserStatus(status)
	u.MFAStatus = entity.MFAStatus(mfaStatus)

	return &u, nil
}

const getUserLoginInfo = `
SELECT id, email, status, password, mfa_status
FROM users
WHERE email = $1
`

func (s *DB) GetUserLoginInfo(ctx context.Context, email string) (_ *entity.UserLoginInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetUserLoginInfo")
	defer func() { s.endSpan(span, err) }()

	var (
		u         entity.UserLoginInfo
		status    int16
		mfaStatus int16
	)
	err = s.conn.QueryRow(ctx, getUserLoginInfo, email).
		Scan(&u.ID, &u.Email, &status, &u.Password, &mfaStatus)
	if err != nil {
		return nil, s.mapError(err)
	}

	u.Status = entity.UserStatus(status)
	u.MFAStatus = entity.MFAStatus(mfaStatus)

	return &u, nil
}

const getUserMFAInfo = `
SELECT id, email, status, mfa_status, mfa_secret
FROM users
WHERE id = $1
`

func (s *DB) GetUserMFAInfo(ctx context.Context, id int64) (_ *entity.UserMFAInfo, err error) {
	ctx, span := s.startSpan(ctx, "GetUserMFAInfo")
	defer func() { s.endSpan(span, err) }()

	var (
		u         entity.UserMFAInfo
		status    int16
		mfaStatus int16
	)
	err = s.conn.QueryRow(ctx, getUserMFAInfo, id).
		Scan(&u.ID, &u.Email, &status, &mfaStatus, &u.MFASecret)
	if err != nil {
		return nil, s.mapError(err)
	}

	u.Status = entity.UserStatus(status)
	u.MFAStatus = entity.MFAStatus(mfaStatus)

	return &u, nil
}

const getUserRefreshToken = `
SELECT u.id, u.email, u.status, rt.id, rt.revoked, rt.replaced_by_token_id, rt.expires_at
FROM refresh_tokens rt
JOIN users u ON u.id = rt.user_id
WHERE rt.token_hash = $1
`

func (s *DB) GetUserRefreshToken(ctx context.Context, tokenHash string) (_ *entity.UserRefreshToken, err error) {
	ctx, span := s.startSpan(ctx, "GetUserRefreshToken")
	defer func() { s.endSpan(span, err) }()

	var (
		urt    entity.UserRefreshToken
		status int16
	)
	err = s.conn.QueryRow(ctx, getUserRefreshToken, tokenHash).Scan(
		&urt.UserID,
		&urt.UserEmail,
		&status,
		&urt.RefreshID,
		&urt.RefreshRevoked,
		&urt.RefreshReplacedByTokenID,
		&urt.RefreshExpiresAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	urt.UserStatus = entity.UserStatus(status)

	return &urt, nil
}

const getLoginChallengeByToken = `
SELECT lc.id, lc.expires_at, u.id, u.email, u.status, u.mfa_status, u.mfa_secret
FROM login_challenges lc
JOIN users u ON u.id = lc.user_id
WHERE lc.token_hash = $1
`

func (s *DB) GetLoginChallengeByToken(ctx context.Context, tokenHash string) (_ *entity.LoginChallengeUser, err error) {
	ctx, span := s.startSpan(ctx, "GetLoginChallengeByToken")
	defer func() { s.endSpan(span, err) }()

	var (
		lcu       entity.LoginChallengeUser
		status    int16
		mfaStatus int16
	)
	err = s.conn.QueryRow(ctx, getLoginChallengeByToken, tokenHash).Scan(
		&lcu.ChallengeID,
		&lcu.ChallengeExpiresAt,
		&lcu.UserID,
		&lcu.UserEmail,
		&status,
		&mfaStatus,
		&lcu.MFASecret,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	lcu.UserStatus = entity.UserStatus(status)
	lcu.MFAStatus = entity.MFAStatus(mfaStatus)

	return &lcu, nil
}

const getRecoveryCodes = `
SELECT id, user_id, code_hash
FROM recovery_codes
WHERE user_id = $1 AND used_at IS NULL
ORDER BY id
`

func (s *DB) GetRecoveryCodes(ctx context.Context, userID int64) (_ []entity.RecoveryCode, err error) {
	ctx, span := s.startSpan(ctx, "GetRecoveryCodes")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, getRecoveryCodes, userID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var codes []entity.RecoveryCode
	for rows.Next() {
		var rc entity.RecoveryCode
		if err = rows.Scan(&rc.ID, &rc.UserID, &rc.Code); err != nil {
			return nil, s.mapError(err)
		}
		codes = append(codes, rc)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return codes, nil
}
