package db

import (
	"context"

	"github.com/shandysiswandi/gokode/internal/account/entity"
)

const createUser = `
INSERT INTO users (id, email, full_name, password, status, mfa_status)
VALUES ($1, $2, $3, $4, $5, $6)
`

func (s *DB) CreateUser(ctx context.Context, user entity.NewUser, passwordHash string) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, createUser,
		user.ID,
		user.Email,
		user.FullName,
		passwordHash,
		int16(user.Status),
		int16(entity.MFAStatusDisabled),
	)
	return s.mapError(err)
}

const createRefreshToken = `
INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
VALUES ($1, $2, $3, $4)
`

func (s *DB) CreateRefreshToken(ctx context.Context, in entity.RefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "CreateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, createRefreshToken, in.ID, in.UserID, in.Token, in.ExpiresAt)
	return s.mapError(err)
}

const createLoginChallenge = `
INSERT INTO login_challenges (id, user_id, token_hash, expires_at)
VALUES ($1, $2, $3, $4)
`

func (s *DB) CreateLoginChallenge(ctx context.Context, in entity.LoginChallenge) (err error) {
	ctx, span := s.startSpan(ctx, "CreateLoginChallenge")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, createLoginChallenge, in.ID, in.UserID, in.Token, in.ExpiresAt)
	return s.mapError(err)
}
