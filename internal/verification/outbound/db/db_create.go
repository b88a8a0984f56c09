package db

import (
	"context"

	"github.com/shandysiswandi/gokode/internal/verification/entity"
)

const createAuditEntry = `
INSERT INTO verification_audit (id, channel, recipient, purpose, event, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func (s *DB) CreateAuditEntry(ctx context.Context, e entity.AuditEntry) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAuditEntry")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, createAuditEntry,
		e.ID,
		int16(e.Channel),
		e.Recipient,
		int16(e.Purpose),
		int16(e.Event),
		e.Detail,
		e.CreatedAt,
	)
	return s.mapError(err)
}
