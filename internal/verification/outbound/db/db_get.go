package db

import (
	"context"

	"github.com/shandysiswandi/gokode/internal/verification/entity"
)

const listAuditEntries = `
SELECT id, channel, recipient, purpose, event, detail, created_at
FROM verification_audit
WHERE created_at >= $1 AND created_at < $2 AND id > $3
ORDER BY id
LIMIT $4
`

func (s *DB) ListAuditEntries(ctx context.Context, q entity.AuditQuery) (_ []entity.AuditEntry, err error) {
	ctx, span := s.startSpan(ctx, "ListAuditEntries")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, listAuditEntries, q.From, q.To, q.AfterID, q.Limit)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var entries []entity.AuditEntry
	for rows.Next() {
		var (
			e       entity.AuditEntry
			channel int16
			purpose int16
			event   int16
		)
		if err = rows.Scan(&e.ID, &channel, &e.Recipient, &purpose, &event, &e.Detail, &e.CreatedAt); err != nil {
			return nil, s.mapError(err)
		}
		e.Channel = entity.Channel(channel)
		e.Purpose = entity.Purpose(purpose)
		e.Event = entity.AuditEvent(event)
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return entries, nil
}
