package entity

import (
	"time"

	"github.com/shandysiswandi/gokode/internal/pkg/valueobject"
)

// CodeRecord is the stored shape of one pending verification code.
// Only the keyed digest of the code is kept, never the plaintext.
type CodeRecord struct {
	Digest   string
	Purpose  Purpose
	Attempts int32
	IssuedAt time.Time
}

// AuditEntry is one row of the verification audit trail.
type AuditEntry struct {
	ID        int64
	Channel   Channel
	Recipient string
	Purpose   Purpose
	Event     AuditEvent
	Detail    valueobject.JSONMap
	CreatedAt time.Time
}

// AuditQuery selects a half-open [From, To) window of audit entries.
// AfterID supports keyset pagination when exporting large windows.
type AuditQuery struct {
	From    time.Time
	To      time.Time
	AfterID int64
	Limit   int32
}
