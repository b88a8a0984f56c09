package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/jwt"
	"github.com/shandysiswandi/gokode/internal/pkg/storage"
	"github.com/shandysiswandi/gokode/internal/verification/entity"
)

const exportBatchSize = 1000

type ExportAuditInput struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required"`
}

type ExportAuditOutput struct {
	URL   string
	Count int
}

type auditRow struct {
	ID        int64          `json:"id"`
	Channel   string         `json:"channel"`
	Recipient string         `json:"recipient"`
	Purpose   string         `json:"purpose"`
	Event     string         `json:"event"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ExportAudit writes the [From, To) audit window as JSONL to object
// storage and returns a short-lived download URL.
func (s *Usecase) ExportAudit(ctx context.Context, in ExportAuditInput) (*ExportAuditOutput, error) {
	ctx, span := s.startSpan(ctx, "ExportAudit")
	defer span.End()

	if clm := jwt.GetAuth(ctx); clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if !in.From.Before(in.To) {
		return nil, goerror.NewInvalidInput(nil, "from", "from must be before to")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	count := 0
	afterID := int64(0)
	for {
		entries, err := s.repoDB.ListAuditEntries(ctx, entity.AuditQuery{
			From:    in.From,
			To:      in.To,
			AfterID: afterID,
			Limit:   exportBatchSize,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to list audit entries", "error", err)
			return nil, goerror.NewServer(err)
		}
		if len(entries) == 0 {
			break
		}

		rows := lo.Map(entries, func(e entity.AuditEntry, _ int) auditRow {
			return auditRow{
				ID:        e.ID,
				Channel:   e.Channel.String(),
				Recipient: e.Recipient,
				Purpose:   e.Purpose.String(),
				Event:     e.Event.String(),
				Detail:    e.Detail,
				CreatedAt: e.CreatedAt,
			}
		})
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				slog.ErrorContext(ctx, "failed to encode audit row", "error", err)
				return nil, goerror.NewServer(err)
			}
		}

		count += len(entries)
		afterID = entries[len(entries)-1].ID
		if len(entries) < exportBatchSize {
			break
		}
	}

	bucket := s.cfg.GetString("modules.verification.export_bucket")
	key := fmt.Sprintf("audit/verification-%s-%s-%d.jsonl",
		in.From.UTC().Format("20060102T150405Z"),
		in.To.UTC().Format("20060102T150405Z"),
		s.uid.Generate(),
	)

	if _, err := s.storage.PutObject(ctx, bucket, key, &buf, storage.PutOptions{
		Size:        int64(buf.Len()),
		ContentType: "application/x-ndjson",
	}); err != nil {
		slog.ErrorContext(ctx, "failed to upload audit export", "bucket", bucket, "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	expiry := s.cfg.GetMinute("modules.verification.export_url_ttl_minutes")
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	url, err := s.storage.PresignGet(ctx, bucket, key, expiry)
	if err != nil {
		slog.ErrorContext(ctx, "failed to presign audit export", "bucket", bucket, "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ExportAuditOutput{URL: url, Count: count}, nil
}
