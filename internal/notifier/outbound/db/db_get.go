package db

import (
	"context"

	"github.com/shandysiswandi/gokode/internal/notifier/entity"
)

const getTemplateByTriggerChannel = `
SELECT id, trigger_key, channel, subject, body
FROM message_templates
WHERE trigger_key = $1 AND channel = $2
`

func (s *DB) GetTemplateByTriggerChannel(ctx context.Context, tk entity.TriggerKey, ch entity.Channel) (_ *entity.Template, err error) {
	ctx, span := s.startSpan(ctx, "GetTemplateByTriggerChannel")
	defer func() { s.endSpan(span, err) }()

	var (
		tpl     entity.Template
		trigger string
		channel int16
	)
	err = s.conn.QueryRow(ctx, getTemplateByTriggerChannel, tk.String(), int16(ch)).
		Scan(&tpl.ID, &trigger, &channel, &tpl.Subject, &tpl.Body)
	if err != nil {
		return nil, s.mapError(err)
	}

	tpl.TriggerKey = entity.TriggerKey(trigger)
	tpl.Channel = entity.Channel(channel)

	return &tpl, nil
}
