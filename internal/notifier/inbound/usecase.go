package inbound

import (
	"context"

	"github.com/shandysiswandi/gokode/internal/notifier/usecase"
)

type uc interface {
	ConsumeCodeIssued(ctx context.Context, in usecase.ConsumeCodeIssuedInput) error
	ConsumeUserRegistered(ctx context.Context, in usecase.ConsumeUserRegisteredInput) error
}
