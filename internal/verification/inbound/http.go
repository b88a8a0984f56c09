package inbound

import (
	"context"

	"github.com/shandysiswandi/gokode/internal/pkg/router"
	"github.com/shandysiswandi/gokode/internal/verification/usecase"
)

type uc interface {
	Send(ctx context.Context, in usecase.SendInput) error
	Verify(ctx context.Context, in usecase.VerifyInput) error
	ExportAudit(ctx context.Context, in usecase.ExportAuditInput) (*usecase.ExportAuditOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Code issuance & verification
	r.POST("/api/v1/verification/otp/send", end.OTPSend)
	r.POST("/api/v1/verification/otp/verify", end.OTPVerify)

	// Operations
	r.GET("/api/v1/verification/audit/export", end.AuditExport) // need authenticated
}
