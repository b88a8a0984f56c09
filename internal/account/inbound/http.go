package inbound

import (
	"context"

	"github.com/shandysiswandi/gokode/internal/account/usecase"
	"github.com/shandysiswandi/gokode/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) error
	RegisterVerify(ctx context.Context, in usecase.RegisterVerifyInput) error
	RegisterResend(ctx context.Context, in usecase.RegisterResendInput) error
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	Login2FA(ctx context.Context, in usecase.Login2FAInput) (*usecase.Login2FAOutput, error)
	RefreshToken(ctx context.Context, in usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error)
	Logout(ctx context.Context, in usecase.LogoutInput) error
	PasswordForgot(ctx context.Context, in usecase.PasswordForgotInput) error
	PasswordReset(ctx context.Context, in usecase.PasswordResetInput) error
	TOTPSetup(ctx context.Context) (*usecase.TOTPSetupOutput, error)
	TOTPConfirm(ctx context.Context, in usecase.TOTPConfirmInput) (*usecase.TOTPConfirmOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Registration
	r.POST("/api/v1/account/register", end.Register)
	r.POST("/api/v1/account/register/verify", end.RegisterVerify)
	r.POST("/api/v1/account/register/resend", end.RegisterResend)

	// Sessions
	r.POST("/api/v1/account/login", end.Login)
	r.POST("/api/v1/account/login/2fa", end.Login2FA)
	r.POST("/api/v1/account/refresh", end.RefreshToken)
	r.POST("/api/v1/account/logout", end.Logout) // need authenticated

	// Password recovery
	r.POST("/api/v1/account/password/forgot", end.PasswordForgot)
	r.POST("/api/v1/account/password/reset", end.PasswordReset)

	// Second factor enrollment
	r.POST("/api/v1/account/totp/setup", end.TOTPSetup)     // need authenticated
	r.POST("/api/v1/account/totp/confirm", end.TOTPConfirm) // need authenticated
}
