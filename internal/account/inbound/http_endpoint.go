package inbound

import (
	"github.com/shandysiswandi/gokode/internal/account/usecase"
	"github.com/shandysiswandi/gokode/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for registration, sessions,
// password recovery and second factor enrollment.
type HTTPEndpoint struct {
	uc uc
}

// Register creates a pending account and emails a verification code.
// @Summary Register account
// @Description Creates an account in pending state and issues a verification code to the email address.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 200 {object} router.successResponse "Account created"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Email already registered"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// RegisterVerify activates an account with the emailed code.
// @Summary Verify registration
// @Description Confirms the emailed code and activates the pending account.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body RegisterVerifyRequest true "Verification payload"
// @Success 200 {object} router.successResponse "Account activated"
// @Failure 400 {object} router.errorResponse "Invalid code, or expired or not found"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/register/verify [post]
func (h *HTTPEndpoint) RegisterVerify(r *router.Request) (any, error) {
	var req RegisterVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RegisterVerify(r.Context(), usecase.RegisterVerifyInput{
		Email: req.Email,
		Code:  req.Code,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// RegisterResend reissues the registration verification code.
// @Summary Resend registration code
// @Description Issues a fresh verification code for a pending account. Always answers success.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body RegisterResendRequest true "Resend payload"
// @Success 200 {object} router.successResponse "Code reissued"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/register/resend [post]
func (h *HTTPEndpoint) RegisterResend(r *router.Request) (any, error) {
	var req RegisterResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RegisterResend(r.Context(), usecase.RegisterResendInput{
		Email: req.Email,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// Login authenticates with email and password.
// @Summary Login
// @Description Verifies the credentials. Accounts with an active second factor receive a challenge token instead of a session.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Session or MFA challenge"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Wrong email or password"
// @Failure 403 {object} router.errorResponse "Account not eligible"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		MfaRequired:      resp.MfaRequired,
		ChallengeToken:   resp.ChallengeToken,
		AvailableMethods: resp.AvailableMethods,
		AccessToken:      resp.AccessToken,
		RefreshToken:     resp.RefreshToken,
	}, nil
}

// Login2FA finishes an MFA-gated login.
// @Summary Complete MFA login
// @Description Exchanges a login challenge token plus a TOTP or recovery code for a session.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body Login2FARequest true "Second factor payload"
// @Success 200 {object} router.successResponse{data=Login2FAResponse} "Session issued"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired challenge or code"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/login/2fa [post]
func (h *HTTPEndpoint) Login2FA(r *router.Request) (any, error) {
	var req Login2FARequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login2FA(r.Context(), usecase.Login2FAInput{
		ChallengeToken: req.ChallengeToken,
		Method:         req.Method,
		Code:           req.Code,
	})
	if err != nil {
		return nil, err
	}

	return Login2FAResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// RefreshToken rotates a refresh token into a fresh session.
// @Summary Refresh session
// @Description Rotates the refresh token. Reuse of an already-rotated token revokes every session for the user.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh payload"
// @Success 200 {object} router.successResponse{data=RefreshTokenResponse} "Session issued"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired refresh token"
// @Failure 403 {object} router.errorResponse "Token reuse detected"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/refresh [post]
func (h *HTTPEndpoint) RefreshToken(r *router.Request) (any, error) {
	var req RefreshTokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RefreshToken(r.Context(), usecase.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		return nil, err
	}

	return RefreshTokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// Logout revokes the presented refresh token.
// @Summary Logout
// @Description Revokes the refresh token. The access token stays valid until it expires.
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LogoutRequest true "Logout payload"
// @Success 200 {object} router.successResponse "Logged out"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	var req LogoutRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Logout(r.Context(), usecase.LogoutInput{
		RefreshToken: req.RefreshToken,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// PasswordForgot issues a password reset code.
// @Summary Request password reset
// @Description Issues a reset code to the email address. Always answers success, known address or not.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body PasswordForgotRequest true "Forgot payload"
// @Success 200 {object} router.successResponse "Code issued if eligible"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/password/forgot [post]
func (h *HTTPEndpoint) PasswordForgot(r *router.Request) (any, error) {
	var req PasswordForgotRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordForgot(r.Context(), usecase.PasswordForgotInput{
		Email: req.Email,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// PasswordReset sets a new password using the emailed code.
// @Summary Reset password
// @Description Confirms the reset code, replaces the password and revokes every session.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body PasswordResetRequest true "Reset payload"
// @Success 200 {object} router.successResponse "Password replaced"
// @Failure 400 {object} router.errorResponse "Invalid code, or expired or not found"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/password/reset [post]
func (h *HTTPEndpoint) PasswordReset(r *router.Request) (any, error) {
	var req PasswordResetRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordReset(r.Context(), usecase.PasswordResetInput{
		Email:       req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// TOTPSetup provisions a TOTP secret for the authenticated user.
// @Summary Start TOTP enrollment
// @Description Returns a base32 secret and otpauth URI. The factor stays pending until confirmed.
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=TOTPSetupResponse} "Pending secret"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 409 {object} router.errorResponse "Second factor already active"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/totp/setup [post]
func (h *HTTPEndpoint) TOTPSetup(r *router.Request) (any, error) {
	resp, err := h.uc.TOTPSetup(r.Context())
	if err != nil {
		return nil, err
	}

	return TOTPSetupResponse{Key: resp.Key, URI: resp.URI}, nil
}

// TOTPConfirm activates the pending TOTP factor.
// @Summary Confirm TOTP enrollment
// @Description Validates a code from the authenticator and activates MFA. Recovery codes are returned exactly once.
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TOTPConfirmRequest true "Confirmation payload"
// @Success 200 {object} router.successResponse{data=TOTPConfirmResponse} "MFA active"
// @Failure 400 {object} router.errorResponse "Invalid code"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/totp/confirm [post]
func (h *HTTPEndpoint) TOTPConfirm(r *router.Request) (any, error) {
	var req TOTPConfirmRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.TOTPConfirm(r.Context(), usecase.TOTPConfirmInput{
		Code: req.Code,
	})
	if err != nil {
		return nil, err
	}

	return TOTPConfirmResponse{RecoveryCodes: resp.RecoveryCodes}, nil
}
