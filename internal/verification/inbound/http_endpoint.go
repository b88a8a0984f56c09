package inbound

import (
	"time"

	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/router"
	"github.com/shandysiswandi/gokode/internal/verification/entity"
	"github.com/shandysiswandi/gokode/internal/verification/usecase"
)

// HTTPEndpoint exposes HTTP handlers for code issuance and verification.
type HTTPEndpoint struct {
	uc uc
}

// OTPSend issues a one-time code to the given recipient.
// @Summary Send verification code
// @Description Generates a one-time code for the recipient and dispatches it over email or SMS. A repeat request replaces the previous code.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body OTPSendRequest true "Send payload"
// @Success 200 {object} router.successResponse "Code issued"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/verification/otp/send [post]
func (h *HTTPEndpoint) OTPSend(r *router.Request) (any, error) {
	var req OTPSendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}
	if req.Recipient.channel.IsUnknown() {
		return nil, goerror.NewInvalidInput(nil, "recipient", "recipient is required")
	}

	if err := h.uc.Send(r.Context(), usecase.SendInput{
		Channel:   req.Recipient.channel,
		Recipient: req.Recipient.value,
		Purpose:   entity.PurposeAuth,
		ClientIP:  r.ClientIP(),
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// OTPVerify checks a submitted code and consumes it on success.
// @Summary Verify code
// @Description Matches the submitted code against the pending record for the recipient. Success consumes the code.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body OTPVerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse "Code accepted"
// @Failure 400 {object} router.errorResponse "Invalid code, or expired or not found"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/verification/otp/verify [post]
func (h *HTTPEndpoint) OTPVerify(r *router.Request) (any, error) {
	var req OTPVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}
	if req.Recipient.channel.IsUnknown() {
		return nil, goerror.NewInvalidInput(nil, "recipient", "recipient is required")
	}

	if err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Channel:   req.Recipient.channel,
		Recipient: req.Recipient.value,
		Code:      req.Code,
		Purpose:   entity.PurposeAuth,
		ClientIP:  r.ClientIP(),
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// AuditExport exports the audit trail window as JSONL in object storage.
// @Summary Export audit trail
// @Description Writes the audit entries between from and to (RFC 3339) to object storage and returns a short-lived download URL.
// @Tags Verification, Operations
// @Produce json
// @Security BearerAuth
// @Param from query string true "Window start (RFC 3339)"
// @Param to query string true "Window end (RFC 3339)"
// @Success 200 {object} router.successResponse{data=AuditExportResponse} "Export location"
// @Failure 400 {object} router.errorResponse "Invalid window"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/verification/audit/export [get]
func (h *HTTPEndpoint) AuditExport(r *router.Request) (any, error) {
	from, err := r.GetQueryDate("from", time.RFC3339)
	if err != nil {
		return nil, err
	}
	to, err := r.GetQueryDate("to", time.RFC3339)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ExportAudit(r.Context(), usecase.ExportAuditInput{From: from, To: to})
	if err != nil {
		return nil, err
	}

	return AuditExportResponse{URL: resp.URL, Count: resp.Count}, nil
}
