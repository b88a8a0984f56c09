package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gokode/internal/account/entity"
	"github.com/shandysiswandi/gokode/internal/pkg/clock"
	"github.com/shandysiswandi/gokode/internal/pkg/config"
	"github.com/shandysiswandi/gokode/internal/pkg/goerror"
	"github.com/shandysiswandi/gokode/internal/pkg/hash"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"github.com/shandysiswandi/gokode/internal/pkg/jwt"
	"github.com/shandysiswandi/gokode/internal/pkg/mfa"
	"github.com/shandysiswandi/gokode/internal/pkg/otp"
	"github.com/shandysiswandi/gokode/internal/pkg/uid"
	"github.com/shandysiswandi/gokode/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// CodeIssuer is the verification engine surface this module issues and
// checks one-time codes through. There is exactly one implementation of
// the code state machine in the service; account flows never grow a
// second one.
type CodeIssuer interface {
	Issue(ctx context.Context, channel, recipient, purpose string) error
	Confirm(ctx context.Context, channel, recipient, purpose, code string) error
}

type UserRegisteredEvent struct {
	UserID   int64
	Email    string
	FullName string
}

type repoMessaging interface {
	PublishUserRegistered(ctx context.Context, msg UserRegisteredEvent) error
}

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserLoginInfo(ctx context.Context, email string) (*entity.UserLoginInfo, error)
	GetUserMFAInfo(ctx context.Context, id int64) (*entity.UserMFAInfo, error)
	GetUserRefreshToken(ctx context.Context, tokenHash string) (*entity.UserRefreshToken, error)
	GetLoginChallengeByToken(ctx context.Context, tokenHash string) (*entity.LoginChallengeUser, error)
	GetRecoveryCodes(ctx context.Context, userID int64) ([]entity.RecoveryCode, error)

	CreateUser(ctx context.Context, user entity.NewUser, passwordHash string) error
	CreateRefreshToken(ctx context.Context, in entity.RefreshToken) error
	CreateLoginChallenge(ctx context.Context, in entity.LoginChallenge) error

	ActivateUser(ctx context.Context, id int64, oldStatus, newStatus entity.UserStatus) error
	RotateRefreshToken(ctx context.Context, ro entity.RotateRefreshToken) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID int64) error
	ResetUserPassword(ctx context.Context, userID int64, passwordHash string) error
	SetPendingTOTPSecret(ctx context.Context, userID int64, secret []byte) error
	ActivateMFA(ctx context.Context, userID int64, codes []entity.RecoveryCode) error
	MarkRecoveryCodeUsed(ctx context.Context, codeID, userID int64) (bool, error)

	DeleteLoginChallenge(ctx context.Context, id int64) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	codes         CodeIssuer
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	argon2id      hash.Hash
	bcrypt        hash.Hash
	mfaEncryptor  mfa.Encryptor
	recoveryCodes mfa.RecoveryCodeGenerator
	uid           uid.NumberID
	oid           uid.StringID
	totp          otp.OTP
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Codes         CodeIssuer
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Argon2ID      hash.Hash
	Bcrypt        hash.Hash
	MFAEncryptor  mfa.Encryptor
	RecoveryCodes mfa.RecoveryCodeGenerator
	UID           uid.NumberID
	OID           uid.StringID
	Totp          otp.OTP
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		codes:         dep.Codes,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		argon2id:      dep.Argon2ID,
		bcrypt:        dep.Bcrypt,
		mfaEncryptor:  dep.MFAEncryptor,
		recoveryCodes: dep.RecoveryCodes,
		uid:           dep.UID,
		oid:           dep.OID,
		totp:          dep.Totp,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("account.usecase").Start(ctx, name)
}

func (s *Usecase) ensureUserStatusAllowed(ctx context.Context, userID int64, status entity.UserStatus) error {
	switch status.Ensure() {
	case entity.UserStatusUnknown:
		slog.WarnContext(ctx, "user account status is unrecognized", "user_id", userID)
		return goerror.NewBusiness("account status is unrecognized", goerror.CodeForbidden)

	case entity.UserStatusPendingVerification:
		slog.WarnContext(ctx, "user account is not verified", "user_id", userID)
		return goerror.NewBusiness("email not verified", goerror.CodeForbidden)

	case entity.UserStatusBanned:
		slog.WarnContext(ctx, "user account is banned", "user_id", userID)
		return goerror.NewBusiness("account is banned", goerror.CodeForbidden)

	case entity.UserStatusInactive:
		slog.WarnContext(ctx, "user account is deactivated", "user_id", userID)
		return goerror.NewBusiness("account is deactivated", goerror.CodeForbidden)

	default:
		return nil
	}
}

type sessionTokens struct {
	AccessToken  string
	RefreshToken string
}

// issueSession creates a JWT access token and an opaque refresh token.
// The refresh token is stored as its HMAC digest only.
func (s *Usecase) issueSession(ctx context.Context, userID int64, email string) (*sessionTokens, error) {
	acToken, err := s.jwt.Generate(userID, email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	refToken := s.oid.Generate()
	refTokenHash, err := s.hmac.Hash(refToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.CreateRefreshToken(ctx, entity.RefreshToken{
		ID:        s.uid.Generate(),
		UserID:    userID,
		Token:     string(refTokenHash),
		ExpiresAt: s.clock.Now().Add(s.cfg.GetDay("modules.account.refresh_token_ttl_days")),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create refresh token", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &sessionTokens{AccessToken: acToken, RefreshToken: refToken}, nil
}
