package account

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/gokode/internal/account/inbound"
	"github.com/shandysiswandi/gokode/internal/account/outbound/db"
	"github.com/shandysiswandi/gokode/internal/account/outbound/mq"
	"github.com/shandysiswandi/gokode/internal/account/usecase"
	"github.com/shandysiswandi/gokode/internal/pkg/clock"
	"github.com/shandysiswandi/gokode/internal/pkg/config"
	"github.com/shandysiswandi/gokode/internal/pkg/hash"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"github.com/shandysiswandi/gokode/internal/pkg/jwt"
	"github.com/shandysiswandi/gokode/internal/pkg/messaging"
	"github.com/shandysiswandi/gokode/internal/pkg/mfa"
	"github.com/shandysiswandi/gokode/internal/pkg/otp"
	"github.com/shandysiswandi/gokode/internal/pkg/router"
	"github.com/shandysiswandi/gokode/internal/pkg/uid"
	"github.com/shandysiswandi/gokode/internal/pkg/validator"
)

type Dependency struct {
	DBConn        *pgxpool.Pool              `validate:"required"`
	Router        *router.Router             `validate:"required"`
	Messaging     messaging.Messaging        `validate:"required"`
	Config        config.Config              `validate:"required"`
	Instrument    instrument.Instrumentation `validate:"required"`
	UID           uid.NumberID               `validate:"required"`
	OID           uid.StringID               `validate:"required"`
	HMAC          hash.Hash                  `validate:"required"`
	Argon2ID      hash.Hash                  `validate:"required"`
	Bcrypt        hash.Hash                  `validate:"required"`
	MFAEncryptor  mfa.Encryptor              `validate:"required"`
	RecoveryCodes mfa.RecoveryCodeGenerator  `validate:"required"`
	Totp          otp.OTP                    `validate:"required"`
	Clock         clock.Clocker              `validate:"required"`
	Validator     validator.Validator        `validate:"required"`
	JWT           jwt.JWT                    `validate:"required"`
	Codes         usecase.CodeIssuer         `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Codes:         dep.Codes,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Argon2ID:      dep.Argon2ID,
		Bcrypt:        dep.Bcrypt,
		MFAEncryptor:  dep.MFAEncryptor,
		RecoveryCodes: dep.RecoveryCodes,
		UID:           dep.UID,
		OID:           dep.OID,
		Totp:          dep.Totp,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
