package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gokode/internal/account"
	"github.com/shandysiswandi/gokode/internal/notifier"
	"github.com/shandysiswandi/gokode/internal/verification"
	verificationuc "github.com/shandysiswandi/gokode/internal/verification/usecase"
)

func (a *App) initModules() {
	var codes *verificationuc.Usecase

	if a.config.GetBool("modules.verification.enabled") {
		uc, err := verification.New(verification.Dependency{
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			Router:     a.router,
			Messaging:  a.messaging,
			Storage:    a.storage,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			HMAC:       a.hmac,
			Clock:      a.clock,
			Validator:  a.validator,
		})
		if err != nil {
			slog.Error("failed to init module verification", "error", err)
			os.Exit(1)
		}
		codes = uc
	}

	if a.config.GetBool("modules.account.enabled") {
		// Account flows issue and confirm codes through the
		// verification engine, so it must be enabled too.
		if codes == nil {
			slog.Error("failed to init module account", "error", "module verification must be enabled")
			os.Exit(1)
		}

		if err := account.New(account.Dependency{
			DBConn:        a.dbConn,
			Router:        a.router,
			Messaging:     a.messaging,
			Config:        a.config,
			Instrument:    a.ins,
			UID:           a.uid,
			OID:           a.oid,
			HMAC:          a.hmac,
			Argon2ID:      a.argon2id,
			Bcrypt:        a.bcrypt,
			MFAEncryptor:  a.mfaEncryptor,
			RecoveryCodes: a.mfaRecoveryCode,
			Totp:          a.totp,
			Clock:         a.clock,
			Validator:     a.validator,
			JWT:           a.jwt,
			Codes:         codes,
		}); err != nil {
			slog.Error("failed to init module account", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notifier.enabled") {
		if err := notifier.New(notifier.Dependency{
			Ctx:         a.ctx,
			DBConn:      a.dbConn,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			Clock:       a.clock,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
			Mail:        a.mail,
			SMS:         a.sms,
			Idempotency: a.idemp,
		}); err != nil {
			slog.Error("failed to init module notifier", "error", err)
			os.Exit(1)
		}
	}
}
