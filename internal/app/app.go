package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gokode/internal/pkg/clock"
	"github.com/shandysiswandi/gokode/internal/pkg/config"
	"github.com/shandysiswandi/gokode/internal/pkg/goroutine"
	"github.com/shandysiswandi/gokode/internal/pkg/hash"
	"github.com/shandysiswandi/gokode/internal/pkg/idempotency"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"github.com/shandysiswandi/gokode/internal/pkg/jwt"
	"github.com/shandysiswandi/gokode/internal/pkg/mail"
	"github.com/shandysiswandi/gokode/internal/pkg/messaging"
	"github.com/shandysiswandi/gokode/internal/pkg/mfa"
	"github.com/shandysiswandi/gokode/internal/pkg/otp"
	"github.com/shandysiswandi/gokode/internal/pkg/router"
	"github.com/shandysiswandi/gokode/internal/pkg/sms"
	"github.com/shandysiswandi/gokode/internal/pkg/storage"
	"github.com/shandysiswandi/gokode/internal/pkg/uid"
	"github.com/shandysiswandi/gokode/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine       *goroutine.Manager
	validator       validator.Validator
	clock           clock.Clocker
	hmac            hash.Hash
	argon2id        hash.Hash
	bcrypt          hash.Hash
	uid             uid.NumberID
	oid             uid.StringID
	uuid            uid.StringID
	totp            otp.OTP
	jwt             jwt.JWT
	mfaEncryptor    mfa.Encryptor
	mfaRecoveryCode mfa.RecoveryCodeGenerator

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	sms       sms.SMS
	messaging messaging.Messaging
	storage   storage.Storage

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initSMS()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
