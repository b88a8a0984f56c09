package verification

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gokode/internal/pkg/clock"
	"github.com/shandysiswandi/gokode/internal/pkg/config"
	"github.com/shandysiswandi/gokode/internal/pkg/hash"
	"github.com/shandysiswandi/gokode/internal/pkg/instrument"
	"github.com/shandysiswandi/gokode/internal/pkg/messaging"
	"github.com/shandysiswandi/gokode/internal/pkg/otpcode"
	"github.com/shandysiswandi/gokode/internal/pkg/ratelimit"
	"github.com/shandysiswandi/gokode/internal/pkg/router"
	"github.com/shandysiswandi/gokode/internal/pkg/storage"
	"github.com/shandysiswandi/gokode/internal/pkg/uid"
	"github.com/shandysiswandi/gokode/internal/pkg/validator"
	"github.com/shandysiswandi/gokode/internal/verification/inbound"
	"github.com/shandysiswandi/gokode/internal/verification/outbound/db"
	"github.com/shandysiswandi/gokode/internal/verification/outbound/mq"
	"github.com/shandysiswandi/gokode/internal/verification/outbound/store"
	"github.com/shandysiswandi/gokode/internal/verification/usecase"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              // required only for the redis driver
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// New wires the verification module and returns its usecase so other
// modules can issue and confirm codes through it.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	ucDep := usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Generator:     otpcode.NewNumeric(),
		HMAC:          dep.HMAC,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Storage:       dep.Storage,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	}

	driver := dep.Config.GetString("modules.verification.driver")
	switch driver {
	case store.DriverRedis:
		if dep.CacheConn == nil {
			return nil, fmt.Errorf("verification: driver %q requires a cache connection", driver)
		}
		ucDep.CodeStore = store.NewRedis(dep.CacheConn, dep.Instrument)
		ucDep.Limiter = ratelimit.NewRedis(dep.CacheConn, dep.Clock)

	case store.DriverMemory, "":
		// Single instance only: records and buckets are invisible to
		// other processes.
		slog.Warn("verification using in-process store and limiter, not suitable for multiple instances")
		ucDep.CodeStore = store.NewMemory(dep.Clock)
		ucDep.Limiter = ratelimit.NewMemory(dep.Clock)

	default:
		return nil, fmt.Errorf("verification: unknown driver %q", driver)
	}

	uc := usecase.New(ucDep)
	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return uc, nil
}
