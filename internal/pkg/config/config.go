package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values and scales them to durations, so the
// config file can say `refresh_token_ttl_days: 30` instead of spelling
// durations inline.
type TimeConfig interface {
	// GetSecond reads the key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetMinute reads the key as a number of minutes.
	GetMinute(key string) time.Duration

	// GetHour reads the key as a number of hours.
	GetHour(key string) time.Duration

	// GetDay reads the key as a number of 24h days.
	GetDay(key string) time.Duration
}

// SignedIntConfig reads signed integer values.
type SignedIntConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
}

// UnsignedIntConfig reads unsigned integer values.
type UnsignedIntConfig interface {
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetUint32(key string) uint32
	GetUint64(key string) uint64
}

// FloatConfig reads floating-point values.
type FloatConfig interface {
	GetFloat32(key string) float32
	GetFloat64(key string) float64
}

// Config is the typed read surface over the loaded configuration. A
// missing or unconvertible key yields the type's zero value; callers
// that need hard failures validate at startup. Close releases any
// watcher the source holds.
type Config interface {
	io.Closer
	TimeConfig
	SignedIntConfig
	UnsignedIntConfig
	FloatConfig

	GetBool(key string) bool

	GetString(key string) string

	// GetBinary reads a base64-encoded value as raw bytes.
	GetBinary(key string) []byte

	// GetArray reads a comma-separated value as a string slice.
	GetArray(key string) []string

	// GetMap reads a `k1:v1,k2:v2` value as a map.
	GetMap(key string) map[string]string
}
