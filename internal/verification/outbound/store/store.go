// Package store persists pending verification codes.
//
// A record lives under one (channel, recipient) key, expires with its
// TTL, and holds only the keyed digest of the code. Two backends exist:
// Redis for shared deployments and an in-process map for development on
// a single instance.
package store

import "github.com/shandysiswandi/gokode/internal/verification/entity"

const (
	// DriverRedis selects the shared Redis backend.
	DriverRedis = "redis"
	// DriverMemory selects the in-process backend.
	DriverMemory = "memory"
)

func key(channel entity.Channel, recipient string) string {
	return "otp:" + channel.String() + ":" + recipient
}
