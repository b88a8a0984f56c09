package uid

import "github.com/google/uuid"

// UUID generates RFC 4122 identifiers, used for JWT IDs and correlation
// IDs where global uniqueness matters more than compactness.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

// Generate prefers time-ordered v7 and degrades to random v4 when the
// v7 clock source errors.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
