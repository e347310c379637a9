package uuid

import (
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

// UUID represents a UUID
type UUID = uuid.UUID

// New returns a new time ordered (version 7) UUID
func New() UUID {
	uuidv7, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return uuidv7
}

// Parse parses a UUID string
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// IsUUIDv7 checks if the given UUID is a valid UUIDv7
func IsUUIDv7(id UUID) bool {
	return id.Version() == uuid.Version(7)
}

// GetTimestampFromUUID extracts the timestamp from a UUIDv7
func GetTimestampFromUUID(u UUID) time.Time {
	tsMillis := binary.BigEndian.Uint64(u[0:8]) >> 16
	return time.UnixMilli(int64(tsMillis))
}

// Nil is the zero UUID
var Nil = uuid.Nil
