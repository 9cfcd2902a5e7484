package document

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces element identifiers. Generated ids must never repeat
// within a process.
type IDGenerator func() string

// UUIDv7 returns a generator of RFC 9562 version 7 UUID strings.
// They sort by creation time, so creation order survives serialization.
func UUIDv7() IDGenerator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Sequential returns a generator producing prefix1, prefix2, ...
// Useful where stable, readable ids matter more than global uniqueness.
func Sequential(prefix string) IDGenerator {
	var n atomic.Uint64
	return func() string {
		return prefix + strconv.FormatUint(n.Add(1), 10)
	}
}
