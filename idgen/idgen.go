// Package idgen produces the identifiers used by the debug server: short
// per-request trace IDs and time-sortable journal entry IDs.
//
// Constructors that need IDs accept a Generator, so tests can inject a
// deterministic one.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
// Time-sortable, so journal rows order by ID as well as by timestamp.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Hex returns a Generator of 2*n lowercase hex characters read from
// crypto/rand. Used for request trace IDs where a UUID is too verbose.
func Hex(n int) Generator {
	return func() string {
		buf := make([]byte, n)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		return hex.EncodeToString(buf)
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID
// (e.g. "jrn_").
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Sequence returns a Generator yielding prefix1, prefix2, ... Not safe for
// concurrent use; meant for tests that assert on IDs.
func Sequence(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

// Default is UUIDv7.
var Default Generator = UUIDv7()

// TraceID is the generator used for per-request trace IDs: 8 hex chars.
var TraceID Generator = Hex(4)

// New produces an ID using the Default generator.
func New() string {
	return Default()
}
