package models

import (
	"strings"
	"unicode"

	dErrors "renterverify/pkg/domain-errors"
)

// maxIdentityLength bounds identities accepted from transports. Ledger
// addresses are far shorter; the limit only stops abuse of map keys.
const maxIdentityLength = 256

// Identity is an opaque, comparable caller token such as an account address.
// The registry compares identities for equality and never interprets them.
type Identity string

func (i Identity) String() string {
	return string(i)
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i == ""
}

// ParseIdentity validates an identity received from outside the process.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity is required")
	}
	if len(s) > maxIdentityLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity must be 256 bytes or less")
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity must not contain whitespace")
	}
	return Identity(s), nil
}

// Ordinal is a monotonically non-decreasing counter supplied by the host,
// typically the block height. It stands in for wall-clock timestamps.
type Ordinal uint64
