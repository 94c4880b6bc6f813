package models

import (
	"errors"

	dErrors "renterverify/pkg/domain-errors"
)

// ResultCode is the literal failure code a registry call reports to its caller.
type ResultCode int

const (
	ResultEmptyBusinessName ResultCode = 1
	ResultEmptyBusinessID   ResultCode = 2
	ResultNotAuthorized     ResultCode = 403
	ResultRenterNotFound    ResultCode = 404
)

// Registry failures. Every mutating operation returns exactly one of these
// (or nil) and leaves state untouched when it does.
var (
	ErrNotAuthorized     = dErrors.New(dErrors.CodeForbidden, "caller is not the registry administrator")
	ErrRenterNotFound    = dErrors.New(dErrors.CodeNotFound, "renter has not requested verification")
	ErrEmptyBusinessName = dErrors.New(dErrors.CodeValidation, "business name is required")
	ErrEmptyBusinessID   = dErrors.New(dErrors.CodeValidation, "business id is required")
)

var resultCodes = []struct {
	err  error
	code ResultCode
}{
	{ErrNotAuthorized, ResultNotAuthorized},
	{ErrRenterNotFound, ResultRenterNotFound},
	{ErrEmptyBusinessName, ResultEmptyBusinessName},
	{ErrEmptyBusinessID, ResultEmptyBusinessID},
}

// ResultCodeOf maps a registry failure to its literal code. It reports false
// for errors that are not registry failures (infrastructure, transport).
func ResultCodeOf(err error) (ResultCode, bool) {
	for _, rc := range resultCodes {
		if errors.Is(err, rc.err) {
			return rc.code, true
		}
	}
	return 0, false
}

// Slug returns the snake_case name of the failure, used in JSON bodies.
func (c ResultCode) Slug() string {
	switch c {
	case ResultEmptyBusinessName:
		return "empty_business_name"
	case ResultEmptyBusinessID:
		return "empty_business_id"
	case ResultNotAuthorized:
		return "not_authorized"
	case ResultRenterNotFound:
		return "renter_not_found"
	default:
		return "unknown"
	}
}
