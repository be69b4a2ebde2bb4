package domain

import (
	"errors"
	"strings"
)

// ErrorKind classifies a failure so the transport layer can pick a status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalid
	KindUnauthenticated
	KindBadRequest
	KindNotFound
	KindForbidden
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the single failure type returned by the core. Details carries the
// full list of messages for validation failures.
type Error struct {
	Kind    ErrorKind
	Message string
	Details []string
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// Invalid builds a KindInvalid error listing every violated rule.
func Invalid(details ...string) *Error {
	return &Error{Kind: KindInvalid, Message: "validation failed", Details: details}
}

// KindOf reports the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var (
	ErrInvalidToken = &Error{Kind: KindUnauthenticated, Message: "invalid or expired token"}
	ErrInvalidRole  = &Error{Kind: KindBadRequest, Message: "Role is either 'admin' or 'superadmin'."}

	// Store-level outcomes, translated by the account service per operation.
	ErrUserNotFound = &Error{Kind: KindNotFound, Message: "User not found."}
	ErrUserExists   = &Error{Kind: KindConflict, Message: "An account with this email already exists."}

	ErrEmailNotFound        = &Error{Kind: KindUnauthenticated, Message: "Entered email is not found or role is incorrect!"}
	ErrIncorrectPassword    = &Error{Kind: KindUnauthenticated, Message: "The password you entered is incorrect!"}
	ErrPasswordConfirmation = &Error{Kind: KindForbidden, Message: "Confirm password does not match."}
	ErrOldPasswordMismatch  = &Error{Kind: KindConflict, Message: "Old password doesn't match."}
	ErrIdentityRoleMismatch = &Error{Kind: KindBadRequest, Message: "ID or role is incorrect."}
	ErrRemoveTargetNotFound = &Error{Kind: KindNotFound, Message: "User not found with the specified role and ID."}

	// Another request holds the registration lock for the same email and role.
	ErrRegistrationInProgress = &Error{Kind: KindConflict, Message: "A registration for this email is already in progress. Please retry."}
)
