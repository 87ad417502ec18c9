package service

import "errors"

// Kind classifies service failures for the transport layer.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidationConflict
	KindInvalidInput
	KindInvalidCredentials
	KindAuthenticationRequired
	KindAccountInactive
	KindInvalidOrExpiredToken
	KindUserNotFound
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidationConflict:
		return "validation_conflict"
	case KindInvalidInput:
		return "invalid_request"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindAuthenticationRequired:
		return "authentication_required"
	case KindAccountInactive:
		return "account_inactive"
	case KindInvalidOrExpiredToken:
		return "invalid_or_expired_token"
	case KindUserNotFound:
		return "user_not_found"
	case KindNotFound:
		return "not_found"
	}
	return "server_error"
}

// Error is a kinded service failure with a caller-safe message. Detail,
// when set, replaces Message in Error() without changing identity.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind and message, so copies made
// with WithCause or a Detail still match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}

// WithCause returns a copy of e that wraps cause for logging.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Detail: e.Detail, Err: cause}
}

var (
	ErrDuplicateUsername = &Error{Kind: KindValidationConflict, Message: "username already registered"}
	ErrDuplicateEmail    = &Error{Kind: KindValidationConflict, Message: "email already registered"}
	ErrDuplicatePhone    = &Error{Kind: KindValidationConflict, Message: "phone already registered"}
	ErrDuplicateAccount  = &Error{Kind: KindValidationConflict, Message: "account already registered"}

	ErrInvalidInput = &Error{Kind: KindInvalidInput, Message: "invalid request"}

	ErrInvalidCredentials     = &Error{Kind: KindInvalidCredentials, Message: "incorrect username or password"}
	ErrAuthenticationRequired = &Error{Kind: KindAuthenticationRequired, Message: "could not validate credentials"}
	ErrAccountInactive        = &Error{Kind: KindAccountInactive, Message: "inactive user"}
	ErrInvalidOrExpiredToken  = &Error{Kind: KindInvalidOrExpiredToken, Message: "invalid or expired token"}
	ErrUserNotFound           = &Error{Kind: KindUserNotFound, Message: "user not found"}
	ErrNotFound               = &Error{Kind: KindNotFound, Message: "not found"}
)

// invalidInput returns an ErrInvalidInput carrying a specific message.
func invalidInput(detail string) *Error {
	return &Error{Kind: KindInvalidInput, Message: ErrInvalidInput.Message, Detail: detail}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
