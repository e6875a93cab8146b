package domain

import "errors"

// Error kinds. Every business error returned by the domain and service layers
// wraps exactly one of these so the API layer can map it to a status code.
var (
	ErrValidation = errors.New("validation_error")
	ErrNotFound   = errors.New("not_found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

// Error is a business rule failure carrying a user facing message and the kind
// it belongs to.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

// Unwrap lets errors.Is match against the kind.
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Validation returns a new ValidationError with the given message.
func Validation(msg string) error { return newError(ErrValidation, msg) }

// NotFound returns a new NotFoundError with the given message.
func NotFound(msg string) error { return newError(ErrNotFound, msg) }

// Forbidden returns a new ForbiddenError with the given message.
func Forbidden(msg string) error { return newError(ErrForbidden, msg) }

// Conflict returns a new ConflictError with the given message.
func Conflict(msg string) error { return newError(ErrConflict, msg) }

// KindOf reports which kind err belongs to, or nil when it is not a business
// error (infrastructure failures and the like).
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrConflict} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Ledger and lifecycle errors. These are matched by identity with errors.Is
// and by kind through Unwrap.
var (
	ErrInvalidRole        = newError(ErrValidation, "role must be one of editor, viewer")
	ErrInvalidStatus      = newError(ErrValidation, "status must be one of pending, accepted, cancelled")
	ErrOwnerRoleImmutable = newError(ErrValidation, "the owner's role cannot be changed")
	ErrEntryExists        = newError(ErrConflict, "user already has access to this note")
	ErrOwnerEntry         = newError(ErrConflict, "the owner cannot be added as a collaborator")
	ErrEntryNotFound      = newError(ErrNotFound, "user does not have access to this note")
	ErrInvalidTransition  = newError(ErrConflict, "invite is no longer pending")
	ErrSelfInvite         = newError(ErrForbidden, "you cannot invite yourself")
	ErrInvalidNoteTitle   = newError(ErrValidation, "title is required and must be at most 100 characters")
	ErrInvalidDisplayName = newError(ErrValidation, "name is required and must be at most 40 characters")
	ErrInvalidEmail       = newError(ErrValidation, "a valid email address is required")
	ErrPasswordTooShort   = newError(ErrValidation, "password must be at least 8 characters")
	ErrInvalidIdentifier  = newError(ErrValidation, "identifier is malformed")
)
