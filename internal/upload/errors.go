package upload

import "errors"

type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindCredential Kind = "CREDENTIAL"
	KindTransport  Kind = "TRANSPORT"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrCredential = errors.New("credentials unavailable")
	ErrTransport  = errors.New("upload transport failed")
)

// Error is the failure recorded on a State. Its message is the underlying
// error text, unchanged.
type Error struct {
	Kind  Kind
	Stage string
	Field string
	Err   error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrCredential:
		return e.Kind == KindCredential
	case ErrTransport:
		return e.Kind == KindTransport
	}
	return false
}

func validationError(stage, field string, err error) *Error {
	return &Error{Kind: KindValidation, Stage: stage, Field: field, Err: err}
}

func credentialError(stage string, err error) *Error {
	return &Error{Kind: KindCredential, Stage: stage, Err: err}
}

func transportError(stage string, err error) *Error {
	return &Error{Kind: KindTransport, Stage: stage, Err: err}
}
