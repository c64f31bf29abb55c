package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeMissingToken Code = "MISSING_TOKEN"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeTimeout      Code = "TIMEOUT"
	CodeNetwork      Code = "NETWORK_ERROR"
	CodeDecode       Code = "DECODE_ERROR"
	CodeAPI          Code = "API_ERROR"
	CodeServer       Code = "SERVER_ERROR"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Metadata describes how a code should be surfaced to the user.
type Metadata struct {
	Retryable   bool
	UserMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:   false,
		UserMessage: "validation failed",
	},
	CodeMissingToken: {
		Retryable:   false,
		UserMessage: "sign in required",
	},
	CodeUnauthorized: {
		Retryable:   false,
		UserMessage: "authentication required",
	},
	CodeNotFound: {
		Retryable:   false,
		UserMessage: "resource not found",
	},
	CodeTimeout: {
		Retryable:   true,
		UserMessage: "the request timed out, check your connection",
	},
	CodeNetwork: {
		Retryable:   true,
		UserMessage: "network error, check your connection",
	},
	CodeDecode: {
		Retryable:   false,
		UserMessage: "unexpected server response",
	},
	CodeAPI: {
		Retryable:   false,
		UserMessage: "request rejected by the server",
	},
	CodeServer: {
		Retryable:   true,
		UserMessage: "the server had a problem, try again",
	},
	CodeInternal: {
		Retryable:   false,
		UserMessage: "something went wrong",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf extracts the code from any error, defaulting to CodeInternal.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

// UserMessage returns the inline message to render for an error: the typed
// message when present, otherwise the per-code fallback.
func UserMessage(err error) string {
	typed := As(err)
	if typed == nil {
		return MetadataFor(CodeInternal).UserMessage
	}
	if typed.Message() != "" {
		return typed.Message()
	}
	return MetadataFor(typed.Code()).UserMessage
}
