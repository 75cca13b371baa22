package core

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// General error codes. They double as process exit codes of the command
// line tool.
const (
	NOERROR    int = 0
	EMISSING   int = 122 // resource does not exist
	EINVALID   int = 123 // validation failed
	ECORRUPT   int = 124 // base font files are inconsistent or corrupt
	EEXTERNAL  int = 125 // an external tool failed
	EINTERNAL  int = 126 // internal error
	EUSERABORT int = 127 // user declined to proceed
)

func errorText(ecode int) string {
	switch ecode {
	case NOERROR:
		return "OK"
	case EMISSING:
		return "not found"
	case EINVALID:
		return "invalid"
	case ECORRUPT:
		return "corrupt base files"
	case EEXTERNAL:
		return "external tool failed"
	case EINTERNAL:
		return "internal error"
	case EUSERABORT:
		return "aborted"
	}
	return "undefined error"
}

// Kinds of errors the glyph pipeline distinguishes. Errors returned from
// packages of this module wrap one of these, test with errors.Is.
var (
	// ErrInvalidNameFormat flags a malformed glyph identifier.
	ErrInvalidNameFormat = errors.New("invalid glyph name format")
	// ErrMalformedFontTree flags a font tree without a usable glyph order.
	ErrMalformedFontTree = errors.New("malformed font tree")
	// ErrEmptyAssetSet flags an asset directory without a single complete set.
	ErrEmptyAssetSet = errors.New("no usable assets")
	// ErrGlyphNotFoundInStrike flags a mismatch between registry and font tree.
	ErrGlyphNotFoundInStrike = errors.New("glyph not found in strike")
	// ErrMissingBitmapStrikes flags a font tree without the expected sbix strikes.
	ErrMissingBitmapStrikes = errors.New("missing bitmap strikes")
)

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() int
	UserMessage() string
}

type coreError struct {
	error
	code int
	msg  string
}

func (e coreError) Unwrap() error {
	return e.error
}

func (e coreError) Error() string {
	return fmt.Sprintf("[%d] %v", e.code, e.error)
}

func (e coreError) ErrorCode() int {
	return e.code
}

func (e coreError) UserMessage() string {
	return e.msg
}

var _ AppError = coreError{}

// ErrorWithCode adds an error code to err's error chain.
// Unlike pkg/errors, ErrorWithCode will wrap nil error.
func ErrorWithCode(err error, code int) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	return coreError{err, code, errorText(code)}
}

// WrapError wraps an error in a core error, featuring an error code and
// a user message.
// If err is nil, an error denoting the code's text is wrapped.
func WrapError(err error, code int, format string, v ...interface{}) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	msg := fmt.Sprintf(format, v...)
	return coreError{err, code, msg}
}

// Code returns the status code associated with an error.
// If no status code is found, it returns EINTERNAL.
// If err is nil, NOERROR is returned.
func Code(err error) (code int) {
	if err == nil {
		return NOERROR
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// UserMessage returns the user message associated with an error.
// If no message is found, it checks Code and returns that message.
// If err is nil, it returns "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.UserMessage()
	}
	return errorText(Code(err))
}

// Error creates an error with an error code and a user-message.
func Error(code int, format string, v ...interface{}) error {
	return coreError{
		errors.New(errorText(code)),
		code,
		fmt.Sprintf(format, v...),
	}
}

// RegenerateHint is appended to user messages of systemic failures.
const RegenerateHint = "try regenerating base files with `sbixer base-files --force`"

// UserError prints an error to stderr, preferring its user message.
func UserError(err error) {
	FprintUserError(os.Stderr, err)
}

// FprintUserError writes an error to w, preferring its user message.
func FprintUserError(w io.Writer, err error) {
	if e := AppError(nil); errors.As(err, &e) {
		fmt.Fprintf(w, "[%d] %s\n", e.ErrorCode(), e.UserMessage())
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err.Error())
}
