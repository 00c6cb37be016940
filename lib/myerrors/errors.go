package myerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type httpErrorCoder interface {
	error
	GetHTTPErrorCode() int
}

type kind int

const (
	kindDefault kind = iota
	kindConfiguration
	kindSignature
)

type httpError struct {
	httpCode int
	kind     kind
	err      error
}

func (e httpError) Error() string {
	return fmt.Sprintf("status: %d, err: %s", e.httpCode, e.err.Error())
}

func (e httpError) Unwrap() error {
	return e.err
}

func (e httpError) GetHTTPErrorCode() int {
	return e.httpCode
}

func newError(httpCode int, err error) *httpError {
	return &httpError{
		httpCode: httpCode,
		err:      err,
	}
}

func NewInvalidInputError(err error) *httpError {
	return newError(http.StatusBadRequest, err)
}

func NewInvalidInputErrorf(format string, args ...interface{}) *httpError {
	return NewInvalidInputError(fmt.Errorf(format, args...))
}

func NewNotFoundError(err error) *httpError {
	return newError(http.StatusNotFound, err)
}

func NewAuthenticationError(err error) *httpError {
	return newError(http.StatusForbidden, err)
}

// NewSignatureError reports an inbound message whose authenticity could not be verified.
func NewSignatureError(err error) *httpError {
	e := newError(http.StatusBadRequest, err)
	e.kind = kindSignature
	return e
}

// NewConfigurationError reports missing server-side configuration. The message names the
// category of what is missing, never the secret itself.
func NewConfigurationError(category string) *httpError {
	e := newError(http.StatusInternalServerError, fmt.Errorf("server configuration error: %s", category))
	e.kind = kindConfiguration
	return e
}

func NewInternalError(err error) *httpError {
	return newError(http.StatusInternalServerError, err)
}

func NewNotImplementedError(err error) *httpError {
	return newError(http.StatusNotImplemented, err)
}

func NewUnavailableError(err error) *httpError {
	return newError(http.StatusServiceUnavailable, err)
}

func GetHTTPStatus(err error) int {
	if err != nil {
		var myError httpErrorCoder
		if errors.As(err, &myError) {
			return myError.GetHTTPErrorCode()
		}
	}
	return http.StatusInternalServerError
}

func IsConfigurationError(err error) bool {
	return isKind(err, kindConfiguration)
}

func IsSignatureError(err error) bool {
	return isKind(err, kindSignature)
}

func IsNotFoundError(err error) bool {
	var myError *httpError
	return errors.As(err, &myError) && myError.httpCode == http.StatusNotFound
}

func isKind(err error, k kind) bool {
	var myError *httpError
	return errors.As(err, &myError) && myError.kind == k
}

// Message returns the error text without the status decoration, suitable to echo to a caller.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var myError *httpError
	for errors.As(err, &myError) {
		err = myError.err
	}
	return err.Error()
}
