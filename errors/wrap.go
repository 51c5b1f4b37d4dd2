package errors

import (
	goerrors "errors"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return goerrors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return goerrors.Join(errs...)
}

// Code returns the status code of the first *Error in err's chain, or UnknownCode.
func Code(err error) int {
	var ge *Error
	if goerrors.As(err, &ge) {
		return ge.Code
	}
	return UnknownCode
}

// Message returns the server message of the first *Error in err's chain, or err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ge *Error
	if goerrors.As(err, &ge) {
		return ge.Message
	}
	return err.Error()
}
