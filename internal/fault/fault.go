// Package fault defines the error taxonomy shared by every operation.
// A Fault carries a Class that the dispatcher maps into the response
// envelope, so callers can distinguish their own mistakes (bad digests,
// sandbox violations) from recoverable conditions and external failures.
package fault

import (
	"errors"
	"fmt"
)

// Class identifies the category of a failure.
type Class string

const (
	// InvalidFormat marks a malformed identifier, digest, or address.
	InvalidFormat Class = "invalid_format"

	// PathTraversal marks a file input resolving outside the sandbox root.
	PathTraversal Class = "path_traversal"

	// SymlinkNotAllowed marks a file input that is a symbolic link.
	SymlinkNotAllowed Class = "symlink_not_allowed"

	// NotFound marks a referenced block or bundle that does not exist.
	NotFound Class = "not_found"

	// MissingDecryptionKey marks an encrypted bundle read without a key.
	MissingDecryptionKey Class = "missing_decryption_key"

	// DecryptionFailed marks a bundle the supplied key could not open.
	DecryptionFailed Class = "decryption_failed"

	// External marks a failed ledger or content store call.
	External Class = "external_failure"

	// Unknown is the fallback for unclassified errors.
	Unknown Class = "unknown"
)

// Fault is a classified error.
type Fault struct {
	Class Class  // Class is the taxonomy entry
	Msg   string // Msg describes the failure
	Err   error  // Err is the wrapped cause, may be nil
}

// Error returns the message, with the cause appended when present.
func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Msg, f.Err)
	}
	return f.Msg
}

// Unwrap returns the wrapped cause.
func (f *Fault) Unwrap() error {
	return f.Err
}

// New creates a classified error from a format string.
func New(class Class, format string, args ...any) error {
	return &Fault{Class: class, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a class and message to an underlying error.
func Wrap(class Class, err error, format string, args ...any) error {
	return &Fault{Class: class, Msg: fmt.Sprintf(format, args...), Err: err}
}

// ClassOf returns the class of an error, or Unknown if the error
// carries no classification. A nil error has no class.
func ClassOf(err error) Class {
	if err == nil {
		return ""
	}

	var f *Fault
	if errors.As(err, &f) {
		return f.Class
	}

	return Unknown
}

// Is reports whether the error carries the given class.
func Is(err error, class Class) bool {
	return ClassOf(err) == class
}
