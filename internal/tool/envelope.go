package tool

import "BlockScribe/internal/fault"

// Envelope is the uniform result of every operation. Digest fields in
// results always use the canonical 0x+64-hex form.
type Envelope struct {
	OK     bool        `json:"ok"`
	Error  string      `json:"error,omitempty"`
	Class  fault.Class `json:"class,omitempty"`
	Result any         `json:"result,omitempty"`
}

// Success wraps a result in a success envelope.
func Success(result any) Envelope {
	return Envelope{OK: true, Result: result}
}

// Failure wraps an error in a failure envelope, classifying it.
func Failure(err error) Envelope {
	return Envelope{OK: false, Error: err.Error(), Class: fault.ClassOf(err)}
}
