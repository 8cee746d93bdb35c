// Package electionerr defines the stable error taxonomy every operation in
// this engine reports through: a small set of named Kinds a caller can
// switch on, each carrying an HTTP status for the façade and a code for the
// wire format, plus an underlying error for logs and debugging that is
// never serialized back to a client.
package electionerr

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amarvote/evoting/log"
)

// Kind is one of the stable, user-visible error identifiers.
type Kind string

const (
	// Domain errors: client-caused, recoverable at the boundary.
	KindManifestInvalid    Kind = "ManifestInvalid"
	KindStateConflict      Kind = "StateConflict"
	KindUnknownGuardian    Kind = "UnknownGuardian"
	KindInsufficientQuorum Kind = "InsufficientQuorum"
	KindNonceMissing       Kind = "NonceMissing"

	// Cryptographic failures: adversarial or corrupted input.
	KindInvalidElement Kind = "InvalidElement"
	KindProofInvalid   Kind = "ProofInvalid"
	KindRangeExceeded  Kind = "RangeExceeded"
)

var httpStatus = map[Kind]int{
	KindManifestInvalid:    http.StatusBadRequest,
	KindStateConflict:      http.StatusConflict,
	KindUnknownGuardian:    http.StatusBadRequest,
	KindInsufficientQuorum: http.StatusUnprocessableEntity,
	KindNonceMissing:       http.StatusBadRequest,
	KindInvalidElement:     http.StatusBadRequest,
	KindProofInvalid:       http.StatusUnprocessableEntity,
	KindRangeExceeded:      http.StatusUnprocessableEntity,
}

var code = map[Kind]int{
	KindManifestInvalid:    1001,
	KindStateConflict:      1002,
	KindUnknownGuardian:    1003,
	KindInsufficientQuorum: 1004,
	KindNonceMissing:       1005,
	KindInvalidElement:     2001,
	KindProofInvalid:       2002,
	KindRangeExceeded:      2003,
}

// Error is the error type every exported operation returns for anything
// that is not a programmer error. It carries enough to answer an HTTP
// request directly, and enough to log without leaking secret material: Err
// must never embed scalar, nonce, or private-key values.
type Error struct {
	Kind Kind
	Err  error
}

// New builds an Error of the given kind wrapping a formatted message.
func New(kind Kind, format string, args ...any) Error {
	return Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap builds an Error of the given kind wrapping an existing error.
func Wrap(kind Kind, err error) Error {
	return Error{Kind: kind, Err: err}
}

// Error implements the error interface.
func (e Error) Error() string { return e.Err.Error() }

// Unwrap allows errors.Is/errors.As to see through to the underlying error.
func (e Error) Unwrap() error { return e.Err }

// Code returns the stable numeric code for this error's Kind.
func (e Error) Code() int { return code[e.Kind] }

// HTTPStatus returns the HTTP status this error's Kind maps to.
func (e Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// MarshalJSON renders {"kind":..., "code":..., "error":...}.
func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  Kind   `json:"kind"`
		Code  int    `json:"code"`
		Error string `json:"error"`
	}{Kind: e.Kind, Code: e.Code(), Error: e.Err.Error()})
}

// Write serializes e as JSON and writes it with its HTTP status.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn(err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	if log.Level() == log.LevelDebug {
		log.Debugw("election error response", "kind", e.Kind, "code", e.Code(), "httpStatus", e.HTTPStatus())
	}
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, string(msg), e.HTTPStatus())
}

// Withf returns a copy of e with the formatted string appended to Err.
func (e Error) Withf(format string, args ...any) Error {
	return Error{Kind: e.Kind, Err: fmt.Errorf("%w: %s", e.Err, fmt.Sprintf(format, args...))}
}

// IsKind reports whether err is an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e Error
	if ae, ok := err.(Error); ok {
		e = ae
		return e.Kind == kind
	}
	return false
}
