/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies protocol errors.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindMalformedInput
	KindKeyGeneration
	KindInvalidCredDef
	KindRequestVerification
	KindRegistryFull
	KindStaleWitness
	KindUnsatisfiablePredicate
	KindPresentationInvalid
	KindReplayedNonce
	KindInvalidState
	KindCredentialRevoked
	KindUnsupported
)

//nolint:gochecknoglobals
var kindNames = map[Kind]string{
	KindUnknown:                "unknown error",
	KindMalformedInput:         "malformed input",
	KindKeyGeneration:          "key generation error",
	KindInvalidCredDef:         "invalid credential definition",
	KindRequestVerification:    "credential request verification error",
	KindRegistryFull:           "revocation registry full",
	KindStaleWitness:           "stale witness",
	KindUnsatisfiablePredicate: "unsatisfiable predicate",
	KindPresentationInvalid:    "invalid presentation",
	KindReplayedNonce:          "replayed nonce",
	KindInvalidState:           "invalid state",
	KindCredentialRevoked:      "credential revoked",
	KindUnsupported:            "unsupported operation",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return kindNames[KindUnknown]
}

// Sentinels for errors.Is.
var (
	ErrMalformedInput         = &Error{Kind: KindMalformedInput}
	ErrKeyGeneration          = &Error{Kind: KindKeyGeneration}
	ErrInvalidCredDef         = &Error{Kind: KindInvalidCredDef}
	ErrRequestVerification    = &Error{Kind: KindRequestVerification}
	ErrRegistryFull           = &Error{Kind: KindRegistryFull}
	ErrStaleWitness           = &Error{Kind: KindStaleWitness}
	ErrUnsatisfiablePredicate = &Error{Kind: KindUnsatisfiablePredicate}
	ErrPresentationInvalid    = &Error{Kind: KindPresentationInvalid}
	ErrReplayedNonce          = &Error{Kind: KindReplayedNonce}
	ErrInvalidState           = &Error{Kind: KindInvalidState}
	ErrCredentialRevoked      = &Error{Kind: KindCredentialRevoked}
	ErrUnsupported            = &Error{Kind: KindUnsupported}
)

// Error is a classified protocol error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// NewError creates an error of the given kind.
func NewError(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// WrapError classifies cause under kind. A nil cause yields nil.
func WrapError(kind Kind, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}

	return errors.WithStack(&Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause})
}

func (e *Error) Error() string {
	msg := e.Kind.String()

	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same kind when target carries no message, which is how sentinels are built.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error) //nolint:errorlint
	if !ok {
		return false
	}

	return t.Kind == e.Kind && t.Message == "" && t.Cause == nil
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}
