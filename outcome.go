// Copyright (c) 2026 The ed25519-speccheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package speccheck

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/novifinancial/ed25519-speccheck/ed25519"
)

// An Outcome is the classified result of one verification.
type Outcome int

const (
	Valid Outcome = iota
	InvalidPublicKey
	InvalidSignature
	EquationMismatch
	DomainError
	// Rejected is the outcome of a failure that carries no reason, as
	// returned by boolean verifiers.
	Rejected
)

// Classify maps the error returned by a VerifyFunc to an Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Valid
	case errors.Is(err, ed25519.ErrDomain):
		return DomainError
	case errors.Is(err, ed25519.ErrInvalidPublicKey):
		return InvalidPublicKey
	case errors.Is(err, ed25519.ErrInvalidSignature):
		return InvalidSignature
	case errors.Is(err, ed25519.ErrEquationMismatch):
		return EquationMismatch
	default:
		return Rejected
	}
}

// Accepted reports whether o is Valid.
func (o Outcome) Accepted() bool { return o == Valid }

// Symbol returns "V" for an accepted signature and "X" otherwise.
func (o Outcome) Symbol() string {
	if o.Accepted() {
		return "V"
	}
	return "X"
}

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case InvalidPublicKey:
		return "invalid-public-key"
	case InvalidSignature:
		return "invalid-signature"
	case EquationMismatch:
		return "equation-mismatch"
	case DomainError:
		return "domain-error"
	case Rejected:
		return "rejected"
	default:
		return "Outcome(" + strconv.Itoa(int(o)) + ")"
	}
}
