// Copyright (c) 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ed25519 implements strict RFC 8032 Ed25519 signature verification
// with explicit failure reasons.
//
// The default policy rejects every non-canonical input: S ≥ l, point
// encodings with y ≥ p, and x = 0 encoded with the sign bit set. The check on
// S, the verification equation (cofactored or not) and the treatment of
// small-order points are configurable through Options, so that the behavior
// of other verifiers can be reproduced and compared.
//
// This package only verifies. There is no key generation or signing API.
package ed25519

import (
	"crypto/sha512"
	"crypto/subtle"
	"errors"
	"strconv"

	"github.com/novifinancial/ed25519-speccheck/edwards25519"
)

const (
	// PublicKeySize is the size, in bytes, of public keys as used in this package.
	PublicKeySize = 32
	// SignatureSize is the size, in bytes, of signatures generated and verified by this package.
	SignatureSize = 64
)

// Verification failure reasons. Every error returned by Verify is a
// *VerifyError and matches exactly one of these with errors.Is.
var (
	ErrInvalidPublicKey = errors.New("ed25519: invalid public key")
	ErrInvalidSignature = errors.New("ed25519: invalid signature encoding")
	ErrEquationMismatch = errors.New("ed25519: verification equation does not hold")

	// ErrSmallOrder is the cause of a rejection of a point of small order,
	// when Options.RejectSmallOrder is set.
	ErrSmallOrder = errors.New("ed25519: point of small order")

	// ErrDomain is returned if an intermediate value could not be encoded,
	// which is an internal inconsistency and not a property of the input.
	ErrDomain = edwards25519.ErrDomain
)

// VerifyError is the error returned by Verify. Reason is one of
// ErrInvalidPublicKey, ErrInvalidSignature, ErrEquationMismatch or ErrDomain,
// and Err, if not nil, is the underlying cause, such as
// edwards25519.ErrNonCanonical.
type VerifyError struct {
	Reason error
	Err    error
}

func (e *VerifyError) Error() string {
	if e.Err == nil {
		return e.Reason.Error()
	}
	return e.Reason.Error() + ": " + e.Err.Error()
}

// Unwrap makes both the reason and the cause visible to errors.Is and
// errors.As.
func (e *VerifyError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

// ScalarPolicy selects how the S half of a signature is decoded.
type ScalarPolicy int

const (
	// ScalarStrict rejects S ≥ l, as required by RFC 8032.
	ScalarStrict ScalarPolicy = iota
	// ScalarReduce reduces S modulo l, accepting malleable signatures.
	ScalarReduce
	// ScalarHighBits rejects S only if any of its top three bits is set, and
	// reduces it otherwise. This is the incomplete check performed by ref10
	// and the libraries derived from it.
	ScalarHighBits
)

func (p ScalarPolicy) String() string {
	switch p {
	case ScalarStrict:
		return "strict"
	case ScalarReduce:
		return "reduce"
	case ScalarHighBits:
		return "highbits"
	default:
		return "ScalarPolicy(" + strconv.Itoa(int(p)) + ")"
	}
}

// Options configures a Verifier. The zero value is strict RFC 8032
// verification with the cofactorless equation.
type Options struct {
	// Scalar selects the decoding of S.
	Scalar ScalarPolicy

	// Cofactored selects the equation [8][S]B = [8]R + [8][k]A instead of
	// [S]B = R + [k]A.
	Cofactored bool

	// PreReduceCofactor selects the cofactored equation with the cofactor
	// folded into the scalars, [8S mod l]B = [8]R + [8k mod l]A. It differs
	// from Cofactored when 8k wraps around l and A has a torsion component.
	// It implies Cofactored.
	PreReduceCofactor bool

	// RejectSmallOrder rejects public keys and R values in the 8-torsion
	// subgroup, including the identity.
	RejectSmallOrder bool
}

// A Verifier checks signatures under a fixed set of Options. It is safe for
// concurrent use.
type Verifier struct {
	opts Options
}

// NewVerifier returns a Verifier applying opts.
func NewVerifier(opts Options) *Verifier {
	return &Verifier{opts: opts}
}

var defaultVerifier = NewVerifier(Options{})

// Verify reports whether sig is a valid signature of message by publicKey,
// under strict RFC 8032 rules. It returns nil if the signature is valid, and
// a *VerifyError otherwise.
func Verify(publicKey, message, sig []byte) error {
	return defaultVerifier.Verify(publicKey, message, sig)
}

// VerifyWithOptions is like Verify, but applies opts. A nil opts is the same
// as Verify.
func VerifyWithOptions(publicKey, message, sig []byte, opts *Options) error {
	if opts == nil {
		return Verify(publicKey, message, sig)
	}
	return NewVerifier(*opts).Verify(publicKey, message, sig)
}

// Verify reports whether sig is a valid signature of message by publicKey. It
// returns nil if the signature is valid, and a *VerifyError otherwise.
//
// The inputs are never modified.
func (v *Verifier) Verify(publicKey, message, sig []byte) error {
	if len(publicKey) != PublicKeySize {
		return &VerifyError{ErrInvalidPublicKey, edwards25519.ErrInvalidLength}
	}
	if len(sig) != SignatureSize {
		return &VerifyError{ErrInvalidSignature, edwards25519.ErrInvalidLength}
	}

	S, err := decodeS(sig[32:], v.opts.Scalar)
	if err != nil {
		return &VerifyError{ErrInvalidSignature, err}
	}

	A, err := new(edwards25519.Point).SetBytes(publicKey)
	if err != nil {
		return &VerifyError{ErrInvalidPublicKey, err}
	}

	R, err := new(edwards25519.Point).SetBytes(sig[:32])
	if err != nil {
		return &VerifyError{ErrInvalidSignature, err}
	}

	if v.opts.RejectSmallOrder {
		if A.IsSmallOrder() == 1 {
			return &VerifyError{ErrInvalidPublicKey, ErrSmallOrder}
		}
		if R.IsSmallOrder() == 1 {
			return &VerifyError{ErrInvalidSignature, ErrSmallOrder}
		}
	}

	// Both encodings are canonical at this point, so hashing the received
	// bytes is the same as hashing re-encoded points.
	h := sha512.New()
	h.Write(sig[:32])
	h.Write(publicKey)
	h.Write(message)
	var digest [64]byte
	h.Sum(digest[:0])
	k, err := edwards25519.NewScalar().SetUniformBytes(digest[:])
	if err != nil {
		return &VerifyError{ErrDomain, err}
	}

	switch {
	case v.opts.PreReduceCofactor:
		return verifyPreReducedCofactored(A, R, S, k)
	case v.opts.Cofactored:
		return verifyCofactored(A, R, S, k)
	}
	return verifyCofactorless(A, R, S, k)
}

// verifyCofactorless checks [S]B = R + [k]A by comparing canonical encodings.
func verifyCofactorless(A, R *edwards25519.Point, S, k *edwards25519.Scalar) error {
	lhs := new(edwards25519.Point).ScalarBaseMult(S)
	rhs := new(edwards25519.Point).ScalarMult(k, A)
	rhs.Add(rhs, R)

	lhsBytes, err := lhs.Bytes()
	if err != nil {
		return &VerifyError{Reason: ErrDomain}
	}
	rhsBytes, err := rhs.Bytes()
	if err != nil {
		return &VerifyError{Reason: ErrDomain}
	}
	if subtle.ConstantTimeCompare(lhsBytes, rhsBytes) != 1 {
		return &VerifyError{Reason: ErrEquationMismatch}
	}
	return nil
}

// verifyCofactored checks [8]([S]B - [k]A - R) = 0.
func verifyCofactored(A, R *edwards25519.Point, S, k *edwards25519.Scalar) error {
	minusK := edwards25519.NewScalar().Negate(k)
	check := new(edwards25519.Point).DoubleScalarMult(minusK, A, S)
	check.Subtract(check, R)
	if check.MultByCofactor(check).IsIdentity() != 1 {
		return &VerifyError{Reason: ErrEquationMismatch}
	}
	return nil
}

var eight = func() *edwards25519.Scalar {
	var b [32]byte
	b[0] = 8
	s, err := edwards25519.NewScalar().SetCanonicalBytes(b[:])
	if err != nil {
		panic(err)
	}
	return s
}()

// verifyPreReducedCofactored checks [8S]B - [8k]A - [8]R = 0, with 8S and
// 8k reduced modulo l.
func verifyPreReducedCofactored(A, R *edwards25519.Point, S, k *edwards25519.Scalar) error {
	eightS := edwards25519.NewScalar().Multiply(eight, S)
	minusEightK := edwards25519.NewScalar().Multiply(eight, k)
	minusEightK.Negate(minusEightK)
	check := new(edwards25519.Point).DoubleScalarMult(minusEightK, A, eightS)
	check.Subtract(check, new(edwards25519.Point).MultByCofactor(R))
	if check.IsIdentity() != 1 {
		return &VerifyError{Reason: ErrEquationMismatch}
	}
	return nil
}

// decodeS decodes the S half of a signature according to policy.
func decodeS(b []byte, policy ScalarPolicy) (*edwards25519.Scalar, error) {
	switch policy {
	case ScalarReduce:
		return edwards25519.NewScalar().SetBytesModOrder(b)
	case ScalarHighBits:
		if b[31]&0xe0 != 0 {
			return nil, edwards25519.ErrNonCanonical
		}
		return edwards25519.NewScalar().SetBytesModOrder(b)
	default:
		return edwards25519.NewScalar().SetCanonicalBytes(b)
	}
}
