// Copyright (c) 2026 The ed25519-speccheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cases generates the Ed25519 edge-case vectors that separate
// verifiers by their handling of small-order points, the cofactor,
// malleable S values and non-canonical point encodings.
//
// Generation is deterministic in the seed. Every Case records the properties
// it was built with, from which Expect derives whether a verifier configured
// with given ed25519.Options accepts it.
package cases

import (
	"crypto/sha512"
	"encoding/hex"

	"github.com/pkg/errors"

	"github.com/novifinancial/ed25519-speccheck/ed25519"
	"github.com/novifinancial/ed25519-speccheck/edwards25519"
)

// A Property is a set of flags describing how a Case was constructed.
type Property uint

const (
	// SmallOrderA and SmallOrderR mark points in the 8-torsion subgroup.
	SmallOrderA Property = 1 << iota
	SmallOrderR
	// MixedOrderA and MixedOrderR mark points with both a torsion and a
	// prime-order component.
	MixedOrderA
	MixedOrderR
	// NonCanonicalA and NonCanonicalR mark the x = 0, sign bit set encoding.
	NonCanonicalA
	NonCanonicalR
	// LargeS marks S ≥ l, and HighBitsS marks S with any of its top three
	// bits set.
	LargeS
	HighBitsS
	// PassesCofactored, PassesCofactorless and PassesPreReducedCofactored
	// record which equation holds once S is reduced. Cases with a
	// non-canonical point carry none of them.
	PassesCofactored
	PassesCofactorless
	PassesPreReducedCofactored
)

// A Case is one generated vector.
type Case struct {
	Description string
	PublicKey   []byte
	Message     []byte
	Signature   []byte
	Properties  Property
}

// Has reports whether c has all of the properties in p.
func (c *Case) Has(p Property) bool {
	return c.Properties&p == p
}

// Expect reports whether a verifier running with opts accepts c.
func (c *Case) Expect(opts ed25519.Options) bool {
	if c.Properties&(NonCanonicalA|NonCanonicalR) != 0 {
		return false
	}
	if c.Has(LargeS) {
		switch opts.Scalar {
		case ed25519.ScalarReduce:
		case ed25519.ScalarHighBits:
			if c.Has(HighBitsS) {
				return false
			}
		default:
			return false
		}
	}
	if opts.RejectSmallOrder && c.Properties&(SmallOrderA|SmallOrderR) != 0 {
		return false
	}
	switch {
	case opts.PreReduceCofactor:
		return c.Has(PassesPreReducedCofactored)
	case opts.Cofactored:
		return c.Has(PassesCofactored)
	}
	return c.Has(PassesCofactorless)
}

// ErrExhausted is returned when no suitable message was found within the
// attempt bound.
var ErrExhausted = errors.New("cases: no suitable message found")

// maxAttempts bounds every message search. Each draw succeeds with
// probability at least 1/8.
const maxAttempts = 1 << 12

// Count is the number of cases returned by Generate.
const Count = 15

// Generate returns the edge-case vectors derived from seed, in their
// canonical order. Each construction draws from its own stream keyed by
// seed, so the vectors do not depend on each other.
func Generate(seed [32]byte) ([]Case, error) {
	var out []Case
	for i, gen := range []func(*stream) ([]Case, error){
		zeroSmallSmall,
		nonZeroMixedSmall,
		nonZeroSmallMixed,
		nonZeroMixedMixed,
		preReducedScalar,
		largeS,
		reallyLargeS,
		nonCanonicalR,
		nonCanonicalA,
	} {
		cs, err := gen(newStream(seed))
		if err != nil {
			return nil, errors.WithMessagef(err, "cases: construction %d", i)
		}
		out = append(out, cs...)
	}
	return out, nil
}

// Cases 0 and 1: S = 0, small A, R = -A.
func zeroSmallSmall(rng *stream) ([]Case, error) {
	A := pickSmall(rng)
	R := new(edwards25519.Point).Negate(A)
	S := edwards25519.NewScalar()
	aBytes, rBytes := encode(A), encode(R)

	// [k]A + R = 0
	holds := func(msg []byte) bool {
		k := challenge(rBytes, aBytes, msg)
		p := new(edwards25519.Point).ScalarMult(k, A)
		return p.Add(p, R).IsIdentity() == 1
	}
	pre := func(msg []byte) bool {
		return preReducedClears(challenge(rBytes, aBytes, msg), A)
	}

	msg, err := grind(rng, rng.bytes32(), and(not(holds), pre))
	if err != nil {
		return nil, err
	}
	c1 := Case{
		Description: "S = 0, small A, small R: passes cofactored, fails cofactorless, repudiable",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   signature(rBytes, S),
		Properties:  SmallOrderA | SmallOrderR | PassesCofactored | PassesPreReducedCofactored,
	}

	msg, err = grind(rng, msg, and(holds, pre))
	if err != nil {
		return nil, err
	}
	c2 := Case{
		Description: "S = 0, small A, small R: passes cofactored, passes cofactorless, repudiable",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   signature(rBytes, S),
		Properties:  SmallOrderA | SmallOrderR | PassesCofactored | PassesCofactorless | PassesPreReducedCofactored,
	}
	return []Case{c1, c2}, nil
}

// Cases 2 and 3: small A, R = [s]B - A.
func nonZeroMixedSmall(rng *stream) ([]Case, error) {
	S := rng.scalar()
	A := pickSmall(rng)
	R := new(edwards25519.Point).ScalarBaseMult(S)
	R.Subtract(R, A)
	aBytes, rBytes := encode(A), encode(R)

	// [k]A - A = 0
	holds := func(msg []byte) bool {
		k := challenge(rBytes, aBytes, msg)
		p := new(edwards25519.Point).ScalarMult(k, A)
		return p.Subtract(p, A).IsIdentity() == 1
	}
	pre := func(msg []byte) bool {
		return preReducedClears(challenge(rBytes, aBytes, msg), A)
	}

	msg, err := grind(rng, rng.bytes32(), and(not(holds), pre))
	if err != nil {
		return nil, err
	}
	c1 := Case{
		Description: "S > 0, small A, mixed R: passes cofactored, fails cofactorless, repudiable",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   signature(rBytes, S),
		Properties:  SmallOrderA | MixedOrderR | PassesCofactored | PassesPreReducedCofactored,
	}

	msg, err = grind(rng, msg, and(holds, pre))
	if err != nil {
		return nil, err
	}
	c2 := Case{
		Description: "S > 0, small A, mixed R: passes cofactored, passes cofactorless, repudiable",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   signature(rBytes, S),
		Properties:  SmallOrderA | MixedOrderR | PassesCofactored | PassesCofactorless | PassesPreReducedCofactored,
	}
	return []Case{c1, c2}, nil
}

// Cases 4 and 5: small R, A = [a]B - R, S = k·a.
func nonZeroSmallMixed(rng *stream) ([]Case, error) {
	a := rng.scalar()
	R := pickSmall(rng)
	A := new(edwards25519.Point).ScalarBaseMult(a)
	A.Subtract(A, R)
	aBytes, rBytes := encode(A), encode(R)

	// R - [k]R = 0
	holds := func(msg []byte) bool {
		k := challenge(rBytes, aBytes, msg)
		p := new(edwards25519.Point).ScalarMult(k, R)
		return p.Subtract(R, p).IsIdentity() == 1
	}
	sign := func(msg []byte) []byte {
		k := challenge(rBytes, aBytes, msg)
		return signature(rBytes, edwards25519.NewScalar().Multiply(k, a))
	}
	// The torsion component of A is -R.
	pre := func(msg []byte) bool {
		return preReducedClears(challenge(rBytes, aBytes, msg), R)
	}

	msg, err := grind(rng, rng.bytes32(), and(not(holds), pre))
	if err != nil {
		return nil, err
	}
	c1 := Case{
		Description: "S > 0, mixed A, small R: passes cofactored, fails cofactorless, leaks private key",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   sign(msg),
		Properties:  MixedOrderA | SmallOrderR | PassesCofactored | PassesPreReducedCofactored,
	}

	msg, err = grind(rng, msg, and(holds, pre))
	if err != nil {
		return nil, err
	}
	c2 := Case{
		Description: "S > 0, mixed A, small R: passes cofactored, passes cofactorless, leaks private key",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   sign(msg),
		Properties:  MixedOrderA | SmallOrderR | PassesCofactored | PassesCofactorless | PassesPreReducedCofactored,
	}
	return []Case{c1, c2}, nil
}

// Cases 6 and 7: A = [a]B + T, R = [r]B - T for a small T, and an honest S.
// The vector passing both equations comes first.
func nonZeroMixedMixed(rng *stream) ([]Case, error) {
	a := rng.scalar()
	nonce := rng.bytes32()
	T := pickSmall(rng)
	A := new(edwards25519.Point).ScalarBaseMult(a)
	A.Add(A, T)
	aBytes := encode(A)

	// sign returns the signature for msg, whether [k]T - T = 0, and whether
	// the pre-reduced cofactored equation holds.
	sign := func(msg []byte) (sig []byte, holds, pre bool) {
		r := nonceScalar(nonce, msg)
		R := new(edwards25519.Point).ScalarBaseMult(r)
		R.Subtract(R, T)
		rBytes := encode(R)
		k := challenge(rBytes, aBytes, msg)
		S := edwards25519.NewScalar().MultiplyAdd(k, a, r)
		p := new(edwards25519.Point).ScalarMult(k, T)
		return signature(rBytes, S), p.Subtract(p, T).IsIdentity() == 1, preReducedClears(k, T)
	}

	var (
		msg        []byte
		sig        []byte
		holds, pre bool
	)
	for i := 0; holds || !pre; i++ {
		if i == maxAttempts {
			return nil, ErrExhausted
		}
		msg = rng.bytes32()
		sig, holds, pre = sign(msg)
	}
	c1 := Case{
		Description: "S > 0, mixed A, mixed R: passes cofactored, fails cofactorless",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   sig,
		Properties:  MixedOrderA | MixedOrderR | PassesCofactored | PassesPreReducedCofactored,
	}

	for i := 0; !holds || !pre; i++ {
		if i == maxAttempts {
			return nil, ErrExhausted
		}
		msg = rng.bytes32()
		sig, holds, pre = sign(msg)
	}
	c2 := Case{
		Description: "S > 0, mixed A, mixed R: passes cofactored, passes cofactorless",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   sig,
		Properties:  MixedOrderA | MixedOrderR | PassesCofactored | PassesCofactorless | PassesPreReducedCofactored,
	}
	return []Case{c2, c1}, nil
}

// Case 8: A = [a]B + T, large-order R, with [8k mod l]T != 0, so that
// multiplying the scalars by the cofactor before reducing them gives a
// different answer than multiplying the points. Cases 0 to 7 are chosen so
// that both agree, which leaves this as the only case separating them.
func preReducedScalar(rng *stream) ([]Case, error) {
	a := rng.scalar()
	nonce := rng.bytes32()
	T := pickSmall(rng)
	A := new(edwards25519.Point).ScalarBaseMult(a)
	A.Add(A, T)
	aBytes := encode(A)

	msg := rng.bytes32()
	r := nonceScalar(nonce, msg)
	R := new(edwards25519.Point).ScalarBaseMult(r)
	rBytes := encode(R)

	usable := func(msg []byte) bool {
		k := challenge(rBytes, aBytes, msg)
		// The cofactorless equation must fail too, that is [k]T != 0.
		kT := new(edwards25519.Point).ScalarMult(k, T)
		return !preReducedClears(k, T) && kT.IsIdentity() == 0
	}
	msg, err := grind(rng, msg, usable)
	if err != nil {
		return nil, err
	}
	k := challenge(rBytes, aBytes, msg)
	S := edwards25519.NewScalar().MultiplyAdd(k, a, r)

	return []Case{{
		Description: "S > 0, mixed A, large order R: passes cofactored, fails pre-reduced cofactored, fails cofactorless",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   signature(rBytes, S),
		Properties:  MixedOrderA | PassesCofactored,
	}}, nil
}

// honest returns an honest signature over a fresh message, with the
// encodings of A and R and the reduced S.
func honest(rng *stream) (aBytes, msg, rBytes []byte, S *edwards25519.Scalar) {
	a := rng.scalar()
	nonce := rng.bytes32()
	A := new(edwards25519.Point).ScalarBaseMult(a)
	aBytes = encode(A)

	msg = rng.bytes32()
	r := nonceScalar(nonce, msg)
	rBytes = encode(new(edwards25519.Point).ScalarBaseMult(r))
	k := challenge(rBytes, aBytes, msg)
	S = edwards25519.NewScalar().MultiplyAdd(k, a, r)
	return aBytes, msg, rBytes, S
}

// Case 9: an honest signature with S replaced by S + l.
func largeS(rng *stream) ([]Case, error) {
	aBytes, msg, rBytes, S := honest(rng)
	s := addOrder(S.Bytes())
	return []Case{{
		Description: "S > l, large order A, large order R: passes both once reduced, breaks strong unforgeability",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   append(rBytes, s...),
		Properties:  largeSProperties(s) | PassesCofactored | PassesCofactorless | PassesPreReducedCofactored,
	}}, nil
}

// Case 10: an honest signature with l added to S until one of its top three
// bits is set, defeating the incomplete high bits check.
func reallyLargeS(rng *stream) ([]Case, error) {
	aBytes, msg, rBytes, S := honest(rng)
	s := S.Bytes()
	for s[31]&0xe0 == 0 {
		s = addOrder(s)
	}
	return []Case{{
		Description: "S much larger than l, large order A, large order R: passes both once reduced, fails high bits checks",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   append(rBytes, s...),
		Properties:  largeSProperties(s) | PassesCofactored | PassesCofactorless | PassesPreReducedCofactored,
	}}, nil
}

// negativeZero encodes (0, -1), a point of order 2, with x = 0 and the sign
// bit set.
var negativeZero = mustDecodeHex("ecffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

// Cases 11 and 12: R = (0, -1) with the negative zero encoding, A = [a]B - T.
// The first is signed over the canonical encoding of R, the second over the
// received bytes, so lax verifiers accept at most one of them depending on
// whether they re-encode R before hashing.
func nonCanonicalR(rng *stream) ([]Case, error) {
	a := rng.scalar()
	R := torsionPoint(4)
	rCanonical := encode(R)
	T := pickSmall(rng)
	A := new(edwards25519.Point).ScalarBaseMult(a)
	A.Subtract(A, T)
	aBytes := encode(A)

	holdsOver := func(rBytes []byte) func([]byte) bool {
		return func(msg []byte) bool {
			// R - [k]T = 0
			k := challenge(rBytes, aBytes, msg)
			p := new(edwards25519.Point).ScalarMult(k, T)
			return p.Subtract(R, p).IsIdentity() == 1
		}
	}
	sign := func(rBytes, msg []byte) []byte {
		k := challenge(rBytes, aBytes, msg)
		return signature(negativeZero, edwards25519.NewScalar().Multiply(k, a))
	}

	msg, err := grind(rng, rng.bytes32(), holdsOver(rCanonical))
	if err != nil {
		return nil, err
	}
	c1 := Case{
		Description: "S > 0, mixed A, small non-canonical R: hashed over the re-encoded R",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   sign(rCanonical, msg),
		Properties:  MixedOrderA | SmallOrderR | NonCanonicalR,
	}

	msg, err = grind(rng, msg, holdsOver(negativeZero))
	if err != nil {
		return nil, err
	}
	c2 := Case{
		Description: "S > 0, mixed A, small non-canonical R: hashed over the received R",
		PublicKey:   aBytes,
		Message:     msg,
		Signature:   sign(negativeZero, msg),
		Properties:  MixedOrderA | SmallOrderR | NonCanonicalR,
	}
	return []Case{c1, c2}, nil
}

// Cases 13 and 14: A = (0, -1) with the negative zero encoding, R = [s]B - A.
// The equation holds over the re-encoded A for the first and over the
// received bytes for the second, and not the other way around.
func nonCanonicalA(rng *stream) ([]Case, error) {
	S := rng.scalar()
	A := torsionPoint(4)
	aCanonical := encode(A)
	R := new(edwards25519.Point).ScalarBaseMult(S)
	R.Subtract(R, A)
	rBytes := encode(R)

	// [k]A - A = 0
	holdsOver := func(aBytes, msg []byte) bool {
		k := challenge(rBytes, aBytes, msg)
		p := new(edwards25519.Point).ScalarMult(k, A)
		return p.Subtract(p, A).IsIdentity() == 1
	}

	msg, err := grind(rng, rng.bytes32(), func(msg []byte) bool {
		return holdsOver(aCanonical, msg) && !holdsOver(negativeZero, msg)
	})
	if err != nil {
		return nil, err
	}
	c1 := Case{
		Description: "S > 0, negative zero non-canonical A, mixed R: holds if A is re-encoded",
		PublicKey:   negativeZero,
		Message:     msg,
		Signature:   signature(rBytes, S),
		Properties:  SmallOrderA | NonCanonicalA | MixedOrderR,
	}

	msg, err = grind(rng, msg, func(msg []byte) bool {
		return holdsOver(negativeZero, msg) && !holdsOver(aCanonical, msg)
	})
	if err != nil {
		return nil, err
	}
	c2 := Case{
		Description: "S > 0, negative zero non-canonical A, mixed R: holds over the received A",
		PublicKey:   negativeZero,
		Message:     msg,
		Signature:   signature(rBytes, S),
		Properties:  SmallOrderA | NonCanonicalA | MixedOrderR,
	}
	return []Case{c1, c2}, nil
}

// grind returns msg if ok(msg), and otherwise the first fresh message from
// rng for which ok holds.
func grind(rng *stream, msg []byte, ok func([]byte) bool) ([]byte, error) {
	for i := 0; i < maxAttempts; i++ {
		if ok(msg) {
			return msg, nil
		}
		msg = rng.bytes32()
	}
	return nil, ErrExhausted
}

func not(ok func([]byte) bool) func([]byte) bool {
	return func(msg []byte) bool { return !ok(msg) }
}

func and(ok1, ok2 func([]byte) bool) func([]byte) bool {
	return func(msg []byte) bool { return ok1(msg) && ok2(msg) }
}

var eight = func() *edwards25519.Scalar {
	s, err := edwards25519.NewScalar().SetCanonicalBytes(scalarBytes(8))
	if err != nil {
		panic(err)
	}
	return s
}()

// preReducedClears reports whether [8k mod l]T is the identity. For a
// signature that passes the cofactored equation and a public key with
// torsion component T, that is when the pre-reduced cofactored equation
// [8S]B = [8]R + [8k]A holds as well.
func preReducedClears(k *edwards25519.Scalar, T *edwards25519.Point) bool {
	eightK := edwards25519.NewScalar().Multiply(eight, k)
	return new(edwards25519.Point).ScalarMult(eightK, T).IsIdentity() == 1
}

// eightTorsion are the canonical encodings of the points of order dividing
// 8. The i-th point is i times the first one.
var eightTorsion = [8]string{
	"0100000000000000000000000000000000000000000000000000000000000000",
	"c7176a703d4dd84fba3c0b760d10670f2a2053fa2c39ccc64ec7fd7792ac037a",
	"0000000000000000000000000000000000000000000000000000000000000080",
	"26e8958fc2b227b045c3f489f2ef98f0d5dfac05d3c63339b13802886d53fc05",
	"ecffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff7f",
	"26e8958fc2b227b045c3f489f2ef98f0d5dfac05d3c63339b13802886d53fc85",
	"0000000000000000000000000000000000000000000000000000000000000000",
	"c7176a703d4dd84fba3c0b760d10670f2a2053fa2c39ccc64ec7fd7792ac03fa",
}

func torsionPoint(i int) *edwards25519.Point {
	p, err := new(edwards25519.Point).SetBytes(mustDecodeHex(eightTorsion[i]))
	if err != nil {
		panic(err)
	}
	return p
}

// pickSmall returns a random non-identity point of small order.
func pickSmall(rng *stream) *edwards25519.Point {
	return torsionPoint(int((rng.uint64()+1)%7) + 1)
}

// encode returns the canonical encoding of p. Points computed from valid
// points always have a non-zero Z.
func encode(p *edwards25519.Point) []byte {
	b, err := p.Bytes()
	if err != nil {
		panic(err)
	}
	return b
}

// challenge returns SHA-512(R || A || msg) reduced modulo l.
func challenge(rBytes, aBytes, msg []byte) *edwards25519.Scalar {
	h := sha512.New()
	h.Write(rBytes)
	h.Write(aBytes)
	h.Write(msg)
	k, err := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	if err != nil {
		panic(err)
	}
	return k
}

// nonceScalar returns SHA-512(nonce || msg) reduced modulo l.
func nonceScalar(nonce, msg []byte) *edwards25519.Scalar {
	h := sha512.New()
	h.Write(nonce)
	h.Write(msg)
	r, err := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	if err != nil {
		panic(err)
	}
	return r
}

func signature(rBytes []byte, S *edwards25519.Scalar) []byte {
	sig := make([]byte, 0, ed25519.SignatureSize)
	sig = append(sig, rBytes...)
	return append(sig, S.Bytes()...)
}

// addOrder returns s + l for a 32-byte little-endian s, without reducing.
// The result must fit in 256 bits.
func addOrder(s []byte) []byte {
	l := edwards25519.ScalarOrder()
	out := make([]byte, 32)
	var carry uint16
	for i := range out {
		sum := uint16(s[i]) + uint16(l[i]) + carry
		out[i] = byte(sum)
		carry = sum >> 8
	}
	return out
}

func largeSProperties(s []byte) Property {
	p := Property(0)
	if !edwards25519.IsCanonicalScalar(s) {
		p |= LargeS
	}
	if s[31]&0xe0 != 0 {
		p |= HighBitsS
	}
	return p
}

func scalarBytes(n byte) []byte {
	b := make([]byte, 32)
	b[0] = n
	return b
}

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
