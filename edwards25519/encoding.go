// Copyright (c) 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edwards25519

import (
	"errors"

	"github.com/novifinancial/ed25519-speccheck/field"
)

// Decoding errors. They are returned as is by SetBytes and the scalar
// decoders, and are wrapped by the verifier.
var (
	// ErrInvalidLength is returned for inputs that are not exactly 32 bytes.
	ErrInvalidLength = errors.New("edwards25519: invalid encoding length")

	// ErrNonCanonical is returned for encodings of an integer that is not
	// strictly less than its modulus, and for the x = 0 encoding with the sign
	// bit set. Such encodings are never reduced into range.
	ErrNonCanonical = errors.New("edwards25519: non-canonical encoding")

	// ErrNotOnCurve is returned when no point with the encoded y-coordinate
	// exists on the curve.
	ErrNotOnCurve = errors.New("edwards25519: point not on curve")
)

// ErrDomain is returned by Bytes if the point has a zero Z coordinate, which
// can't happen for points produced by this package.
var ErrDomain = field.ErrDomain

// SetBytes sets v = x, where x is a 32-byte encoding of v, following RFC 8032,
// Section 5.1.3, and returns v.
//
// If x does not represent a valid point on the curve, SetBytes returns nil and
// an error and the receiver is unchanged. Unlike most Ed25519 implementations,
// SetBytes rejects the non-canonical encodings of y in [2^255-19, 2^255) with
// ErrNonCanonical, as well as x = 0 with the sign bit set. Small-order points,
// including the identity, are accepted.
func (v *Point) SetBytes(x []byte) (*Point, error) {
	if len(x) != 32 {
		return nil, ErrInvalidLength
	}

	var yBytes [32]byte
	copy(yBytes[:], x)
	yBytes[31] &= 0x7f
	y, err := new(field.Element).SetCanonicalBytes(yBytes[:])
	if err != nil {
		return nil, ErrNonCanonical
	}

	// -x² + y² = 1 + dx²y²
	// x² + dx²y² = x²(dy² + 1) = y² - 1
	// x² = (y² - 1) / (dy² + 1)

	// u = y² - 1
	y2 := new(field.Element).Square(y)
	u := new(field.Element).Subtract(y2, feOne)

	// w = dy² + 1, never zero because -1/d is not a square
	w := new(field.Element).Multiply(y2, d)
	w = w.Add(w, feOne)

	// x = +√(u/w)
	xx, wasSquare := new(field.Element).SqrtRatio(u, w)
	if wasSquare == 0 {
		return nil, ErrNotOnCurve
	}

	// RFC 8032, Section 5.1.3, step 4: x = 0 with the sign bit set is not a
	// valid encoding.
	signBit := int(x[31] >> 7)
	if xx.IsZero()&signBit == 1 {
		return nil, ErrNonCanonical
	}

	// Select the negative square root if the sign bit is set.
	xx.CondNegate(xx, signBit)

	t := new(field.Element).Multiply(xx, y)
	if !isOnCurve(xx, y, feOne, t) {
		return nil, ErrNotOnCurve
	}

	v.x.Set(xx)
	v.y.Set(y)
	v.z.One()
	v.t.Set(t)
	return v, nil
}

// Bytes returns the canonical 32-byte encoding of v, according to RFC 8032,
// Section 5.1.2.
func (v *Point) Bytes() ([]byte, error) {
	// This function is outlined to make the allocations inline in the caller
	// rather than happen on the heap.
	var buf [32]byte
	return v.bytes(&buf)
}

func (v *Point) bytes(buf *[32]byte) ([]byte, error) {
	checkInitialized(v)

	zInv, err := new(field.Element).Invert(&v.z) // zInv = 1 / Z
	if err != nil {
		return nil, err
	}
	var x, y field.Element
	x.Multiply(&v.x, zInv) // x = X / Z
	y.Multiply(&v.y, zInv) // y = Y / Z

	out := copyFieldElement(buf, &y)
	out[31] |= byte(x.IsNegative() << 7)
	return out, nil
}

func copyFieldElement(buf *[32]byte, v *field.Element) []byte {
	copy(buf[:], v.Bytes())
	return buf[:]
}
