// Copyright (c) 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edwards25519

import (
	"crypto/subtle"
	"encoding/binary"
	"math/bits"
)

// A Scalar is an integer modulo
//
//	l = 2^252 + 27742317777372353535851937790883648493
//
// which is the prime order of the edwards25519 group.
//
// This type works similarly to math/big.Int, and all arguments and
// receivers are allowed to alias.
//
// The zero value is a valid zero element.
type Scalar struct {
	// s is the scalar in the Montgomery domain, in the format of
	// fiat-crypto's Montgomery arithmetic: little-endian 64-bit limbs of
	// s·R mod l, with R = 2^256.
	s [4]uint64
}

// scalarOrder is l as little-endian 64-bit limbs.
var scalarOrder = [4]uint64{0x5812631a5cf5d3ed, 0x14def9dea2f79cd6, 0, 0x1000000000000000}

// scalarOrderBytes is the little-endian encoding of l.
var scalarOrderBytes = [32]byte{
	0xed, 0xd3, 0xf5, 0x5c, 0x1a, 0x63, 0x12, 0x58,
	0xd6, 0x9c, 0xf7, 0xa2, 0xde, 0xf9, 0xde, 0x14,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10,
}

// scalarM0 is -l⁻¹ mod 2^64.
const scalarM0 = 0xd2b51da312547e1b

var (
	// scalarR2 is R² mod l, used to convert into the Montgomery domain.
	scalarR2 = [4]uint64{0xa40611e3449c0f01, 0xd00e1ba768859347, 0xceec73d217f5be65, 0x0399411b7c309a3d}
	// scalarR3 is R³ mod l, used to reduce the upper half of wide inputs.
	scalarR3 = [4]uint64{0x2a9e49687b83a2db, 0x278324e6aef7f3ec, 0x8065dc6c04ec5b65, 0x0e530b773599cec7}
)

// NewScalar returns a new zero Scalar.
func NewScalar() *Scalar {
	return &Scalar{}
}

// ScalarOrder returns the little-endian encoding of l, the order of the
// prime-order subgroup.
func ScalarOrder() []byte {
	b := scalarOrderBytes
	return b[:]
}

// Set sets s = x, and returns s.
func (s *Scalar) Set(x *Scalar) *Scalar {
	*s = *x
	return s
}

// Add sets s = x + y mod l, and returns s.
func (s *Scalar) Add(x, y *Scalar) *Scalar {
	// Both inputs are below l < 2^253, so the sum fits in 256 bits.
	var sum [4]uint64
	var c uint64
	sum[0], c = bits.Add64(x.s[0], y.s[0], 0)
	sum[1], c = bits.Add64(x.s[1], y.s[1], c)
	sum[2], c = bits.Add64(x.s[2], y.s[2], c)
	sum[3], _ = bits.Add64(x.s[3], y.s[3], c)
	s.s = scalarCondSubtract(sum, 0)
	return s
}

// Subtract sets s = x - y mod l, and returns s.
func (s *Scalar) Subtract(x, y *Scalar) *Scalar {
	var diff [4]uint64
	var b uint64
	diff[0], b = bits.Sub64(x.s[0], y.s[0], 0)
	diff[1], b = bits.Sub64(x.s[1], y.s[1], b)
	diff[2], b = bits.Sub64(x.s[2], y.s[2], b)
	diff[3], b = bits.Sub64(x.s[3], y.s[3], b)

	// Add l back if the subtraction borrowed.
	mask := -b
	var c uint64
	diff[0], c = bits.Add64(diff[0], scalarOrder[0]&mask, 0)
	diff[1], c = bits.Add64(diff[1], scalarOrder[1]&mask, c)
	diff[2], c = bits.Add64(diff[2], scalarOrder[2]&mask, c)
	diff[3], _ = bits.Add64(diff[3], scalarOrder[3]&mask, c)
	s.s = diff
	return s
}

// Negate sets s = -x mod l, and returns s.
func (s *Scalar) Negate(x *Scalar) *Scalar {
	return s.Subtract(&Scalar{}, x)
}

// Multiply sets s = x * y mod l, and returns s.
func (s *Scalar) Multiply(x, y *Scalar) *Scalar {
	s.s = scalarMontMul(&x.s, &y.s)
	return s
}

// MultiplyAdd sets s = x * y + z mod l, and returns s.
func (s *Scalar) MultiplyAdd(x, y, z *Scalar) *Scalar {
	zCopy := new(Scalar).Set(z)
	return s.Multiply(x, y).Add(s, zCopy)
}

// SetCanonicalBytes sets s = x, where x is a 32-byte little-endian encoding of
// s, and returns s. If x is not a canonical encoding of s, that is, if the
// encoded integer is not strictly less than l, SetCanonicalBytes returns nil
// and ErrNonCanonical, and the receiver is unchanged.
func (s *Scalar) SetCanonicalBytes(x []byte) (*Scalar, error) {
	if len(x) != 32 {
		return nil, ErrInvalidLength
	}
	if !IsCanonicalScalar(x) {
		return nil, ErrNonCanonical
	}
	w := scalarWords(x)
	s.s = scalarMontMul(&w, &scalarR2)
	return s, nil
}

// IsCanonicalScalar reports whether the 32-byte little-endian integer x is
// strictly less than l. It runs in constant time.
func IsCanonicalScalar(x []byte) bool {
	if len(x) != 32 {
		return false
	}
	w := scalarWords(x)
	var b uint64
	_, b = bits.Sub64(w[0], scalarOrder[0], 0)
	_, b = bits.Sub64(w[1], scalarOrder[1], b)
	_, b = bits.Sub64(w[2], scalarOrder[2], b)
	_, b = bits.Sub64(w[3], scalarOrder[3], b)
	return b == 1
}

// SetBytesModOrder sets s = x mod l, where x is a 32-byte little-endian
// integer of any value, and returns s. If x is not of the right length,
// SetBytesModOrder returns nil and an error, and the receiver is unchanged.
//
// Verifiers that reduce S instead of rejecting it are exactly the ones that
// accept malleable signatures.
func (s *Scalar) SetBytesModOrder(x []byte) (*Scalar, error) {
	if len(x) != 32 {
		return nil, ErrInvalidLength
	}
	w := scalarWords(x)
	// w < 2^256 and R2 < l, so the Montgomery reduction bound still holds.
	s.s = scalarMontMul(&w, &scalarR2)
	return s, nil
}

// SetUniformBytes sets s = x mod l, where x is a 64-byte little-endian
// integer, and returns s. If x is not of the right length, SetUniformBytes
// returns nil and an error, and the receiver is unchanged.
//
// This is how the SHA-512 challenge of an Ed25519 signature is mapped to a
// scalar.
func (s *Scalar) SetUniformBytes(x []byte) (*Scalar, error) {
	if len(x) != 64 {
		return nil, ErrInvalidLength
	}
	lo := scalarWords(x[:32])
	hi := scalarWords(x[32:])

	// x = lo + hi * 2^256, so x·R = lo·R + hi·R·R. Each term is one
	// Montgomery multiplication away: lo·R2·R⁻¹ and hi·R3·R⁻¹.
	var a, b Scalar
	a.s = scalarMontMul(&lo, &scalarR2)
	b.s = scalarMontMul(&hi, &scalarR3)
	return s.Add(&a, &b), nil
}

// Bytes returns the canonical 32-byte little-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	// This function is outlined to make the allocations inline in the caller
	// rather than happen on the heap.
	var encoded [32]byte
	return s.bytes(&encoded)
}

func (s *Scalar) bytes(out *[32]byte) []byte {
	one := [4]uint64{1, 0, 0, 0}
	w := scalarMontMul(&s.s, &one)
	binary.LittleEndian.PutUint64(out[0:8], w[0])
	binary.LittleEndian.PutUint64(out[8:16], w[1])
	binary.LittleEndian.PutUint64(out[16:24], w[2])
	binary.LittleEndian.PutUint64(out[24:32], w[3])
	return out[:]
}

// Equal returns 1 if s and t are equal, and 0 otherwise.
func (s *Scalar) Equal(t *Scalar) int {
	var diff uint64
	diff |= s.s[0] ^ t.s[0]
	diff |= s.s[1] ^ t.s[1]
	diff |= s.s[2] ^ t.s[2]
	diff |= s.s[3] ^ t.s[3]
	return subtle.ConstantTimeEq(int32((diff>>32)|(diff&0xffffffff)), 0)
}

func scalarWords(x []byte) [4]uint64 {
	return [4]uint64{
		binary.LittleEndian.Uint64(x[0:8]),
		binary.LittleEndian.Uint64(x[8:16]),
		binary.LittleEndian.Uint64(x[16:24]),
		binary.LittleEndian.Uint64(x[24:32]),
	}
}

// scalarMontMul returns a·b·R⁻¹ mod l, for a < 2^256 and b < l.
//
// It is the CIOS Montgomery multiplication: for each limb of b, accumulate
// a·b[i] and then add the multiple of l that clears the lowest limb.
func scalarMontMul(a, b *[4]uint64) [4]uint64 {
	var t [6]uint64
	for i := 0; i < 4; i++ {
		var c uint64
		for j := 0; j < 4; j++ {
			c, t[j] = madd(a[j], b[i], t[j], c)
		}
		t[4], t[5] = bits.Add64(t[4], c, 0)

		m := t[0] * scalarM0
		c, _ = madd(m, scalarOrder[0], t[0], 0)
		for j := 1; j < 4; j++ {
			c, t[j-1] = madd(m, scalarOrder[j], t[j], c)
		}
		var cc uint64
		t[3], cc = bits.Add64(t[4], c, 0)
		t[4] = t[5] + cc
	}
	// t < 2l, a single conditional subtraction finishes the reduction.
	return scalarCondSubtract([4]uint64{t[0], t[1], t[2], t[3]}, t[4])
}

// scalarCondSubtract returns x - l if x ≥ l, and x otherwise, where x is the
// 320-bit value x + top·2^256 and x < 2l.
func scalarCondSubtract(x [4]uint64, top uint64) [4]uint64 {
	var d [4]uint64
	var b uint64
	d[0], b = bits.Sub64(x[0], scalarOrder[0], 0)
	d[1], b = bits.Sub64(x[1], scalarOrder[1], b)
	d[2], b = bits.Sub64(x[2], scalarOrder[2], b)
	d[3], b = bits.Sub64(x[3], scalarOrder[3], b)
	_, b = bits.Sub64(top, 0, b)

	// b == 1 means x < l, keep x.
	mask := -b
	for i := range d {
		d[i] = (x[i] & mask) | (d[i] &^ mask)
	}
	return d
}

// madd returns hi, lo such that hi·2^64 + lo = x·y + z + c.
func madd(x, y, z, c uint64) (hi, lo uint64) {
	hi, lo = bits.Mul64(x, y)
	var carry uint64
	lo, carry = bits.Add64(lo, z, 0)
	hi += carry
	lo, carry = bits.Add64(lo, c, 0)
	hi += carry
	return hi, lo
}

// signedRadix16 returns the scalar as 64 signed digits in [-8, 8), least
// significant first, such that s = Σ digits[i]·16^i.
func (s *Scalar) signedRadix16() [64]int8 {
	b := s.Bytes()
	if b[31] > 127 {
		panic("edwards25519: scalar has high bit set illegally")
	}

	var digits [64]int8

	// Compute unsigned radix-16 digits:
	for i := 0; i < 32; i++ {
		digits[2*i] = int8(b[i] & 15)
		digits[2*i+1] = int8((b[i] >> 4) & 15)
	}

	// Recenter coefficients:
	for i := 0; i < 63; i++ {
		carry := (digits[i] + 8) >> 4
		digits[i] -= carry << 4
		digits[i+1] += carry
	}

	return digits
}
