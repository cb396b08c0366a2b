// Copyright (c) 2026 The ed25519-speccheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novifinancial/ed25519-speccheck/ed25519"
	"github.com/novifinancial/ed25519-speccheck/edwards25519"
)

var policies = []struct {
	name string
	opts ed25519.Options
	// accepted are the indices of the cases a verifier with opts accepts.
	accepted []int
}{
	{"strict", ed25519.Options{}, []int{1, 3, 5, 6}},
	{"cofactored", ed25519.Options{Cofactored: true}, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}},
	{"reduce", ed25519.Options{Scalar: ed25519.ScalarReduce}, []int{1, 3, 5, 6, 9, 10}},
	{"highbits", ed25519.Options{Scalar: ed25519.ScalarHighBits}, []int{1, 3, 5, 6, 9}},
	{"no small order", ed25519.Options{RejectSmallOrder: true}, []int{6}},
	{"cofactored no small order", ed25519.Options{Cofactored: true, RejectSmallOrder: true}, []int{6, 7, 8}},
	{"lax", ed25519.Options{Scalar: ed25519.ScalarReduce, Cofactored: true}, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
	{"pre-reduced cofactored", ed25519.Options{PreReduceCofactor: true}, []int{0, 1, 2, 3, 4, 5, 6, 7}},
	{"pre-reduced lax", ed25519.Options{Scalar: ed25519.ScalarReduce, PreReduceCofactor: true}, []int{0, 1, 2, 3, 4, 5, 6, 7, 9, 10}},
}

func generate(t *testing.T, seed [32]byte) []Case {
	t.Helper()
	cs, err := Generate(seed)
	require.NoError(t, err)
	require.Len(t, cs, Count)
	return cs
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := generate(t, DefaultSeed)
	b := generate(t, DefaultSeed)
	assert.Equal(t, a, b)

	var other [32]byte
	other[0] = 1
	c := generate(t, other)
	assert.NotEqual(t, a[0].Message, c[0].Message)
}

func TestCaseShapes(t *testing.T) {
	for i, c := range generate(t, DefaultSeed) {
		assert.Len(t, c.PublicKey, ed25519.PublicKeySize, "case %d", i)
		assert.Len(t, c.Signature, ed25519.SignatureSize, "case %d", i)
		assert.Len(t, c.Message, 32, "case %d", i)
		assert.NotEmpty(t, c.Description, "case %d", i)

		if c.Has(NonCanonicalA) {
			assert.Equal(t, negativeZero, c.PublicKey, "case %d", i)
		}
		if c.Has(NonCanonicalR) {
			assert.Equal(t, negativeZero, c.Signature[:32], "case %d", i)
		}
		assert.Equal(t, !c.Has(LargeS), edwards25519.IsCanonicalScalar(c.Signature[32:]), "case %d", i)
		assert.Equal(t, c.Has(HighBitsS), c.Signature[63]&0xe0 != 0, "case %d", i)

		canonical := c.Properties&(NonCanonicalA|NonCanonicalR) == 0
		for _, p := range []struct {
			flag  Property
			point []byte
		}{
			{SmallOrderA, c.PublicKey},
			{SmallOrderR, c.Signature[:32]},
		} {
			if c.Has(p.flag) && canonical {
				P, err := new(edwards25519.Point).SetBytes(p.point)
				require.NoError(t, err, "case %d", i)
				assert.Equal(t, 1, P.IsSmallOrder(), "case %d", i)
				assert.Equal(t, 0, P.IsIdentity(), "case %d", i)
			}
		}
		for _, p := range []struct {
			flag  Property
			point []byte
		}{
			{MixedOrderA, c.PublicKey},
			{MixedOrderR, c.Signature[:32]},
		} {
			if c.Has(p.flag) {
				P, err := new(edwards25519.Point).SetBytes(p.point)
				require.NoError(t, err, "case %d", i)
				assert.Equal(t, 0, P.IsSmallOrder(), "case %d", i)
				// [l]P is the identity only without a torsion component.
				lP := new(edwards25519.Point).ScalarMult(orderMinusOne(), P)
				assert.Equal(t, 0, lP.Add(lP, P).IsIdentity(), "case %d", i)
			}
		}
	}
}

func orderMinusOne() *edwards25519.Scalar {
	one, err := edwards25519.NewScalar().SetCanonicalBytes(scalarBytes(1))
	if err != nil {
		panic(err)
	}
	return edwards25519.NewScalar().Negate(one)
}

func TestExpectMatchesVerifier(t *testing.T) {
	cs := generate(t, DefaultSeed)
	for _, p := range policies {
		t.Run(p.name, func(t *testing.T) {
			v := ed25519.NewVerifier(p.opts)
			var accepted []int
			for i := range cs {
				c := &cs[i]
				err := v.Verify(c.PublicKey, c.Message, c.Signature)
				assert.Equal(t, c.Expect(p.opts), err == nil, "case %d: %s: %v", i, c.Description, err)
				if err == nil {
					accepted = append(accepted, i)
				}
			}
			assert.Equal(t, p.accepted, accepted)
		})
	}
}

func TestExpectMatchesVerifierOtherSeed(t *testing.T) {
	seed := DefaultSeed
	seed[31] ^= 0xff
	cs := generate(t, seed)
	for _, p := range policies {
		v := ed25519.NewVerifier(p.opts)
		for i := range cs {
			c := &cs[i]
			err := v.Verify(c.PublicKey, c.Message, c.Signature)
			assert.Equal(t, c.Expect(p.opts), err == nil, "%s: case %d: %v", p.name, i, err)
		}
	}
}

func TestNonCanonicalCasesHashDifferently(t *testing.T) {
	cs := generate(t, DefaultSeed)
	for i := 11; i <= 14; i++ {
		c := cs[i]
		assert.Error(t, ed25519.Verify(c.PublicKey, c.Message, c.Signature), "case %d", i)
	}

	// With the negative zero replaced by the canonical encoding of (0, -1),
	// case 11 is a valid signature over the re-encoded R and case 13 over
	// the re-encoded A.
	canonical := mustDecodeHex(eightTorsion[4])
	sig := append(append([]byte(nil), canonical...), cs[11].Signature[32:]...)
	assert.NoError(t, ed25519.Verify(cs[11].PublicKey, cs[11].Message, sig))
	assert.NoError(t, ed25519.Verify(canonical, cs[13].Message, cs[13].Signature))
}

func TestAddOrder(t *testing.T) {
	l := edwards25519.ScalarOrder()
	zero := make([]byte, 32)
	assert.Equal(t, l, addOrder(zero))

	s := addOrder(scalarBytes(5))
	reduced, err := edwards25519.NewScalar().SetBytesModOrder(s)
	require.NoError(t, err)
	assert.Equal(t, scalarBytes(5), reduced.Bytes())
	assert.False(t, edwards25519.IsCanonicalScalar(s))
}

func TestExpectFlags(t *testing.T) {
	c := Case{Properties: LargeS | PassesCofactored | PassesCofactorless}
	assert.False(t, c.Expect(ed25519.Options{}))
	assert.True(t, c.Expect(ed25519.Options{Scalar: ed25519.ScalarReduce}))
	assert.True(t, c.Expect(ed25519.Options{Scalar: ed25519.ScalarHighBits}))

	c.Properties |= HighBitsS
	assert.False(t, c.Expect(ed25519.Options{Scalar: ed25519.ScalarHighBits}))
	assert.True(t, c.Expect(ed25519.Options{Scalar: ed25519.ScalarReduce, Cofactored: true}))

	c = Case{Properties: SmallOrderR | PassesCofactored}
	assert.False(t, c.Expect(ed25519.Options{}))
	assert.True(t, c.Expect(ed25519.Options{Cofactored: true}))
	assert.False(t, c.Expect(ed25519.Options{Cofactored: true, RejectSmallOrder: true}))

	c = Case{Properties: NonCanonicalA | PassesCofactored | PassesCofactorless}
	assert.False(t, c.Expect(ed25519.Options{Cofactored: true}))

	c = Case{Properties: MixedOrderA | PassesCofactored}
	assert.True(t, c.Expect(ed25519.Options{Cofactored: true}))
	assert.False(t, c.Expect(ed25519.Options{PreReduceCofactor: true}))
	assert.False(t, c.Expect(ed25519.Options{Cofactored: true, PreReduceCofactor: true}))
	c.Properties |= PassesPreReducedCofactored
	assert.True(t, c.Expect(ed25519.Options{PreReduceCofactor: true}))
}

func TestPreReducedCaseSeparatesCofactored(t *testing.T) {
	cs := generate(t, DefaultSeed)
	cofactored := ed25519.NewVerifier(ed25519.Options{Cofactored: true})
	preReduced := ed25519.NewVerifier(ed25519.Options{PreReduceCofactor: true})

	for i, c := range cs[:9] {
		cofErr := cofactored.Verify(c.PublicKey, c.Message, c.Signature)
		preErr := preReduced.Verify(c.PublicKey, c.Message, c.Signature)
		require.NoError(t, cofErr, "case %d", i)
		if i == 8 {
			assert.ErrorIs(t, preErr, ed25519.ErrEquationMismatch)
			assert.False(t, c.Has(PassesPreReducedCofactored))
		} else {
			assert.NoError(t, preErr, "case %d", i)
			assert.True(t, c.Has(PassesPreReducedCofactored), "case %d", i)
		}
	}

	// The public key of case 8 has a torsion component, so [l]A != 0.
	pub, err := new(edwards25519.Point).SetBytes(cs[8].PublicKey)
	require.NoError(t, err)
	lA := new(edwards25519.Point).ScalarMult(orderMinusOne(), pub)
	assert.Equal(t, 0, lA.Add(lA, pub).IsIdentity())
}

func BenchmarkGenerate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Generate(DefaultSeed); err != nil {
			b.Fatal(err)
		}
	}
}
