// Copyright (c) 2026 The ed25519-speccheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cases

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/chacha20"

	"github.com/novifinancial/ed25519-speccheck/edwards25519"
)

// DefaultSeed is the seed the published vectors are generated from: the
// little-endian bytes of the float64 π, repeated four times.
var DefaultSeed = func() (seed [32]byte) {
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(seed[8*i:], math.Float64bits(math.Pi))
	}
	return seed
}()

// stream is a deterministic byte source, the ChaCha20 keystream keyed by
// the seed with an all-zero nonce.
type stream struct {
	c *chacha20.Cipher
}

func newStream(seed [32]byte) *stream {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		// Only possible for wrong key or nonce sizes.
		panic(err)
	}
	return &stream{c: c}
}

func (s *stream) read(p []byte) {
	for i := range p {
		p[i] = 0
	}
	s.c.XORKeyStream(p, p)
}

func (s *stream) uint64() uint64 {
	var b [8]byte
	s.read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// bytes32 returns 32 fresh bytes.
func (s *stream) bytes32() []byte {
	b := make([]byte, 32)
	s.read(b)
	return b
}

// scalar returns a scalar reduced from 32 fresh bytes.
func (s *stream) scalar() *edwards25519.Scalar {
	k, err := edwards25519.NewScalar().SetBytesModOrder(s.bytes32())
	if err != nil {
		panic(err)
	}
	return k
}
