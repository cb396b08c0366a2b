// Copyright (c) 2026 The ed25519-speccheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package speccheck

import (
	stded25519 "crypto/ed25519"

	"github.com/pkg/errors"
	xed25519 "golang.org/x/crypto/ed25519"

	"github.com/novifinancial/ed25519-speccheck/ed25519"
)

// Names of the backends registered by DefaultRegistry.
const (
	BackendStrict       = "strict"
	BackendCofactored   = "cofactored"
	BackendPreReduced   = "cofactored-prereduced"
	BackendReduceS      = "reduce-s"
	BackendHighBitsS    = "highbits-s"
	BackendNoSmallOrder = "no-small-order"
	BackendStdlib       = "crypto/ed25519"
	BackendXCrypto      = "x/crypto/ed25519"
)

// ErrRejected is returned by backends that only report a boolean result.
var ErrRejected = errors.New("speccheck: signature rejected")

// EngineBackend returns a Backend running this module's verifier with opts.
func EngineBackend(name string, opts ed25519.Options) Backend {
	v := ed25519.NewVerifier(opts)
	return Backend{Name: name, Verify: v.Verify}
}

// BoolBackend adapts a verifier that returns a bool, such as
// crypto/ed25519.Verify. Inputs of the wrong length are rejected before
// calling verify, since most such functions panic on them.
func BoolBackend(name string, verify func(pub, msg, sig []byte) bool) Backend {
	return Backend{Name: name, Verify: func(pub, msg, sig []byte) error {
		if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
			return ErrRejected
		}
		if !verify(pub, msg, sig) {
			return ErrRejected
		}
		return nil
	}}
}

// DefaultRegistry returns a Registry with the engine under each of its
// policies, followed by the standard library and golang.org/x/crypto
// verifiers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, b := range []Backend{
		EngineBackend(BackendStrict, ed25519.Options{}),
		EngineBackend(BackendCofactored, ed25519.Options{Cofactored: true}),
		EngineBackend(BackendPreReduced, ed25519.Options{PreReduceCofactor: true}),
		EngineBackend(BackendReduceS, ed25519.Options{Scalar: ed25519.ScalarReduce}),
		EngineBackend(BackendHighBitsS, ed25519.Options{Scalar: ed25519.ScalarHighBits}),
		EngineBackend(BackendNoSmallOrder, ed25519.Options{RejectSmallOrder: true}),
		BoolBackend(BackendStdlib, func(pub, msg, sig []byte) bool {
			return stded25519.Verify(pub, msg, sig)
		}),
		BoolBackend(BackendXCrypto, func(pub, msg, sig []byte) bool {
			return xed25519.Verify(pub, msg, sig)
		}),
	} {
		if err := r.Register(b); err != nil {
			panic(err)
		}
	}
	return r
}
