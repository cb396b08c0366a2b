// Copyright (c) 2026 The ed25519-speccheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package speccheck

import (
	"strconv"

	"github.com/novifinancial/ed25519-speccheck/cases"
	"github.com/novifinancial/ed25519-speccheck/ed25519"
)

// VectorsFromCases converts generated cases into Vectors, setting Expected
// to the verdict of a verifier running with opts.
func VectorsFromCases(cs []cases.Case, opts ed25519.Options) []Vector {
	vs := make([]Vector, len(cs))
	for i := range cs {
		c := &cs[i]
		expected := c.Expect(opts)
		vs[i] = Vector{
			Name:      strconv.Itoa(i) + ": " + c.Description,
			PublicKey: c.PublicKey,
			Message:   c.Message,
			Signature: c.Signature,
			Expected:  &expected,
		}
	}
	return vs
}

// DefaultVectors returns the vectors generated from cases.DefaultSeed, with
// Expected set for the default verifier policy.
func DefaultVectors() ([]Vector, error) {
	cs, err := cases.Generate(cases.DefaultSeed)
	if err != nil {
		return nil, err
	}
	return VectorsFromCases(cs, ed25519.Options{}), nil
}
