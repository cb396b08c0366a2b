// Copyright (c) 2026 The ed25519-speccheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package speccheck

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/novifinancial/ed25519-speccheck/ed25519"
	"github.com/novifinancial/ed25519-speccheck/edwards25519"
)

func constBackend(name string, err error) Backend {
	return Backend{Name: name, Verify: func(pub, msg, sig []byte) error { return err }}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(constBackend("a", nil)))
	require.NoError(t, r.Register(constBackend("b", ErrRejected)))

	err := r.Register(constBackend("a", nil))
	assert.True(t, errors.Is(err, ErrDuplicateBackend))
	assert.EqualError(t, err, `speccheck: backend "a": duplicate backend`)

	assert.True(t, errors.Is(r.Register(constBackend("", nil)), ErrInvalidBackend))
	assert.True(t, errors.Is(r.Register(Backend{Name: "c"}), ErrInvalidBackend))

	b, err := r.Lookup("b")
	require.NoError(t, err)
	assert.Equal(t, "b", b.Name)
	assert.Equal(t, ErrRejected, b.Verify(nil, nil, nil))

	_, err = r.Lookup("missing")
	assert.True(t, errors.Is(err, ErrUnknownBackend))

	names := r.Names()
	assert.Equal(t, []string{"a", "b"}, names)
	names[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, []string{
		BackendStrict,
		BackendCofactored,
		BackendPreReduced,
		BackendReduceS,
		BackendHighBitsS,
		BackendNoSmallOrder,
		BackendStdlib,
		BackendXCrypto,
	}, DefaultRegistry().Names())
}

func TestBoolBackendLengths(t *testing.T) {
	called := false
	b := BoolBackend("bool", func(pub, msg, sig []byte) bool {
		called = true
		return true
	})
	assert.Equal(t, ErrRejected, b.Verify(make([]byte, 31), nil, make([]byte, 64)))
	assert.Equal(t, ErrRejected, b.Verify(make([]byte, 32), nil, make([]byte, 65)))
	assert.False(t, called)
	assert.NoError(t, b.Verify(make([]byte, 32), nil, make([]byte, 64)))
	assert.True(t, called)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Outcome
	}{
		{nil, Valid},
		{&ed25519.VerifyError{Reason: ed25519.ErrInvalidPublicKey, Err: edwards25519.ErrNonCanonical}, InvalidPublicKey},
		{&ed25519.VerifyError{Reason: ed25519.ErrInvalidSignature, Err: ed25519.ErrSmallOrder}, InvalidSignature},
		{&ed25519.VerifyError{Reason: ed25519.ErrEquationMismatch}, EquationMismatch},
		{&ed25519.VerifyError{Reason: ed25519.ErrDomain}, DomainError},
		{ErrRejected, Rejected},
		{errors.New("something else"), Rejected},
	}
	for _, tt := range tests {
		got := Classify(tt.err)
		assert.Equal(t, tt.want, got, "%v", tt.err)
		assert.Equal(t, tt.want == Valid, got.Accepted())
	}

	assert.Equal(t, "valid", Valid.String())
	assert.Equal(t, "equation-mismatch", EquationMismatch.String())
	assert.Equal(t, "Outcome(42)", Outcome(42).String())
	assert.Equal(t, "V", Valid.Symbol())
	assert.Equal(t, "X", DomainError.Symbol())
}

func TestClassifyEngineErrors(t *testing.T) {
	vs, err := DefaultVectors()
	require.NoError(t, err)

	// Vector 9 has S + l, vector 11 a non-canonical R, vector 13 a
	// non-canonical A and vector 0 fails only the cofactorless equation.
	for vi, want := range map[int]Outcome{
		0:  EquationMismatch,
		1:  Valid,
		9:  InvalidSignature,
		11: InvalidSignature,
		13: InvalidPublicKey,
	} {
		v := vs[vi]
		assert.Equal(t, want, Classify(ed25519.Verify(v.PublicKey, v.Message, v.Signature)), "vector %d", vi)
	}
}

func TestRunEngineBackends(t *testing.T) {
	vs, err := DefaultVectors()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	r, err := NewRunner(DefaultRegistry(),
		WithBackends(BackendStrict, BackendCofactored),
		WithMetrics(m),
		WithParallelism(4))
	require.NoError(t, err)

	table, err := r.Run(context.Background(), vs)
	require.NoError(t, err)

	accepted := func(backend string) []int {
		var out []int
		for i, o := range table.Row(backend) {
			if o.Accepted() {
				out = append(out, i)
			}
		}
		return out
	}
	assert.Equal(t, []int{1, 3, 5, 6}, accepted(BackendStrict))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, accepted(BackendCofactored))
	assert.Nil(t, table.Row(BackendStdlib))

	assert.Equal(t, []int{0, 2, 4, 7, 8}, table.Disagreements())
	assert.Equal(t, map[string][]int{BackendCofactored: {0, 2, 4, 7, 8}}, table.Mismatches())

	assert.Equal(t, 4.0, testutil.ToFloat64(m.verifications.WithLabelValues(BackendStrict, "valid")))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.verifications.WithLabelValues(BackendCofactored, "valid")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.disagreements))
}

func TestRunDefaultRegistry(t *testing.T) {
	vs, err := DefaultVectors()
	require.NoError(t, err)

	r, err := NewRunner(DefaultRegistry())
	require.NoError(t, err)
	table, err := r.Run(context.Background(), vs)
	require.NoError(t, err)

	require.Len(t, table.Backends, 8)
	for _, name := range table.Backends {
		assert.Len(t, table.Row(name), len(vs), name)
	}
	// The strict engine agrees with its own expectations, and the standard
	// library rejects every S that is not reduced.
	assert.NotContains(t, table.Mismatches(), BackendStrict)
	assert.False(t, table.Row(BackendStdlib)[9].Accepted())
	assert.False(t, table.Row(BackendStdlib)[10].Accepted())
	assert.True(t, table.Row(BackendReduceS)[10].Accepted())
}

func TestRunPreReducedBackend(t *testing.T) {
	vs, err := DefaultVectors()
	require.NoError(t, err)

	r, err := NewRunner(DefaultRegistry(), WithBackends(BackendCofactored, BackendPreReduced))
	require.NoError(t, err)
	table, err := r.Run(context.Background(), vs)
	require.NoError(t, err)

	assert.Equal(t, []int{8}, table.Disagreements())
	assert.Equal(t, EquationMismatch, table.Row(BackendPreReduced)[8])
	assert.Equal(t, Valid, table.Row(BackendCofactored)[8])
}

func TestRunPanickingBackend(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reg := NewRegistry()
	require.NoError(t, reg.Register(constBackend("ok", nil)))
	require.NoError(t, reg.Register(Backend{Name: "panics", Verify: func(pub, msg, sig []byte) error {
		panic("boom")
	}}))

	r, err := NewRunner(reg, WithLogger(zap.New(core)))
	require.NoError(t, err)
	table, err := r.Run(context.Background(), make([]Vector, 2))
	require.NoError(t, err)

	assert.Equal(t, []Outcome{Rejected, Rejected}, table.Row("panics"))
	assert.Equal(t, []Outcome{Valid, Valid}, table.Row("ok"))
	assert.Equal(t, 2, logs.FilterMessage("backend panicked").Len())
	assert.Equal(t, []int{0, 1}, table.Disagreements())
}

func TestRunCanceled(t *testing.T) {
	r, err := NewRunner(DefaultRegistry())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, make([]Vector, 3))
	assert.True(t, errors.Is(err, context.Canceled), "%v", err)
}

func TestNewRunnerErrors(t *testing.T) {
	_, err := NewRunner(NewRegistry())
	assert.Error(t, err)

	_, err = NewRunner(DefaultRegistry(), WithBackends())
	assert.EqualError(t, err, "speccheck: no backends to run")

	_, err = NewRunner(DefaultRegistry(), WithBackends("nope"))
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestNewMetricsTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)

	_, err = NewMetrics(nil)
	assert.NoError(t, err)
}

func TestTableString(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(constBackend("a", nil)))
	require.NoError(t, reg.Register(constBackend("bb", ErrRejected)))
	r, err := NewRunner(reg)
	require.NoError(t, err)
	table, err := r.Run(context.Background(), make([]Vector, 2))
	require.NoError(t, err)

	assert.Equal(t, ""+
		"|backend | 0 | 1 |\n"+
		"|--------|---|---|\n"+
		"|a       | V | V |\n"+
		"|bb      | X | X |", table.String())
}

func TestVectorsFromCases(t *testing.T) {
	vs, err := DefaultVectors()
	require.NoError(t, err)
	require.Len(t, vs, 15)
	for i, v := range vs {
		require.NotNil(t, v.Expected, "vector %d", i)
		assert.Equal(t, ed25519.Verify(v.PublicKey, v.Message, v.Signature) == nil, *v.Expected, "vector %d", i)
	}
}
