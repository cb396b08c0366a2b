// Copyright (c) 2026 The ed25519-speccheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package speccheck

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// A Vector is one test input. Its byte slices are never modified.
type Vector struct {
	Name      string
	PublicKey []byte
	Message   []byte
	Signature []byte

	// Expected, if not nil, is whether the reference policy accepts the
	// vector. Mismatches reports the backends that disagree with it.
	Expected *bool
}

// A Runner evaluates a set of backends on test vectors.
type Runner struct {
	backends    []Backend
	logger      *zap.Logger
	metrics     *Metrics
	parallelism int
}

// A RunnerOption configures a Runner.
type RunnerOption func(*runnerConfig)

type runnerConfig struct {
	names       []string
	namesSet    bool
	logger      *zap.Logger
	metrics     *Metrics
	parallelism int
}

// WithBackends restricts the Runner to the named backends, in that order. By
// default every registered backend runs. An empty list is an error.
func WithBackends(names ...string) RunnerOption {
	return func(c *runnerConfig) {
		c.names = names
		c.namesSet = true
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(c *runnerConfig) { c.logger = l }
}

// WithMetrics sets the metrics the Runner records to.
func WithMetrics(m *Metrics) RunnerOption {
	return func(c *runnerConfig) { c.metrics = m }
}

// WithParallelism bounds the number of concurrent verifications. Values below
// one select runtime.GOMAXPROCS(0).
func WithParallelism(n int) RunnerOption {
	return func(c *runnerConfig) { c.parallelism = n }
}

// NewRunner returns a Runner over the backends of reg.
func NewRunner(reg *Registry, opts ...RunnerOption) (*Runner, error) {
	c := runnerConfig{logger: zap.NewNop()}
	for _, o := range opts {
		o(&c)
	}
	if !c.namesSet {
		c.names = reg.Names()
	}
	if len(c.names) == 0 {
		return nil, errors.New("speccheck: no backends to run")
	}
	if c.parallelism < 1 {
		c.parallelism = runtime.GOMAXPROCS(0)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	r := &Runner{
		logger:      c.logger,
		metrics:     c.metrics,
		parallelism: c.parallelism,
	}
	for _, name := range c.names {
		b, err := reg.Lookup(name)
		if err != nil {
			return nil, err
		}
		r.backends = append(r.backends, b)
	}
	return r, nil
}

// Run verifies every vector with every backend and returns the results.
// It stops early, returning ctx.Err(), if ctx is canceled.
func (r *Runner) Run(ctx context.Context, vectors []Vector) (*Table, error) {
	t := newTable(r.backends, vectors)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for bi := range r.backends {
		for vi := range vectors {
			bi, vi := bi, vi
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				t.cells[bi][vi] = r.verify(r.backends[bi], vi, &vectors[vi])
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "speccheck: run interrupted")
	}

	disagreements := t.Disagreements()
	r.metrics.observeDisagreements(len(disagreements))
	for _, vi := range disagreements {
		var accepted, rejected []string
		for bi, b := range r.backends {
			if t.cells[bi][vi].Accepted() {
				accepted = append(accepted, b.Name)
			} else {
				rejected = append(rejected, b.Name)
			}
		}
		r.logger.Info("backends disagree",
			zap.Int("vector", vi),
			zap.String("name", vectors[vi].Name),
			zap.Strings("accepted", accepted),
			zap.Strings("rejected", rejected))
	}
	return t, nil
}

func (r *Runner) verify(b Backend, index int, v *Vector) (o Outcome) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("backend panicked",
				zap.String("backend", b.Name),
				zap.Int("vector", index),
				zap.Any("panic", p))
			o = Rejected
		}
		r.metrics.observe(b.Name, o)
	}()

	err := b.Verify(v.PublicKey, v.Message, v.Signature)
	o = Classify(err)
	r.logger.Debug("verified",
		zap.String("backend", b.Name),
		zap.Int("vector", index),
		zap.Stringer("outcome", o),
		zap.Error(err))
	return o
}

// A Table holds the Outcome of every backend on every vector.
type Table struct {
	Backends []string
	Vectors  []Vector

	cells [][]Outcome
}

func newTable(backends []Backend, vectors []Vector) *Table {
	t := &Table{Vectors: vectors, cells: make([][]Outcome, len(backends))}
	for i, b := range backends {
		t.Backends = append(t.Backends, b.Name)
		t.cells[i] = make([]Outcome, len(vectors))
	}
	return t
}

// Row returns the outcomes of the named backend, in vector order, or nil if
// the backend was not part of the run.
func (t *Table) Row(backend string) []Outcome {
	for i, name := range t.Backends {
		if name == backend {
			return append([]Outcome(nil), t.cells[i]...)
		}
	}
	return nil
}

// Disagreements returns the indices of the vectors that some backends accept
// and others reject.
func (t *Table) Disagreements() []int {
	var out []int
	for vi := range t.Vectors {
		for bi := 1; bi < len(t.cells); bi++ {
			if t.cells[bi][vi].Accepted() != t.cells[0][vi].Accepted() {
				out = append(out, vi)
				break
			}
		}
	}
	return out
}

// Mismatches returns, for each backend that disagrees with the Expected flag
// of at least one vector, the indices of those vectors. Vectors without an
// Expected flag are skipped.
func (t *Table) Mismatches() map[string][]int {
	out := make(map[string][]int)
	for bi, name := range t.Backends {
		for vi, v := range t.Vectors {
			if v.Expected != nil && *v.Expected != t.cells[bi][vi].Accepted() {
				out[name] = append(out[name], vi)
			}
		}
	}
	return out
}

// String renders the table with one row per backend and one V or X column
// per vector.
func (t *Table) String() string {
	width := len("backend")
	for _, name := range t.Backends {
		if len(name) > width {
			width = len(name)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "|%-*s |", width, "backend")
	for vi := range t.Vectors {
		fmt.Fprintf(&sb, "%2d |", vi)
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "|%s-|", strings.Repeat("-", width))
	for range t.Vectors {
		sb.WriteString("---|")
	}
	for bi, name := range t.Backends {
		sb.WriteByte('\n')
		fmt.Fprintf(&sb, "|%-*s |", width, name)
		for vi := range t.Vectors {
			fmt.Fprintf(&sb, " %s |", t.cells[bi][vi].Symbol())
		}
	}
	return sb.String()
}
