// Copyright (c) 2026 The ed25519-speccheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package speccheck runs Ed25519 verifiers side by side on edge-case vectors
// and reports where they disagree.
//
// Verifiers are registered as Backends in a Registry. A Runner evaluates
// every backend on every Vector concurrently and collects the Outcomes in a
// Table, which can be rendered in the V/X format used to compare
// implementations.
package speccheck

import (
	"sync"

	"github.com/pkg/errors"
)

// VerifyFunc verifies sig over msg with the public key pub, and returns nil
// if and only if the signature is accepted.
type VerifyFunc func(pub, msg, sig []byte) error

// A Backend is a named Ed25519 verifier.
type Backend struct {
	Name   string
	Verify VerifyFunc
}

var (
	// ErrDuplicateBackend is returned by Register for a name already in use.
	ErrDuplicateBackend = errors.New("duplicate backend")
	// ErrUnknownBackend is returned when looking up an unregistered name.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrInvalidBackend is returned by Register for an empty name or a nil
	// VerifyFunc.
	ErrInvalidBackend = errors.New("invalid backend")
)

// A Registry is an ordered set of Backends. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
	order    []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register adds b to the registry.
func (r *Registry) Register(b Backend) error {
	if b.Name == "" {
		return errors.WithMessage(ErrInvalidBackend, "speccheck: empty backend name")
	}
	if b.Verify == nil {
		return errors.WithMessagef(ErrInvalidBackend, "speccheck: backend %q has no verify function", b.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.backends[b.Name]; ok {
		return errors.WithMessagef(ErrDuplicateBackend, "speccheck: backend %q", b.Name)
	}
	r.backends[b.Name] = b
	r.order = append(r.order, b.Name)
	return nil
}

// Lookup returns the backend registered under name.
func (r *Registry) Lookup(name string) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	if !ok {
		return Backend{}, errors.WithMessagef(ErrUnknownBackend, "speccheck: backend %q", name)
	}
	return b, nil
}

// Names returns the registered backend names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
