// Copyright (c) 2026 The ed25519-speccheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package speccheck

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts verification outcomes across runs.
type Metrics struct {
	verifications *prometheus.CounterVec
	disagreements prometheus.Counter
}

// NewMetrics creates the harness metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "speccheck",
				Name:      "verifications_total",
				Help:      "How many verifications each backend performed, by outcome.",
			},
			[]string{"backend", "outcome"},
		),
		disagreements: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "speccheck",
				Name:      "disagreements_total",
				Help:      "How many vectors were accepted by some backends and rejected by others.",
			},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.verifications, m.disagreements} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "speccheck: registering metrics")
		}
	}
	return m, nil
}

func (m *Metrics) observe(backend string, o Outcome) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(backend, o.String()).Inc()
}

func (m *Metrics) observeDisagreements(n int) {
	if m == nil {
		return
	}
	m.disagreements.Add(float64(n))
}
