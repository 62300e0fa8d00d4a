// Copyright (c) 2017 OysterPack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package messaging

import (
	"github.com/oysterpack/relay.go/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubSystem is used as the metric subsystem for bus related metrics
	MetricsSubSystem = "bus"
	// LABEL_VENDOR is used to specify the messaging vendor, e.g., nats
	LABEL_VENDOR = "vendor"
)

// metric opts
var (
	PublishedCounterOpts = &metrics.CounterVecOpts{
		CounterOpts: &prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: MetricsSubSystem,
			Name:      "envelopes_published_total",
			Help:      "The number of envelopes published to the bus",
		},
		Labels: []string{LABEL_VENDOR},
	}

	ReceivedCounterOpts = &metrics.CounterVecOpts{
		CounterOpts: &prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: MetricsSubSystem,
			Name:      "envelopes_received_total",
			Help:      "The number of envelopes received from the bus",
		},
		Labels: []string{LABEL_VENDOR},
	}

	MalformedCounterOpts = &metrics.CounterVecOpts{
		CounterOpts: &prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: MetricsSubSystem,
			Name:      "envelopes_malformed_total",
			Help:      "The number of envelopes received from the bus that could not be decoded",
		},
		Labels: []string{LABEL_VENDOR},
	}
)

// Counters groups the bus counters for a specific vendor
type Counters struct {
	Published prometheus.Counter
	Received  prometheus.Counter
	Malformed prometheus.Counter
}

// NewCounters registers the bus counters, if not already registered, and returns the vendor's counters
func NewCounters(vendor string) *Counters {
	return &Counters{
		Published: metrics.GetOrMustRegisterCounterVec(PublishedCounterOpts).WithLabelValues(vendor),
		Received:  metrics.GetOrMustRegisterCounterVec(ReceivedCounterOpts).WithLabelValues(vendor),
		Malformed: metrics.GetOrMustRegisterCounterVec(MalformedCounterOpts).WithLabelValues(vendor),
	}
}
