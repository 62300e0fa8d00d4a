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

package relay

import (
	"github.com/oysterpack/relay.go/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// LABEL_RELAY is the relay instance id label
const LABEL_RELAY = "relay"

var relayLabels = []string{LABEL_RELAY}

func counterVecOpts(name, help string) *metrics.CounterVecOpts {
	return &metrics.CounterVecOpts{
		CounterOpts: &prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      name,
			Help:      help,
		},
		Labels: relayLabels,
	}
}

// counter metric opts
var (
	PublishedCounterOpts      = counterVecOpts("messages_published_total", "The number of messages persisted to a mailbox")
	RejectedCounterOpts       = counterVecOpts("messages_rejected_total", "The number of publish requests that were rejected")
	DeliveredCounterOpts      = counterVecOpts("messages_delivered_total", "The number of messages pushed to connections by the dispatch loop")
	ReplayedCounterOpts       = counterVecOpts("messages_replayed_total", "The number of messages pushed to connections as backlog replay")
	AckedCounterOpts          = counterVecOpts("messages_acked_total", "The number of message ids acknowledged by clients")
	DiscardedCounterOpts      = counterVecOpts("notifications_discarded_total", "The number of bus notifications discarded because there was no local connection or the message was gone")
	NotifyFailedCounterOpts   = counterVecOpts("notifications_failed_total", "The number of bus notifications that failed to publish")
	PushFailedCounterOpts     = counterVecOpts("push_failures_total", "The number of failed pushes to a connection")
	RetriesCounterOpts        = counterVecOpts("store_retries_total", "The number of retried mailbox store or bus calls")
	ProtocolErrorsCounterOpts = counterVecOpts("protocol_errors_total", "The number of connections dropped because of a malformed frame")
)

// PushDurationHistogramOpts measures how long a frame push to a connection takes, across all relay instances
var PushDurationHistogramOpts = &prometheus.HistogramOpts{
	Namespace: metrics.Namespace,
	Name:      "push_duration_seconds",
	Help:      "The time it takes to push a frame to a connection",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
}

type relayCounters struct {
	published      prometheus.Counter
	rejected       prometheus.Counter
	delivered      prometheus.Counter
	replayed       prometheus.Counter
	acked          prometheus.Counter
	discarded      prometheus.Counter
	notifyFailed   prometheus.Counter
	pushFailed     prometheus.Counter
	retries        prometheus.Counter
	protocolErrors prometheus.Counter
}

func newRelayCounters(relayID string) relayCounters {
	counter := func(opts *metrics.CounterVecOpts) prometheus.Counter {
		return metrics.GetOrMustRegisterCounterVec(opts).WithLabelValues(relayID)
	}
	return relayCounters{
		published:      counter(PublishedCounterOpts),
		rejected:       counter(RejectedCounterOpts),
		delivered:      counter(DeliveredCounterOpts),
		replayed:       counter(ReplayedCounterOpts),
		acked:          counter(AckedCounterOpts),
		discarded:      counter(DiscardedCounterOpts),
		notifyFailed:   counter(NotifyFailedCounterOpts),
		pushFailed:     counter(PushFailedCounterOpts),
		retries:        counter(RetriesCounterOpts),
		protocolErrors: counter(ProtocolErrorsCounterOpts),
	}
}

// implements prometheus.Collector, i.e., it collects the relay's connection registry and health metrics
type relayCollector struct {
	relay *Relay

	connCountDesc    *prometheus.Desc
	channelCountDesc *prometheus.Desc
	degradedDesc     *prometheus.Desc
}

func newRelayCollector(relay *Relay) *relayCollector {
	constLabels := prometheus.Labels{LABEL_RELAY: relay.InstanceID()}
	fqName := func(name string) string {
		return prometheus.BuildFQName(metrics.Namespace, "", name)
	}
	return &relayCollector{
		relay:            relay,
		connCountDesc:    prometheus.NewDesc(fqName("connections"), "The number of registered connections", nil, constLabels),
		channelCountDesc: prometheus.NewDesc(fqName("channels"), "The number of channels with at least 1 registered connection", nil, constLabels),
		degradedDesc:     prometheus.NewDesc(fqName("degraded"), "1 if the relay is rejecting publishes because the mailbox store is unavailable", nil, constLabels),
	}
}

// Describe implements prometheus.Collector
func (a *relayCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- a.connCountDesc
	ch <- a.channelCountDesc
	ch <- a.degradedDesc
}

// Collect implements prometheus.Collector
func (a *relayCollector) Collect(ch chan<- prometheus.Metric) {
	degraded := 0.0
	if a.relay.Degraded() {
		degraded = 1
	}
	ch <- prometheus.MustNewConstMetric(a.connCountDesc, prometheus.GaugeValue, float64(a.relay.registry.Count()))
	ch <- prometheus.MustNewConstMetric(a.channelCountDesc, prometheus.GaugeValue, float64(a.relay.registry.ChannelCount()))
	ch <- prometheus.MustNewConstMetric(a.degradedDesc, prometheus.GaugeValue, degraded)
}
