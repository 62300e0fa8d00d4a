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

// Package metrics provides a process wide prometheus registry and helpers that make metric registration idempotent.
// Packages declare their metric opts as package vars and call GetOrMustRegister*() wherever the metric is needed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the metric namespace shared by all relay metrics
const Namespace = "relay"

// MetricType enum
type MetricType int

// MetricType enum values
const (
	UNKNOWN MetricType = iota

	COUNTER
	GAUGE
	HISTOGRAM

	COUNTERVEC
	GAUGEVEC
)

// Value returns the int value
func (a MetricType) Value() int {
	return int(a)
}

func (a MetricType) String() string {
	switch a {
	case COUNTER:
		return "Counter"
	case GAUGE:
		return "Gauge"
	case HISTOGRAM:
		return "Histogram"
	case COUNTERVEC:
		return "CounterVec"
	case GAUGEVEC:
		return "GaugeVec"
	default:
		return "UNKNOWN"
	}
}

// CounterVecOpts represents the settings for a prometheus counter vector metric
type CounterVecOpts struct {
	*prometheus.CounterOpts
	Labels []string
}

// GaugeVecOpts represents the settings for a prometheus gauge vector metric
type GaugeVecOpts struct {
	*prometheus.GaugeOpts
	Labels []string
}

// Counter associates the counter with the opts it was registered with
type Counter struct {
	prometheus.Counter
	*prometheus.CounterOpts
}

// CounterVec associates the counter vector with the opts it was registered with
type CounterVec struct {
	*prometheus.CounterVec
	*CounterVecOpts
}

// Gauge associates the gauge with the opts it was registered with
type Gauge struct {
	prometheus.Gauge
	*prometheus.GaugeOpts
}

// GaugeVec associates the gauge vector with the opts it was registered with
type GaugeVec struct {
	*prometheus.GaugeVec
	*GaugeVecOpts
}

// Histogram associates the histogram with the opts it was registered with
type Histogram struct {
	prometheus.Histogram
	*prometheus.HistogramOpts
}
