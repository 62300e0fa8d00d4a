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

package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// MetricFamily is the gathered metric family
type MetricFamily = dto.MetricFamily

// MustRegister registers the collector with the global Registry. A panic is triggered if registration fails.
func MustRegister(collector prometheus.Collector) {
	mutex.RLock()
	defer mutex.RUnlock()
	Registry.MustRegister(collector)
}

// Unregister unregisters the collector from the global Registry
func Unregister(collector prometheus.Collector) bool {
	mutex.RLock()
	defer mutex.RUnlock()
	return Registry.Unregister(collector)
}

// FindMetricFamilyByName finds a MetricFamily by name.
// nil is returned if no match is found
func FindMetricFamilyByName(gatheredMetrics []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, m := range gatheredMetrics {
		if m.GetName() == name {
			return m
		}
	}
	return nil
}

// CounterValue returns the counter's current value
func CounterValue(counter prometheus.Counter) float64 {
	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}

// GaugeValue returns the gauge's current value
func GaugeValue(gauge prometheus.Gauge) float64 {
	metric := &dto.Metric{}
	if err := gauge.Write(metric); err != nil {
		return 0
	}
	return metric.GetGauge().GetValue()
}

// CounterFQName returns the fully qualified name for the counter.
func CounterFQName(opts *prometheus.CounterOpts) string {
	return prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name)
}

// GaugeFQName returns the fully qualified name for the gauge.
func GaugeFQName(opts *prometheus.GaugeOpts) string {
	return prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name)
}

// HistogramFQName returns the fully qualified name for the histogram.
func HistogramFQName(opts *prometheus.HistogramOpts) string {
	return prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name)
}

// CounterOptsMatch return true if the 2 opts match
func CounterOptsMatch(opts1, opts2 *prometheus.CounterOpts) bool {
	return CounterFQName(opts1) == CounterFQName(opts2) &&
		opts1.Help == opts2.Help &&
		stringMapsAreEqual(opts1.ConstLabels, opts2.ConstLabels)
}

// CounterVecOptsMatch return true if the 2 opts match
func CounterVecOptsMatch(opts1, opts2 *CounterVecOpts) bool {
	if opts1 == nil && opts2 == nil {
		return true
	}
	if opts1 == nil || opts2 == nil {
		return false
	}
	return CounterOptsMatch(opts1.CounterOpts, opts2.CounterOpts) && labelsAreEqual(opts1.Labels, opts2.Labels)
}

// GaugeOptsMatch return true if the 2 opts match
func GaugeOptsMatch(opts1, opts2 *prometheus.GaugeOpts) bool {
	return GaugeFQName(opts1) == GaugeFQName(opts2) &&
		opts1.Help == opts2.Help &&
		stringMapsAreEqual(opts1.ConstLabels, opts2.ConstLabels)
}

// GaugeVecOptsMatch return true if the 2 opts match
func GaugeVecOptsMatch(opts1, opts2 *GaugeVecOpts) bool {
	if opts1 == nil && opts2 == nil {
		return true
	}
	if opts1 == nil || opts2 == nil {
		return false
	}
	return GaugeOptsMatch(opts1.GaugeOpts, opts2.GaugeOpts) && labelsAreEqual(opts1.Labels, opts2.Labels)
}

// HistogramOptsMatch return true if the 2 opts match
func HistogramOptsMatch(opts1, opts2 *prometheus.HistogramOpts) bool {
	if HistogramFQName(opts1) != HistogramFQName(opts2) ||
		opts1.Help != opts2.Help ||
		!stringMapsAreEqual(opts1.ConstLabels, opts2.ConstLabels) ||
		len(opts1.Buckets) != len(opts2.Buckets) {
		return false
	}
	for i := range opts1.Buckets {
		if opts1.Buckets[i] != opts2.Buckets[i] {
			return false
		}
	}
	return true
}

func stringMapsAreEqual(m1, m2 map[string]string) bool {
	if len(m1) != len(m2) {
		return false
	}
	for k, v := range m1 {
		if v2, ok := m2[k]; !ok || v != v2 {
			return false
		}
	}
	return true
}

func labelsAreEqual(labels1, labels2 []string) bool {
	if len(labels1) != len(labels2) {
		return false
	}
	l1 := append([]string(nil), labels1...)
	l2 := append([]string(nil), labels2...)
	sort.Strings(l1)
	sort.Strings(l2)
	for i := range l1 {
		if l1[i] != l2[i] {
			return false
		}
	}
	return true
}
