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
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// GetOrMustRegisterGauge first checks if a gauge with the same name is already registered.
// If the gauge is already registered, and was registered with the same opts, then the cached metric is returned.
// If the gauge is already registered, and was registered with the different opts, then a panic is triggered.
// If no such gauge exists, then it is registered and cached along with its opts.
func GetOrMustRegisterGauge(opts *prometheus.GaugeOpts) prometheus.Gauge {
	const FUNC_NAME = "GetOrMustRegisterGauge"
	mutex.Lock()
	defer mutex.Unlock()
	name := GaugeFQName(opts)
	if gauge := gaugesMap[name]; gauge != nil {
		if GaugeOptsMatch(opts, gauge.GaugeOpts) {
			return gauge.Gauge
		}
		logger.Panic().Str(FUNC, FUNC_NAME).
			Str("registered", fmt.Sprintf("%v", gauge.GaugeOpts)).
			Str("dup", fmt.Sprintf("%v", opts)).
			Err(ErrMetricAlreadyRegisteredWithDifferentOpts).
			Msg("")
	}

	if registered(name) {
		logger.Panic().Str(FUNC, FUNC_NAME).
			Str("name", name).
			Int("type", GAUGE.Value()).
			Err(ErrMetricNameUsedByDifferentMetricType).
			Msg("")
	}

	gauge := prometheus.NewGauge(*opts)
	Registry.MustRegister(gauge)
	gaugesMap[name] = &Gauge{gauge, opts}
	return gauge
}

// GetOrMustRegisterGaugeVec first checks if a gaugeVec with the same name is already registered.
// If the gaugeVec is already registered, and was registered with the same opts, then the cached gaugeVec is returned.
// If the gaugeVec is already registered, and was registered with the different opts, then a panic is triggered.
// If not such gaugeVec exists, then it is registered and cached along with its opts.
func GetOrMustRegisterGaugeVec(opts *GaugeVecOpts) *prometheus.GaugeVec {
	const FUNC_NAME = "GetOrMustRegisterGaugeVec"
	mutex.Lock()
	defer mutex.Unlock()
	name := GaugeFQName(opts.GaugeOpts)
	if gaugeVec := gaugeVecsMap[name]; gaugeVec != nil {
		if GaugeVecOptsMatch(opts, gaugeVec.GaugeVecOpts) {
			return gaugeVec.GaugeVec
		}
		logger.Panic().Str(FUNC, FUNC_NAME).
			Str("registered", fmt.Sprintf("%v", gaugeVec.GaugeVecOpts)).
			Str("dup", fmt.Sprintf("%v", opts)).
			Err(ErrMetricAlreadyRegisteredWithDifferentOpts).
			Msg("")
	}

	if registered(name) {
		logger.Panic().Str(FUNC, FUNC_NAME).
			Str("name", name).
			Int("type", GAUGEVEC.Value()).
			Err(ErrMetricNameUsedByDifferentMetricType).
			Msg("")
	}

	gaugeVec := prometheus.NewGaugeVec(*opts.GaugeOpts, opts.Labels)
	Registry.MustRegister(gaugeVec)
	gaugeVecsMap[name] = &GaugeVec{gaugeVec, opts}
	return gaugeVec
}
