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

// GetOrMustRegisterHistogram first checks if a histogram with the same name is already registered.
// If the histogram is already registered, and was registered with the same opts, then the cached histogram is returned.
// If the histogram is already registered, and was registered with the different opts, then a panic is triggered.
// If not such histogram exists, then it is registered and cached along with its opts.
func GetOrMustRegisterHistogram(opts *prometheus.HistogramOpts) prometheus.Histogram {
	const FUNC_NAME = "GetOrMustRegisterHistogram"
	mutex.Lock()
	defer mutex.Unlock()
	name := HistogramFQName(opts)
	if histogram := histogramsMap[name]; histogram != nil {
		if HistogramOptsMatch(opts, histogram.HistogramOpts) {
			return histogram.Histogram
		}
		logger.Panic().Str(FUNC, FUNC_NAME).
			Str("registered", fmt.Sprintf("%v", histogram.HistogramOpts)).
			Str("dup", fmt.Sprintf("%v", opts)).
			Err(ErrMetricAlreadyRegisteredWithDifferentOpts).
			Msg("")
	}

	if registered(name) {
		logger.Panic().Str(FUNC, FUNC_NAME).
			Str("name", name).
			Int("type", HISTOGRAM.Value()).
			Err(ErrMetricNameUsedByDifferentMetricType).
			Msg("")
	}

	histogram := prometheus.NewHistogram(*opts)
	Registry.MustRegister(histogram)
	histogramsMap[name] = &Histogram{histogram, opts}
	return histogram
}
