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

package http_test

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/oysterpack/relay.go/pkg/metrics"
	metricshttp "github.com/oysterpack/relay.go/pkg/metrics/http"
	"github.com/prometheus/client_golang/prometheus"
)

func TestReporter(t *testing.T) {
	defer metrics.ResetRegistry()

	counter := metrics.GetOrMustRegisterCounter(&prometheus.CounterOpts{
		Namespace: "reporter_test",
		Name:      "requests",
		Help:      "request count",
	})
	counter.Add(7)

	reporter := metricshttp.NewReporter("127.0.0.1:0")
	if err := reporter.Start(); err != nil {
		t.Fatal(err)
	}
	defer reporter.Stop()

	resp, err := http.Get(fmt.Sprintf("http://%s%s", reporter.Addr(), metricshttp.DefaultPath))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status : %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "reporter_test_requests 7") {
		t.Errorf("counter was not reported : %s", body)
	}
}

func TestReporter_StartFailsOnBadAddress(t *testing.T) {
	reporter := metricshttp.NewReporter("not-an-address")
	if err := reporter.Start(); err == nil {
		t.Fatal("start should have failed")
	}
}
