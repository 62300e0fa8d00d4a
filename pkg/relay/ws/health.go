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

package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/json-iterator/go"
	"github.com/oysterpack/relay.go/pkg/relay"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// health check defaults
const (
	HealthPath                = "/healthz"
	DefaultHealthCheckTimeout = 2 * time.Second
)

// HealthCheckResult is the result of running the relay health check
type HealthCheckResult struct {
	// Status is either ok or unavailable
	Status string `json:"status"`
	// Error explains why the health check failed
	Error string `json:"error,omitempty"`
	// Time is when the health check started
	Time time.Time `json:"time"`
	// Duration is how long it took to run the health check
	Duration time.Duration `json:"duration_ns"`
}

// HealthHandler reports the relay health. 503 is returned while the relay is degraded, shutdown, or when the
// mailbox store does not respond within the timeout.
type HealthHandler struct {
	relay   *relay.Relay
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. If timeout is not positive, then DefaultHealthCheckTimeout is used.
func NewHealthHandler(r *relay.Relay, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = DefaultHealthCheckTimeout
	}
	return &HealthHandler{relay: r, timeout: timeout}
}

// Run runs the health check
func (a *HealthHandler) Run(ctx context.Context) HealthCheckResult {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	result := HealthCheckResult{Status: "ok", Time: time.Now()}
	err := a.relay.HealthCheck(ctx)
	result.Duration = time.Since(result.Time)
	if err != nil {
		result.Status = "unavailable"
		result.Error = err.Error()
	}
	return result
}

func (a *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result := a.Run(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if result.Error != "" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(&result)
}
