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
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oysterpack/relay.go/pkg/mailbox"
)

// RetryOptions bounds the retries around mailbox store and bus calls
type RetryOptions struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryOptions are used when no retry options are specified
var DefaultRetryOptions = RetryOptions{
	MaxRetries:      3,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
}

func (a RetryOptions) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.InitialInterval
	b.MaxInterval = a.MaxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, a.MaxRetries), ctx)
}

// retry runs the op until it succeeds, the retries are exhausted, or the context is done.
// ErrNotFound is not retried.
func (a *Relay) retry(ctx context.Context, name string, op func() error) error {
	return backoff.RetryNotify(
		func() error {
			err := op()
			if errors.Is(err, mailbox.ErrNotFound) {
				return backoff.Permanent(err)
			}
			return err
		},
		a.retryOptions.backOff(ctx),
		func(err error, wait time.Duration) {
			a.retries.Inc()
			STORE_RETRY.Log(a.Logger().Warn()).Str("op", name).Dur("wait", wait).Err(err).Msg("retrying")
		},
	)
}
