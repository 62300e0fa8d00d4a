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

package app

import (
	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"
)

// NewService creates a new Service. The service logger is tagged with the service id and name.
// A panic is triggered if the id is zero.
func NewService(id ServiceID, name string) *Service {
	if id == 0 {
		panic(ErrServiceIDZero)
	}
	return &Service{
		id:     id,
		name:   name,
		logger: Logger().With().Str("svc", id.Hex()).Str("name", name).Logger(),
	}
}

// Service tracks the goroutines that make up a long running component.
// Goroutines are started via Go(). Once the service is killed, the goroutines are expected to watch Dying() and return.
type Service struct {
	tomb.Tomb

	id   ServiceID
	name string

	logger zerolog.Logger
}

func (a *Service) ID() ServiceID {
	return a.id
}

func (a *Service) Name() string {
	return a.name
}

// Logger returns the service logger, which is tagged with the service id and name
func (a *Service) Logger() *zerolog.Logger {
	return &a.logger
}

// Stop kills the service and waits until all of its goroutines have returned.
// The error that killed the service is returned, if any.
func (a *Service) Stop() error {
	SERVICE_STOPPING.Log(a.logger.Info()).Msg("stopping")
	a.Kill(nil)
	err := a.Wait()
	event := SERVICE_STOPPED.Log(a.logger.Info())
	if err != nil {
		event.Err(err)
	}
	event.Msg("stopped")
	return err
}
