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

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/oysterpack/relay.go/pkg/app"
	"github.com/oysterpack/relay.go/pkg/config"
	"github.com/oysterpack/relay.go/pkg/data/keyvalue"
	"github.com/oysterpack/relay.go/pkg/data/redis"
	"github.com/oysterpack/relay.go/pkg/mailbox"
	"github.com/oysterpack/relay.go/pkg/messaging"
	"github.com/oysterpack/relay.go/pkg/messaging/nats"
	redisbus "github.com/oysterpack/relay.go/pkg/messaging/redis"
	"github.com/oysterpack/relay.go/pkg/relay"
)

func openStore(ctx context.Context, cfg *config.Config) (*mailbox.Store, error) {
	var store keyvalue.HashStore
	switch cfg.Store.Driver {
	case config.STORE_BOLT:
		db, err := openDatabase(cfg.Store.Bolt.Path, cfg.Store.Bolt.Database)
		if err != nil {
			return nil, err
		}
		store = db
	case config.STORE_REDIS:
		client, err := redis.NewStore(ctx, redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		store = client
	default:
		return nil, app.NewConfigError(fmt.Errorf("unsupported store driver : %q", cfg.Store.Driver))
	}
	return mailbox.NewStore(store, cfg.Store.KeyPrefix), nil
}

// openDatabase opens the bolt database if the file already exists, otherwise the database is created
func openDatabase(path, name string) (*keyvalue.Database, error) {
	open := keyvalue.OpenDatabase
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		open = keyvalue.CreateDatabase
	}
	db, err := open(path, name)
	if err != nil {
		return nil, err
	}
	created, err := db.Created()
	if err != nil {
		app.CloseQuietly(db)
		return nil, err
	}
	STORE_OPENED.Log(logger.Info()).
		Str("path", db.Path()).
		Str("db", db.Name()).
		Time("created", created).
		Msg("bolt database opened")
	return db, nil
}

func connectBus(ctx context.Context, cfg *config.Config) (messaging.Bus, error) {
	switch cfg.Bus.Driver {
	case config.BUS_NATS:
		return nats.Connect(cfg.Bus.NATS.URL, cfg.Bus.Subject)
	case config.BUS_REDIS:
		return redisbus.Connect(ctx, cfg.Bus.Redis.Addr, cfg.Bus.Subject)
	default:
		return nil, app.NewConfigError(fmt.Errorf("unsupported bus driver : %q", cfg.Bus.Driver))
	}
}

// startRelay connects the store and bus and starts a relay on top of them.
// The relay owns the store and bus: they are closed when the relay is shutdown.
func startRelay(ctx context.Context, cfg *config.Config) (*relay.Relay, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	bus, err := connectBus(ctx, cfg)
	if err != nil {
		app.CloseQuietly(store)
		return nil, err
	}
	r, err := relay.New(relay.Options{
		Store:      store,
		Bus:        bus,
		MaxBacklog: cfg.Relay.MaxBacklog,
		Retry: relay.RetryOptions{
			MaxRetries:      cfg.Relay.Retry.MaxRetries,
			InitialInterval: cfg.Relay.Retry.InitialInterval,
			MaxInterval:     cfg.Relay.Retry.MaxInterval,
		},
		PingInterval: cfg.Relay.PingInterval,
		SendTimeout:  cfg.Relay.SendTimeout,
	})
	if err != nil {
		app.CloseQuietly(store)
		app.CloseQuietly(bus)
		return nil, err
	}
	return r, nil
}
