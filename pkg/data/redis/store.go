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

// Package redis provides a redis backed keyvalue.HashStore, used when multiple relay processes share mailboxes.
package redis

import (
	"context"
	"errors"

	"github.com/oysterpack/relay.go/pkg/app"
	"github.com/oysterpack/relay.go/pkg/data/keyvalue"
	"github.com/redis/go-redis/v9"
)

type pkgobject struct{}

var logger = app.NewPackageLogger(pkgobject{})

// log events
const (
	STORE_CONNECTED = app.LogEventID(0xb2d7f0c4a5e13986)
	STORE_CLOSED    = app.LogEventID(0xd9e0a16f4b3c2785)
)

// Options configures the redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Store is a redis backed keyvalue.HashStore
type Store struct {
	client *redis.Client
}

// NewStore connects to redis and verifies the connection via PING
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	STORE_CONNECTED.Log(logger.Info()).Str("addr", opts.Addr).Int("db", opts.DB).Msg("connected")
	return &Store{client: client}, nil
}

// NewStoreFromClient wraps an existing client
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Client returns the underlying redis client
func (a *Store) Client() *redis.Client {
	return a.client
}

// HGet implements keyvalue.HashStore
func (a *Store) HGet(ctx context.Context, key, field string) ([]byte, error) {
	value, err := a.client.HGet(ctx, key, field).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, keyvalue.ErrNotFound
	}
	return value, err
}

// HSet implements keyvalue.HashStore
func (a *Store) HSet(ctx context.Context, key, field string, value []byte) error {
	if key == "" {
		return keyvalue.ErrKeyMustNotBeBlank
	}
	return a.client.HSet(ctx, key, field, value).Err()
}

// HDel implements keyvalue.HashStore
func (a *Store) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return a.client.HDel(ctx, key, fields...).Err()
}

// HGetAll implements keyvalue.HashStore
func (a *Store) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	values, err := a.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	result := make(map[string][]byte, len(values))
	for k, v := range values {
		result[k] = []byte(v)
	}
	return result, nil
}

// HLen implements keyvalue.HashStore
func (a *Store) HLen(ctx context.Context, key string) (int, error) {
	n, err := a.client.HLen(ctx, key).Result()
	return int(n), err
}

// LPush implements keyvalue.HashStore
func (a *Store) LPush(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return keyvalue.ErrKeyMustNotBeBlank
	}
	return a.client.LPush(ctx, key, value).Err()
}

// LRange implements keyvalue.HashStore
func (a *Store) LRange(ctx context.Context, key string) ([][]byte, error) {
	values, err := a.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	result := make([][]byte, len(values))
	for i, v := range values {
		result[i] = []byte(v)
	}
	return result, nil
}

// Ping implements keyvalue.HashStore
func (a *Store) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

// Close implements keyvalue.HashStore
func (a *Store) Close() error {
	err := a.client.Close()
	STORE_CLOSED.Log(logger.Info()).Err(err).Msg("closed")
	return err
}
