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

package mailbox

import (
	"context"
	"errors"

	"github.com/oysterpack/relay.go/pkg/app"
	"github.com/oysterpack/relay.go/pkg/data/keyvalue"
)

// DefaultKeyPrefix is prepended to the channel name to form the mailbox key
const DefaultKeyPrefix = "p1:"

var (
	// ErrNotFound is returned when the message is not in the mailbox
	ErrNotFound = keyvalue.ErrNotFound

	ErrStore = &app.Err{ErrorID: app.ErrorID(0xa4c7e9102f3db658), Err: errors.New("Mailbox store failure")}
)

// StoreError wraps errors returned by the backing store
type StoreError struct {
	*app.Err
}

// NewStoreError wraps the store error. nil and ErrNotFound are returned as is.
func NewStoreError(err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return StoreError{&app.Err{ErrorID: ErrStore.ErrorID, Err: err}}
}

// Store provides channel scoped access to the mailboxes
type Store struct {
	store  keyvalue.HashStore
	prefix string
}

// NewStore creates a new Store over the hash store. If prefix is blank, then DefaultKeyPrefix is used.
func NewStore(store keyvalue.HashStore, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{store: store, prefix: prefix}
}

// Key returns the mailbox key for the channel
func (a *Store) Key(channel string) string {
	return a.prefix + channel
}

// Get returns the pending message. ErrNotFound is returned if the message does not exist.
func (a *Store) Get(ctx context.Context, channel, id string) ([]byte, error) {
	value, err := a.store.HGet(ctx, a.Key(channel), id)
	return value, NewStoreError(err)
}

// Put stores the message in the channel mailbox. An existing message with the same id is overwritten.
func (a *Store) Put(ctx context.Context, channel, id string, value []byte) error {
	return NewStoreError(a.store.HSet(ctx, a.Key(channel), id, value))
}

// GetAll returns a snapshot of all pending messages in the channel mailbox, keyed by message id
func (a *Store) GetAll(ctx context.Context, channel string) (map[string][]byte, error) {
	values, err := a.store.HGetAll(ctx, a.Key(channel))
	return values, NewStoreError(err)
}

// DeleteMany removes the messages from the channel mailbox. Ids that are not pending are ignored.
func (a *Store) DeleteMany(ctx context.Context, channel string, ids ...string) error {
	return NewStoreError(a.store.HDel(ctx, a.Key(channel), ids...))
}

// Count returns the number of pending messages in the channel mailbox
func (a *Store) Count(ctx context.Context, channel string) (int, error) {
	n, err := a.store.HLen(ctx, a.Key(channel))
	return n, NewStoreError(err)
}

// Push prepends the payload to the list stored at key. The key is used as is, i.e., it is not prefixed.
func (a *Store) Push(ctx context.Context, key string, payload []byte) error {
	return NewStoreError(a.store.LPush(ctx, key, payload))
}

// Ping checks that the backing store is available
func (a *Store) Ping(ctx context.Context) error {
	return NewStoreError(a.store.Ping(ctx))
}

// Close closes the backing store
func (a *Store) Close() error {
	return a.store.Close()
}
