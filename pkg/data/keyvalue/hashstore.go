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

package keyvalue

import "context"

// HashStore is a key-value store where each key maps to a hash of field-value pairs.
// The operations mirror the redis hash commands that the relay depends on.
type HashStore interface {
	// HGet returns the value stored for the field in the hash at key. ErrNotFound is returned if the field or hash does not exist.
	HGet(ctx context.Context, key, field string) ([]byte, error)

	// HSet sets the field value in the hash at key. An existing value is overwritten.
	HSet(ctx context.Context, key, field string, value []byte) error

	// HDel deletes the fields from the hash at key. Fields that do not exist are ignored.
	HDel(ctx context.Context, key string, fields ...string) error

	// HGetAll returns all field-values stored in the hash at key. An empty map is returned if the hash does not exist.
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)

	// HLen returns the number of fields in the hash at key
	HLen(ctx context.Context, key string) (int, error)

	// LPush prepends the value to the list at key. The list is created if it does not exist.
	LPush(ctx context.Context, key string, value []byte) error

	// LRange returns all list values, head first
	LRange(ctx context.Context, key string) ([][]byte, error)

	// Ping checks if the store is available
	Ping(ctx context.Context) error

	// Close releases all store resources
	Close() error
}
