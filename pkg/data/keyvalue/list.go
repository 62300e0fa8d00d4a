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

import (
	"context"

	bolt "go.etcd.io/bbolt"
)

// LPush implements HashStore
func (a *Database) LPush(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrKeyMustNotBeBlank
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		b, err := createBucketPath(tx, a.name, LISTS, key)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(listKey(seq), value)
	})
}

// LRange implements HashStore
func (a *Database) LRange(ctx context.Context, key string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var values [][]byte
	err := a.db.View(func(tx *bolt.Tx) error {
		b := lookupBucket(tx, a.name, LISTS, key)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			values = append(values, append([]byte(nil), v...))
			return nil
		})
	})
	return values, err
}
