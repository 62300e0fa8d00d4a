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

// HGet implements HashStore
func (a *Database) HGet(ctx context.Context, key, field string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var value []byte
	err := a.db.View(func(tx *bolt.Tx) error {
		b := lookupBucket(tx, a.name, HASHES, key)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(field))
		if v == nil {
			return ErrNotFound
		}
		// the value is only valid for the life of the transaction
		value = append([]byte(nil), v...)
		return nil
	})
	return value, err
}

// HSet implements HashStore
func (a *Database) HSet(ctx context.Context, key, field string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrKeyMustNotBeBlank
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		b, err := createBucketPath(tx, a.name, HASHES, key)
		if err != nil {
			return err
		}
		return b.Put([]byte(field), value)
	})
}

// HDel implements HashStore.
// All or none are deleted within the same transaction. Once the hash is empty, its bucket is removed.
func (a *Database) HDel(ctx context.Context, key string, fields ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		hashes := lookupBucket(tx, a.name, HASHES)
		if hashes == nil {
			return errRootDatabaseBucketDoesNotExist(a.name)
		}
		b := hashes.Bucket([]byte(key))
		if b == nil {
			return nil
		}
		for _, field := range fields {
			if err := b.Delete([]byte(field)); err != nil {
				return err
			}
		}
		if k, _ := b.Cursor().First(); k == nil {
			return hashes.DeleteBucket([]byte(key))
		}
		return nil
	})
}

// HGetAll implements HashStore
func (a *Database) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	values := map[string][]byte{}
	err := a.db.View(func(tx *bolt.Tx) error {
		b := lookupBucket(tx, a.name, HASHES, key)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			values[string(k)] = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// HLen implements HashStore
func (a *Database) HLen(ctx context.Context, key string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count := 0
	err := a.db.View(func(tx *bolt.Tx) error {
		b := lookupBucket(tx, a.name, HASHES, key)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			count++
		}
		return nil
	})
	return count, err
}
