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
	"encoding/binary"
	"math"

	bolt "go.etcd.io/bbolt"
)

// bucket names
const (
	HASHES = "hashes"
	LISTS  = "lists"
)

func lookupBucket(tx *bolt.Tx, path ...string) *bolt.Bucket {
	return lookupChildBucket(tx.Bucket([]byte(path[0])), path[1:])
}

func lookupChildBucket(parent *bolt.Bucket, path []string) *bolt.Bucket {
	if parent == nil || len(path) == 0 {
		return parent
	}
	return lookupChildBucket(parent.Bucket([]byte(path[0])), path[1:])
}

func createBucketPath(tx *bolt.Tx, path ...string) (*bolt.Bucket, error) {
	b, err := tx.CreateBucketIfNotExists([]byte(path[0]))
	if err != nil {
		return nil, err
	}
	for _, name := range path[1:] {
		if b, err = b.CreateBucketIfNotExists([]byte(name)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// listKey encodes the sequence so that later pushes sort first, i.e., iterating the bucket yields the list head first.
func listKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, math.MaxUint64-seq)
	return key
}
