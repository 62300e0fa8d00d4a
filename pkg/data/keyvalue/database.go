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
	"os"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	READ_WRITE_MODE os.FileMode = 0600

	CREATED = "created"
)

// DefaultOpenTimeout is how long to wait to obtain the database file lock
const DefaultOpenTimeout = time.Second * 30

// Database is a bbolt backed HashStore
type Database struct {
	name string
	db   *bolt.DB
}

// OpenDatabase opens the database in read-write mode.
// The filePath must point to an existing bbolt file that contains a root bucket matching the database name.
func OpenDatabase(filePath string, dbName string) (*Database, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, ErrFilePathIsBlank
	}

	if stat, err := os.Stat(filePath); err != nil {
		return nil, err
	} else if stat.IsDir() {
		return nil, errDatabaseFilePathIsDir(filePath)
	}

	dbName = strings.TrimSpace(dbName)
	if dbName == "" {
		return nil, ErrDatabaseNameMustNotBeBlank
	}

	db, err := bolt.Open(filePath, READ_WRITE_MODE, &bolt.Options{Timeout: DefaultOpenTimeout})
	if err != nil {
		return nil, err
	}

	err = db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(dbName)) == nil {
			return errRootDatabaseBucketDoesNotExist(dbName)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Database{name: dbName, db: db}, nil
}

// CreateDatabase opens the database with the specified name at the specified path, creating it if it does not exist.
//
// If the database file does not exist, then it will be created. The database existence is determined by the existence
// of a root bucket that matches the db name.
func CreateDatabase(filePath string, dbName string) (*Database, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, ErrFilePathIsBlank
	}

	dbName = strings.TrimSpace(dbName)
	if dbName == "" {
		return nil, ErrDatabaseNameMustNotBeBlank
	}

	db, err := bolt.Open(filePath, READ_WRITE_MODE, &bolt.Options{Timeout: DefaultOpenTimeout})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := createBucketPath(tx, dbName, HASHES); err != nil {
			return err
		}
		if _, err := createBucketPath(tx, dbName, LISTS); err != nil {
			return err
		}

		// set the created timestamp
		dbBucket := tx.Bucket([]byte(dbName))
		if dbBucket.Get([]byte(CREATED)) == nil {
			now, _ := time.Now().MarshalBinary() // ignoring err, because this will never err
			return dbBucket.Put([]byte(CREATED), now)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Database{name: dbName, db: db}, nil
}

// Name returns the database name, which is also the name of the root bucket
func (a *Database) Name() string {
	return a.name
}

// Path returns the database file path
func (a *Database) Path() string {
	return a.db.Path()
}

// Created returns when the database was created
func (a *Database) Created() (time.Time, error) {
	t := time.Time{}
	err := a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(a.name))
		if b == nil {
			return errRootDatabaseBucketDoesNotExist(a.name)
		}
		return t.UnmarshalBinary(b.Get([]byte(CREATED)))
	})
	return t, err
}

// Ping verifies the root bucket is readable
func (a *Database) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(a.name)) == nil {
			return errRootDatabaseBucketDoesNotExist(a.name)
		}
		return nil
	})
}

// Close releases all database resources
func (a *Database) Close() error {
	return a.db.Close()
}
