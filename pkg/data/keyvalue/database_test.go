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

package keyvalue_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oysterpack/relay.go/pkg/data/keyvalue"
)

func createDatabase(t *testing.T) *keyvalue.Database {
	t.Helper()
	db, err := keyvalue.CreateDatabase(filepath.Join(t.TempDir(), "relay.db"), "relay")
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestCreateDatabase(t *testing.T) {
	startOfTest := time.Now()
	dbFile := filepath.Join(t.TempDir(), "TestCreateDatabase")
	dbName := "test"

	db, err := keyvalue.CreateDatabase(dbFile, dbName)
	if err != nil {
		t.Fatal(err)
	}

	fileStats, err := os.Stat(dbFile)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("name = %s, size = %d, mode = %v", fileStats.Name(), fileStats.Size(), fileStats.Mode())

	if db.Name() != dbName {
		t.Errorf("db name does not match : %s", db.Name())
	}
	created, err := db.Created()
	if err != nil {
		t.Errorf("Failed to get the database create timestamp : %v", err)
	}
	if created.Before(startOfTest) {
		t.Errorf("The created time should be after the start of the test : %v <= %v", created, startOfTest)
	}
	db.Close()

	// reopening the database keeps the original created timestamp
	db, err = keyvalue.CreateDatabase(dbFile, dbName)
	if err != nil {
		t.Fatal(err)
	}
	created2, err := db.Created()
	if err != nil || !created2.Equal(created) {
		t.Errorf("created timestamp should not have changed : %v != %v : %v", created2, created, err)
	}
	db.Close()

	db, err = keyvalue.OpenDatabase(dbFile, dbName)
	if err != nil {
		t.Fatal(err)
	}
	db.Close()
}

func TestOpenDatabase_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := keyvalue.OpenDatabase("  ", "test"); err != keyvalue.ErrFilePathIsBlank {
		t.Errorf("expected ErrFilePathIsBlank : %v", err)
	}
	if _, err := keyvalue.OpenDatabase(dir, "test"); err == nil {
		t.Error("opening a directory should have failed")
	}
	if _, err := keyvalue.CreateDatabase(filepath.Join(dir, "db"), ""); err != keyvalue.ErrDatabaseNameMustNotBeBlank {
		t.Errorf("expected ErrDatabaseNameMustNotBeBlank : %v", err)
	}

	dbFile := filepath.Join(dir, "db")
	db, err := keyvalue.CreateDatabase(dbFile, "a")
	if err != nil {
		t.Fatal(err)
	}
	db.Close()
	if _, err := keyvalue.OpenDatabase(dbFile, "b"); err == nil {
		t.Error("root bucket does not exist, which should have failed")
	}
}

func TestDatabase_Hash(t *testing.T) {
	db := createDatabase(t)
	defer db.Close()
	ctx := context.Background()

	if _, err := db.HGet(ctx, "p1:A", "1"); !errors.Is(err, keyvalue.ErrNotFound) {
		t.Fatalf("expected ErrNotFound : %v", err)
	}

	if err := db.HSet(ctx, "p1:A", "1", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := db.HSet(ctx, "p1:A", "2", []byte("two")); err != nil {
		t.Fatal(err)
	}
	// last write wins
	if err := db.HSet(ctx, "p1:A", "2", []byte("TWO")); err != nil {
		t.Fatal(err)
	}

	value, err := db.HGet(ctx, "p1:A", "2")
	if err != nil {
		t.Fatal(err)
	}
	if string(value) != "TWO" {
		t.Errorf("value was not overwritten : %s", value)
	}

	if n, err := db.HLen(ctx, "p1:A"); err != nil || n != 2 {
		t.Errorf("expected 2 fields : %d : %v", n, err)
	}

	values, err := db.HGetAll(ctx, "p1:A")
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 2 || string(values["1"]) != "one" {
		t.Errorf("unexpected values : %v", values)
	}

	// deleting unknown fields is a no-op
	if err := db.HDel(ctx, "p1:A", "1", "x"); err != nil {
		t.Fatal(err)
	}
	if err := db.HDel(ctx, "p1:unknown", "1"); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.HLen(ctx, "p1:A"); n != 1 {
		t.Errorf("expected 1 field : %d", n)
	}
	if err := db.HDel(ctx, "p1:A", "2"); err != nil {
		t.Fatal(err)
	}
	values, err = db.HGetAll(ctx, "p1:A")
	if err != nil || len(values) != 0 {
		t.Errorf("hash should be empty : %v : %v", values, err)
	}
}

func TestDatabase_List(t *testing.T) {
	db := createDatabase(t)
	defer db.Close()
	ctx := context.Background()

	for _, v := range []string{"a", "b", "c"} {
		if err := db.LPush(ctx, "events", []byte(v)); err != nil {
			t.Fatal(err)
		}
	}

	values, err := db.LRange(ctx, "events")
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 3 || string(values[0]) != "c" || string(values[2]) != "a" {
		t.Errorf("list should be head first : %q", values)
	}

	if values, err := db.LRange(ctx, "unknown"); err != nil || len(values) != 0 {
		t.Errorf("unknown list should be empty : %v : %v", values, err)
	}
}

func TestDatabase_Ping(t *testing.T) {
	db := createDatabase(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := db.Ping(ctx); err == nil {
		t.Error("ping with a cancelled context should have failed")
	}

	db.Close()
	if err := db.Ping(context.Background()); err == nil {
		t.Error("ping on a closed database should have failed")
	}
}

var _ keyvalue.HashStore = &keyvalue.Database{}
