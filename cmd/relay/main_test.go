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
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/oysterpack/relay.go/pkg/app"
	"github.com/oysterpack/relay.go/pkg/config"
	"github.com/oysterpack/relay.go/pkg/metrics"
	"gopkg.in/yaml.v3"
)

// redisEnv points the store and bus at an in-memory redis server
func redisEnv(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	server := miniredis.RunT(t)
	t.Setenv("RELAY_STORE_DRIVER", config.STORE_REDIS)
	t.Setenv("RELAY_STORE_REDIS_ADDR", server.Addr())
	t.Setenv("RELAY_BUS_DRIVER", config.BUS_REDIS)
	t.Setenv("RELAY_BUS_REDIS_ADDR", server.Addr())
	return server
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPublishCommand(t *testing.T) {
	server := redisEnv(t)

	out, err := execute(t, "publish", "--channel", "alice", "--id", "m1", "--payload", `{"text":"hi"}`)
	if err != nil {
		t.Fatalf("%v : %s", err, out)
	}
	if strings.TrimSpace(out) != "m1" {
		t.Errorf("the message id should have been printed : %q", out)
	}
	if value := server.HGet("p1:alice", "m1"); !strings.Contains(value, `"text":"hi"`) {
		t.Errorf("message was not stored : %q", value)
	}

	// When no id is specified, then one is generated
	out, err = execute(t, "publish", "--channel", "alice")
	if err != nil {
		t.Fatalf("%v : %s", err, out)
	}
	id := strings.TrimSpace(out)
	if id == "" || server.HGet("p1:alice", id) == "" {
		t.Errorf("message was not stored with a generated id : %q", out)
	}

	if _, err = execute(t, "publish", "--channel", "alice", "--payload", "[1,2]"); err == nil {
		t.Error("a payload that is not a JSON object should be rejected")
	}
}

func TestPushCommand(t *testing.T) {
	server := redisEnv(t)
	if out, err := execute(t, "push", "--key", "apns", "--payload", "token:hello"); err != nil {
		t.Fatalf("%v : %s", err, out)
	}
	values, err := server.List("apns")
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 1 || values[0] != "token:hello" {
		t.Errorf("unexpected list : %v", values)
	}
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("RELAY_RELAY_MAX_BACKLOG", "50")
	out, err := execute(t, "config", "--log-level", "ERROR")
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Config{}
	if err := yaml.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Relay.MaxBacklog != 50 {
		t.Errorf("env override was not applied : %s", out)
	}
	if cfg.Log.Level != "ERROR" {
		t.Errorf("flag override was not applied : %s", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("RELAY_STORE_DRIVER", "mysql")
	if _, err := execute(t, "config"); err == nil {
		t.Error("invalid config should have failed the command")
	}
}

func TestVersionCommand(t *testing.T) {
	// the version command does not require a valid config
	t.Setenv("RELAY_STORE_DRIVER", "mysql")
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != app.Version {
		t.Errorf("unexpected version : %q", out)
	}
}

func TestOpenDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.db")

	// Given no database file, when the database is opened, then it is created
	db, err := openDatabase(path, "relay")
	if err != nil {
		t.Fatal(err)
	}
	created, err := db.Created()
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	// When the file exists, then the existing database is opened
	db, err = openDatabase(path, "relay")
	if err != nil {
		t.Fatal(err)
	}
	if reopened, err := db.Created(); err != nil || !reopened.Equal(created) {
		t.Errorf("created timestamp should be unchanged : %v -> %v : %v", created, reopened, err)
	}
	db.Close()

	// When the file does not contain the named database, then it is not created
	if other, err := openDatabase(path, "other"); err == nil {
		other.Close()
		t.Error("opening a database that does not exist in the file should have failed")
	}
}

func TestServeCommand(t *testing.T) {
	redisEnv(t)
	t.Setenv("RELAY_SERVER_ADDR", "127.0.0.1:0")
	t.Setenv("RELAY_METRICS_ADDR", "127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"serve"})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	// Given the relay is running
	deadline := time.Now().Add(5 * time.Second)
	for {
		families, err := metrics.Gather()
		if err != nil {
			t.Fatal(err)
		}
		if metrics.FindMetricFamilyByName(families, "relay_connections") != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("the relay was not started : %s", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	// When the command context is cancelled, then the server shuts down cleanly
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("%v : %s", err, out.String())
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}
