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
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/json-iterator/go"
	"github.com/oysterpack/relay.go/pkg/relay"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CommandTimeout bounds the one shot publish and push commands
const CommandTimeout = 30 * time.Second

func (a *cli) publishCommand() *cobra.Command {
	var (
		channel   string
		id        string
		payload   string
		needsPush int
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a message to a channel mailbox",
		Long: `Publish a message to a channel mailbox.

The message stays pending until a client connected to the channel acknowledges it.
A message id is generated when --id is not specified. Publishing with the id of a pending message replaces it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := &relay.Payload{ID: id, Payload: map[string]interface{}{}, NeedsPush: needsPush}
			if payload != "" {
				if err := json.Unmarshal([]byte(payload), &msg.Payload); err != nil {
					return fmt.Errorf("--payload must be a JSON object : %v", err)
				}
			}
			if msg.ID == "" {
				msg.ID = uuid.NewString()
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), CommandTimeout)
			defer cancel()
			r, err := startRelay(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer r.Shutdown()
			if err := r.Publish(ctx, channel, msg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "destination channel")
	cmd.Flags().StringVar(&id, "id", "", "message id")
	cmd.Flags().StringVar(&payload, "payload", "", "message payload JSON object")
	cmd.Flags().IntVar(&needsPush, "np", 0, "needs push flag")
	_ = cmd.MarkFlagRequired("channel")
	return cmd
}

func (a *cli) pushCommand() *cobra.Command {
	var (
		key     string
		payload string
	)
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Append a payload to a list",
		Long: `Append a payload to the head of a list in the mailbox store, e.g., a push notification queue
that is drained by another process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), CommandTimeout)
			defer cancel()
			r, err := startRelay(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer r.Shutdown()
			return r.Push(ctx, key, []byte(payload))
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "list key")
	cmd.Flags().StringVar(&payload, "payload", "", "payload")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
