// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package admin implements the Admin HTTP API: CRUD endpoints
// over the KV store, authenticated by a static API key, with every mutation
// recorded to an audit sink before it is written.
package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/pingsix/pingsix/internal/kvsync"
)

// Store writes resource documents to the KV store under <prefix>/<kind>/<id>
//; the sync engine propagates the change to
// every reader from there.
type Store struct {
	client kvsync.Client
	prefix string
}

// NewStore wraps client for key construction under prefix.
func NewStore(client kvsync.Client, prefix string) *Store {
	return &Store{client: client, prefix: strings.TrimSuffix(prefix, "/")}
}

func (s *Store) key(kind, id string) string {
	return fmt.Sprintf("%s/%s/%s", s.prefix, kind, id)
}

// Get returns the raw JSON value stored for kind/id, or ok=false if absent.
func (s *Store) Get(ctx context.Context, kind, id string) (value []byte, ok bool, err error) {
	resp, err := s.client.Get(ctx, s.key(kind, id))
	if err != nil {
		return nil, false, err
	}
	if len(resp.Kvs) == 0 {
		return nil, false, nil
	}
	return resp.Kvs[0].Value, true, nil
}

// Put writes value for kind/id.
func (s *Store) Put(ctx context.Context, kind, id string, value []byte) error {
	_, err := s.client.Put(ctx, s.key(kind, id), string(value))
	return err
}

// Delete removes kind/id. It is not an error if the key was already absent.
func (s *Store) Delete(ctx context.Context, kind, id string) error {
	_, err := s.client.Delete(ctx, s.key(kind, id))
	return err
}
