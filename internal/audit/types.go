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

// Package audit records Admin API mutations to a durable, idempotent sink. A retried mutation (client
// timeout, admin process restart mid-write) must not produce two audit
// records for the same change.
package audit

import "context"

// Entry is the adapter-facing shape for one recorded mutation.
//
//   - Kind/ID: the resource that changed (e.g. "routes", "r1")
//   - Action: "put" or "delete"
//   - ChangeID: idempotency key for this specific mutation attempt. Retrying
//     the same ChangeID must be a no-op.
//   - Actor: caller identity, currently the literal API key presented (the
//     admin API has no user accounts).
//   - Payload: the canonicalized resource body that is written to the KV
//     store (id forced to the URL id), nil for deletes.
type Entry struct {
	Kind     string
	ID       string
	Action   string
	ChangeID string
	Actor    string
	Payload  []byte
}

// Sink applies entries idempotently. Implementations must ensure a repeated
// ChangeID for the same (Kind, ID) is a no-op, and should be safe to call
// from concurrent admin requests.
type Sink interface {
	Record(ctx context.Context, entries []Entry) error
}

// NopSink discards everything; used when no audit_backend is configured.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(context.Context, []Entry) error { return nil }
