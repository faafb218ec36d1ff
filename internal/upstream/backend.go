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

// Package upstream holds the types shared by discovery, the health checker
// and the selector: a Backend, its peer template, and the LoadBalancer
// snapshot handle that the background health-check task publishes and the
// request path reads.
package upstream

import "time"

// PeerTemplate carries per-request dial parameters for a Backend: the
// Upstream's timeouts and TLS verification policy. Nothing in this tree
// fills it in; the pipeline's dial reads timeouts from the Upstream directly.
type PeerTemplate struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	SendTimeout    time.Duration
	VerifyTLS      bool
}

// Backend is one concrete endpoint within an Upstream.
type Backend struct {
	Address  string
	Weight   int
	Peer     PeerTemplate
	Healthy  bool // readiness, mutated only by the health checker's publishes
}

// Key returns the stable identity used by selectors and the health checker
// to correlate a Backend across successive discovery refreshes.
func (b Backend) Key() string { return b.Address }

// LoadBalancer is the reader-safe, immutable snapshot of an Upstream's
// current backend set. The
// health checker's background task is the sole writer, via Handle.Store; the
// selector and everything else only ever Handle.Load. Never mutate a Backend
// slice obtained from Backends() in place.
type LoadBalancer struct {
	backends []Backend
}

// NewLoadBalancer wraps an initial backend set, as returned by Discovery.
func NewLoadBalancer(backends []Backend) *LoadBalancer {
	return &LoadBalancer{backends: backends}
}

// Backends returns the current backend snapshot. Safe for concurrent use;
// callers must treat the slice as read-only.
func (lb *LoadBalancer) Backends() []Backend {
	if lb == nil {
		return nil
	}
	return lb.backends
}

// Healthy returns only the backends currently marked ready.
func (lb *LoadBalancer) Healthy() []Backend {
	all := lb.Backends()
	out := make([]Backend, 0, len(all))
	for _, b := range all {
		if b.Healthy {
			out = append(out, b)
		}
	}
	return out
}
