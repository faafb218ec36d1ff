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

package upstream

import "sync/atomic"

// Handle is the lock-free publish point for one Upstream's LoadBalancer
//. Exactly one background
// task (the health checker) calls Store; any number of request-path
// goroutines call Load concurrently with it and with each other.
type Handle struct {
	p atomic.Pointer[LoadBalancer]
}

// NewHandle seeds a Handle with an initial (possibly empty) backend set.
func NewHandle(initial []Backend) *Handle {
	h := &Handle{}
	h.Store(NewLoadBalancer(initial))
	return h
}

// Load returns the current snapshot. Never nil once NewHandle was used.
func (h *Handle) Load() *LoadBalancer { return h.p.Load() }

// Store publishes a full replacement snapshot.
func (h *Handle) Store(lb *LoadBalancer) { h.p.Store(lb) }
