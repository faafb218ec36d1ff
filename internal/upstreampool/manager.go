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

// Package upstreampool supervises one health-check task per Upstream and
// hands the request pipeline the shared *upstream.Handle each task
// publishes to. It sits above both internal/healthcheck and
// internal/upstream so neither has to know about per-upstream lifecycle.
package upstreampool

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/discovery"
	"github.com/pingsix/pingsix/internal/healthcheck"
	"github.com/pingsix/pingsix/internal/upstream"
)

type entry struct {
	spec    *config.Upstream
	handle  *upstream.Handle
	checker *healthcheck.Checker
}

// Manager owns one entry per live Upstream ID.
type Manager struct {
	mu       sync.Mutex
	entries  map[string]*entry
	discover *discovery.HybridDiscovery
	log      *logrus.Logger
}

// New returns an empty Manager.
func New(discover *discovery.HybridDiscovery, log *logrus.Logger) *Manager {
	return &Manager{entries: make(map[string]*entry), discover: discover, log: log}
}

// Handle returns the Handle for u, starting its checker on first use and
// restarting it if the Upstream's configuration pointer changed (a KV or
// static-reload upsert always produces a fresh *config.Upstream, so pointer
// identity is the cheap way to detect "this needs a new checker").
func (m *Manager) Handle(u *config.Upstream) *upstream.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[u.ID]; ok {
		if e.spec == u {
			return e.handle
		}
		e.checker.Stop()
		delete(m.entries, u.ID)
	}

	handle := upstream.NewHandle(nil)
	checker := healthcheck.New(u, m.discover, handle, m.log)
	checker.Start(context.Background(), func() *config.Upstream { return u })

	m.entries[u.ID] = &entry{spec: u, handle: handle, checker: checker}
	return handle
}

// Prune stops and removes every entry whose ID is not in live.
func (m *Manager) Prune(live map[string]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if _, ok := live[id]; !ok {
			e.checker.Stop()
			delete(m.entries, id)
		}
	}
}

// Len reports how many upstreams currently have a running checker.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
