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

// Package healthcheck runs the always-on background probe task per
// Upstream. It owns the discovery refresh for that Upstream too: DNS
// re-resolution happens on every health-check frequency tick, so one
// ticker drives both.
package healthcheck

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/discovery"
	"github.com/pingsix/pingsix/internal/upstream"
)

// counterState is the per-backend consecutive success/failure tally that
// drives the healthy/unhealthy transition. Only the checker's own goroutine
// touches it, so it needs no synchronization.
type counterState struct {
	consecutiveSuccess int
	consecutiveFailure int
	healthy            bool // starts false: "Initial state is unhealthy until the first successful probe"
}

// Checker is the background health-check task for one Upstream.
type Checker struct {
	upstreamID string
	spec       *config.HealthCheck
	discover   *discovery.HybridDiscovery
	prober     Prober
	handle     *upstream.Handle
	log        *logrus.Logger

	counters map[string]*counterState
	lastSet  []upstream.Backend

	stopCh  chan struct{}
	wg      sync.WaitGroup
	stopped atomic.Bool
}

// New builds a Checker for one Upstream. handle is the LoadBalancer publish
// point shared with the selector.
func New(u *config.Upstream, d *discovery.HybridDiscovery, handle *upstream.Handle, log *logrus.Logger) *Checker {
	spec := u.Checks
	if spec == nil {
		spec = &config.HealthCheck{Type: config.ProbeTCP}
	}
	return &Checker{
		upstreamID: u.ID,
		spec:       spec,
		discover:   d,
		prober:     NewProber(spec),
		handle:     handle,
		log:        log,
		counters:   make(map[string]*counterState),
		stopCh:     make(chan struct{}),
	}
}

// Start launches the ticker loop. u is re-read on every tick via refresh so
// that NodeSource edits picked up by a registry reload take effect.
func (c *Checker) Start(ctx context.Context, u func() *config.Upstream) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		interval := time.Duration(c.spec.Interval() * float64(time.Second))
		if interval <= 0 {
			interval = time.Second
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		c.runTick(ctx, u())
		for {
			select {
			case <-ticker.C:
				c.runTick(ctx, u())
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the ticker loop and waits for it to exit.
func (c *Checker) Stop() {
	if !c.stopped.CompareAndSwap(false, true) {
		return
	}
	close(c.stopCh)
	c.wg.Wait()
}

func (c *Checker) runTick(ctx context.Context, u *config.Upstream) {
	if u == nil {
		return
	}
	backends := c.discover.Resolve(ctx, u, c.lastSet)
	c.lastSet = backends

	live := make(map[string]bool, len(backends))
	out := make([]upstream.Backend, len(backends))
	for i, b := range backends {
		live[b.Key()] = true
		st := c.counters[b.Key()]
		if st == nil {
			st = &counterState{}
			c.counters[b.Key()] = st
		}

		ok := c.prober.Probe(ctx, b)
		c.applyResult(st, ok)

		b.Healthy = st.healthy
		out[i] = b
	}

	// Drop counters for backends discovery no longer reports.
	for k := range c.counters {
		if !live[k] {
			delete(c.counters, k)
		}
	}

	c.handle.Store(upstream.NewLoadBalancer(out))
}

// applyResult advances the consecutive counters and flips readiness on
// threshold, resetting the opposite counter.
func (c *Checker) applyResult(st *counterState, ok bool) {
	if ok {
		st.consecutiveFailure = 0
		st.consecutiveSuccess++
		if !st.healthy && st.consecutiveSuccess >= c.spec.ConsecutiveSuccess() {
			st.healthy = true
			st.consecutiveSuccess = 0
		}
	} else {
		st.consecutiveSuccess = 0
		st.consecutiveFailure++
		if st.healthy && st.consecutiveFailure >= c.spec.ConsecutiveFailure() {
			st.healthy = false
			st.consecutiveFailure = 0
		}
	}
}
