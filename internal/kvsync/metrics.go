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

package kvsync

import "github.com/prometheus/client_golang/prometheus"

// State names for the pingsix_kv_sync_state gauge.
const (
	stateDisconnected = "disconnected"
	stateListing      = "listing"
	stateWatching     = "watching"
)

var allStates = []string{stateDisconnected, stateListing, stateWatching}

var (
	syncState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pingsix_kv_sync_state",
		Help: "1 for the current KV sync engine state, 0 for the others.",
	}, []string{"state"})
	reconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pingsix_kv_sync_reconnects_total",
		Help: "Total number of times the KV sync engine re-entered Disconnected.",
	})
	eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pingsix_kv_sync_events_total",
		Help: "Total KV events applied to the registry, by operation.",
	}, []string{"op"})
	revisionGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pingsix_kv_sync_revision",
		Help: "Last applied KV store revision.",
	})
)

func init() {
	prometheus.MustRegister(syncState, reconnectsTotal, eventsTotal, revisionGauge)
}

// setState publishes a transition, zeroing every other state's gauge so the
// vector always has exactly one state at 1.
func setState(state string) {
	for _, s := range allStates {
		if s == state {
			syncState.WithLabelValues(s).Set(1)
		} else {
			syncState.WithLabelValues(s).Set(0)
		}
	}
}

func recordEvent(op string)    { eventsTotal.WithLabelValues(op).Inc() }
func recordRevision(rev int64) { revisionGauge.Set(float64(rev)) }
func recordReconnect()         { reconnectsTotal.Inc() }
