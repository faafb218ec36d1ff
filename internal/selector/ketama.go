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

package selector

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/pingsix/pingsix/internal/upstream"
)

// virtualNodesPerWeight is the ring density the ketama ring uses:
// "160 virtual nodes per unit weight".
const virtualNodesPerWeight = 160

type ringEntry struct {
	hash    uint32
	backend upstream.Backend
}

// ketamaSelector is a consistent-hash ring rebuilt fresh from the healthy
// set on every call. Ring construction is O(n) in the number of virtual
// nodes, which is cheap relative to a backend dial and keeps the selector
// stateless between health-check transitions.
type ketamaSelector struct{}

func (ketamaSelector) Select(healthy []upstream.Backend, key string) (upstream.Backend, bool) {
	if len(healthy) == 0 {
		return upstream.Backend{}, false
	}
	ring := buildRing(healthy)
	target := hash32(key)

	// First ring position >= hash(key); wrap to the first entry.
	idx := sort.Search(len(ring), func(i int) bool { return ring[i].hash >= target })
	if idx == len(ring) {
		idx = 0
	}
	return ring[idx].backend, true
}

func buildRing(backends []upstream.Backend) []ringEntry {
	sorted := make([]upstream.Backend, len(backends))
	copy(sorted, backends)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })

	ring := make([]ringEntry, 0, len(sorted)*virtualNodesPerWeight)
	for _, b := range sorted {
		w := b.Weight
		if w <= 0 {
			w = 1
		}
		vnodes := w * virtualNodesPerWeight
		for i := 0; i < vnodes; i++ {
			h := hash32(fmt.Sprintf("%s-%d", b.Address, i))
			ring = append(ring, ringEntry{hash: h, backend: b})
		}
	}
	sort.Slice(ring, func(i, j int) bool { return ring[i].hash < ring[j].hash })
	return ring
}

func hash32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
