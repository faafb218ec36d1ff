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
	"sort"

	"github.com/pingsix/pingsix/internal/upstream"
)

// roundRobinSelector is a stable cyclic order over healthy backends,
// weighted by integer weight via replication. The cursor is
// a single striped counter shared across all calls for this Upstream.
type roundRobinSelector struct {
	cursor *stripedCounter
}

func newRoundRobin() *roundRobinSelector {
	return &roundRobinSelector{cursor: &stripedCounter{}}
}

func (s *roundRobinSelector) Select(healthy []upstream.Backend, _ string) (upstream.Backend, bool) {
	if len(healthy) == 0 {
		return upstream.Backend{}, false
	}
	expanded := expandByWeight(healthy)
	idx := s.cursor.next() % uint64(len(expanded))
	return expanded[idx], true
}

// expandByWeight replicates each backend by its (>=1) weight in a
// deterministic address order, so that over N->infinity selections the
// fraction assigned to backend i converges to w_i / sum(w_j).
func expandByWeight(backends []upstream.Backend) []upstream.Backend {
	sorted := make([]upstream.Backend, len(backends))
	copy(sorted, backends)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })

	out := make([]upstream.Backend, 0, len(sorted))
	for _, b := range sorted {
		w := b.Weight
		if w <= 0 {
			w = 1
		}
		for i := 0; i < w; i++ {
			out = append(out, b)
		}
	}
	return out
}
