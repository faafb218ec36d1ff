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
	"hash/fnv"
	"sort"

	"github.com/pingsix/pingsix/internal/upstream"
)

// fnvSelector picks a backend via 64-bit FNV-1a of the selector key modulo
// total weight, walking the sorted backend list by
// cumulative weight so the bucket boundaries are stable across calls.
type fnvSelector struct{}

func (fnvSelector) Select(healthy []upstream.Backend, key string) (upstream.Backend, bool) {
	if len(healthy) == 0 {
		return upstream.Backend{}, false
	}

	sorted := make([]upstream.Backend, len(healthy))
	copy(sorted, healthy)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })

	totalWeight := uint64(0)
	for _, b := range sorted {
		totalWeight += weightOf(b)
	}
	if totalWeight == 0 {
		return sorted[0], true
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	pick := h.Sum64() % totalWeight

	for _, b := range sorted {
		w := weightOf(b)
		if pick < w {
			return b, true
		}
		pick -= w
	}
	return sorted[len(sorted)-1], true
}

func weightOf(b upstream.Backend) uint64 {
	if b.Weight <= 0 {
		return 1
	}
	return uint64(b.Weight)
}
