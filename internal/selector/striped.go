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

import "sync/atomic"

// padSize over-pads a single atomic.Uint64 to a full cache line, the same
// trick vsa.VSA's stripes use to keep concurrent counters from false-sharing
// under high fan-out. The round-robin cursor only needs one counter, not a
// striped set, but a hot Upstream under heavy concurrency still benefits
// from keeping that counter off any neighboring field's cache line.
const padSize = 128 - 8

type stripedCounter struct {
	val atomic.Uint64
	_   [padSize]byte
}

// next returns a monotonically increasing cursor value, racily but without
// ever repeating a value to two callers that observe the same result —
// exactly what weighted round-robin indexing needs.
func (c *stripedCounter) next() uint64 {
	return c.val.Add(1) - 1
}
