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
	"math/rand"

	"github.com/pingsix/pingsix/internal/upstream"
)

// randomSelector performs a weighted reservoir choice on each call
//, so no state is shared across calls.
type randomSelector struct{}

func (randomSelector) Select(healthy []upstream.Backend, _ string) (upstream.Backend, bool) {
	if len(healthy) == 0 {
		return upstream.Backend{}, false
	}

	totalWeight := 0
	for _, b := range healthy {
		w := b.Weight
		if w <= 0 {
			w = 1
		}
		totalWeight += w
	}

	pick := rand.Intn(totalWeight)
	for _, b := range healthy {
		w := b.Weight
		if w <= 0 {
			w = 1
		}
		if pick < w {
			return b, true
		}
		pick -= w
	}
	return healthy[len(healthy)-1], true
}
