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
	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/upstream"
)

// Selector picks one Backend from a healthy set for a given key. Dispatch
// is virtual (one small struct per algorithm) rather than a tagged variant,
// because Go interfaces already give us that without a type switch at
// every call site.
type Selector interface {
	Select(healthy []upstream.Backend, key string) (upstream.Backend, bool)
}

// New builds the Selector for an Upstream's configured algorithm.
func New(u *config.Upstream) Selector {
	switch u.Algorithm {
	case config.AlgoRandom:
		return &randomSelector{}
	case config.AlgoFNVHash:
		return &fnvSelector{}
	case config.AlgoKetama:
		return &ketamaSelector{}
	default:
		return newRoundRobin()
	}
}
