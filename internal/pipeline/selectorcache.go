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

package pipeline

import (
	"sync"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/selector"
)

// selectorCache keeps one Selector instance per live Upstream so that
// round-robin's cursor persists across requests (ketama rebuilds its ring on
// every call and keeps no state). An entry is rebuilt only when the
// Upstream's config pointer changes (same reuse-by-identity trick as
// upstreampool.Manager).
type selectorCache struct {
	mu      sync.Mutex
	entries map[string]selectorEntry
}

type selectorEntry struct {
	spec *config.Upstream
	sel  selector.Selector
}

func newSelectorCache() *selectorCache {
	return &selectorCache{entries: make(map[string]selectorEntry)}
}

func (c *selectorCache) get(u *config.Upstream) selector.Selector {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[u.ID]; ok && e.spec == u {
		return e.sel
	}
	sel := selector.New(u)
	c.entries[u.ID] = selectorEntry{spec: u, sel: sel}
	return sel
}
