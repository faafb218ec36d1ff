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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pingsix/pingsix/internal/config"
)

func TestSelectorCacheReusesInstanceForSameSpecPointer(t *testing.T) {
	c := newSelectorCache()
	u := &config.Upstream{ID: "u1", Algorithm: config.AlgoRoundRobin}

	s1 := c.get(u)
	s2 := c.get(u)
	assert.Same(t, s1, s2)
}

func TestSelectorCacheRebuildsOnNewSpecPointer(t *testing.T) {
	c := newSelectorCache()
	u1 := &config.Upstream{ID: "u1", Algorithm: config.AlgoRoundRobin}
	u2 := &config.Upstream{ID: "u1", Algorithm: config.AlgoRandom}

	s1 := c.get(u1)
	s2 := c.get(u2)
	assert.NotSame(t, s1, s2)
}
