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

package upstreampool

import (
	"context"
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/discovery"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(nopWriter{})
	return l
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

type stubResolver struct{}

func (stubResolver) LookupIPAddr(context.Context, string) ([]net.IPAddr, error) { return nil, nil }

func newTestDiscovery() *discovery.HybridDiscovery {
	return discovery.New(stubResolver{}, discardLogger())
}

func TestManagerHandleReusesSameEntryForSameSpec(t *testing.T) {
	m := New(newTestDiscovery(), discardLogger())
	u := &config.Upstream{ID: "u1", Nodes: config.NodeSource{Nodes: map[string]int{"10.0.0.1:80": 1}}}

	h1 := m.Handle(u)
	h2 := m.Handle(u)
	assert.Same(t, h1, h2)
	assert.Equal(t, 1, m.Len())
}

func TestManagerHandleRestartsOnNewSpecPointer(t *testing.T) {
	m := New(newTestDiscovery(), discardLogger())
	u1 := &config.Upstream{ID: "u1", Nodes: config.NodeSource{Nodes: map[string]int{"10.0.0.1:80": 1}}}
	u2 := &config.Upstream{ID: "u1", Nodes: config.NodeSource{Nodes: map[string]int{"10.0.0.2:80": 1}}}

	h1 := m.Handle(u1)
	h2 := m.Handle(u2)
	assert.NotSame(t, h1, h2)
	assert.Equal(t, 1, m.Len())
}

func TestManagerPruneRemovesMissingUpstreams(t *testing.T) {
	m := New(newTestDiscovery(), discardLogger())
	u := &config.Upstream{ID: "u1", Nodes: config.NodeSource{Nodes: map[string]int{"10.0.0.1:80": 1}}}
	m.Handle(u)
	require.Equal(t, 1, m.Len())

	m.Prune(map[string]struct{}{})
	assert.Equal(t, 0, m.Len())
}
