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

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingsix/pingsix/internal/config"
)

func TestExactHostAndExactPathRouting(t *testing.T) {
	r1 := &config.Route{ID: "r1", Hosts: []string{"a.example"}, URIs: []string{"/v1"}}
	r2 := &config.Route{ID: "r2", Hosts: []string{"a.example"}, URIs: []string{"/"}}
	m := Build(map[string]*config.Route{"r1": r1, "r2": r2})

	got, ok := m.Match(Request{Host: "a.example", Path: "/v1", Method: "GET"})
	require.True(t, ok)
	assert.Equal(t, "r1", got.ID)

	got, ok = m.Match(Request{Host: "a.example", Path: "/v2", Method: "GET"})
	require.True(t, ok)
	assert.Equal(t, "r2", got.ID)
}

func TestWildcardHost(t *testing.T) {
	r := &config.Route{ID: "r", Hosts: []string{"*.example"}, URIs: []string{"/"}}
	m := Build(map[string]*config.Route{"r": r})

	_, ok := m.Match(Request{Host: "foo.example", Path: "/", Method: "GET"})
	assert.True(t, ok)

	_, ok = m.Match(Request{Host: "example", Path: "/", Method: "GET"})
	assert.False(t, ok)
}

func TestNoHostPatternMatchesAnyHost(t *testing.T) {
	r := &config.Route{ID: "r", URIs: []string{"/health"}}
	m := Build(map[string]*config.Route{"r": r})
	_, ok := m.Match(Request{Host: "anything.example", Path: "/health", Method: "GET"})
	assert.True(t, ok)
}

func TestMethodFiltering(t *testing.T) {
	r := &config.Route{ID: "r", URIs: []string{"/x"}, Methods: []string{"POST"}}
	m := Build(map[string]*config.Route{"r": r})

	_, ok := m.Match(Request{Path: "/x", Method: "GET"})
	assert.False(t, ok)
	_, ok = m.Match(Request{Path: "/x", Method: "POST"})
	assert.True(t, ok)
}

func TestPriorityBreaksTie(t *testing.T) {
	low := &config.Route{ID: "low", URIs: []string{"/x"}, Priority: 0}
	high := &config.Route{ID: "high", URIs: []string{"/x"}, Priority: 10}
	m := Build(map[string]*config.Route{"low": low, "high": high})

	got, ok := m.Match(Request{Path: "/x", Method: "GET"})
	require.True(t, ok)
	assert.Equal(t, "high", got.ID)
}

func TestRouteIDBreaksRemainingTies(t *testing.T) {
	a := &config.Route{ID: "bbb", URIs: []string{"/x"}}
	b := &config.Route{ID: "aaa", URIs: []string{"/x"}}
	m := Build(map[string]*config.Route{"bbb": a, "aaa": b})

	got, ok := m.Match(Request{Path: "/x", Method: "GET"})
	require.True(t, ok)
	assert.Equal(t, "aaa", got.ID)
}

func TestNoMatchReturnsFalse(t *testing.T) {
	r := &config.Route{ID: "r", Hosts: []string{"a.example"}, URIs: []string{"/x"}}
	m := Build(map[string]*config.Route{"r": r})
	_, ok := m.Match(Request{Host: "b.example", Path: "/x", Method: "GET"})
	assert.False(t, ok)
}

func TestHostHeaderPortIsStripped(t *testing.T) {
	r := &config.Route{ID: "r", Hosts: []string{"a.example"}, URIs: []string{"/"}}
	m := Build(map[string]*config.Route{"r": r})
	_, ok := m.Match(Request{Host: "a.example:8443", Path: "/", Method: "GET"})
	assert.True(t, ok)
}

func TestRequestURIOpenQuestionA(t *testing.T) {
	assert.Equal(t, "/v1", RequestURI("/v1", ""))
	assert.Equal(t, "/v1?a=b", RequestURI("/v1", "a=b"))
}
