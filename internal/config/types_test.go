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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstreamValidate(t *testing.T) {
	cases := []struct {
		name    string
		u       Upstream
		wantErr bool
	}{
		{
			name:    "missing id",
			u:       Upstream{Nodes: NodeSource{Nodes: map[string]int{"a:80": 1}}},
			wantErr: true,
		},
		{
			name: "hash_on header without key",
			u: Upstream{
				ID: "u1", Algorithm: AlgoFNVHash, HashOn: HashOnHeader,
				Nodes: NodeSource{Nodes: map[string]int{"a:80": 1}},
			},
			wantErr: true,
		},
		{
			name: "rewrite without host",
			u: Upstream{
				ID: "u1", PassHost: PassHostRewrite,
				Nodes: NodeSource{Nodes: map[string]int{"a:80": 1}},
			},
			wantErr: true,
		},
		{
			name: "no nodes or domain",
			u:    Upstream{ID: "u1"},
			wantErr: true,
		},
		{
			name: "valid explicit nodes",
			u: Upstream{
				ID: "u1", Algorithm: AlgoKetama, HashOn: HashOnVars, Key: "uri",
				Nodes: NodeSource{Nodes: map[string]int{"a:80": 1, "b:80": 2}},
			},
			wantErr: false,
		},
		{
			name: "valid dns source",
			u:    Upstream{ID: "u1", Nodes: NodeSource{Domain: "svc.internal"}},
			wantErr: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.u.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestHealthCheckDefaults(t *testing.T) {
	h := HealthCheck{Type: ProbeHTTP}
	assert.Equal(t, 1.0, h.Interval())
	assert.Equal(t, 1, h.ConsecutiveSuccess())
	assert.Equal(t, 1, h.ConsecutiveFailure())

	h2 := HealthCheck{
		Type:      ProbeTCP,
		Healthy:   HealthyPolicy{Interval: 5, Successes: 3},
		Unhealthy: UnhealthyPolicy{TCPFailures: 2, HTTPFailures: 9},
	}
	assert.Equal(t, 5.0, h2.Interval())
	assert.Equal(t, 3, h2.ConsecutiveSuccess())
	assert.Equal(t, 2, h2.ConsecutiveFailure())
}

func TestRouteValidate(t *testing.T) {
	r := &Route{ID: "r1"}
	require.Error(t, r.Validate(), "route without uris must fail")

	r2 := &Route{ID: "r1", URIs: []string{"/v1"}}
	require.NoError(t, r2.Validate())
}

func TestDocumentValidatePropagates(t *testing.T) {
	doc := &Document{
		Upstreams: []*Upstream{{ID: "bad", PassHost: PassHostRewrite}},
	}
	require.Error(t, doc.Validate())
}
