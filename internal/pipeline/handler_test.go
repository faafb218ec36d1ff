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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/discovery"
	"github.com/pingsix/pingsix/internal/plugin"
	"github.com/pingsix/pingsix/internal/registry"
	"github.com/pingsix/pingsix/internal/upstreampool"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// recordingLoggingPlugin counts Logging invocations, standing in for a
// global-rule logger/prometheus plugin in tests.
type recordingLoggingPlugin struct {
	calls *int
}

func (recordingLoggingPlugin) Name() string     { return "recorder" }
func (recordingLoggingPlugin) Priority() int    { return 0 }
func (p recordingLoggingPlugin) Logging(plugin.Session, error, *plugin.ProxyContext) {
	*p.calls++
}

func discardLog() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return l
}

func newHandlerWithUpstream(t *testing.T, backendAddr string) *Handler {
	t.Helper()
	tables := registry.NewTables()
	tables.Routes.Upsert("r1", &config.Route{
		ID:   "r1",
		URIs: []string{"/*"},
		Upstream: &config.Upstream{
			ID:    "u1",
			Nodes: config.NodeSource{Nodes: map[string]int{backendAddr: 1}},
		},
	})

	pool := upstreampool.New(discovery.New(nil, discardLog()), discardLog())
	h := NewHandler(tables, plugin.NewRegistry(), pool, discardLog())

	// Give the background health checker time to mark the backend healthy
	// (default TCP probe, consecutive_success=1, default interval 1s; the
	// goroutine that Start launches probes once before its first tick).
	route, _ := tables.Routes.Get("r1")
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(pool.Handle(route.Upstream).Load().Healthy()) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	return h
}

func TestServeHTTPReturns404WhenNoRouteMatches(t *testing.T) {
	tables := registry.NewTables()
	pool := upstreampool.New(discovery.New(nil, discardLog()), discardLog())
	h := NewHandler(tables, plugin.NewRegistry(), pool, discardLog())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeHTTPRunsGlobalLoggingHookOnRouteMiss(t *testing.T) {
	calls := 0
	tables := registry.NewTables()
	tables.GlobalRules.Upsert("g1", &config.GlobalRule{ID: "g1", Plugins: map[string]map[string]any{"recorder": {}}})

	plugins := plugin.NewRegistry()
	plugins.Register("recorder", func(map[string]any) (plugin.Plugin, error) {
		return recordingLoggingPlugin{calls: &calls}, nil
	})

	pool := upstreampool.New(discovery.New(nil, discardLog()), discardLog())
	h := NewHandler(tables, plugins, pool, discardLog())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, calls)
}

func TestServeHTTPRunsGlobalLoggingHookOnDanglingServiceID(t *testing.T) {
	calls := 0
	tables := registry.NewTables()
	tables.GlobalRules.Upsert("g1", &config.GlobalRule{ID: "g1", Plugins: map[string]map[string]any{"recorder": {}}})
	tables.Routes.Upsert("r1", &config.Route{ID: "r1", URIs: []string{"/*"}, ServiceID: "missing-service"})

	plugins := plugin.NewRegistry()
	plugins.Register("recorder", func(map[string]any) (plugin.Plugin, error) {
		return recordingLoggingPlugin{calls: &calls}, nil
	})

	pool := upstreampool.New(discovery.New(nil, discardLog()), discardLog())
	h := NewHandler(tables, plugins, pool, discardLog())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, calls)
}

func TestServeHTTPReturns502WhenNoHealthyBackend(t *testing.T) {
	tables := registry.NewTables()
	tables.Routes.Upsert("r1", &config.Route{
		ID:   "r1",
		URIs: []string{"/*"},
		Upstream: &config.Upstream{
			ID:    "u1",
			Nodes: config.NodeSource{Nodes: map[string]int{"127.0.0.1:1": 1}},
		},
	})
	pool := upstreampool.New(discovery.New(nil, discardLog()), discardLog())
	h := NewHandler(tables, plugin.NewRegistry(), pool, discardLog())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestServeHTTPProxiesToHealthyBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-From-Backend", "yes")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello from backend"))
	}))
	defer backend.Close()

	h := newHandlerWithUpstream(t, strings.TrimPrefix(backend.URL, "http://"))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.RemoteAddr = "192.0.2.10:54321"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "yes", rec.Header().Get("X-From-Backend"))
	assert.Equal(t, "hello from backend", rec.Body.String())
}

func TestServeHTTPAppliesPassHostRewrite(t *testing.T) {
	var seenHost string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenHost = r.Host
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	tables := registry.NewTables()
	tables.Routes.Upsert("r1", &config.Route{
		ID:   "r1",
		URIs: []string{"/*"},
		Upstream: &config.Upstream{
			ID:           "u1",
			Nodes:        config.NodeSource{Nodes: map[string]int{strings.TrimPrefix(backend.URL, "http://"): 1}},
			PassHost:     config.PassHostRewrite,
			UpstreamHost: "rewritten.example",
		},
	})
	pool := upstreampool.New(discovery.New(nil, discardLog()), discardLog())
	h := NewHandler(tables, plugin.NewRegistry(), pool, discardLog())

	route, _ := tables.Routes.Get("r1")
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(pool.Handle(route.Upstream).Load().Healthy()) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rewritten.example", seenHost)
}
