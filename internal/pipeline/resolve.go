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

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/perror"
	"github.com/pingsix/pingsix/internal/plugin"
	"github.com/pingsix/pingsix/internal/router"
)

// resolved is everything step 1-3 of the pipeline produces
// from a fresh registry snapshot.
type resolved struct {
	route   *config.Route
	service *config.Service
	spec    *config.Upstream
	ctx     *plugin.ProxyContext
}

// resolve matches the request against the current Route snapshot and walks
// route.upstream ?? service.upstream ?? upstreams[service.upstream_id].
func (h *Handler) resolve(r *http.Request) (*resolved, error) {
	routes := h.Tables.Routes.List()
	matcher := router.Build(routes)
	route, ok := matcher.Match(router.Request{Host: r.Host, Path: r.URL.Path, Method: r.Method})
	if !ok {
		return &resolved{ctx: plugin.NewProxyContext(nil, nil)}, perror.ErrRouteNotFound
	}

	var service *config.Service
	if route.ServiceID != "" {
		service, _ = h.Tables.Services.Get(route.ServiceID)
		if service == nil {
			return &resolved{route: route, ctx: plugin.NewProxyContext(route, nil)}, perror.ErrRouteNotFound
		}
	}

	ctx := plugin.NewProxyContext(route, service)

	spec := route.Upstream
	if spec == nil && service != nil {
		spec = service.Upstream
	}
	if spec == nil && service != nil && service.UpstreamID != "" {
		spec, _ = h.Tables.Upstreams.Get(service.UpstreamID)
	}
	if spec == nil {
		return &resolved{route: route, service: service, ctx: ctx}, perror.ErrUpstreamSelectFailed
	}

	return &resolved{route: route, service: service, spec: spec, ctx: ctx}, nil
}
