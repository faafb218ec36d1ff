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

package plugin

import (
	"net/http"
	"sort"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/perror"
)

// source tags where a plugin config came from, for precedence.
type source int

const (
	sourceGlobal source = iota
	sourceService
	sourceRoute
)

// Chain is the effective, ordered plugin list for one request.
type Chain struct {
	plugins []Plugin
}

// BuildChain computes the effective chain: global rules' plugins union the
// matched route's plugins union the referenced service's plugins, deduped
// by name with route > service > global precedence, sorted by priority
// descending and name ascending on ties.
func BuildChain(reg *Registry, route *config.Route, service *config.Service, globalRules map[string]*config.GlobalRule) (*Chain, error) {
	type entry struct {
		name string
		cfg  map[string]any
		src  source
	}

	best := make(map[string]entry)
	consider := func(name string, cfg map[string]any, src source) {
		if cur, ok := best[name]; ok && cur.src >= src {
			return
		}
		best[name] = entry{name: name, cfg: cfg, src: src}
	}

	for _, gr := range globalRules {
		for name, cfg := range gr.Plugins {
			consider(name, cfg, sourceGlobal)
		}
	}
	if service != nil {
		for name, cfg := range service.Plugins {
			consider(name, cfg, sourceService)
		}
	}
	if route != nil {
		for name, cfg := range route.Plugins {
			consider(name, cfg, sourceRoute)
		}
	}

	plugins := make([]Plugin, 0, len(best))
	for name, e := range best {
		p, err := reg.Build(name, e.cfg)
		if err != nil {
			return nil, perror.Plugin(name, "build", err.Error())
		}
		plugins = append(plugins, p)
	}

	sort.Slice(plugins, func(i, j int) bool {
		if plugins[i].Priority() != plugins[j].Priority() {
			return plugins[i].Priority() > plugins[j].Priority()
		}
		return plugins[i].Name() < plugins[j].Name()
	})

	return &Chain{plugins: plugins}, nil
}

// RunRequestFilters runs request_filter hooks in chain order. It stops and
// returns true if a plugin completes the response.
func (c *Chain) RunRequestFilters(s Session, ctx *ProxyContext) (short bool, err error) {
	for _, p := range c.plugins {
		rf, ok := p.(RequestFilter)
		if !ok {
			continue
		}
		if ferr := rf.RequestFilter(s, ctx); ferr != nil {
			return false, perror.Plugin(p.Name(), "request_filter", ferr.Error())
		}
		if s.Completed() {
			return true, nil
		}
	}
	return false, nil
}

// RunUpstreamRequestFilters mutates the headers about to be sent upstream.
func (c *Chain) RunUpstreamRequestFilters(s Session, headers http.Header, ctx *ProxyContext) error {
	for _, p := range c.plugins {
		uf, ok := p.(UpstreamRequestFilter)
		if !ok {
			continue
		}
		if err := uf.UpstreamRequestFilter(s, headers, ctx); err != nil {
			return perror.Plugin(p.Name(), "upstream_request_filter", err.Error())
		}
	}
	return nil
}

// RunResponseFilters mutates the headers about to be returned to the client.
func (c *Chain) RunResponseFilters(s Session, headers http.Header, ctx *ProxyContext) error {
	for _, p := range c.plugins {
		rf, ok := p.(ResponseFilter)
		if !ok {
			continue
		}
		if err := rf.ResponseFilter(s, headers, ctx); err != nil {
			return perror.Plugin(p.Name(), "response_filter", err.Error())
		}
	}
	return nil
}

// RunLogging invokes logging hooks in reverse chain order, unconditionally.
func (c *Chain) RunLogging(s Session, reqErr error, ctx *ProxyContext) {
	for i := len(c.plugins) - 1; i >= 0; i-- {
		lh, ok := c.plugins[i].(LoggingHook)
		if !ok {
			continue
		}
		lh.Logging(s, reqErr, ctx)
	}
}
