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

// Package router matches an incoming request to at most one Route via
// host/path/method predicates. A Matcher is built fresh from
// a Route snapshot; match(request) is then a pure function of
// (host, path, method, snapshot).
package router

import (
	"sort"
	"strings"

	"github.com/pingsix/pingsix/internal/config"
)

// Request is the minimal view the router needs from an inbound request.
type Request struct {
	Host   string
	Path   string
	Method string
}

// Matcher is an immutable index over one Route snapshot.
type Matcher struct {
	routes []*config.Route // all candidates, unordered; Match sorts the matching ones
}

// Build indexes a Route snapshot. Routes without any host pattern match any
// host.
func Build(routes map[string]*config.Route) *Matcher {
	all := make([]*config.Route, 0, len(routes))
	for _, r := range routes {
		all = append(all, r)
	}
	return &Matcher{routes: all}
}

// Match finds the best route for req. Tie-break order: priority desc, host
// specificity, URI specificity, route id asc. A non-match returns
// (nil, false) so the pipeline can emit 404.
func (m *Matcher) Match(req Request) (*config.Route, bool) {
	host := stripPort(req.Host)

	type candidate struct {
		route        *config.Route
		hostExact    bool
		uriExact     bool
		uriPrefixLen int
	}

	var candidates []candidate
	for _, r := range m.routes {
		hostOK, hostExact := matchHost(r.Hosts, host)
		if !hostOK {
			continue
		}
		if !matchMethod(r.Methods, req.Method) {
			continue
		}
		uriOK, uriExact, prefixLen := matchURI(r.URIs, req.Path)
		if !uriOK {
			continue
		}
		candidates = append(candidates, candidate{r, hostExact, uriExact, prefixLen})
	}

	if len(candidates) == 0 {
		return nil, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.route.Priority != b.route.Priority {
			return a.route.Priority > b.route.Priority
		}
		if a.hostExact != b.hostExact {
			return a.hostExact
		}
		if a.uriExact != b.uriExact {
			return a.uriExact
		}
		if a.uriPrefixLen != b.uriPrefixLen {
			return a.uriPrefixLen > b.uriPrefixLen
		}
		return a.route.ID < b.route.ID
	})

	return candidates[0].route, true
}

// stripPort removes any port from an already-resolved Host/:authority value.
// Values containing "[" (bracketed IPv6 literals) are returned unchanged.
func stripPort(host string) string {
	if host == "" {
		return ""
	}
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host[idx+1:], "]") {
		// Guard against bare IPv6 literals without a port (rare for Host headers).
		if !strings.Contains(host, "[") {
			return host[:idx]
		}
	}
	return host
}

// matchHost returns (matched, exact). No host patterns on the route means
// it matches any host (not exact).
func matchHost(patterns []string, host string) (bool, bool) {
	if len(patterns) == 0 {
		return true, false
	}
	for _, p := range patterns {
		if p == host {
			return true, true
		}
		if strings.HasPrefix(p, "*.") {
			suffix := p[1:] // ".example"
			if strings.HasSuffix(host, suffix) && host != suffix[1:] {
				return true, false
			}
		}
	}
	return false, false
}

// matchMethod returns true when methods is empty or contains the request
// method.
func matchMethod(methods []string, method string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// matchURI returns (matched, exact, prefixLen). A pattern equal to the path
// matches exactly; a pattern ending in "*" matches any path starting with
// the part before the "*"; any other pattern matches as a plain prefix.
// prefixLen is the longest matching prefix, -1 when none matched as a prefix.
func matchURI(patterns []string, path string) (bool, bool, int) {
	bestPrefixLen := -1
	exact := false
	matched := false
	for _, p := range patterns {
		if p == path {
			matched = true
			exact = true
			continue
		}
		if strings.HasSuffix(p, "*") {
			prefix := strings.TrimSuffix(p, "*")
			if strings.HasPrefix(path, prefix) {
				matched = true
				if len(prefix) > bestPrefixLen {
					bestPrefixLen = len(prefix)
				}
			}
			continue
		}
		if strings.HasPrefix(path, p) {
			matched = true
			if len(p) > bestPrefixLen {
				bestPrefixLen = len(p)
			}
		}
	}
	return matched, exact, bestPrefixLen
}

// RequestURI always returns path+"?"+query
// when a query is present, else path alone.
func RequestURI(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}
