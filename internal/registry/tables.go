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

package registry

import "github.com/pingsix/pingsix/internal/config"

// Tables is every resource kind's registry, bundled so the loader, the KV
// sync engine and the request pipeline share one handle.
type Tables struct {
	Routes      *Registry[*config.Route]
	Services    *Registry[*config.Service]
	Upstreams   *Registry[*config.Upstream]
	SSLs        *Registry[*config.SSL]
	GlobalRules *Registry[*config.GlobalRule]
}

// NewTables builds empty registries for every kind.
func NewTables() *Tables {
	return &Tables{
		Routes:      New[*config.Route](),
		Services:    New[*config.Service](),
		Upstreams:   New[*config.Upstream](),
		SSLs:        New[*config.SSL](),
		GlobalRules: New[*config.GlobalRule](),
	}
}

// LoadDocument replaces every registry's snapshot with the contents of a
// freshly loaded static document.
func (t *Tables) LoadDocument(doc *config.Document) {
	routes := make(Snapshot[*config.Route], len(doc.Routes))
	for _, r := range doc.Routes {
		routes[r.ID] = r
	}
	t.Routes.Replace(routes)

	services := make(Snapshot[*config.Service], len(doc.Services))
	for _, s := range doc.Services {
		services[s.ID] = s
	}
	t.Services.Replace(services)

	upstreams := make(Snapshot[*config.Upstream], len(doc.Upstreams))
	for _, u := range doc.Upstreams {
		upstreams[u.ID] = u
	}
	t.Upstreams.Replace(upstreams)

	ssls := make(Snapshot[*config.SSL], len(doc.SSLs))
	for _, s := range doc.SSLs {
		ssls[s.ID] = s
	}
	t.SSLs.Replace(ssls)

	globalRules := make(Snapshot[*config.GlobalRule], len(doc.GlobalRules))
	for _, g := range doc.GlobalRules {
		globalRules[g.ID] = g
	}
	t.GlobalRules.Replace(globalRules)
}
