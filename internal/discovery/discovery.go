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

// Package discovery resolves an Upstream's node source into a live set of
// Backends. HybridDiscovery supports the two node sources an
// Upstream can declare: an explicit address->weight map, or a DNS name
// re-resolved on every refresh.
package discovery

import (
	"context"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/upstream"
)

// Resolver abstracts net.DefaultResolver so tests can fake DNS answers.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// HybridDiscovery resolves one Upstream's NodeSource into Backends.
type HybridDiscovery struct {
	resolver Resolver
	log      *logrus.Logger
}

// New builds a HybridDiscovery. A nil resolver uses net.DefaultResolver.
func New(resolver Resolver, log *logrus.Logger) *HybridDiscovery {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &HybridDiscovery{resolver: resolver, log: log}
}

// Resolve produces the current Backend set for an Upstream's node source.
// On a DNS resolution error it returns the previous set unchanged and logs
// the failure; it never returns an error to the caller because a transient
// DNS hiccup must not be fatal to the refresh loop.
func (d *HybridDiscovery) Resolve(ctx context.Context, u *config.Upstream, previous []upstream.Backend) []upstream.Backend {
	if !u.Nodes.IsDNS() {
		return explicitBackends(u)
	}

	addrs, err := d.resolver.LookupIPAddr(ctx, u.Nodes.Domain)
	if err != nil {
		if d.log != nil {
			d.log.WithError(err).WithField("domain", u.Nodes.Domain).Warn("dns discovery refresh failed, keeping previous backend set")
		}
		return previous
	}

	weight := nominalWeight(u)
	backends := make([]upstream.Backend, 0, len(addrs))
	for _, a := range addrs {
		backends = append(backends, upstream.Backend{Address: a.IP.String(), Weight: weight})
	}
	return backends
}

func explicitBackends(u *config.Upstream) []upstream.Backend {
	backends := make([]upstream.Backend, 0, len(u.Nodes.Nodes))
	for addr, w := range u.Nodes.Nodes {
		backends = append(backends, upstream.Backend{Address: addr, Weight: w})
	}
	return backends
}

// nominalWeight is the single weight DNS-sourced backends all receive: the
// upstream carries no per-address weight once nodes come from DNS, so every
// A/AAAA answer gets the same nominal value.
func nominalWeight(u *config.Upstream) int {
	for _, w := range u.Nodes.Nodes {
		if w > 0 {
			return w
		}
	}
	return 1
}
