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

package main

import (
	"crypto/tls"
	"fmt"
	"strings"
	"sync"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/registry"
)

// sniCertStore resolves a client's requested SNI host against the current
// SSL snapshot, caching the parsed certificate per *config.SSL pointer so a
// KV-pushed SSL update is picked up on the next handshake without a restart.
type sniCertStore struct {
	ssls *registry.Registry[*config.SSL]

	mu    sync.Mutex
	cache map[*config.SSL]*tls.Certificate
}

func newSNICertStore(ssls *registry.Registry[*config.SSL]) *sniCertStore {
	return &sniCertStore{ssls: ssls, cache: make(map[*config.SSL]*tls.Certificate)}
}

func (s *sniCertStore) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	host := strings.ToLower(hello.ServerName)
	for _, spec := range s.ssls.List() {
		if !matchesAnySNI(spec.SNIs, host) {
			continue
		}
		return s.load(spec)
	}
	return nil, fmt.Errorf("pingsix: no SSL certificate configured for SNI %q", hello.ServerName)
}

func (s *sniCertStore) load(spec *config.SSL) (*tls.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cert, ok := s.cache[spec]; ok {
		return cert, nil
	}
	cert, err := tls.X509KeyPair(spec.Cert, spec.Key)
	if err != nil {
		return nil, fmt.Errorf("pingsix: parse ssl %s: %w", spec.ID, err)
	}
	s.cache[spec] = &cert
	return &cert, nil
}

func matchesAnySNI(patterns []string, host string) bool {
	for _, p := range patterns {
		p = strings.ToLower(p)
		if p == host {
			return true
		}
		if strings.HasPrefix(p, "*.") && strings.HasSuffix(host, p[1:]) && host != p[2:] {
			return true
		}
	}
	return false
}

// buildTLSConfig wires SNI-based lookup against the SSL registry and, when
// the listener declares a static cert, falls back to that cert whenever no
// registry entry matches the requested SNI.
func buildTLSConfig(lc config.ListenerConfig, ssls *registry.Registry[*config.SSL]) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if lc.OfferH2 {
		cfg.NextProtos = []string{"h2", "http/1.1"}
	}

	if lc.TLS != nil && lc.TLS.CertPath != "" {
		cert, err := tls.LoadX509KeyPair(lc.TLS.CertPath, lc.TLS.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("pingsix: load listener cert: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	store := newSNICertStore(ssls)
	cfg.GetCertificate = func(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
		if cert, err := store.GetCertificate(hello); err == nil {
			return cert, nil
		}
		if len(cfg.Certificates) > 0 {
			return &cfg.Certificates[0], nil
		}
		return nil, fmt.Errorf("pingsix: no certificate available for SNI %q", hello.ServerName)
	}
	return cfg, nil
}
