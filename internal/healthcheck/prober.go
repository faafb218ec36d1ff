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

package healthcheck

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/upstream"
)

// Prober issues a single active probe against a Backend.
type Prober interface {
	Probe(ctx context.Context, b upstream.Backend) bool
}

// NewProber builds the Prober matching spec.Type.
func NewProber(spec *config.HealthCheck) Prober {
	timeout := time.Duration(spec.TimeoutSeconds * float64(time.Second))
	if timeout <= 0 {
		timeout = time.Second
	}
	switch spec.Type {
	case config.ProbeHTTP, config.ProbeHTTPS:
		return &httpProber{spec: spec, timeout: timeout}
	default:
		return &tcpProber{timeout: timeout}
	}
}

type tcpProber struct {
	timeout time.Duration
}

// Probe opens a connection within timeout; success resets the failure
// counter via Checker.applyResult, failure does the converse.
func (p *tcpProber) Probe(ctx context.Context, b upstream.Backend) bool {
	d := net.Dialer{Timeout: p.timeout}
	conn, err := d.DialContext(ctx, "tcp", b.Address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

type httpProber struct {
	spec    *config.HealthCheck
	timeout time.Duration
}

// Probe issues GET spec.http_path against the backend, honoring host
// override, request headers, port override and TLS verification, then
// checks the response code against spec.healthy.http_statuses when set.
func (p *httpProber) Probe(ctx context.Context, b upstream.Backend) bool {
	host, port, err := net.SplitHostPort(b.Address)
	if err != nil {
		host = b.Address
	}
	if p.spec.Port > 0 {
		port = strconv.Itoa(p.spec.Port)
	}

	scheme := "http"
	if p.spec.Type == config.ProbeHTTPS {
		scheme = "https"
	}
	path := p.spec.HTTPPath
	if path == "" {
		path = "/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scheme+"://"+net.JoinHostPort(host, port)+path, nil)
	if err != nil {
		return false
	}
	for k, v := range p.spec.ReqHeaders {
		req.Header.Set(k, v)
	}
	if p.spec.Host != "" {
		req.Host = p.spec.Host
	}

	client := &http.Client{
		Timeout: p.timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: !p.spec.VerifyTLS}, //nolint:gosec // operator-declared checks.verify_tls
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if len(p.spec.Healthy.HTTPStatuses) == 0 {
		return true
	}
	for _, s := range p.spec.Healthy.HTTPStatuses {
		if resp.StatusCode == s {
			return true
		}
	}
	return false
}
