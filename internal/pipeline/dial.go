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
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/upstream"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultReadTimeout    = 30 * time.Second
	defaultSendTimeout    = 30 * time.Second
)

func effectiveTimeouts(spec *config.Upstream) (connect, read, send time.Duration) {
	connect, read, send = defaultConnectTimeout, defaultReadTimeout, defaultSendTimeout
	t := spec.Timeout
	if t == nil {
		return
	}
	if t.ConnectSeconds > 0 {
		connect = time.Duration(t.ConnectSeconds * float64(time.Second))
	}
	if t.ReadSeconds > 0 {
		read = time.Duration(t.ReadSeconds * float64(time.Second))
	}
	if t.SendSeconds > 0 {
		send = time.Duration(t.SendSeconds * float64(time.Second))
	}
	return
}

// dial sends outReq to backend, honouring the upstream's {connect,read,send}
// timeouts for this single attempt.
func (h *Handler) dial(outReq *http.Request, backend upstream.Backend, spec *config.Upstream) (*http.Response, error) {
	connectTimeout, readTimeout, sendTimeout := effectiveTimeouts(spec)

	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: readTimeout,
	}
	client := &http.Client{Transport: transport}

	// attemptCtx bounds the whole attempt, body included: stream reads
	// resp.Body after dial returns, so cancel runs here only on failure and
	// otherwise the context ends with the inbound request's.
	attemptCtx, cancel := context.WithTimeout(outReq.Context(), connectTimeout+readTimeout+sendTimeout)

	outReq = outReq.WithContext(attemptCtx)
	outReq.URL.Scheme = "http"
	outReq.URL.Host = backend.Address
	outReq.RequestURI = ""

	resp, err := client.Do(outReq)
	if err != nil {
		cancel()
	}
	return resp, err
}

func applyPassHost(r *http.Request, spec *config.Upstream) {
	if spec.PassHost == config.PassHostRewrite && spec.UpstreamHost != "" {
		r.Host = spec.UpstreamHost
		r.Header.Set("Host", spec.UpstreamHost)
	}
}

func filterFailed(backends []upstream.Backend, failed map[string]bool) []upstream.Backend {
	if len(failed) == 0 {
		return backends
	}
	out := make([]upstream.Backend, 0, len(backends))
	for _, b := range backends {
		if !failed[b.Key()] {
			out = append(out, b)
		}
	}
	return out
}
