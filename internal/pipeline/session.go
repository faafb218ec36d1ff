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
	"net"
	"net/http"
	"strings"
)

// Session adapts one in-flight client request to plugin.Session and
// selector.KeySource. Only one of Complete (plugin
// short-circuit) or markProxied (streamed upstream response) is ever called.
type Session struct {
	req       *http.Request
	w         http.ResponseWriter
	completed bool
	status    int
	bytesIn   int64
	bytesOut  int64
}

// NewSession wraps the inbound request/response pair for one pipeline run.
func NewSession(w http.ResponseWriter, r *http.Request) *Session {
	s := &Session{req: r, w: w}
	if r.ContentLength > 0 {
		s.bytesIn = r.ContentLength
	}
	return s
}

func (s *Session) Request() *http.Request { return s.req }

func (s *Session) Completed() bool { return s.completed }

// Complete writes a final status+body directly, for plugins that
// short-circuit the request and for pipeline errors (route miss, no healthy
// backend, dial failure) that end it without a proxied response.
func (s *Session) Complete(status int, body []byte) {
	if s.completed {
		return
	}
	s.completed = true
	s.status = status
	s.w.WriteHeader(status)
	n, _ := s.w.Write(body)
	s.bytesOut += int64(n)
}

// markProxied records the status of a response streamed by the proxy loop,
// whose headers and body were already written directly to s.w.
func (s *Session) markProxied(status int, bytesOut int64) {
	s.completed = true
	s.status = status
	s.bytesOut += bytesOut
}

func (s *Session) StatusCode() int { return s.status }

func (s *Session) BytesIn() int64 { return s.bytesIn }

func (s *Session) BytesOut() int64 { return s.bytesOut }

// Var implements selector.KeySource for the vars hash_on mode.
func (s *Session) Var(name string) string {
	switch {
	case strings.HasPrefix(name, "arg_"):
		return s.req.URL.Query().Get(strings.TrimPrefix(name, "arg_"))
	case name == "uri":
		return s.req.URL.Path
	case name == "request_uri":
		return s.req.URL.RequestURI()
	case name == "query_string":
		return s.req.URL.RawQuery
	case name == "remote_addr":
		host, _, _ := net.SplitHostPort(s.req.RemoteAddr)
		return host
	case name == "remote_port":
		_, port, _ := net.SplitHostPort(s.req.RemoteAddr)
		return port
	case name == "server_addr":
		return s.req.Host
	default:
		return ""
	}
}

func (s *Session) Header(name string) string { return s.req.Header.Get(name) }

func (s *Session) Cookie(name string) string {
	c, err := s.req.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
