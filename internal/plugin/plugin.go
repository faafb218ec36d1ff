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

// Package plugin implements the plugin framework: a registry
// of named factories, and the effective per-request chain built from
// global rules, the matched route and its service, run across the request
// lifecycle's four hooks.
package plugin

import (
	"net/http"
	"time"

	"github.com/pingsix/pingsix/internal/config"
)

// Plugin is the unit every factory produces. A plugin implements whichever
// of RequestFilter/UpstreamRequestFilter/ResponseFilter/LoggingHook applies
// to it — most implement one or two, in the style of a small, single-purpose
// adapter rather than one type taking on every hook.
type Plugin interface {
	Name() string
	Priority() int
}

// Session is the request-path view plugins operate on. The request
// pipeline's session type implements it.
type Session interface {
	Request() *http.Request
	Completed() bool
	Complete(status int, body []byte)
	StatusCode() int
	BytesIn() int64
	BytesOut() int64
}

// RequestFilter runs before upstream selection. A plugin short-circuits the
// rest of the pipeline by calling s.Complete; a returned error aborts the
// request.
type RequestFilter interface {
	RequestFilter(s Session, ctx *ProxyContext) error
}

// UpstreamRequestFilter mutates headers sent to the backend.
type UpstreamRequestFilter interface {
	UpstreamRequestFilter(s Session, upstreamHeaders http.Header, ctx *ProxyContext) error
}

// ResponseFilter mutates headers returned to the client.
type ResponseFilter interface {
	ResponseFilter(s Session, responseHeaders http.Header, ctx *ProxyContext) error
}

// LoggingHook always runs after the response is finalized, including on
// error.
type LoggingHook interface {
	Logging(s Session, err error, ctx *ProxyContext)
}

// ProxyContext carries per-request state across the plugin chain.
type ProxyContext struct {
	Route        *config.Route
	Service      *config.Service
	Vars         map[string]string
	RequestStart time.Time
}

// NewProxyContext starts a context with an empty var bag.
func NewProxyContext(route *config.Route, service *config.Service) *ProxyContext {
	return &ProxyContext{
		Route:        route,
		Service:      service,
		Vars:         make(map[string]string),
		RequestStart: time.Now(),
	}
}

// Factory builds one Plugin instance from a route-local configuration
// document (the YAML/JSON blob under routes[].plugins.<name>).
type Factory func(cfg map[string]any) (Plugin, error)
