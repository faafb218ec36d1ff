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

// Package pipeline implements the per-request path: match a
// route against the current snapshot, build the effective plugin chain,
// select and dial a healthy backend with bounded retries, and stream the
// response back while honouring logging hooks.
package pipeline

import (
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/perror"
	"github.com/pingsix/pingsix/internal/plugin"
	"github.com/pingsix/pingsix/internal/registry"
	"github.com/pingsix/pingsix/internal/selector"
	"github.com/pingsix/pingsix/internal/upstreampool"
)

// Handler is the net/http entry point wired into cmd/pingsix's listeners.
type Handler struct {
	Tables  *registry.Tables
	Plugins *plugin.Registry
	Pool    *upstreampool.Manager
	Log     *logrus.Logger

	selectors *selectorCache
}

// NewHandler wires the registries, plugin factory registry and upstream
// pool into one request handler.
func NewHandler(tables *registry.Tables, plugins *plugin.Registry, pool *upstreampool.Manager, log *logrus.Logger) *Handler {
	return &Handler{Tables: tables, Plugins: plugins, Pool: pool, Log: log, selectors: newSelectorCache()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess := NewSession(w, r)

	res, err := h.resolve(r)
	if err != nil {
		chain, cerr := plugin.BuildChain(h.Plugins, res.route, res.service, h.Tables.GlobalRules.List())
		if cerr != nil {
			chain = nil
		}
		h.terminate(sess, chain, res.ctx, err)
		return
	}

	chain, err := plugin.BuildChain(h.Plugins, res.route, res.service, h.Tables.GlobalRules.List())
	if err != nil {
		h.terminate(sess, nil, res.ctx, err)
		return
	}

	short, err := chain.RunRequestFilters(sess, res.ctx)
	if err != nil {
		h.terminate(sess, chain, res.ctx, err)
		return
	}
	if short {
		h.terminate(sess, chain, res.ctx, nil)
		return
	}

	err = h.proxy(sess, w, r, res.spec, chain, res.ctx)
	h.terminate(sess, chain, res.ctx, err)
}

// proxy runs the backend selection loop.
func (h *Handler) proxy(sess *Session, w http.ResponseWriter, r *http.Request, spec *config.Upstream, chain *plugin.Chain, ctx *plugin.ProxyContext) error {
	handle := h.Pool.Handle(spec)
	sel := h.selectors.get(spec)
	key := selector.DeriveKey(string(spec.HashOn), spec.Key, sess)

	retries := spec.Retries
	retryTimeout := time.Duration(spec.RetryTimeout * float64(time.Second))
	start := time.Now()
	failed := make(map[string]bool)

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		lb := handle.Load()
		healthy := filterFailed(lb.Healthy(), failed)
		backend, ok := sel.Select(healthy, key)
		if !ok {
			lastErr = perror.ErrUpstreamSelectFailed
			break
		}

		outReq := r.Clone(r.Context())
		applyPassHost(outReq, spec)

		if err := chain.RunUpstreamRequestFilters(sess, outReq.Header, ctx); err != nil {
			return err
		}

		resp, err := h.dial(outReq, backend, spec)
		if err != nil {
			failed[backend.Key()] = true
			lastErr = perror.DialFailed(attempt, err)
			if attempt < retries && (retryTimeout <= 0 || time.Since(start) < retryTimeout) {
				continue
			}
			return lastErr
		}

		ctx.Vars["upstream"] = backend.Address
		if err := chain.RunResponseFilters(sess, resp.Header, ctx); err != nil {
			resp.Body.Close()
			return err
		}
		return h.stream(sess, w, resp)
	}
	if lastErr != nil {
		return lastErr
	}
	return perror.ErrUpstreamSelectFailed
}

func (h *Handler) stream(sess *Session, w http.ResponseWriter, resp *http.Response) error {
	defer resp.Body.Close()
	header := w.Header()
	for k, vv := range resp.Header {
		for _, v := range vv {
			header.Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	n, err := io.Copy(w, resp.Body)
	sess.markProxied(resp.StatusCode, n)
	if err != nil {
		return perror.Wrap(perror.KindUpstreamDialFailed, err.Error(), err)
	}
	return nil
}

// terminate populates ctx.vars and runs logging hooks
// exactly once, regardless of how the request ended.
func (h *Handler) terminate(sess *Session, chain *plugin.Chain, ctx *plugin.ProxyContext, err error) {
	if err != nil && !sess.Completed() {
		status := statusForError(err)
		sess.Complete(status, []byte(http.StatusText(status)))
	}

	host, port, _ := net.SplitHostPort(sess.Request().RemoteAddr)
	ctx.Vars["remote_addr"] = host
	ctx.Vars["remote_port"] = port

	if chain != nil {
		chain.RunLogging(sess, err, ctx)
	}
}

func statusForError(err error) int {
	var pe *perror.Error
	if errors.As(err, &pe) {
		switch pe.Kind {
		case perror.KindRouteNotFound:
			return http.StatusNotFound
		case perror.KindUpstreamSelectFailed, perror.KindUpstreamDialFailed:
			return http.StatusBadGateway
		case perror.KindPluginError:
			return http.StatusInternalServerError
		}
	}
	return http.StatusBadGateway
}
