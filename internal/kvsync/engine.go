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

package kvsync

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/perror"
	"github.com/pingsix/pingsix/internal/registry"
)

const (
	listBackoff  = 3 * time.Second
	watchBackoff = 1 * time.Second
)

// Dialer opens a Client; a field so tests can substitute a fake without a
// live etcd server.
type Dialer func(cfg config.EtcdConfig) (Client, error)

// Engine runs the Disconnected -> Listing -> Watching state machine
// against one etcd prefix, publishing into tables.
type Engine struct {
	cfg    config.EtcdConfig
	tables *registry.Tables
	log    *logrus.Logger
	dial   Dialer

	mu       sync.Mutex
	client   Client
	revision int64
}

// New builds an Engine. dial defaults to Dial when nil.
func New(cfg config.EtcdConfig, tables *registry.Tables, log *logrus.Logger, dial Dialer) *Engine {
	if dial == nil {
		dial = Dial
	}
	return &Engine{cfg: cfg, tables: tables, log: log, dial: dial}
}

// Run drives the state machine until ctx is canceled. Shutdown has priority
// over list/watch work at every iteration boundary.
func (e *Engine) Run(ctx context.Context) {
	setState(stateDisconnected)
	for {
		if ctx.Err() != nil {
			e.closeClient()
			return
		}

		if err := e.connect(ctx); err != nil {
			e.log.WithError(err).Warn("kvsync: connect failed, backing off")
			if !sleepOrDone(ctx, listBackoff) {
				return
			}
			continue
		}

		setState(stateListing)
		if err := e.list(ctx); err != nil {
			e.log.WithError(err).Warn("kvsync: list failed, resetting")
			e.resetClient()
			recordReconnect()
			setState(stateDisconnected)
			if !sleepOrDone(ctx, listBackoff) {
				return
			}
			continue
		}

		setState(stateWatching)
		err := e.watch(ctx)
		if ctx.Err() != nil {
			e.closeClient()
			return
		}
		if err != nil {
			e.log.WithError(err).Warn("kvsync: watch failed, resetting")
		}
		e.resetClient()
		recordReconnect()
		setState(stateDisconnected)
		if !sleepOrDone(ctx, watchBackoff) {
			return
		}
	}
}

func (e *Engine) connect(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return nil
	}
	c, err := e.dial(e.cfg)
	if err != nil {
		return perror.Wrap(perror.KindConnectionFailed, err.Error(), err)
	}
	e.client = c
	return nil
}

func (e *Engine) currentClient() (Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil, perror.New(perror.KindClientNotInitialized, "kvsync: client not initialized")
	}
	return e.client, nil
}

func (e *Engine) resetClient() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		_ = e.client.Close()
		e.client = nil
	}
}

func (e *Engine) closeClient() {
	e.resetClient()
}

// list performs the Listing phase: get-with-prefix, upsert every key, then
// record the response revision.
func (e *Engine) list(ctx context.Context) error {
	client, err := e.currentClient()
	if err != nil {
		return err
	}
	resp, err := client.Get(ctx, e.cfg.Prefix, clientv3.WithPrefix())
	if err != nil {
		return perror.Wrap(perror.KindListOperationFailed, err.Error(), err)
	}

	routes := make(registry.Snapshot[*config.Route])
	services := make(registry.Snapshot[*config.Service])
	upstreams := make(registry.Snapshot[*config.Upstream])
	ssls := make(registry.Snapshot[*config.SSL])
	globalRules := make(registry.Snapshot[*config.GlobalRule])

	for _, kv := range resp.Kvs {
		kind, id, err := splitKey(e.cfg.Prefix, string(kv.Key))
		if err != nil {
			e.log.WithError(err).Warn("kvsync: skipping malformed key")
			continue
		}
		if err := decodeInto(kind, id, kv.Value, routes, services, upstreams, ssls, globalRules); err != nil {
			e.log.WithError(err).WithField("key", string(kv.Key)).Warn("kvsync: decode error, skipping key")
			continue
		}
		recordEvent("list")
	}

	e.tables.Routes.Replace(routes)
	e.tables.Services.Replace(services)
	e.tables.Upstreams.Replace(upstreams)
	e.tables.SSLs.Replace(ssls)
	e.tables.GlobalRules.Replace(globalRules)

	e.revision = resp.Header.Revision
	recordRevision(e.revision)
	return nil
}

// watch opens a watch stream from revision+1 and applies events until the
// stream ends or errors.
func (e *Engine) watch(ctx context.Context) error {
	client, err := e.currentClient()
	if err != nil {
		return err
	}

	startRev := e.revision + 1
	wc := client.Watch(ctx, e.cfg.Prefix, clientv3.WithPrefix(), clientv3.WithRev(startRev), clientv3.WithProgressNotify())

	for {
		select {
		case <-ctx.Done():
			return nil
		case resp, ok := <-wc:
			if !ok {
				return nil
			}
			if err := resp.Err(); err != nil {
				return perror.Wrap(perror.KindWatchOperationFailed, err.Error(), err)
			}
			for _, ev := range resp.Events {
				e.applyEvent(ev)
			}
			if resp.Header.GetRevision() > 0 {
				e.revision = max64(e.revision, resp.Header.GetRevision())
				recordRevision(e.revision)
			}
		}
	}
}

func (e *Engine) applyEvent(ev *clientv3.Event) {
	kind, id, err := splitKey(e.cfg.Prefix, string(ev.Kv.Key))
	if err != nil {
		e.log.WithError(err).Warn("kvsync: skipping malformed watch key")
		return
	}

	switch ev.Type {
	case clientv3.EventTypePut:
		if err := applyPut(e.tables, kind, id, ev.Kv.Value); err != nil {
			e.log.WithError(err).WithField("key", string(ev.Kv.Key)).Warn("kvsync: decode error, skipping key")
			return
		}
		recordEvent("put")
	case clientv3.EventTypeDelete:
		if err := applyDelete(e.tables, kind, id); err != nil {
			e.log.WithError(err).WithField("key", string(ev.Kv.Key)).Warn("kvsync: unknown kind on delete")
			return
		}
		recordEvent("delete")
	}
	if ev.Kv.ModRevision > 0 {
		e.revision = max64(e.revision, ev.Kv.ModRevision)
	}
}

// decodeInto is the Listing-phase counterpart of applyPut: it fills local
// maps instead of mutating the registry directly, so the whole snapshot can
// be published with one Replace per kind.
func decodeInto(kind config.Kind, id string, value []byte,
	routes registry.Snapshot[*config.Route],
	services registry.Snapshot[*config.Service],
	upstreams registry.Snapshot[*config.Upstream],
	ssls registry.Snapshot[*config.SSL],
	globalRules registry.Snapshot[*config.GlobalRule],
) error {
	scratch := registry.NewTables()
	if err := applyPut(scratch, kind, id, value); err != nil {
		return err
	}
	switch kind {
	case config.KindRoutes:
		v, _ := scratch.Routes.Get(id)
		routes[id] = v
	case config.KindServices:
		v, _ := scratch.Services.Get(id)
		services[id] = v
	case config.KindUpstreams:
		v, _ := scratch.Upstreams.Get(id)
		upstreams[id] = v
	case config.KindSSLs:
		v, _ := scratch.SSLs.Get(id)
		ssls[id] = v
	case config.KindGlobalRules:
		v, _ := scratch.GlobalRules.Get(id)
		globalRules[id] = v
	}
	return nil
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
