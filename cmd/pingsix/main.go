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

// Command pingsix is the HTTP/HTTPS reverse proxy and API gateway server.
// It loads a static document or, when etcd is configured, keeps its
// resource registries in lock-step with a remote prefix, then serves
// traffic through the plugin-aware request pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/pingsix/pingsix/internal/admin"
	"github.com/pingsix/pingsix/internal/audit"
	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/discovery"
	"github.com/pingsix/pingsix/internal/kvsync"
	"github.com/pingsix/pingsix/internal/logging"
	"github.com/pingsix/pingsix/internal/pipeline"
	"github.com/pingsix/pingsix/internal/plugin"
	"github.com/pingsix/pingsix/internal/plugin/builtin"
	"github.com/pingsix/pingsix/internal/registry"
	"github.com/pingsix/pingsix/internal/upstreampool"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the pingsix configuration document")
	flag.Parse()

	doc, err := config.LoadDocument(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pingsix: %v\n", err)
		return 1
	}

	logCfg := logging.Config{}
	if doc.Pingsix.Log != nil {
		logCfg = logging.Config{Path: doc.Pingsix.Log.Path, Level: doc.Pingsix.Log.Level}
	}
	log, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pingsix: build logger: %v\n", err)
		return 1
	}

	tables := registry.NewTables()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var engine *kvsync.Engine
	if doc.Pingsix.Etcd != nil {
		engine = kvsync.New(*doc.Pingsix.Etcd, tables, log, nil)
		go engine.Run(ctx)
	} else {
		tables.LoadDocument(doc)
	}

	plugins := plugin.NewRegistry()
	plugins.Register("logger", builtin.NewLoggerFactory(log))
	plugins.Register("prometheus", builtin.NewPrometheusFactory())

	pool := upstreampool.New(discovery.New(nil, log), log)
	handler := pipeline.NewHandler(tables, plugins, pool, log)

	servers := make([]*http.Server, 0, len(doc.Pingsix.Listeners)+2)

	for _, lc := range doc.Pingsix.Listeners {
		srv, err := buildListener(lc, handler, tables.SSLs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pingsix: %v\n", err)
			return 1
		}
		servers = append(servers, srv)
		go serveListener(srv, lc, log)
	}

	if doc.Pingsix.Prometheus != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: doc.Pingsix.Prometheus.Address, Handler: mux}
		servers = append(servers, srv)
		go func() {
			log.WithField("address", srv.Addr).Info("prometheus endpoint listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("prometheus endpoint stopped")
			}
		}()
	}

	if doc.Pingsix.Etcd != nil && doc.Pingsix.Admin != nil {
		adminHTTP, err := buildAdminServer(*doc.Pingsix.Etcd, *doc.Pingsix.Admin, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pingsix: %v\n", err)
			return 1
		}
		servers = append(servers, adminHTTP)
		go func() {
			log.WithField("address", adminHTTP.Addr).Info("admin API listening")
			if err := adminHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("admin API stopped")
			}
		}()
	}

	waitForShutdown()
	cancel()
	shutdownAll(servers, log)
	return 0
}

func buildListener(lc config.ListenerConfig, handler http.Handler, ssls *registry.Registry[*config.SSL]) (*http.Server, error) {
	srv := &http.Server{
		Addr:         lc.Address,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if lc.TLS != nil {
		tlsCfg, err := buildTLSConfig(lc, ssls)
		if err != nil {
			return nil, err
		}
		srv.TLSConfig = tlsCfg
	}
	return srv, nil
}

func serveListener(srv *http.Server, lc config.ListenerConfig, log *logrus.Logger) {
	log.WithField("address", lc.Address).Info("listener starting")
	var err error
	if srv.TLSConfig != nil {
		err = srv.ListenAndServeTLS("", "")
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		log.WithError(err).WithField("address", lc.Address).Error("listener stopped")
	}
}

func buildAdminServer(etcdCfg config.EtcdConfig, adminCfg config.AdminConfig, log *logrus.Logger) (*http.Server, error) {
	client, err := kvsync.Dial(etcdCfg)
	if err != nil {
		return nil, fmt.Errorf("admin: dial etcd: %w", err)
	}
	store := admin.NewStore(client, etcdCfg.Prefix)

	sink, err := audit.BuildSink(adminCfg.AuditBackend, audit.Options{})
	if err != nil {
		return nil, fmt.Errorf("admin: %w", err)
	}

	srv := admin.NewServer(store, sink, adminCfg.APIKey, log)
	return srv.HTTPServer(adminCfg.Address), nil
}

func waitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}

func shutdownAll(servers []*http.Server, log *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).WithField("address", srv.Addr).Warn("graceful shutdown failed")
		}
	}
}
