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

package builtin

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pingsix/pingsix/internal/plugin"
)

// latencyBuckets is the fixed latency histogram bucket set, in milliseconds.
var latencyBuckets = []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 30000, 60000}

var (
	totalRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pingsix_total_requests",
		Help: "Total number of requests proxied since start.",
	})
	httpStatus = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pingsix_http_status",
		Help: "Count of responses by status code and route.",
	}, []string{"code", "route", "matched_uri", "matched_host", "service", "node"})
	httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pingsix_http_latency",
		Help:    "Request latency in milliseconds.",
		Buckets: latencyBuckets,
	}, []string{"type", "route", "service", "node"})
	bandwidth = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pingsix_bandwidth_bytes",
		Help: "Bytes transferred, by direction.",
	}, []string{"type", "route", "service", "node"})
)

func init() {
	prometheus.MustRegister(totalRequests, httpStatus, httpLatency, bandwidth)
}

const prometheusPriority = 500

// Prometheus records the per-request proxy metrics.
type Prometheus struct{}

// NewPrometheusFactory returns the plugin.Factory for the prometheus plugin.
func NewPrometheusFactory() plugin.Factory {
	return func(map[string]any) (plugin.Plugin, error) {
		return &Prometheus{}, nil
	}
}

func (p *Prometheus) Name() string  { return "prometheus" }
func (p *Prometheus) Priority() int { return prometheusPriority }

// Logging implements plugin.LoggingHook.
func (p *Prometheus) Logging(s plugin.Session, _ error, ctx *plugin.ProxyContext) {
	totalRequests.Inc()

	routeID, serviceID := "", ""
	if ctx.Route != nil {
		routeID = ctx.Route.ID
	}
	if ctx.Service != nil {
		serviceID = ctx.Service.ID
	}
	node := ctx.Vars["upstream"]
	matchedURI := ctx.Vars["matched_uri"]
	matchedHost := ctx.Vars["matched_host"]

	httpStatus.WithLabelValues(strconv.Itoa(s.StatusCode()), routeID, matchedURI, matchedHost, serviceID, node).Inc()

	latencyMS := float64(time.Since(ctx.RequestStart)) / float64(time.Millisecond)
	httpLatency.WithLabelValues("request", routeID, serviceID, node).Observe(latencyMS)

	bandwidth.WithLabelValues("ingress", routeID, serviceID, node).Add(float64(s.BytesIn()))
	bandwidth.WithLabelValues("egress", routeID, serviceID, node).Add(float64(s.BytesOut()))
}
