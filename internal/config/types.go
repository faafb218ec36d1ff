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

// Package config defines the typed resource records (Route, Service,
// Upstream, SSL, GlobalRule) shared by the static loader and the KV sync
// engine, plus their validation rules.
package config

import "fmt"

// Algorithm is an Upstream's backend selection policy.
type Algorithm string

const (
	AlgoRoundRobin Algorithm = "round-robin"
	AlgoRandom     Algorithm = "random"
	AlgoFNVHash    Algorithm = "fnv-hash"
	AlgoKetama     Algorithm = "ketama"
)

// HashOn names the source of a hash-based selector's key.
type HashOn string

const (
	HashOnVars   HashOn = "vars"
	HashOnHeader HashOn = "header"
	HashOnCookie HashOn = "cookie"
)

// PassHost controls what Host header reaches the backend.
type PassHost string

const (
	PassHostPass    PassHost = "pass"
	PassHostRewrite PassHost = "rewrite"
)

// Timeouts bounds one backend dial attempt, all in seconds.
type Timeouts struct {
	ConnectSeconds float64 `json:"connect,omitempty" yaml:"connect,omitempty"`
	ReadSeconds    float64 `json:"read,omitempty" yaml:"read,omitempty"`
	SendSeconds    float64 `json:"send,omitempty" yaml:"send,omitempty"`
}

// NodeSource is the discovery input for an Upstream: either an explicit
// address->weight map, or a DNS name to resolve. Exactly one is set.
type NodeSource struct {
	Nodes  map[string]int `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Domain string         `json:"domain,omitempty" yaml:"domain,omitempty"`
}

func (n NodeSource) IsDNS() bool { return n.Domain != "" }

// HealthyPolicy is the consecutive-success transition rule.
type HealthyPolicy struct {
	Interval     float64 `json:"interval,omitempty" yaml:"interval,omitempty"`
	Successes    int     `json:"successes,omitempty" yaml:"successes,omitempty"`
	HTTPStatuses []int   `json:"http_statuses,omitempty" yaml:"http_statuses,omitempty"`
}

// UnhealthyPolicy is the consecutive-failure transition rule.
type UnhealthyPolicy struct {
	HTTPFailures int `json:"http_failures,omitempty" yaml:"http_failures,omitempty"`
	TCPFailures  int `json:"tcp_failures,omitempty" yaml:"tcp_failures,omitempty"`
}

// ProbeType is the active health-check transport.
type ProbeType string

const (
	ProbeTCP   ProbeType = "tcp"
	ProbeHTTP  ProbeType = "http"
	ProbeHTTPS ProbeType = "https"
)

// HealthCheck is an Upstream's active probe spec.
type HealthCheck struct {
	Type            ProbeType         `json:"type" yaml:"type"`
	TimeoutSeconds  float64           `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Host            string            `json:"host,omitempty" yaml:"host,omitempty"`
	HTTPPath        string            `json:"http_path,omitempty" yaml:"http_path,omitempty"`
	ReqHeaders      map[string]string `json:"req_headers,omitempty" yaml:"req_headers,omitempty"`
	Port            int               `json:"port,omitempty" yaml:"port,omitempty"`
	VerifyTLS       bool              `json:"verify_tls,omitempty" yaml:"verify_tls,omitempty"`
	Healthy         HealthyPolicy     `json:"healthy,omitempty" yaml:"healthy,omitempty"`
	Unhealthy       UnhealthyPolicy   `json:"unhealthy,omitempty" yaml:"unhealthy,omitempty"`
}

// Interval returns the configured probe interval in seconds, defaulting to
// 1s when healthy.interval is unset or not positive.

func (h HealthCheck) Interval() float64 {
	if h.Healthy.Interval <= 0 {
		return 1.0
	}
	return h.Healthy.Interval
}

// ConsecutiveSuccess is the healthy-transition threshold (derived invariant).
func (h HealthCheck) ConsecutiveSuccess() int {
	if h.Healthy.Successes <= 0 {
		return 1
	}
	return h.Healthy.Successes
}

// ConsecutiveFailure is the unhealthy-transition threshold for the probe's
// own transport (TCP failures for a tcp probe, HTTP failures otherwise).
func (h HealthCheck) ConsecutiveFailure() int {
	n := h.Unhealthy.HTTPFailures
	if h.Type == ProbeTCP {
		n = h.Unhealthy.TCPFailures
	}
	if n <= 0 {
		return 1
	}
	return n
}

// Upstream is a named pool plus its selection policy, discovery source and
// health-check policy.
type Upstream struct {
	ID           string       `json:"id" yaml:"id"`
	Algorithm    Algorithm    `json:"type,omitempty" yaml:"type,omitempty"`
	HashOn       HashOn       `json:"hash_on,omitempty" yaml:"hash_on,omitempty"`
	Key          string       `json:"key,omitempty" yaml:"key,omitempty"`
	Nodes        NodeSource   `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Timeout      *Timeouts    `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Retries      int          `json:"retries,omitempty" yaml:"retries,omitempty"`
	RetryTimeout float64      `json:"retry_timeout,omitempty" yaml:"retry_timeout,omitempty"`
	PassHost     PassHost     `json:"pass_host,omitempty" yaml:"pass_host,omitempty"`
	UpstreamHost string       `json:"upstream_host,omitempty" yaml:"upstream_host,omitempty"`
	Checks       *HealthCheck `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// Validate enforces the §3 Upstream invariants.
func (u *Upstream) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("upstream: id is required")
	}
	if u.Algorithm == "" {
		u.Algorithm = AlgoRoundRobin
	}
	switch u.Algorithm {
	case AlgoRoundRobin, AlgoRandom, AlgoFNVHash, AlgoKetama:
	default:
		return fmt.Errorf("upstream %s: unknown algorithm %q", u.ID, u.Algorithm)
	}
	if u.HashOn == HashOnHeader || u.HashOn == HashOnCookie {
		if u.Key == "" {
			return fmt.Errorf("upstream %s: hash_on=%s requires a non-empty key", u.ID, u.HashOn)
		}
	}
	if u.PassHost == "" {
		u.PassHost = PassHostPass
	}
	if u.PassHost == PassHostRewrite && u.UpstreamHost == "" {
		return fmt.Errorf("upstream %s: pass_host=rewrite requires upstream_host", u.ID)
	}
	if len(u.Nodes.Nodes) == 0 && !u.Nodes.IsDNS() {
		return fmt.Errorf("upstream %s: nodes must be explicit or a domain", u.ID)
	}
	return nil
}

// Route binds a host/path/method predicate to an Upstream or Service plus
// plugins.
type Route struct {
	ID              string                    `json:"id" yaml:"id"`
	Hosts           []string                  `json:"hosts,omitempty" yaml:"hosts,omitempty"`
	URIs            []string                  `json:"uris,omitempty" yaml:"uris,omitempty"`
	Methods         []string                  `json:"methods,omitempty" yaml:"methods,omitempty"`
	ServiceID       string                    `json:"service_id,omitempty" yaml:"service_id,omitempty"`
	Upstream        *Upstream                 `json:"upstream,omitempty" yaml:"upstream,omitempty"`
	Plugins         map[string]map[string]any `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	Priority        int                       `json:"priority,omitempty" yaml:"priority,omitempty"`
}

func (r *Route) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("route: id is required")
	}
	if len(r.URIs) == 0 {
		return fmt.Errorf("route %s: at least one uri pattern is required", r.ID)
	}
	if r.Upstream != nil {
		if err := r.Upstream.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Service is a named indirection aggregating an upstream and plugin set
// shared by multiple routes.
type Service struct {
	ID         string                    `json:"id" yaml:"id"`
	UpstreamID string                    `json:"upstream_id,omitempty" yaml:"upstream_id,omitempty"`
	Upstream   *Upstream                 `json:"upstream,omitempty" yaml:"upstream,omitempty"`
	Plugins    map[string]map[string]any `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	Hosts      []string                  `json:"hosts,omitempty" yaml:"hosts,omitempty"`
}

func (s *Service) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("service: id is required")
	}
	if s.Upstream != nil {
		return s.Upstream.Validate()
	}
	return nil
}

// SSL is a certificate/key pair bound to a set of SNI names.
type SSL struct {
	ID   string   `json:"id" yaml:"id"`
	Cert []byte   `json:"cert" yaml:"cert"`
	Key  []byte   `json:"key" yaml:"key"`
	SNIs []string `json:"snis,omitempty" yaml:"snis,omitempty"`
}

func (s *SSL) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("ssl: id is required")
	}
	if len(s.Cert) == 0 || len(s.Key) == 0 {
		return fmt.Errorf("ssl %s: cert and key are required", s.ID)
	}
	return nil
}

// GlobalRule is a plugin set applied to every request regardless of the
// matched route.
type GlobalRule struct {
	ID      string                    `json:"id" yaml:"id"`
	Plugins map[string]map[string]any `json:"plugins,omitempty" yaml:"plugins,omitempty"`
}

func (g *GlobalRule) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("global_rule: id is required")
	}
	return nil
}

// Kind enumerates the resource kinds tracked by the registry and mirrored
// by the KV store's key layout (<prefix>/<kind>/<id>).
type Kind string

const (
	KindRoutes      Kind = "routes"
	KindServices    Kind = "services"
	KindUpstreams   Kind = "upstreams"
	KindSSLs        Kind = "ssls"
	KindGlobalRules Kind = "global_rules"
)

// Document is the top-level static configuration file.
type Document struct {
	Pingsix struct {
		Listeners []ListenerConfig `yaml:"listeners"`
		Log       *LogConfig       `yaml:"log,omitempty"`
		Etcd      *EtcdConfig      `yaml:"etcd,omitempty"`
		Admin     *AdminConfig     `yaml:"admin,omitempty"`
		Prometheus *PrometheusConfig `yaml:"prometheus,omitempty"`
	} `yaml:"pingsix"`
	Routes      []*Route      `yaml:"routes"`
	Services    []*Service    `yaml:"services"`
	Upstreams   []*Upstream   `yaml:"upstreams"`
	SSLs        []*SSL        `yaml:"ssls"`
	GlobalRules []*GlobalRule `yaml:"global_rules"`
}

type ListenerConfig struct {
	Address  string    `yaml:"address"`
	TLS      *TLSConfig `yaml:"tls,omitempty"`
	OfferH2  bool      `yaml:"offer_h2,omitempty"`
	OfferH2C bool      `yaml:"offer_h2c,omitempty"`
}

type TLSConfig struct {
	CertPath string `yaml:"cert_path"`
	KeyPath  string `yaml:"key_path"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

type EtcdConfig struct {
	Hosts          []string `yaml:"host"`
	Prefix         string   `yaml:"prefix"`
	TimeoutSeconds float64  `yaml:"timeout,omitempty"`
	ConnectTimeout float64  `yaml:"connect_timeout,omitempty"`
	User           string   `yaml:"user,omitempty"`
	Password       string   `yaml:"password,omitempty"`
}

type AdminConfig struct {
	Address string `yaml:"address"`
	APIKey  string `yaml:"api_key"`
	AuditBackend string `yaml:"audit_backend,omitempty"`
}

type PrometheusConfig struct {
	Address string `yaml:"address"`
}

// Validate walks every resource in the document and returns the first error.
func (d *Document) Validate() error {
	for _, u := range d.Upstreams {
		if err := u.Validate(); err != nil {
			return err
		}
	}
	for _, s := range d.Services {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, r := range d.Routes {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for _, s := range d.SSLs {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, g := range d.GlobalRules {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}
