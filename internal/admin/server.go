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

package admin

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pingsix/pingsix/internal/audit"
	"github.com/pingsix/pingsix/internal/config"
)

// Server is the Admin HTTP API, enabled only when both etcd
// and admin are configured.
type Server struct {
	store  *Store
	audit  audit.Sink
	apiKey string
	log    *logrus.Logger
}

// NewServer wires the KV-backed store and audit sink behind the static
// X-API-KEY gate.
func NewServer(store *Store, sink audit.Sink, apiKey string, log *logrus.Logger) *Server {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Server{store: store, audit: sink, apiKey: apiKey, log: log}
}

// RegisterRoutes mounts the CRUD handler on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleResource)
}

// HTTPServer builds the *http.Server for addr without starting it, so the
// caller can track it for graceful shutdown alongside the proxy listeners.
func (s *Server) HTTPServer(addr string) *http.Server {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// ListenAndServe starts the Admin API on addr.
func (s *Server) ListenAndServe(addr string) error {
	httpServer := s.HTTPServer(addr)
	s.log.WithField("address", addr).Info("admin API listening")
	return httpServer.ListenAndServe()
}

func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	kind, id, ok := splitResourcePath(r.URL.Path)
	if !ok || !validKind(kind) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGet(w, r, kind, id)
	case http.MethodPut:
		s.handlePut(w, r, kind, id)
	case http.MethodDelete:
		s.handleDelete(w, r, kind, id)
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.apiKey == "" {
		return false
	}
	got := r.Header.Get("X-API-KEY")
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.apiKey)) == 1
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, kind, id string) {
	value, ok, err := s.store.Get(r.Context(), kind, id)
	if err != nil {
		s.log.WithError(err).Warn("admin: get failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(value)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request, kind, id string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}

	canonical, err := validateBody(config.Kind(kind), id, body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	changeID := r.Header.Get("X-Change-Id")
	if changeID == "" {
		changeID = generateChangeID()
	}

	entry := audit.Entry{
		Kind:     kind,
		ID:       id,
		Action:   "put",
		ChangeID: changeID,
		Actor:    r.Header.Get("X-API-KEY"),
		Payload:  canonical,
	}
	if err := s.audit.Record(r.Context(), []audit.Entry{entry}); err != nil {
		s.log.WithError(err).Warn("admin: audit record failed, refusing write")
		http.Error(w, "audit unavailable", http.StatusServiceUnavailable)
		return
	}

	if err := s.store.Put(r.Context(), kind, id, canonical); err != nil {
		s.log.WithError(err).Warn("admin: kv put failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(canonical)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, kind, id string) {
	changeID := r.Header.Get("X-Change-Id")
	if changeID == "" {
		changeID = generateChangeID()
	}

	entry := audit.Entry{
		Kind:     kind,
		ID:       id,
		Action:   "delete",
		ChangeID: changeID,
		Actor:    r.Header.Get("X-API-KEY"),
	}
	if err := s.audit.Record(r.Context(), []audit.Entry{entry}); err != nil {
		s.log.WithError(err).Warn("admin: audit record failed, refusing delete")
		http.Error(w, "audit unavailable", http.StatusServiceUnavailable)
		return
	}

	if err := s.store.Delete(r.Context(), kind, id); err != nil {
		s.log.WithError(err).Warn("admin: kv delete failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func splitResourcePath(path string) (kind, id string, ok bool) {
	trimmed := strings.Trim(path, "/")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func generateChangeID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return hex.EncodeToString(b)
}
