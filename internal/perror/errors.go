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

// Package perror defines the small, typed error taxonomy shared across the
// proxy core: the KV sync engine, the request pipeline, and the plugin
// chain each raise one of these instead of an ad-hoc string so callers can
// branch on kind with errors.As.
package perror

import "fmt"

// Kind identifies one of the error categories from the error handling design.
type Kind string

const (
	KindClientNotInitialized Kind = "client_not_initialized"
	KindConnectionFailed     Kind = "connection_failed"
	KindListOperationFailed  Kind = "list_operation_failed"
	KindWatchOperationFailed Kind = "watch_operation_failed"
	KindDecodeError          Kind = "decode_error"
	KindUpstreamSelectFailed Kind = "upstream_select_failed"
	KindUpstreamDialFailed   Kind = "upstream_dial_failed"
	KindRouteNotFound        Kind = "route_not_found"
	KindPluginError          Kind = "plugin_error"
)

// Error is the common shape for every taxonomy member. Kind is stable and
// safe to switch on; Reason and the wrapped Err carry the specifics.
type Error struct {
	Kind   Kind
	Reason string
	Key    string // KV key, plugin name, or route id, depending on Kind
	Attempt int   // set for UpstreamDialFailed
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindDecodeError:
		return fmt.Sprintf("%s: key=%s: %s", e.Kind, e.Key, e.Reason)
	case KindUpstreamDialFailed:
		return fmt.Sprintf("%s: attempt=%d: %s", e.Kind, e.Attempt, e.Reason)
	case KindPluginError:
		return fmt.Sprintf("%s: plugin=%s: %s", e.Kind, e.Key, e.Reason)
	default:
		if e.Reason != "" {
			return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
		}
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func Wrap(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// Decode builds a DecodeError for a single KV key that failed to unmarshal.
func Decode(key string, err error) *Error {
	return &Error{Kind: KindDecodeError, Key: key, Reason: err.Error(), Err: err}
}

// DialFailed builds an UpstreamDialFailed error for one pipeline attempt.
func DialFailed(attempt int, err error) *Error {
	return &Error{Kind: KindUpstreamDialFailed, Attempt: attempt, Reason: err.Error(), Err: err}
}

// Plugin builds a PluginError for a named plugin/phase failure.
func Plugin(name, phase, reason string) *Error {
	return &Error{Kind: KindPluginError, Key: name, Reason: fmt.Sprintf("phase=%s: %s", phase, reason)}
}

var (
	ErrRouteNotFound        = New(KindRouteNotFound, "no route matched the request")
	ErrUpstreamSelectFailed = New(KindUpstreamSelectFailed, "no healthy backend available")
	ErrClientNotInitialized = New(KindClientNotInitialized, "kv client handle is not initialized")
)
