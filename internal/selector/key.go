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

// Package selector implements the polymorphic backend chooser: round-robin, random, fnv-hash and ketama, each operating over a
// LoadBalancer snapshot and (for the hash-based algorithms) a key derived
// from the request.
package selector

import "strings"

// KeySource is the minimal request view the selector needs to derive a
// hash-on key, implemented by the request pipeline's session type.
type KeySource interface {
	Var(name string) string
	Header(name string) string
	Cookie(name string) string
}

// DeriveKey computes the selector key for an Upstream's hash_on/key
//. Missing values degrade to the empty string, deterministically.
func DeriveKey(hashOn, key string, src KeySource) string {
	if src == nil {
		return ""
	}
	switch hashOn {
	case "header":
		return src.Header(key)
	case "cookie":
		return src.Cookie(key)
	default: // "vars", and the zero value
		return varValue(key, src)
	}
}

func varValue(name string, src KeySource) string {
	if strings.HasPrefix(name, "arg_") {
		return src.Var(name)
	}
	switch name {
	case "uri", "request_uri", "query_string", "remote_addr", "remote_port", "server_addr":
		return src.Var(name)
	default:
		return ""
	}
}
