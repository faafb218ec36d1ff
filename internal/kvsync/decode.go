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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/perror"
	"github.com/pingsix/pingsix/internal/registry"
)

// splitKey splits a KV key of the form "<prefix>/<kind>/<id>" into kind and
// id. The prefix may or may not carry a trailing slash.
func splitKey(prefix, key string) (kind config.Kind, id string, err error) {
	rest := strings.TrimPrefix(key, strings.TrimSuffix(prefix, "/"))
	rest = strings.TrimPrefix(rest, "/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("kvsync: malformed key %q under prefix %q", key, prefix)
	}
	return config.Kind(parts[0]), parts[1], nil
}

// applyPut decodes value as the resource named by kind and upserts it.
// A decode error is isolated to this key.
func applyPut(tables *registry.Tables, kind config.Kind, id string, value []byte) error {
	switch kind {
	case config.KindRoutes:
		var r config.Route
		if err := json.Unmarshal(value, &r); err != nil {
			return perror.Decode(id, err)
		}
		tables.Routes.Upsert(id, &r)
	case config.KindServices:
		var s config.Service
		if err := json.Unmarshal(value, &s); err != nil {
			return perror.Decode(id, err)
		}
		tables.Services.Upsert(id, &s)
	case config.KindUpstreams:
		var u config.Upstream
		if err := json.Unmarshal(value, &u); err != nil {
			return perror.Decode(id, err)
		}
		tables.Upstreams.Upsert(id, &u)
	case config.KindSSLs:
		var s config.SSL
		if err := json.Unmarshal(value, &s); err != nil {
			return perror.Decode(id, err)
		}
		tables.SSLs.Upsert(id, &s)
	case config.KindGlobalRules:
		var g config.GlobalRule
		if err := json.Unmarshal(value, &g); err != nil {
			return perror.Decode(id, err)
		}
		tables.GlobalRules.Upsert(id, &g)
	default:
		return fmt.Errorf("kvsync: unknown resource kind %q", kind)
	}
	return nil
}

// applyDelete removes id from the registry named by kind.
func applyDelete(tables *registry.Tables, kind config.Kind, id string) error {
	switch kind {
	case config.KindRoutes:
		tables.Routes.Delete(id)
	case config.KindServices:
		tables.Services.Delete(id)
	case config.KindUpstreams:
		tables.Upstreams.Delete(id)
	case config.KindSSLs:
		tables.SSLs.Delete(id)
	case config.KindGlobalRules:
		tables.GlobalRules.Delete(id)
	default:
		return fmt.Errorf("kvsync: unknown resource kind %q", kind)
	}
	return nil
}
