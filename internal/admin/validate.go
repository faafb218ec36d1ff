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
	"encoding/json"
	"fmt"

	"github.com/pingsix/pingsix/internal/config"
)

// validateBody decodes and validates body against the schema for kind,
// returning the canonicalized JSON (with id forced to match the URL) to
// store.
func validateBody(kind config.Kind, id string, body []byte) ([]byte, error) {
	switch kind {
	case config.KindRoutes:
		var r config.Route
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, err
		}
		r.ID = id
		if err := r.Validate(); err != nil {
			return nil, err
		}
		return json.Marshal(&r)
	case config.KindServices:
		var s config.Service
		if err := json.Unmarshal(body, &s); err != nil {
			return nil, err
		}
		s.ID = id
		if err := s.Validate(); err != nil {
			return nil, err
		}
		return json.Marshal(&s)
	case config.KindUpstreams:
		var u config.Upstream
		if err := json.Unmarshal(body, &u); err != nil {
			return nil, err
		}
		u.ID = id
		if err := u.Validate(); err != nil {
			return nil, err
		}
		return json.Marshal(&u)
	case config.KindSSLs:
		var s config.SSL
		if err := json.Unmarshal(body, &s); err != nil {
			return nil, err
		}
		s.ID = id
		if err := s.Validate(); err != nil {
			return nil, err
		}
		return json.Marshal(&s)
	case config.KindGlobalRules:
		var g config.GlobalRule
		if err := json.Unmarshal(body, &g); err != nil {
			return nil, err
		}
		g.ID = id
		if err := g.Validate(); err != nil {
			return nil, err
		}
		return json.Marshal(&g)
	default:
		return nil, fmt.Errorf("admin: unknown resource kind %q", kind)
	}
}

func validKind(kind string) bool {
	switch config.Kind(kind) {
	case config.KindRoutes, config.KindServices, config.KindUpstreams, config.KindSSLs, config.KindGlobalRules:
		return true
	default:
		return false
	}
}
