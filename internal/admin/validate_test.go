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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingsix/pingsix/internal/config"
)

func TestValidateBodyForcesURLIDOverBodyID(t *testing.T) {
	out, err := validateBody(config.KindRoutes, "r1", []byte(`{"id":"other","uris":["/v1"]}`))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"id":"r1"`)
}

func TestValidateBodyRejectsMalformedJSON(t *testing.T) {
	_, err := validateBody(config.KindUpstreams, "u1", []byte(`not json`))
	assert.Error(t, err)
}

func TestValidateBodyRejectsUnknownKind(t *testing.T) {
	_, err := validateBody(config.Kind("bogus"), "x", []byte(`{}`))
	assert.Error(t, err)
}

func TestValidKindAcceptsOnlyDeclaredKinds(t *testing.T) {
	assert.True(t, validKind("routes"))
	assert.True(t, validKind("upstreams"))
	assert.False(t, validKind("bogus"))
}
