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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingsix/pingsix/internal/config"
	"github.com/pingsix/pingsix/internal/registry"
)

func TestSplitKeySplitsKindAndID(t *testing.T) {
	kind, id, err := splitKey("/pingsix", "/pingsix/routes/r1")
	require.NoError(t, err)
	assert.Equal(t, config.KindRoutes, kind)
	assert.Equal(t, "r1", id)
}

func TestSplitKeyTrailingSlashPrefix(t *testing.T) {
	kind, id, err := splitKey("/pingsix/", "/pingsix/upstreams/u1")
	require.NoError(t, err)
	assert.Equal(t, config.KindUpstreams, kind)
	assert.Equal(t, "u1", id)
}

func TestSplitKeyMalformedErrors(t *testing.T) {
	_, _, err := splitKey("/pingsix", "/pingsix/routes")
	assert.Error(t, err)
}

func TestApplyPutUpsertsRoute(t *testing.T) {
	tables := registry.NewTables()
	err := applyPut(tables, config.KindRoutes, "r1", []byte(`{"id":"r1","uris":["/v1"]}`))
	require.NoError(t, err)
	r, ok := tables.Routes.Get("r1")
	require.True(t, ok)
	assert.Equal(t, []string{"/v1"}, r.URIs)
}

func TestApplyPutDecodeErrorIsIsolated(t *testing.T) {
	tables := registry.NewTables()
	err := applyPut(tables, config.KindRoutes, "r1", []byte(`not json`))
	assert.Error(t, err)
	_, ok := tables.Routes.Get("r1")
	assert.False(t, ok)
}

func TestApplyDeleteRemovesResource(t *testing.T) {
	tables := registry.NewTables()
	require.NoError(t, applyPut(tables, config.KindServices, "s1", []byte(`{"id":"s1"}`)))
	require.NoError(t, applyDelete(tables, config.KindServices, "s1"))
	_, ok := tables.Services.Get("s1")
	assert.False(t, ok)
}

func TestApplyPutUnknownKindErrors(t *testing.T) {
	tables := registry.NewTables()
	err := applyPut(tables, config.Kind("bogus"), "x", []byte(`{}`))
	assert.Error(t, err)
}
