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

package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSinkEmptyIsNop(t *testing.T) {
	s, err := BuildSink("", Options{})
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)
}

func TestBuildSinkKafkaRequiresProducer(t *testing.T) {
	_, err := BuildSink("kafka", Options{})
	assert.ErrorContains(t, err, "producer")
}

func TestBuildSinkKafkaWithProducer(t *testing.T) {
	s, err := BuildSink("kafka", Options{KafkaProducer: &fakeProducer{}})
	require.NoError(t, err)
	assert.IsType(t, &KafkaSink{}, s)
}

func TestBuildSinkUnknownBackendErrors(t *testing.T) {
	_, err := BuildSink("carrier-pigeon", Options{})
	assert.ErrorContains(t, err, "unknown audit_backend")
}
