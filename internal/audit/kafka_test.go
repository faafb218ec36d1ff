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
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	topic   string
	key     []byte
	value   []byte
	headers map[string]string
}

func (f *fakeProducer) Produce(_ context.Context, topic string, key []byte, value []byte, headers map[string]string) error {
	f.topic, f.key, f.value, f.headers = topic, key, value, headers
	return nil
}

func TestKafkaSinkRecordKeysByChangeID(t *testing.T) {
	fake := &fakeProducer{}
	s := NewKafkaSink(fake, "audit-topic")

	require.NoError(t, s.Record(context.Background(), []Entry{
		{Kind: "routes", ID: "r1", Action: "put", ChangeID: "chg-1", Actor: "key-abc"},
	}))

	assert.Equal(t, "audit-topic", fake.topic)
	assert.Equal(t, "chg-1", string(fake.key))

	var m message
	require.NoError(t, json.Unmarshal(fake.value, &m))
	assert.Equal(t, "routes", m.Kind)
	assert.Equal(t, "r1", m.ID)
	assert.Equal(t, "put", m.Action)
}

func TestKafkaSinkRecordRequiresChangeID(t *testing.T) {
	s := NewKafkaSink(&fakeProducer{}, "t")
	err := s.Record(context.Background(), []Entry{{Kind: "routes", ID: "r1"}})
	assert.ErrorContains(t, err, "ChangeID must be set")
}
