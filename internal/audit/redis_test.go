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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvaler struct {
	calls []struct {
		keys []string
		args []interface{}
	}
	returnErr error
}

func (f *fakeEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	f.calls = append(f.calls, struct {
		keys []string
		args []interface{}
	}{keys: append([]string{}, keys...), args: append([]interface{}{}, args...)})
	return int64(1), nil
}

func TestNewRedisSinkDefaultTTL(t *testing.T) {
	s := NewRedisSink(&fakeEvaler{}, 0)
	assert.Equal(t, 24*time.Hour, s.markerTTL)
}

func TestRedisSinkRecordEmptyIsNoop(t *testing.T) {
	s := NewRedisSink(&fakeEvaler{}, time.Hour)
	assert.NoError(t, s.Record(context.Background(), nil))
}

func TestRedisSinkRecordSendsMarkerAndLogKeys(t *testing.T) {
	fake := &fakeEvaler{}
	s := NewRedisSink(fake, time.Hour)
	entries := []Entry{{Kind: "routes", ID: "r1", Action: "put", ChangeID: "chg-1", Payload: []byte(`{}`)}}

	require.NoError(t, s.Record(context.Background(), entries))
	require.Len(t, fake.calls, 1)
	assert.Equal(t, []string{markerKey("routes", "r1", "chg-1"), logKey("routes", "r1")}, fake.calls[0].keys)
}

func TestRedisSinkRecordRequiresChangeID(t *testing.T) {
	s := NewRedisSink(&fakeEvaler{}, time.Second)
	err := s.Record(context.Background(), []Entry{{Kind: "routes", ID: "r1"}})
	assert.ErrorContains(t, err, "ChangeID must be set")
}

func TestRedisSinkRecordPropagatesClientError(t *testing.T) {
	fake := &fakeEvaler{returnErr: errors.New("boom")}
	s := NewRedisSink(fake, time.Second)
	err := s.Record(context.Background(), []Entry{{Kind: "routes", ID: "r1", ChangeID: "c"}})
	assert.ErrorContains(t, err, "boom")
}
