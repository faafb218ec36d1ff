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
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Evaler abstracts the minimal surface needed from a Redis client.
type Evaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// RedisSink records mutations idempotently using a Lua script:
//  1. SETNX audit:marker:<kind>:<id>:<change_id> 1
//  2. if set -> RPUSH audit:log:<kind>:<id> payload
//  3. EXPIRE the marker for leak protection
type RedisSink struct {
	client    Evaler
	markerTTL time.Duration
}

// NewRedisSink returns a sink with the given client and marker TTL.
func NewRedisSink(client Evaler, markerTTL time.Duration) *RedisSink {
	if markerTTL <= 0 {
		markerTTL = 24 * time.Hour
	}
	return &RedisSink{client: client, markerTTL: markerTTL}
}

// NewGoRedisSink wraps a github.com/redis/go-redis/v9 client.
func NewGoRedisSink(addr string, markerTTL time.Duration) *RedisSink {
	c := redis.NewClient(&redis.Options{Addr: addr})
	return NewRedisSink(goRedisEvaler{c}, markerTTL)
}

type goRedisEvaler struct{ c *redis.Client }

func (g goRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return g.c.Eval(ctx, script, keys, args...).Result()
}

const redisAuditScript = `
local markerKey = KEYS[1]
local logKey = KEYS[2]
local payload = ARGV[1]
local ttlSeconds = tonumber(ARGV[2])
local set = redis.call('SETNX', markerKey, 1)
if set == 1 then
  redis.call('RPUSH', logKey, payload)
  if ttlSeconds and ttlSeconds > 0 then
    redis.call('EXPIRE', markerKey, ttlSeconds)
  end
  return 1
else
  return 0
end
`

func markerKey(kind, id, changeID string) string {
	return fmt.Sprintf("audit:marker:%s:%s:%s", kind, id, changeID)
}

func logKey(kind, id string) string {
	return fmt.Sprintf("audit:log:%s:%s", kind, id)
}

// Record implements Sink.
func (r *RedisSink) Record(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		if e.ChangeID == "" {
			return errors.New("audit: Entry.ChangeID must be set")
		}
		keys := []string{markerKey(e.Kind, e.ID, e.ChangeID), logKey(e.Kind, e.ID)}
		args := []interface{}{string(e.Payload), int(r.markerTTL.Seconds())}
		if _, err := r.client.Eval(ctx, redisAuditScript, keys, args...); err != nil {
			return fmt.Errorf("audit redis eval kind=%s id=%s change=%s: %w", e.Kind, e.ID, e.ChangeID, err)
		}
	}
	return nil
}
