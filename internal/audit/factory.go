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
	"database/sql"
	"fmt"
	"time"
)

// Options carries the knobs BuildSink needs for each backend kind.
type Options struct {
	RedisAddr      string
	RedisMarkerTTL time.Duration
	KafkaProducer  Producer
	KafkaTopic     string
	PostgresDB     *sql.DB
}

// BuildSink constructs the Sink named by backend.
// Empty selects NopSink.
func BuildSink(backend string, opts Options) (Sink, error) {
	switch backend {
	case "":
		return NopSink{}, nil
	case "redis":
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("audit: redis backend requires redis_addr")
		}
		return NewGoRedisSink(opts.RedisAddr, opts.RedisMarkerTTL), nil
	case "kafka":
		if opts.KafkaProducer == nil {
			return nil, fmt.Errorf("audit: kafka backend requires a producer")
		}
		topic := opts.KafkaTopic
		if topic == "" {
			topic = "pingsix-admin-audit"
		}
		return NewKafkaSink(opts.KafkaProducer, topic), nil
	case "postgres":
		if opts.PostgresDB == nil {
			return nil, fmt.Errorf("audit: postgres backend requires an open *sql.DB")
		}
		return NewPostgresSink(opts.PostgresDB), nil
	default:
		return nil, fmt.Errorf("audit: unknown audit_backend %q", backend)
	}
}
