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
	"errors"
	"fmt"
	"time"
)

// Producer is a minimal abstraction over a Kafka client. Implementations
// should enable idempotent production (enable.idempotence=true) and key
// messages by ChangeID so broker-side dedup and per-resource ordering hold.
type Producer interface {
	Produce(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error
}

// KafkaSink publishes mutations as Kafka messages; it is a write-ahead log,
// not the resource's store of record.
type KafkaSink struct {
	producer       Producer
	topic          string
	defaultTimeout time.Duration
}

// NewKafkaSink returns a sink publishing to topic via producer.
func NewKafkaSink(producer Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic, defaultTimeout: 10 * time.Second}
}

// message is the wire payload sent to Kafka.
type message struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	Action   string `json:"action"`
	ChangeID string `json:"change_id"`
	Actor    string `json:"actor"`
	Payload  []byte `json:"payload,omitempty"`
	TsUnixMs int64  `json:"ts_unix_ms"`
}

// Record implements Sink.
func (k *KafkaSink) Record(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok && k.defaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.defaultTimeout)
		defer cancel()
	}
	nowMS := time.Now().UnixMilli()
	for _, e := range entries {
		if e.ChangeID == "" {
			return errors.New("audit: Entry.ChangeID must be set")
		}
		msg := message{
			Kind:     e.Kind,
			ID:       e.ID,
			Action:   e.Action,
			ChangeID: e.ChangeID,
			Actor:    e.Actor,
			Payload:  e.Payload,
			TsUnixMs: nowMS,
		}
		b, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("audit marshal kind=%s id=%s: %w", e.Kind, e.ID, err)
		}
		headers := map[string]string{"content-type": "application/json"}
		if err := k.producer.Produce(ctx, k.topic, []byte(e.ChangeID), b, headers); err != nil {
			return fmt.Errorf("audit kafka produce kind=%s id=%s change=%s: %w", e.Kind, e.ID, e.ChangeID, err)
		}
	}
	return nil
}
