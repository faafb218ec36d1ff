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
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Postgres schema (reference):
//
// CREATE TABLE IF NOT EXISTS audit_log (
//   change_id  TEXT PRIMARY KEY,
//   kind       TEXT NOT NULL,
//   id         TEXT NOT NULL,
//   action     TEXT NOT NULL,
//   actor      TEXT NOT NULL,
//   payload    BYTEA,
//   ts         TIMESTAMPTZ NOT NULL DEFAULT now()
// );
// CREATE INDEX IF NOT EXISTS idx_audit_log_resource ON audit_log(kind, id);

// PostgresSink records mutations idempotently keyed on ChangeID.
type PostgresSink struct {
	db             *sql.DB
	defaultTimeout time.Duration
}

// NewPostgresSink returns a sink writing to db.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db, defaultTimeout: 10 * time.Second}
}

// Record implements Sink within a single transaction per batch.
func (p *PostgresSink) Record(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok && p.defaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.defaultTimeout)
		defer cancel()
	}

	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range entries {
		if e.ChangeID == "" {
			return errors.New("audit: Entry.ChangeID must be set")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO audit_log(change_id, kind, id, action, actor, payload) VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT DO NOTHING`,
			e.ChangeID, e.Kind, e.ID, e.Action, e.Actor, e.Payload); err != nil {
			return fmt.Errorf("audit insert change=%s: %w", e.ChangeID, err)
		}
	}

	return tx.Commit()
}
