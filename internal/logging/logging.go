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

// Package logging builds the process-wide structured logger. Every
// background task (KV sync, health checker, discovery) and request-path
// component takes a *logrus.Logger rather than using the global one, so
// tests can inject a discard logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Config mirrors the optional pingsix.log document block.
type Config struct {
	Path  string
	Level string
}

// New builds a logger from the static document's log block. An empty Level
// means "info" and an empty Path logs to stderr; true file rotation
// is the out-of-scope "rotating file log sink" collaborator.
func New(cfg Config) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(orDefault(cfg.Level, "info"))
	if err != nil {
		return nil, err
	}
	l.SetLevel(level)

	var out io.Writer = os.Stderr
	if cfg.Path != "" {
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		out = f
	}
	l.SetOutput(out)
	return l, nil
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
